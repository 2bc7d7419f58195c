package service

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	pkgerrors "github.com/pkg/errors"

	apperrors "mini-twitter/pkg/common/errors"
	"mini-twitter/pkg/common/pagination"
	"mini-twitter/pkg/core/post/model"
	"mini-twitter/pkg/core/post/repository/dao"
)

// MaxContentLength 帖子内容上限（按字符计）
const MaxContentLength = 280

type Option func(*PostService)

// WithClock 替换时间源
func WithClock(now func() time.Time) Option {
	return func(s *PostService) { s.now = now }
}

// WithPaging 设置默认页大小与上限
func WithPaging(defaultSize, maxSize int) Option {
	return func(s *PostService) {
		s.defaultSize = defaultSize
		s.maxSize = maxSize
	}
}

type PostService struct {
	repo        dao.PostRepository
	now         func() time.Time
	defaultSize int
	maxSize     int
}

func NewPostService(repo dao.PostRepository, opts ...Option) *PostService {
	s := &PostService{
		repo:        repo,
		now:         time.Now,
		defaultSize: 10,
		maxSize:     100,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// List 分页查询，非法页码/页大小会被修正而不是拒绝
func (s *PostService) List(ctx context.Context, page, size int) (pagination.Page[model.Post], error) {
	req := pagination.Request{Page: page, Size: size}.Normalize(s.defaultSize, s.maxSize)

	posts, total, err := s.repo.FindPage(ctx, req.Offset(), req.Size)
	if err != nil {
		return pagination.Page[model.Post]{}, pkgerrors.Wrap(err, "list posts")
	}
	return pagination.NewPage(posts, total, req), nil
}

func (s *PostService) Get(ctx context.Context, id int64) (model.Post, error) {
	post, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return model.Post{}, s.translate(err, "get post")
	}
	return post, nil
}

func (s *PostService) Create(ctx context.Context, content, author string) (model.Post, error) {
	if err := validateContent(content); err != nil {
		return model.Post{}, err
	}

	post := &model.Post{
		Content:   content,
		Author:    author,
		CreatedAt: s.now(),
	}
	if err := s.repo.Create(ctx, post); err != nil {
		return model.Post{}, pkgerrors.Wrap(err, "create post")
	}
	return *post, nil
}

func (s *PostService) Update(ctx context.Context, id int64, content string) (model.Post, error) {
	if err := validateContent(content); err != nil {
		return model.Post{}, err
	}

	cur, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return model.Post{}, s.translate(err, "load post")
	}

	updated := cur.WithContent(content, s.now())
	if err := s.repo.Update(ctx, updated); err != nil {
		return model.Post{}, s.translate(err, "update post")
	}
	return updated, nil
}

func (s *PostService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return s.translate(err, "delete post")
	}
	return nil
}

func (s *PostService) translate(err error, msg string) error {
	if errors.Is(err, apperrors.ErrRecordNotFound) {
		return apperrors.ErrNotFoundPost
	}
	return pkgerrors.Wrap(err, msg)
}

func validateContent(content string) error {
	if strings.TrimSpace(content) == "" || utf8.RuneCountInString(content) > MaxContentLength {
		return apperrors.ErrInvalidPostContent
	}
	return nil
}
