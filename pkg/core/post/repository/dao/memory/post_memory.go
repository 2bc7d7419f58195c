package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	apperrors "mini-twitter/pkg/common/errors"
	"mini-twitter/pkg/core/post/model"
	"mini-twitter/pkg/core/post/repository/dao"
)

type PostRepository struct {
	mu     sync.RWMutex
	nextID int64
	posts  map[int64]model.Post
}

var _ dao.PostRepository = (*PostRepository)(nil)

func NewPostRepository() *PostRepository {
	return &PostRepository{posts: make(map[int64]model.Post)}
}

func (r *PostRepository) Create(_ context.Context, post *model.Post) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	post.ID = r.nextID
	if post.CreatedAt.IsZero() {
		post.CreatedAt = time.Now()
	}
	r.posts[post.ID] = *post
	return nil
}

func (r *PostRepository) FindByID(_ context.Context, id int64) (model.Post, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.posts[id]
	if !ok {
		return model.Post{}, apperrors.ErrRecordNotFound
	}
	return p, nil
}

func (r *PostRepository) FindPage(_ context.Context, offset, limit int) ([]model.Post, int64, error) {
	r.mu.RLock()
	all := make([]model.Post, 0, len(r.posts))
	for _, p := range r.posts {
		all = append(all, p)
	}
	r.mu.RUnlock()

	sort.Slice(all, func(i, j int) bool {
		if !all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].CreatedAt.After(all[j].CreatedAt)
		}
		return all[i].ID > all[j].ID
	})

	total := int64(len(all))
	if offset < 0 || limit <= 0 || offset >= len(all) {
		return []model.Post{}, total, nil
	}
	end := offset + limit
	if end > len(all) || end < offset {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func (r *PostRepository) Update(_ context.Context, post model.Post) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cur, ok := r.posts[post.ID]
	if !ok {
		return apperrors.ErrRecordNotFound
	}
	cur.Content = post.Content
	cur.ModifiedAt = post.ModifiedAt
	r.posts[post.ID] = cur
	return nil
}

func (r *PostRepository) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.posts[id]; !ok {
		return apperrors.ErrRecordNotFound
	}
	delete(r.posts, id)
	return nil
}
