package dao

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	apperrors "mini-twitter/pkg/common/errors"
	"mini-twitter/pkg/core/post/model"
	"mini-twitter/pkg/core/post/repository/dao"
)

type GormPostRepository struct {
	db *gorm.DB
}

var _ dao.PostRepository = (*GormPostRepository)(nil)

func NewGormPostRepository(db *gorm.DB) *GormPostRepository {
	return &GormPostRepository{db: db}
}

func (r *GormPostRepository) Create(ctx context.Context, post *model.Post) error {
	if err := r.db.WithContext(ctx).Create(post).Error; err != nil {
		return fmt.Errorf("%w: post creation failed", apperrors.WrapGormError(err))
	}
	return nil
}

func (r *GormPostRepository) FindByID(ctx context.Context, id int64) (model.Post, error) {
	var post model.Post
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&post).
		Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return model.Post{}, apperrors.ErrRecordNotFound
	case err != nil:
		return model.Post{}, fmt.Errorf("%w: post query failed", apperrors.WrapGormError(err))
	}
	return post, nil
}

// FindPage 最新的在前，created_at 相同时按 id 倒序保证翻页稳定
func (r *GormPostRepository) FindPage(ctx context.Context, offset, limit int) ([]model.Post, int64, error) {
	db := r.db.WithContext(ctx)

	var total int64
	if err := db.Model(&model.Post{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("%w: post count failed", apperrors.WrapGormError(err))
	}
	if total == 0 {
		return []model.Post{}, 0, nil
	}

	var posts []model.Post
	err := db.Order("created_at DESC, id DESC").
		Offset(offset).
		Limit(limit).
		Find(&posts).
		Error
	if err != nil {
		return nil, 0, fmt.Errorf("%w: post page query failed", apperrors.WrapGormError(err))
	}
	return posts, total, nil
}

// Update 只写 content 与 modified_at；DSN 开启 clientFoundRows，内容未变时影响行数仍为 1
func (r *GormPostRepository) Update(ctx context.Context, post model.Post) error {
	res := r.db.WithContext(ctx).
		Model(&model.Post{}).
		Where("id = ?", post.ID).
		Updates(map[string]interface{}{
			"content":     post.Content,
			"modified_at": post.ModifiedAt,
		})
	if res.Error != nil {
		return fmt.Errorf("%w: post update failed", apperrors.WrapGormError(res.Error))
	}
	if res.RowsAffected == 0 {
		return apperrors.ErrRecordNotFound
	}
	return nil
}

func (r *GormPostRepository) Delete(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Delete(&model.Post{}, id)
	if res.Error != nil {
		return fmt.Errorf("%w: post deletion failed", apperrors.WrapGormError(res.Error))
	}
	if res.RowsAffected == 0 {
		return apperrors.ErrRecordNotFound
	}
	return nil
}
