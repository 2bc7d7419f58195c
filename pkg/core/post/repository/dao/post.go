package dao

import (
	"context"

	"mini-twitter/pkg/core/post/model"
)

// PostRepository 未找到返回 errors.ErrRecordNotFound
type PostRepository interface {
	Create(ctx context.Context, post *model.Post) error
	FindByID(ctx context.Context, id int64) (model.Post, error)
	// FindPage 按 created_at DESC, id DESC 排序，同时返回总数
	FindPage(ctx context.Context, offset, limit int) ([]model.Post, int64, error)
	Update(ctx context.Context, post model.Post) error
	Delete(ctx context.Context, id int64) error
}
