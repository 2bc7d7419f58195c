package dao

import (
	"context"

	"mini-twitter/pkg/core/user/model"
)

// UserRepository 未找到返回 errors.ErrRecordNotFound，邮箱冲突返回 errors.ErrDuplicateEntry
type UserRepository interface {
	FindByID(ctx context.Context, id int64) (model.User, error)
	FindByEmail(ctx context.Context, email string) (model.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	Create(ctx context.Context, user *model.User) error
}
