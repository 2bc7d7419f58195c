package dao

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	apperrors "mini-twitter/pkg/common/errors"
	"mini-twitter/pkg/core/user/model"
	"mini-twitter/pkg/core/user/repository/dao"
)

type GormUserRepository struct {
	db *gorm.DB
}

var _ dao.UserRepository = (*GormUserRepository)(nil)

func NewGormUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

// FindByID 按主键查询
func (r *GormUserRepository) FindByID(ctx context.Context, id int64) (model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&user).
		Error
	return r.result(user, err, "user query failed")
}

// FindByEmail 邮箱区分大小写（列使用 utf8mb4_bin 排序规则）
func (r *GormUserRepository) FindByEmail(ctx context.Context, email string) (model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).
		Where("email = ?", email).
		First(&user).
		Error
	return r.result(user, err, "user lookup by email failed")
}

// Check email existence
func (r *GormUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.User{}).
		Where("email = ?", email).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("%w: failed to check email", apperrors.WrapGormError(err))
	}
	return count > 0, nil
}

// Create new user with transaction
// 唯一索引冲突（MySQL 1062）统一返回 ErrDuplicateEntry
func (r *GormUserRepository) Create(ctx context.Context, user *model.User) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(user).Error; err != nil {
			if apperrors.IsDuplicateError(err) {
				return apperrors.ErrDuplicateEntry
			}
			return fmt.Errorf("%w: user creation failed", apperrors.WrapGormError(err))
		}
		return nil
	})
}

func (r *GormUserRepository) result(user model.User, err error, msg string) (model.User, error) {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return model.User{}, apperrors.ErrRecordNotFound
	case err != nil:
		return model.User{}, fmt.Errorf("%w: %s", apperrors.WrapGormError(err), msg)
	default:
		return user, nil
	}
}
