// Package memory 进程内的用户仓储，用于本地开发（database.driver=memory）和测试。
package memory

import (
	"context"
	"sync"
	"time"

	apperrors "mini-twitter/pkg/common/errors"
	"mini-twitter/pkg/core/user/model"
	"mini-twitter/pkg/core/user/repository/dao"
)

type UserRepository struct {
	mu      sync.RWMutex
	nextID  int64
	byID    map[int64]model.User
	byEmail map[string]int64
}

var _ dao.UserRepository = (*UserRepository)(nil)

func NewUserRepository() *UserRepository {
	return &UserRepository{
		byID:    make(map[int64]model.User),
		byEmail: make(map[string]int64),
	}
}

func (r *UserRepository) FindByID(_ context.Context, id int64) (model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.byID[id]
	if !ok {
		return model.User{}, apperrors.ErrRecordNotFound
	}
	return u, nil
}

func (r *UserRepository) FindByEmail(_ context.Context, email string) (model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmail[email]
	if !ok {
		return model.User{}, apperrors.ErrRecordNotFound
	}
	return r.byID[id], nil
}

func (r *UserRepository) ExistsByEmail(_ context.Context, email string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.byEmail[email]
	return ok, nil
}

// Create 检查与写入在同一把锁内完成，等价于存储层唯一约束
func (r *UserRepository) Create(_ context.Context, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byEmail[user.Email]; ok {
		return apperrors.ErrDuplicateEntry
	}

	r.nextID++
	user.ID = r.nextID
	now := time.Now()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now

	r.byID[user.ID] = *user
	r.byEmail[user.Email] = user.ID
	return nil
}

// Count 当前用户数
func (r *UserRepository) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byID)
}
