package memory

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "mini-twitter/pkg/common/errors"
	"mini-twitter/pkg/core/user/model"
)

func TestUserRepository_CreateAndFind(t *testing.T) {
	repo := NewUserRepository()
	ctx := context.Background()

	u := &model.User{Email: "Alice@example.com", PasswordHash: "h", Nickname: "alice"}
	require.NoError(t, repo.Create(ctx, u))
	assert.Equal(t, int64(1), u.ID)

	got, err := repo.FindByEmail(ctx, "Alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	// 邮箱区分大小写
	_, err = repo.FindByEmail(ctx, "alice@example.com")
	assert.ErrorIs(t, err, apperrors.ErrRecordNotFound)

	byID, err := repo.FindByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", byID.Nickname)
}

func TestUserRepository_ConcurrentDuplicate(t *testing.T) {
	repo := NewUserRepository()
	ctx := context.Background()

	var created, dup int32
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := repo.Create(ctx, &model.User{Email: "same@example.com", Nickname: "x"})
			switch {
			case err == nil:
				atomic.AddInt32(&created, 1)
			case assert.ErrorIs(t, err, apperrors.ErrDuplicateEntry):
				atomic.AddInt32(&dup, 1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), created)
	assert.Equal(t, int32(15), dup)
	assert.Equal(t, 1, repo.Count())
}
