package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "mini-twitter/pkg/common/errors"
	"mini-twitter/pkg/core/post/model"
)

func TestFindPage_OrdersNewestFirst(t *testing.T) {
	repo := NewPostRepository()
	ctx := context.Background()
	base := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		require.NoError(t, repo.Create(ctx, &model.Post{
			Content:   "p",
			Author:    "alice",
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}))
	}
	// 与最新一条同一时刻，id 更大者在前
	require.NoError(t, repo.Create(ctx, &model.Post{Content: "tie", Author: "bob", CreatedAt: base.Add(4 * time.Minute)}))

	posts, total, err := repo.FindPage(ctx, 0, 3)
	require.NoError(t, err)
	assert.Equal(t, int64(6), total)
	require.Len(t, posts, 3)
	assert.Equal(t, []int64{6, 5, 4}, []int64{posts[0].ID, posts[1].ID, posts[2].ID})

	posts, _, err = repo.FindPage(ctx, 3, 3)
	require.NoError(t, err)
	assert.Equal(t, []int64{3, 2, 1}, []int64{posts[0].ID, posts[1].ID, posts[2].ID})

	posts, total, err = repo.FindPage(ctx, 30, 3)
	require.NoError(t, err)
	assert.Equal(t, int64(6), total)
	assert.Empty(t, posts)

	posts, total, err = repo.FindPage(ctx, -10, 3)
	require.NoError(t, err)
	assert.Equal(t, int64(6), total)
	assert.Empty(t, posts)
}

func TestUpdateAndDelete(t *testing.T) {
	repo := NewPostRepository()
	ctx := context.Background()

	p := &model.Post{Content: "hello", Author: "alice"}
	require.NoError(t, repo.Create(ctx, p))

	at := time.Now()
	require.NoError(t, repo.Update(ctx, p.WithContent("bye", at)))

	got, err := repo.FindByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "bye", got.Content)
	assert.Equal(t, "alice", got.Author)

	require.NoError(t, repo.Delete(ctx, p.ID))
	_, err = repo.FindByID(ctx, p.ID)
	assert.ErrorIs(t, err, apperrors.ErrRecordNotFound)

	assert.ErrorIs(t, repo.Delete(ctx, p.ID), apperrors.ErrRecordNotFound)
	assert.ErrorIs(t, repo.Update(ctx, model.Post{ID: 404}), apperrors.ErrRecordNotFound)
}
