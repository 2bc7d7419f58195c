package token

import (
	"context"
	"testing"
	"time"

	redis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryDenylist_ExpiresEntries(t *testing.T) {
	d := NewMemoryDenylist()
	now := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	d.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, d.Add(ctx, "a", now.Add(time.Minute)))

	ok, err := d.Contains(ctx, "a")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = d.Contains(ctx, "b")
	require.NoError(t, err)
	assert.False(t, ok)

	now = now.Add(time.Minute)
	ok, err = d.Contains(ctx, "a")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, d.entries)
}

func TestMemoryDenylist_AddPrunes(t *testing.T) {
	d := NewMemoryDenylist()
	now := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	d.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, d.Add(ctx, "old", now.Add(time.Second)))
	now = now.Add(time.Hour)
	require.NoError(t, d.Add(ctx, "new", now.Add(time.Second)))

	assert.Len(t, d.entries, 1)
	assert.Contains(t, d.entries, "new")
}

func TestRedisDenylist_PropagatesConnectionErrors(t *testing.T) {
	rdb := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { _ = rdb.Close() })

	d := NewRedisDenylist(rdb)
	_, err := d.Contains(context.Background(), "a")
	assert.Error(t, err)
}

func TestRedisDenylist_SkipsAlreadyExpired(t *testing.T) {
	rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", MaxRetries: -1})
	t.Cleanup(func() { _ = rdb.Close() })

	d := NewRedisDenylist(rdb)
	// TTL<=0 时不访问 Redis，因此不会出现连接错误
	assert.NoError(t, d.Add(context.Background(), "a", time.Now().Add(-time.Second)))
}
