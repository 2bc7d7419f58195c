package token

import (
	"context"
	"sync"
	"time"

	redis "github.com/redis/go-redis/v9"
)

// Denylist 已吊销令牌的 jti 集合，条目在令牌过期后即可丢弃
type Denylist interface {
	Add(ctx context.Context, id string, until time.Time) error
	Contains(ctx context.Context, id string) (bool, error)
}

type MemoryDenylist struct {
	mu      sync.Mutex
	entries map[string]time.Time
	now     func() time.Time
}

func NewMemoryDenylist() *MemoryDenylist {
	return &MemoryDenylist{
		entries: make(map[string]time.Time),
		now:     time.Now,
	}
}

func (d *MemoryDenylist) Add(_ context.Context, id string, until time.Time) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.pruneLocked()
	d.entries[id] = until
	return nil
}

func (d *MemoryDenylist) Contains(_ context.Context, id string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	until, ok := d.entries[id]
	if !ok {
		return false, nil
	}
	if !d.now().Before(until) {
		delete(d.entries, id)
		return false, nil
	}
	return true, nil
}

func (d *MemoryDenylist) pruneLocked() {
	now := d.now()
	for id, until := range d.entries {
		if !now.Before(until) {
			delete(d.entries, id)
		}
	}
}

const redisDenylistPrefix = "auth:revoked:"

// RedisDenylist 多实例部署时共享吊销状态，键的 TTL 等于令牌剩余有效期
type RedisDenylist struct {
	rdb redis.Cmdable
	now func() time.Time
}

func NewRedisDenylist(rdb redis.Cmdable) *RedisDenylist {
	return &RedisDenylist{rdb: rdb, now: time.Now}
}

func (d *RedisDenylist) Add(ctx context.Context, id string, until time.Time) error {
	ttl := until.Sub(d.now())
	if ttl <= 0 {
		return nil
	}
	return d.rdb.Set(ctx, redisDenylistPrefix+id, 1, ttl).Err()
}

func (d *RedisDenylist) Contains(ctx context.Context, id string) (bool, error) {
	n, err := d.rdb.Exists(ctx, redisDenylistPrefix+id).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
