package middleware

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/common/hlog"
	redis "github.com/redis/go-redis/v9"
	"github.com/sony/gobreaker"

	apperrors "mini-twitter/pkg/common/errors"
)

// Limiter 判断某个客户端当前是否还有配额
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// RateLimitMiddleware 令牌桶算法限流，按客户端 IP 计数
// 限流后端出错时放行请求，只记录日志
func RateLimitMiddleware(limiter Limiter) app.HandlerFunc {
	return func(c context.Context, ctx *app.RequestContext) {
		allowed, err := limiter.Allow(c, "ip:"+ctx.ClientIP())
		if err != nil {
			hlog.CtxWarnf(c, "rate limiter unavailable, allowing request: %v", err)
			ctx.Next(c)
			return
		}
		if !allowed {
			hlog.CtxInfof(c, "[RATE LIMIT] req=%s ip=%s path=%s", RequestID(ctx), ctx.ClientIP(), ctx.Path())
			abortWithError(ctx, apperrors.ErrTooManyRequests)
			return
		}
		ctx.Next(c)
	}
}

// TokenBucket 进程内令牌桶，每个 key 一个桶；桶在首次请求时装满，按时间惰性补充
// 已补满的桶与新建桶等价，定期清理
type TokenBucket struct {
	mu        sync.Mutex
	capacity  float64
	perSec    float64
	buckets   map[string]*bucket
	lastSweep time.Time
	now       func() time.Time
}

type bucket struct {
	tokens float64
	last   time.Time
}

const bucketSweepInterval = time.Minute

func NewTokenBucket(rate int, interval time.Duration) *TokenBucket {
	if interval <= 0 {
		interval = time.Second
	}
	return &TokenBucket{
		capacity: float64(rate),
		perSec:   float64(rate) / interval.Seconds(),
		buckets:  make(map[string]*bucket),
		now:      time.Now,
	}
}

func (tb *TokenBucket) Allow(_ context.Context, key string) (bool, error) {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	now := tb.now()
	if now.Sub(tb.lastSweep) >= bucketSweepInterval {
		tb.sweep(now)
	}

	b, ok := tb.buckets[key]
	if !ok {
		b = &bucket{tokens: tb.capacity, last: now}
		tb.buckets[key] = b
	}
	b.tokens = tb.refill(b, now)
	b.last = now

	if b.tokens < 1 {
		return false, nil
	}
	b.tokens--
	return true, nil
}

func (tb *TokenBucket) refill(b *bucket, now time.Time) float64 {
	elapsed := now.Sub(b.last).Seconds()
	if elapsed <= 0 {
		return b.tokens
	}
	return math.Min(tb.capacity, b.tokens+elapsed*tb.perSec)
}

func (tb *TokenBucket) sweep(now time.Time) {
	for key, b := range tb.buckets {
		if tb.refill(b, now) >= tb.capacity {
			delete(tb.buckets, key)
		}
	}
	tb.lastSweep = now
}

// 令牌数与上次补充时间存在同一个 hash 中，脚本保证读改写原子
var tokenBucketScript = redis.NewScript(`
	local key = KEYS[1]
	local capacity = tonumber(ARGV[1])
	local rate = tonumber(ARGV[2])
	local now = tonumber(ARGV[3])
	local requested = tonumber(ARGV[4])

	local info = redis.call("HMGET", key, "tokens", "last_refill")
	local tokens = tonumber(info[1])
	local last_refill = tonumber(info[2])

	if tokens == nil then
		tokens = capacity
		last_refill = now
	end

	local delta = math.max(0, now - last_refill)
	local filled_tokens = math.min(capacity, tokens + (delta / 1000 * rate))

	local allowed = 0
	if filled_tokens >= requested then
		filled_tokens = filled_tokens - requested
		allowed = 1
	end
	redis.call("HSET", key, "tokens", filled_tokens, "last_refill", now)
	redis.call("EXPIRE", key, math.ceil(capacity / rate) * 2)

	return allowed
`)

// RedisLimiter 多实例共享配额；Redis 连续失败时熔断，熔断期间直接返回错误（由中间件放行）
type RedisLimiter struct {
	rdb      redis.Scripter
	cb       *gobreaker.CircuitBreaker
	capacity int
	perSec   float64
	now      func() time.Time
}

func NewRedisLimiter(rdb redis.Scripter, rate int, interval time.Duration) *RedisLimiter {
	if interval <= 0 {
		interval = time.Second
	}
	st := gobreaker.Settings{
		Name:        "RateLimitRedis",
		MaxRequests: 1,
		Interval:    10 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 5 && failureRatio >= 0.5
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			hlog.Warnf("CircuitBreaker %s state changed from %s to %s", name, from, to)
		},
	}
	return &RedisLimiter{
		rdb:      rdb,
		cb:       gobreaker.NewCircuitBreaker(st),
		capacity: rate,
		perSec:   float64(rate) / interval.Seconds(),
		now:      time.Now,
	}
}

func (l *RedisLimiter) Allow(ctx context.Context, key string) (bool, error) {
	keys := []string{"rate_limit:" + key}
	args := []interface{}{l.capacity, l.perSec, l.now().UnixMilli(), 1}

	res, err := l.cb.Execute(func() (interface{}, error) {
		return tokenBucketScript.Run(ctx, l.rdb, keys, args...).Int64()
	})
	if err != nil {
		return false, fmt.Errorf("redis rate limit: %w", err)
	}
	return res.(int64) == 1, nil
}
