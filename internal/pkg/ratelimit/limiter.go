package ratelimit

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"dreamstream/internal/config"
	"dreamstream/internal/pkg/cache"
)

// Window 限流窗口
const Window = time.Minute

// Limiter 网关级别的请求预算，保护上游 API Key 的配额
type Limiter interface {
	// Allow 消耗一次请求预算，返回是否放行
	Allow(ctx context.Context) (bool, error)
}

// New 根据配置创建限流器
// redis 后端不可用时退回进程内限流
func New(cfg *config.RateLimitConfig, redisCache *cache.RedisCache) Limiter {
	if cfg.Backend == config.RateLimitBackendRedis {
		if redisCache != nil {
			return NewRedisLimiter(redisCache, cfg.RequestsPerMinute)
		}
		log.Warn().Msg("redis rate limit backend requested but redis is unavailable, falling back to memory")
	}
	return NewMemoryLimiter(cfg.RequestsPerMinute)
}

// MemoryLimiter 进程内滑动窗口
// 记录窗口内每次放行的时间，任意 Window 时长内最多放行 perMinute 次
type MemoryLimiter struct {
	mu        sync.Mutex
	perMinute int
	hits      []time.Time
	now       func() time.Time
}

// NewMemoryLimiter 创建进程内限流器
func NewMemoryLimiter(perMinute int) *MemoryLimiter {
	return &MemoryLimiter{
		perMinute: perMinute,
		hits:      make([]time.Time, 0, perMinute),
		now:       time.Now,
	}
}

// Allow 实现 Limiter
func (l *MemoryLimiter) Allow(context.Context) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	cutoff := now.Add(-Window)
	kept := l.hits[:0]
	for _, t := range l.hits {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	l.hits = kept

	if len(l.hits) >= l.perMinute {
		return false, nil
	}
	l.hits = append(l.hits, now)
	return true, nil
}

// RedisLimiter 基于 Redis 的固定窗口计数，多个 worker 共享同一预算
type RedisLimiter struct {
	cache     *cache.RedisCache
	perMinute int64
	now       func() time.Time
}

// NewRedisLimiter 创建 Redis 限流器
func NewRedisLimiter(c *cache.RedisCache, perMinute int) *RedisLimiter {
	return &RedisLimiter{
		cache:     c,
		perMinute: int64(perMinute),
		now:       time.Now,
	}
}

// Allow 实现 Limiter
func (l *RedisLimiter) Allow(ctx context.Context) (bool, error) {
	windowStart := l.now().Truncate(Window)
	count, err := l.cache.IncrWindow(ctx, cache.RateLimitKey(windowStart), 2*Window)
	if err != nil {
		return false, err
	}
	return count <= l.perMinute, nil
}
