package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"dreamstream/internal/config"
)

// RedisCache Redis 客户端封装
// 网关无持久化数据，这里只用于多实例共享的限流计数
type RedisCache struct {
	client *redis.Client
}

// NewRedisCache 创建 Redis 客户端并测试连接
func NewRedisCache(cfg *config.RedisConfig) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis %s: %w", cfg.Addr, err)
	}

	return &RedisCache{client: client}, nil
}

// IncrWindow 对窗口计数器加一并返回当前计数
// 计数器在首次创建时设置过期时间，窗口结束后自动失效
func (c *RedisCache) IncrWindow(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	var incr *redis.IntCmd
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, key)
		pipe.ExpireNX(ctx, key, ttl)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return incr.Val(), nil
}

// Close 关闭连接
func (c *RedisCache) Close() error {
	return c.client.Close()
}

// Client 获取原始客户端
func (c *RedisCache) Client() *redis.Client {
	return c.client
}

// 常用 key 模式
const (
	RateLimitKeyPrefix = "dreamstream:ratelimit:"
)

// RateLimitKey 生成限流窗口 key，窗口按起始 Unix 秒区分
func RateLimitKey(windowStart time.Time) string {
	return fmt.Sprintf("%s%d", RateLimitKeyPrefix, windowStart.Unix())
}
