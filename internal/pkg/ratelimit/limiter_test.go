package ratelimit

import (
	"context"
	"os"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"dreamstream/internal/config"
	"dreamstream/internal/pkg/cache"
)

func TestMemoryLimiter(t *testing.T) {
	Convey("MemoryLimiter 任意一分钟内最多放行固定数量的请求", t, func() {
		ctx := context.Background()
		start := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
		now := start
		l := NewMemoryLimiter(10)
		l.now = func() time.Time { return now }

		for i := 0; i < 10; i++ {
			ok, err := l.Allow(ctx)
			So(err, ShouldBeNil)
			So(ok, ShouldBeTrue)
		}

		ok, err := l.Allow(ctx)
		So(err, ShouldBeNil)
		So(ok, ShouldBeFalse)

		Convey("窗口内稍后的请求仍被拒绝", func() {
			for _, d := range []time.Duration{6 * time.Second, 12 * time.Second, 59 * time.Second} {
				now = start.Add(d)
				ok, _ := l.Allow(ctx)
				So(ok, ShouldBeFalse)
			}
		})

		Convey("被拒绝的请求不占用预算，窗口滑过后恢复", func() {
			now = start.Add(Window + time.Second)
			for i := 0; i < 10; i++ {
				ok, _ := l.Allow(ctx)
				So(ok, ShouldBeTrue)
			}
			ok, _ := l.Allow(ctx)
			So(ok, ShouldBeFalse)
		})

		Convey("按每次放行的时间逐个释放", func() {
			l2 := NewMemoryLimiter(2)
			t0 := start
			l2.now = func() time.Time { return t0 }
			_, _ = l2.Allow(ctx)
			t0 = start.Add(30 * time.Second)
			_, _ = l2.Allow(ctx)

			t0 = start.Add(Window + time.Second)
			ok, _ := l2.Allow(ctx)
			So(ok, ShouldBeTrue)
			ok, _ = l2.Allow(ctx)
			So(ok, ShouldBeFalse)
		})
	})
}

func TestNew(t *testing.T) {
	Convey("redis 不可用时退回进程内限流", t, func() {
		l := New(&config.RateLimitConfig{
			Enabled:           true,
			RequestsPerMinute: 5,
			Backend:           config.RateLimitBackendRedis,
		}, nil)
		_, ok := l.(*MemoryLimiter)
		So(ok, ShouldBeTrue)
	})
}

// 需要真实 Redis：DREAMSTREAM_TEST_REDIS_ADDR=localhost:6379 go test ./internal/pkg/ratelimit
func TestRedisLimiter(t *testing.T) {
	addr := os.Getenv("DREAMSTREAM_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("DREAMSTREAM_TEST_REDIS_ADDR not set")
	}

	Convey("RedisLimiter 在同一窗口内共享计数", t, func() {
		ctx := context.Background()
		rc, err := cache.NewRedisCache(&config.RedisConfig{Addr: addr})
		So(err, ShouldBeNil)
		defer rc.Close()

		// 使用过去的随机窗口，避免与运行中的网关冲突
		fixed := time.Unix(0, 0).Add(time.Duration(time.Now().UnixNano()%1_000_000) * Window)
		_ = rc.Client().Del(ctx, cache.RateLimitKey(fixed.Truncate(Window))).Err()

		l := NewRedisLimiter(rc, 3)
		l.now = func() time.Time { return fixed }

		for i := 0; i < 3; i++ {
			ok, err := l.Allow(ctx)
			So(err, ShouldBeNil)
			So(ok, ShouldBeTrue)
		}
		ok, err := l.Allow(ctx)
		So(err, ShouldBeNil)
		So(ok, ShouldBeFalse)
	})
}
