package retry

import (
	"context"
	"errors"
	"net"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// Policy 上游调用重试策略
// MaxRetries 为 0 时只调用一次
type Policy struct {
	MaxRetries int
	Backoff    time.Duration // 第 n 次重试前等待 n*Backoff
}

// Do 按策略执行 fn，只对可重试错误重试，且不会越过 ctx 的截止时间
func Do(ctx context.Context, p Policy, name string, fn func(ctx context.Context) error) error {
	var lastErr error
	for attempt := 0; attempt <= p.MaxRetries; attempt++ {
		if attempt > 0 {
			wait := time.Duration(attempt) * p.Backoff
			log.Warn().
				Err(lastErr).
				Str("upstream", name).
				Int("attempt", attempt+1).
				Dur("wait", wait).
				Msg("retrying upstream call")

			timer := time.NewTimer(wait)
			select {
			case <-ctx.Done():
				timer.Stop()
				return lastErr
			case <-timer.C:
			}
		}

		lastErr = fn(ctx)
		if lastErr == nil {
			return nil
		}
		if !IsRetryable(lastErr) || ctx.Err() != nil {
			return lastErr
		}
	}
	return lastErr
}

// IsRetryable 判断错误是否值得重试：限流、配额或临时网络错误
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "429") ||
		strings.Contains(msg, "rate limit") ||
		strings.Contains(msg, "quota") ||
		strings.Contains(msg, "503") ||
		strings.Contains(msg, "connection reset")
}

// IsRateLimited 判断是否为上游配额或限流错误
func IsRateLimited(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "429") ||
		strings.Contains(msg, "rate limit") ||
		strings.Contains(msg, "resource_exhausted") ||
		strings.Contains(msg, "quota")
}
