package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	httputil "dreamstream/internal/pkg/http"
	"dreamstream/internal/pkg/ratelimit"
)

// MsgRateLimited 网关限流提示
const MsgRateLimited = "Rate limit reached. Please wait a moment before trying again."

// RateLimit 网关限流中间件
// 限流后端出错时放行请求，告警日志每 10 秒最多一条
func RateLimit(limiter ratelimit.Limiter) gin.HandlerFunc {
	failOpenLog := &rate.Sometimes{First: 1, Interval: 10 * time.Second}
	return func(c *gin.Context) {
		ok, err := limiter.Allow(c.Request.Context())
		if err != nil {
			rid := c.GetString(RequestIDKey)
			failOpenLog.Do(func() {
				log.Warn().Err(err).Str("request_id", rid).Msg("rate limiter unavailable, allowing request")
			})
			c.Next()
			return
		}
		if !ok {
			c.Header("Retry-After", "60")
			httputil.AbortWithError(c, http.StatusTooManyRequests, MsgRateLimited)
			return
		}
		c.Next()
	}
}
