package middleware

import (
	"github.com/gin-gonic/gin"

	"dreamstream/internal/pkg/ctxutil"
	"dreamstream/internal/pkg/id"
)

const (
	// RequestIDHeader 请求 ID 头
	RequestIDHeader = "X-Request-ID"
	// RequestIDKey gin.Context 中的请求 ID 键
	RequestIDKey = "request_id"
)

// RequestID 为每个请求分配 ID
// 客户端传入合法 UUID 时沿用，否则重新生成
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.GetHeader(RequestIDHeader)
		if !id.IsValid(rid) {
			rid = id.NewRequestID()
		}

		c.Set(RequestIDKey, rid)
		c.Header(RequestIDHeader, rid)
		c.Request = c.Request.WithContext(ctxutil.WithRequestID(c.Request.Context(), rid))

		c.Next()
	}
}
