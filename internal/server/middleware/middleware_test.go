package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	. "github.com/smartystreets/goconvey/convey"

	"dreamstream/internal/pkg/ctxutil"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubLimiter struct {
	ok  bool
	err error
}

func (l stubLimiter) Allow(context.Context) (bool, error) {
	return l.ok, l.err
}

func decode(w *httptest.ResponseRecorder) map[string]any {
	var out map[string]any
	_ = json.Unmarshal(w.Body.Bytes(), &out)
	return out
}

func TestRecovery(t *testing.T) {
	Convey("Recovery 返回统一错误信封", t, func() {
		engine := gin.New()
		engine.Use(Recovery())
		engine.GET("/panic", func(*gin.Context) { panic("boom") })

		w := httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))

		So(w.Code, ShouldEqual, http.StatusInternalServerError)
		body := decode(w)
		So(body["success"], ShouldEqual, false)
		So(body["error"], ShouldEqual, "Internal server error")
		So(w.Body.String(), ShouldNotContainSubstring, "boom")
	})
}

func TestRequestID(t *testing.T) {
	Convey("RequestID", t, func() {
		var seen string
		engine := gin.New()
		engine.Use(RequestID())
		engine.GET("/", func(c *gin.Context) {
			seen, _ = ctxutil.GetRequestID(c.Request.Context())
			c.Status(http.StatusNoContent)
		})

		Convey("生成新的请求 ID 并写入 context", func() {
			w := httptest.NewRecorder()
			engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
			So(w.Header().Get(RequestIDHeader), ShouldNotBeEmpty)
			So(seen, ShouldEqual, w.Header().Get(RequestIDHeader))
		})

		Convey("沿用合法的客户端请求 ID", func() {
			rid := "0b5c3c4e-7d2a-4b8e-9f47-1e2d3c4b5a69"
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Header.Set(RequestIDHeader, rid)
			w := httptest.NewRecorder()
			engine.ServeHTTP(w, req)
			So(w.Header().Get(RequestIDHeader), ShouldEqual, rid)
		})

		Convey("忽略非法的客户端请求 ID", func() {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Header.Set(RequestIDHeader, "<script>")
			w := httptest.NewRecorder()
			engine.ServeHTTP(w, req)
			So(w.Header().Get(RequestIDHeader), ShouldNotEqual, "<script>")
		})
	})
}

func TestRateLimit(t *testing.T) {
	Convey("RateLimit", t, func() {
		run := func(l stubLimiter) *httptest.ResponseRecorder {
			engine := gin.New()
			engine.Use(RateLimit(l))
			engine.POST("/", func(c *gin.Context) { c.Status(http.StatusOK) })
			w := httptest.NewRecorder()
			engine.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/", nil))
			return w
		}

		Convey("放行", func() {
			So(run(stubLimiter{ok: true}).Code, ShouldEqual, http.StatusOK)
		})

		Convey("拒绝", func() {
			w := run(stubLimiter{ok: false})
			So(w.Code, ShouldEqual, http.StatusTooManyRequests)
			So(w.Header().Get("Retry-After"), ShouldEqual, "60")
			So(decode(w)["error"], ShouldEqual, MsgRateLimited)
		})

		Convey("限流后端出错时放行", func() {
			So(run(stubLimiter{err: errors.New("redis down")}).Code, ShouldEqual, http.StatusOK)
		})
	})
}
