package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func TestDo(t *testing.T) {
	Convey("Do 按策略重试上游调用", t, func() {
		ctx := context.Background()
		policy := Policy{MaxRetries: 2, Backoff: time.Millisecond}

		Convey("首次成功不重试", func() {
			calls := 0
			err := Do(ctx, policy, "test", func(context.Context) error {
				calls++
				return nil
			})
			So(err, ShouldBeNil)
			So(calls, ShouldEqual, 1)
		})

		Convey("限流错误最多重试 MaxRetries 次", func() {
			calls := 0
			err := Do(ctx, policy, "test", func(context.Context) error {
				calls++
				return errors.New("status 429: rate limit exceeded")
			})
			So(err, ShouldNotBeNil)
			So(calls, ShouldEqual, 3)
		})

		Convey("限流后恢复则返回成功", func() {
			calls := 0
			err := Do(ctx, policy, "test", func(context.Context) error {
				calls++
				if calls == 1 {
					return errors.New("quota exhausted")
				}
				return nil
			})
			So(err, ShouldBeNil)
			So(calls, ShouldEqual, 2)
		})

		Convey("不可重试错误立即返回", func() {
			calls := 0
			err := Do(ctx, policy, "test", func(context.Context) error {
				calls++
				return errors.New("invalid api key")
			})
			So(err, ShouldNotBeNil)
			So(calls, ShouldEqual, 1)
		})

		Convey("MaxRetries 为 0 时只调用一次", func() {
			calls := 0
			_ = Do(ctx, Policy{}, "test", func(context.Context) error {
				calls++
				return errors.New("429")
			})
			So(calls, ShouldEqual, 1)
		})

		Convey("等待期间 ctx 结束则停止重试", func() {
			cctx, cancel := context.WithCancel(ctx)
			calls := 0
			err := Do(cctx, Policy{MaxRetries: 5, Backoff: time.Hour}, "test", func(context.Context) error {
				calls++
				cancel()
				return errors.New("429")
			})
			So(err, ShouldNotBeNil)
			So(calls, ShouldEqual, 1)
		})
	})
}

func TestIsRetryable(t *testing.T) {
	Convey("IsRetryable 识别限流与超时", t, func() {
		So(IsRetryable(nil), ShouldBeFalse)
		So(IsRetryable(context.DeadlineExceeded), ShouldBeFalse)
		So(IsRetryable(errors.New("Error 429 Too Many Requests")), ShouldBeTrue)
		So(IsRetryable(errors.New("RESOURCE_EXHAUSTED: quota")), ShouldBeTrue)
		So(IsRetryable(errors.New("bad request")), ShouldBeFalse)
	})
}
