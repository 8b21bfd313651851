package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
	"go.uber.org/mock/gomock"

	aimocks "dreamstream/internal/ai/mocks"
	"dreamstream/internal/config"
	"dreamstream/internal/model"
	"dreamstream/internal/pkg/imagegen"
	genmocks "dreamstream/internal/pkg/imagegen/mocks"
)

func strPtr(s string) *string { return &s }

func testConfig() *config.Config {
	return &config.Config{
		Upstream: config.UpstreamConfig{
			TextTimeout:  time.Second,
			ImageTimeout: time.Second,
			MaxRetries:   0,
			RetryBackoff: time.Millisecond,
		},
		Image: config.ImageConfig{
			OutputFormat: config.OutputFormatOriginal,
			WebPQuality:  80,
		},
	}
}

func TestNormalizePrompt(t *testing.T) {
	Convey("NormalizePrompt", t, func() {
		Convey("缺少 prompt", func() {
			_, err := NormalizePrompt(nil)
			var vErr *ValidationError
			So(errors.As(err, &vErr), ShouldBeTrue)
			So(vErr.Message, ShouldEqual, MsgNoPrompt)
		})

		Convey("空白 prompt", func() {
			_, err := NormalizePrompt(strPtr("   \n\t"))
			So(err.Error(), ShouldEqual, MsgEmptyPrompt)
		})

		Convey("按字符计数，1000 个字符通过", func() {
			p, err := NormalizePrompt(strPtr(strings.Repeat("梦", 1000)))
			So(err, ShouldBeNil)
			So([]rune(p), ShouldHaveLength, 1000)
		})

		Convey("1001 个字符被拒绝", func() {
			_, err := NormalizePrompt(strPtr(strings.Repeat("a", 1001)))
			So(err.Error(), ShouldEqual, MsgPromptTooLong)
		})

		Convey("去除首尾空白", func() {
			p, err := NormalizePrompt(strPtr("  a red fox  "))
			So(err, ShouldBeNil)
			So(p, ShouldEqual, "a red fox")
		})
	})
}

func TestNormalizeStyle(t *testing.T) {
	Convey("NormalizeStyle", t, func() {
		style, err := NormalizeStyle("  anime ")
		So(err, ShouldBeNil)
		So(style, ShouldEqual, "anime")

		style, err = NormalizeStyle(strings.Repeat("风", model.MaxStyleLength))
		So(err, ShouldBeNil)
		So([]rune(style), ShouldHaveLength, model.MaxStyleLength)

		_, err = NormalizeStyle(strings.Repeat("风", model.MaxStyleLength+1))
		So(err.Error(), ShouldEqual, MsgStyleTooLong)
	})
}

func TestBuildFinalPrompt(t *testing.T) {
	Convey("BuildFinalPrompt", t, func() {
		So(BuildFinalPrompt("a castle", "watercolor"), ShouldEqual, "a castle, watercolor style")
		So(BuildFinalPrompt("a castle", ""), ShouldEqual, "a castle")
		So(BuildFinalPrompt("a castle", "   "), ShouldEqual, "a castle")
		So(BuildFinalPrompt("a castle", " anime "), ShouldEqual, "a castle, anime style")
	})
}

func TestEnhancePrompt(t *testing.T) {
	Convey("EnhancePrompt", t, func() {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		enhancer := aimocks.NewMockEnhancer(ctrl)
		generator := genmocks.NewMockGenerator(ctrl)
		svc := NewPromptService(enhancer, generator, testConfig())
		ctx := context.Background()

		Convey("成功返回增强后的提示词", func() {
			enhancer.EXPECT().Enhance(gomock.Any(), "a cat").Return("  a fluffy cat, soft light  ", nil)

			resp, err := svc.EnhancePrompt(ctx, &model.EnhancePromptRequest{Prompt: strPtr(" a cat ")})
			So(err, ShouldBeNil)
			So(resp.Success, ShouldBeTrue)
			So(resp.EnhancedPrompt, ShouldEqual, "a fluffy cat, soft light")
		})

		Convey("校验失败时不调用上游", func() {
			_, err := svc.EnhancePrompt(ctx, &model.EnhancePromptRequest{Prompt: strPtr("")})
			var vErr *ValidationError
			So(errors.As(err, &vErr), ShouldBeTrue)
		})

		Convey("上游错误映射为 UpstreamError", func() {
			enhancer.EXPECT().Enhance(gomock.Any(), "a cat").Return("", errors.New("invalid api key"))

			_, err := svc.EnhancePrompt(ctx, &model.EnhancePromptRequest{Prompt: strPtr("a cat")})
			var uErr *UpstreamError
			So(errors.As(err, &uErr), ShouldBeTrue)
			So(uErr.Message, ShouldEqual, MsgEnhanceFailed)
			So(uErr.Message, ShouldNotContainSubstring, "api key")
		})

		Convey("上游限流使用限流提示", func() {
			enhancer.EXPECT().Enhance(gomock.Any(), "a cat").Return("", errors.New("googleapi: Error 429: RESOURCE_EXHAUSTED"))

			_, err := svc.EnhancePrompt(ctx, &model.EnhancePromptRequest{Prompt: strPtr("a cat")})
			var uErr *UpstreamError
			So(errors.As(err, &uErr), ShouldBeTrue)
			So(uErr.Message, ShouldEqual, MsgUpstreamRateLimit)
		})

		Convey("超时映射为 ErrUpstreamTimeout", func() {
			cfg := testConfig()
			cfg.Upstream.TextTimeout = 20 * time.Millisecond
			svc := NewPromptService(enhancer, generator, cfg)

			enhancer.EXPECT().Enhance(gomock.Any(), "a cat").DoAndReturn(func(ctx context.Context, _ string) (string, error) {
				<-ctx.Done()
				return "", ctx.Err()
			})

			_, err := svc.EnhancePrompt(ctx, &model.EnhancePromptRequest{Prompt: strPtr("a cat")})
			So(errors.Is(err, ErrUpstreamTimeout), ShouldBeTrue)
			var uErr *UpstreamError
			So(errors.As(err, &uErr), ShouldBeTrue)
			So(uErr.Message, ShouldEqual, MsgUpstreamTimeout)
		})
	})
}

func TestGenerateImage(t *testing.T) {
	Convey("GenerateImage", t, func() {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		enhancer := aimocks.NewMockEnhancer(ctrl)
		generator := genmocks.NewMockGenerator(ctrl)
		svc := NewPromptService(enhancer, generator, testConfig())
		ctx := context.Background()

		Convey("拼接风格并返回 base64 图片", func() {
			generator.EXPECT().Generate(gomock.Any(), "a castle, watercolor style").
				Return(&imagegen.Image{Data: []byte("img"), MIMEType: "image/png"}, nil)

			resp, err := svc.GenerateImage(ctx, &model.GenerateImageRequest{
				Prompt: strPtr("a castle"),
				Style:  "watercolor",
			})
			So(err, ShouldBeNil)
			So(resp.Success, ShouldBeTrue)
			So(resp.Image, ShouldEqual, "aW1n")
			So(resp.PromptUsed, ShouldEqual, "a castle, watercolor style")
			So(resp.MIMEType, ShouldEqual, "image/png")
		})

		Convey("无风格时直接使用提示词", func() {
			generator.EXPECT().Generate(gomock.Any(), "a castle").
				Return(&imagegen.Image{Data: []byte("img"), MIMEType: "image/jpeg"}, nil)

			resp, err := svc.GenerateImage(ctx, &model.GenerateImageRequest{Prompt: strPtr("a castle")})
			So(err, ShouldBeNil)
			So(resp.PromptUsed, ShouldEqual, "a castle")
		})

		Convey("超长提示词不调用上游", func() {
			_, err := svc.GenerateImage(ctx, &model.GenerateImageRequest{Prompt: strPtr(strings.Repeat("x", 1001))})
			So(err.Error(), ShouldEqual, MsgPromptTooLong)
		})

		Convey("超长风格不调用上游", func() {
			_, err := svc.GenerateImage(ctx, &model.GenerateImageRequest{
				Prompt: strPtr("a castle"),
				Style:  strings.Repeat("s", model.MaxStyleLength+1),
			})
			var vErr *ValidationError
			So(errors.As(err, &vErr), ShouldBeTrue)
			So(vErr.Message, ShouldEqual, MsgStyleTooLong)
		})

		Convey("上游无图片数据", func() {
			generator.EXPECT().Generate(gomock.Any(), "a castle").Return(&imagegen.Image{}, nil)

			_, err := svc.GenerateImage(ctx, &model.GenerateImageRequest{Prompt: strPtr("a castle")})
			So(errors.Is(err, imagegen.ErrNoImage), ShouldBeTrue)
		})

		Convey("WebP 转码失败时返回原图", func() {
			cfg := testConfig()
			cfg.Image.OutputFormat = config.OutputFormatWebP
			svc := NewPromptService(enhancer, generator, cfg)

			generator.EXPECT().Generate(gomock.Any(), "a castle").
				Return(&imagegen.Image{Data: []byte("not an image"), MIMEType: "image/png"}, nil)

			resp, err := svc.GenerateImage(ctx, &model.GenerateImageRequest{Prompt: strPtr("a castle")})
			So(err, ShouldBeNil)
			So(resp.MIMEType, ShouldEqual, "image/png")
		})

		Convey("超时映射为 ErrUpstreamTimeout", func() {
			cfg := testConfig()
			cfg.Upstream.ImageTimeout = 20 * time.Millisecond
			svc := NewPromptService(enhancer, generator, cfg)

			generator.EXPECT().Generate(gomock.Any(), "a castle").DoAndReturn(func(ctx context.Context, _ string) (*imagegen.Image, error) {
				<-ctx.Done()
				return nil, ctx.Err()
			})

			_, err := svc.GenerateImage(ctx, &model.GenerateImageRequest{Prompt: strPtr("a castle")})
			So(errors.Is(err, ErrUpstreamTimeout), ShouldBeTrue)
		})
	})
}
