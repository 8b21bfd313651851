package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"dreamstream/internal/ai"
	"dreamstream/internal/config"
	"dreamstream/internal/model"
	"dreamstream/internal/pkg/ctxutil"
	"dreamstream/internal/pkg/imagegen"
	"dreamstream/internal/pkg/imageutil"
	"dreamstream/internal/pkg/logger"
	"dreamstream/internal/pkg/retry"
)

// logPromptMax 日志中提示词的最大长度
const logPromptMax = 100

// PromptService 提示词增强与图片生成服务
// 不持有跨请求的可变状态，可被多个请求并发调用
type PromptService struct {
	enhancer  ai.Enhancer
	generator imagegen.Generator
	upstream  config.UpstreamConfig
	image     config.ImageConfig
}

// NewPromptService 创建服务
func NewPromptService(enhancer ai.Enhancer, generator imagegen.Generator, cfg *config.Config) *PromptService {
	return &PromptService{
		enhancer:  enhancer,
		generator: generator,
		upstream:  cfg.Upstream,
		image:     cfg.Image,
	}
}

// NormalizePrompt 校验并清理提示词
func NormalizePrompt(prompt *string) (string, error) {
	if prompt == nil {
		return "", &ValidationError{Message: MsgNoPrompt}
	}
	p := strings.TrimSpace(*prompt)
	if p == "" {
		return "", &ValidationError{Message: MsgEmptyPrompt}
	}
	if utf8.RuneCountInString(p) > model.MaxPromptLength {
		return "", &ValidationError{Message: MsgPromptTooLong}
	}
	return p, nil
}

// NormalizeStyle 校验并清理风格，空风格合法
func NormalizeStyle(style string) (string, error) {
	style = strings.TrimSpace(style)
	if utf8.RuneCountInString(style) > model.MaxStyleLength {
		return "", &ValidationError{Message: MsgStyleTooLong}
	}
	return style, nil
}

// BuildFinalPrompt 拼接风格：有风格时为 "<prompt>, <style> style"
func BuildFinalPrompt(prompt, style string) string {
	style = strings.TrimSpace(style)
	if style == "" {
		return prompt
	}
	return prompt + ", " + style + " style"
}

// EnhancePrompt 调用文本服务增强提示词
func (s *PromptService) EnhancePrompt(ctx context.Context, req *model.EnhancePromptRequest) (*model.EnhancePromptResponse, error) {
	prompt, err := NormalizePrompt(req.Prompt)
	if err != nil {
		return nil, err
	}

	l := requestLogger(ctx).With().Str("op", "enhance").Logger()
	l.Info().Str("prompt", logger.Truncate(prompt, logPromptMax)).Msg("enhancing prompt")

	var enhanced string
	err = s.callUpstream(ctx, "text", s.upstream.TextTimeout, func(ctx context.Context) error {
		var callErr error
		enhanced, callErr = s.enhancer.Enhance(ctx, prompt)
		return callErr
	})
	if err != nil {
		l.Error().Err(err).Msg("prompt enhancement failed")
		return nil, upstreamError("enhance prompt", MsgEnhanceFailed, err)
	}

	l.Info().Int("length", utf8.RuneCountInString(enhanced)).Msg("prompt enhanced")
	return &model.EnhancePromptResponse{
		Success:        true,
		EnhancedPrompt: strings.TrimSpace(enhanced),
	}, nil
}

// GenerateImage 调用图片服务生成图片
func (s *PromptService) GenerateImage(ctx context.Context, req *model.GenerateImageRequest) (*model.GenerateImageResponse, error) {
	prompt, err := NormalizePrompt(req.Prompt)
	if err != nil {
		return nil, err
	}
	style, err := NormalizeStyle(req.Style)
	if err != nil {
		return nil, err
	}
	finalPrompt := BuildFinalPrompt(prompt, style)

	l := requestLogger(ctx).With().Str("op", "generate_image").Logger()
	l.Info().Str("prompt", logger.Truncate(finalPrompt, logPromptMax)).Msg("generating image")

	var img *imagegen.Image
	err = s.callUpstream(ctx, "image", s.upstream.ImageTimeout, func(ctx context.Context) error {
		var callErr error
		img, callErr = s.generator.Generate(ctx, finalPrompt)
		return callErr
	})
	if err != nil {
		l.Error().Err(err).Msg("image generation failed")
		return nil, upstreamError("generate image", MsgGenerateFailed, err)
	}
	if img == nil || len(img.Data) == 0 {
		l.Error().Msg("image provider returned no data")
		return nil, upstreamError("generate image", MsgGenerateFailed, imagegen.ErrNoImage)
	}

	data, mimeType := s.postProcess(l, img)
	l.Info().Int("bytes", len(data)).Str("mime_type", mimeType).Msg("image generated")

	return &model.GenerateImageResponse{
		Success:    true,
		Image:      imageutil.ToBase64(data),
		PromptUsed: finalPrompt,
		MIMEType:   mimeType,
	}, nil
}

// postProcess 按配置转码图片，转码失败时返回原图
func (s *PromptService) postProcess(l zerolog.Logger, img *imagegen.Image) ([]byte, string) {
	if s.image.OutputFormat != config.OutputFormatWebP || img.MIMEType == imageutil.MIMETypeWebP {
		return img.Data, img.MIMEType
	}
	webpData, err := imageutil.ConvertToWebP(img.Data, s.image.WebPQuality)
	if err != nil {
		l.Warn().Err(err).Msg("webp conversion failed, returning original image")
		return img.Data, img.MIMEType
	}
	return webpData, imageutil.MIMETypeWebP
}

// callUpstream 在超时约束下调用上游，按策略重试
func (s *PromptService) callUpstream(ctx context.Context, name string, timeout time.Duration, fn func(ctx context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	policy := retry.Policy{MaxRetries: s.upstream.MaxRetries, Backoff: s.upstream.RetryBackoff}
	err := retry.Do(ctx, policy, name, fn)
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w after %s: %w", ErrUpstreamTimeout, timeout, err)
	}
	return err
}

// upstreamError 将上游错误映射为面向前端的消息
func upstreamError(op, fallback string, err error) *UpstreamError {
	msg := fallback
	switch {
	case errors.Is(err, ErrUpstreamTimeout):
		msg = MsgUpstreamTimeout
	case retry.IsRateLimited(err):
		msg = MsgUpstreamRateLimit
	}
	return &UpstreamError{Op: op, Message: msg, Err: err}
}

// requestLogger 带 request_id 的 logger
func requestLogger(ctx context.Context) zerolog.Logger {
	l := log.Logger
	if id, ok := ctxutil.GetRequestID(ctx); ok {
		l = l.With().Str("request_id", id).Logger()
	}
	return l
}
