package imagegen

//go:generate mockgen -destination=mocks/generator.go -package=mocks dreamstream/internal/pkg/imagegen Generator

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"dreamstream/internal/config"
)

// ErrNoImage 上游响应中没有图片数据
var ErrNoImage = errors.New("no image data in response")

// Image 上游返回的图片
type Image struct {
	Data     []byte
	MIMEType string
}

// Generator 图片生成提供者接口
// 统一抽象 Pollinations、Gemini、Ark 三种图片生成方式
type Generator interface {
	// Generate 根据最终提示词生成一张图片
	Generate(ctx context.Context, prompt string) (*Image, error)
}

// NewGenerator 根据 image.provider 创建图片生成器
func NewGenerator(ctx context.Context, cfg *config.Config) (Generator, error) {
	var (
		gen Generator
		err error
	)

	baseURL := providerBaseURL(cfg.Image.Provider, cfg.Image.BaseURL)

	switch cfg.Image.Provider {
	case config.ProviderPollinations:
		gen = NewPollinationsClient(&PollinationsConfig{
			BaseURL: baseURL,
			Width:   cfg.Image.Width,
			Height:  cfg.Image.Height,
		})
	case config.ProviderGemini:
		gen, err = NewGeminiClient(ctx, &GeminiConfig{
			APIKey:  cfg.ImageAPIKey(),
			Model:   cfg.Image.Model,
			BaseURL: baseURL,
		})
	case config.ProviderArk:
		gen, err = NewArkClient(&ArkConfig{
			APIKey:  cfg.ImageAPIKey(),
			BaseURL: baseURL,
			Model:   cfg.Image.Model,
			Width:   cfg.Image.Width,
			Height:  cfg.Image.Height,
		})
	default:
		return nil, fmt.Errorf("unsupported image provider: %s", cfg.Image.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("init %s image generator: %w", cfg.Image.Provider, err)
	}

	log.Info().Str("provider", cfg.Image.Provider).Msg("initialized image generator")
	return gen, nil
}

// providerBaseURL 返回 provider 实际使用的 base_url
// Pollinations 地址只对 pollinations 生效，其余 provider 退回各自的默认地址
func providerBaseURL(provider, baseURL string) string {
	if provider == config.ProviderPollinations {
		return baseURL
	}
	if strings.HasPrefix(strings.TrimRight(baseURL, "/"), defaultPollinationsURL) {
		log.Warn().Str("provider", provider).Str("base_url", baseURL).Msg("ignoring pollinations base_url for non-pollinations image provider")
		return ""
	}
	return baseURL
}
