package ai

//go:generate mockgen -destination=mocks/enhancer.go -package=mocks dreamstream/internal/ai Enhancer

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"dreamstream/internal/ai/chain"
	"dreamstream/internal/config"
)

// Enhancer 提示词增强能力
// 职责: 把用户的简短描述改写为详细的图片生成提示词
type Enhancer interface {
	Enhance(ctx context.Context, prompt string) (string, error)
}

// NewEnhancer 根据 ai.provider 创建提示词增强器
func NewEnhancer(ctx context.Context, cfg *config.AIConfig) (Enhancer, error) {
	var (
		enhancer Enhancer
		err      error
	)

	switch cfg.Provider {
	case config.ProviderGemini:
		enhancer, err = NewGeminiEnhancer(ctx, cfg)
	case config.ProviderOpenAI, config.ProviderAzure, config.ProviderArk:
		enhancer, err = chain.NewEnhanceChain(ctx, cfg)
	case config.ProviderBedrock:
		enhancer, err = NewBedrockEnhancer(ctx, cfg)
	default:
		return nil, fmt.Errorf("unsupported AI provider: %s", cfg.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("init %s enhancer: %w", cfg.Provider, err)
	}

	log.Info().Str("provider", cfg.Provider).Str("model", cfg.Model).Msg("initialized prompt enhancer")
	return enhancer, nil
}
