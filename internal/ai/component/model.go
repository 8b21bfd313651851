package component

import (
	"context"
	"fmt"

	arkext "github.com/cloudwego/eino-ext/components/model/ark"
	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"

	"dreamstream/internal/config"
)

// NewChatModel 创建 Eino ChatModel
// 支持: openai, azure, ark
func NewChatModel(ctx context.Context, cfg *config.AIConfig) (model.BaseChatModel, error) {
	switch cfg.Provider {
	case config.ProviderOpenAI:
		return newOpenAIChatModel(ctx, cfg, false)
	case config.ProviderAzure:
		if cfg.BaseURL == "" {
			return nil, fmt.Errorf("ai.base_url is required for azure")
		}
		return newOpenAIChatModel(ctx, cfg, true)
	case config.ProviderArk:
		return newArkChatModel(ctx, cfg)
	default:
		return nil, fmt.Errorf("unsupported chat model provider: %s", cfg.Provider)
	}
}

// newOpenAIChatModel 创建 OpenAI / Azure OpenAI ChatModel
func newOpenAIChatModel(ctx context.Context, cfg *config.AIConfig, byAzure bool) (model.BaseChatModel, error) {
	modelName := cfg.Model
	if modelName == "" {
		modelName = "gpt-4o-mini"
	}

	modelCfg := &openai.ChatModelConfig{
		Model:   modelName,
		APIKey:  cfg.APIKey,
		BaseURL: cfg.BaseURL,
		ByAzure: byAzure,
	}

	if cfg.Options.Temperature > 0 {
		temp := float32(cfg.Options.Temperature)
		modelCfg.Temperature = &temp
	}
	if cfg.Options.MaxTokens > 0 {
		maxTokens := cfg.Options.MaxTokens
		modelCfg.MaxTokens = &maxTokens
	}
	if cfg.Options.TopP > 0 {
		topP := float32(cfg.Options.TopP)
		modelCfg.TopP = &topP
	}

	return openai.NewChatModel(ctx, modelCfg)
}

// newArkChatModel 创建 Ark ChatModel（火山引擎）
func newArkChatModel(ctx context.Context, cfg *config.AIConfig) (model.BaseChatModel, error) {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "https://ark.cn-beijing.volces.com/api/v3"
	}

	modelName := cfg.Model
	if modelName == "" {
		modelName = "doubao-seed-1-6-flash-250615"
	}

	modelCfg := &arkext.ChatModelConfig{
		Model:   modelName,
		APIKey:  cfg.APIKey,
		BaseURL: baseURL,
	}

	if cfg.Options.Temperature > 0 {
		temp := float32(cfg.Options.Temperature)
		modelCfg.Temperature = &temp
	}
	if cfg.Options.MaxTokens > 0 {
		maxTokens := cfg.Options.MaxTokens
		modelCfg.MaxTokens = &maxTokens
	}
	if cfg.Options.TopP > 0 {
		topP := float32(cfg.Options.TopP)
		modelCfg.TopP = &topP
	}

	return arkext.NewChatModel(ctx, modelCfg)
}
