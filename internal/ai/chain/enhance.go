package chain

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/rs/zerolog/log"

	"dreamstream/internal/ai/component"
	"dreamstream/internal/config"
)

// EnhanceChain 提示词增强链
// 工作流: 用户描述 -> 系统指令 + 用户消息 -> ChatModel -> 增强后的提示词
type EnhanceChain struct {
	chatModel model.BaseChatModel
	provider  string
}

// NewEnhanceChain 创建提示词增强链
func NewEnhanceChain(ctx context.Context, cfg *config.AIConfig) (*EnhanceChain, error) {
	chatModel, err := component.NewChatModel(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return NewEnhanceChainWithModel(chatModel, cfg.Provider), nil
}

// NewEnhanceChainWithModel 使用已有的 ChatModel 创建增强链
func NewEnhanceChainWithModel(chatModel model.BaseChatModel, provider string) *EnhanceChain {
	return &EnhanceChain{
		chatModel: chatModel,
		provider:  provider,
	}
}

// Enhance 执行提示词增强
func (c *EnhanceChain) Enhance(ctx context.Context, prompt string) (string, error) {
	messages := []*schema.Message{
		schema.SystemMessage(component.SystemInstruction),
		schema.UserMessage(component.UserMessage(prompt)),
	}

	resp, err := c.chatModel.Generate(ctx, messages)
	if err != nil {
		return "", fmt.Errorf("%s generate: %w", c.provider, err)
	}

	if resp.ResponseMeta != nil && resp.ResponseMeta.Usage != nil {
		log.Debug().
			Str("provider", c.provider).
			Int("prompt_tokens", resp.ResponseMeta.Usage.PromptTokens).
			Int("completion_tokens", resp.ResponseMeta.Usage.CompletionTokens).
			Msg("prompt enhanced")
	}

	return component.CleanOutput(resp.Content)
}
