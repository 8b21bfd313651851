package ai

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"dreamstream/internal/ai/component"
	"dreamstream/internal/config"
)

const defaultGeminiTextModel = "gemini-2.0-flash-exp"

// GeminiEnhancer 使用 Gemini API 增强提示词
type GeminiEnhancer struct {
	client *genai.Client
	model  string
	cfg    *genai.GenerateContentConfig
}

// NewGeminiEnhancer 创建 Gemini 提示词增强器
func NewGeminiEnhancer(ctx context.Context, cfg *config.AIConfig) (*GeminiEnhancer, error) {
	clientCfg := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		clientCfg.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}

	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		return nil, fmt.Errorf("create Gemini client: %w", err)
	}

	modelName := cfg.Model
	if modelName == "" {
		modelName = defaultGeminiTextModel
	}

	genCfg := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(component.SystemInstruction, genai.RoleUser),
	}
	if cfg.Options.Temperature > 0 {
		genCfg.Temperature = genai.Ptr(float32(cfg.Options.Temperature))
	}
	if cfg.Options.TopP > 0 {
		genCfg.TopP = genai.Ptr(float32(cfg.Options.TopP))
	}
	if cfg.Options.MaxTokens > 0 {
		genCfg.MaxOutputTokens = int32(cfg.Options.MaxTokens)
	}

	return &GeminiEnhancer{
		client: client,
		model:  modelName,
		cfg:    genCfg,
	}, nil
}

// Enhance 调用 Gemini GenerateContent
func (g *GeminiEnhancer) Enhance(ctx context.Context, prompt string) (string, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(component.UserMessage(prompt)), g.cfg)
	if err != nil {
		return "", fmt.Errorf("gemini generate content: %w", err)
	}
	if len(resp.Candidates) == 0 {
		return "", component.ErrEmptyResponse
	}
	return component.CleanOutput(resp.Text())
}
