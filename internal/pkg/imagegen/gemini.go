package imagegen

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"google.golang.org/genai"
)

const defaultGeminiImageModel = "gemini-2.5-flash-image"

// GeminiConfig Gemini 图片生成配置
type GeminiConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}

// GeminiClient Gemini 图片生成客户端
// 图片以 InlineData 形式返回
type GeminiClient struct {
	client *genai.Client
	model  string
}

// NewGeminiClient 创建 Gemini 图片生成客户端
func NewGeminiClient(ctx context.Context, cfg *GeminiConfig) (*GeminiClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}

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
		modelName = defaultGeminiImageModel
	}

	return &GeminiClient{client: client, model: modelName}, nil
}

// Generate 生成图片
func (c *GeminiClient) Generate(ctx context.Context, prompt string) (*Image, error) {
	result, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(prompt), &genai.GenerateContentConfig{
		ResponseModalities: []string{"TEXT", "IMAGE"},
	})
	if err != nil {
		return nil, fmt.Errorf("gemini generate image: %w", err)
	}

	for _, candidate := range result.Candidates {
		if candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part.InlineData != nil && len(part.InlineData.Data) > 0 {
				log.Debug().Int("bytes", len(part.InlineData.Data)).Msg("gemini image received")
				mimeType := part.InlineData.MIMEType
				if mimeType == "" {
					mimeType = "image/png"
				}
				return &Image{Data: part.InlineData.Data, MIMEType: mimeType}, nil
			}
		}
	}

	return nil, ErrNoImage
}
