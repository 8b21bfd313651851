package imagegen

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/volcengine/volcengine-go-sdk/service/arkruntime"
	"github.com/volcengine/volcengine-go-sdk/service/arkruntime/model"
)

const (
	defaultArkBaseURL    = "https://ark.cn-beijing.volces.com/api/v3"
	defaultArkImageModel = "doubao-seedream-3-0-t2i-250415"
)

// ArkConfig Ark 图片生成配置（火山引擎）
type ArkConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	Width   int
	Height  int
}

// ArkClient Ark 图片生成客户端
type ArkClient struct {
	client *arkruntime.Client
	model  string
	size   string
}

// NewArkClient 创建 Ark 图片生成客户端
func NewArkClient(cfg *ArkConfig) (*ArkClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("ark api key is required")
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultArkBaseURL
	}
	modelName := cfg.Model
	if modelName == "" {
		modelName = defaultArkImageModel
	}
	width, height := cfg.Width, cfg.Height
	if width <= 0 {
		width = defaultImageSize
	}
	if height <= 0 {
		height = defaultImageSize
	}

	return &ArkClient{
		client: arkruntime.NewClientWithApiKey(cfg.APIKey, arkruntime.WithBaseUrl(baseURL)),
		model:  modelName,
		size:   fmt.Sprintf("%dx%d", width, height),
	}, nil
}

// Generate 生成图片（同步接口，b64_json 返回）
func (c *ArkClient) Generate(ctx context.Context, prompt string) (*Image, error) {
	size := c.size
	responseFormat := "b64_json"
	watermark := false

	output, err := c.client.GenerateImages(ctx, model.GenerateImagesRequest{
		Model:          c.model,
		Prompt:         prompt,
		Size:           &size,
		ResponseFormat: &responseFormat,
		Watermark:      &watermark,
	})
	if err != nil {
		log.Error().Err(err).Msg("failed to call Ark GenerateImages API")
		return nil, fmt.Errorf("ark generate images: %w", err)
	}

	if len(output.Data) == 0 || output.Data[0].B64Json == nil {
		return nil, ErrNoImage
	}

	data, err := base64.StdEncoding.DecodeString(*output.Data[0].B64Json)
	if err != nil {
		return nil, fmt.Errorf("decode ark image data: %w", err)
	}

	return &Image{Data: data, MIMEType: "image/jpeg"}, nil
}
