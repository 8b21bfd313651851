package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"

	"dreamstream/internal/ai/component"
	"dreamstream/internal/config"
)

const (
	bedrockAnthropicVersion = "bedrock-2023-05-31"
	defaultBedrockModel     = "anthropic.claude-3-haiku-20240307-v1:0"
	defaultBedrockMaxTokens = 256
)

// BedrockEnhancer 通过 AWS Bedrock 调用 Claude 增强提示词
// 凭证走 AWS 默认凭证链，ai.api_key 不使用
type BedrockEnhancer struct {
	client      *bedrockruntime.Client
	modelID     string
	maxTokens   int
	temperature float64
}

// claudeMessageRequest Bedrock Claude 请求体
type claudeMessageRequest struct {
	AnthropicVersion string          `json:"anthropic_version"`
	MaxTokens        int             `json:"max_tokens"`
	System           string          `json:"system,omitempty"`
	Temperature      float64         `json:"temperature,omitempty"`
	Messages         []claudeMessage `json:"messages"`
}

type claudeMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// claudeMessageResponse Bedrock Claude 响应体
type claudeMessageResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	StopReason string `json:"stop_reason"`
}

// NewBedrockEnhancer 创建 Bedrock 提示词增强器
func NewBedrockEnhancer(ctx context.Context, cfg *config.AIConfig) (*BedrockEnhancer, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}

	modelID := cfg.Model
	if modelID == "" {
		modelID = defaultBedrockModel
	}
	maxTokens := cfg.Options.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultBedrockMaxTokens
	}

	return &BedrockEnhancer{
		client:      bedrockruntime.NewFromConfig(awsCfg),
		modelID:     modelID,
		maxTokens:   maxTokens,
		temperature: cfg.Options.Temperature,
	}, nil
}

// Enhance 调用 Bedrock InvokeModel
func (b *BedrockEnhancer) Enhance(ctx context.Context, prompt string) (string, error) {
	body, err := buildClaudeRequest(prompt, b.maxTokens, b.temperature)
	if err != nil {
		return "", err
	}

	output, err := b.client.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     aws.String(b.modelID),
		Body:        body,
		ContentType: aws.String("application/json"),
		Accept:      aws.String("application/json"),
	})
	if err != nil {
		return "", fmt.Errorf("bedrock invoke model: %w", err)
	}

	return parseClaudeResponse(output.Body)
}

func buildClaudeRequest(prompt string, maxTokens int, temperature float64) ([]byte, error) {
	payload := claudeMessageRequest{
		AnthropicVersion: bedrockAnthropicVersion,
		MaxTokens:        maxTokens,
		System:           component.SystemInstruction,
		Temperature:      temperature,
		Messages: []claudeMessage{
			{Role: "user", Content: component.UserMessage(prompt)},
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal bedrock request: %w", err)
	}
	return body, nil
}

func parseClaudeResponse(body []byte) (string, error) {
	var resp claudeMessageResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("unmarshal bedrock response: %w", err)
	}

	var sb strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	return component.CleanOutput(sb.String())
}
