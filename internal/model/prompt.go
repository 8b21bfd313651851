package model

// MaxPromptLength 提示词最大长度（按字符计）
const MaxPromptLength = 1000

// MaxStyleLength 风格最大长度（按字符计）
const MaxStyleLength = 100

// MaxRequestBodyBytes 请求体大小上限
const MaxRequestBodyBytes = 64 << 10

// EnhancePromptRequest 提示词增强请求
// Prompt 为指针以区分「未提供」与「空字符串」
type EnhancePromptRequest struct {
	Prompt *string `json:"prompt" example:"a cat in space"`
}

// EnhancePromptResponse 提示词增强响应
type EnhancePromptResponse struct {
	Success        bool   `json:"success" example:"true"`
	EnhancedPrompt string `json:"enhanced_prompt"`
}

// GenerateImageRequest 图片生成请求
type GenerateImageRequest struct {
	Prompt *string `json:"prompt" example:"a cat in space"`
	Style  string  `json:"style,omitempty" example:"anime"` // 可选，最多 100 个字符，追加为 "<prompt>, <style> style"
}

// GenerateImageResponse 图片生成响应
type GenerateImageResponse struct {
	Success    bool   `json:"success" example:"true"`
	Image      string `json:"image"`       // base64 编码的图片
	PromptUsed string `json:"prompt_used"` // 实际发送给上游的提示词
	MIMEType   string `json:"mime_type" example:"image/jpeg"`
}

// HealthResponse 健康检查响应
type HealthResponse struct {
	Status        string `json:"status" example:"healthy"`
	Service       string `json:"service"`
	Version       string `json:"version"`
	APIKeyLoaded  bool   `json:"api_key_loaded"`
	TextProvider  string `json:"text_provider"`
	ImageProvider string `json:"image_provider"`
}
