package config

import (
	"errors"
	"fmt"
	"time"
)

// AI / 图片提供方
const (
	ProviderGemini       = "gemini"
	ProviderOpenAI       = "openai"
	ProviderAzure        = "azure"
	ProviderArk          = "ark"
	ProviderBedrock      = "bedrock"
	ProviderPollinations = "pollinations"
)

// 图片输出格式
const (
	OutputFormatOriginal = "original"
	OutputFormatWebP     = "webp"
)

// 限流后端
const (
	RateLimitBackendMemory = "memory"
	RateLimitBackendRedis  = "redis"
)

// Config 应用配置根结构
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	AI        AIConfig        `mapstructure:"ai"`
	Image     ImageConfig     `mapstructure:"image"`
	Upstream  UpstreamConfig  `mapstructure:"upstream"`
	CORS      CORSConfig      `mapstructure:"cors"`
	RateLimit RateLimitConfig `mapstructure:"ratelimit"`
	Log       LogConfig       `mapstructure:"log"`
	Redis     RedisConfig     `mapstructure:"redis"`
}

// ServerConfig HTTP 服务器配置
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	Mode         string        `mapstructure:"mode"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	StaticDir    string        `mapstructure:"static_dir"` // 前端 index.html 所在目录
}

// AIConfig 文本增强服务配置
type AIConfig struct {
	Provider string          `mapstructure:"provider"`
	APIKey   string          `mapstructure:"api_key"`
	Model    string          `mapstructure:"model"`
	BaseURL  string          `mapstructure:"base_url"`
	Region   string          `mapstructure:"region"` // 仅 bedrock 使用
	Options  AIOptionsConfig `mapstructure:"options"`
}

// AIOptionsConfig AI 模型参数
type AIOptionsConfig struct {
	Temperature float64 `mapstructure:"temperature"`
	MaxTokens   int     `mapstructure:"max_tokens"`
	TopP        float64 `mapstructure:"top_p"`
}

// ImageConfig 图片生成服务配置
type ImageConfig struct {
	Provider     string  `mapstructure:"provider"`
	APIKey       string  `mapstructure:"api_key"` // 为空时 gemini 复用 ai.api_key
	Model        string  `mapstructure:"model"`
	BaseURL      string  `mapstructure:"base_url"`
	Width        int     `mapstructure:"width"`
	Height       int     `mapstructure:"height"`
	OutputFormat string  `mapstructure:"output_format"` // original, webp
	WebPQuality  float32 `mapstructure:"webp_quality"`
}

// UpstreamConfig 上游调用约束
type UpstreamConfig struct {
	TextTimeout  time.Duration `mapstructure:"text_timeout"`
	ImageTimeout time.Duration `mapstructure:"image_timeout"`
	MaxRetries   int           `mapstructure:"max_retries"`
	RetryBackoff time.Duration `mapstructure:"retry_backoff"`
}

// CORSConfig 跨域配置
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// RateLimitConfig 限流配置
type RateLimitConfig struct {
	Enabled           bool   `mapstructure:"enabled"`
	RequestsPerMinute int    `mapstructure:"requests_per_minute"`
	Backend           string `mapstructure:"backend"` // memory, redis
}

// LogConfig 日志配置 (Zerolog)
type LogConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	Output     string `mapstructure:"output"`
	FilePath   string `mapstructure:"file_path"`
	TimeFormat string `mapstructure:"time_format"`
}

// RedisConfig Redis 配置
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// ImageAPIKey 返回图片服务实际使用的 API Key
func (c *Config) ImageAPIKey() string {
	if c.Image.APIKey != "" {
		return c.Image.APIKey
	}
	if c.Image.Provider == c.AI.Provider {
		return c.AI.APIKey
	}
	return ""
}

// Validate 验证配置有效性
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return errors.New("invalid server port")
	}

	validModes := map[string]bool{"debug": true, "release": true, "test": true}
	if !validModes[c.Server.Mode] {
		return errors.New("invalid server mode, must be debug/release/test")
	}

	switch c.AI.Provider {
	case ProviderGemini, ProviderOpenAI, ProviderAzure, ProviderArk:
		// 缺少密钥是启动期致命错误，不是请求级错误
		if c.AI.APIKey == "" {
			return fmt.Errorf("ai.api_key is required for provider %q", c.AI.Provider)
		}
	case ProviderBedrock:
		if c.AI.Region == "" {
			return errors.New("ai.region is required for provider \"bedrock\"")
		}
	default:
		return fmt.Errorf("unsupported ai provider: %s", c.AI.Provider)
	}

	switch c.Image.Provider {
	case ProviderPollinations:
	case ProviderGemini, ProviderArk:
		if c.ImageAPIKey() == "" {
			return fmt.Errorf("image.api_key is required for provider %q", c.Image.Provider)
		}
	default:
		return fmt.Errorf("unsupported image provider: %s", c.Image.Provider)
	}

	if c.Image.OutputFormat != OutputFormatOriginal && c.Image.OutputFormat != OutputFormatWebP {
		return errors.New("invalid image output format, must be original/webp")
	}
	if c.Image.OutputFormat == OutputFormatWebP && (c.Image.WebPQuality <= 0 || c.Image.WebPQuality > 100) {
		return errors.New("image.webp_quality must be in (0, 100]")
	}

	if c.Upstream.TextTimeout <= 0 || c.Upstream.ImageTimeout <= 0 {
		return errors.New("upstream timeouts must be positive")
	}
	if c.Upstream.MaxRetries < 0 {
		return errors.New("upstream.max_retries must not be negative")
	}

	if len(c.CORS.AllowedOrigins) == 0 {
		return errors.New("cors.allowed_origins must name at least one origin")
	}

	if c.RateLimit.Enabled {
		if c.RateLimit.RequestsPerMinute <= 0 {
			return errors.New("ratelimit.requests_per_minute must be positive")
		}
		if c.RateLimit.Backend != RateLimitBackendMemory && c.RateLimit.Backend != RateLimitBackendRedis {
			return errors.New("invalid ratelimit backend, must be memory/redis")
		}
	}

	return nil
}
