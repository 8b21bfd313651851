package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"dreamstream/internal/config"
	"dreamstream/internal/pkg/logger"
)

var (
	cfgFile string
	cfg     *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "dreamstream",
	Short: "DreamStream - AI image generation gateway",
	Long: `DreamStream is a thin gateway between the DreamStream web frontend and
generative AI providers. It keeps provider API keys on the server, enhances
prompts with an LLM and generates images.`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "",
		"config file (default: ./configs/config.yaml)")

	_ = viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
}

func initConfig() {
	// .env 文件（可选）
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "Failed to load .env file: %v\n", err)
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath("./configs")
		viper.AddConfigPath(".")
		viper.AddConfigPath("$HOME/.dreamstream")
	}

	// 环境变量设置
	viper.SetEnvPrefix("DREAMSTREAM")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if errors.As(err, &configFileNotFoundError) {
			fmt.Fprintln(os.Stderr, "No config file found, using defaults and environment variables")
		} else {
			fmt.Fprintf(os.Stderr, "Failed to read config: %v\n", err)
			os.Exit(1)
		}
	}

	cfg = &config.Config{}
	if err := viper.Unmarshal(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to unmarshal config: %v\n", err)
		os.Exit(1)
	}
	applyLegacyEnv(cfg)

	if err := logger.Init(&cfg.Log); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to init logger: %v\n", err)
		os.Exit(1)
	}

	log.Debug().Str("config_file", viper.ConfigFileUsed()).Msg("configuration loaded")
}

// applyLegacyEnv 兼容旧版后端的 GOOGLE_API_KEY 环境变量
func applyLegacyEnv(c *config.Config) {
	if c.AI.APIKey != "" || c.AI.Provider != config.ProviderGemini {
		return
	}
	if key := os.Getenv("GOOGLE_API_KEY"); key != "" {
		c.AI.APIKey = key
	}
}

// setDefaults 注册所有配置项的默认值
// AutomaticEnv 只覆盖 viper 已知的 key，没有默认值的 key 也要在这里声明
func setDefaults() {
	// Server
	viper.SetDefault("server.host", "127.0.0.1")
	viper.SetDefault("server.port", 5000)
	viper.SetDefault("server.mode", "release")
	viper.SetDefault("server.read_timeout", "30s")
	viper.SetDefault("server.write_timeout", "90s")
	viper.SetDefault("server.static_dir", "static")

	// AI
	viper.SetDefault("ai.provider", config.ProviderGemini)
	viper.SetDefault("ai.model", "gemini-2.0-flash-exp")
	viper.SetDefault("ai.api_key", "")
	viper.SetDefault("ai.base_url", "")
	viper.SetDefault("ai.region", "")
	viper.SetDefault("ai.options.temperature", 0.7)
	viper.SetDefault("ai.options.max_tokens", 256)
	viper.SetDefault("ai.options.top_p", 0.0)

	// Image
	viper.SetDefault("image.provider", config.ProviderPollinations)
	viper.SetDefault("image.api_key", "")
	viper.SetDefault("image.model", "")
	viper.SetDefault("image.base_url", "") // 为空时各 provider 使用自己的默认地址
	viper.SetDefault("image.width", 1024)
	viper.SetDefault("image.height", 1024)
	viper.SetDefault("image.output_format", config.OutputFormatOriginal)
	viper.SetDefault("image.webp_quality", 80)

	// Upstream
	viper.SetDefault("upstream.text_timeout", "30s")
	viper.SetDefault("upstream.image_timeout", "60s")
	viper.SetDefault("upstream.max_retries", 0)
	viper.SetDefault("upstream.retry_backoff", "2s")

	// CORS
	viper.SetDefault("cors.allowed_origins", []string{"http://127.0.0.1:5000", "http://localhost:5000"})

	// Rate limit
	viper.SetDefault("ratelimit.enabled", true)
	viper.SetDefault("ratelimit.requests_per_minute", 10)
	viper.SetDefault("ratelimit.backend", config.RateLimitBackendMemory)

	// Log
	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.format", "console")
	viper.SetDefault("log.output", "stdout")
	viper.SetDefault("log.file_path", "")
	viper.SetDefault("log.time_format", "RFC3339")

	// Redis
	viper.SetDefault("redis.addr", "")
	viper.SetDefault("redis.password", "")
	viper.SetDefault("redis.db", 0)
}

// GetConfig returns the global configuration
func GetConfig() *config.Config {
	return cfg
}
