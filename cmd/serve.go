package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"dreamstream/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the gateway server",
	Long:  `Start the DreamStream gateway with the specified configuration.`,
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	flags := serveCmd.Flags()

	// Server flags
	flags.StringP("host", "H", "127.0.0.1", "server host")
	flags.IntP("port", "p", 5000, "server port")
	flags.String("mode", "release", "server mode (debug/release/test)")
	flags.String("static-dir", "static", "directory holding the frontend index.html")

	// Provider flags
	flags.String("ai-provider", "gemini", "text provider (gemini/openai/azure/ark/bedrock)")
	flags.String("ai-model", "gemini-2.0-flash-exp", "text model name")
	flags.String("ai-api-key", "", "text provider API key (recommend using env: DREAMSTREAM_AI_API_KEY)")
	flags.String("image-provider", "pollinations", "image provider (pollinations/gemini/ark)")
	flags.StringSlice("cors-origins", nil, "allowed frontend origins")

	// Log flags
	flags.String("log-level", "info", "log level (trace/debug/info/warn/error/fatal)")
	flags.String("log-format", "console", "log format (json/console)")

	// Bind flags to viper
	_ = viper.BindPFlag("server.host", flags.Lookup("host"))
	_ = viper.BindPFlag("server.port", flags.Lookup("port"))
	_ = viper.BindPFlag("server.mode", flags.Lookup("mode"))
	_ = viper.BindPFlag("server.static_dir", flags.Lookup("static-dir"))
	_ = viper.BindPFlag("ai.provider", flags.Lookup("ai-provider"))
	_ = viper.BindPFlag("ai.model", flags.Lookup("ai-model"))
	_ = viper.BindPFlag("ai.api_key", flags.Lookup("ai-api-key"))
	_ = viper.BindPFlag("image.provider", flags.Lookup("image-provider"))
	_ = viper.BindPFlag("cors.allowed_origins", flags.Lookup("cors-origins"))
	_ = viper.BindPFlag("log.level", flags.Lookup("log-level"))
	_ = viper.BindPFlag("log.format", flags.Lookup("log-format"))
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()

	if err := cfg.Validate(); err != nil {
		log.Error().Err(err).Msg("invalid configuration")
		return fmt.Errorf("config validation failed: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	srv, err := server.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	// Graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		log.Info().Str("signal", sig.String()).Msg("received shutdown signal")
		cancel()
	}()

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	log.Info().
		Str("addr", addr).
		Str("mode", cfg.Server.Mode).
		Str("text_provider", cfg.AI.Provider).
		Str("image_provider", cfg.Image.Provider).
		Strs("cors_origins", cfg.CORS.AllowedOrigins).
		Msg("starting server")

	return srv.Run(ctx, addr)
}
