package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/cors"
	"github.com/rs/zerolog/log"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "dreamstream/docs" // swagger 文档注册
	"dreamstream/internal/ai"
	"dreamstream/internal/config"
	"dreamstream/internal/handler"
	"dreamstream/internal/pkg/cache"
	"dreamstream/internal/pkg/imagegen"
	"dreamstream/internal/pkg/ratelimit"
	"dreamstream/internal/server/middleware"
	"dreamstream/internal/service"
)

// Server HTTP 服务器
type Server struct {
	cfg       *config.Config
	engine    *gin.Engine
	handler   http.Handler
	redis     *cache.RedisCache
	limiter   ratelimit.Limiter
	promptSvc *service.PromptService
}

// New 创建服务器实例，按配置初始化上游客户端
func New(ctx context.Context, cfg *config.Config) (*Server, error) {
	enhancer, err := ai.NewEnhancer(ctx, &cfg.AI)
	if err != nil {
		return nil, fmt.Errorf("init text provider: %w", err)
	}

	generator, err := imagegen.NewGenerator(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("init image provider: %w", err)
	}

	// 初始化 Redis (可选)
	var redisCache *cache.RedisCache
	if cfg.RateLimit.Enabled && cfg.RateLimit.Backend == config.RateLimitBackendRedis && cfg.Redis.Addr != "" {
		rc, err := cache.NewRedisCache(&cfg.Redis)
		if err != nil {
			log.Warn().Err(err).Msg("failed to connect to Redis, continuing without it")
		} else {
			redisCache = rc
			log.Info().Str("addr", cfg.Redis.Addr).Msg("connected to Redis")
		}
	}

	var limiter ratelimit.Limiter
	if cfg.RateLimit.Enabled {
		limiter = ratelimit.New(&cfg.RateLimit, redisCache)
	}

	srv := NewWithDeps(cfg, enhancer, generator, limiter)
	srv.redis = redisCache
	return srv, nil
}

// NewWithDeps 使用给定依赖创建服务器，limiter 为 nil 时不限流
func NewWithDeps(cfg *config.Config, enhancer ai.Enhancer, generator imagegen.Generator, limiter ratelimit.Limiter) *Server {
	// 设置 Gin 模式
	switch cfg.Server.Mode {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	srv := &Server{
		cfg:       cfg,
		engine:    gin.New(),
		limiter:   limiter,
		promptSvc: service.NewPromptService(enhancer, generator, cfg),
	}

	srv.setupRoutes()

	// CORS 包在 gin 外层，预检请求不进入路由
	srv.handler = cors.New(cors.Options{
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type"},
		ExposedHeaders: []string{middleware.RequestIDHeader},
	}).Handler(srv.engine)

	return srv
}

// setupRoutes 设置路由
func (s *Server) setupRoutes() {
	// 全局中间件
	s.engine.Use(middleware.Recovery())
	s.engine.Use(middleware.RequestID())
	s.engine.Use(middleware.Logger())

	healthHandler := handler.NewHealthHandler(s.cfg)
	frontendHandler := handler.NewFrontendHandler(s.cfg.Server.StaticDir)
	promptHandler := handler.NewPromptHandler(s.promptSvc)

	// 前端页面
	s.engine.GET("/", frontendHandler.Index)

	// 健康检查
	s.engine.GET("/health", healthHandler.Health)

	// Swagger 文档
	s.engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	api := s.engine.Group("/api")
	{
		api.GET("/health", healthHandler.Health)

		// 调用上游的接口共享限流预算
		upstream := api.Group("")
		if s.limiter != nil {
			upstream.Use(middleware.RateLimit(s.limiter))
		}
		upstream.POST("/enhance-prompt", promptHandler.EnhancePrompt)
		upstream.POST("/generate-image", promptHandler.GenerateImage)
	}

	s.engine.NoRoute(handler.NotFound)
}

// Run 启动服务器
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.handler,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
	}

	// 启动服务器
	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// 等待关闭信号或错误
	select {
	case <-ctx.Done():
		log.Info().Msg("shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.Upstream.ImageTimeout)
		defer cancel()
		err := srv.Shutdown(shutdownCtx)

		if s.redis != nil {
			if err := s.redis.Close(); err != nil {
				log.Error().Err(err).Msg("failed to close Redis connection")
			}
		}

		return err
	case err := <-errCh:
		return err
	}
}

// Handler 获取带 CORS 的 HTTP handler (用于测试)
func (s *Server) Handler() http.Handler {
	return s.handler
}
