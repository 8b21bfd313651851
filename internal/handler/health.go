package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"dreamstream/internal/config"
	"dreamstream/internal/model"
	"dreamstream/internal/pkg/logger"
)

// Version 服务版本，构建时可通过 -ldflags 覆盖
var Version = "1.0.0"

// HealthHandler 健康检查处理器
type HealthHandler struct {
	resp model.HealthResponse
}

// NewHealthHandler 创建健康检查处理器
// 响应在启动时确定，不访问上游服务
func NewHealthHandler(cfg *config.Config) *HealthHandler {
	return &HealthHandler{
		resp: model.HealthResponse{
			Status:        "healthy",
			Service:       logger.ServiceName,
			Version:       Version,
			APIKeyLoaded:  cfg.AI.APIKey != "" || cfg.AI.Provider == config.ProviderBedrock,
			TextProvider:  cfg.AI.Provider,
			ImageProvider: cfg.Image.Provider,
		},
	}
}

// Health 健康检查
//
//	@Summary	健康检查
//	@Tags		health
//	@Produce	json
//	@Success	200	{object}	model.HealthResponse
//	@Router		/api/health [get]
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, h.resp)
}
