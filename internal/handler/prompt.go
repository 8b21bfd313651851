package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"dreamstream/internal/model"
	httputil "dreamstream/internal/pkg/http"
	"dreamstream/internal/service"
)

// PromptHandler 提示词增强与图片生成处理器
type PromptHandler struct {
	promptSvc *service.PromptService
}

// NewPromptHandler 创建处理器
func NewPromptHandler(promptSvc *service.PromptService) *PromptHandler {
	return &PromptHandler{
		promptSvc: promptSvc,
	}
}

// EnhancePrompt 提示词增强
//
//	@Summary		提示词增强
//	@Description	将简短描述扩写为适合图片生成的详细提示词
//	@Tags			prompt
//	@Accept			json
//	@Produce		json
//	@Param			request	body		model.EnhancePromptRequest	true	"提示词"
//	@Success		200		{object}	model.EnhancePromptResponse
//	@Failure		400		{object}	httputil.ErrorResponse
//	@Failure		413		{object}	httputil.ErrorResponse
//	@Failure		429		{object}	httputil.ErrorResponse
//	@Failure		502		{object}	httputil.ErrorResponse
//	@Failure		504		{object}	httputil.ErrorResponse
//	@Router			/api/enhance-prompt [post]
func (h *PromptHandler) EnhancePrompt(c *gin.Context) {
	var req model.EnhancePromptRequest
	if !bindRequest(c, &req) {
		return
	}

	resp, err := h.promptSvc.EnhancePrompt(c.Request.Context(), &req)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// GenerateImage 图片生成
//
//	@Summary		图片生成
//	@Description	根据提示词和可选风格生成图片，返回 base64 编码
//	@Tags			image
//	@Accept			json
//	@Produce		json
//	@Param			request	body		model.GenerateImageRequest	true	"提示词与风格"
//	@Success		200		{object}	model.GenerateImageResponse
//	@Failure		400		{object}	httputil.ErrorResponse
//	@Failure		413		{object}	httputil.ErrorResponse
//	@Failure		429		{object}	httputil.ErrorResponse
//	@Failure		502		{object}	httputil.ErrorResponse
//	@Failure		504		{object}	httputil.ErrorResponse
//	@Router			/api/generate-image [post]
func (h *PromptHandler) GenerateImage(c *gin.Context) {
	var req model.GenerateImageRequest
	if !bindRequest(c, &req) {
		return
	}

	resp, err := h.promptSvc.GenerateImage(c.Request.Context(), &req)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// bindRequest 限制请求体大小并解析 JSON，失败时写入错误响应
func bindRequest(c *gin.Context, req any) bool {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, model.MaxRequestBodyBytes)
	if err := c.ShouldBindJSON(req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			httputil.AbortWithError(c, http.StatusRequestEntityTooLarge, service.MsgBodyTooLarge)
			return false
		}
		httputil.AbortWithError(c, http.StatusBadRequest, service.MsgNoPrompt)
		return false
	}
	return true
}

// NotFound 未知路由
func NotFound(c *gin.Context) {
	httputil.AbortWithError(c, http.StatusNotFound, "Endpoint not found")
}

// writeServiceError 将 service 错误映射为 HTTP 状态码
func writeServiceError(c *gin.Context, err error) {
	var vErr *service.ValidationError
	if errors.As(err, &vErr) {
		httputil.AbortWithError(c, http.StatusBadRequest, vErr.Message)
		return
	}

	status := http.StatusBadGateway
	if errors.Is(err, service.ErrUpstreamTimeout) {
		status = http.StatusGatewayTimeout
	}

	msg := "Upstream request failed"
	var uErr *service.UpstreamError
	if errors.As(err, &uErr) {
		msg = uErr.Message
	}
	httputil.AbortWithError(c, status, msg)
}
