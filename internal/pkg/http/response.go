package http

import (
	"github.com/gin-gonic/gin"
)

// ErrorResponse 错误响应（所有API共用）
// 前端只检查 success 字段，错误响应必须带上它
type ErrorResponse struct {
	Success bool   `json:"success" example:"false"`
	Error   string `json:"error" example:"Prompt cannot be empty"`
}

// NewErrorResponse 创建错误响应
func NewErrorResponse(message string) *ErrorResponse {
	return &ErrorResponse{
		Success: false,
		Error:   message,
	}
}

// AbortWithError 写入错误响应并终止后续处理
func AbortWithError(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, NewErrorResponse(message))
}
