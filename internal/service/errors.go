package service

import (
	"errors"
	"fmt"
)

// 面向前端的错误消息
const (
	MsgNoPrompt          = "No prompt provided"
	MsgEmptyPrompt       = "Prompt cannot be empty"
	MsgPromptTooLong     = "Prompt too long (max 1000 characters)"
	MsgStyleTooLong      = "Style too long (max 100 characters)"
	MsgBodyTooLarge      = "Request body too large"
	MsgUpstreamTimeout   = "Request timed out. Please try again."
	MsgUpstreamRateLimit = "Rate limit exceeded. Please wait a minute and try again."
	MsgEnhanceFailed     = "Prompt enhancement failed. Please try again."
	MsgGenerateFailed    = "Image generation failed. Please try again."
)

// ErrUpstreamTimeout 上游调用超出配置的超时时间
var ErrUpstreamTimeout = errors.New("upstream request timed out")

// ValidationError 输入校验错误，不会发送到上游
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// UpstreamError 上游调用失败
// Message 可直接返回给前端，Err 只用于日志
type UpstreamError struct {
	Op      string
	Message string
	Err     error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}
