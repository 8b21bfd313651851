package id

import (
	"github.com/google/uuid"
)

// NewRequestID 生成请求ID
func NewRequestID() string {
	return uuid.New().String()
}

// IsValid 验证客户端传入的请求ID是否为合法 UUID
func IsValid(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
