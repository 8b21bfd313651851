package component

import (
	"errors"
	"strings"
)

// SystemInstruction 提示词增强的系统指令
const SystemInstruction = "You are an expert AI art prompt engineer. Rewrite the following user description " +
	"into a detailed, high-quality image generation prompt. Include details about lighting, " +
	"camera angle, texture, and mood. Keep it under 60 words. Output ONLY the raw prompt, " +
	"no intro/outro text."

// ErrEmptyResponse 上游返回了空文本
var ErrEmptyResponse = errors.New("no response from text provider")

// UserMessage 构建发送给模型的用户消息
func UserMessage(prompt string) string {
	return "User Input: " + prompt
}

// CleanOutput 清理模型输出，空输出视为错误
func CleanOutput(text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}
