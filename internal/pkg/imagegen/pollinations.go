package imagegen

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
)

const (
	defaultPollinationsURL = "https://image.pollinations.ai"
	defaultImageSize       = 1024
	maxImageBytes          = 20 << 20
)

// PollinationsConfig Pollinations.AI 配置（免费服务，无需 API Key）
type PollinationsConfig struct {
	BaseURL string
	Width   int
	Height  int
}

// PollinationsClient Pollinations.AI 图片生成客户端
// 超时由调用方的 ctx 控制
type PollinationsClient struct {
	httpClient *http.Client
	baseURL    string
	width      int
	height     int
}

// NewPollinationsClient 创建 Pollinations 客户端
func NewPollinationsClient(cfg *PollinationsConfig) *PollinationsClient {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultPollinationsURL
	}
	width, height := cfg.Width, cfg.Height
	if width <= 0 {
		width = defaultImageSize
	}
	if height <= 0 {
		height = defaultImageSize
	}

	return &PollinationsClient{
		httpClient: &http.Client{},
		baseURL:    baseURL,
		width:      width,
		height:     height,
	}
}

// buildURL 构建请求地址
// GET {base}/prompt/{prompt}?width=W&height=H&nologo=true&enhance=true
func (c *PollinationsClient) buildURL(prompt string) string {
	q := url.Values{}
	q.Set("width", strconv.Itoa(c.width))
	q.Set("height", strconv.Itoa(c.height))
	q.Set("nologo", "true")
	q.Set("enhance", "true")
	return c.baseURL + "/prompt/" + url.PathEscape(prompt) + "?" + q.Encode()
}

// Generate 生成图片
func (c *PollinationsClient) Generate(ctx context.Context, prompt string) (*Image, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.buildURL(prompt), nil)
	if err != nil {
		return nil, fmt.Errorf("build pollinations request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("pollinations request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("pollinations returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read pollinations response: %w", err)
	}
	if len(data) == 0 {
		return nil, ErrNoImage
	}
	if len(data) > maxImageBytes {
		return nil, fmt.Errorf("pollinations image exceeds %d bytes", maxImageBytes)
	}

	mimeType := resp.Header.Get("Content-Type")
	if !strings.HasPrefix(mimeType, "image/") {
		mimeType = http.DetectContentType(data)
	}
	if !strings.HasPrefix(mimeType, "image/") {
		return nil, fmt.Errorf("pollinations returned non-image content (%s)", mimeType)
	}
	if i := strings.Index(mimeType, ";"); i >= 0 {
		mimeType = strings.TrimSpace(mimeType[:i])
	}

	log.Debug().Int("bytes", len(data)).Str("mime_type", mimeType).Msg("pollinations image received")
	return &Image{Data: data, MIMEType: mimeType}, nil
}
