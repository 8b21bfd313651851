package handler

import (
	"errors"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

const setupRequiredHTML = `<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>DreamStream AI - Setup Required</title></head>
<body>
<h1>Setup Required</h1>
<p>The frontend file <code>index.html</code> was not found.</p>
<p>Place <code>index.html</code> in the configured static directory and restart the server.</p>
<p>The API is available at <code>/api/health</code>.</p>
</body>
</html>`

// FrontendHandler 前端页面处理器
type FrontendHandler struct {
	indexPath string
}

// NewFrontendHandler 创建前端页面处理器
func NewFrontendHandler(staticDir string) *FrontendHandler {
	return &FrontendHandler{
		indexPath: filepath.Join(staticDir, "index.html"),
	}
}

// Index 返回 index.html，文件不存在时返回安装提示页
func (h *FrontendHandler) Index(c *gin.Context) {
	info, err := os.Stat(h.indexPath)
	if err == nil && !info.IsDir() {
		c.File(h.indexPath)
		return
	}
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Warn().Err(err).Str("path", h.indexPath).Msg("failed to stat frontend file")
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(setupRequiredHTML))
}
