package imageutil

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	_ "image/gif"  // GIF 解码器注册
	_ "image/jpeg" // JPEG 解码器注册
	_ "image/png"  // PNG 解码器注册

	"github.com/kolesa-team/go-webp/encoder"
	"github.com/kolesa-team/go-webp/webp"
	"github.com/rs/zerolog/log"
)

// MIMETypeWebP WebP 的 MIME 类型
const MIMETypeWebP = "image/webp"

// ToBase64 图片二进制转为标准 base64 字符串
func ToBase64(data []byte) string {
	return base64.StdEncoding.EncodeToString(data)
}

// ConvertToWebP 将 PNG/JPEG/GIF 图片转为有损 WebP
func ConvertToWebP(data []byte, quality float32) ([]byte, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	options, err := encoder.NewLossyEncoderOptions(encoder.PresetDefault, quality)
	if err != nil {
		return nil, fmt.Errorf("create WebP encoder options: %w", err)
	}

	var buf bytes.Buffer
	if err := webp.Encode(&buf, img, options); err != nil {
		return nil, fmt.Errorf("encode WebP: %w", err)
	}

	out := buf.Bytes()
	log.Debug().
		Str("source_format", format).
		Int("source_bytes", len(data)).
		Int("webp_bytes", len(out)).
		Msg("image converted to WebP")

	return out, nil
}
