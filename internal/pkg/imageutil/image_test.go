package imageutil

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func samplePNG() []byte {
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for x := 0; x < 8; x++ {
		for y := 0; y < 8; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 30), G: uint8(y * 30), B: 200, A: 255})
		}
	}
	var buf bytes.Buffer
	_ = png.Encode(&buf, img)
	return buf.Bytes()
}

func TestToBase64(t *testing.T) {
	Convey("ToBase64 使用标准字母表", t, func() {
		data := []byte{0xfb, 0xff, 0x00, 0x10}
		got := ToBase64(data)
		So(got, ShouldEqual, "+/8AEA==")

		decoded, err := base64.StdEncoding.DecodeString(got)
		So(err, ShouldBeNil)
		So(decoded, ShouldResemble, data)
	})
}

func TestConvertToWebP(t *testing.T) {
	Convey("ConvertToWebP 转码 PNG", t, func() {
		Convey("输出带 RIFF/WEBP 头", func() {
			out, err := ConvertToWebP(samplePNG(), 80)
			So(err, ShouldBeNil)
			So(len(out), ShouldBeGreaterThan, 12)
			So(string(out[0:4]), ShouldEqual, "RIFF")
			So(string(out[8:12]), ShouldEqual, "WEBP")
		})

		Convey("非图片数据返回错误", func() {
			_, err := ConvertToWebP([]byte("not an image"), 80)
			So(err, ShouldNotBeNil)
		})
	})
}
