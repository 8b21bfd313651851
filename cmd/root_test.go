package cmd

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/viper"

	"dreamstream/internal/config"
)

func TestInitConfigFromEnv(t *testing.T) {
	Convey("没有配置文件时从环境变量读取全部配置项", t, func() {
		viper.Reset()
		defer viper.Reset()
		cfgFile = ""

		t.Setenv("HOME", t.TempDir())
		t.Setenv("DREAMSTREAM_AI_PROVIDER", "bedrock")
		t.Setenv("DREAMSTREAM_AI_REGION", "us-east-1")
		t.Setenv("DREAMSTREAM_AI_BASE_URL", "https://bedrock.example.com")
		t.Setenv("DREAMSTREAM_IMAGE_PROVIDER", "ark")
		t.Setenv("DREAMSTREAM_IMAGE_API_KEY", "ark-key")
		t.Setenv("DREAMSTREAM_IMAGE_MODEL", "seedream-test")
		t.Setenv("DREAMSTREAM_REDIS_PASSWORD", "secret")
		t.Setenv("DREAMSTREAM_LOG_FILE_PATH", "/tmp/dreamstream.log")

		initConfig()
		c := GetConfig()

		So(c.AI.Provider, ShouldEqual, config.ProviderBedrock)
		So(c.AI.Region, ShouldEqual, "us-east-1")
		So(c.AI.BaseURL, ShouldEqual, "https://bedrock.example.com")
		So(c.Image.Provider, ShouldEqual, config.ProviderArk)
		So(c.Image.APIKey, ShouldEqual, "ark-key")
		So(c.Image.Model, ShouldEqual, "seedream-test")
		So(c.Redis.Password, ShouldEqual, "secret")
		So(c.Log.FilePath, ShouldEqual, "/tmp/dreamstream.log")
		So(c.Validate(), ShouldBeNil)
	})

	Convey("image.base_url 默认为空", t, func() {
		viper.Reset()
		defer viper.Reset()
		cfgFile = ""
		t.Setenv("HOME", t.TempDir())

		initConfig()
		So(GetConfig().Image.BaseURL, ShouldBeEmpty)
	})
}
