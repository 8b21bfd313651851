package main

import (
	"os"

	"dreamstream/cmd"
)

//	@title			DreamStream AI API
//	@version		1.0.0
//	@description	AI 提示词增强与图片生成网关
//	@BasePath		/

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
