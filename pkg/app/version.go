package app

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// 以下变量在编译时通过 ldflags 注入：
//
//	go build -ldflags "-X github.com/lk2023060901/xproxy/pkg/app.Version=v1.0.0 \
//	  -X github.com/lk2023060901/xproxy/pkg/app.GitCommit=$(git rev-parse --short HEAD) \
//	  -X github.com/lk2023060901/xproxy/pkg/app.BuildDate=$(date -u +%Y-%m-%dT%H:%M:%SZ)"
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
	AppName   = ""
)

func init() {
	if AppName == "" {
		exe, err := os.Executable()
		if err != nil {
			AppName = "xproxy"
			return
		}
		AppName = strings.TrimSuffix(filepath.Base(exe), filepath.Ext(exe))
	}
}

// Info 版本信息
type Info struct {
	AppName   string `json:"app_name"`
	Version   string `json:"version"`
	GitCommit string `json:"git_commit"`
	BuildDate string `json:"build_date"`
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`
}

// GetInfo 返回当前版本信息
func GetInfo() Info {
	return Info{
		AppName:   AppName,
		Version:   Version,
		GitCommit: GitCommit,
		BuildDate: BuildDate,
		GoVersion: runtime.Version(),
		Platform:  fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH),
	}
}

// String 返回人类可读的版本字符串
func (i Info) String() string {
	return fmt.Sprintf("%s %s (commit: %s, built: %s, %s, %s)",
		i.AppName, i.Version, i.GitCommit, i.BuildDate, i.GoVersion, i.Platform)
}
