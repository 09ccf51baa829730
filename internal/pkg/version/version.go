// ### 发布流程
// 1. **更新版本号**：修改 `internal/pkg/version/version.go`
// 2. **构建**：通过 -ldflags 注入 BuildTime / GitCommit
//    go build -ldflags "-X neoport/internal/pkg/version.GitCommit=$(git rev-parse --short HEAD)" ./cmd/neoport

package version

import "runtime"

var (
	Version    = "1.2.0" // 版本号 -- 发布时候更新版本号
	APIVersion = "v1"
	BuildTime  string
	GitCommit  string
)

func GetVersion() string {
	return Version
}

// GoVersion 返回构建所用的 Go 版本
func GoVersion() string {
	return runtime.Version()
}
