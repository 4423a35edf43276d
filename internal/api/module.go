// Package api 对外接口层
package api

import (
	"go.uber.org/fx"

	"github.com/weisyn/purchaser/internal/api/http"
)

// Module 返回API模块
// 显式依赖 *http.Server，确保服务器被构造并随生命周期启动
func Module() fx.Option {
	return fx.Module("api",
		http.Module(),
		fx.Invoke(func(*http.Server) {}),
	)
}
