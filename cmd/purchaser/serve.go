package main

import (
	"fmt"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/weisyn/purchaser/internal/app"
	"github.com/weisyn/purchaser/internal/app/version"
)

var serveFlags struct {
	noAPI   bool
	noRelay bool
}

// serveCmd 启动常驻服务
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "启动控制面服务（HTTP API 与 outbox 中继）",
	Long: `启动控制面服务。

状态不存在且配置中有所有者时，启动阶段自动完成初始化。
收到 SIGINT/SIGTERM 后优雅停止。`,
	RunE: func(cmd *cobra.Command, args []string) error {
		var extra []app.Option
		if serveFlags.noAPI {
			extra = append(extra, app.WithoutAPI())
		}
		if serveFlags.noRelay {
			extra = append(extra, app.WithoutRelay())
		}

		a, err := app.Start(cmd.Context(), appOptions(extra...)...)
		if err != nil {
			return fmt.Errorf("启动失败: %w", err)
		}

		configPath := app.ResolveConfigPath(globalFlags.ConfigPath)
		if globalFlags.Dev {
			configPath = "(内置开发配置)"
		}
		pterm.DefaultBox.WithTitle("purchaser").Println(
			fmt.Sprintf("版本: %s\n配置: %s\nAPI: %v  中继: %v",
				version.GetVersion(), configPath, !serveFlags.noAPI, !serveFlags.noRelay))
		pterm.Info.Println("按 Ctrl+C 停止")

		return a.Wait()
	},
}

func init() {
	serveCmd.Flags().BoolVar(&serveFlags.noAPI, "no-api", false, "不启动 HTTP API")
	serveCmd.Flags().BoolVar(&serveFlags.noRelay, "no-relay", false, "不启动 outbox 中继")
}
