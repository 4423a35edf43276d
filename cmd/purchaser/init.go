package main

import (
	"context"
	"fmt"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/weisyn/purchaser/configs"
	"github.com/weisyn/purchaser/internal/app"
	managerconfig "github.com/weisyn/purchaser/internal/config/manager"
	"github.com/weisyn/purchaser/internal/core/manager/service"
	"github.com/weisyn/purchaser/pkg/types"
)

var initFlags struct {
	owners     []string
	retryDelay uint64
}

// initCmd 初始化控制面状态
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "初始化所有者集合与重试间隔",
	Long: `初始化控制面单例状态。

所有者来自 --owner，未指定时使用配置文件 manager.owners；
重试间隔来自 --retry-delay，未指定时使用 manager.retry_delay。
状态已存在时返回错误。`,
	RunE: func(cmd *cobra.Command, args []string) error {
		owners, retryDelay, err := resolveInitParams(cmd)
		if err != nil {
			return err
		}

		// 启动阶段不自动初始化，由本命令显式执行
		clearOwners := app.WithConfig(func(c *types.AppConfig) {
			if c.Manager != nil {
				c.Manager.Owners = nil
			}
		})

		return app.Exec(cmd.Context(), func(ctx context.Context, svc *service.Service) error {
			if err := svc.Instantiate(ctx, owners, retryDelay); err != nil {
				return err
			}
			st, err := svc.GetState(ctx)
			if err != nil {
				return err
			}
			if globalFlags.OutputFormat == outputJSON {
				return printJSON(cmd.OutOrStdout(), st)
			}
			pterm.Success.Println("控制面状态已初始化")
			return renderTable(stateRows(st))
		}, appOptions(clearOwners)...)
	},
}

// resolveInitParams 合并命令行参数与配置文件
func resolveInitParams(cmd *cobra.Command) ([]string, uint64, error) {
	var userConfig *types.AppConfig
	var err error
	if globalFlags.Dev {
		userConfig, err = app.LoadConfig("", configs.GetDevelopmentConfig())
	} else {
		userConfig, err = app.LoadConfig(app.ResolveConfigPath(globalFlags.ConfigPath), nil)
	}
	if err != nil {
		return nil, 0, err
	}
	opts := managerconfig.New(userConfig.Manager).GetOptions()

	owners := opts.Owners
	if len(initFlags.owners) > 0 {
		owners = initFlags.owners
	}
	if len(owners) == 0 {
		return nil, 0, fmt.Errorf("未指定所有者：使用 --owner 或在配置中设置 manager.owners")
	}

	retryDelay := opts.RetryDelay
	if cmd.Flags().Changed("retry-delay") {
		retryDelay = initFlags.retryDelay
	}
	return owners, retryDelay, nil
}

// migrateCmd 重写合约版本记录
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "将合约版本记录更新为当前版本",
	RunE: func(cmd *cobra.Command, args []string) error {
		return app.Exec(cmd.Context(), func(ctx context.Context, svc *service.Service) error {
			if err := svc.Migrate(ctx); err != nil {
				return err
			}
			cv, err := svc.GetContractVersion(ctx)
			if err != nil {
				return err
			}
			if globalFlags.OutputFormat == outputJSON {
				return printJSON(cmd.OutOrStdout(), cv)
			}
			pterm.Success.Printfln("已迁移: %s %s", cv.Contract, cv.Version)
			return nil
		}, appOptions()...)
	},
}

func init() {
	initCmd.Flags().StringSliceVar(&initFlags.owners, "owner", nil, "所有者地址，可重复或逗号分隔")
	initCmd.Flags().Uint64Var(&initFlags.retryDelay, "retry-delay", 0, "重试间隔")
}
