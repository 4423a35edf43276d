package main

import (
	"fmt"
	"os"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/weisyn/purchaser/configs"
	"github.com/weisyn/purchaser/internal/app"
)

// 输出格式
const (
	outputTable = "table"
	outputJSON  = "json"
)

// GlobalFlags 全局标志
type GlobalFlags struct {
	ConfigPath   string // 配置文件路径
	OutputFormat string // 输出格式
	Dev          bool   // 使用内置开发配置
}

var globalFlags GlobalFlags

// rootCmd 根命令
var rootCmd = &cobra.Command{
	Use:   "purchaser",
	Short: "跨链资产管理控制面",
	Long: `purchaser - 跨链资产管理控制面

维护所有者集合、目标链路由表与重试间隔，
把所有者的管理命令编码为远程调用消息，写入 outbox 交给中继投递。

配置文件查找顺序:
  $PURCHASER_CONFIG_PATH > --config > configs/purchaser.json`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if globalFlags.OutputFormat != outputTable && globalFlags.OutputFormat != outputJSON {
			return fmt.Errorf("不支持的输出格式: %s", globalFlags.OutputFormat)
		}
		// 非终端或 JSON 输出时关闭样式
		if globalFlags.OutputFormat == outputJSON || !term.IsTerminal(int(os.Stdout.Fd())) {
			pterm.DisableStyling()
		}
		return nil
	},
}

// Execute 执行根命令
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		pterm.Error.Println(err.Error())
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&globalFlags.ConfigPath, "config", "c", "", "配置文件路径 (默认: configs/purchaser.json)")
	rootCmd.PersistentFlags().StringVarP(&globalFlags.OutputFormat, "output", "o", outputTable, "输出格式: table|json")
	rootCmd.PersistentFlags().BoolVar(&globalFlags.Dev, "dev", false, "使用内置开发配置（内存存储）")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(execCmd)
	rootCmd.AddCommand(queryCmd)
	rootCmd.AddCommand(outboxCmd)
	rootCmd.AddCommand(encodeCmd)
	rootCmd.AddCommand(catalogCmd)
	rootCmd.AddCommand(versionCmd)
}

// appOptions 全局标志对应的应用选项
func appOptions(extra ...app.Option) []app.Option {
	opts := []app.Option{app.WithConfigFile(globalFlags.ConfigPath)}
	if globalFlags.Dev {
		opts = append(opts, app.WithEmbeddedConfig(configs.GetDevelopmentConfig()))
	}
	return append(opts, extra...)
}
