package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/weisyn/purchaser/internal/app"
	"github.com/weisyn/purchaser/internal/core/manager/service"
	"github.com/weisyn/purchaser/pkg/types"
)

var execFlags struct {
	sender  string
	funds   []string
	msgFile string
}

// execCmd 执行一条管理命令
var execCmd = &cobra.Command{
	Use:   "exec [msg-json]",
	Short: "以指定发送者执行一条管理命令",
	Long: `执行一条管理命令，消息格式为 {"<命令名>": {...}}。

示例:
  purchaser exec --sender paloma1... '{"update_config":{"retry_delay":60}}'
  purchaser exec --sender paloma1... --msg-file cmd.json --fund upusd=100`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		msg, err := readMessage(args, execFlags.msgFile)
		if err != nil {
			return err
		}
		funds, err := parseFunds(execFlags.funds)
		if err != nil {
			return err
		}

		return app.Exec(cmd.Context(), func(ctx context.Context, svc *service.Service) error {
			resp, err := svc.ExecuteMessage(ctx, execFlags.sender, funds, msg)
			if err != nil {
				return err
			}
			if globalFlags.OutputFormat == outputJSON {
				return printJSON(cmd.OutOrStdout(), resp)
			}
			pterm.Success.Printfln("命令已执行，产生 %d 条消息", len(resp.Messages))
			return renderTable(attributeRows(resp))
		}, appOptions()...)
	},
}

// readMessage 从参数或文件读取消息 JSON
func readMessage(args []string, file string) ([]byte, error) {
	var data []byte
	switch {
	case file != "" && len(args) > 0:
		return nil, fmt.Errorf("消息参数与 --msg-file 不能同时使用")
	case file != "":
		var err error
		if data, err = os.ReadFile(file); err != nil {
			return nil, fmt.Errorf("读取消息文件失败: %w", err)
		}
	case len(args) > 0:
		data = []byte(args[0])
	default:
		return nil, fmt.Errorf("缺少消息：传入 JSON 参数或使用 --msg-file")
	}
	if !json.Valid(data) {
		return nil, fmt.Errorf("消息不是合法的 JSON")
	}
	return data, nil
}

// parseFunds 解析 denom=amount 形式的资金
func parseFunds(items []string) ([]types.Coin, error) {
	funds := make([]types.Coin, 0, len(items))
	for _, raw := range items {
		denom, amount, ok := strings.Cut(raw, "=")
		if !ok || denom == "" {
			return nil, fmt.Errorf("资金格式应为 denom=amount: %q", raw)
		}
		u, err := types.ParseUint(amount)
		if err != nil {
			return nil, fmt.Errorf("资金数量无效 %q: %w", raw, err)
		}
		funds = append(funds, types.Coin{Denom: denom, Amount: u})
	}
	return funds, nil
}

func init() {
	execCmd.Flags().StringVar(&execFlags.sender, "sender", "", "发送者地址")
	execCmd.Flags().StringSliceVar(&execFlags.funds, "fund", nil, "附带资金 denom=amount，可重复")
	execCmd.Flags().StringVar(&execFlags.msgFile, "msg-file", "", "从文件读取消息 JSON")
	_ = execCmd.MarkFlagRequired("sender")
}
