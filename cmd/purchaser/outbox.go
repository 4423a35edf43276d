package main

import (
	"context"
	"fmt"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/weisyn/purchaser/internal/app"
	"github.com/weisyn/purchaser/internal/core/manager/service"
)

var outboxFlags struct {
	limit int
	ack   []uint
}

// outboxCmd 查看或确认待投递消息
var outboxCmd = &cobra.Command{
	Use:   "outbox",
	Short: "列出待投递消息，或用 --ack 手动确认",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return app.Exec(cmd.Context(), func(ctx context.Context, svc *service.Service) error {
			if len(outboxFlags.ack) > 0 {
				seqs := make([]uint64, len(outboxFlags.ack))
				for i, seq := range outboxFlags.ack {
					seqs[i] = uint64(seq)
				}
				if err := svc.Ack(ctx, seqs...); err != nil {
					return err
				}
				pterm.Success.Printfln("已确认 %d 条消息", len(outboxFlags.ack))
				return nil
			}

			entries, err := svc.Pending(ctx, outboxFlags.limit)
			if err != nil {
				return err
			}
			if globalFlags.OutputFormat == outputJSON {
				return printJSON(cmd.OutOrStdout(), entries)
			}
			if len(entries) == 0 {
				pterm.Info.Println("没有待投递的消息")
				return nil
			}
			pterm.DefaultSection.Println(fmt.Sprintf("待投递消息 (%d)", len(entries)))
			return renderTable(outboxRows(entries))
		}, appOptions()...)
	},
}

func init() {
	outboxCmd.Flags().IntVar(&outboxFlags.limit, "limit", 100, "最多列出条数")
	outboxCmd.Flags().UintSliceVar(&outboxFlags.ack, "ack", nil, "确认（删除）指定序号的消息")
}
