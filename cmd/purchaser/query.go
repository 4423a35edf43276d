package main

import (
	"context"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/weisyn/purchaser/internal/app"
	"github.com/weisyn/purchaser/internal/core/manager/service"
)

// queryCmd 只读查询
var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "查询控制面状态",
}

var queryStateCmd = &cobra.Command{
	Use:   "state",
	Short: "查询所有者与重试间隔",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return app.Exec(cmd.Context(), func(ctx context.Context, svc *service.Service) error {
			st, err := svc.GetState(ctx)
			if err != nil {
				return err
			}
			if globalFlags.OutputFormat == outputJSON {
				return printJSON(cmd.OutOrStdout(), st)
			}
			return renderTable(stateRows(st))
		}, appOptions()...)
	},
}

var queryChainCmd = &cobra.Command{
	Use:   "chain <chain-id>",
	Short: "查询目标链路由",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return app.Exec(cmd.Context(), func(ctx context.Context, svc *service.Service) error {
			cs, err := svc.GetChainSetting(ctx, args[0])
			if err != nil {
				return err
			}
			if globalFlags.OutputFormat == outputJSON {
				return printJSON(cmd.OutOrStdout(), cs)
			}
			return renderTable([][]string{
				{"字段", "值"},
				{"chain_id", args[0]},
				{"compass_job_id", cs.CompassJobID},
				{"main_job_id", cs.MainJobID},
			})
		}, appOptions()...)
	},
}

var queryVersionCmd = &cobra.Command{
	Use:   "version",
	Short: "查询合约版本记录",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return app.Exec(cmd.Context(), func(ctx context.Context, svc *service.Service) error {
			cv, err := svc.GetContractVersion(ctx)
			if err != nil {
				return err
			}
			if globalFlags.OutputFormat == outputJSON {
				return printJSON(cmd.OutOrStdout(), cv)
			}
			pterm.Info.Printfln("%s %s", cv.Contract, cv.Version)
			return nil
		}, appOptions()...)
	},
}

func init() {
	queryCmd.AddCommand(queryStateCmd)
	queryCmd.AddCommand(queryChainCmd)
	queryCmd.AddCommand(queryVersionCmd)
}
