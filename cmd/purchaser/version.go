package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/weisyn/purchaser/internal/app/version"
)

// versionCmd 打印版本信息
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "打印版本信息",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if globalFlags.OutputFormat == outputJSON {
			return printJSON(cmd.OutOrStdout(), version.GetBuildInfo())
		}
		_, err := fmt.Fprintln(cmd.OutOrStdout(), version.GetFullVersion())
		return err
	},
}
