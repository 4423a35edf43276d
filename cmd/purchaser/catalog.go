package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/weisyn/purchaser/internal/core/manager/abi"
)

var catalogFlags struct {
	abiJSON bool
}

// catalogCmd 列出远程函数目录
var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "列出远程函数的规范签名与选择器",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if catalogFlags.abiJSON {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), abi.JSON())
			return err
		}
		rows := catalogRows(abi.Signatures())
		if globalFlags.OutputFormat == outputJSON {
			return printJSON(cmd.OutOrStdout(), rowsToMaps(rows))
		}
		return renderTable(rows)
	},
}

// rowsToMaps 以表头为键把表格转为对象列表
func rowsToMaps(rows [][]string) []map[string]string {
	if len(rows) == 0 {
		return nil
	}
	header := rows[0]
	out := make([]map[string]string, 0, len(rows)-1)
	for _, row := range rows[1:] {
		m := make(map[string]string, len(header))
		for i, h := range header {
			if i < len(row) {
				m[h] = row[i]
			}
		}
		out = append(out, m)
	}
	return out
}

func init() {
	catalogCmd.Flags().BoolVar(&catalogFlags.abiJSON, "abi", false, "以以太坊 JSON ABI 格式输出")
}
