package main

import (
	"encoding/hex"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/weisyn/purchaser/internal/core/manager/abi"
)

// encodedCall 离线编码结果
type encodedCall struct {
	Function  string `json:"function"`
	Signature string `json:"signature"`
	Selector  string `json:"selector"`
	Payload   string `json:"payload"`
}

// encodeCall 按目录签名解析文本参数并编码
func encodeCall(name string, args []string) (encodedCall, error) {
	sig, err := abi.Lookup(name)
	if err != nil {
		return encodedCall{}, err
	}
	values, err := abi.ParseArgs(sig, args)
	if err != nil {
		return encodedCall{}, err
	}
	payload, err := abi.Encode(sig, values...)
	if err != nil {
		return encodedCall{}, err
	}
	sel := sig.Selector()
	return encodedCall{
		Function:  sig.Name,
		Signature: sig.Canonical(),
		Selector:  "0x" + hex.EncodeToString(sel[:]),
		Payload:   "0x" + hex.EncodeToString(payload),
	}, nil
}

// encodeCmd 离线编码远程调用
var encodeCmd = &cobra.Command{
	Use:   "encode <function> [args...]",
	Short: "离线编码远程调用载荷",
	Long: `按远程函数目录离线编码调用载荷，不访问存储。

参数规则: address 为 0x 开头的 20 字节地址，uintN 为十进制整数，string 原样使用。

示例:
  purchaser encode send_token 0x00000000000000000000000000000000000000aa 0x00000000000000000000000000000000000000bb 1000 1`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		call, err := encodeCall(args[0], args[1:])
		if err != nil {
			return err
		}
		if globalFlags.OutputFormat == outputJSON {
			return printJSON(cmd.OutOrStdout(), call)
		}
		pterm.DefaultSection.Println(call.Signature)
		return renderTable([][]string{
			{"字段", "值"},
			{"selector", call.Selector},
			{"payload", call.Payload},
		})
	},
}
