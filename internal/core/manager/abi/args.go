package abi

import (
	"github.com/weisyn/purchaser/pkg/types"
)

// ParseArgs 将文本参数按签名转换为编码器接受的值
// address 解析为 common.Address，uintN 解析为十进制 types.Uint，string 原样保留
func ParseArgs(sig Signature, args []string) ([]interface{}, error) {
	if len(args) != len(sig.Inputs) {
		return nil, WrapArityMismatchError(sig.Name, len(sig.Inputs), len(args))
	}

	values := make([]interface{}, len(args))
	for i, in := range sig.Inputs {
		switch in.Type.Kind {
		case KindAddress:
			addr, err := types.ParseEVMAddress(args[i])
			if err != nil {
				return nil, err
			}
			values[i] = addr
		case KindUint:
			u, err := types.ParseUint(args[i])
			if err != nil {
				return nil, WrapValueOutOfRangeError(sig.Name, i, in.Type, err.Error())
			}
			values[i] = u
		default:
			values[i] = args[i]
		}
	}
	return values, nil
}
