package abi

import (
	"encoding/json"
	"fmt"
)

// 远程函数名
const (
	FnDeployERC20               = "deploy_erc20"
	FnSendToken                 = "send_token"
	FnUpdateCompass             = "update_compass"
	FnUpdateRefundWallet        = "update_refund_wallet"
	FnUpdateGasFee              = "update_gas_fee"
	FnUpdateServiceFeeCollector = "update_service_fee_collector"
	FnUpdateServiceFee          = "update_service_fee"
	FnSetPaloma                 = "set_paloma"
)

// catalog 目标链合约上可被调用的全部函数，顺序即展示顺序
var catalog = []Signature{
	NewSignature(FnDeployERC20, JobClassCompass,
		Param{"_paloma_denom", String()},
		Param{"_name", String()},
		Param{"_symbol", String()},
		Param{"_decimals", Uint(8)},
		Param{"_blueprint", Address()},
	),
	NewSignature(FnSendToken, JobClassMain,
		Param{"token", Address()},
		Param{"to", Address()},
		Param{"amount", Uint(256)},
		Param{"nonce", Uint(256)},
	),
	NewSignature(FnUpdateCompass, JobClassMain, Param{"new_compass", Address()}),
	NewSignature(FnUpdateRefundWallet, JobClassMain, Param{"new_refund_wallet", Address()}),
	NewSignature(FnUpdateGasFee, JobClassMain, Param{"new_gas_fee", Uint(256)}),
	NewSignature(FnUpdateServiceFeeCollector, JobClassMain, Param{"new_service_fee_collector", Address()}),
	NewSignature(FnUpdateServiceFee, JobClassMain, Param{"new_service_fee", Uint(256)}),
	NewSignature(FnSetPaloma, JobClassMain),
}

var catalogIndex = func() map[string]int {
	idx := make(map[string]int, len(catalog))
	for i, s := range catalog {
		idx[s.Name] = i
	}
	return idx
}()

// Lookup 按函数名查找签名
func Lookup(name string) (Signature, error) {
	i, ok := catalogIndex[name]
	if !ok {
		return Signature{}, fmt.Errorf("%w: %s", ErrUnknownFunction, name)
	}
	return catalog[i], nil
}

// MustLookup 按函数名查找签名，不存在时 panic
// 仅用于编译期已知的函数名
func MustLookup(name string) Signature {
	s, err := Lookup(name)
	if err != nil {
		panic(err)
	}
	return s
}

// Signatures 返回目录副本
func Signatures() []Signature {
	out := make([]Signature, len(catalog))
	copy(out, catalog)
	return out
}

type jsonArg struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

type jsonMethod struct {
	Type            string    `json:"type"`
	Name            string    `json:"name"`
	Inputs          []jsonArg `json:"inputs"`
	Outputs         []jsonArg `json:"outputs"`
	StateMutability string    `json:"stateMutability"`
}

// JSON 以以太坊 JSON ABI 格式导出目录
func JSON() string {
	methods := make([]jsonMethod, 0, len(catalog))
	for _, s := range catalog {
		inputs := make([]jsonArg, len(s.Inputs))
		for i, in := range s.Inputs {
			inputs[i] = jsonArg{Name: in.Name, Type: in.Type.Canonical()}
		}
		methods = append(methods, jsonMethod{
			Type:            "function",
			Name:            s.Name,
			Inputs:          inputs,
			Outputs:         []jsonArg{},
			StateMutability: "nonpayable",
		})
	}
	data, err := json.Marshal(methods)
	if err != nil {
		panic(err)
	}
	return string(data)
}
