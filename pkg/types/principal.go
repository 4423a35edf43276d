package types

import (
	"encoding/hex"
	"strings"

	"github.com/btcsuite/btcutil"
	"github.com/btcsuite/btcutil/bech32"
	"github.com/ethereum/go-ethereum/common"
)

// Principal 经过校验的账户标识
// 相等性为精确字符串比较
type Principal string

// String 实现 fmt.Stringer
func (p Principal) String() string {
	return string(p)
}

// AddressValidator 宿主账本地址校验器
//
// 账户地址采用 bech32 编码：
//   - 人类可读前缀必须与配置的前缀一致
//   - 必须是规范化的小写形式
//   - 校验和必须正确
type AddressValidator struct {
	prefix string
}

// NewAddressValidator 创建地址校验器
func NewAddressValidator(prefix string) *AddressValidator {
	return &AddressValidator{prefix: strings.ToLower(prefix)}
}

// Prefix 返回期望的 bech32 前缀
func (v *AddressValidator) Prefix() string {
	return v.prefix
}

// Validate 校验并返回规范化的 Principal
func (v *AddressValidator) Validate(address string) (Principal, error) {
	if address == "" {
		return "", WrapInvalidPrincipalError(address, "empty")
	}
	if address != strings.ToLower(address) {
		return "", WrapInvalidPrincipalError(address, "not normalized")
	}
	hrp, data, err := bech32.Decode(address)
	if err != nil {
		return "", WrapInvalidPrincipalError(address, err.Error())
	}
	if hrp != v.prefix {
		return "", WrapInvalidPrincipalError(address, "unexpected prefix "+hrp)
	}
	if len(data) == 0 {
		return "", WrapInvalidPrincipalError(address, "empty payload")
	}
	return Principal(address), nil
}

// FromPubKey 由 33 字节压缩 secp256k1 公钥推导账户地址
// 地址为 bech32(prefix, ripemd160(sha256(pubkey)))
func (v *AddressValidator) FromPubKey(pubKey []byte) (Principal, error) {
	if len(pubKey) != 33 {
		return "", WrapInvalidPrincipalError(hex.EncodeToString(pubKey), "compressed secp256k1 public key expected")
	}
	data, err := bech32.ConvertBits(btcutil.Hash160(pubKey), 8, 5, true)
	if err != nil {
		return "", WrapInvalidPrincipalError(hex.EncodeToString(pubKey), err.Error())
	}
	addr, err := bech32.Encode(v.prefix, data)
	if err != nil {
		return "", WrapInvalidPrincipalError(hex.EncodeToString(pubKey), err.Error())
	}
	return Principal(addr), nil
}

// ValidateAll 按顺序校验一组地址，遇到第一个非法地址即返回
func (v *AddressValidator) ValidateAll(addresses []string) ([]Principal, error) {
	out := make([]Principal, 0, len(addresses))
	for _, a := range addresses {
		p, err := v.Validate(a)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

// ParseEVMAddress 解析远端链的 20 字节地址
// 接受带或不带 0x 前缀的 40 位十六进制字符串
func ParseEVMAddress(s string) (common.Address, error) {
	if !common.IsHexAddress(s) {
		return common.Address{}, WrapInvalidPrincipalError(s, "not a 20-byte hex address")
	}
	return common.HexToAddress(s), nil
}
