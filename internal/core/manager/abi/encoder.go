package abi

import (
	"math/big"
	"unicode/utf8"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"github.com/weisyn/purchaser/pkg/types"
)

const wordSize = 32

// Encode 按签名编码一次函数调用
//
// 支持的 Go 值：
//   - address: common.Address、*common.Address
//   - uintN:   *uint256.Int、uint256.Int、types.Uint、*types.Uint、*big.Int、
//     uint64、uint32、uint16、uint8、uint、非负 int/int64
//   - string:  合法 UTF-8 的 string
//
// 任何失败都不产生部分输出。
func Encode(sig Signature, values ...interface{}) ([]byte, error) {
	if len(values) != len(sig.Inputs) {
		return nil, WrapArityMismatchError(sig.Name, len(sig.Inputs), len(values))
	}

	n := len(sig.Inputs)
	head := make([]byte, 0, n*wordSize)
	var tail []byte

	for i, in := range sig.Inputs {
		switch in.Type.Kind {
		case KindAddress:
			addr, err := toAddress(sig.Name, i, in.Type, values[i])
			if err != nil {
				return nil, err
			}
			head = append(head, common.LeftPadBytes(addr.Bytes(), wordSize)...)

		case KindUint:
			v, err := toUint(sig.Name, i, in.Type, values[i])
			if err != nil {
				return nil, err
			}
			word := v.Bytes32()
			head = append(head, word[:]...)

		case KindString:
			s, ok := values[i].(string)
			if !ok {
				return nil, WrapTypeMismatchError(sig.Name, i, in.Type, values[i])
			}
			if !utf8.ValidString(s) {
				return nil, WrapTypeMismatchError(sig.Name, i, in.Type, "invalid utf-8")
			}
			offset := uint64(n*wordSize + len(tail))
			head = append(head, uintWord(offset)...)
			tail = append(tail, encodeBytes([]byte(s))...)

		default:
			return nil, WrapTypeMismatchError(sig.Name, i, in.Type, values[i])
		}
	}

	selector := sig.Selector()
	out := make([]byte, 0, 4+len(head)+len(tail))
	out = append(out, selector[:]...)
	out = append(out, head...)
	out = append(out, tail...)
	return out, nil
}

// EncodeByName 按函数名查找签名并编码
func EncodeByName(name string, values ...interface{}) ([]byte, error) {
	sig, err := Lookup(name)
	if err != nil {
		return nil, err
	}
	return Encode(sig, values...)
}

// encodeBytes 长度字 + 内容右补零到32字节边界
func encodeBytes(b []byte) []byte {
	padded := (len(b) + wordSize - 1) / wordSize * wordSize
	out := make([]byte, wordSize+padded)
	copy(out, uintWord(uint64(len(b))))
	copy(out[wordSize:], b)
	return out
}

func uintWord(v uint64) []byte {
	word := new(uint256.Int).SetUint64(v).Bytes32()
	return word[:]
}

func toAddress(fn string, index int, typ ParamType, v interface{}) (common.Address, error) {
	switch a := v.(type) {
	case common.Address:
		return a, nil
	case *common.Address:
		if a == nil {
			return common.Address{}, WrapTypeMismatchError(fn, index, typ, v)
		}
		return *a, nil
	default:
		return common.Address{}, WrapTypeMismatchError(fn, index, typ, v)
	}
}

func toUint(fn string, index int, typ ParamType, v interface{}) (*uint256.Int, error) {
	var out *uint256.Int

	switch x := v.(type) {
	case *uint256.Int:
		if x == nil {
			return nil, WrapTypeMismatchError(fn, index, typ, v)
		}
		out = new(uint256.Int).Set(x)
	case uint256.Int:
		out = new(uint256.Int).Set(&x)
	case types.Uint:
		out = x.Int()
	case *types.Uint:
		if x == nil {
			return nil, WrapTypeMismatchError(fn, index, typ, v)
		}
		out = x.Int()
	case *big.Int:
		if x == nil {
			return nil, WrapTypeMismatchError(fn, index, typ, v)
		}
		if x.Sign() < 0 {
			return nil, WrapValueOutOfRangeError(fn, index, typ, "negative")
		}
		var overflow bool
		out, overflow = uint256.FromBig(x)
		if overflow {
			return nil, WrapValueOutOfRangeError(fn, index, typ, "exceeds 256 bits")
		}
	case uint64:
		out = new(uint256.Int).SetUint64(x)
	case uint32:
		out = new(uint256.Int).SetUint64(uint64(x))
	case uint16:
		out = new(uint256.Int).SetUint64(uint64(x))
	case uint8:
		out = new(uint256.Int).SetUint64(uint64(x))
	case uint:
		out = new(uint256.Int).SetUint64(uint64(x))
	case int:
		if x < 0 {
			return nil, WrapValueOutOfRangeError(fn, index, typ, "negative")
		}
		out = new(uint256.Int).SetUint64(uint64(x))
	case int64:
		if x < 0 {
			return nil, WrapValueOutOfRangeError(fn, index, typ, "negative")
		}
		out = new(uint256.Int).SetUint64(uint64(x))
	default:
		return nil, WrapTypeMismatchError(fn, index, typ, v)
	}

	if out.BitLen() > typ.Bits {
		return nil, WrapValueOutOfRangeError(fn, index, typ, "value "+out.Dec()+" does not fit")
	}
	return out, nil
}
