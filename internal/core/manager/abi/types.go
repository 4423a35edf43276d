// Package abi 远程函数签名目录与调用编码器
//
// 输出与以太坊 ABI 的函数调用编码完全一致：
//
//	selector(4) ‖ head(32×N) ‖ tail
//
// 静态类型（address、uintN）直接写入头部字；动态类型（string）在头部写入
// 相对参数区起点的偏移，内容追加到尾部（长度字 + 按32字节右补零的数据）。
package abi

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/crypto"
)

// Kind 参数类型种类
type Kind int

const (
	KindString Kind = iota
	KindAddress
	KindUint
)

// ParamType 远程函数的参数类型
type ParamType struct {
	Kind Kind
	Bits int // 仅 KindUint 有效，8 的倍数，8..256
}

// String 字符串类型
func String() ParamType { return ParamType{Kind: KindString} }

// Address 20 字节地址类型
func Address() ParamType { return ParamType{Kind: KindAddress} }

// Uint 无符号整数类型
func Uint(bits int) ParamType {
	if bits <= 0 || bits > 256 || bits%8 != 0 {
		panic(fmt.Sprintf("invalid uint width %d", bits))
	}
	return ParamType{Kind: KindUint, Bits: bits}
}

// Canonical 规范类型名，用于计算选择器
func (p ParamType) Canonical() string {
	switch p.Kind {
	case KindString:
		return "string"
	case KindAddress:
		return "address"
	case KindUint:
		return fmt.Sprintf("uint%d", p.Bits)
	default:
		return "unknown"
	}
}

// IsDynamic 是否为动态类型（头部只写偏移）
func (p ParamType) IsDynamic() bool {
	return p.Kind == KindString
}

// Param 具名参数
type Param struct {
	Name string
	Type ParamType
}

// JobClass 远程调用使用的任务类别
type JobClass int

const (
	// JobClassMain 运营类调用，使用 main_job_id
	JobClassMain JobClass = iota
	// JobClassCompass 部署类调用，使用 compass_job_id
	JobClassCompass
)

// String 任务类别名
func (c JobClass) String() string {
	if c == JobClassCompass {
		return "compass"
	}
	return "main"
}

// Signature 远程函数签名
type Signature struct {
	Name     string
	Inputs   []Param
	Class    JobClass
	selector [4]byte
}

// NewSignature 创建签名并预先计算选择器
func NewSignature(name string, class JobClass, inputs ...Param) Signature {
	s := Signature{Name: name, Inputs: inputs, Class: class}
	copy(s.selector[:], crypto.Keccak256([]byte(s.Canonical()))[:4])
	return s
}

// Canonical 规范签名 name(t1,t2,...)
func (s Signature) Canonical() string {
	types := make([]string, len(s.Inputs))
	for i, in := range s.Inputs {
		types[i] = in.Type.Canonical()
	}
	return s.Name + "(" + strings.Join(types, ",") + ")"
}

// Selector 规范签名 keccak-256 的前4字节
func (s Signature) Selector() [4]byte {
	if s.selector == ([4]byte{}) {
		var sel [4]byte
		copy(sel[:], crypto.Keccak256([]byte(s.Canonical()))[:4])
		return sel
	}
	return s.selector
}

// Params 参数类型列表
func (s Signature) Params() []ParamType {
	out := make([]ParamType, len(s.Inputs))
	for i, in := range s.Inputs {
		out[i] = in.Type
	}
	return out
}
