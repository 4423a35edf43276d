package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math/big"
	"regexp"

	"github.com/holiman/uint256"
)

// Uint 256位无符号整数
//
// JSON 形式只有十进制字符串（与宿主账本 Uint128/Uint256 的约定一致），
// 裸数字与 null 都会被拒绝。
type Uint struct {
	v uint256.Int
}

// NewUint 从 uint64 创建
func NewUint(n uint64) Uint {
	var u Uint
	u.v.SetUint64(n)
	return u
}

// ParseUint 解析十进制字符串
func ParseUint(s string) (Uint, error) {
	v, err := uint256.FromDecimal(s)
	if err != nil {
		return Uint{}, fmt.Errorf("解析十进制整数失败 %q: %w", s, err)
	}
	return Uint{v: *v}, nil
}

// UintFromBig 从 big.Int 创建，负数或超过256位时返回错误
func UintFromBig(b *big.Int) (Uint, error) {
	if b == nil || b.Sign() < 0 {
		return Uint{}, fmt.Errorf("%w: negative value", ErrValueOutOfRange)
	}
	v, overflow := uint256.FromBig(b)
	if overflow {
		return Uint{}, fmt.Errorf("%w: exceeds 256 bits", ErrValueOutOfRange)
	}
	return Uint{v: *v}, nil
}

// Int 返回底层 uint256 的副本
func (u Uint) Int() *uint256.Int {
	return new(uint256.Int).Set(&u.v)
}

// Big 返回 big.Int 表示
func (u Uint) Big() *big.Int {
	return u.v.ToBig()
}

// IsZero 是否为零
func (u Uint) IsZero() bool {
	return u.v.IsZero()
}

// BitLen 有效位数
func (u Uint) BitLen() int {
	return u.v.BitLen()
}

// FitsUint128 是否落在 Uint128 范围内
func (u Uint) FitsUint128() bool {
	return u.v.BitLen() <= 128
}

// Equal 数值相等
func (u Uint) Equal(o Uint) bool {
	return u.v.Eq(&o.v)
}

// String 十进制表示
func (u Uint) String() string {
	return u.v.Dec()
}

// MarshalJSON 编码为十进制字符串
func (u Uint) MarshalJSON() ([]byte, error) {
	return json.Marshal(u.v.Dec())
}

// UnmarshalJSON 解析十进制字符串
func (u *Uint) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || data[0] != '"' {
		return fmt.Errorf("整数必须编码为十进制字符串: %s", data)
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseUint(s)
	if err != nil {
		return err
	}
	*u = parsed
	return nil
}

var decimalPattern = regexp.MustCompile(`^[0-9]+(\.[0-9]{1,18})?$`)

// Decimal 定点小数（最多18位小数），以字符串原样保存和转发
type Decimal string

// Validate 校验小数格式
func (d Decimal) Validate() error {
	if !decimalPattern.MatchString(string(d)) {
		return WrapInvalidArgumentError("decimal", fmt.Sprintf("malformed %q", string(d)))
	}
	return nil
}
