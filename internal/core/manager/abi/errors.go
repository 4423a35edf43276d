package abi

import (
	"errors"
	"fmt"

	"github.com/weisyn/purchaser/pkg/types"
)

// ErrUnknownFunction 目录中不存在该函数
var ErrUnknownFunction = errors.New("unknown remote function")

// WrapArityMismatchError 参数个数不符
func WrapArityMismatchError(fn string, want, got int) error {
	return fmt.Errorf("%w: %s expects %d arguments, got %d", types.ErrArityMismatch, fn, want, got)
}

// WrapTypeMismatchError 参数类型不兼容
func WrapTypeMismatchError(fn string, index int, want ParamType, got interface{}) error {
	return fmt.Errorf("%w: %s argument %d expects %s, got %T", types.ErrTypeMismatch, fn, index, want.Canonical(), got)
}

// WrapValueOutOfRangeError 参数超出位宽
func WrapValueOutOfRangeError(fn string, index int, want ParamType, reason string) error {
	return fmt.Errorf("%w: %s argument %d (%s): %s", types.ErrValueOutOfRange, fn, index, want.Canonical(), reason)
}
