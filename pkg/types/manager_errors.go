// Package types 定义控制面命令处理的错误分类
package types

import (
	"errors"
	"fmt"
)

// ============================================================================
//                            命令处理错误定义
// ============================================================================
//
// 所有错误都是当前命令的终止错误：同步检测、整体中止、原样返回给调用方。
// 调用方通过 errors.Is 判断类别。

var (
	// ErrUnauthorized 调用者不在所有者集合中
	ErrUnauthorized = errors.New("unauthorized")

	// ErrNotFound 目标不存在（移除不存在的所有者、查询未注册的链）
	ErrNotFound = errors.New("not found")

	// ErrInvalidPrincipal 地址格式非法
	ErrInvalidPrincipal = errors.New("invalid principal")

	// ErrArityMismatch 编码参数个数与函数签名不一致
	ErrArityMismatch = errors.New("arity mismatch")

	// ErrTypeMismatch 编码参数类型与声明类型不兼容
	ErrTypeMismatch = errors.New("type mismatch")

	// ErrValueOutOfRange 编码参数超出声明位宽
	ErrValueOutOfRange = errors.New("value out of range")

	// ErrInvalidArgument 命令字段格式非法（非地址类字段）
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrUnknownCommand 无法识别的命令
	ErrUnknownCommand = errors.New("unknown command")

	// ErrUnsupportedCommand 当前合约变体不支持该命令
	ErrUnsupportedCommand = errors.New("unsupported command")

	// ErrNotInstantiated 控制面状态尚未初始化
	ErrNotInstantiated = errors.New("state not instantiated")

	// ErrAlreadyInstantiated 控制面状态已初始化
	ErrAlreadyInstantiated = errors.New("state already instantiated")
)

// ============================================================================
//                               错误包装函数
// ============================================================================

// WrapUnauthorizedError 包装未授权错误
func WrapUnauthorizedError(sender Principal) error {
	return fmt.Errorf("%w: sender=%s", ErrUnauthorized, sender)
}

// WrapNotFoundError 包装不存在错误
func WrapNotFoundError(kind, key string) error {
	return fmt.Errorf("%w: %s=%s", ErrNotFound, kind, key)
}

// WrapInvalidPrincipalError 包装地址非法错误
func WrapInvalidPrincipalError(address string, reason string) error {
	return fmt.Errorf("%w: address=%q, reason=%s", ErrInvalidPrincipal, address, reason)
}

// WrapInvalidArgumentError 包装参数非法错误
func WrapInvalidArgumentError(field string, reason string) error {
	return fmt.Errorf("%w: field=%s, reason=%s", ErrInvalidArgument, field, reason)
}

// IsEncodingError 判断错误是否来自调用编码阶段
func IsEncodingError(err error) bool {
	return errors.Is(err, ErrArityMismatch) ||
		errors.Is(err, ErrTypeMismatch) ||
		errors.Is(err, ErrValueOutOfRange)
}
