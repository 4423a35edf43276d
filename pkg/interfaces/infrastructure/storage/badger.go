// Package storage 定义持久化存储接口
//
// 💾 **BadgerDB 存储接口**
//
// 控制面的全部持久状态（所有者单例、链路由表、待投递 outbox）
// 都保存在同一个 BadgerDB 实例中。每条命令在一个读写事务内执行，
// 事务提交即命令生效，事务丢弃即命令无任何副作用。
package storage

import (
	"context"
)

// BadgerStore 定义BadgerDB存储接口
type BadgerStore interface {
	// Close 关闭BadgerDB数据库连接
	// 应用关闭时必须调用此方法以避免数据损坏
	Close() error

	// Get 获取指定键的值
	// 如果键不存在，返回nil值和nil错误
	Get(ctx context.Context, key []byte) ([]byte, error)

	// Set 设置键值对，已存在时覆盖
	Set(ctx context.Context, key, value []byte) error

	// Delete 删除指定键的值
	// 如果键不存在，不会返回错误
	Delete(ctx context.Context, key []byte) error

	// Exists 检查键是否存在
	Exists(ctx context.Context, key []byte) (bool, error)

	// PrefixScan 按前缀扫描键值对
	// 返回的键按字节序升序排列
	PrefixScan(ctx context.Context, prefix []byte) ([]KeyValue, error)

	// RunInTransaction 在读写事务中执行操作
	// fn返回错误时事务被丢弃，否则提交
	RunInTransaction(ctx context.Context, fn func(tx BadgerTransaction) error) error

	// View 在只读事务中执行操作
	View(ctx context.Context, fn func(tx BadgerTransaction) error) error
}

// KeyValue 扫描结果中的单个键值对
type KeyValue struct {
	Key   []byte
	Value []byte
}

// BadgerTransaction 定义BadgerDB事务接口
type BadgerTransaction interface {
	// Get 获取指定键的值
	// 如果键不存在，返回nil值和nil错误
	Get(key []byte) ([]byte, error)

	// Set 设置键值对
	Set(key, value []byte) error

	// Delete 删除指定键的值
	Delete(key []byte) error

	// Exists 检查键是否存在
	Exists(key []byte) (bool, error)

	// PrefixScan 在事务视图内按前缀扫描
	PrefixScan(prefix []byte) ([]KeyValue, error)
}
