// Package manager 定义控制面对外暴露的服务接口
//
// HTTP 层、命令行与中继转发器只依赖这里的接口，
// 不直接接触分发器或存储布局。
package manager

import (
	"context"

	"github.com/weisyn/purchaser/pkg/types"
)

// CommandExecutor 执行 JSON 信封形式的命令
type CommandExecutor interface {
	// ExecuteMessage 解析 {"<命令名>": {...}} 并在单个事务中执行
	// sender 必须是合法地址；funds 随命令附带但不参与分发
	ExecuteMessage(ctx context.Context, sender string, funds []types.Coin, msg []byte) (types.Response, error)
}

// Querier 只读查询
type Querier interface {
	// GetState 所有者与重试间隔
	GetState(ctx context.Context) (types.State, error)

	// GetChainSetting 单条链路由，未注册时返回 ErrNotFound
	GetChainSetting(ctx context.Context, chainID string) (types.ChainSetting, error)

	// GetContractVersion 合约名称与版本
	GetContractVersion(ctx context.Context) (types.ContractVersion, error)
}

// Service 控制面服务
type Service interface {
	CommandExecutor
	Querier
}

// Outbox 已提交消息的读取与确认，供中继转发器使用
type Outbox interface {
	// Pending 按序号升序返回至多 limit 条待投递消息
	Pending(ctx context.Context, limit int) ([]types.OutboxEntry, error)

	// Ack 删除已投递的消息
	Ack(ctx context.Context, seqs ...uint64) error
}
