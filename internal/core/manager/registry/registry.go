// Package registry 目标链路由表
//
// 键 chain_settings/<chainId>，值为 ChainSetting 的 JSON。
// 只支持按链 upsert 与读取，不删除、不枚举。
package registry

import (
	"encoding/json"
	"fmt"

	"github.com/weisyn/purchaser/pkg/interfaces/infrastructure/storage"
	"github.com/weisyn/purchaser/pkg/types"
)

// KeyPrefix 路由表键前缀
const KeyPrefix = "chain_settings/"

// Key 返回链的存储键
func Key(chainID string) []byte {
	return []byte(KeyPrefix + chainID)
}

// ChainRegistry 绑定到单个事务的路由表视图
type ChainRegistry struct {
	tx storage.BadgerTransaction
}

// New 创建绑定到事务的路由表
func New(tx storage.BadgerTransaction) *ChainRegistry {
	return &ChainRegistry{tx: tx}
}

// Set 写入或覆盖链路由
func (r *ChainRegistry) Set(chainID string, setting types.ChainSetting) error {
	data, err := json.Marshal(setting)
	if err != nil {
		return fmt.Errorf("序列化链路由失败: %w", err)
	}
	if err := r.tx.Set(Key(chainID), data); err != nil {
		return fmt.Errorf("写入链路由失败: %w", err)
	}
	return nil
}

// Get 读取链路由，未注册时返回 NotFound
func (r *ChainRegistry) Get(chainID string) (types.ChainSetting, error) {
	data, err := r.tx.Get(Key(chainID))
	if err != nil {
		return types.ChainSetting{}, fmt.Errorf("读取链路由失败: %w", err)
	}
	if data == nil {
		return types.ChainSetting{}, types.WrapNotFoundError("chain_setting", chainID)
	}

	var setting types.ChainSetting
	if err := json.Unmarshal(data, &setting); err != nil {
		return types.ChainSetting{}, fmt.Errorf("解析链路由失败: %w", err)
	}
	return setting, nil
}
