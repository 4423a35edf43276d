package config

import (
	"github.com/weisyn/purchaser/internal/config/api"
	"github.com/weisyn/purchaser/internal/config/log"
	"github.com/weisyn/purchaser/internal/config/manager"
	"github.com/weisyn/purchaser/internal/config/relay"
	"github.com/weisyn/purchaser/internal/config/storage/badger"
	"github.com/weisyn/purchaser/internal/config/storage/memory"
)

// Provider 配置提供者接口
// 每个 Get 方法都返回已应用默认值与用户覆盖的完整选项
type Provider interface {
	// GetLog 获取日志配置
	GetLog() *log.LogOptions

	// GetBadger 获取BadgerDB存储配置
	GetBadger() *badger.BadgerOptions

	// GetMemory 获取查询缓存配置
	GetMemory() *memory.MemoryOptions

	// GetAPI 获取API服务配置
	GetAPI() *api.APIOptions

	// GetManager 获取控制面配置
	GetManager() *manager.ManagerOptions

	// GetRelay 获取中继投递配置
	GetRelay() *relay.RelayOptions
}
