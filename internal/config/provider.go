package config

import (
	"github.com/weisyn/purchaser/internal/config/api"
	"github.com/weisyn/purchaser/internal/config/log"
	"github.com/weisyn/purchaser/internal/config/manager"
	"github.com/weisyn/purchaser/internal/config/relay"
	"github.com/weisyn/purchaser/internal/config/storage/badger"
	"github.com/weisyn/purchaser/internal/config/storage/memory"
	"github.com/weisyn/purchaser/pkg/interfaces/config"
	"github.com/weisyn/purchaser/pkg/types"
)

// Provider 实现配置提供者接口
type Provider struct {
	appConfig *types.AppConfig
}

// NewProvider 创建配置提供者
func NewProvider(appConfig *types.AppConfig) config.Provider {
	return &Provider{
		appConfig: appConfig,
	}
}

// GetLog 获取日志配置
func (p *Provider) GetLog() *log.LogOptions {
	var userLogConfig *types.UserLogConfig
	if p.appConfig != nil && p.appConfig.Log != nil {
		userLogConfig = p.appConfig.Log
	}
	return log.New(userLogConfig).GetOptions()
}

// GetBadger 获取BadgerDB存储配置
func (p *Provider) GetBadger() *badger.BadgerOptions {
	var userStorageConfig *types.UserStorageConfig
	if p.appConfig != nil && p.appConfig.Storage != nil {
		userStorageConfig = p.appConfig.Storage
	} else if p.appConfig != nil && p.appConfig.DataDir != nil {
		// 兼容顶层 data_dir
		userStorageConfig = &types.UserStorageConfig{DataRoot: p.appConfig.DataDir}
	}
	return badger.New(userStorageConfig).GetOptions()
}

// GetMemory 获取查询缓存配置
func (p *Provider) GetMemory() *memory.MemoryOptions {
	var userStorageConfig *types.UserStorageConfig
	if p.appConfig != nil && p.appConfig.Storage != nil {
		userStorageConfig = p.appConfig.Storage
	}
	return memory.New(userStorageConfig).GetOptions()
}

// GetAPI 获取API服务配置
func (p *Provider) GetAPI() *api.APIOptions {
	var userAPIConfig *types.UserAPIConfig
	if p.appConfig != nil && p.appConfig.API != nil {
		userAPIConfig = p.appConfig.API
	}
	return api.New(userAPIConfig).GetOptions()
}

// GetManager 获取控制面配置
func (p *Provider) GetManager() *manager.ManagerOptions {
	var userManagerConfig *types.UserManagerConfig
	if p.appConfig != nil && p.appConfig.Manager != nil {
		userManagerConfig = p.appConfig.Manager
	}
	return manager.New(userManagerConfig).GetOptions()
}

// GetRelay 获取中继投递配置
func (p *Provider) GetRelay() *relay.RelayOptions {
	var userRelayConfig *types.UserRelayConfig
	if p.appConfig != nil && p.appConfig.Relay != nil {
		userRelayConfig = p.appConfig.Relay
	}
	return relay.New(userRelayConfig).GetOptions()
}
