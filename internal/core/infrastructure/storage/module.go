// Package storage 提供存储管理功能
package storage

import (
	"context"

	badgerconfig "github.com/weisyn/purchaser/internal/config/storage/badger"
	"github.com/weisyn/purchaser/internal/core/infrastructure/storage/badger"
	"github.com/weisyn/purchaser/internal/core/infrastructure/storage/memory"
	"github.com/weisyn/purchaser/pkg/interfaces/config"
	"github.com/weisyn/purchaser/pkg/interfaces/infrastructure/log"
	storageInterface "github.com/weisyn/purchaser/pkg/interfaces/infrastructure/storage"
	"go.uber.org/fx"
)

// ModuleParams 定义存储模块的依赖参数
type ModuleParams struct {
	fx.In

	Provider  config.Provider // 配置提供者
	Logger    log.Logger      // 日志记录器
	Lifecycle fx.Lifecycle
}

// ModuleOutput 定义存储模块的输出结构
type ModuleOutput struct {
	fx.Out

	BadgerStore storageInterface.BadgerStore // BadgerDB存储（必需，失败即错误）
	MemoryCache storageInterface.MemoryCache // 查询缓存（未启用时为 nil）
}

// Module 返回存储模块
func Module() fx.Option {
	return fx.Module("storage",
		fx.Provide(ProvideServices),
	)
}

// ProvideServices 打开BadgerDB并注册关闭钩子
func ProvideServices(params ModuleParams) (ModuleOutput, error) {
	logger := params.Logger.With("module", "storage")

	store, err := badger.New(badgerconfig.NewFromOptions(params.Provider.GetBadger()), logger)
	if err != nil {
		return ModuleOutput{}, err
	}

	var cache storageInterface.MemoryCache
	if memOpts := params.Provider.GetMemory(); memOpts.Enabled {
		mem, err := memory.New(memOpts, logger)
		if err != nil {
			// 缓存只影响读性能，创建失败时退化为直接读库
			logger.Warnf("创建查询缓存失败，将直接读取存储: %v", err)
		} else {
			cache = mem
		}
	}

	params.Lifecycle.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			logger.Info("正在关闭存储服务...")
			if cache != nil {
				_ = cache.Close()
			}
			return store.Close()
		},
	})

	return ModuleOutput{BadgerStore: store, MemoryCache: cache}, nil
}
