package service

import (
	"context"

	"go.uber.org/fx"

	managerconfig "github.com/weisyn/purchaser/internal/config/manager"
	"github.com/weisyn/purchaser/internal/core/manager/dispatcher"
	"github.com/weisyn/purchaser/internal/core/manager/state"
	"github.com/weisyn/purchaser/pkg/interfaces/infrastructure/event"
	"github.com/weisyn/purchaser/pkg/interfaces/infrastructure/log"
	"github.com/weisyn/purchaser/pkg/interfaces/infrastructure/storage"
	managerInterface "github.com/weisyn/purchaser/pkg/interfaces/manager"
	"github.com/weisyn/purchaser/pkg/types"
)

// ModuleInput 控制面模块依赖
type ModuleInput struct {
	fx.In

	Store     storage.BadgerStore
	Options   *managerconfig.ManagerOptions
	EventBus  event.EventBus      `optional:"true"`
	Cache     storage.MemoryCache `optional:"true"`
	Logger    log.Logger
	Lifecycle fx.Lifecycle
}

// ModuleOutput 控制面模块输出
type ModuleOutput struct {
	fx.Out

	Service   *Service
	Interface managerInterface.Service
	Outbox    managerInterface.Outbox
}

// Module 返回控制面模块
func Module() fx.Option {
	return fx.Module("manager",
		fx.Provide(ProvideServices),
	)
}

// ContractName 变体对应的合约名
func ContractName(variant string) string {
	if variant == managerconfig.VariantCollector {
		return state.ContractNameCollector
	}
	return state.ContractNameManager
}

// NewFromOptions 按配置组装分发器与服务
func NewFromOptions(opts *managerconfig.ManagerOptions, store storage.BadgerStore, cache storage.MemoryCache, bus event.EventBus, logger log.Logger) (*Service, error) {
	validator := types.NewAddressValidator(opts.Bech32Prefix)
	d := dispatcher.New(dispatcher.Options{
		Variant:   dispatcher.Variant(opts.Variant),
		Validator: validator,
		PusdDenom: opts.PusdDenom,
	})
	return New(Config{
		Store:      store,
		Dispatcher: d,
		Validator:  validator,
		EventBus:   bus,
		Logger:     logger,
		Cache:      cache,
		Contract:   ContractName(opts.Variant),
	})
}

// ProvideServices 创建控制面服务；配置了所有者且状态不存在时在启动阶段完成初始化
func ProvideServices(input ModuleInput) (ModuleOutput, error) {
	logger := input.Logger.With("module", "manager")

	svc, err := NewFromOptions(input.Options, input.Store, input.Cache, input.EventBus, logger)
	if err != nil {
		return ModuleOutput{}, err
	}

	input.Lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			ok, err := svc.Instantiated(ctx)
			if err != nil {
				return err
			}
			if ok {
				return nil
			}
			if len(input.Options.Owners) == 0 {
				logger.Warn("控制面状态未初始化，且配置中没有所有者，所有命令将被拒绝")
				return nil
			}
			return svc.Instantiate(ctx, input.Options.Owners, input.Options.RetryDelay)
		},
	})

	return ModuleOutput{Service: svc, Interface: svc, Outbox: svc}, nil
}
