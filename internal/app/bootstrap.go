package app

import (
	"context"
	"fmt"

	"go.uber.org/fx"

	"github.com/weisyn/purchaser/internal/api"
	"github.com/weisyn/purchaser/internal/config"
	"github.com/weisyn/purchaser/internal/core/infrastructure/event"
	log "github.com/weisyn/purchaser/internal/core/infrastructure/log"
	"github.com/weisyn/purchaser/internal/core/infrastructure/storage"
	"github.com/weisyn/purchaser/internal/core/manager/relay"
	"github.com/weisyn/purchaser/internal/core/manager/service"
)

// Bootstrap 按层组装 fx 模块
//
//	基础设施层: config → log
//	通信层:     event → storage
//	业务层:     manager → relay
//	应用层:     api
type Bootstrap struct {
	opts  *options
	fxApp *fx.App
}

// NewBootstrap 创建引导器
func NewBootstrap(opts *options) *Bootstrap {
	return &Bootstrap{opts: opts}
}

// SetupInfrastructureLayer 基础设施层
func (b *Bootstrap) SetupInfrastructureLayer() []fx.Option {
	return []fx.Option{
		fx.Provide(provideAppOptions(b.opts)),
		config.Module(),
		log.Module(),
	}
}

// SetupCommunicationLayer 通信层
func (b *Bootstrap) SetupCommunicationLayer() []fx.Option {
	return []fx.Option{
		event.Module(),
		storage.Module(),
	}
}

// SetupBusinessLayer 业务层
func (b *Bootstrap) SetupBusinessLayer() []fx.Option {
	modules := []fx.Option{
		service.Module(),
	}
	if b.opts.enableRelay {
		modules = append(modules, relay.Module())
	}
	return modules
}

// SetupApplicationLayer 应用层
func (b *Bootstrap) SetupApplicationLayer() []fx.Option {
	if !b.opts.enableAPI {
		return nil
	}
	return []fx.Option{api.Module()}
}

// SetupModules 组装全部模块
func (b *Bootstrap) SetupModules() []fx.Option {
	var all []fx.Option
	all = append(all, b.SetupInfrastructureLayer()...)
	all = append(all, b.SetupCommunicationLayer()...)
	all = append(all, b.SetupBusinessLayer()...)
	all = append(all, b.SetupApplicationLayer()...)
	return all
}

// CreateFxApp 创建 fx 应用，extra 用于附加 Populate 等选项
func (b *Bootstrap) CreateFxApp(extra ...fx.Option) error {
	appOptions := append(b.SetupModules(), fx.NopLogger)
	appOptions = append(appOptions, extra...)

	b.fxApp = fx.New(appOptions...)
	if err := b.fxApp.Err(); err != nil {
		return fmt.Errorf("依赖注入失败: %w", err)
	}
	return nil
}

// StartApp 启动应用
func (b *Bootstrap) StartApp(ctx context.Context) error {
	if err := b.fxApp.Start(ctx); err != nil {
		return fmt.Errorf("启动应用失败: %w", err)
	}
	return nil
}

// StopApp 停止应用
func (b *Bootstrap) StopApp(ctx context.Context) error {
	if err := b.fxApp.Stop(ctx); err != nil {
		return fmt.Errorf("停止应用失败: %w", err)
	}
	return nil
}
