package http

import (
	"context"
	"io"
	"os"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"

	apiconfig "github.com/weisyn/purchaser/internal/config/api"
	managerconfig "github.com/weisyn/purchaser/internal/config/manager"
	"github.com/weisyn/purchaser/pkg/interfaces/infrastructure/event"
	"github.com/weisyn/purchaser/pkg/interfaces/infrastructure/log"
	managerInterface "github.com/weisyn/purchaser/pkg/interfaces/manager"
)

// ModuleInput HTTP模块依赖
type ModuleInput struct {
	fx.In

	Lifecycle fx.Lifecycle
	Logger    log.Logger
	Options   *apiconfig.APIOptions
	Service   managerInterface.Service
	Outbox    managerInterface.Outbox       `optional:"true"`
	EventBus  event.EventBus                `optional:"true"`
	Manager   *managerconfig.ManagerOptions `optional:"true"`
}

// initializeGinMode 在模块加载时初始化GIN模式
func initializeGinMode() {
	gin.SetMode(gin.ReleaseMode)
	if os.Getenv("PURCHASER_CLI_MODE") == "true" {
		// CLI模式下抑制GIN的控制台输出
		gin.DefaultWriter = io.Discard
		gin.DefaultErrorWriter = io.Discard
	}
}

// ProvideServer 创建HTTP服务器并挂接生命周期
// HTTP 未启用时返回 nil
func ProvideServer(input ModuleInput) (*Server, error) {
	logger := input.Logger.With("module", "http")
	if !input.Options.HTTP.Enabled {
		logger.Info("HTTP API在配置中被禁用")
		return nil, nil
	}

	deps := ServerDeps{
		Logger:   logger,
		Options:  input.Options,
		Service:  input.Service,
		Outbox:   input.Outbox,
		EventBus: input.EventBus,
	}
	if input.Manager != nil {
		deps.Bech32Prefix = input.Manager.Bech32Prefix
	}
	server, err := NewServer(deps)
	if err != nil {
		return nil, err
	}

	input.Lifecycle.Append(fx.Hook{
		OnStart: func(context.Context) error {
			return server.Start()
		},
		OnStop: func(ctx context.Context) error {
			return server.Stop(ctx)
		},
	})
	return server, nil
}

// Module 返回HTTP服务模块
func Module() fx.Option {
	return fx.Options(
		fx.Invoke(initializeGinMode),
		fx.Provide(ProvideServer),
	)
}
