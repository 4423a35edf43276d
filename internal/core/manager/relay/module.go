package relay

import (
	"context"

	"go.uber.org/fx"

	relayconfig "github.com/weisyn/purchaser/internal/config/relay"
	"github.com/weisyn/purchaser/pkg/interfaces/infrastructure/event"
	"github.com/weisyn/purchaser/pkg/interfaces/infrastructure/log"
	managerInterface "github.com/weisyn/purchaser/pkg/interfaces/manager"
)

// ModuleInput 中继模块依赖
type ModuleInput struct {
	fx.In

	Options   *relayconfig.RelayOptions
	Outbox    managerInterface.Outbox
	EventBus  event.EventBus `optional:"true"`
	Logger    log.Logger
	Lifecycle fx.Lifecycle
}

// Module 返回中继模块，配置未启用时不连接 Redis
func Module() fx.Option {
	return fx.Module("relay",
		fx.Invoke(Register),
	)
}

// Register 注册转发器生命周期
func Register(input ModuleInput) {
	logger := input.Logger.With("module", "relay")
	if !input.Options.Enabled {
		logger.Info("outbox 转发器未启用")
		return
	}

	var (
		sink      *RedisSink
		forwarder *Forwarder
	)
	input.Lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			client, err := DialRedis(ctx, input.Options)
			if err != nil {
				return err
			}
			sink = NewRedisSink(client, input.Options.QueueKey)
			forwarder = NewForwarder(input.Outbox, sink, input.EventBus, logger,
				input.Options.PollInterval, input.Options.BatchSize)
			logger.Infof("outbox 转发器启动: redis=%s queue=%s", input.Options.RedisAddr, input.Options.QueueKey)
			return forwarder.Start()
		},
		OnStop: func(context.Context) error {
			if forwarder != nil {
				forwarder.Stop()
			}
			if sink != nil {
				return sink.Close()
			}
			return nil
		},
	})
}
