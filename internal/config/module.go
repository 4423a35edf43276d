// Package config 提供应用配置管理功能
package config

import (
	"github.com/weisyn/purchaser/internal/config/api"
	"github.com/weisyn/purchaser/internal/config/manager"
	"github.com/weisyn/purchaser/internal/config/relay"
	"github.com/weisyn/purchaser/pkg/interfaces/config"
	"github.com/weisyn/purchaser/pkg/types"
	"go.uber.org/fx"
)

// ConfigParams 定义配置模块的依赖参数
type ConfigParams struct {
	fx.In

	// 应用配置选项
	AppOptions config.AppOptions `optional:"true"`
}

// ConfigOutput 定义配置模块的输出结构
type ConfigOutput struct {
	fx.Out

	// 配置提供者
	Provider config.Provider
}

// Module 返回配置模块
func Module() fx.Option {
	return fx.Module("config",
		fx.Provide(
			ProvideConfigServices,
			// 提供具体的配置类型用于依赖注入
			func(provider config.Provider) *api.APIOptions {
				return provider.GetAPI()
			},
			func(provider config.Provider) (*manager.ManagerOptions, error) {
				opts := provider.GetManager()
				if err := opts.Validate(); err != nil {
					return nil, err
				}
				return opts, nil
			},
			func(provider config.Provider) *relay.RelayOptions {
				return provider.GetRelay()
			},
		),
	)
}

// ProvideConfigServices 提供配置服务
func ProvideConfigServices(params ConfigParams) (ConfigOutput, error) {
	var appConfig *types.AppConfig
	if params.AppOptions != nil {
		appConfig = params.AppOptions.GetAppConfig()
	}

	return ConfigOutput{
		Provider: NewProvider(appConfig),
	}, nil
}
