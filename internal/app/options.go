package app

import (
	"github.com/weisyn/purchaser/pkg/interfaces/config"
	"github.com/weisyn/purchaser/pkg/types"
)

// Option 应用程序选项函数类型
type Option func(*options)

// options 应用程序选项
// 实现config.AppOptions接口
type options struct {
	// 配置文件路径
	configFilePath string

	// 嵌入的配置内容（优先级高于configFilePath）
	embeddedConfig []byte

	// 用户配置（加载后填充）
	appConfig *types.AppConfig

	// 覆盖项，在配置文件加载之后应用
	overrides []func(*types.AppConfig)

	// API支持开关 (默认启用)
	enableAPI bool

	// outbox 转发开关（默认按配置）
	enableRelay bool
}

// 编译时校验options是否实现了config.AppOptions接口
var _ config.AppOptions = (*options)(nil)

// WithConfigFile 设置配置文件路径
func WithConfigFile(configPath string) Option {
	return func(o *options) {
		o.configFilePath = configPath
	}
}

// WithEmbeddedConfig 设置嵌入的配置内容（优先级高于WithConfigFile）
func WithEmbeddedConfig(configBytes []byte) Option {
	return func(o *options) {
		o.embeddedConfig = configBytes
	}
}

// WithConfig 在配置文件之上修改配置（命令行参数覆盖）
func WithConfig(fn func(*types.AppConfig)) Option {
	return func(o *options) {
		o.overrides = append(o.overrides, fn)
	}
}

// WithAPI 启用API模块
func WithAPI() Option {
	return func(o *options) {
		o.enableAPI = true
	}
}

// WithoutAPI 禁用API模块
func WithoutAPI() Option {
	return func(o *options) {
		o.enableAPI = false
	}
}

// WithoutRelay 禁用 outbox 转发（一次性命令使用）
func WithoutRelay() Option {
	return func(o *options) {
		o.enableRelay = false
	}
}

// newOptions 创建选项
func newOptions(opts ...Option) *options {
	options := &options{
		appConfig:   &types.AppConfig{},
		enableAPI:   true,
		enableRelay: true,
	}

	for _, opt := range opts {
		opt(options)
	}

	return options
}

// GetAppConfig 返回应用程序配置
func (o *options) GetAppConfig() *types.AppConfig {
	return o.appConfig
}
