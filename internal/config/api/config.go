package api

import (
	"net"
	"strconv"
	"time"

	"github.com/weisyn/purchaser/pkg/types"
)

// APIOptions API服务配置选项
type APIOptions struct {
	// HTTP API配置
	HTTP HTTPConfig `json:"http"`
}

// HTTPConfig HTTP API配置
type HTTPConfig struct {
	// 基础配置
	Enabled bool   `json:"enabled"` // 是否启用HTTP服务（总开关）
	Host    string `json:"host"`    // 监听地址
	Port    int    `json:"port"`    // 监听端口

	// 超时配置
	ReadTimeout     time.Duration `json:"read_timeout"`     // 读取超时时间
	WriteTimeout    time.Duration `json:"write_timeout"`    // 写入超时时间
	ShutdownTimeout time.Duration `json:"shutdown_timeout"` // 优雅关闭超时

	// 限制
	MaxRequestSize int64 `json:"max_request_size"` // 最大请求体大小(字节)

	// 限流（每客户端IP每秒请求数，0 表示不限）
	ReadRateLimit  int `json:"read_rate_limit"`
	WriteRateLimit int `json:"write_rate_limit"`

	// 命令签名：请求须由 sender 对应私钥签名
	RequireSignature bool          `json:"require_signature"`
	SignatureMaxSkew time.Duration `json:"signature_max_skew"` // 签名时间戳允许偏差

	// 非本机监听时允许的浏览器来源
	AllowedOrigins []string `json:"allowed_origins"`

	// 可观测性
	EnableMetrics bool `json:"enable_metrics"` // 是否暴露 /metrics
	EnableEvents  bool `json:"enable_events"`  // 是否提供 WebSocket 消息推送
}

// Config API配置实现
type Config struct {
	options *APIOptions
}

// New 创建API配置实现
func New(userConfig *types.UserAPIConfig) *Config {
	options := createDefaultAPIOptions()

	if userConfig != nil {
		applyUserConfig(options, userConfig)
	}

	return &Config{options: options}
}

func createDefaultAPIOptions() *APIOptions {
	return &APIOptions{
		HTTP: HTTPConfig{
			Enabled:         defaultHTTPEnabled,
			Host:            defaultHTTPHost,
			Port:            defaultHTTPPort,
			ReadTimeout:     defaultReadTimeout,
			WriteTimeout:    defaultWriteTimeout,
			ShutdownTimeout: defaultShutdownTimeout,
			MaxRequestSize:  defaultMaxRequestSize,
			ReadRateLimit:   defaultReadRateLimit,
			WriteRateLimit:  defaultWriteRateLimit,
			EnableMetrics:   defaultEnableMetrics,
			EnableEvents:    defaultEnableEvents,

			RequireSignature: defaultRequireSignature,
			SignatureMaxSkew: defaultSignatureMaxSkew,
		},
	}
}

func applyUserConfig(options *APIOptions, userConfig *types.UserAPIConfig) {
	if userConfig.HTTPEnabled != nil {
		options.HTTP.Enabled = *userConfig.HTTPEnabled
	}
	if userConfig.HTTPHost != nil {
		options.HTTP.Host = *userConfig.HTTPHost
	}
	if userConfig.HTTPPort != nil {
		options.HTTP.Port = *userConfig.HTTPPort
	}
	if userConfig.WriteRateLimit != nil {
		options.HTTP.WriteRateLimit = *userConfig.WriteRateLimit
	}
	if userConfig.EnableMetrics != nil {
		options.HTTP.EnableMetrics = *userConfig.EnableMetrics
	}
	if userConfig.EnableEvents != nil {
		options.HTTP.EnableEvents = *userConfig.EnableEvents
	}
	if userConfig.RequireSignature != nil {
		options.HTTP.RequireSignature = *userConfig.RequireSignature
	}
	if userConfig.SignatureMaxSkew != nil {
		if d, err := time.ParseDuration(*userConfig.SignatureMaxSkew); err == nil && d > 0 {
			options.HTTP.SignatureMaxSkew = d
		}
	}
	if len(userConfig.AllowedOrigins) > 0 {
		options.HTTP.AllowedOrigins = append([]string(nil), userConfig.AllowedOrigins...)
	}
}

// GetOptions 获取完整的API配置选项
func (c *Config) GetOptions() *APIOptions {
	return c.options
}

// IsHTTPEnabled 是否启用HTTP服务
func (c *Config) IsHTTPEnabled() bool {
	return c.options.HTTP.Enabled
}

// GetHTTPAddress 获取HTTP监听地址 host:port
func (c *Config) GetHTTPAddress() string {
	return c.options.HTTP.Address()
}

// Address 返回 host:port 形式的监听地址
func (h HTTPConfig) Address() string {
	return net.JoinHostPort(h.Host, strconv.Itoa(h.Port))
}
