package api

import "time"

// API服务默认配置值
const (
	defaultHTTPEnabled = true
	defaultHTTPHost    = "127.0.0.1"
	defaultHTTPPort    = 28680

	defaultReadTimeout     = 15 * time.Second
	defaultWriteTimeout    = 15 * time.Second
	defaultShutdownTimeout = 5 * time.Second

	// defaultMaxRequestSize 命令请求体上限 1MB
	defaultMaxRequestSize = 1 << 20

	defaultReadRateLimit  = 200
	defaultWriteRateLimit = 20

	defaultEnableMetrics = true
	defaultEnableEvents  = true

	defaultRequireSignature = true
	defaultSignatureMaxSkew = 5 * time.Minute
)
