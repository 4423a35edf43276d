package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	infralog "github.com/weisyn/purchaser/pkg/interfaces/infrastructure/log"
)

// Logger 访问日志中间件
// 每个请求一行：路由模板、状态、耗时、追踪ID；命令请求附带已验证的签名者
type Logger struct {
	logger *zap.Logger
}

// NewLogger 创建日志中间件
func NewLogger(logger infralog.Logger) *Logger {
	zl := logger.GetZapLogger()
	if zl == nil {
		zl = zap.NewNop()
	}
	return &Logger{logger: zl}
}

// Middleware 返回Gin中间件
func (m *Logger) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := c.Writer.Status()
		fields := []zap.Field{
			zap.String("request_id", GetRequestID(c)),
			zap.String("method", c.Request.Method),
			zap.String("route", route),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", status),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		}
		if signer, ok := GetSigner(c); ok {
			fields = append(fields, zap.String("signer", signer.String()))
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}

		switch {
		case status >= 500:
			m.logger.Error("HTTP request", fields...)
		case status >= 400:
			m.logger.Warn("HTTP request", fields...)
		default:
			m.logger.Debug("HTTP request", fields...)
		}
	}
}
