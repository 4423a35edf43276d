package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/weisyn/purchaser/pkg/types"
)

// HeaderRequestID 追踪ID请求/响应头
const HeaderRequestID = "X-Request-ID"

const (
	requestIDKey    = "request_id"
	maxRequestIDLen = 64
)

// RequestID 请求ID中间件
//
// 追踪ID同时写入 gin 上下文与请求 context：命令执行日志和
// 由该命令产生的 outbox 条目都会带上它，便于把中继投递追溯到请求。
type RequestID struct{}

// NewRequestID 创建请求ID中间件
func NewRequestID() *RequestID {
	return &RequestID{}
}

// Middleware 返回Gin中间件
func (m *RequestID) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		// 客户端提供的ID会落盘，只接受短的安全字符集
		requestID := c.GetHeader(HeaderRequestID)
		if !validRequestID(requestID) {
			requestID = uuid.New().String()
		}

		c.Set(requestIDKey, requestID)
		c.Request = c.Request.WithContext(types.WithRequestID(c.Request.Context(), requestID))
		c.Header(HeaderRequestID, requestID)

		c.Next()
	}
}

// GetRequestID 获取当前请求的追踪ID
func GetRequestID(c *gin.Context) string {
	if v, ok := c.Get(requestIDKey); ok {
		if s, ok2 := v.(string); ok2 {
			return s
		}
	}
	return types.RequestIDFromContext(c.Request.Context())
}

func validRequestID(id string) bool {
	if id == "" || len(id) > maxRequestIDLen {
		return false
	}
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case r == '-', r == '_', r == '.':
		default:
			return false
		}
	}
	return true
}
