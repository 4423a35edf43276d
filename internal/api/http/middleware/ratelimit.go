package middleware

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	apitypes "github.com/weisyn/purchaser/internal/api/types"
)

// RateLimit 按客户端IP限流
// 写操作（POST）与读操作分别使用各自的令牌桶
type RateLimit struct {
	logger     *zap.Logger
	mu         sync.Mutex
	limiters   map[string]*rate.Limiter
	readLimit  rate.Limit
	writeLimit rate.Limit
}

// NewRateLimit 创建限流中间件，参数为每秒请求数，0 表示不限
func NewRateLimit(logger *zap.Logger, readLimit, writeLimit int) *RateLimit {
	return &RateLimit{
		logger:     logger,
		limiters:   make(map[string]*rate.Limiter),
		readLimit:  toLimit(readLimit),
		writeLimit: toLimit(writeLimit),
	}
}

func toLimit(qps int) rate.Limit {
	if qps <= 0 {
		return rate.Inf
	}
	return rate.Limit(qps)
}

// Middleware 返回Gin中间件
func (m *RateLimit) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		write := c.Request.Method == http.MethodPost
		if !m.limiter(c.ClientIP(), write).Allow() {
			m.logger.Warn("Rate limit exceeded",
				zap.String("client_ip", c.ClientIP()),
				zap.String("path", c.Request.URL.Path),
				zap.Bool("write", write),
			)
			WriteError(c, apitypes.CodeCommonRateLimited, "请求过于频繁，请稍后重试", "rate limit exceeded",
				http.StatusTooManyRequests, nil)
			return
		}
		c.Next()
	}
}

func (m *RateLimit) limiter(clientIP string, write bool) *rate.Limiter {
	key := "r:" + clientIP
	limit := m.readLimit
	if write {
		key = "w:" + clientIP
		limit = m.writeLimit
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.limiters[key]
	if !ok {
		burst := int(limit)
		if burst < 1 || limit == rate.Inf {
			burst = 1
		}
		l = rate.NewLimiter(limit, burst)
		m.limiters[key] = l
	}
	return l
}
