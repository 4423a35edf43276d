package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

// Metrics 指标收集中间件
// path 标签使用路由模板（/chains/:chain_id），避免按链ID膨胀
type Metrics struct {
	logger          *zap.Logger
	requestCounter  *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	requestSize     *prometheus.SummaryVec
}

// NewMetrics 创建指标中间件，reg 为 nil 时注册到默认注册表
func NewMetrics(logger *zap.Logger, reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		logger: logger,
		requestCounter: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "purchaser",
				Subsystem: "api",
				Name:      "requests_total",
				Help:      "Total number of API requests",
			},
			[]string{"method", "path", "status"},
		),
		requestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "purchaser",
				Subsystem: "api",
				Name:      "request_duration_seconds",
				Help:      "API request duration in seconds",
				Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2, 5},
			},
			[]string{"method", "path"},
		),
		requestSize: factory.NewSummaryVec(
			prometheus.SummaryOpts{
				Namespace:  "purchaser",
				Subsystem:  "api",
				Name:       "request_size_bytes",
				Help:       "API request size in bytes",
				Objectives: map[float64]float64{0.5: 0.05, 0.9: 0.01, 0.99: 0.001},
			},
			[]string{"method", "path"},
		),
	}
}

// Middleware 返回Gin中间件
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		method := c.Request.Method

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		status := c.Writer.Status()
		duration := time.Since(start)

		if size := c.Request.ContentLength; size > 0 {
			m.requestSize.WithLabelValues(method, path).Observe(float64(size))
		}
		m.requestCounter.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
		m.requestDuration.WithLabelValues(method, path).Observe(duration.Seconds())

		m.logger.Debug("Request metrics collected",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", status),
			zap.Duration("duration", duration),
		)
	}
}
