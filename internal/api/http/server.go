// Package http 控制面 HTTP API 服务
//
// 路由：
//   - /api/v1/health[/live|/ready]  健康检查
//   - /api/v1/manager/...            命令执行与查询
//   - /api/v1/manager/events         已提交消息的 WebSocket 推送
//   - /metrics                       Prometheus 指标
package http

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/weisyn/purchaser/internal/api/http/handlers"
	"github.com/weisyn/purchaser/internal/api/http/middleware"
	apitypes "github.com/weisyn/purchaser/internal/api/types"
	"github.com/weisyn/purchaser/internal/api/websocket"
	apiconfig "github.com/weisyn/purchaser/internal/config/api"
	"github.com/weisyn/purchaser/pkg/interfaces/infrastructure/event"
	"github.com/weisyn/purchaser/pkg/interfaces/infrastructure/log"
	managerInterface "github.com/weisyn/purchaser/pkg/interfaces/manager"
)

const defaultBech32Prefix = "paloma"

// ServerDeps 服务器依赖
type ServerDeps struct {
	Logger   log.Logger
	Options  *apiconfig.APIOptions
	Service  managerInterface.Service
	Outbox   managerInterface.Outbox // 可为空
	EventBus event.EventBus          // 可为空，为空时不提供事件推送

	// 账户地址前缀，用于由签名公钥推导 sender；为空时取 paloma
	Bech32Prefix string

	// 指标注册表，为空时使用默认注册表
	Registerer prometheus.Registerer
	Gatherer   prometheus.Gatherer
}

// Server HTTP服务器
type Server struct {
	logger     log.Logger
	options    *apiconfig.APIOptions
	router     *gin.Engine
	httpServer *http.Server
	listener   net.Listener
	events     *websocket.Server
	done       chan struct{}
}

// NewServer 创建HTTP服务器并注册路由
func NewServer(deps ServerDeps) (*Server, error) {
	if deps.Service == nil {
		return nil, errors.New("manager service is required")
	}
	if deps.Options == nil {
		deps.Options = apiconfig.New(nil).GetOptions()
	}
	if deps.Registerer == nil {
		deps.Registerer = prometheus.DefaultRegisterer
	}
	if deps.Gatherer == nil {
		deps.Gatherer = prometheus.DefaultGatherer
	}
	if deps.Bech32Prefix == "" {
		deps.Bech32Prefix = defaultBech32Prefix
	}

	s := &Server{
		logger:  deps.Logger,
		options: deps.Options,
		router:  gin.New(),
		done:    make(chan struct{}),
	}
	if deps.EventBus != nil && deps.Options.HTTP.EnableEvents {
		ws, err := websocket.NewServer(deps.Logger.GetZapLogger(), deps.EventBus, deps.Outbox,
			websocket.NewOriginPolicy(deps.Options.HTTP.Host, deps.Options.HTTP.AllowedOrigins))
		if err != nil {
			return nil, fmt.Errorf("创建事件推送服务失败: %w", err)
		}
		s.events = ws
	}
	s.setupRoutes(deps)
	return s, nil
}

// Handler 返回路由处理器（测试使用）
func (s *Server) Handler() http.Handler {
	return s.router
}

// setupRoutes 设置中间件与路由
func (s *Server) setupRoutes(deps ServerDeps) {
	zl := s.logger.GetZapLogger()
	httpOpts := s.options.HTTP

	// 外层中间件先执行、后收尾：ErrorHandler 写出的状态码会被日志与指标看到
	s.router.Use(
		gin.Recovery(),
		middleware.NewRequestID().Middleware(),
		middleware.NewLogger(s.logger).Middleware(),
		middleware.NewMetrics(zl, deps.Registerer).Middleware(),
		middleware.ErrorHandler(zl),
	)

	v1 := s.router.Group("/api/v1")
	v1.Use(middleware.NewRateLimit(zl, httpOpts.ReadRateLimit, httpOpts.WriteRateLimit).Middleware())

	handlers.NewHealthHandler(zl, deps.Service, deps.Outbox).RegisterRoutes(v1)
	var writeMiddleware []gin.HandlerFunc
	if httpOpts.RequireSignature {
		writeMiddleware = append(writeMiddleware, middleware.NewSignatureValidation(
			zl, deps.Bech32Prefix, httpOpts.SignatureMaxSkew, httpOpts.MaxRequestSize).Middleware())
	}
	handlers.NewManagerHandler(zl, deps.Service, deps.Outbox, httpOpts.MaxRequestSize).RegisterRoutes(v1, writeMiddleware...)

	if s.events != nil {
		v1.GET("/manager/events", s.events.HandleWebSocket)
	}
	if httpOpts.EnableMetrics {
		s.router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{})))
	}

	s.router.NoRoute(func(c *gin.Context) {
		middleware.WriteError(c, apitypes.CodeCommonNotFound, "接口不存在", c.Request.URL.Path, http.StatusNotFound, nil)
	})
}

// Start 监听端口并在后台提供服务
// 端口绑定失败时同步返回错误
func (s *Server) Start() error {
	httpOpts := s.options.HTTP
	addr := httpOpts.Address()

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("监听 %s 失败: %w", addr, err)
	}
	s.listener = listener

	s.httpServer = &http.Server{
		Handler:           s.router,
		ReadTimeout:       httpOpts.ReadTimeout,
		ReadHeaderTimeout: httpOpts.ReadTimeout,
		WriteTimeout:      httpOpts.WriteTimeout,
		IdleTimeout:       60 * time.Second,
	}
	s.startGoroutine()

	s.logger.Infof("✅ HTTP服务器启动成功，监听地址: %s", s.Addr())
	s.logger.Infof("📡 API端点: http://%s/api/v1/manager", s.Addr())
	s.logger.Infof("🩺 健康检查: http://%s/api/v1/health", s.Addr())
	return nil
}

// Addr 实际监听地址（端口为 0 时由系统分配）
func (s *Server) Addr() string {
	if s.listener == nil {
		return s.options.HTTP.Address()
	}
	return s.listener.Addr().String()
}

// Stop 优雅关闭，等待活跃请求完成
func (s *Server) Stop(ctx context.Context) error {
	if s.events != nil {
		s.events.Close()
	}
	if s.httpServer == nil {
		return nil
	}
	s.logger.Info("正在关闭HTTP服务器")

	timeout := s.options.HTTP.ShutdownTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	stopCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	// WebSocket 连接已被劫持，Shutdown 不会等待它们
	if err := s.httpServer.Shutdown(stopCtx); err != nil {
		s.logger.Errorf("HTTP服务器关闭出错: %v", err)
		return err
	}
	<-s.done
	s.logger.Info("HTTP服务器已关闭")
	return nil
}

func (s *Server) startGoroutine() {
	go func() {
		defer close(s.done)
		// 正常关闭时返回 http.ErrServerClosed，不视为错误
		if err := s.httpServer.Serve(s.listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Errorf("❌ HTTP服务器运行失败: %v", err)
		}
	}()
}
