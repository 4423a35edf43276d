package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/weisyn/purchaser/internal/api/http/types"
	"github.com/weisyn/purchaser/internal/app/version"
	managerInterface "github.com/weisyn/purchaser/pkg/interfaces/manager"
	domain "github.com/weisyn/purchaser/pkg/types"
)

// HealthHandler 健康检查端点处理器
//
// 🏥 **Kubernetes风格健康检查**
//
// 提供三层健康检查端点：
// - /health: 完整健康报告（存储、控制面状态、outbox 积压）
// - /health/live: 存活检查（进程是否响应）
// - /health/ready: 就绪检查（控制面是否已初始化、可接受命令）
type HealthHandler struct {
	logger    *zap.Logger
	startTime time.Time
	querier   managerInterface.Querier
	outbox    managerInterface.Outbox // 可为空
}

// NewHealthHandler 创建健康检查处理器
func NewHealthHandler(logger *zap.Logger, querier managerInterface.Querier, outbox managerInterface.Outbox) *HealthHandler {
	return &HealthHandler{
		logger:    logger,
		startTime: time.Now(),
		querier:   querier,
		outbox:    outbox,
	}
}

// RegisterRoutes 注册健康检查路由
func (h *HealthHandler) RegisterRoutes(r *gin.RouterGroup) {
	health := r.Group("/health")
	{
		health.GET("", h.GetHealth)          // 完整健康报告
		health.GET("/live", h.GetLiveness)   // 存活检查
		health.GET("/ready", h.GetReadiness) // 就绪检查
	}
}

// GetHealth 获取完整健康状态
//
// GET /api/v1/health
func (h *HealthHandler) GetHealth(c *gin.Context) {
	ctx := c.Request.Context()

	components := map[string]interface{}{
		"manager": h.checkManager(ctx),
	}
	overall := "healthy"
	if status := components["manager"].(map[string]interface{})["status"]; status != "healthy" {
		overall = "degraded"
	}

	if h.outbox != nil {
		outboxStatus := map[string]interface{}{"status": "healthy"}
		pending, err := h.outbox.Pending(ctx, 0)
		if err != nil {
			outboxStatus["status"] = "unhealthy"
			outboxStatus["error"] = err.Error()
			overall = "degraded"
		} else {
			outboxStatus["pending"] = len(pending)
		}
		components["outbox"] = outboxStatus
	}

	readiness := "ready"
	if overall != "healthy" {
		readiness = "not_ready"
	}

	c.JSON(http.StatusOK, types.HealthResponse{
		Status:     overall,
		Liveness:   "ok",
		Readiness:  readiness,
		Version:    version.GetVersion(),
		Uptime:     time.Since(h.startTime).String(),
		Timestamp:  time.Now().Format(time.RFC3339),
		Components: components,
	})
}

// GetLiveness 存活检查
//
// GET /api/v1/health/live
//
// 不检查依赖，能执行到这里即表示进程存活
func (h *HealthHandler) GetLiveness(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

// GetReadiness 就绪检查
//
// GET /api/v1/health/ready
//
// 返回：
// - 200 OK：存储可读且控制面已初始化
// - 503 Service Unavailable：未初始化或存储不可用
func (h *HealthHandler) GetReadiness(c *gin.Context) {
	manager := h.checkManager(c.Request.Context())
	ready := manager["status"] == "healthy"

	body := gin.H{
		"status":    "ready",
		"checks":    gin.H{"manager": ready},
		"timestamp": time.Now().Format(time.RFC3339),
	}
	if !ready {
		body["status"] = "not_ready"
		c.JSON(http.StatusServiceUnavailable, body)
		return
	}
	c.JSON(http.StatusOK, body)
}

func (h *HealthHandler) checkManager(ctx context.Context) map[string]interface{} {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	cv, err := h.querier.GetContractVersion(ctx)
	switch {
	case err == nil:
		return map[string]interface{}{
			"status":   "healthy",
			"contract": cv.Contract,
			"version":  cv.Version,
		}
	case errors.Is(err, domain.ErrNotInstantiated):
		return map[string]interface{}{"status": "not_instantiated"}
	default:
		h.logger.Warn("健康检查读取控制面状态失败", zap.Error(err))
		return map[string]interface{}{"status": "unhealthy", "error": err.Error()}
	}
}
