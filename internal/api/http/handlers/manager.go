// Package handlers provides HTTP API handlers for the purchaser control plane.
package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/weisyn/purchaser/internal/api/http/middleware"
	"github.com/weisyn/purchaser/internal/api/http/types"
	apitypes "github.com/weisyn/purchaser/internal/api/types"
	managerInterface "github.com/weisyn/purchaser/pkg/interfaces/manager"
	domain "github.com/weisyn/purchaser/pkg/types"
)

// 分页上限
const maxOutboxLimit = 1000

// ManagerHandler 控制面端点
//
//	POST /api/v1/manager/execute           执行一条命令
//	GET  /api/v1/manager/state             所有者与重试间隔
//	GET  /api/v1/manager/chains/:chain_id  链路由
//	GET  /api/v1/manager/version           合约版本记录
//	GET  /api/v1/manager/outbox?limit=N    待投递消息
type ManagerHandler struct {
	logger         *zap.Logger
	service        managerInterface.Service
	outbox         managerInterface.Outbox // 可为空
	maxRequestSize int64
}

// NewManagerHandler 创建控制面处理器
func NewManagerHandler(logger *zap.Logger, service managerInterface.Service, outbox managerInterface.Outbox, maxRequestSize int64) *ManagerHandler {
	return &ManagerHandler{
		logger:         logger,
		service:        service,
		outbox:         outbox,
		maxRequestSize: maxRequestSize,
	}
}

// RegisterRoutes 注册控制面路由
func (h *ManagerHandler) RegisterRoutes(r *gin.RouterGroup, writeMiddleware ...gin.HandlerFunc) {
	m := r.Group("/manager")
	{
		m.POST("/execute", append(writeMiddleware, h.Execute)...)
		m.GET("/state", h.GetState)
		m.GET("/chains/:chain_id", h.GetChainSetting)
		m.GET("/version", h.GetContractVersion)
		if h.outbox != nil {
			m.GET("/outbox", h.ListOutbox)
		}
	}
}

// Execute 执行命令
//
// 成功返回 Response（messages + attributes）；失败返回 Problem Details，
// 状态不发生任何变化。
func (h *ManagerHandler) Execute(c *gin.Context) {
	if h.maxRequestSize > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxRequestSize)
	}

	var req types.ExecuteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			middleware.WriteError(c, apitypes.CodeCommonRequestTooLarge, "请求体过大",
				err.Error(), http.StatusRequestEntityTooLarge, map[string]interface{}{"limit": tooLarge.Limit})
			return
		}
		middleware.WriteError(c, apitypes.CodeCommonValidationError, "请求格式错误，需要 sender 与 msg 字段",
			err.Error(), http.StatusBadRequest, nil)
		return
	}

	resp, err := h.service.ExecuteMessage(c.Request.Context(), req.Sender, req.Funds, req.Msg)
	if err != nil {
		_ = c.Error(err)
		return
	}
	h.ok(c, resp)
}

// GetState 查询所有者与重试间隔
func (h *ManagerHandler) GetState(c *gin.Context) {
	st, err := h.service.GetState(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}
	h.ok(c, st)
}

// GetChainSetting 查询链路由
func (h *ManagerHandler) GetChainSetting(c *gin.Context) {
	setting, err := h.service.GetChainSetting(c.Request.Context(), c.Param("chain_id"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	h.ok(c, setting)
}

// GetContractVersion 查询合约版本
func (h *ManagerHandler) GetContractVersion(c *gin.Context) {
	cv, err := h.service.GetContractVersion(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}
	h.ok(c, cv)
}

// ListOutbox 列出待投递消息
func (h *ManagerHandler) ListOutbox(c *gin.Context) {
	limit := 100
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 || n > maxOutboxLimit {
			middleware.WriteError(c, apitypes.CodeCommonValidationError, "limit 必须在 1 到 1000 之间",
				"invalid limit: "+v, http.StatusBadRequest, nil)
			return
		}
		limit = n
	}

	entries, err := h.outbox.Pending(c.Request.Context(), limit)
	if err != nil {
		_ = c.Error(err)
		return
	}
	if entries == nil {
		entries = []domain.OutboxEntry{}
	}
	h.ok(c, types.OutboxResponse{Entries: entries, Count: len(entries)})
}

func (h *ManagerHandler) ok(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, types.NewSuccessResponse(data).
		WithRequestID(middleware.GetRequestID(c)).
		WithTimestamp(time.Now().UTC().Format(time.RFC3339)))
}
