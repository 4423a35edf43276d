// Package types provides HTTP request and response type definitions.
package types

import (
	"encoding/json"

	domain "github.com/weisyn/purchaser/pkg/types"
)

// SuccessResponse 统一成功响应格式
type SuccessResponse struct {
	Data      interface{} `json:"data"`
	RequestID string      `json:"requestId,omitempty"`
	Timestamp string      `json:"timestamp,omitempty"`
}

// NewSuccessResponse 创建成功响应
func NewSuccessResponse(data interface{}) *SuccessResponse {
	return &SuccessResponse{
		Data: data,
	}
}

// WithRequestID 添加请求ID
func (r *SuccessResponse) WithRequestID(requestID string) *SuccessResponse {
	r.RequestID = requestID
	return r
}

// WithTimestamp 添加时间戳
func (r *SuccessResponse) WithTimestamp(timestamp string) *SuccessResponse {
	r.Timestamp = timestamp
	return r
}

// ExecuteRequest 命令执行请求
// Msg 为单键命令信封，例如 {"add_owner":{"owners":["paloma1..."]}}
type ExecuteRequest struct {
	Sender string          `json:"sender" binding:"required"`
	Funds  []domain.Coin   `json:"funds,omitempty"`
	Msg    json.RawMessage `json:"msg" binding:"required"`
}

// OutboxResponse 待投递消息列表
type OutboxResponse struct {
	Entries []domain.OutboxEntry `json:"entries"`
	Count   int                  `json:"count"`
}

// HealthResponse 健康检查响应
type HealthResponse struct {
	Status     string                 `json:"status"` // healthy, degraded, unhealthy
	Liveness   string                 `json:"liveness"`
	Readiness  string                 `json:"readiness"`
	Version    string                 `json:"version"`
	Uptime     string                 `json:"uptime"`
	Timestamp  string                 `json:"timestamp"`
	Components map[string]interface{} `json:"components"`
}
