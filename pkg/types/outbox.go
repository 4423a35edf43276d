package types

import (
	"context"
	"time"
)

// 控制面事件主题
const (
	// EventManagerMessage 命令提交后，每条发出的消息广播一次，参数为 OutboxEntry
	EventManagerMessage = "manager:message"
)

// OutboxEntry 已提交、待中继投递的消息
// Seq 单调递增，决定投递顺序；ID 用于下游去重；
// RequestID 为产生该消息的命令请求的追踪ID（可为空）
type OutboxEntry struct {
	Seq       uint64    `json:"seq"`
	ID        string    `json:"id"`
	Action    string    `json:"action"`
	Message   CosmosMsg `json:"message"`
	RequestID string    `json:"request_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type requestIDKey struct{}

// WithRequestID 在上下文中附带命令请求的追踪ID
func WithRequestID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestIDFromContext 读取追踪ID，没有时返回空串
func RequestIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}
