// Package types provides WebSocket event type definitions.
package types

import (
	domain "github.com/weisyn/purchaser/pkg/types"
)

// 帧类型
const (
	FrameSubscribed = "subscribed"
	FrameMessage    = "message"
)

// SubscribedFrame 连接建立后的首帧
type SubscribedFrame struct {
	Type         string `json:"type"`         // "subscribed"
	Subscription string `json:"subscription"` // 订阅ID
	Replayed     int    `json:"replayed"`     // 回放的未投递条目数
}

// MessageFrame 已提交消息事件
// Seq 单调递增，客户端断线重连时以 after=<Seq> 续接
type MessageFrame struct {
	Type         string             `json:"type"` // "message"
	Subscription string             `json:"subscription"`
	Entry        domain.OutboxEntry `json:"entry"`
}
