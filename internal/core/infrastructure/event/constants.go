// 事件类型常量定义

package event

import "github.com/weisyn/purchaser/pkg/interfaces/infrastructure/event"

// 全局事件类型定义 - 只保留基础的系统事件类型
// 业务事件类型由各业务模块定义
const (
	SystemStarted event.EventType = "system:started"
	SystemStopped event.EventType = "system:stopped"
)
