// 基于asaskevich/EventBus的事件总线实现

package event

import (
	"sync/atomic"

	evbus "github.com/asaskevich/EventBus"
	"github.com/weisyn/purchaser/pkg/interfaces/infrastructure/event"
	"github.com/weisyn/purchaser/pkg/interfaces/infrastructure/log"
)

var _ event.EventBus = (*EventBus)(nil)

// EventBus 是对asaskevich/EventBus的薄封装
// 增加了发布计数与无订阅者时的调试日志
type EventBus struct {
	bus    evbus.Bus
	logger log.Logger

	published atomic.Uint64 // 发布总数
	dropped   atomic.Uint64 // 无订阅者的发布数
}

// Stats 事件总线统计
type Stats struct {
	Published uint64 `json:"published"`
	Dropped   uint64 `json:"dropped"`
}

// New 创建事件总线实例
func New(logger log.Logger) *EventBus {
	return &EventBus{
		bus:    evbus.New(),
		logger: logger,
	}
}

// Subscribe 实现订阅
func (eb *EventBus) Subscribe(eventType event.EventType, handler interface{}) error {
	return eb.bus.Subscribe(string(eventType), handler)
}

// SubscribeAsync 实现异步订阅
func (eb *EventBus) SubscribeAsync(eventType event.EventType, handler interface{}, transactional bool) error {
	return eb.bus.SubscribeAsync(string(eventType), handler, transactional)
}

// Publish 发布事件
func (eb *EventBus) Publish(eventType event.EventType, args ...interface{}) {
	eb.published.Add(1)
	if !eb.bus.HasCallback(string(eventType)) {
		eb.dropped.Add(1)
		if eb.logger != nil {
			eb.logger.Debugf("事件无订阅者: %s", eventType)
		}
		return
	}
	eb.bus.Publish(string(eventType), args...)
}

// Unsubscribe 取消订阅
func (eb *EventBus) Unsubscribe(eventType event.EventType, handler interface{}) error {
	return eb.bus.Unsubscribe(string(eventType), handler)
}

// WaitAsync 等待所有异步处理完成
func (eb *EventBus) WaitAsync() {
	eb.bus.WaitAsync()
}

// HasCallback 检查是否有回调函数
func (eb *EventBus) HasCallback(eventType event.EventType) bool {
	return eb.bus.HasCallback(string(eventType))
}

// Stats 返回统计快照
func (eb *EventBus) Stats() Stats {
	return Stats{
		Published: eb.published.Load(),
		Dropped:   eb.dropped.Load(),
	}
}
