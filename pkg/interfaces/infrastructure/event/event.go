// Package event 定义控制面内部的事件总线接口
//
// 📡 **事件总线 (Event Bus)**
//
// 命令提交成功后，发出的每条消息都会以事件形式广播，
// 由中继转发器等订阅方异步消费。事件总线只承担进程内通知，
// 消息的持久化投递依赖存储层的 outbox。
package event

// EventType 事件类型
type EventType string

// EventBus 定义事件总线接口
type EventBus interface {
	// Subscribe 同步订阅事件
	Subscribe(eventType EventType, handler interface{}) error

	// SubscribeAsync 异步订阅事件
	// transactional 为 true 时同一订阅者的回调串行执行
	SubscribeAsync(eventType EventType, handler interface{}, transactional bool) error

	// Publish 发布事件
	Publish(eventType EventType, args ...interface{})

	// Unsubscribe 取消订阅
	Unsubscribe(eventType EventType, handler interface{}) error

	// WaitAsync 等待所有异步处理完成
	WaitAsync()

	// HasCallback 检查是否有回调函数
	HasCallback(eventType EventType) bool
}
