package websocket

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/weisyn/purchaser/pkg/interfaces/infrastructure/event"
	"github.com/weisyn/purchaser/pkg/types"
)

// Subscription 单个连接的消息订阅
type Subscription struct {
	ID     string
	Action string                 // 只接收该 action 的消息，空表示全部
	C      chan types.OutboxEntry // 事件缓冲，满时丢弃并计数

	mu      sync.Mutex
	dropped uint64
}

// Dropped 因缓冲满而丢弃的条目数
func (s *Subscription) Dropped() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dropped
}

func (s *Subscription) offer(entry types.OutboxEntry) {
	if s.Action != "" && s.Action != entry.Action {
		return
	}
	select {
	case s.C <- entry:
	default:
		s.mu.Lock()
		s.dropped++
		s.mu.Unlock()
	}
}

// SubscriptionManager 订阅管理器
// 对事件总线只挂接一次，再按连接扇出
//
// 事件总线在持有自身锁时同步调用处理器，因此挂接与解除只在
// 构造和 Close 中进行，不与 m.mu 嵌套。
type SubscriptionManager struct {
	logger        *zap.Logger
	eventBus      event.EventBus
	bufferSize    int
	mu            sync.RWMutex
	subscriptions map[string]*Subscription
	handler       func(types.OutboxEntry)
	closeOnce     sync.Once
}

// NewSubscriptionManager 创建订阅管理器并挂接事件总线
func NewSubscriptionManager(logger *zap.Logger, eventBus event.EventBus, bufferSize int) (*SubscriptionManager, error) {
	if bufferSize <= 0 {
		bufferSize = 256
	}
	m := &SubscriptionManager{
		logger:        logger,
		eventBus:      eventBus,
		bufferSize:    bufferSize,
		subscriptions: make(map[string]*Subscription),
	}
	m.handler = m.dispatch
	if eventBus != nil {
		if err := eventBus.Subscribe(event.EventType(types.EventManagerMessage), m.handler); err != nil {
			return nil, fmt.Errorf("subscribe event bus: %w", err)
		}
	}
	return m, nil
}

// Close 解除事件总线挂接
func (m *SubscriptionManager) Close() {
	m.closeOnce.Do(func() {
		if m.eventBus == nil {
			return
		}
		if err := m.eventBus.Unsubscribe(event.EventType(types.EventManagerMessage), m.handler); err != nil {
			m.logger.Warn("Failed to detach event bus", zap.Error(err))
		}
	})
}

// Subscribe 创建新订阅
func (m *SubscriptionManager) Subscribe(action string) *Subscription {
	sub := &Subscription{
		ID:     fmt.Sprintf("0x%s", uuid.New().String()[:8]),
		Action: action,
		C:      make(chan types.OutboxEntry, m.bufferSize),
	}
	m.mu.Lock()
	m.subscriptions[sub.ID] = sub
	m.mu.Unlock()
	return sub
}

// Unsubscribe 取消订阅
func (m *SubscriptionManager) Unsubscribe(id string) {
	m.mu.Lock()
	sub, ok := m.subscriptions[id]
	delete(m.subscriptions, id)
	m.mu.Unlock()

	if ok {
		if dropped := sub.Dropped(); dropped > 0 {
			m.logger.Warn("Subscription dropped messages",
				zap.String("id", id),
				zap.Uint64("dropped", dropped))
		}
	}
}

// Count 当前订阅数
func (m *SubscriptionManager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.subscriptions)
}

// dispatch 在发布者的 goroutine 中执行，不能阻塞
func (m *SubscriptionManager) dispatch(entry types.OutboxEntry) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, sub := range m.subscriptions {
		sub.offer(entry)
	}
}
