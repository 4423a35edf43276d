package relay

import (
	"context"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/weisyn/purchaser/pkg/interfaces/infrastructure/event"
	"github.com/weisyn/purchaser/pkg/interfaces/infrastructure/log"
	managerInterface "github.com/weisyn/purchaser/pkg/interfaces/manager"
	"github.com/weisyn/purchaser/pkg/types"
)

var (
	deliveredTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "purchaser",
		Subsystem: "relay",
		Name:      "delivered_total",
		Help:      "Total number of outbox entries delivered to the job queue",
	})

	deliveryFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "purchaser",
		Subsystem: "relay",
		Name:      "delivery_failures_total",
		Help:      "Total number of failed outbox deliveries",
	})
)

// Forwarder outbox 转发器
//
// 触发排空的时机：启动时、收到 manager:message 事件时、每个轮询周期。
// 同一时刻只有一个排空循环在运行，投递失败时停在失败条目上等待下次触发，
// 保证投递顺序与序号一致。
type Forwarder struct {
	outbox   managerInterface.Outbox
	sink     Sink
	bus      event.EventBus
	logger   log.Logger
	interval time.Duration
	batch    int

	trigger   chan struct{}
	stop      chan struct{}
	wg        sync.WaitGroup
	onMessage func(types.OutboxEntry)
	startOnce sync.Once
	stopOnce  sync.Once
}

// NewForwarder 创建转发器
func NewForwarder(outbox managerInterface.Outbox, sink Sink, bus event.EventBus, logger log.Logger, interval time.Duration, batch int) *Forwarder {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	if batch <= 0 {
		batch = 64
	}
	f := &Forwarder{
		outbox:   outbox,
		sink:     sink,
		bus:      bus,
		logger:   logger,
		interval: interval,
		batch:    batch,
		trigger:  make(chan struct{}, 1),
		stop:     make(chan struct{}),
	}
	f.onMessage = func(types.OutboxEntry) { f.Notify() }
	return f
}

// Notify 请求一次排空，已有待处理请求时合并
func (f *Forwarder) Notify() {
	select {
	case f.trigger <- struct{}{}:
	default:
	}
}

// Start 订阅消息事件并启动后台循环
func (f *Forwarder) Start() error {
	var err error
	f.startOnce.Do(func() {
		if f.bus != nil {
			// 同步订阅：回调只做非阻塞通知
			err = f.bus.Subscribe(event.EventType(types.EventManagerMessage), f.onMessage)
			if err != nil {
				return
			}
		}
		f.wg.Add(1)
		go f.loop()
		f.Notify()
	})
	return err
}

// Stop 停止后台循环并等待退出
func (f *Forwarder) Stop() {
	f.stopOnce.Do(func() {
		if f.bus != nil {
			_ = f.bus.Unsubscribe(event.EventType(types.EventManagerMessage), f.onMessage)
		}
		close(f.stop)
		f.wg.Wait()
	})
}

func (f *Forwarder) loop() {
	defer f.wg.Done()
	ticker := time.NewTicker(f.interval)
	defer ticker.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		<-f.stop
		cancel()
	}()

	for {
		select {
		case <-f.stop:
			return
		case <-f.trigger:
		case <-ticker.C:
		}
		if _, err := f.Drain(ctx); err != nil && ctx.Err() == nil && f.logger != nil {
			f.logger.Warnf("outbox 转发失败，等待下次重试: %v", err)
		}
	}
}

// Drain 按序投递所有待处理消息，返回成功投递的条数
// 遇到第一次失败即停止，已投递的部分仍会被确认
func (f *Forwarder) Drain(ctx context.Context) (int, error) {
	total := 0
	for {
		entries, err := f.outbox.Pending(ctx, f.batch)
		if err != nil {
			return total, err
		}
		if len(entries) == 0 {
			return total, nil
		}

		delivered := make([]uint64, 0, len(entries))
		var deliverErr error
		for _, e := range entries {
			if err := f.sink.Deliver(ctx, e); err != nil {
				deliveryFailuresTotal.Inc()
				deliverErr = err
				break
			}
			delivered = append(delivered, e.Seq)
		}

		if err := f.outbox.Ack(ctx, delivered...); err != nil {
			return total, err
		}
		total += len(delivered)
		deliveredTotal.Add(float64(len(delivered)))

		if deliverErr != nil {
			return total, deliverErr
		}
		if len(entries) < f.batch {
			return total, nil
		}
	}
}
