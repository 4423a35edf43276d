package service

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/weisyn/purchaser/pkg/types"
)

var (
	// 命令执行次数
	commandsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "purchaser",
		Subsystem: "manager",
		Name:      "commands_total",
		Help:      "Total number of control-plane commands by action and result",
	}, []string{"action", "result"})

	// 命令执行耗时（含事务提交）
	commandDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "purchaser",
		Subsystem: "manager",
		Name:      "command_duration_seconds",
		Help:      "Duration of control-plane command execution in seconds",
		Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
	}, []string{"action"})

	// 写入 outbox 的消息数
	outboxAppendedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "purchaser",
		Subsystem: "manager",
		Name:      "outbox_appended_total",
		Help:      "Total number of messages appended to the outbox by kind",
	}, []string{"kind"})
)

// resultLabel 把错误归类为指标标签
func resultLabel(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, types.ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, types.ErrNotFound):
		return "not_found"
	case errors.Is(err, types.ErrUnsupportedCommand), errors.Is(err, types.ErrUnknownCommand):
		return "rejected"
	case errors.Is(err, types.ErrInvalidPrincipal), errors.Is(err, types.ErrInvalidArgument):
		return "invalid"
	case types.IsEncodingError(err):
		return "encoding"
	default:
		return "error"
	}
}
