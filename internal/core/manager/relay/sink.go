// Package relay 把已提交的 outbox 消息转交给外部作业队列
//
// 转发器只负责搬运：按序号读取、投递、确认删除，不检查消息内容。
// 投递语义为至少一次，下游按 OutboxEntry.ID 去重。
package relay

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	relayconfig "github.com/weisyn/purchaser/internal/config/relay"
	"github.com/weisyn/purchaser/pkg/types"
)

// Sink 消息投递目标
type Sink interface {
	Deliver(ctx context.Context, entry types.OutboxEntry) error
	Close() error
}

// RedisSink 以 RPUSH 写入 Redis 列表
type RedisSink struct {
	client *redis.Client
	key    string
}

var _ Sink = (*RedisSink)(nil)

// NewRedisSink 使用已有客户端创建投递目标
func NewRedisSink(client *redis.Client, key string) *RedisSink {
	return &RedisSink{client: client, key: key}
}

// DialRedis 按配置连接 Redis 并探活
func DialRedis(ctx context.Context, opts *relayconfig.RelayOptions) (*redis.Client, error) {
	if opts == nil {
		return nil, fmt.Errorf("relay config cannot be nil")
	}
	if opts.RedisAddr == "" {
		return nil, fmt.Errorf("redis address cannot be empty")
	}

	client := redis.NewClient(&redis.Options{
		Addr: opts.RedisAddr,
		DB:   opts.RedisDB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}

// Deliver 投递单条消息
func (s *RedisSink) Deliver(ctx context.Context, entry types.OutboxEntry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("序列化outbox条目失败: %w", err)
	}
	if err := s.client.RPush(ctx, s.key, data).Err(); err != nil {
		return fmt.Errorf("写入作业队列 %s 失败: %w", s.key, err)
	}
	return nil
}

// Close 关闭客户端
func (s *RedisSink) Close() error {
	return s.client.Close()
}
