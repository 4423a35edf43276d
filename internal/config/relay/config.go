// Package relay 出站消息中继配置
package relay

import (
	"time"

	"github.com/weisyn/purchaser/pkg/types"
)

// RelayOptions 中继配置选项
type RelayOptions struct {
	Enabled      bool          `json:"enabled"`       // 是否启动转发器
	RedisAddr    string        `json:"redis_addr"`    // Redis 地址 host:port
	RedisDB      int           `json:"redis_db"`      // Redis 库编号
	QueueKey     string        `json:"queue_key"`     // 作业队列 key
	PollInterval time.Duration `json:"poll_interval"` // 兜底轮询间隔
	BatchSize    int           `json:"batch_size"`    // 单次排空最大条数
}

// Config 中继配置实现
type Config struct {
	options *RelayOptions
}

// New 创建中继配置实现
// poll_interval 解析失败时保留默认值
func New(userConfig *types.UserRelayConfig) *Config {
	options := &RelayOptions{
		Enabled:      defaultEnabled,
		RedisAddr:    defaultRedisAddr,
		RedisDB:      defaultRedisDB,
		QueueKey:     defaultQueueKey,
		PollInterval: defaultPollInterval,
		BatchSize:    defaultBatchSize,
	}

	if userConfig != nil {
		if userConfig.Enabled != nil {
			options.Enabled = *userConfig.Enabled
		}
		if userConfig.RedisAddr != nil {
			options.RedisAddr = *userConfig.RedisAddr
		}
		if userConfig.RedisDB != nil {
			options.RedisDB = *userConfig.RedisDB
		}
		if userConfig.QueueKey != nil {
			options.QueueKey = *userConfig.QueueKey
		}
		if userConfig.PollInterval != nil {
			if d, err := time.ParseDuration(*userConfig.PollInterval); err == nil && d > 0 {
				options.PollInterval = d
			}
		}
	}

	return &Config{options: options}
}

// GetOptions 获取完整配置选项
func (c *Config) GetOptions() *RelayOptions {
	return c.options
}
