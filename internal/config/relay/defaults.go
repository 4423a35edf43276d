package relay

import "time"

const (
	defaultEnabled      = false
	defaultRedisAddr    = "127.0.0.1:6379"
	defaultRedisDB      = 0
	defaultQueueKey     = "purchaser:jobs"
	defaultPollInterval = 5 * time.Second
	defaultBatchSize    = 64
)
