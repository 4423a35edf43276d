package memory

import "time"

// 查询缓存默认配置值
const (
	defaultEnabled = true

	// 链路由只在 set_chain_setting 时变化，写入时会主动失效
	defaultLifeWindow  = 10 * time.Minute
	defaultCleanWindow = time.Minute

	// 链数量通常在个位数到几十之间
	defaultMaxEntriesInWindow = 1024
	defaultMaxEntrySize       = 256
	defaultHardMaxCacheSizeMB = 8
)
