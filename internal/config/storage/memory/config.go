package memory

import (
	"time"

	"github.com/weisyn/purchaser/pkg/types"
)

// MemoryOptions 查询缓存配置选项
// 缓存只服务于读路径，命令执行始终读写 BadgerDB
type MemoryOptions struct {
	Enabled            bool          `json:"enabled"`               // 是否启用查询缓存
	LifeWindow         time.Duration `json:"life_window"`           // 条目存活时间
	CleanWindow        time.Duration `json:"clean_window"`          // 过期清理间隔
	MaxEntriesInWindow int           `json:"max_entries_in_window"` // 存活窗口内的预估条目数
	MaxEntrySize       int           `json:"max_entry_size"`        // 单条目预估大小(字节)
	HardMaxCacheSizeMB int           `json:"hard_max_cache_size"`   // 内存上限(MB)，0 表示不限
}

// Config 查询缓存配置实现
type Config struct {
	options *MemoryOptions
}

// New 创建查询缓存配置实现
func New(userConfig *types.UserStorageConfig) *Config {
	options := createDefaultMemoryOptions()

	if userConfig != nil {
		if userConfig.QueryCache != nil {
			options.Enabled = *userConfig.QueryCache
		}
		if userConfig.QueryCacheTTL != nil {
			if d, err := time.ParseDuration(*userConfig.QueryCacheTTL); err == nil && d > 0 {
				options.LifeWindow = d
			}
		}
	}

	return &Config{options: options}
}

func createDefaultMemoryOptions() *MemoryOptions {
	return &MemoryOptions{
		Enabled:            defaultEnabled,
		LifeWindow:         defaultLifeWindow,
		CleanWindow:        defaultCleanWindow,
		MaxEntriesInWindow: defaultMaxEntriesInWindow,
		MaxEntrySize:       defaultMaxEntrySize,
		HardMaxCacheSizeMB: defaultHardMaxCacheSizeMB,
	}
}

// GetOptions 获取完整的查询缓存配置选项
func (c *Config) GetOptions() *MemoryOptions {
	return c.options
}
