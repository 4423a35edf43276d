package badger

import (
	"path/filepath"

	configtypes "github.com/weisyn/purchaser/pkg/types"
	"github.com/weisyn/purchaser/pkg/utils"
)

// BadgerOptions BadgerDB存储配置选项
type BadgerOptions struct {
	// === 基础配置 ===
	Path       string `json:"path"`        // 数据库存储路径
	InMemory   bool   `json:"in_memory"`   // 是否使用纯内存模式（不落盘）
	SyncWrites bool   `json:"sync_writes"` // 是否同步写入（数据安全性）

	// === 基础性能配置 ===
	MemTableSize int64 `json:"mem_table_size"` // 内存表大小

	// === 维护配置 ===
	EnableAutoCompaction bool `json:"enable_auto_compaction"` // 是否启用自动压缩
}

// Config BadgerDB配置实现
type Config struct {
	options *BadgerOptions
}

// New 创建BadgerDB配置实现
func New(userConfig *configtypes.UserStorageConfig) *Config {
	defaultOptions := createDefaultBadgerOptions()

	if userConfig != nil {
		applyUserConfig(defaultOptions, userConfig)
	}

	return &Config{
		options: defaultOptions,
	}
}

// NewFromOptions 从BadgerOptions创建配置实现
func NewFromOptions(options *BadgerOptions) *Config {
	return &Config{
		options: options,
	}
}

// createDefaultBadgerOptions 创建默认BadgerDB配置
func createDefaultBadgerOptions() *BadgerOptions {
	return &BadgerOptions{
		Path:                 getDefaultPath(),
		InMemory:             defaultInMemory,
		SyncWrites:           defaultSyncWrites,
		MemTableSize:         defaultMemTableSize,
		EnableAutoCompaction: defaultEnableAutoCompaction,
	}
}

// applyUserConfig 应用用户配置覆盖默认值
//
// 路径构建规则：
// - 配置了 storage.data_root 时使用 {data_root}/badger/
// - 未配置时使用默认值 ./data/badger/
func applyUserConfig(options *BadgerOptions, storageConfig *configtypes.UserStorageConfig) {
	if storageConfig.DataRoot != nil {
		badgerPath := filepath.Join(*storageConfig.DataRoot, "badger")
		options.Path = utils.ResolveDataPath(badgerPath)
	}
	if storageConfig.InMemory != nil {
		options.InMemory = *storageConfig.InMemory
	}
	if storageConfig.SyncWrites != nil {
		options.SyncWrites = *storageConfig.SyncWrites
	}
}

// GetOptions 获取完整的BadgerDB配置选项
func (c *Config) GetOptions() *BadgerOptions {
	return c.options
}

// GetPath 获取数据库路径
func (c *Config) GetPath() string {
	return c.options.Path
}

// IsInMemory 是否为纯内存模式
func (c *Config) IsInMemory() bool {
	return c.options.InMemory
}

// IsSyncWritesEnabled 是否启用同步写入
func (c *Config) IsSyncWritesEnabled() bool {
	return c.options.SyncWrites
}

// GetMemTableSize 获取内存表大小
func (c *Config) GetMemTableSize() int64 {
	return c.options.MemTableSize
}

// IsAutoCompactionEnabled 是否启用自动压缩
func (c *Config) IsAutoCompactionEnabled() bool {
	return c.options.EnableAutoCompaction
}
