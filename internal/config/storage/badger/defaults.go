package badger

import (
	"path/filepath"

	"github.com/weisyn/purchaser/pkg/utils"
)

// BadgerDB存储默认配置值
const (
	// defaultInMemory 默认落盘
	defaultInMemory = false

	// defaultSyncWrites 默认启用同步写入
	// 控制面状态量很小，每条命令一次提交，优先保证持久性
	defaultSyncWrites = true

	// defaultMemTableSize 内存表大小设为16MB
	defaultMemTableSize = 16 << 20

	// defaultEnableAutoCompaction 默认启用自动压缩
	defaultEnableAutoCompaction = true
)

// getDefaultPath 获取默认数据库路径 ./data/badger
func getDefaultPath() string {
	return utils.ResolveDataPath(filepath.Join("data", "badger"))
}
