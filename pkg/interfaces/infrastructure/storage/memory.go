package storage

// MemoryCache 定义进程内查询缓存接口
//
// 缓存未命中不是错误；缓存故障只影响读性能，不影响正确性。
type MemoryCache interface {
	// Get 读取缓存值，未命中时 ok 为 false
	Get(key string) (value []byte, ok bool)

	// Set 写入缓存值
	Set(key string, value []byte) error

	// Delete 删除缓存值，键不存在时不报错
	Delete(key string) error

	// Close 关闭缓存并释放资源
	Close() error
}
