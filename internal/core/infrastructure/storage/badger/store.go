// Package badger 提供基于BadgerDB的存储实现
package badger

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"time"

	badgerdb "github.com/dgraph-io/badger/v3"
	badgerconfig "github.com/weisyn/purchaser/internal/config/storage/badger"
	"github.com/weisyn/purchaser/pkg/interfaces/infrastructure/log"
	interfaces "github.com/weisyn/purchaser/pkg/interfaces/infrastructure/storage"
	"go.uber.org/zap"
)

var _ interfaces.BadgerStore = (*Store)(nil)

// ErrStoreClosing 存储正在关闭，拒绝新的读写
var ErrStoreClosing = errors.New("badger store is closing")

// Store 实现BadgerStore接口
type Store struct {
	db         *badgerdb.DB
	config     *badgerconfig.Config
	logger     log.Logger
	cancelFunc context.CancelFunc // 取消后台维护任务

	// 关闭过程中阻断写入，等待 in-flight 事务退出
	closing int32
	writeWg sync.WaitGroup
}

// New 创建新的BadgerStore实例
// 初始化数据库并启动维护任务
func New(config *badgerconfig.Config, logger log.Logger) (*Store, error) {
	if logger == nil {
		logger = nopLogger{}
	}
	store := &Store{
		config: config,
		logger: logger,
	}

	var opts badgerdb.Options
	if config.IsInMemory() {
		logger.Info("初始化BadgerDB存储（内存模式）")
		opts = badgerdb.DefaultOptions("").WithInMemory(true)
	} else {
		dataDir := config.GetPath()
		if dataDir == "" {
			return nil, fmt.Errorf("BadgerDB数据目录路径未配置")
		}
		logger.Infof("初始化BadgerDB存储，数据目录: %s", dataDir)
		if err := os.MkdirAll(dataDir, 0700); err != nil {
			return nil, fmt.Errorf("无法创建BadgerDB数据目录: %w", err)
		}
		opts = badgerdb.DefaultOptions(dataDir)
		opts.SyncWrites = config.IsSyncWritesEnabled()
		// 控制面数据量很小，缩小 value log 与缓存
		opts.ValueLogFileSize = 64 << 20
	}

	if size := config.GetMemTableSize(); size > 0 {
		opts.MemTableSize = size
	}
	// 单批最大为内存表的 15%，值阈值不能超过它
	if limit := maxValueThreshold(opts.MemTableSize); opts.ValueThreshold > limit {
		opts.ValueThreshold = limit
	}
	opts.BlockCacheSize = 16 << 20
	opts.IndexCacheSize = 16 << 20
	opts.NumMemtables = 2
	opts.NumCompactors = 2
	opts.Logger = newBadgerLogger(logger)

	db, err := badgerdb.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("无法打开BadgerDB: %w", err)
	}
	store.db = db

	if config.IsAutoCompactionEnabled() && !config.IsInMemory() {
		ctx, cancel := context.WithCancel(context.Background())
		store.cancelFunc = cancel
		store.StartMaintenanceRoutines(ctx)
	}

	return store, nil
}

type nopLogger struct{}

func (nopLogger) Debug(string)                   {}
func (nopLogger) Debugf(string, ...interface{})  {}
func (nopLogger) Info(string)                    {}
func (nopLogger) Infof(string, ...interface{})   {}
func (nopLogger) Warn(string)                    {}
func (nopLogger) Warnf(string, ...interface{})   {}
func (nopLogger) Error(string)                   {}
func (nopLogger) Errorf(string, ...interface{})  {}
func (nopLogger) Fatal(string)                   {}
func (nopLogger) Fatalf(string, ...interface{})  {}
func (nopLogger) With(...interface{}) log.Logger { return nopLogger{} }
func (nopLogger) Sync() error                    { return nil }
func (nopLogger) GetZapLogger() *zap.Logger      { return zap.NewNop() }

// Close 关闭数据库
// 重复调用是安全的
func (s *Store) Close() error {
	if !atomic.CompareAndSwapInt32(&s.closing, 0, 1) {
		return nil
	}

	if s.cancelFunc != nil {
		s.cancelFunc()
	}
	if s.db == nil {
		return nil
	}

	// 等待所有写事务退出
	waitCh := make(chan struct{})
	go func() {
		s.writeWg.Wait()
		close(waitCh)
	}()
	select {
	case <-waitCh:
	case <-time.After(30 * time.Second):
		s.logger.Warn("等待 in-flight 写事务超时（30s），继续关闭 BadgerDB")
	}

	if err := s.db.Close(); err != nil {
		s.logger.Errorf("关闭BadgerDB失败: %v", err)
		return fmt.Errorf("关闭BadgerDB失败: %w", err)
	}

	s.logger.Info("BadgerDB存储已关闭")
	return nil
}

func (s *Store) beginWrite() (func(), error) {
	if atomic.LoadInt32(&s.closing) == 1 {
		return nil, ErrStoreClosing
	}
	s.writeWg.Add(1)
	// double-check，避免在 Add 之后进入 closing
	if atomic.LoadInt32(&s.closing) == 1 {
		s.writeWg.Done()
		return nil, ErrStoreClosing
	}
	return s.writeWg.Done, nil
}

// Get 获取指定键的值
func (s *Store) Get(ctx context.Context, key []byte) ([]byte, error) {
	var valCopy []byte
	err := s.db.View(func(txn *badgerdb.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			if errors.Is(err, badgerdb.ErrKeyNotFound) {
				return nil // 键不存在时返回nil值和nil错误
			}
			return err
		}
		valCopy, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("badger获取键失败: %w", err)
	}
	return valCopy, nil
}

// Set 设置键值对
func (s *Store) Set(ctx context.Context, key, value []byte) error {
	done, err := s.beginWrite()
	if err != nil {
		return err
	}
	defer done()

	if err := s.db.Update(func(txn *badgerdb.Txn) error {
		return txn.Set(key, value)
	}); err != nil {
		return fmt.Errorf("badger设置键失败: %w", err)
	}
	return nil
}

// Delete 删除指定键
func (s *Store) Delete(ctx context.Context, key []byte) error {
	done, err := s.beginWrite()
	if err != nil {
		return err
	}
	defer done()

	if err := s.db.Update(func(txn *badgerdb.Txn) error {
		return txn.Delete(key)
	}); err != nil {
		return fmt.Errorf("badger删除键失败: %w", err)
	}
	return nil
}

// Exists 检查键是否存在
func (s *Store) Exists(ctx context.Context, key []byte) (bool, error) {
	var exists bool
	err := s.db.View(func(txn *badgerdb.Txn) error {
		_, err := txn.Get(key)
		if errors.Is(err, badgerdb.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		exists = true
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("badger检查键存在性失败: %w", err)
	}
	return exists, nil
}

// PrefixScan 按前缀扫描键值对，结果按键升序
func (s *Store) PrefixScan(ctx context.Context, prefix []byte) ([]interfaces.KeyValue, error) {
	var result []interfaces.KeyValue
	err := s.db.View(func(txn *badgerdb.Txn) error {
		var err error
		result, err = scanPrefix(txn, prefix)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("badger前缀扫描失败: %w", err)
	}
	return result, nil
}

// scanPrefix 在给定事务内迭代前缀，Badger迭代器本身按字节序输出
func scanPrefix(txn *badgerdb.Txn, prefix []byte) ([]interfaces.KeyValue, error) {
	opts := badgerdb.DefaultIteratorOptions
	opts.PrefetchValues = true
	opts.Prefix = prefix

	it := txn.NewIterator(opts)
	defer it.Close()

	var result []interfaces.KeyValue
	for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
		item := it.Item()
		val, err := item.ValueCopy(nil)
		if err != nil {
			return nil, err
		}
		result = append(result, interfaces.KeyValue{
			Key:   item.KeyCopy(nil),
			Value: val,
		})
	}
	return result, nil
}

// RunInTransaction 在读写事务中执行操作
// fn 返回错误时丢弃事务，原样返回该错误（可被 errors.Is 识别）
func (s *Store) RunInTransaction(ctx context.Context, fn func(tx interfaces.BadgerTransaction) error) error {
	done, err := s.beginWrite()
	if err != nil {
		return err
	}
	defer done()

	if err := ctx.Err(); err != nil {
		return err
	}

	tx := &Transaction{
		txn:   s.db.NewTransaction(true),
		state: int32(TxActive),
	}
	defer tx.Discard()

	if err := fn(tx); err != nil {
		return err
	}

	if tx.IsActive() {
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("事务提交失败: %w", err)
		}
	} else if tx.IsDiscarded() {
		return fmt.Errorf("事务已被丢弃")
	}
	return nil
}

// View 在只读事务中执行操作
func (s *Store) View(ctx context.Context, fn func(tx interfaces.BadgerTransaction) error) error {
	if atomic.LoadInt32(&s.closing) == 1 {
		return ErrStoreClosing
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	return s.db.View(func(txn *badgerdb.Txn) error {
		tx := &Transaction{txn: txn, state: int32(TxActive), readOnly: true}
		return fn(tx)
	})
}

// badgerLogger 将Badger内部日志转发到应用日志
type badgerLogger struct {
	logger log.Logger
}

func newBadgerLogger(logger log.Logger) *badgerLogger {
	return &badgerLogger{logger: logger}
}

func (l *badgerLogger) Errorf(format string, args ...interface{}) {
	l.logger.Errorf("[badger] "+format, args...)
}

func (l *badgerLogger) Warningf(format string, args ...interface{}) {
	l.logger.Warnf("[badger] "+format, args...)
}

func (l *badgerLogger) Infof(format string, args ...interface{}) {
	l.logger.Debugf("[badger] "+format, args...)
}

func (l *badgerLogger) Debugf(format string, args ...interface{}) {
	l.logger.Debugf("[badger] "+format, args...)
}

// maxValueThreshold 与 badger 计算 maxBatchSize 的方式一致
func maxValueThreshold(memTableSize int64) int64 {
	return (15 * memTableSize) / 100
}

// NewInMemory 创建内存模式的存储，数据不落盘
func NewInMemory(logger log.Logger) (*Store, error) {
	return New(badgerconfig.NewFromOptions(&badgerconfig.BadgerOptions{
		InMemory:     true,
		MemTableSize: 16 << 20,
	}), logger)
}
