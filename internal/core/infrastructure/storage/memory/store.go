// Package memory 基于 BigCache 的进程内查询缓存
package memory

import (
	"context"
	"errors"
	"sync"

	"github.com/allegro/bigcache/v3"

	memoryconfig "github.com/weisyn/purchaser/internal/config/storage/memory"
	"github.com/weisyn/purchaser/pkg/interfaces/infrastructure/log"
	"github.com/weisyn/purchaser/pkg/interfaces/infrastructure/storage"
)

var _ storage.MemoryCache = (*Store)(nil)

// ErrClosed 缓存已关闭
var ErrClosed = errors.New("memory cache closed")

// Store 查询缓存实现
type Store struct {
	mu     sync.RWMutex
	cache  *bigcache.BigCache
	logger log.Logger
	closed bool
}

// New 创建查询缓存
func New(opts *memoryconfig.MemoryOptions, logger log.Logger) (*Store, error) {
	cfg := bigcache.DefaultConfig(opts.LifeWindow)
	cfg.CleanWindow = opts.CleanWindow
	cfg.MaxEntriesInWindow = opts.MaxEntriesInWindow
	cfg.MaxEntrySize = opts.MaxEntrySize
	cfg.HardMaxCacheSize = opts.HardMaxCacheSizeMB
	// 链路由条目很少，64 个分片足够
	cfg.Shards = 64
	cfg.Verbose = false

	cache, err := bigcache.New(context.Background(), cfg)
	if err != nil {
		return nil, err
	}
	if logger != nil {
		logger.Debugf("查询缓存已创建: life_window=%s max_entries=%d", opts.LifeWindow, opts.MaxEntriesInWindow)
	}
	return &Store{cache: cache, logger: logger}, nil
}

// Get 读取缓存值
func (s *Store) Get(key string) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, false
	}

	value, err := s.cache.Get(key)
	if err != nil {
		if !errors.Is(err, bigcache.ErrEntryNotFound) && s.logger != nil {
			s.logger.Warnf("读取查询缓存失败: key=%s err=%v", key, err)
		}
		return nil, false
	}
	return value, true
}

// Set 写入缓存值
func (s *Store) Set(key string, value []byte) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrClosed
	}
	return s.cache.Set(key, value)
}

// Delete 删除缓存值
func (s *Store) Delete(key string) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrClosed
	}
	if err := s.cache.Delete(key); err != nil && !errors.Is(err, bigcache.ErrEntryNotFound) {
		return err
	}
	return nil
}

// Close 关闭缓存
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.cache.Close()
}
