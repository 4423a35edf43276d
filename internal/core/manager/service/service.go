// Package service 控制面命令的事务化执行与查询
//
// 每条命令：
//   - 由互斥锁串行化，避免单例的读改写交错
//   - 在一个 BadgerDB 读写事务中执行分发、写 outbox、写回单例
//   - 事务提交后才把 outbox 条目广播到事件总线
//
// 失败的命令不留下任何状态，也不广播任何消息。
package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/weisyn/purchaser/internal/core/manager/dispatcher"
	"github.com/weisyn/purchaser/internal/core/manager/registry"
	"github.com/weisyn/purchaser/internal/core/manager/state"
	"github.com/weisyn/purchaser/pkg/interfaces/infrastructure/event"
	"github.com/weisyn/purchaser/pkg/interfaces/infrastructure/log"
	"github.com/weisyn/purchaser/pkg/interfaces/infrastructure/storage"
	managerInterface "github.com/weisyn/purchaser/pkg/interfaces/manager"
	"github.com/weisyn/purchaser/pkg/types"
)

var (
	_ managerInterface.Service = (*Service)(nil)
	_ managerInterface.Outbox  = (*Service)(nil)
)

// Config 服务依赖
type Config struct {
	Store      storage.BadgerStore
	Dispatcher *dispatcher.Dispatcher
	Validator  *types.AddressValidator
	EventBus   event.EventBus      // 可为空
	Logger     log.Logger          // 可为空
	Cache      storage.MemoryCache // 链路由查询缓存，可为空
	Contract   string              // 写入版本记录的合约名
}

// Service 控制面服务
type Service struct {
	mu         sync.Mutex
	store      storage.BadgerStore
	dispatcher *dispatcher.Dispatcher
	validator  *types.AddressValidator
	bus        event.EventBus
	logger     log.Logger
	cache      storage.MemoryCache
	contract   string

	// cacheMu 保护 cacheGen；每次失效递增，读路径只在代数未变时回填
	cacheMu  sync.Mutex
	cacheGen uint64
}

// New 创建控制面服务
func New(cfg Config) (*Service, error) {
	if cfg.Store == nil {
		return nil, errors.New("store is required")
	}
	if cfg.Dispatcher == nil {
		return nil, errors.New("dispatcher is required")
	}
	s := &Service{
		store:      cfg.Store,
		dispatcher: cfg.Dispatcher,
		validator:  cfg.Validator,
		bus:        cfg.EventBus,
		logger:     cfg.Logger,
		cache:      cfg.Cache,
		contract:   cfg.Contract,
	}
	if s.validator == nil {
		s.validator = types.NewAddressValidator("paloma")
	}
	if s.contract == "" {
		s.contract = state.ContractNameManager
	}
	return s, nil
}

// ExecuteMessage 解析 JSON 信封并执行
func (s *Service) ExecuteMessage(ctx context.Context, sender string, funds []types.Coin, msg []byte) (types.Response, error) {
	principal, err := s.validator.Validate(sender)
	if err != nil {
		commandsTotal.WithLabelValues("unknown", resultLabel(err)).Inc()
		return types.Response{}, fmt.Errorf("sender: %w", err)
	}
	cmd, err := dispatcher.Decode(msg)
	if err != nil {
		commandsTotal.WithLabelValues("unknown", resultLabel(err)).Inc()
		return types.Response{}, err
	}
	return s.Execute(ctx, dispatcher.Env{Sender: principal, Funds: funds}, cmd)
}

// Execute 在单个事务中执行一条命令
func (s *Service) Execute(ctx context.Context, env dispatcher.Env, cmd dispatcher.Command) (types.Response, error) {
	if cmd == nil {
		return types.Response{}, fmt.Errorf("%w: nil", types.ErrUnknownCommand)
	}
	action := cmd.Action()
	requestID := types.RequestIDFromContext(ctx)
	start := time.Now()

	s.mu.Lock()
	var (
		resp    types.Response
		entries []types.OutboxEntry
	)
	err := s.store.RunInTransaction(ctx, func(tx storage.BadgerTransaction) error {
		session, err := state.Open(tx)
		if err != nil {
			return err
		}
		session.SetRequestID(requestID)
		resp, err = s.dispatcher.Dispatch(env, session, cmd)
		if err != nil {
			return err
		}
		for _, m := range resp.Messages {
			if _, err := session.AppendOutbox(resp.Action(), m); err != nil {
				return err
			}
		}
		if err := session.Flush(); err != nil {
			return err
		}
		entries = session.Pending()
		return nil
	})
	s.mu.Unlock()

	commandDuration.WithLabelValues(action).Observe(time.Since(start).Seconds())
	commandsTotal.WithLabelValues(action, resultLabel(err)).Inc()

	if err != nil {
		if s.logger != nil {
			s.logger.Warnf("命令执行失败: action=%s sender=%s request_id=%s err=%v", action, env.Sender, requestID, err)
		}
		return types.Response{}, err
	}

	if sc, ok := cmd.(dispatcher.SetChainSetting); ok {
		s.invalidateChainSetting(sc.ChainID)
	}
	for _, e := range entries {
		outboxAppendedTotal.WithLabelValues(e.Message.Kind()).Inc()
		if s.bus != nil {
			s.bus.Publish(event.EventType(types.EventManagerMessage), e)
		}
	}
	if s.logger != nil {
		s.logger.Infof("命令执行成功: action=%s sender=%s request_id=%s messages=%d", resp.Action(), env.Sender, requestID, len(resp.Messages))
	}
	return resp, nil
}

// Instantiate 初始化单例，owners 逐个校验
func (s *Service) Instantiate(ctx context.Context, owners []string, retryDelay uint64) error {
	principals, err := s.validator.ValidateAll(owners)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	err = s.store.RunInTransaction(ctx, func(tx storage.BadgerTransaction) error {
		return state.Instantiate(tx, principals, retryDelay, state.CurrentVersion(s.contract))
	})
	if err != nil {
		return err
	}
	if s.logger != nil {
		s.logger.Infof("控制面已初始化: contract=%s owners=%d retry_delay=%d", s.contract, len(principals), retryDelay)
	}
	return nil
}

// Migrate 重写合约版本记录
func (s *Service) Migrate(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.RunInTransaction(ctx, func(tx storage.BadgerTransaction) error {
		return state.Migrate(tx, state.CurrentVersion(s.contract))
	})
}

// Instantiated 单例是否已存在
func (s *Service) Instantiated(ctx context.Context) (bool, error) {
	var ok bool
	err := s.store.View(ctx, func(tx storage.BadgerTransaction) error {
		var err error
		ok, err = tx.Exists(state.KeyState)
		return err
	})
	return ok, err
}

// GetState 查询所有者与重试间隔
func (s *Service) GetState(ctx context.Context) (types.State, error) {
	var st types.State
	err := s.store.View(ctx, func(tx storage.BadgerTransaction) error {
		var err error
		st, err = state.ReadState(tx)
		return err
	})
	return st, err
}

// GetChainSetting 查询链路由，命中缓存时不读库
func (s *Service) GetChainSetting(ctx context.Context, chainID string) (types.ChainSetting, error) {
	var (
		setting types.ChainSetting
		gen     uint64
	)
	if s.cache != nil {
		if data, ok := s.cache.Get(chainID); ok && json.Unmarshal(data, &setting) == nil {
			return setting, nil
		}
		s.cacheMu.Lock()
		gen = s.cacheGen
		s.cacheMu.Unlock()
	}
	err := s.store.View(ctx, func(tx storage.BadgerTransaction) error {
		var err error
		setting, err = registry.New(tx).Get(chainID)
		return err
	})
	if err != nil {
		return types.ChainSetting{}, err
	}
	if s.cache != nil {
		s.fillChainSetting(gen, chainID, setting)
	}
	return setting, nil
}

// fillChainSetting 读取期间发生过失效时放弃回填，避免旧值覆盖
func (s *Service) fillChainSetting(gen uint64, chainID string, setting types.ChainSetting) {
	data, err := json.Marshal(setting)
	if err != nil {
		return
	}
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()
	if gen != s.cacheGen {
		return
	}
	_ = s.cache.Set(chainID, data)
}

func (s *Service) invalidateChainSetting(chainID string) {
	if s.cache == nil {
		return
	}
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()
	s.cacheGen++
	if err := s.cache.Delete(chainID); err != nil && s.logger != nil {
		s.logger.Warnf("失效链路由缓存失败: chain_id=%s err=%v", chainID, err)
	}
}

// GetContractVersion 查询合约版本
func (s *Service) GetContractVersion(ctx context.Context) (types.ContractVersion, error) {
	var cv types.ContractVersion
	err := s.store.View(ctx, func(tx storage.BadgerTransaction) error {
		var err error
		cv, err = state.ReadVersion(tx)
		return err
	})
	return cv, err
}

// Pending 读取待投递消息
func (s *Service) Pending(ctx context.Context, limit int) ([]types.OutboxEntry, error) {
	var entries []types.OutboxEntry
	err := s.store.View(ctx, func(tx storage.BadgerTransaction) error {
		var err error
		entries, err = state.ListOutbox(tx, limit)
		return err
	})
	return entries, err
}

// Ack 删除已投递消息
// 只删除 outbox 键，不经过命令锁
func (s *Service) Ack(ctx context.Context, seqs ...uint64) error {
	if len(seqs) == 0 {
		return nil
	}
	return s.store.RunInTransaction(ctx, func(tx storage.BadgerTransaction) error {
		for _, seq := range seqs {
			if err := state.DeleteOutbox(tx, seq); err != nil {
				return err
			}
		}
		return nil
	})
}
