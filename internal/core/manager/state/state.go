// Package state 控制面持久化布局
//
// 所有键位于同一个 BadgerDB 实例：
//
//	state                  所有者与重试间隔单例（JSON）
//	chain_settings/<id>    链路由表，见 registry 包
//	outbox/<seq>           已提交待投递的消息，seq 零填充保证字节序即投递序
//	meta/outbox_seq        最近分配的 outbox 序号
//	meta/contract_version  合约名称与版本
//
// Session 绑定到单个读写事务：命令开始时加载单例，提交前仅在有改动时写回。
package state

import (
	"encoding/json"
	"fmt"

	"github.com/weisyn/purchaser/internal/app/version"
	"github.com/weisyn/purchaser/internal/core/manager/owners"
	"github.com/weisyn/purchaser/internal/core/manager/registry"
	"github.com/weisyn/purchaser/pkg/interfaces/infrastructure/storage"
	"github.com/weisyn/purchaser/pkg/types"
)

// 存储键
var (
	KeyState           = []byte("state")
	KeyOutboxSeq       = []byte("meta/outbox_seq")
	KeyContractVersion = []byte("meta/contract_version")
)

// 合约名称
const (
	ContractNameManager   = "crates.io:token-purchaser-manager-cw"
	ContractNameCollector = "crates.io:token-purchaser-collector-cw"
)

// CurrentVersion 返回写入 meta/contract_version 的版本记录
func CurrentVersion(contract string) types.ContractVersion {
	return types.ContractVersion{Contract: contract, Version: version.GetVersion()}
}

// Session 单条命令的事务内状态视图
type Session struct {
	tx         storage.BadgerTransaction
	owners     *owners.OwnerSet
	retryDelay uint64
	loaded     types.State
	chains     *registry.ChainRegistry
	pending    []types.OutboxEntry
	requestID  string
}

// Open 在事务上加载单例，未初始化时返回 ErrNotInstantiated
func Open(tx storage.BadgerTransaction) (*Session, error) {
	st, err := ReadState(tx)
	if err != nil {
		return nil, err
	}
	return &Session{
		tx:         tx,
		owners:     owners.New(st.Owners),
		retryDelay: st.RetryDelay,
		loaded:     st.Clone(),
		chains:     registry.New(tx),
	}, nil
}

// Owners 所有者集合（可变）
func (s *Session) Owners() *owners.OwnerSet {
	return s.owners
}

// RetryDelay 当前重试间隔
func (s *Session) RetryDelay() uint64 {
	return s.retryDelay
}

// SetRetryDelay 修改重试间隔
func (s *Session) SetRetryDelay(d uint64) {
	s.retryDelay = d
}

// Chains 链路由表
func (s *Session) Chains() *registry.ChainRegistry {
	return s.chains
}

// Snapshot 当前（含未写回改动的）单例
func (s *Session) Snapshot() types.State {
	return types.State{Owners: s.owners.Members(), RetryDelay: s.retryDelay}
}

// Pending 本事务追加的 outbox 条目
func (s *Session) Pending() []types.OutboxEntry {
	out := make([]types.OutboxEntry, len(s.pending))
	copy(out, s.pending)
	return out
}

// Dirty 单例是否有改动
func (s *Session) Dirty() bool {
	cur := s.Snapshot()
	if cur.RetryDelay != s.loaded.RetryDelay || len(cur.Owners) != len(s.loaded.Owners) {
		return true
	}
	for i := range cur.Owners {
		if cur.Owners[i] != s.loaded.Owners[i] {
			return true
		}
	}
	return false
}

// Flush 有改动时写回单例
func (s *Session) Flush() error {
	if !s.Dirty() {
		return nil
	}
	if err := writeState(s.tx, s.Snapshot()); err != nil {
		return err
	}
	s.loaded = s.Snapshot()
	return nil
}

// Instantiate 创建单例并记录合约版本，已存在时返回 ErrAlreadyInstantiated
func Instantiate(tx storage.BadgerTransaction, members []types.Principal, retryDelay uint64, cv types.ContractVersion) error {
	exists, err := tx.Exists(KeyState)
	if err != nil {
		return fmt.Errorf("检查状态失败: %w", err)
	}
	if exists {
		return types.ErrAlreadyInstantiated
	}
	st := types.State{Owners: owners.New(members).Members(), RetryDelay: retryDelay}
	if err := writeState(tx, st); err != nil {
		return err
	}
	return writeVersion(tx, cv)
}

// Migrate 重写合约版本记录，要求状态已初始化
func Migrate(tx storage.BadgerTransaction, cv types.ContractVersion) error {
	exists, err := tx.Exists(KeyState)
	if err != nil {
		return fmt.Errorf("检查状态失败: %w", err)
	}
	if !exists {
		return types.ErrNotInstantiated
	}
	return writeVersion(tx, cv)
}

// ReadState 读取单例
func ReadState(tx storage.BadgerTransaction) (types.State, error) {
	data, err := tx.Get(KeyState)
	if err != nil {
		return types.State{}, fmt.Errorf("读取状态失败: %w", err)
	}
	if data == nil {
		return types.State{}, types.ErrNotInstantiated
	}
	var st types.State
	if err := json.Unmarshal(data, &st); err != nil {
		return types.State{}, fmt.Errorf("解析状态失败: %w", err)
	}
	if st.Owners == nil {
		st.Owners = []types.Principal{}
	}
	return st, nil
}

// ReadVersion 读取合约版本记录
func ReadVersion(tx storage.BadgerTransaction) (types.ContractVersion, error) {
	data, err := tx.Get(KeyContractVersion)
	if err != nil {
		return types.ContractVersion{}, fmt.Errorf("读取合约版本失败: %w", err)
	}
	if data == nil {
		return types.ContractVersion{}, types.ErrNotInstantiated
	}
	var cv types.ContractVersion
	if err := json.Unmarshal(data, &cv); err != nil {
		return types.ContractVersion{}, fmt.Errorf("解析合约版本失败: %w", err)
	}
	return cv, nil
}

func writeState(tx storage.BadgerTransaction, st types.State) error {
	data, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("序列化状态失败: %w", err)
	}
	if err := tx.Set(KeyState, data); err != nil {
		return fmt.Errorf("写入状态失败: %w", err)
	}
	return nil
}

func writeVersion(tx storage.BadgerTransaction, cv types.ContractVersion) error {
	data, err := json.Marshal(cv)
	if err != nil {
		return fmt.Errorf("序列化合约版本失败: %w", err)
	}
	if err := tx.Set(KeyContractVersion, data); err != nil {
		return fmt.Errorf("写入合约版本失败: %w", err)
	}
	return nil
}
