package state

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/weisyn/purchaser/pkg/interfaces/infrastructure/storage"
	"github.com/weisyn/purchaser/pkg/types"
)

// OutboxPrefix outbox 键前缀
const OutboxPrefix = "outbox/"

// OutboxKey 返回序号对应的键，零填充到20位
func OutboxKey(seq uint64) []byte {
	return []byte(fmt.Sprintf("%s%020d", OutboxPrefix, seq))
}

// SetRequestID 之后追加的 outbox 条目都带上该追踪ID
func (s *Session) SetRequestID(id string) {
	s.requestID = id
}

// AppendOutbox 分配序号并写入一条待投递消息
func (s *Session) AppendOutbox(action string, msg types.CosmosMsg) (types.OutboxEntry, error) {
	seq, err := nextSeq(s.tx)
	if err != nil {
		return types.OutboxEntry{}, err
	}
	entry := types.OutboxEntry{
		Seq:       seq,
		ID:        uuid.NewString(),
		Action:    action,
		Message:   msg,
		RequestID: s.requestID,
		CreatedAt: time.Now().UTC(),
	}
	data, err := json.Marshal(entry)
	if err != nil {
		return types.OutboxEntry{}, fmt.Errorf("序列化outbox条目失败: %w", err)
	}
	if err := s.tx.Set(OutboxKey(seq), data); err != nil {
		return types.OutboxEntry{}, fmt.Errorf("写入outbox条目失败: %w", err)
	}
	s.pending = append(s.pending, entry)
	return entry, nil
}

func nextSeq(tx storage.BadgerTransaction) (uint64, error) {
	data, err := tx.Get(KeyOutboxSeq)
	if err != nil {
		return 0, fmt.Errorf("读取outbox序号失败: %w", err)
	}
	var seq uint64
	if len(data) == 8 {
		seq = binary.BigEndian.Uint64(data)
	}
	seq++
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, seq)
	if err := tx.Set(KeyOutboxSeq, buf); err != nil {
		return 0, fmt.Errorf("写入outbox序号失败: %w", err)
	}
	return seq, nil
}

// ListOutbox 按序号升序列出待投递条目，limit<=0 表示不限
func ListOutbox(tx storage.BadgerTransaction, limit int) ([]types.OutboxEntry, error) {
	kvs, err := tx.PrefixScan([]byte(OutboxPrefix))
	if err != nil {
		return nil, fmt.Errorf("扫描outbox失败: %w", err)
	}
	entries := make([]types.OutboxEntry, 0, len(kvs))
	for _, kv := range kvs {
		if limit > 0 && len(entries) >= limit {
			break
		}
		var e types.OutboxEntry
		if err := json.Unmarshal(kv.Value, &e); err != nil {
			return nil, fmt.Errorf("解析outbox条目 %s 失败: %w", kv.Key, err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// DeleteOutbox 删除已投递条目
func DeleteOutbox(tx storage.BadgerTransaction, seq uint64) error {
	if err := tx.Delete(OutboxKey(seq)); err != nil {
		return fmt.Errorf("删除outbox条目失败: %w", err)
	}
	return nil
}
