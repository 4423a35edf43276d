package state

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weisyn/purchaser/internal/core/infrastructure/storage/badger"
	"github.com/weisyn/purchaser/pkg/interfaces/infrastructure/storage"
	"github.com/weisyn/purchaser/pkg/types"
)

func newStore(t *testing.T) *badger.Store {
	t.Helper()
	store, err := badger.NewInMemory(nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func instantiate(t *testing.T, store *badger.Store, members ...types.Principal) {
	t.Helper()
	require.NoError(t, store.RunInTransaction(context.Background(), func(tx storage.BadgerTransaction) error {
		return Instantiate(tx, members, 30, CurrentVersion(ContractNameManager))
	}))
}

// TestOpen_NotInstantiated 未初始化时无法打开会话
func TestOpen_NotInstantiated(t *testing.T) {
	store := newStore(t)
	err := store.View(context.Background(), func(tx storage.BadgerTransaction) error {
		_, err := Open(tx)
		return err
	})
	assert.ErrorIs(t, err, types.ErrNotInstantiated)
}

// TestInstantiate 初始化写入单例与版本，重复初始化失败
func TestInstantiate(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()
	instantiate(t, store, "paloma1a", "paloma1b", "paloma1a")

	require.NoError(t, store.View(ctx, func(tx storage.BadgerTransaction) error {
		st, err := ReadState(tx)
		require.NoError(t, err)
		assert.Equal(t, []types.Principal{"paloma1a", "paloma1b"}, st.Owners)
		assert.Equal(t, uint64(30), st.RetryDelay)

		cv, err := ReadVersion(tx)
		require.NoError(t, err)
		assert.Equal(t, ContractNameManager, cv.Contract)
		assert.NotEmpty(t, cv.Version)
		return nil
	}))

	err := store.RunInTransaction(ctx, func(tx storage.BadgerTransaction) error {
		return Instantiate(tx, nil, 1, CurrentVersion(ContractNameManager))
	})
	assert.ErrorIs(t, err, types.ErrAlreadyInstantiated)
}

// TestMigrate 迁移只改版本记录
func TestMigrate(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	err := store.RunInTransaction(ctx, func(tx storage.BadgerTransaction) error {
		return Migrate(tx, types.ContractVersion{Contract: "x", Version: "v9"})
	})
	assert.ErrorIs(t, err, types.ErrNotInstantiated)

	instantiate(t, store, "paloma1a")
	require.NoError(t, store.RunInTransaction(ctx, func(tx storage.BadgerTransaction) error {
		return Migrate(tx, types.ContractVersion{Contract: ContractNameManager, Version: "v9"})
	}))
	require.NoError(t, store.View(ctx, func(tx storage.BadgerTransaction) error {
		cv, err := ReadVersion(tx)
		require.NoError(t, err)
		assert.Equal(t, "v9", cv.Version)
		st, err := ReadState(tx)
		require.NoError(t, err)
		assert.Equal(t, []types.Principal{"paloma1a"}, st.Owners)
		return nil
	}))
}

// TestSession_FlushOnlyWhenDirty 无改动时不写回
func TestSession_FlushOnlyWhenDirty(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()
	instantiate(t, store, "paloma1a")

	before, err := store.Get(ctx, KeyState)
	require.NoError(t, err)

	require.NoError(t, store.RunInTransaction(ctx, func(tx storage.BadgerTransaction) error {
		s, err := Open(tx)
		require.NoError(t, err)
		s.Owners().Add("paloma1a")
		assert.False(t, s.Dirty())
		return s.Flush()
	}))
	after, err := store.Get(ctx, KeyState)
	require.NoError(t, err)
	assert.Equal(t, before, after)

	require.NoError(t, store.RunInTransaction(ctx, func(tx storage.BadgerTransaction) error {
		s, err := Open(tx)
		require.NoError(t, err)
		s.Owners().Add("paloma1b")
		s.SetRetryDelay(60)
		assert.True(t, s.Dirty())
		return s.Flush()
	}))
	require.NoError(t, store.View(ctx, func(tx storage.BadgerTransaction) error {
		st, err := ReadState(tx)
		require.NoError(t, err)
		assert.Equal(t, []types.Principal{"paloma1a", "paloma1b"}, st.Owners)
		assert.Equal(t, uint64(60), st.RetryDelay)
		return nil
	}))
}

// TestOutbox_Ordering 序号单调递增，扫描按序返回，删除后不再出现
func TestOutbox_Ordering(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()
	instantiate(t, store, "paloma1a")

	for i := 0; i < 12; i++ {
		require.NoError(t, store.RunInTransaction(ctx, func(tx storage.BadgerTransaction) error {
			s, err := Open(tx)
			require.NoError(t, err)
			_, err = s.AppendOutbox("send_token", types.NewExecuteJob("job", []byte{byte(i)}))
			return err
		}))
	}

	require.NoError(t, store.View(ctx, func(tx storage.BadgerTransaction) error {
		entries, err := ListOutbox(tx, 0)
		require.NoError(t, err)
		require.Len(t, entries, 12)
		for i, e := range entries {
			assert.Equal(t, uint64(i+1), e.Seq)
			assert.NotEmpty(t, e.ID)
			job, ok := e.Message.ExecuteJob()
			require.True(t, ok)
			assert.Equal(t, []byte{byte(i)}, job.Payload)
		}

		limited, err := ListOutbox(tx, 5)
		require.NoError(t, err)
		assert.Len(t, limited, 5)
		return nil
	}))

	require.NoError(t, store.RunInTransaction(ctx, func(tx storage.BadgerTransaction) error {
		require.NoError(t, DeleteOutbox(tx, 1))
		return DeleteOutbox(tx, 2)
	}))
	require.NoError(t, store.View(ctx, func(tx storage.BadgerTransaction) error {
		entries, err := ListOutbox(tx, 1)
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, uint64(3), entries[0].Seq)
		return nil
	}))
}

// TestOutbox_DiscardedWithTransaction 事务回滚后序号与条目都不保留
func TestOutbox_DiscardedWithTransaction(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()
	instantiate(t, store, "paloma1a")

	err := store.RunInTransaction(ctx, func(tx storage.BadgerTransaction) error {
		s, err := Open(tx)
		require.NoError(t, err)
		_, err = s.AppendOutbox("x", types.NewExecuteJob("j", nil))
		require.NoError(t, err)
		assert.Len(t, s.Pending(), 1)
		return types.ErrUnauthorized
	})
	assert.ErrorIs(t, err, types.ErrUnauthorized)

	require.NoError(t, store.RunInTransaction(ctx, func(tx storage.BadgerTransaction) error {
		s, err := Open(tx)
		require.NoError(t, err)
		s.SetRequestID("req-1")
		entry, err := s.AppendOutbox("y", types.NewExecuteJob("j", nil))
		require.NoError(t, err)
		assert.Equal(t, uint64(1), entry.Seq)
		assert.Equal(t, "req-1", entry.RequestID)
		return nil
	}))
}
