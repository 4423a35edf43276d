package badger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestTransaction 创建直接包装Badger读写事务的测试事务
func newTestTransaction(t *testing.T) *Transaction {
	t.Helper()
	store := setupTestStore(t)
	tx := &Transaction{txn: store.db.NewTransaction(true), state: int32(TxActive)}
	t.Cleanup(tx.Discard)
	return tx
}

// 测试事务基本操作
func TestTransactionCRUD(t *testing.T) {
	tx := newTestTransaction(t)

	key := []byte("chain_settings/bnb-main")
	value := []byte(`{"compass_job_id":"c","main_job_id":"m"}`)

	val, err := tx.Get(key)
	require.NoError(t, err)
	assert.Nil(t, val)

	require.NoError(t, tx.Set(key, value))

	val, err = tx.Get(key)
	require.NoError(t, err)
	assert.Equal(t, value, val)

	exists, err := tx.Exists(key)
	require.NoError(t, err)
	assert.True(t, exists)

	require.NoError(t, tx.Delete(key))
	exists, err = tx.Exists(key)
	require.NoError(t, err)
	assert.False(t, exists)
}

// 测试事务状态机
func TestTransactionStates(t *testing.T) {
	tx := newTestTransaction(t)
	assert.True(t, tx.IsActive())

	require.NoError(t, tx.Set([]byte("k"), []byte("v")))
	require.NoError(t, tx.Commit())
	assert.True(t, tx.IsCommitted())

	// 已提交的事务不能再提交或写入
	assert.Error(t, tx.Commit())
	assert.Error(t, tx.Set([]byte("k"), []byte("v2")))

	// 已提交后 Discard 为空操作
	tx.Discard()
	assert.True(t, tx.IsCommitted())
}

// 测试丢弃后的事务
func TestTransactionDiscard(t *testing.T) {
	tx := newTestTransaction(t)

	tx.Discard()
	assert.True(t, tx.IsDiscarded())

	_, err := tx.Get([]byte("k"))
	assert.Error(t, err)
	assert.Error(t, tx.Commit())
}

// 测试空事务提交
func TestTransactionCommit_NoOperations(t *testing.T) {
	tx := newTestTransaction(t)
	require.NoError(t, tx.Commit())
	assert.True(t, tx.IsCommitted())
}
