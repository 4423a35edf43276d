package memory

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	memoryconfig "github.com/weisyn/purchaser/internal/config/storage/memory"
)

func newStore(t *testing.T) *Store {
	t.Helper()
	opts := memoryconfig.New(nil).GetOptions()
	opts.LifeWindow = time.Minute
	s, err := New(opts, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestStore_SetGetDelete(t *testing.T) {
	s := newStore(t)

	_, ok := s.Get("bnb-main")
	assert.False(t, ok)

	require.NoError(t, s.Set("bnb-main", []byte(`{"compass_job_id":"c"}`)))
	v, ok := s.Get("bnb-main")
	require.True(t, ok)
	assert.Equal(t, `{"compass_job_id":"c"}`, string(v))

	require.NoError(t, s.Delete("bnb-main"))
	_, ok = s.Get("bnb-main")
	assert.False(t, ok)

	// 删除不存在的键不报错
	assert.NoError(t, s.Delete("missing"))
}

func TestStore_Closed(t *testing.T) {
	s := newStore(t)
	require.NoError(t, s.Set("k", []byte("v")))
	require.NoError(t, s.Close())
	require.NoError(t, s.Close())

	_, ok := s.Get("k")
	assert.False(t, ok)
	assert.ErrorIs(t, s.Set("k", []byte("v")), ErrClosed)
	assert.ErrorIs(t, s.Delete("k"), ErrClosed)
}
