package memory

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/weisyn/purchaser/pkg/types"
)

func TestNew_Defaults(t *testing.T) {
	opts := New(nil).GetOptions()
	assert.True(t, opts.Enabled)
	assert.Equal(t, 10*time.Minute, opts.LifeWindow)
	assert.Equal(t, 1024, opts.MaxEntriesInWindow)
}

func TestNew_UserOverrides(t *testing.T) {
	opts := New(&types.UserStorageConfig{
		QueryCache:    types.BoolPtr(false),
		QueryCacheTTL: types.StringPtr("30s"),
	}).GetOptions()
	assert.False(t, opts.Enabled)
	assert.Equal(t, 30*time.Second, opts.LifeWindow)

	// 非法时长保留默认值
	opts = New(&types.UserStorageConfig{QueryCacheTTL: types.StringPtr("soon")}).GetOptions()
	assert.Equal(t, 10*time.Minute, opts.LifeWindow)
}
