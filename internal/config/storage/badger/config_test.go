package badger

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	configtypes "github.com/weisyn/purchaser/pkg/types"
)

func TestNew_Defaults(t *testing.T) {
	cfg := New(nil)

	assert.True(t, filepath.IsAbs(cfg.GetPath()))
	assert.Equal(t, "badger", filepath.Base(cfg.GetPath()))
	assert.False(t, cfg.IsInMemory())
	assert.True(t, cfg.IsSyncWritesEnabled())
	assert.Equal(t, int64(defaultMemTableSize), cfg.GetMemTableSize())
}

func TestNew_UserOverrides(t *testing.T) {
	root := t.TempDir()
	inMemory := true
	sync := false

	cfg := New(&configtypes.UserStorageConfig{
		DataRoot:   &root,
		InMemory:   &inMemory,
		SyncWrites: &sync,
	})

	assert.Equal(t, filepath.Join(root, "badger"), cfg.GetPath())
	assert.True(t, cfg.IsInMemory())
	assert.False(t, cfg.IsSyncWritesEnabled())
}
