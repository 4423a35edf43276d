package log

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zapcore"

	configtypes "github.com/weisyn/purchaser/pkg/types"
)

func TestNew_Defaults(t *testing.T) {
	cfg := New(nil)

	assert.Equal(t, zapcore.InfoLevel, cfg.GetZapLevel())
	assert.True(t, cfg.IsConsoleEnabled())
	assert.Empty(t, cfg.GetFilePath())
}

func TestNew_FilePathDisablesConsole(t *testing.T) {
	level := "debug"
	path := "/tmp/purchaser.log"

	cfg := New(&configtypes.UserLogConfig{Level: &level, FilePath: &path})

	assert.Equal(t, zapcore.DebugLevel, cfg.GetZapLevel())
	assert.False(t, cfg.IsConsoleEnabled())
	assert.Equal(t, path, cfg.GetFilePath())
}

func TestGetZapLevel_Unknown(t *testing.T) {
	level := "verbose"
	assert.Equal(t, zapcore.InfoLevel, New(&configtypes.UserLogConfig{Level: &level}).GetZapLevel())
}
