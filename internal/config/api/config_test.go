package api

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/weisyn/purchaser/pkg/types"
)

func TestNew_Defaults(t *testing.T) {
	cfg := New(nil)

	assert.True(t, cfg.IsHTTPEnabled())
	assert.Equal(t, "127.0.0.1:28680", cfg.GetHTTPAddress())
	assert.True(t, cfg.GetOptions().HTTP.EnableMetrics)
}

func TestNew_UserOverrides(t *testing.T) {
	enabled := false
	host := "0.0.0.0"
	port := 9000

	cfg := New(&types.UserAPIConfig{HTTPEnabled: &enabled, HTTPHost: &host, HTTPPort: &port})

	assert.False(t, cfg.IsHTTPEnabled())
	assert.Equal(t, "0.0.0.0:9000", cfg.GetHTTPAddress())
}

func TestNew_RateLimitAndFeatures(t *testing.T) {
	opts := New(&types.UserAPIConfig{
		WriteRateLimit: types.IntPtr(5),
		EnableMetrics:  types.BoolPtr(false),
		EnableEvents:   types.BoolPtr(false),
	}).GetOptions()

	assert.Equal(t, 5, opts.HTTP.WriteRateLimit)
	assert.Equal(t, 200, opts.HTTP.ReadRateLimit)
	assert.False(t, opts.HTTP.EnableMetrics)
	assert.False(t, opts.HTTP.EnableEvents)
}

func TestNew_SignatureAndOrigins(t *testing.T) {
	opts := New(nil).GetOptions()
	assert.True(t, opts.HTTP.RequireSignature)
	assert.Equal(t, 5*time.Minute, opts.HTTP.SignatureMaxSkew)
	assert.Empty(t, opts.HTTP.AllowedOrigins)

	opts = New(&types.UserAPIConfig{
		RequireSignature: types.BoolPtr(false),
		SignatureMaxSkew: types.StringPtr("30s"),
		AllowedOrigins:   []string{"https://ops.example"},
	}).GetOptions()
	assert.False(t, opts.HTTP.RequireSignature)
	assert.Equal(t, 30*time.Second, opts.HTTP.SignatureMaxSkew)
	assert.Equal(t, []string{"https://ops.example"}, opts.HTTP.AllowedOrigins)

	// 非法时长保留默认值
	opts = New(&types.UserAPIConfig{SignatureMaxSkew: types.StringPtr("soon")}).GetOptions()
	assert.Equal(t, 5*time.Minute, opts.HTTP.SignatureMaxSkew)
}
