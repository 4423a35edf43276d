package middleware

import (
	"encoding/hex"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	infralog "github.com/weisyn/purchaser/internal/core/infrastructure/log"
	"github.com/weisyn/purchaser/pkg/types"
)

func TestRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	var seen string
	r := gin.New()
	r.Use(NewRequestID().Middleware())
	r.GET("/x", func(c *gin.Context) {
		seen = types.RequestIDFromContext(c.Request.Context())
		assert.Equal(t, seen, GetRequestID(c))
		c.Status(http.StatusNoContent)
	})

	tests := []struct {
		name   string
		header string
		keep   bool
	}{
		{"generated", "", false},
		{"client supplied", "trace-01.a_b", true},
		{"too long", strings.Repeat("a", 65), false},
		{"unsafe characters", "id\nforged=1", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/x", nil)
			if tt.header != "" {
				req.Header.Set(HeaderRequestID, tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			got := w.Header().Get(HeaderRequestID)
			require.NotEmpty(t, got)
			assert.Equal(t, got, seen, "请求 context 与响应头一致")
			if tt.keep {
				assert.Equal(t, tt.header, got)
			} else {
				assert.NotEqual(t, tt.header, got)
			}
		})
	}
}

func TestLogger_RecordsRouteAndSigner(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, logs := observer.New(zapcore.DebugLevel)

	r := gin.New()
	r.Use(NewRequestID().Middleware(), NewLogger(infralog.FromZap(zap.New(core))).Middleware())
	r.POST("/chains/:chain_id", func(c *gin.Context) {
		c.Set(SignerKey, types.Principal("paloma1signer"))
		c.Status(http.StatusForbidden)
	})

	req := httptest.NewRequest(http.MethodPost, "/chains/bnb", nil)
	req.Header.Set(HeaderRequestID, "req-7")
	r.ServeHTTP(httptest.NewRecorder(), req)

	entries := logs.FilterMessage("HTTP request").All()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
	fields := entries[0].ContextMap()
	assert.Equal(t, "req-7", fields["request_id"])
	assert.Equal(t, "/chains/:chain_id", fields["route"])
	assert.Equal(t, "paloma1signer", fields["signer"])
	assert.EqualValues(t, http.StatusForbidden, fields["status"])
}

func TestSignatureValidation_Verify(t *testing.T) {
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	pub := crypto.CompressPubkey(&key.PublicKey)
	want, err := types.NewAddressValidator("paloma").FromPubKey(pub)
	require.NoError(t, err)

	now := time.Unix(1_700_000_000, 0)
	m := NewSignatureValidation(zap.NewNop(), "paloma", time.Minute, 0)
	m.now = func() time.Time { return now }

	body := []byte(`{"sender":"x"}`)
	stamp := strconv.FormatInt(now.Unix(), 10)
	sig, err := crypto.Sign(SignatureDigest(stamp, body), key)
	require.NoError(t, err)

	got, err := m.verify(hex.EncodeToString(pub), hex.EncodeToString(sig), stamp, body)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	// 去掉恢复位的 64 字节签名同样有效
	got, err = m.verify("0x"+hex.EncodeToString(pub), hex.EncodeToString(sig[:64]), stamp, body)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	_, err = m.verify(hex.EncodeToString(pub), hex.EncodeToString(sig), stamp, []byte(`{"sender":"y"}`))
	assert.Error(t, err)

	m.now = func() time.Time { return now.Add(2 * time.Minute) }
	_, err = m.verify(hex.EncodeToString(pub), hex.EncodeToString(sig), stamp, body)
	assert.Error(t, err)

	_, err = m.verify(hex.EncodeToString(pub[1:]), hex.EncodeToString(sig), stamp, body)
	assert.Error(t, err)
	_, err = m.verify(hex.EncodeToString(pub), hex.EncodeToString(sig), "yesterday", body)
	assert.Error(t, err)
}

func TestContainsPrivateKey(t *testing.T) {
	assert.True(t, containsPrivateKey([]byte(`{"privKey":"00"}`)))
	assert.True(t, containsPrivateKey([]byte(`{"secret_key":"00","sender":"a"}`)))
	assert.False(t, containsPrivateKey([]byte(`{"sender":"a","msg":{}}`)))
	assert.False(t, containsPrivateKey([]byte(`not json`)))
}
