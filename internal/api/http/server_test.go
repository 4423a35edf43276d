package http

import (
	"bytes"
	"context"
	"crypto/ecdsa"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/btcsuite/btcutil/bech32"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weisyn/purchaser/internal/api/http/middleware"
	apitypes "github.com/weisyn/purchaser/internal/api/types"
	apiconfig "github.com/weisyn/purchaser/internal/config/api"
	managerconfig "github.com/weisyn/purchaser/internal/config/manager"
	eventbus "github.com/weisyn/purchaser/internal/core/infrastructure/event"
	infralog "github.com/weisyn/purchaser/internal/core/infrastructure/log"
	"github.com/weisyn/purchaser/internal/core/infrastructure/storage/badger"
	"github.com/weisyn/purchaser/internal/core/manager/service"
	"github.com/weisyn/purchaser/pkg/types"
)

const sendToken = `{"send_token":{"chain_id":"bnb","token":"0x1111111111111111111111111111111111111111","to":"0x2222222222222222222222222222222222222222","amount":"1000","nonce":"1"}}`

func bech(t *testing.T, fill byte) string {
	t.Helper()
	conv, err := bech32.ConvertBits(bytes.Repeat([]byte{fill}, 20), 8, 5, true)
	require.NoError(t, err)
	addr, err := bech32.Encode("paloma", conv)
	require.NoError(t, err)
	return addr
}

type fixture struct {
	server *Server
	svc    *service.Service
	owner  string
	keys   map[string]*ecdsa.PrivateKey // 地址 -> 私钥
}

// newAccount 生成私钥并登记其地址
func (f *fixture) newAccount(t *testing.T) string {
	t.Helper()
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	addr, err := types.NewAddressValidator("paloma").FromPubKey(crypto.CompressPubkey(&key.PublicKey))
	require.NoError(t, err)
	f.keys[addr.String()] = key
	return addr.String()
}

// signHeaders 生成命令签名请求头
func signHeaders(t *testing.T, key *ecdsa.PrivateKey, ts time.Time, body string) http.Header {
	t.Helper()
	stamp := strconv.FormatInt(ts.Unix(), 10)
	sig, err := crypto.Sign(middleware.SignatureDigest(stamp, []byte(body)), key)
	require.NoError(t, err)
	h := http.Header{}
	h.Set(middleware.HeaderSignerPubKey, hex.EncodeToString(crypto.CompressPubkey(&key.PublicKey)))
	h.Set(middleware.HeaderSignature, hex.EncodeToString(sig))
	h.Set(middleware.HeaderSignatureTimestamp, stamp)
	return h
}

func newFixture(t *testing.T, instantiate bool, mutate ...func(*apiconfig.APIOptions)) *fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store, err := badger.NewInMemory(nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	bus := eventbus.New(nil)
	svc, err := service.NewFromOptions(managerconfig.New(nil).GetOptions(), store, nil, bus, nil)
	require.NoError(t, err)

	f := &fixture{svc: svc, keys: map[string]*ecdsa.PrivateKey{}}
	f.owner = f.newAccount(t)
	if instantiate {
		require.NoError(t, svc.Instantiate(context.Background(), []string{f.owner}, 30))
	}

	opts := apiconfig.New(nil).GetOptions()
	opts.HTTP.Host = "127.0.0.1"
	opts.HTTP.Port = 0
	for _, m := range mutate {
		m(opts)
	}

	reg := prometheus.NewRegistry()
	server, err := NewServer(ServerDeps{
		Logger:     infralog.NewNop(),
		Options:    opts,
		Service:    svc,
		Outbox:     svc,
		EventBus:   bus,
		Registerer: reg,
		Gatherer:   reg,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = server.Stop(context.Background()) })
	f.server = server
	return f
}

// do 发送请求；命令请求以 sender 对应私钥签名，未知 sender 使用所有者私钥
func (f *fixture) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var header http.Header
	if method == http.MethodPost && strings.HasSuffix(path, "/execute") {
		var env struct {
			Sender string `json:"sender"`
		}
		_ = json.Unmarshal([]byte(body), &env)
		key, ok := f.keys[env.Sender]
		if !ok {
			key = f.keys[f.owner]
		}
		header = signHeaders(t, key, time.Now(), body)
	}
	return f.doWithHeader(t, method, path, body, header)
}

func (f *fixture) doWithHeader(t *testing.T, method, path, body string, header http.Header) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range header {
		req.Header[k] = v
	}
	w := httptest.NewRecorder()
	f.server.Handler().ServeHTTP(w, req)
	return w
}

func (f *fixture) execute(t *testing.T, sender, msg string) *httptest.ResponseRecorder {
	t.Helper()
	body := fmt.Sprintf(`{"sender":%q,"msg":%s}`, sender, msg)
	return f.do(t, http.MethodPost, "/api/v1/manager/execute", body)
}

func decodeProblem(t *testing.T, w *httptest.ResponseRecorder) apitypes.ProblemDetails {
	t.Helper()
	var pd apitypes.ProblemDetails
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &pd), w.Body.String())
	return pd
}

type executeBody struct {
	Data struct {
		Messages   []json.RawMessage `json:"messages"`
		Attributes []struct {
			Key   string `json:"key"`
			Value string `json:"value"`
		} `json:"attributes"`
	} `json:"data"`
	RequestID string `json:"requestId"`
}

func TestExecute_Success(t *testing.T) {
	f := newFixture(t, true)
	newOwner := bech(t, 0x02)

	w := f.execute(t, f.owner, fmt.Sprintf(`{"add_owner":{"owners":[%q]}}`, newOwner))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var body executeBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Empty(t, body.Data.Messages)
	require.NotEmpty(t, body.Data.Attributes)
	assert.Equal(t, "action", body.Data.Attributes[0].Key)
	assert.Equal(t, "update_config", body.Data.Attributes[0].Value)
	assert.NotEmpty(t, body.RequestID)
	assert.Equal(t, body.RequestID, w.Header().Get("X-Request-ID"))

	st, err := f.svc.GetState(context.Background())
	require.NoError(t, err)
	assert.Len(t, st.Owners, 2)
}

func TestExecute_Errors(t *testing.T) {
	f := newFixture(t, true)
	stranger := f.newAccount(t)

	tests := []struct {
		name   string
		body   string
		status int
		code   string
	}{
		{"non owner", fmt.Sprintf(`{"sender":%q,"msg":{"update_config":{"retry_delay":1}}}`, stranger), http.StatusUnauthorized, apitypes.CodeUnauthorized},
		{"unknown command", fmt.Sprintf(`{"sender":%q,"msg":{"mint":{}}}`, f.owner), http.StatusBadRequest, apitypes.CodeUnknownCommand},
		{"sender not signer", `{"sender":"nope","msg":{"update_config":{}}}`, http.StatusForbidden, apitypes.CodeSenderMismatch},
		{"unregistered chain", fmt.Sprintf(`{"sender":%q,"msg":%s}`, f.owner, sendToken), http.StatusNotFound, apitypes.CodeNotFound},
		{"missing msg", fmt.Sprintf(`{"sender":%q}`, f.owner), http.StatusBadRequest, apitypes.CodeCommonValidationError},
		{"malformed json", `{"sender":`, http.StatusBadRequest, apitypes.CodeCommonValidationError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := f.do(t, http.MethodPost, "/api/v1/manager/execute", tt.body)
			assert.Equal(t, tt.status, w.Code, w.Body.String())
			assert.Equal(t, "application/problem+json", w.Header().Get("Content-Type"))
			assert.Equal(t, tt.code, decodeProblem(t, w).Code)
		})
	}
}

func TestExecute_RequestTooLarge(t *testing.T) {
	f := newFixture(t, true, func(o *apiconfig.APIOptions) { o.HTTP.MaxRequestSize = 64 })

	msg := fmt.Sprintf(`{"update_config":{"retry_delay":%s}}`, strings.Repeat("1", 10))
	w := f.execute(t, f.owner, msg)
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code, w.Body.String())
	assert.Equal(t, apitypes.CodeCommonRequestTooLarge, decodeProblem(t, w).Code)
}

func TestExecute_Signature(t *testing.T) {
	f := newFixture(t, true)
	body := fmt.Sprintf(`{"sender":%q,"msg":{"update_config":{"retry_delay":7}}}`, f.owner)
	const path = "/api/v1/manager/execute"
	key := f.keys[f.owner]

	t.Run("missing headers", func(t *testing.T) {
		w := f.doWithHeader(t, http.MethodPost, path, body, nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, apitypes.CodeSignatureRequired, decodeProblem(t, w).Code)
	})

	t.Run("body altered after signing", func(t *testing.T) {
		h := signHeaders(t, key, time.Now(), body)
		altered := strings.Replace(body, "7", "8", 1)
		w := f.doWithHeader(t, http.MethodPost, path, altered, h)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, apitypes.CodeInvalidSignature, decodeProblem(t, w).Code)
	})

	t.Run("stale timestamp", func(t *testing.T) {
		h := signHeaders(t, key, time.Now().Add(-time.Hour), body)
		w := f.doWithHeader(t, http.MethodPost, path, body, h)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, apitypes.CodeInvalidSignature, decodeProblem(t, w).Code)
	})

	t.Run("owner address signed by another key", func(t *testing.T) {
		other := f.newAccount(t)
		h := signHeaders(t, f.keys[other], time.Now(), body)
		w := f.doWithHeader(t, http.MethodPost, path, body, h)
		assert.Equal(t, http.StatusForbidden, w.Code)
		pd := decodeProblem(t, w)
		assert.Equal(t, apitypes.CodeSenderMismatch, pd.Code)
	})

	t.Run("private key in body", func(t *testing.T) {
		leaky := fmt.Sprintf(`{"sender":%q,"private_key":"00","msg":{"update_config":{}}}`, f.owner)
		w := f.do(t, http.MethodPost, path, leaky)
		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Equal(t, apitypes.CodeCommonPrivateKey, decodeProblem(t, w).Code)
	})

	st, err := f.svc.GetState(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(30), st.RetryDelay, "被拒绝的请求不改变状态")

	w := f.do(t, http.MethodPost, path, body)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	st, err = f.svc.GetState(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(7), st.RetryDelay)
}

func TestExecute_SignatureDisabled(t *testing.T) {
	f := newFixture(t, true, func(o *apiconfig.APIOptions) { o.HTTP.RequireSignature = false })

	body := fmt.Sprintf(`{"sender":%q,"msg":{"update_config":{"retry_delay":9}}}`, f.owner)
	w := f.doWithHeader(t, http.MethodPost, "/api/v1/manager/execute", body, nil)
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

func TestQueries(t *testing.T) {
	f := newFixture(t, true)

	w := f.do(t, http.MethodGet, "/api/v1/manager/state", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), f.owner)
	assert.Contains(t, w.Body.String(), `"retry_delay":30`)

	w = f.do(t, http.MethodGet, "/api/v1/manager/chains/bnb", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = f.execute(t, f.owner, `{"set_chain_setting":{"chain_id":"bnb","compass_job_id":"compass","main_job_id":"main"}}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = f.do(t, http.MethodGet, "/api/v1/manager/chains/bnb", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"compass_job_id":"compass","main_job_id":"main"}`, dataOf(t, w))

	w = f.do(t, http.MethodGet, "/api/v1/manager/version", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "crates.io:token-purchaser-manager-cw")
}

func TestOutbox(t *testing.T) {
	f := newFixture(t, true)

	require.Equal(t, http.StatusOK, f.execute(t, f.owner, `{"set_chain_setting":{"chain_id":"bnb","compass_job_id":"c","main_job_id":"m"}}`).Code)
	w := f.execute(t, f.owner, sendToken)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	requestID := w.Header().Get("X-Request-ID")
	require.NotEmpty(t, requestID)

	var body executeBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Data.Messages, 1)

	w = f.do(t, http.MethodGet, "/api/v1/manager/outbox?limit=10", "")
	require.Equal(t, http.StatusOK, w.Code)
	var page struct {
		Data struct {
			Count   int `json:"count"`
			Entries []struct {
				Seq       uint64 `json:"seq"`
				Action    string `json:"action"`
				RequestID string `json:"request_id"`
			} `json:"entries"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
	require.Equal(t, 1, page.Data.Count)
	assert.Equal(t, "send_token", page.Data.Entries[0].Action)
	assert.Equal(t, requestID, page.Data.Entries[0].RequestID, "outbox 条目可追溯到产生它的请求")

	w = f.do(t, http.MethodGet, "/api/v1/manager/outbox?limit=0", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHealth(t *testing.T) {
	f := newFixture(t, true)
	assert.Equal(t, http.StatusOK, f.do(t, http.MethodGet, "/api/v1/health/live", "").Code)
	assert.Equal(t, http.StatusOK, f.do(t, http.MethodGet, "/api/v1/health/ready", "").Code)

	w := f.do(t, http.MethodGet, "/api/v1/health", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"healthy"`)

	empty := newFixture(t, false)
	assert.Equal(t, http.StatusServiceUnavailable, empty.do(t, http.MethodGet, "/api/v1/health/ready", "").Code)
	assert.Contains(t, empty.do(t, http.MethodGet, "/api/v1/health", "").Body.String(), "not_instantiated")

	w = empty.do(t, http.MethodGet, "/api/v1/manager/state", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, apitypes.CodeNotInstantiated, decodeProblem(t, w).Code)
}

func TestMetricsAndNoRoute(t *testing.T) {
	f := newFixture(t, true)
	f.do(t, http.MethodGet, "/api/v1/manager/chains/eth", "")

	w := f.do(t, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `purchaser_api_requests_total{method="GET",path="/api/v1/manager/chains/:chain_id",status="404"} 1`)

	w = f.do(t, http.MethodGet, "/nope", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, apitypes.CodeCommonNotFound, decodeProblem(t, w).Code)

	disabled := newFixture(t, true, func(o *apiconfig.APIOptions) { o.HTTP.EnableMetrics = false })
	assert.Equal(t, http.StatusNotFound, disabled.do(t, http.MethodGet, "/metrics", "").Code)
}

func TestRateLimit(t *testing.T) {
	f := newFixture(t, true, func(o *apiconfig.APIOptions) { o.HTTP.WriteRateLimit = 1 })

	msg := `{"update_config":{"retry_delay":1}}`
	assert.Equal(t, http.StatusOK, f.execute(t, f.owner, msg).Code)
	w := f.execute(t, f.owner, msg)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, apitypes.CodeCommonRateLimited, decodeProblem(t, w).Code)

	// 读操作使用独立的令牌桶
	assert.Equal(t, http.StatusOK, f.do(t, http.MethodGet, "/api/v1/manager/state", "").Code)
}

func TestStartStop(t *testing.T) {
	f := newFixture(t, true)
	require.NoError(t, f.server.Start())

	resp, err := http.Get("http://" + f.server.Addr() + "/api/v1/health/live")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	require.NoError(t, f.server.Stop(context.Background()))
}

func dataOf(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return string(body.Data)
}
