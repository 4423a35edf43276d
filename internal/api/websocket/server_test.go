package websocket

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	wstypes "github.com/weisyn/purchaser/internal/api/websocket/types"
	eventbus "github.com/weisyn/purchaser/internal/core/infrastructure/event"
	"github.com/weisyn/purchaser/pkg/interfaces/infrastructure/event"
	managerInterface "github.com/weisyn/purchaser/pkg/interfaces/manager"
	"github.com/weisyn/purchaser/pkg/types"
)

type staticOutbox struct {
	entries []types.OutboxEntry
}

func (o *staticOutbox) Pending(ctx context.Context, limit int) ([]types.OutboxEntry, error) {
	return append([]types.OutboxEntry(nil), o.entries...), nil
}

func (o *staticOutbox) Ack(ctx context.Context, seqs ...uint64) error { return nil }

func entry(seq uint64, action string) types.OutboxEntry {
	return types.OutboxEntry{
		Seq:     seq,
		ID:      action,
		Action:  action,
		Message: types.NewExecuteJob("job", []byte{byte(seq)}),
	}
}

func startServer(t *testing.T, bus *eventbus.EventBus, outbox *staticOutbox) (*Server, string) {
	t.Helper()
	return startServerWithOrigins(t, bus, outbox, OriginPolicy{AllowAll: true})
}

func startServerWithOrigins(t *testing.T, bus *eventbus.EventBus, outbox *staticOutbox, origins OriginPolicy) (*Server, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	var ob managerInterface.Outbox
	if outbox != nil {
		ob = outbox
	}
	srv, err := NewServer(zap.NewNop(), bus, ob, origins)
	require.NoError(t, err)
	t.Cleanup(srv.Close)

	r := gin.New()
	r.GET("/events", srv.HandleWebSocket)
	ts := httptest.NewServer(r)
	t.Cleanup(ts.Close)
	return srv, "ws" + strings.TrimPrefix(ts.URL, "http") + "/events"
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) wstypes.MessageFrame {
	t.Helper()
	var frame wstypes.MessageFrame
	require.NoError(t, conn.ReadJSON(&frame))
	require.Equal(t, wstypes.FrameMessage, frame.Type)
	return frame
}

func TestHandleWebSocket_ReplayThenLive(t *testing.T) {
	bus := eventbus.New(nil)
	outbox := &staticOutbox{entries: []types.OutboxEntry{entry(1, "send_token"), entry(2, "update_compass"), entry(3, "send_token")}}
	srv, url := startServer(t, bus, outbox)

	conn := dial(t, url+"?after=1")

	var hello wstypes.SubscribedFrame
	require.NoError(t, conn.ReadJSON(&hello))
	assert.Equal(t, wstypes.FrameSubscribed, hello.Type)
	assert.Equal(t, 2, hello.Replayed)

	assert.Equal(t, uint64(2), readMessage(t, conn).Entry.Seq)
	assert.Equal(t, uint64(3), readMessage(t, conn).Entry.Seq)
	require.Eventually(t, func() bool { return srv.Subscriptions().Count() == 1 }, time.Second, 10*time.Millisecond)

	// 已回放的序号不重复推送
	bus.Publish(event.EventType(types.EventManagerMessage), entry(3, "send_token"))
	bus.Publish(event.EventType(types.EventManagerMessage), entry(4, "send_token"))
	frame := readMessage(t, conn)
	assert.Equal(t, uint64(4), frame.Entry.Seq)
	assert.Equal(t, hello.Subscription, frame.Subscription)
}

func TestHandleWebSocket_ActionFilter(t *testing.T) {
	bus := eventbus.New(nil)
	srv, url := startServer(t, bus, &staticOutbox{})

	conn := dial(t, url+"?action=update_compass")
	var hello wstypes.SubscribedFrame
	require.NoError(t, conn.ReadJSON(&hello))
	assert.Zero(t, hello.Replayed)
	require.Eventually(t, func() bool { return srv.Subscriptions().Count() == 1 }, time.Second, 10*time.Millisecond)

	bus.Publish(event.EventType(types.EventManagerMessage), entry(1, "send_token"))
	bus.Publish(event.EventType(types.EventManagerMessage), entry(2, "update_compass"))
	frame := readMessage(t, conn)
	assert.Equal(t, uint64(2), frame.Entry.Seq)
	assert.Equal(t, "update_compass", frame.Entry.Action)
}

func TestHandleWebSocket_UnsubscribeOnClose(t *testing.T) {
	bus := eventbus.New(nil)
	srv, url := startServer(t, bus, nil)

	conn := dial(t, url)
	var hello wstypes.SubscribedFrame
	require.NoError(t, conn.ReadJSON(&hello))
	require.Eventually(t, func() bool { return srv.Subscriptions().Count() == 1 }, time.Second, 10*time.Millisecond)

	require.NoError(t, conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")))
	_ = conn.Close()
	assert.Eventually(t, func() bool { return srv.Subscriptions().Count() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestHandleWebSocket_BadCursor(t *testing.T) {
	_, url := startServer(t, eventbus.New(nil), nil)
	_, resp, err := websocket.DefaultDialer.Dial(url+"?after=-1", nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, 400, resp.StatusCode)
}

func TestSubscriptionManager_DropsWhenFull(t *testing.T) {
	bus := eventbus.New(nil)
	m, err := NewSubscriptionManager(zap.NewNop(), bus, 1)
	require.NoError(t, err)
	defer m.Close()

	sub := m.Subscribe("")
	bus.Publish(event.EventType(types.EventManagerMessage), entry(1, "a"))
	bus.Publish(event.EventType(types.EventManagerMessage), entry(2, "a"))

	assert.Equal(t, uint64(1), (<-sub.C).Seq)
	assert.Equal(t, uint64(1), sub.Dropped())

	m.Unsubscribe(sub.ID)
	assert.Zero(t, m.Count())

	m.Close()
	assert.False(t, bus.HasCallback(event.EventType(types.EventManagerMessage)))
}

func TestOriginPolicy(t *testing.T) {
	req := func(host, origin string) *http.Request {
		r := httptest.NewRequest(http.MethodGet, "http://"+host+"/events", nil)
		if origin != "" {
			r.Header.Set("Origin", origin)
		}
		return r
	}

	local := NewOriginPolicy("127.0.0.1", nil)
	assert.True(t, local.AllowAll)
	assert.True(t, local.Check(req("127.0.0.1:8080", "http://evil.example")))
	assert.True(t, NewOriginPolicy("localhost", nil).AllowAll)
	assert.True(t, NewOriginPolicy("::1", nil).AllowAll)

	public := NewOriginPolicy("0.0.0.0", []string{"https://ops.example/"})
	assert.False(t, public.AllowAll)
	assert.True(t, public.Check(req("node:8080", "")), "非浏览器客户端")
	assert.True(t, public.Check(req("node:8080", "http://node:8080")), "同源")
	assert.True(t, public.Check(req("node:8080", "https://ops.example")))
	assert.False(t, public.Check(req("node:8080", "http://evil.example")))
	assert.False(t, public.Check(req("node:8080", "::bad")))
}

func TestHandleWebSocket_RejectsForeignOrigin(t *testing.T) {
	bus := eventbus.New(nil)
	srv, url := startServerWithOrigins(t, bus, &staticOutbox{}, NewOriginPolicy("0.0.0.0", nil))

	header := http.Header{}
	header.Set("Origin", "http://evil.example")
	_, resp, err := websocket.DefaultDialer.Dial(url, header)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	require.Eventually(t, func() bool { return srv.Subscriptions().Count() == 0 }, time.Second, 10*time.Millisecond)

	// 无 Origin 的客户端不受影响
	conn := dial(t, url)
	var hello wstypes.SubscribedFrame
	require.NoError(t, conn.ReadJSON(&hello))
	assert.Equal(t, wstypes.FrameSubscribed, hello.Type)
}
