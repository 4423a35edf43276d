// Package websocket 已提交消息的实时推送
//
// GET /api/v1/manager/events 升级为 WebSocket 后：
//   - 首帧为 subscribed，随后回放 outbox 中仍未投递、序号大于 after 的条目
//   - 之后每条提交的消息推送一帧 message
//   - action 查询参数可只订阅某一类命令产生的消息
package websocket

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	apitypes "github.com/weisyn/purchaser/internal/api/types"
	wstypes "github.com/weisyn/purchaser/internal/api/websocket/types"
	"github.com/weisyn/purchaser/pkg/interfaces/infrastructure/event"
	managerInterface "github.com/weisyn/purchaser/pkg/interfaces/manager"
	"github.com/weisyn/purchaser/pkg/types"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

// Server WebSocket服务器
type Server struct {
	logger              *zap.Logger
	outbox              managerInterface.Outbox
	subscriptionManager *SubscriptionManager
	upgrader            websocket.Upgrader
}

// NewServer 创建WebSocket服务器
// outbox 可为 nil，此时不支持回放
func NewServer(logger *zap.Logger, eventBus event.EventBus, outbox managerInterface.Outbox, origins OriginPolicy) (*Server, error) {
	subs, err := NewSubscriptionManager(logger, eventBus, 0)
	if err != nil {
		return nil, err
	}
	return &Server{
		logger:              logger,
		outbox:              outbox,
		subscriptionManager: subs,
		upgrader: websocket.Upgrader{
			CheckOrigin:     origins.Check,
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
		},
	}, nil
}

// Close 停止接收事件
func (s *Server) Close() {
	s.subscriptionManager.Close()
}

// Subscriptions 订阅管理器
func (s *Server) Subscriptions() *SubscriptionManager {
	return s.subscriptionManager
}

// HandleWebSocket 处理WebSocket连接（Gin Handler）
func (s *Server) HandleWebSocket(c *gin.Context) {
	var after uint64
	if v := c.Query("after"); v != "" {
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			apitypes.NewProblemDetails(apitypes.CodeCommonValidationError, apitypes.LayerAPIGateway,
				"after 必须是非负整数", err.Error(), http.StatusBadRequest, nil).WriteJSON(c.Writer)
			c.Abort()
			return
		}
		after = n
	}

	// 先订阅再回放，回放期间提交的消息按序号去重
	sub := s.subscriptionManager.Subscribe(c.Query("action"))
	defer s.subscriptionManager.Unsubscribe(sub.ID)

	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.logger.Error("Failed to upgrade WebSocket connection", zap.Error(err))
		return
	}
	defer func() {
		if err := conn.Close(); err != nil {
			s.logger.Debug("关闭WebSocket连接失败", zap.Error(err))
		}
	}()

	s.logger.Info("WebSocket connection established",
		zap.String("remote_addr", conn.RemoteAddr().String()),
		zap.String("subscription", sub.ID))

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()
	go s.readLoop(conn, cancel)

	replay, err := s.replay(ctx, sub.Action, after)
	if err != nil {
		s.logger.Warn("回放未投递消息失败", zap.Error(err))
	}
	if err := s.write(conn, wstypes.SubscribedFrame{
		Type:         wstypes.FrameSubscribed,
		Subscription: sub.ID,
		Replayed:     len(replay),
	}); err != nil {
		return
	}

	last := after
	for _, entry := range replay {
		if err := s.send(conn, sub.ID, entry); err != nil {
			return
		}
		last = entry.Seq
	}

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("WebSocket connection closed", zap.String("subscription", sub.ID))
			return
		case entry := <-sub.C:
			if entry.Seq <= last {
				continue
			}
			if err := s.send(conn, sub.ID, entry); err != nil {
				return
			}
			last = entry.Seq
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readLoop 只处理控制帧，连接关闭时取消上下文
func (s *Server) readLoop(conn *websocket.Conn, cancel context.CancelFunc) {
	defer cancel()
	conn.SetReadLimit(512)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.Warn("WebSocket connection closed unexpectedly", zap.Error(err))
			}
			return
		}
	}
}

func (s *Server) replay(ctx context.Context, action string, after uint64) ([]types.OutboxEntry, error) {
	if s.outbox == nil {
		return nil, nil
	}
	pending, err := s.outbox.Pending(ctx, 0)
	if err != nil {
		return nil, err
	}
	out := pending[:0]
	for _, e := range pending {
		if e.Seq > after && (action == "" || e.Action == action) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *Server) send(conn *websocket.Conn, subID string, entry types.OutboxEntry) error {
	return s.write(conn, wstypes.MessageFrame{
		Type:         wstypes.FrameMessage,
		Subscription: subID,
		Entry:        entry,
	})
}

func (s *Server) write(conn *websocket.Conn, v interface{}) error {
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteJSON(v); err != nil {
		s.logger.Debug("WebSocket write failed", zap.Error(err))
		return err
	}
	return nil
}
