package handler

import (
	"BrainScript/internal/api/dto"
	"BrainScript/internal/pkg/logger"
	"BrainScript/internal/pkg/metrics"
	"BrainScript/internal/pkg/readtime"
	"BrainScript/internal/pkg/response"
	"BrainScript/internal/service"
	"context"
	log "log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
)

const (
	wsHeartbeatInterval = 20 * time.Second
	wsReadersInterval   = 5 * time.Second
	wsPingInterval      = 30 * time.Second
	wsReadTimeout       = 75 * time.Second
	wsWriteTimeout      = 10 * time.Second
	wsMaxFrameSize      = 512
	wsCloseFlushTimeout = 5 * time.Second
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// WsHandler 在线读者推送，同时承担该连接的阅读时长统计
type WsHandler struct {
	presenceSvc service.PresenceService
	postSvc     service.PostService
}

func NewWsHandler(presenceSvc service.PresenceService, postSvc service.PostService) *WsHandler {
	return &WsHandler{
		presenceSvc: presenceSvc,
		postSvc:     postSvc,
	}
}

// wsConn gorilla 的连接不支持并发写
type wsConn struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (w *wsConn) writeJSON(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	_ = w.conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
	return w.conn.WriteMessage(websocket.TextMessage, data)
}

func (w *wsConn) ping() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(wsWriteTimeout))
}

func (s *WsHandler) Connect(c *gin.Context) {
	postID, err := uintParam(c, "post_id")
	if err != nil {
		response.Error(c, err)
		return
	}
	identity := service.ResolveIdentity(c.GetUint64("user_id"), c.GetString("reader_session"))

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.ErrorContext(c.Request.Context(), "WS 协议升级失败", "err", err)
		return
	}
	defer func() {
		_ = conn.Close()
	}()
	metrics.PresenceStreamOpened()
	defer metrics.PresenceStreamClosed()

	ctx, cancel := context.WithCancel(logger.WithTraceID(context.WithoutCancel(c.Request.Context()), "ws-"))
	defer cancel()
	ws := &wsConn{conn: conn}

	acc := readtime.New(func(ctx context.Context, d time.Duration) error {
		ms := d.Milliseconds()
		err := s.postSvc.TrackReadTime(ctx, postID, ms)
		metrics.ObserveReadTimeFlush(ms, err)
		return err
	}, readtime.WithMaxFlush(service.MaxReadTimeReport))
	acc.Start()
	defer func() {
		flushCtx, flushCancel := context.WithTimeout(context.WithoutCancel(ctx), wsCloseFlushTimeout)
		defer flushCancel()
		if err := acc.Close(flushCtx); err != nil {
			log.WarnContext(ctx, "final read time flush failed", "post_id", postID, "err", err)
		}
	}()
	go acc.Run(ctx, readtime.DefaultFlushInterval)

	log.InfoContext(ctx, "在线读者 WS 连接已建立", "post_id", postID, "identity", identity.Kind())

	s.heartbeat(ctx, postID, identity)
	if err = s.pushReaders(ctx, ws, postID); err != nil {
		return
	}

	stopChan := make(chan struct{})
	go s.readLoop(ctx, conn, acc, postID, identity, stopChan)

	heartbeatTicker := time.NewTicker(wsHeartbeatInterval)
	readersTicker := time.NewTicker(wsReadersInterval)
	pingTicker := time.NewTicker(wsPingInterval)
	defer heartbeatTicker.Stop()
	defer readersTicker.Stop()
	defer pingTicker.Stop()

	for {
		select {
		case <-heartbeatTicker.C:
			if acc.Visible() {
				s.heartbeat(ctx, postID, identity)
			}
		case <-readersTicker.C:
			if err = s.pushReaders(ctx, ws, postID); err != nil {
				return
			}
		case <-pingTicker.C:
			if err = ws.ping(); err != nil {
				return
			}
		case <-stopChan:
			log.InfoContext(ctx, "在线读者 WS 连接已断开", "post_id", postID)
			return
		}
	}
}

// readLoop 处理客户端的可见性帧，连接断开时关闭 stopChan
func (s *WsHandler) readLoop(ctx context.Context, conn *websocket.Conn, acc *readtime.Accumulator, postID uint64, identity service.ReaderIdentity, stopChan chan struct{}) {
	defer close(stopChan)

	conn.SetReadLimit(wsMaxFrameSize)
	_ = conn.SetReadDeadline(time.Now().Add(wsReadTimeout))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsReadTimeout))
	})

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		_ = conn.SetReadDeadline(time.Now().Add(wsReadTimeout))

		var frame dto.PresenceClientFrame
		if err = json.Unmarshal(data, &frame); err != nil || frame.Type != "visibility" {
			continue
		}
		if frame.Visible {
			acc.Show()
			s.heartbeat(ctx, postID, identity)
			continue
		}
		if err = acc.Hide(ctx); err != nil {
			log.WarnContext(ctx, "read time flush on hide failed", "post_id", postID, "err", err)
		}
	}
}

func (s *WsHandler) heartbeat(ctx context.Context, postID uint64, identity service.ReaderIdentity) {
	if err := s.presenceSvc.Heartbeat(ctx, postID, identity); err != nil {
		log.WarnContext(ctx, "presence heartbeat failed", "post_id", postID, "identity", identity.Kind(), "err", err)
	}
}

func (s *WsHandler) pushReaders(ctx context.Context, ws *wsConn, postID uint64) error {
	readers, err := s.presenceSvc.GetActiveReaders(ctx, postID)
	if err != nil {
		// 查询失败时跳过本轮，不断开连接
		log.WarnContext(ctx, "load active readers failed", "post_id", postID, "err", err)
		return nil
	}
	count, err := s.presenceSvc.GetViewerCount(ctx, postID)
	if err != nil {
		log.WarnContext(ctx, "load viewer count failed", "post_id", postID, "err", err)
		return nil
	}

	frame := &dto.PresenceFrame{
		Type:        "readers",
		PostID:      postID,
		Readers:     readers,
		ViewerCount: count,
	}
	if err = ws.writeJSON(frame); err != nil {
		log.WarnContext(ctx, "WS 推送失败", "post_id", postID, "err", err)
		return err
	}
	return nil
}
