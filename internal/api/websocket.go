package api

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/KarimImran/quadcast2-go/internal/services/pubsub"
)

// Send/receive timing configuration and message size limits.
const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	maxMsgSize = 1 << 12 // 4 KB
)

// wsEnvelope wraps every WebSocket message. Type is one of "settings",
// "status", "levels".
type wsEnvelope struct {
	Type string      `json:"type"`
	Data interface{} `json:"data,omitempty"`
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for WebSocket
	},
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// handleWebSocket streams settings changes, controller status transitions,
// and computed LED levels to the client. On connect the current settings and
// status are sent immediately so the client never starts blind.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.With(zap.Error(err)).Warn("websocket upgrade failed")
		return
	}
	defer func() { _ = conn.Close() }()

	// Configure read limits and pong handler to extend read deadline
	conn.SetReadLimit(maxMsgSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	// Reader goroutine to handle control frames and detect disconnects
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	settingsSub := s.events.Subscribe(pubsub.TopicSettingsChanged, 16)
	statusSub := s.events.Subscribe(pubsub.TopicControllerStatus, 16)
	levelsSub := s.events.Subscribe(pubsub.TopicLEDLevels, 64)
	defer func() {
		s.events.Unsubscribe(settingsSub)
		s.events.Unsubscribe(statusSub)
		s.events.Unsubscribe(levelsSub)
	}()

	// Send initial snapshot immediately
	if err := writeEnvelope(conn, "settings", s.store.View()); err != nil {
		return
	}
	if err := writeEnvelope(conn, "status", s.controller.Status()); err != nil {
		return
	}

	ping := time.NewTicker(pingPeriod)
	defer ping.Stop()

	for {
		select {
		case <-done:
			return
		case <-r.Context().Done():
			return
		case <-ping.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case msg, ok := <-settingsSub.Channel:
			if !ok {
				return
			}
			if err := writeEnvelope(conn, "settings", msg); err != nil {
				return
			}
		case msg, ok := <-statusSub.Channel:
			if !ok {
				return
			}
			if err := writeEnvelope(conn, "status", msg); err != nil {
				return
			}
		case msg, ok := <-levelsSub.Channel:
			if !ok {
				return
			}
			if err := writeEnvelope(conn, "levels", msg); err != nil {
				return
			}
		}
	}
}

// writeEnvelope writes one typed message with a write deadline.
func writeEnvelope(conn *websocket.Conn, typ string, data interface{}) error {
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(wsEnvelope{Type: typ, Data: data})
}
