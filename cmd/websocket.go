package main

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"varirunBack/internal/handlers"
	"varirunBack/internal/models"
)

const (
	readLimit     = 4 << 10
	readDeadline  = 120 * time.Second
	writeDeadline = 5 * time.Second
	pingInterval  = 15 * time.Second
	directBuffer  = 256
)

type directMsg struct {
	userID int64
	note   models.Notification
}

type wsClient struct {
	userID int64
	conn   *websocket.Conn
}

// NotificationHub keeps one socket per user and delivers direct events.
// All access to clients happens in Run.
type NotificationHub struct {
	clients    map[int64]*websocket.Conn
	direct     chan directMsg
	register   chan wsClient
	unregister chan wsClient
	stopped    chan struct{}
	log        zerolog.Logger
}

func NewNotificationHub(log zerolog.Logger) *NotificationHub {
	return &NotificationHub{
		clients:    make(map[int64]*websocket.Conn),
		direct:     make(chan directMsg, directBuffer),
		register:   make(chan wsClient),
		unregister: make(chan wsClient),
		stopped:    make(chan struct{}),
		log:        log.With().Str("component", "ws_hub").Logger(),
	}
}

// Run owns the client map until ctx is done. It must be called once.
func (h *NotificationHub) Run(ctx context.Context) {
	defer close(h.stopped)
	for {
		select {
		case <-ctx.Done():
			for id, conn := range h.clients {
				_ = conn.Close()
				delete(h.clients, id)
			}
			return

		case c := <-h.register:
			if old, ok := h.clients[c.userID]; ok && old != c.conn {
				_ = old.Close()
			}
			h.clients[c.userID] = c.conn
			h.log.Debug().Int64("user_id", c.userID).Msg("ws register")

		case c := <-h.unregister:
			if cur, ok := h.clients[c.userID]; ok && cur == c.conn {
				_ = cur.Close()
				delete(h.clients, c.userID)
				h.log.Debug().Int64("user_id", c.userID).Msg("ws unregister")
			}

		case dm := <-h.direct:
			conn, ok := h.clients[dm.userID]
			if !ok {
				h.log.Debug().Int64("user_id", dm.userID).Str("type", dm.note.Type).Msg("direct skip: user offline")
				continue
			}
			_ = conn.SetWriteDeadline(time.Now().Add(writeDeadline))
			if err := conn.WriteJSON(dm.note); err != nil {
				h.log.Warn().Err(err).Int64("user_id", dm.userID).Msg("direct send failed")
				_ = conn.Close()
				delete(h.clients, dm.userID)
			}
		}
	}
}

// add hands c to Run. It reports false once the hub has stopped.
func (h *NotificationHub) add(c wsClient) bool {
	select {
	case h.register <- c:
		return true
	case <-h.stopped:
		return false
	}
}

func (h *NotificationHub) remove(c wsClient) {
	select {
	case h.unregister <- c:
	case <-h.stopped:
		_ = c.conn.Close()
	}
}

// Notify queues an event for userID. It never blocks; a full queue drops the event.
func (h *NotificationHub) Notify(userID int64, note models.Notification) {
	select {
	case h.direct <- directMsg{userID: userID, note: note}:
	default:
		h.log.Warn().Int64("user_id", userID).Str("type", note.Type).Msg("notification queue full, event dropped")
	}
}

var upgrader = websocket.Upgrader{
	CheckOrigin:     func(r *http.Request) bool { return true },
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// WebSocketHandler upgrades an authenticated request and registers the socket.
func (app *application) WebSocketHandler(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := handlers.Identity(r.Context())
	if !ok {
		handlers.WriteError(w, r, models.Unauthorized("unauthorized"))
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		app.log.Warn().Err(err).Int64("user_id", userID).Msg("websocket upgrade failed")
		return
	}
	conn.SetReadLimit(readLimit)
	_ = conn.SetReadDeadline(time.Now().Add(readDeadline))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(readDeadline))
	})

	client := wsClient{userID: userID, conn: conn}
	if !app.hub.add(client) {
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"), time.Now().Add(writeDeadline))
		_ = conn.Close()
		return
	}

	done := make(chan struct{})
	go pingLoop(app.hub, client, done)
	go readLoop(app.hub, client, done)
}

// pingLoop uses WriteControl, which is safe alongside the hub's writes.
func pingLoop(h *NotificationHub, c wsClient, done <-chan struct{}) {
	t := time.NewTicker(pingInterval)
	defer t.Stop()
	for {
		select {
		case <-done:
			return
		case <-t.C:
			if err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeDeadline)); err != nil {
				h.remove(c)
				return
			}
		}
	}
}

// readLoop drains client frames; clients only listen.
func readLoop(h *NotificationHub, c wsClient, done chan<- struct{}) {
	defer func() {
		close(done)
		h.remove(c)
	}()
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}
