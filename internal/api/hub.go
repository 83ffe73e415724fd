package api

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"

	"github.com/dispenagua/kiosk/internal/kiosk"
)

const (
	writeWait    = 10 * time.Second
	pingInterval = 30 * time.Second
	pongWait     = pingInterval + writeWait
)

// ScreenSource publishes screen snapshots
type ScreenSource interface {
	Subscribe() (<-chan kiosk.Screen, func())
}

// Hub pushes every published Screen to the connected kiosk pages
type Hub struct {
	source   ScreenSource
	log      *log.Entry
	upgrader websocket.Upgrader

	mu      sync.Mutex
	conns   map[*websocket.Conn]struct{}
	done    chan struct{}
	stopped bool
}

// NewHub creates a hub fed by source
func NewHub(source ScreenSource, logger *log.Entry) *Hub {
	return &Hub{
		source: source,
		log:    logger.WithField("component", "ws"),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
		},
		conns: make(map[*websocket.Conn]struct{}),
		done:  make(chan struct{}),
	}
}

// Run blocks until ctx is done, then closes every connection
func (h *Hub) Run(ctx context.Context) error {
	<-ctx.Done()

	h.mu.Lock()
	h.stopped = true
	close(h.done)
	for conn := range h.conns {
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"),
			time.Now().Add(time.Second))
		conn.Close()
	}
	h.mu.Unlock()
	return nil
}

// Clients returns the number of connected pages
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.conns)
}

// ServeHTTP upgrades the request and streams screens until the page goes away
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.WithError(err).Warn("WebSocket upgrade failed")
		return
	}

	h.mu.Lock()
	if h.stopped {
		h.mu.Unlock()
		conn.Close()
		return
	}
	h.conns[conn] = struct{}{}
	h.mu.Unlock()

	h.log.WithField("remote", r.RemoteAddr).Info("Kiosk page connected")

	screens, cancel := h.source.Subscribe()
	closed := make(chan struct{})

	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		defer close(closed)
		h.readLoop(conn)
	}()

	go func() {
		defer wg.Done()
		h.writeLoop(conn, screens, closed)
		// unblock the reader
		conn.Close()
	}()

	wg.Wait()
	cancel()

	h.mu.Lock()
	delete(h.conns, conn)
	h.mu.Unlock()
	conn.Close()

	h.log.WithField("remote", r.RemoteAddr).Info("Kiosk page disconnected")
}

// readLoop drains the connection so pongs and close frames are processed
func (h *Hub) readLoop(conn *websocket.Conn) {
	conn.SetReadLimit(512)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.log.WithError(err).Debug("WebSocket read error")
			}
			return
		}
	}
}

// writeLoop sends screens and pings
func (h *Hub) writeLoop(conn *websocket.Conn, screens <-chan kiosk.Screen, closed <-chan struct{}) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-h.done:
			return

		case <-closed:
			return

		case s, ok := <-screens:
			if !ok {
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(s); err != nil {
				h.log.WithError(err).Debug("WebSocket write error")
				return
			}

		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				h.log.WithError(err).Debug("WebSocket ping error")
				return
			}
		}
	}
}
