package api

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"TrendPulse/internal/domain/models"
	domrepo "TrendPulse/internal/domain/repository"
	"TrendPulse/pkg/logger"
)

const (
	writeWait      = 10 * time.Second
	clientBuffer   = 32
	maxMessageSize = 512
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(*http.Request) bool { return true },
}

// AlertHub broadcasts anomaly alerts to websocket subscribers. It also
// implements AlertPublisher, so the analyzer treats it like any other
// alert sink.
type AlertHub struct {
	l       *logger.Logger
	mu      sync.RWMutex
	clients map[*websocket.Conn]chan []byte
	closed  bool
}

var _ domrepo.AlertPublisher = (*AlertHub)(nil)

// NewAlertHub creates the hub.
func NewAlertHub(l *logger.Logger) *AlertHub {
	return &AlertHub{l: l, clients: make(map[*websocket.Conn]chan []byte)}
}

// Subscribe upgrades the request and streams alerts until the client
// disconnects.
func (h *AlertHub) Subscribe(c echo.Context) error {
	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}

	send := make(chan []byte, clientBuffer)
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		_ = conn.Close()
		return nil
	}
	h.clients[conn] = send
	h.mu.Unlock()

	h.l.Info("alert subscriber connected", logger.Int("subscribers", h.count()))

	go h.writeLoop(conn, send)
	h.readLoop(conn)
	return nil
}

// PublishAlert broadcasts one alert to all subscribers.
func (h *AlertHub) PublishAlert(_ context.Context, a models.AnomalyAlert) error {
	data, err := json.Marshal(a)
	if err != nil {
		return err
	}
	h.broadcast(data)
	return nil
}

// PublishAlertBatch broadcasts each alert in order.
func (h *AlertHub) PublishAlertBatch(ctx context.Context, alerts []models.AnomalyAlert) error {
	for _, a := range alerts {
		if err := h.PublishAlert(ctx, a); err != nil {
			return err
		}
	}
	return nil
}

// Close disconnects all subscribers.
func (h *AlertHub) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for conn, send := range h.clients {
		close(send)
		delete(h.clients, conn)
	}
	return nil
}

func (h *AlertHub) broadcast(data []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for conn, send := range h.clients {
		select {
		case send <- data:
		default:
			// Slow consumer, drop the message rather than block the run.
			h.l.Warn("alert dropped for slow subscriber",
				logger.String("remote", conn.RemoteAddr().String()))
		}
	}
}

func (h *AlertHub) writeLoop(conn *websocket.Conn, send chan []byte) {
	defer conn.Close()
	for data := range send {
		_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			return
		}
	}
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}

// readLoop drains the connection so pings are answered and a close frame
// removes the client.
func (h *AlertHub) readLoop(conn *websocket.Conn) {
	conn.SetReadLimit(maxMessageSize)
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
	h.remove(conn)
}

func (h *AlertHub) remove(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if send, ok := h.clients[conn]; ok {
		close(send)
		delete(h.clients, conn)
	}
}

func (h *AlertHub) count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
