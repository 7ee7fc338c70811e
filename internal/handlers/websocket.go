package handlers

import (
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/playbook/internal/common"
	"github.com/ternarybob/playbook/internal/models"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for local development
	},
}

const clientWriteTimeout = 10 * time.Second

// WebSocketHandler streams fired alerts and server logs to connected clients.
type WebSocketHandler struct {
	logger           arbor.ILogger
	clients          map[*websocket.Conn]bool
	clientMutex      map[*websocket.Conn]*sync.Mutex
	mu               sync.RWMutex
	serverInstanceID string // Unique ID generated on startup - clients use to detect server restart
}

// LogEntry is a log line shaped for the UI stream.
type LogEntry struct {
	Timestamp string `json:"timestamp"`
	Level     string `json:"level"`
	Message   string `json:"message"`
}

func NewWebSocketHandler() *WebSocketHandler {
	h := &WebSocketHandler{
		logger:           common.GetLogger(),
		clients:          make(map[*websocket.Conn]bool),
		clientMutex:      make(map[*websocket.Conn]*sync.Mutex),
		serverInstanceID: uuid.New().String(),
	}

	h.logger.Info().Str("server_instance_id", h.serverInstanceID).Msg("WebSocket handler initialized")

	return h
}

// HandleWebSocket upgrades the connection and registers the client for alert
// and log broadcasts. The read loop exists only to detect disconnects.
func (h *WebSocketHandler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}

	h.mu.Lock()
	h.clients[conn] = true
	h.clientMutex[conn] = &sync.Mutex{}
	clientCount := len(h.clients)
	h.mu.Unlock()

	h.logger.Debug().
		Str("remote", r.RemoteAddr).
		Int("clients", clientCount).
		Msg("WebSocket client connected")

	h.writeToClient(conn, map[string]interface{}{
		"type":               "connected",
		"server_instance_id": h.serverInstanceID,
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	h.mu.Lock()
	delete(h.clients, conn)
	delete(h.clientMutex, conn)
	clientCount = len(h.clients)
	h.mu.Unlock()

	conn.Close()

	h.logger.Debug().
		Str("remote", r.RemoteAddr).
		Int("clients", clientCount).
		Msg("WebSocket client disconnected")
}

// NotifyAlerts pushes fired alerts to every connected client.
func (h *WebSocketHandler) NotifyAlerts(alerts []models.AlertEvent) {
	for _, alert := range alerts {
		h.broadcast(map[string]interface{}{
			"type":  "alert",
			"alert": alert,
		})
	}
}

// BroadcastLog pushes a log line to every connected client.
func (h *WebSocketHandler) BroadcastLog(entry LogEntry) {
	h.broadcast(map[string]interface{}{
		"type": "log",
		"log":  entry,
	})
}

func (h *WebSocketHandler) broadcast(message interface{}) {
	h.mu.RLock()
	conns := make([]*websocket.Conn, 0, len(h.clients))
	for conn := range h.clients {
		conns = append(conns, conn)
	}
	h.mu.RUnlock()

	for _, conn := range conns {
		h.writeToClient(conn, message)
	}
}

// writeToClient serializes writes per connection; gorilla connections do not
// allow concurrent writers.
func (h *WebSocketHandler) writeToClient(conn *websocket.Conn, message interface{}) {
	h.mu.RLock()
	mutex, ok := h.clientMutex[conn]
	h.mu.RUnlock()
	if !ok {
		return
	}

	mutex.Lock()
	defer mutex.Unlock()

	conn.SetWriteDeadline(time.Now().Add(clientWriteTimeout))
	if err := conn.WriteJSON(message); err != nil {
		h.logger.Debug().Err(err).Msg("WebSocket write failed")
	}
}
