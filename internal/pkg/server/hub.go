package server

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/anicoll/home-bridge/internal/pkg/model"
)

const (
	EventTemperatureReadings = "temperature.readings"
	EventSensorRegistered    = "temperature.sensor"

	sendBufferSize = 256
	maxMessageSize = 512
	pingInterval   = 30 * time.Second
	pongWait       = 60 * time.Second
	writeWait      = 10 * time.Second
)

// Event is a message pushed to websocket clients.
type Event struct {
	Type      string `json:"type"`
	Timestamp string `json:"timestamp"`
	Payload   any    `json:"payload"`
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(_ *http.Request) bool {
		// auth and cors run before the upgrade.
		return true
	},
}

// Hub pushes temperature readings to all websocket clients. It is registered as a
// reading publisher next to the history store and mqtt.
type Hub struct {
	logger  *zap.Logger
	mu      sync.RWMutex
	clients map[*hubClient]struct{}
	now     func() time.Time
}

type hubClient struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
}

func NewHub() *Hub {
	return &Hub{
		logger:  zap.L(),
		clients: make(map[*hubClient]struct{}),
		now:     time.Now,
	}
}

// Run blocks until ctx is done and disconnects all clients.
func (h *Hub) Run(ctx context.Context) error {
	<-ctx.Done()
	h.closeAll()
	return nil
}

func (h *Hub) Write(_ context.Context, readings model.TemperatureReadings) error {
	return h.Broadcast(EventTemperatureReadings, readings)
}

func (h *Hub) RegisterSensor(_ context.Context, sensor model.TemperatureSensor) error {
	return h.Broadcast(EventSensorRegistered, sensor)
}

// Broadcast sends an event to every client. Clients with a full buffer miss the event.
func (h *Hub) Broadcast(eventType string, payload any) error {
	data, err := json.Marshal(Event{
		Type:      eventType,
		Timestamp: h.now().UTC().Format(time.RFC3339),
		Payload:   payload,
	})
	if err != nil {
		return err
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.clients {
		select {
		case client.send <- data:
		default:
			h.logger.Warn("websocket client too slow, event dropped", zap.String("event", eventType))
		}
	}
	return nil
}

func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("websocket upgrade failed", zap.Error(err))
		return
	}
	client := &hubClient{hub: h, conn: conn, send: make(chan []byte, sendBufferSize)}
	h.register(client)

	go client.writePump()
	go client.readPump()
}

func (h *Hub) register(c *hubClient) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	count := len(h.clients)
	h.mu.Unlock()
	h.logger.Debug("websocket client connected", zap.Int("clients", count))
}

// unregister closes the send channel once, whoever removes the client first.
func (h *Hub) unregister(c *hubClient) {
	h.mu.Lock()
	_, existed := h.clients[c]
	delete(h.clients, c)
	count := len(h.clients)
	h.mu.Unlock()

	if existed {
		close(c.send)
		h.logger.Debug("websocket client disconnected", zap.Int("clients", count))
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		close(c.send)
		delete(h.clients, c)
	}
}

// readPump only handles control frames, clients have nothing to say.
func (c *hubClient) readPump() {
	defer func() {
		c.hub.unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.hub.logger.Warn("websocket read error", zap.Error(err))
			}
			return
		}
	}
}

func (c *hubClient) writePump() {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, nil)
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
