package events

import (
	"encoding/json"
	"sync"

	"go.uber.org/zap"
)

// 事件类型
const (
	TypeStockMovement = "stock_movement"
	TypeStockAlert    = "stock_alert"
	TypeOrderUpdate   = "order_update"
)

// Event is one Server-Sent Event frame.
type Event struct {
	EventType string `json:"event"`
	Data      string `json:"data"`
}

// Client is a connected SSE subscriber.
type Client struct {
	ID     string
	UserID string
	Events chan Event
}

// Hub fans events out to every connected client. A client whose buffer is
// full misses the event rather than blocking the publisher.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*Client
	logger  *zap.Logger
}

func NewHub(logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		clients: make(map[string]*Client),
		logger:  logger,
	}
}

func (h *Hub) Register(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[client.ID] = client
	h.logger.Debug("sse client registered",
		zap.String("client_id", client.ID),
		zap.String("user_id", client.UserID),
		zap.Int("total", len(h.clients)))
}

func (h *Hub) Unregister(clientID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if client, ok := h.clients[clientID]; ok {
		close(client.Events)
		delete(h.clients, clientID)
		h.logger.Debug("sse client unregistered",
			zap.String("client_id", clientID),
			zap.Int("total", len(h.clients)))
	}
}

// ClientCount 当前连接数
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) Broadcast(event Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, client := range h.clients {
		select {
		case client.Events <- event:
		default:
			h.logger.Warn("sse client buffer full, skipping event",
				zap.String("client_id", client.ID),
				zap.String("event", event.EventType))
		}
	}
}

// Publish marshals payload as the event data and broadcasts it.
func (h *Hub) Publish(eventType string, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		h.logger.Error("marshal sse payload", zap.String("event", eventType), zap.Error(err))
		return
	}
	h.Broadcast(Event{EventType: eventType, Data: string(data)})
}
