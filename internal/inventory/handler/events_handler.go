package handler

import (
	"time"

	"github.com/bitfantasy/nimo-inventory/internal/inventory/events"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const heartbeatInterval = 30 * time.Second

// EventsHandler streams stock movements, alerts and order updates over SSE.
type EventsHandler struct {
	hub *events.Hub
}

func NewEventsHandler(hub *events.Hub) *EventsHandler {
	return &EventsHandler{hub: hub}
}

// Stream 订阅库存事件
// GET /api/v1/inventory/events
func (h *EventsHandler) Stream(c *gin.Context) {
	if h.hub == nil {
		Error(c, 50300, "event stream disabled")
		return
	}

	client := &events.Client{
		ID:     "inv-" + uuid.NewString(),
		UserID: GetUserID(c),
		Events: make(chan events.Event, 64),
	}
	h.hub.Register(client)
	defer h.hub.Unregister(client.ID)

	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.SSEvent("connected", gin.H{"client_id": client.ID, "user_id": client.UserID})
	c.Writer.Flush()

	ticker := time.NewTicker(heartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.Request.Context().Done():
			return
		case ev, ok := <-client.Events:
			if !ok {
				return
			}
			// Data is already JSON; a string is written as is.
			c.SSEvent(ev.EventType, ev.Data)
		case t := <-ticker.C:
			c.SSEvent("heartbeat", t.Unix())
		}
		c.Writer.Flush()
	}
}
