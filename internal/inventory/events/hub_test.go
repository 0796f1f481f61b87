package events

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHubBroadcast(t *testing.T) {
	hub := NewHub(nil)
	a := &Client{ID: "a", Events: make(chan Event, 1)}
	b := &Client{ID: "b", Events: make(chan Event, 1)}
	hub.Register(a)
	hub.Register(b)
	assert.Equal(t, 2, hub.ClientCount())

	hub.Publish(TypeStockAlert, StockAlertPayload{ProductID: 3, Status: "low"})

	for _, c := range []*Client{a, b} {
		ev := <-c.Events
		assert.Equal(t, TypeStockAlert, ev.EventType)
		var p StockAlertPayload
		require.NoError(t, json.Unmarshal([]byte(ev.Data), &p))
		assert.Equal(t, uint(3), p.ProductID)
	}
}

func TestHubSkipsFullClient(t *testing.T) {
	hub := NewHub(nil)
	c := &Client{ID: "slow", Events: make(chan Event, 1)}
	hub.Register(c)

	hub.Broadcast(Event{EventType: "first"})
	hub.Broadcast(Event{EventType: "second"})

	ev := <-c.Events
	assert.Equal(t, "first", ev.EventType)
	assert.Len(t, c.Events, 0)
}

func TestHubUnregisterClosesChannel(t *testing.T) {
	hub := NewHub(nil)
	c := &Client{ID: "gone", Events: make(chan Event, 1)}
	hub.Register(c)
	hub.Unregister("gone")
	hub.Unregister("gone")

	_, ok := <-c.Events
	assert.False(t, ok)
	assert.Zero(t, hub.ClientCount())
}
