package api

import (
	"encoding/json"
	"io"
	"log"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// SSEClient represents a connected SSE client
type SSEClient struct {
	ChartID string
	Channel chan ChartEvent
}

// ChartEvent announces new content on a display target
type ChartEvent struct {
	ChartID   string    `json:"chart_id"`
	EventType string    `json:"event_type"`
	Revision  int       `json:"revision"`
	MediaType string    `json:"media_type"`
	Body      string    `json:"body,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// SSEHub fans chart updates out to the browsers watching a display target
type SSEHub struct {
	clients    map[string]map[chan ChartEvent]bool
	clientsMu  sync.RWMutex
	register   chan SSEClient
	unregister chan SSEClient
	broadcast  chan ChartEvent
	quit       chan struct{}
	closeOnce  sync.Once
}

// NewSSEHub creates a new SSE hub and starts its loop
func NewSSEHub() *SSEHub {
	hub := &SSEHub{
		clients:    make(map[string]map[chan ChartEvent]bool),
		register:   make(chan SSEClient, 10),
		unregister: make(chan SSEClient, 10),
		broadcast:  make(chan ChartEvent, 100),
		quit:       make(chan struct{}),
	}

	go hub.run()
	return hub
}

func (h *SSEHub) run() {
	for {
		select {
		case client := <-h.register:
			h.clientsMu.Lock()
			if h.clients[client.ChartID] == nil {
				h.clients[client.ChartID] = make(map[chan ChartEvent]bool)
			}
			h.clients[client.ChartID][client.Channel] = true
			log.Printf("[SSE] Client registered for chart %s (total clients: %d)",
				client.ChartID, len(h.clients[client.ChartID]))
			h.clientsMu.Unlock()

		case client := <-h.unregister:
			h.clientsMu.Lock()
			if clients, exists := h.clients[client.ChartID]; exists {
				delete(clients, client.Channel)
				close(client.Channel)
				log.Printf("[SSE] Client unregistered from chart %s (remaining clients: %d)",
					client.ChartID, len(clients))
				if len(clients) == 0 {
					delete(h.clients, client.ChartID)
				}
			}
			h.clientsMu.Unlock()

		case event := <-h.broadcast:
			h.clientsMu.RLock()
			for clientChan := range h.clients[event.ChartID] {
				if dropped := sendLatest(clientChan, event); dropped > 0 {
					log.Printf("[SSE] Client channel full for chart %s, dropped %d older events for revision %d",
						event.ChartID, dropped, event.Revision)
				}
			}
			h.clientsMu.RUnlock()

		case <-h.quit:
			return
		}
	}
}

// Broadcast sends an event to all clients watching its chart
func (h *SSEHub) Broadcast(event ChartEvent) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	if dropped := sendLatest(h.broadcast, event); dropped > 0 {
		log.Printf("[SSE] Broadcast channel full, dropped %d older events for revision %d of %s",
			dropped, event.Revision, event.ChartID)
	}
}

// sendLatest queues event on ch without blocking. When ch is full the oldest
// queued events are discarded to make room, so the newest revision always
// gets through. It returns how many events were discarded.
func sendLatest(ch chan ChartEvent, event ChartEvent) int {
	dropped := 0
	for {
		select {
		case ch <- event:
			return dropped
		default:
		}
		select {
		case <-ch:
			dropped++
		default:
		}
	}
}

// Close stops the hub loop
func (h *SSEHub) Close() {
	h.closeOnce.Do(func() { close(h.quit) })
}

// Subscribe registers a client channel for chartID. The returned function
// unregisters it.
func (h *SSEHub) Subscribe(chartID string) (<-chan ChartEvent, func()) {
	ch := make(chan ChartEvent, 10)
	h.register <- SSEClient{ChartID: chartID, Channel: ch}
	return ch, func() {
		h.unregister <- SSEClient{ChartID: chartID, Channel: ch}
	}
}

// HandleSSE streams events for the chart named by the chart_id query parameter
func (h *SSEHub) HandleSSE(c *gin.Context) {
	chartID := c.Query("chart_id")
	if chartID == "" {
		c.JSON(400, gin.H{"error": "chart_id parameter required"})
		return
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")

	events, unsubscribe := h.Subscribe(chartID)
	defer unsubscribe()

	ctx := c.Request.Context()
	c.Stream(func(w io.Writer) bool {
		select {
		case event, ok := <-events:
			if !ok {
				return false
			}
			eventJSON, err := json.Marshal(event)
			if err != nil {
				log.Printf("[SSE] Failed to marshal event: %v", err)
				return true
			}
			c.SSEvent("chart", string(eventJSON))
			return true

		case <-time.After(30 * time.Second):
			c.SSEvent("ping", `{"status": "alive", "timestamp": "`+time.Now().Format(time.RFC3339)+`"}`)
			return true

		case <-ctx.Done():
			return false
		}
	})
}

// GetClientCount returns the number of active clients for a chart
func (h *SSEHub) GetClientCount(chartID string) int {
	h.clientsMu.RLock()
	defer h.clientsMu.RUnlock()
	return len(h.clients[chartID])
}
