// file: internal/realtime/events.go
// version: 2.0.0
// guid: 9e8d7f6a-5c4b-3a21-0f9e-8d7c6b5a4392

package realtime

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/oklog/ulid/v2"

	"github.com/jdfalk/library-enricher/internal/models"
)

// EventType defines the type of real-time event
type EventType string

const (
	EventEnrichmentStarted   EventType = "enrichment.started"
	EventEnrichmentProgress  EventType = "enrichment.progress"
	EventEnrichmentCompleted EventType = "enrichment.completed"
	EventConnected           EventType = "connection.established"
	EventHeartbeat           EventType = "heartbeat"
)

// HeartbeatInterval is how often idle SSE connections get a keep-alive.
var HeartbeatInterval = 15 * time.Second

// Event represents a real-time event to send to clients
type Event struct {
	Type      EventType `json:"type"`
	RunID     string    `json:"run_id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data,omitempty"`
}

// ProgressData is the payload of enrichment progress and completion events.
type ProgressData struct {
	models.ProgressEvent
	Percentage int `json:"percentage"`
}

// Client represents a connected SSE client
type Client struct {
	ID      string
	Channel chan *Event
	runs    map[string]bool // runs this client is interested in; empty means all
	mu      sync.RWMutex
}

// NewClient creates a new SSE client
func NewClient(id string) *Client {
	return &Client{
		ID:      id,
		Channel: make(chan *Event, 100),
		runs:    make(map[string]bool),
	}
}

// Subscribe limits the client to events of the given run.
func (c *Client) Subscribe(runID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.runs[runID] = true
}

// Unsubscribe removes a run subscription
func (c *Client) Unsubscribe(runID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.runs, runID)
}

// Wants reports whether an event for runID should reach this client.
func (c *Client) Wants(runID string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return runID == "" || len(c.runs) == 0 || c.runs[runID]
}

// EventHub manages SSE connections and event distribution
type EventHub struct {
	mu      sync.RWMutex
	clients map[string]*Client
}

// NewEventHub creates a new event hub
func NewEventHub() *EventHub {
	return &EventHub{
		clients: make(map[string]*Client),
	}
}

// RegisterClient registers a new client
func (h *EventHub) RegisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[client.ID] = client
	log.Printf("[DEBUG] SSE client %s registered, total clients: %d", client.ID, len(h.clients))
}

// UnregisterClient removes a client
func (h *EventHub) UnregisterClient(clientID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if client, exists := h.clients[clientID]; exists {
		close(client.Channel)
		delete(h.clients, clientID)
		log.Printf("[DEBUG] SSE client %s unregistered, remaining clients: %d", clientID, len(h.clients))
	}
}

// Broadcast delivers event to every interested client. Slow clients whose
// buffer is full miss the event.
func (h *EventHub) Broadcast(event *Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, client := range h.clients {
		if !client.Wants(event.RunID) {
			continue
		}
		select {
		case client.Channel <- event:
		default:
			log.Printf("[WARN] SSE client %s channel full, dropping %s event", client.ID, event.Type)
		}
	}
}

// SendEnrichmentStarted announces a new run.
func (h *EventHub) SendEnrichmentStarted(runID string, total int) {
	h.Broadcast(&Event{
		Type:      EventEnrichmentStarted,
		RunID:     runID,
		Timestamp: time.Now(),
		Data:      ProgressData{ProgressEvent: models.ProgressEvent{Total: total}},
	})
}

// SendEnrichmentProgress forwards a pipeline progress event. The final
// event of a run is sent as enrichment.completed.
func (h *EventHub) SendEnrichmentProgress(runID string, ev models.ProgressEvent) {
	typ := EventEnrichmentProgress
	if ev.Done {
		typ = EventEnrichmentCompleted
	}
	h.Broadcast(&Event{
		Type:      typ,
		RunID:     runID,
		Timestamp: time.Now(),
		Data: ProgressData{
			ProgressEvent: ev,
			Percentage:    calculatePercentage(ev.Completed, ev.Total),
		},
	})
}

// GetClientCount returns the number of connected clients
func (h *EventHub) GetClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// HandleSSE handles Server-Sent Events connection
func (h *EventHub) HandleSSE(c *gin.Context) {
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache, no-transform")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	client := NewClient(ulid.Make().String())
	if runID := c.Query("run"); runID != "" {
		client.Subscribe(runID)
	}

	h.RegisterClient(client)
	defer h.UnregisterClient(client.ID)

	if err := writeEvent(c.Writer, &Event{
		Type:      EventConnected,
		Timestamp: time.Now(),
		Data:      map[string]string{"client_id": client.ID},
	}); err != nil {
		return
	}
	c.Writer.Flush()

	ticker := time.NewTicker(HeartbeatInterval)
	defer ticker.Stop()

	for {
		var event *Event
		select {
		case <-c.Request.Context().Done():
			return
		case event = <-client.Channel:
		case <-ticker.C:
			event = &Event{Type: EventHeartbeat, Timestamp: time.Now()}
		}
		if err := writeEvent(c.Writer, event); err != nil {
			log.Printf("[WARN] SSE write to client %s failed: %v", client.ID, err)
			return
		}
		c.Writer.Flush()
	}
}

// writeEvent writes one SSE frame: data: {json}\n\n
func writeEvent(w io.Writer, event *Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	_, err = fmt.Fprintf(w, "data: %s\n\n", data)
	return err
}

// calculatePercentage calculates percentage with bounds checking
func calculatePercentage(current, total int) int {
	if total <= 0 {
		return 0
	}
	percentage := (current * 100) / total
	if percentage > 100 {
		return 100
	}
	return percentage
}
