package services

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/Huey-Lewy/Cloud-Vitals/internal/models"
	"github.com/Huey-Lewy/Cloud-Vitals/internal/telemetry"
)

// Message is the envelope for every websocket frame.
type Message struct {
	Type      string          `json:"type"` // "sample", "event", "ping"
	Timestamp time.Time       `json:"timestamp"`
	Data      json.RawMessage `json:"data,omitempty"`
	Error     string          `json:"error,omitempty"`
}

// AgentSamplePayload wraps a sample with the agent it came from, for
// dashboard subscribers watching several agents at once.
type AgentSamplePayload struct {
	Agent  string        `json:"agent"`
	Sample models.Sample `json:"sample"`
}

// Client is one connected websocket consumer.
type Client struct {
	ID   string
	Send chan Message
}

// Hub fans live updates out to websocket clients. There is no collection
// ticker; frames go out as samples and alert events arrive. Sends never
// block: a client that cannot keep up skips frames instead of stalling
// everyone else.
type Hub struct {
	mu         sync.RWMutex
	clients    map[string]*Client
	broadcast  chan Message
	register   chan *Client
	unregister chan string
	done       chan struct{}
	stop       sync.Once
}

// NewHub creates a hub and starts its event loop.
func NewHub() *Hub {
	h := &Hub{
		clients:    make(map[string]*Client),
		broadcast:  make(chan Message, 256),
		register:   make(chan *Client),
		unregister: make(chan string),
		done:       make(chan struct{}),
	}
	go h.run()
	return h
}

func (h *Hub) run() {
	for {
		select {
		case <-h.done:
			h.mu.Lock()
			for id, client := range h.clients {
				close(client.Send)
				delete(h.clients, id)
			}
			h.mu.Unlock()
			telemetry.WebsocketClients.Set(0)
			log.Println("[WS] hub stopped")
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.ID] = client
			total := len(h.clients)
			h.mu.Unlock()
			telemetry.WebsocketClients.Set(float64(total))
			log.Printf("[WS] client connected: %s (total: %d)", client.ID, total)

		case clientID := <-h.unregister:
			h.mu.Lock()
			total := len(h.clients)
			if client, exists := h.clients[clientID]; exists {
				delete(h.clients, clientID)
				close(client.Send)
				total--
			}
			h.mu.Unlock()
			telemetry.WebsocketClients.Set(float64(total))
			log.Printf("[WS] client disconnected: %s (total: %d)", clientID, total)

		case msg := <-h.broadcast:
			h.mu.RLock()
			for _, client := range h.clients {
				select {
				case client.Send <- msg:
				default:
					// Client's send channel is full, skip this frame
				}
			}
			h.mu.RUnlock()
		}
	}
}

// Register adds a client. Safe to call after Stop; it becomes a no-op.
func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.done:
	}
}

// Unregister removes a client and closes its send channel.
func (h *Hub) Unregister(clientID string) {
	select {
	case h.unregister <- clientID:
	case <-h.done:
	}
}

// BroadcastSample pushes a fresh local sample to all clients.
func (h *Hub) BroadcastSample(sample models.Sample) {
	h.offer("sample", sample)
}

// BroadcastAgentSample pushes a sample fetched from a remote agent.
func (h *Hub) BroadcastAgentSample(agent string, sample models.Sample) {
	h.offer("sample", AgentSamplePayload{Agent: agent, Sample: sample})
}

// BroadcastEvent pushes an alert transition to all clients.
func (h *Hub) BroadcastEvent(event models.AlertEvent) {
	h.offer("event", event)
}

func (h *Hub) offer(msgType string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		log.Printf("[WS] Warning: could not marshal %s payload: %v", msgType, err)
		return
	}

	msg := Message{
		Type:      msgType,
		Timestamp: time.Now(),
		Data:      data,
	}

	select {
	case h.broadcast <- msg:
	default:
		// Broadcast queue full, skip this frame
	}
}

// ClientCount returns how many clients are connected.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Stop shuts the event loop down and disconnects every client.
func (h *Hub) Stop() {
	h.stop.Do(func() { close(h.done) })
}
