package websocket

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Event is a message pushed to every subscriber of a topic
type Event struct {
	// Type of event, e.g. "face", "marked", "closed"
	Type string `json:"type"`

	// Topic the event belongs to (a scan session id)
	Topic string `json:"topic"`

	Payload   interface{} `json:"payload,omitempty"`
	Timestamp time.Time   `json:"timestamp"`

	// closing marks a topic shutdown queued behind the topic's events
	closing bool
}

// Hub fans events out to the websocket clients subscribed to a topic.
// All client bookkeeping happens on the Run goroutine.
type Hub struct {
	clients map[string]map[*Client]bool

	broadcast  chan *Event
	register   chan *Client
	unregister chan *Client

	// counts is read by ClientCount from other goroutines
	mu     sync.RWMutex
	counts map[string]int

	done   chan struct{}
	logger zerolog.Logger
}

// NewHub creates a new Hub instance
func NewHub(logger zerolog.Logger) *Hub {
	return &Hub{
		clients:    make(map[string]map[*Client]bool),
		broadcast:  make(chan *Event, 64),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		counts:     make(map[string]int),
		done:       make(chan struct{}),
		logger:     logger,
	}
}

// Run processes registrations and broadcasts until ctx is cancelled
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			for topic := range h.clients {
				h.dropTopic(topic)
			}
			h.logger.Info().Msg("Websocket hub stopped")
			return

		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.removeClient(client)

		case event := <-h.broadcast:
			if event.closing {
				h.dropTopic(event.Topic)
				continue
			}
			h.broadcastEvent(event)
		}
	}
}

func (h *Hub) registerClient(client *Client) {
	if _, ok := h.clients[client.topic]; !ok {
		h.clients[client.topic] = make(map[*Client]bool)
	}
	h.clients[client.topic][client] = true
	h.setCount(client.topic)

	h.logger.Info().
		Str("topic", client.topic).
		Int64("operatorID", client.operatorID).
		Msg("Client registered")
}

func (h *Hub) removeClient(client *Client) {
	clients, ok := h.clients[client.topic]
	if !ok {
		return
	}
	if _, ok := clients[client]; !ok {
		return
	}

	delete(clients, client)
	close(client.send)
	if len(clients) == 0 {
		delete(h.clients, client.topic)
	}
	h.setCount(client.topic)

	h.logger.Info().
		Str("topic", client.topic).
		Int64("operatorID", client.operatorID).
		Msg("Client unregistered")
}

func (h *Hub) dropTopic(topic string) {
	for client := range h.clients[topic] {
		close(client.send)
	}
	delete(h.clients, topic)
	h.setCount(topic)
}

func (h *Hub) broadcastEvent(event *Event) {
	clients, ok := h.clients[event.Topic]
	if !ok {
		return
	}

	data, err := json.Marshal(event)
	if err != nil {
		h.logger.Error().Err(err).Str("topic", event.Topic).Msg("Failed to marshal event for broadcast")
		return
	}

	for client := range clients {
		select {
		case client.send <- data:
		default:
			// Slow consumer; drop it rather than block the hub.
			h.removeClient(client)
		}
	}
}

func (h *Hub) setCount(topic string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if n := len(h.clients[topic]); n > 0 {
		h.counts[topic] = n
	} else {
		delete(h.counts, topic)
	}
}

// Publish queues an event for the topic's subscribers. It never blocks once
// the hub has stopped.
func (h *Hub) Publish(topic, eventType string, payload interface{}) {
	event := &Event{
		Type:      eventType,
		Topic:     topic,
		Payload:   payload,
		Timestamp: time.Now(),
	}
	select {
	case h.broadcast <- event:
	case <-h.done:
	}
}

// CloseTopic disconnects every subscriber of topic once the events already
// published to it have been delivered.
func (h *Hub) CloseTopic(topic string) {
	select {
	case h.broadcast <- &Event{Topic: topic, closing: true}:
	case <-h.done:
	}
}

// ClientCount returns the number of subscribers of a topic
func (h *Hub) ClientCount(topic string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.counts[topic]
}
