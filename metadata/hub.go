package metadata

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// SubscriberBuffer is the number of events queued per subscriber before new
// ones are dropped for it.
const SubscriberBuffer = 16

// Subscriber is one connected relay client.
type Subscriber struct {
	ID       uuid.UUID
	Messages chan []byte
	Joined   time.Time
}

// Hub fans one upstream feed out to many subscribers. A slow subscriber
// loses events rather than stalling the others.
type Hub struct {
	mu          sync.RWMutex
	subscribers map[uuid.UUID]*Subscriber
	last        []byte
	log         zerolog.Logger
}

// NewHub creates an empty hub.
func NewHub(logger zerolog.Logger) *Hub {
	return &Hub{
		subscribers: make(map[uuid.UUID]*Subscriber),
		log:         logger.With().Str("component", "hub").Logger(),
	}
}

// Subscribe registers a new subscriber. The most recent event, if any, is
// queued for it straight away so a fresh page does not wait for the next
// track change.
func (h *Hub) Subscribe() *Subscriber {
	sub := &Subscriber{
		ID:       uuid.New(),
		Messages: make(chan []byte, SubscriberBuffer),
		Joined:   time.Now(),
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.last != nil {
		sub.Messages <- h.last
	}
	h.subscribers[sub.ID] = sub
	h.log.Debug().Str("subscriber", sub.ID.String()).Int("count", len(h.subscribers)).Msg("subscriber joined")
	return sub
}

// Unsubscribe removes a subscriber and closes its channel. Unknown IDs are
// ignored.
func (h *Hub) Unsubscribe(id uuid.UUID) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if sub, ok := h.subscribers[id]; ok {
		close(sub.Messages)
		delete(h.subscribers, id)
		h.log.Debug().Str("subscriber", id.String()).Int("count", len(h.subscribers)).Msg("subscriber left")
	}
}

// Publish queues msg for every subscriber and remembers it as the latest
// event.
func (h *Hub) Publish(msg []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.last = msg
	for id, sub := range h.subscribers {
		select {
		case sub.Messages <- msg:
		default:
			h.log.Warn().Str("subscriber", id.String()).Msg("subscriber buffer full, dropping event")
		}
	}
}

// Last returns the most recent event, or nil.
func (h *Hub) Last() []byte {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.last
}

// Count returns the number of connected subscribers.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers)
}

// Close disconnects every subscriber.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for id, sub := range h.subscribers {
		close(sub.Messages)
		delete(h.subscribers, id)
	}
}
