package app

import (
	"errors"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/ayusman/mudra/internal/control"
)

// DefaultSubscriberBuffer is the channel size given to new subscribers.
const DefaultSubscriberBuffer = 32

// ErrHubClosed is returned by Subscribe after Close.
var ErrHubClosed = errors.New("event hub is closed")

// Hub fans frame results out to subscribers. Publish never blocks: a
// subscriber whose channel is full misses the result.
type Hub struct {
	mu     sync.RWMutex
	subs   map[string]chan control.Result
	closed bool

	published atomic.Uint64
	dropped   atomic.Uint64
}

// HubStats counts published and dropped results.
type HubStats struct {
	Published   uint64 `json:"published"`
	Dropped     uint64 `json:"dropped"`
	Subscribers int    `json:"subscribers"`
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{subs: make(map[string]chan control.Result)}
}

// Subscribe registers a new subscriber and returns its id and channel.
// buffer <= 0 uses DefaultSubscriberBuffer.
func (h *Hub) Subscribe(buffer int) (string, <-chan control.Result, error) {
	if buffer <= 0 {
		buffer = DefaultSubscriberBuffer
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return "", nil, ErrHubClosed
	}

	id := uuid.New().String()
	ch := make(chan control.Result, buffer)
	h.subs[id] = ch
	return id, ch, nil
}

// Unsubscribe removes a subscriber and closes its channel.
func (h *Hub) Unsubscribe(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if ch, ok := h.subs[id]; ok {
		delete(h.subs, id)
		close(ch)
	}
}

// Publish delivers res to every subscriber with room for it.
func (h *Hub) Publish(res control.Result) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.closed {
		return
	}

	h.published.Add(1)
	for _, ch := range h.subs {
		select {
		case ch <- res:
		default:
			h.dropped.Add(1)
		}
	}
}

// Stats returns a snapshot of the hub counters.
func (h *Hub) Stats() HubStats {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return HubStats{
		Published:   h.published.Load(),
		Dropped:     h.dropped.Load(),
		Subscribers: len(h.subs),
	}
}

// Close closes every subscriber channel. Later publishes are ignored.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for id, ch := range h.subs {
		delete(h.subs, id)
		close(ch)
	}
}
