package observer

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/pthm-cable/survival/game"
)

// Hub fans encoded frames out to subscribers. A subscriber that falls behind
// misses frames instead of stalling the simulation.
type Hub struct {
	mu      sync.Mutex
	subs    map[uint64]chan []byte
	nextID  uint64
	last    []byte
	buffer  int
	dropped uint64
}

// NewHub creates a hub with a per-subscriber queue of buffer frames.
func NewHub(buffer int) *Hub {
	if buffer < 1 {
		buffer = 1
	}
	return &Hub{subs: make(map[uint64]chan []byte), buffer: buffer}
}

// Publish encodes f and offers it to every subscriber.
func (h *Hub) Publish(f Frame) error {
	b, err := json.Marshal(f)
	if err != nil {
		return fmt.Errorf("encode frame: %w", err)
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	h.last = b
	for _, ch := range h.subs {
		select {
		case ch <- b:
		default:
			h.dropped++
		}
	}
	return nil
}

// Last returns the most recently published frame, or nil.
func (h *Hub) Last() []byte {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.last
}

// Dropped returns how many frame deliveries were skipped for slow subscribers.
func (h *Hub) Dropped() uint64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.dropped
}

// Subscribers returns the number of connected subscribers.
func (h *Hub) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

// subscribe registers a queue primed with the last frame.
func (h *Hub) subscribe() (uint64, <-chan []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.nextID++
	ch := make(chan []byte, h.buffer)
	if h.last != nil {
		ch <- h.last
	}
	h.subs[h.nextID] = ch
	return h.nextID, ch
}

func (h *Hub) unsubscribe(id uint64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.subs, id)
}

// OnTick returns a run loop hook that publishes a frame every n calls.
func (h *Hub) OnTick(every int) func(*game.Game) {
	if every < 1 {
		every = 1
	}
	calls := 0
	return func(g *game.Game) {
		calls++
		if calls%every != 0 {
			return
		}
		if err := h.Publish(NewFrame(g)); err != nil {
			slog.Error("failed to publish frame", "error", err)
		}
	}
}
