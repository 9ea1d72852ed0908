package hub

import (
	"encoding/json"
	"log/slog"
	"sync"
	"sync/atomic"
)

// Hub maintains the set of connected viewers and fans pose frames out to them
type Hub struct {
	name string
	log  *slog.Logger

	// Registered viewers
	viewers map[*Viewer]bool

	// Inbound messages to broadcast
	broadcast chan Message

	// Register/unregister requests from viewers
	register   chan *Viewer
	unregister chan *Viewer

	stop chan struct{}
	once sync.Once

	// Guards viewer count for readers outside Run
	mu sync.RWMutex

	running atomic.Bool
	dropped atomic.Uint64
}

// New creates a new Hub
func New(name string, logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		name:       name,
		log:        logger.With("hub", name),
		viewers:    make(map[*Viewer]bool),
		broadcast:  make(chan Message, 256),
		register:   make(chan *Viewer),
		unregister: make(chan *Viewer),
		stop:       make(chan struct{}),
	}
}

// Run starts the hub's main loop. Blocks until Stop is called.
func (h *Hub) Run() {
	h.running.Store(true)
	defer h.running.Store(false)

	for {
		select {
		case <-h.stop:
			h.mu.Lock()
			for v := range h.viewers {
				close(v.send)
				delete(h.viewers, v)
			}
			h.mu.Unlock()
			return

		case v := <-h.register:
			h.mu.Lock()
			h.viewers[v] = true
			count := len(h.viewers)
			h.mu.Unlock()
			h.log.Info("viewer connected", "viewers", count)

		case v := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.viewers[v]; ok {
				delete(h.viewers, v)
				close(v.send)
			}
			count := len(h.viewers)
			h.mu.Unlock()
			h.log.Info("viewer disconnected", "viewers", count)

		case msg := <-h.broadcast:
			h.mu.Lock()
			for v := range h.viewers {
				select {
				case v.send <- msg:
				default:
					// Viewer can't keep up with the frame rate
					close(v.send)
					delete(h.viewers, v)
					h.dropped.Add(1)
					h.log.Warn("dropped slow viewer")
				}
			}
			h.mu.Unlock()
		}
	}
}

// Stop ends Run and disconnects every viewer.
func (h *Hub) Stop() {
	h.once.Do(func() { close(h.stop) })
}

// Broadcast queues a message for every viewer. Frames are dropped, not
// queued, when the hub is saturated.
func (h *Hub) Broadcast(msg Message) {
	select {
	case h.broadcast <- msg:
	default:
		h.dropped.Add(1)
		h.log.Debug("broadcast channel full, dropping message")
	}
}

// BroadcastJSON encodes and broadcasts a JSON message
func (h *Hub) BroadcastJSON(v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	h.Broadcast(NewJSONMessage(data))
	return nil
}

// ClientCount returns the number of connected viewers
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.viewers)
}

// Dropped returns how many messages or viewers were dropped for backpressure
func (h *Hub) Dropped() uint64 {
	return h.dropped.Load()
}

// IsRunning returns whether the hub loop is active
func (h *Hub) IsRunning() bool {
	return h.running.Load()
}
