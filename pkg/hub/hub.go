// Package hub fans diagnostics out to websocket subscribers.
//
// A single Run goroutine owns the subscriber set. Publishers never block:
// a full broadcast queue drops the message and a slow subscriber is dropped.
package hub

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/teslashibe/go-headbridge/internal/log"
)

// Hub maintains the set of active subscribers and broadcasts messages to them.
type Hub struct {
	name string
	log  *slog.Logger

	subs       map[*Client]struct{}
	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	stopOnce   sync.Once

	mu      sync.RWMutex
	count   int
	dropped atomic.Uint64
	running atomic.Bool
}

// New creates a hub. name tags its log lines.
func New(name string) *Hub {
	return &Hub{
		name:       name,
		log:        log.Component("hub").With("hub", name),
		subs:       make(map[*Client]struct{}),
		broadcast:  make(chan []byte, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
}

// Run serves the hub until ctx is done, then disconnects every subscriber.
// A hub cannot be restarted.
func (h *Hub) Run(ctx context.Context) {
	h.running.Store(true)
	defer func() {
		h.running.Store(false)
		h.stopOnce.Do(func() { close(h.done) })
	}()

	for {
		select {
		case <-ctx.Done():
			for c := range h.subs {
				h.remove(c)
			}
			return

		case c := <-h.register:
			h.subs[c] = struct{}{}
			h.setCount()
			h.log.Debug("subscriber connected", "total", len(h.subs))

		case c := <-h.unregister:
			if _, ok := h.subs[c]; ok {
				h.remove(c)
				h.log.Debug("subscriber disconnected", "remaining", len(h.subs))
			}

		case msg := <-h.broadcast:
			for c := range h.subs {
				select {
				case c.send <- msg:
				default:
					h.remove(c)
					h.log.Warn("dropped slow subscriber")
				}
			}
		}
	}
}

func (h *Hub) remove(c *Client) {
	delete(h.subs, c)
	close(c.send)
	h.setCount()
}

func (h *Hub) setCount() {
	h.mu.Lock()
	h.count = len(h.subs)
	h.mu.Unlock()
}

// Broadcast queues data for every subscriber. It never blocks.
func (h *Hub) Broadcast(data []byte) {
	select {
	case h.broadcast <- data:
	default:
		h.dropped.Add(1)
	}
}

// BroadcastJSON encodes v and broadcasts it.
func (h *Hub) BroadcastJSON(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	h.Broadcast(data)
	return nil
}

// Subscribers returns the number of connected subscribers.
func (h *Hub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.count
}

// Dropped returns how many broadcasts were discarded because the queue was full.
func (h *Hub) Dropped() uint64 {
	return h.dropped.Load()
}

// Running reports whether Run is active.
func (h *Hub) Running() bool {
	return h.running.Load()
}
