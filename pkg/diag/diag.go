// Package diag provides diagnostics sinks for live inspection of labeled values.
package diag

import (
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/teslashibe/go-headbridge/pkg/mapping"
)

// Entry is one watched value.
type Entry struct {
	Label   string    `json:"label"`
	Value   float64   `json:"value"`
	Updated time.Time `json:"updated"`
}

// Board keeps the latest value per label.
type Board struct {
	mu      sync.RWMutex
	entries map[string]Entry
	now     func() time.Time

	// OnWatch, when set, is called after every update. It must not block.
	OnWatch func(Entry)
}

// NewBoard creates an empty board.
func NewBoard() *Board {
	return &Board{
		entries: make(map[string]Entry),
		now:     time.Now,
	}
}

// Watch records value under label.
func (b *Board) Watch(label string, value float64) {
	e := Entry{Label: label, Value: value, Updated: b.now()}

	b.mu.Lock()
	b.entries[label] = e
	cb := b.OnWatch
	b.mu.Unlock()

	if cb != nil {
		cb(e)
	}
}

// Snapshot returns a copy of the current entries keyed by label.
func (b *Board) Snapshot() map[string]Entry {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make(map[string]Entry, len(b.entries))
	for k, v := range b.entries {
		out[k] = v
	}
	return out
}

// List returns the current entries sorted by label.
func (b *Board) List() []Entry {
	snap := b.Snapshot()
	out := make([]Entry, 0, len(snap))
	for _, e := range snap {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Label < out[j].Label })
	return out
}

// LogWatcher writes every value as a debug log line.
type LogWatcher struct {
	log *slog.Logger
}

// NewLogWatcher creates a watcher logging to l.
func NewLogWatcher(l *slog.Logger) *LogWatcher {
	return &LogWatcher{log: l}
}

// Watch logs value at debug level.
func (w *LogWatcher) Watch(label string, value float64) {
	w.log.Debug("watch", "label", label, "value", value)
}

// Multi fans a value out to several watchers.
type Multi []mapping.Watcher

// Watch forwards to every non-nil watcher.
func (m Multi) Watch(label string, value float64) {
	for _, w := range m {
		if w != nil {
			w.Watch(label, value)
		}
	}
}

var (
	_ mapping.Watcher = (*Board)(nil)
	_ mapping.Watcher = (*LogWatcher)(nil)
	_ mapping.Watcher = Multi(nil)
)
