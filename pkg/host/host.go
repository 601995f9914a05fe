// Package host provides the runtime that drives a tracker bridge script.
//
// A Host owns the timing model and the execution interval, runs starting hooks
// once, then pulls samples from a Source and dispatches each one synchronously
// to the registered update handlers. Handlers never run concurrently.
package host

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/teslashibe/go-headbridge/internal/log"
	"github.com/teslashibe/go-headbridge/pkg/mapping"
)

// ErrNoSource is returned by Run when no sample source is supplied.
var ErrNoSource = errors.New("host: no sample source")

// Source yields tracker samples. Next blocks until a sample is available,
// the source fails, or ctx is done.
type Source interface {
	Next(ctx context.Context) (mapping.Sample, error)
}

// Handler is invoked for every tracker update.
type Handler func(mapping.Sample) error

// Host is the script runtime.
type Host struct {
	mu       sync.RWMutex
	timing   TimingMode
	interval time.Duration
	starting []func(*Host)
	handlers []Handler

	session uuid.UUID
	log     *slog.Logger

	started    bool
	dispatched uint64
	failures   uint64
}

// New creates a host with the given configuration.
func New(cfg Config) (*Host, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("host config: %w", err)
	}
	id := uuid.New()
	return &Host{
		timing:   cfg.Timing,
		interval: cfg.Interval,
		session:  id,
		log:      log.Component("host").With("session", id.String()),
	}, nil
}

// Session identifies this host run.
func (h *Host) Session() uuid.UUID {
	return h.session
}

// SetTiming selects the timer used for interval pacing.
func (h *Host) SetTiming(m TimingMode) {
	h.mu.Lock()
	h.timing = m
	h.mu.Unlock()
}

// Timing returns the active timing mode.
func (h *Host) Timing() TimingMode {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.timing
}

// SetInterval sets the minimum period between iterations. 0 runs unthrottled.
func (h *Host) SetInterval(d time.Duration) {
	if d < 0 {
		d = 0
	}
	h.mu.Lock()
	h.interval = d
	h.mu.Unlock()
}

// Interval returns the execution interval.
func (h *Host) Interval() time.Duration {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.interval
}

// OnStarting registers a hook run once when Run begins.
func (h *Host) OnStarting(fn func(*Host)) {
	h.mu.Lock()
	h.starting = append(h.starting, fn)
	h.mu.Unlock()
}

// OnUpdate registers a handler for tracker updates.
func (h *Host) OnUpdate(fn Handler) {
	h.mu.Lock()
	h.handlers = append(h.handlers, fn)
	h.mu.Unlock()
}

// Handlers returns the number of registered update handlers.
func (h *Host) Handlers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.handlers)
}

// Stats returns dispatch counters.
func (h *Host) Stats() Stats {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return Stats{
		Session:    h.session.String(),
		Timing:     h.timing.String(),
		Interval:   h.interval,
		Handlers:   len(h.handlers),
		Dispatched: h.dispatched,
		Failures:   h.failures,
	}
}

// Stats is a point-in-time view of the host.
type Stats struct {
	Session    string        `json:"session"`
	Timing     string        `json:"timing"`
	Interval   time.Duration `json:"interval_ns"`
	Handlers   int           `json:"handlers"`
	Dispatched uint64        `json:"dispatched"`
	Failures   uint64        `json:"failures"`
}

// Run starts the host loop and blocks until ctx is done or src fails.
// Context cancellation is not an error.
func (h *Host) Run(ctx context.Context, src Source) error {
	if src == nil {
		return ErrNoSource
	}

	h.runStarting()

	h.log.Info("host running",
		"timing", h.Timing().String(),
		"interval", h.Interval(),
		"handlers", h.Handlers())

	var next time.Time
	for {
		if err := ctx.Err(); err != nil {
			return nil
		}

		if interval := h.Interval(); interval > 0 {
			now := time.Now()
			if next.IsZero() || next.Before(now) {
				next = now
			}
			if err := pace(ctx, h.Timing(), next); err != nil {
				return nil
			}
			next = next.Add(interval)
		}

		sample, err := src.Next(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("read tracker sample: %w", err)
		}

		h.Dispatch(sample)
	}
}

// Dispatch delivers one sample to every update handler in registration order.
func (h *Host) Dispatch(s mapping.Sample) {
	h.mu.RLock()
	handlers := h.handlers
	h.mu.RUnlock()

	var failed uint64
	for _, fn := range handlers {
		if err := fn(s); err != nil {
			failed++
			h.log.Warn("update handler failed", "error", err)
		}
	}

	h.mu.Lock()
	h.dispatched++
	h.failures += failed
	h.mu.Unlock()
}

func (h *Host) runStarting() {
	h.mu.Lock()
	if h.started {
		h.mu.Unlock()
		return
	}
	h.started = true
	hooks := slices.Clone(h.starting)
	h.mu.Unlock()

	for _, fn := range hooks {
		fn(h)
	}
}
