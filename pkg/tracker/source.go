// Package tracker provides tracker sample sources for the host runtime.
//
// Sources deliver normalized head position samples with a presence flag.
// WSSource reads a tracker daemon's websocket stream, OSCSource receives OSC
// packets, SimSource synthesizes motion and ChanSource adapts a Go channel.
package tracker

import (
	"context"
	"io"

	"github.com/teslashibe/go-headbridge/pkg/host"
	"github.com/teslashibe/go-headbridge/pkg/mapping"
)

// queueSize bounds samples buffered between a receiver goroutine and Next.
const queueSize = 64

// Source yields tracker samples.
type Source interface {
	host.Source
	Close() error
}

// ChanSource reads samples from a channel. A closed channel reports io.EOF.
type ChanSource struct {
	ch <-chan mapping.Sample
}

// NewChanSource wraps ch.
func NewChanSource(ch <-chan mapping.Sample) *ChanSource {
	return &ChanSource{ch: ch}
}

// Next returns the next sample from the channel.
func (c *ChanSource) Next(ctx context.Context) (mapping.Sample, error) {
	select {
	case <-ctx.Done():
		return mapping.Sample{}, ctx.Err()
	case s, ok := <-c.ch:
		if !ok {
			return mapping.Sample{}, io.EOF
		}
		return s, nil
	}
}

// Close is a no-op; the channel belongs to the sender.
func (c *ChanSource) Close() error { return nil }

var _ Source = (*ChanSource)(nil)

// offer queues s, discarding the oldest queued sample when ch is full.
// It reports whether a sample was dropped. Only one goroutine may send on ch.
func offer(ch chan mapping.Sample, s mapping.Sample) (dropped bool) {
	for {
		select {
		case ch <- s:
			return dropped
		default:
		}
		select {
		case <-ch:
			dropped = true
		default:
		}
	}
}
