package tracker

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/teslashibe/go-headbridge/pkg/mapping"
)

// SimConfig controls the synthetic tracker.
type SimConfig struct {
	Rate        time.Duration // time between samples
	AbsentEvery time.Duration // period of the presence cycle; 0 keeps the subject present
	AbsentFor   time.Duration // absence window at the end of each cycle
}

// DefaultSimConfig returns a 60 Hz stream that loses the subject for
// half a second every ten seconds.
func DefaultSimConfig() SimConfig {
	return SimConfig{
		Rate:        time.Second / 60,
		AbsentEvery: 10 * time.Second,
		AbsentFor:   500 * time.Millisecond,
	}
}

// Validate checks the config.
func (c SimConfig) Validate() error {
	if c.Rate <= 0 {
		return fmt.Errorf("rate must be > 0, got %v", c.Rate)
	}
	if c.AbsentEvery < 0 || c.AbsentFor < 0 {
		return fmt.Errorf("absence window must be >= 0")
	}
	if c.AbsentEvery > 0 && c.AbsentFor >= c.AbsentEvery {
		return fmt.Errorf("absent_for %v must be shorter than absent_every %v", c.AbsentFor, c.AbsentEvery)
	}
	return nil
}

// SimSource generates smoothly varying head positions.
type SimSource struct {
	cfg   SimConfig
	start time.Time
	now   func() time.Time
	next  time.Time
}

// NewSimSource creates a synthetic source starting now.
func NewSimSource(cfg SimConfig) (*SimSource, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	now := time.Now()
	return &SimSource{cfg: cfg, start: now, now: time.Now}, nil
}

// At returns the sample for elapsed time since start.
func (s *SimSource) At(elapsed time.Duration) mapping.Sample {
	t := elapsed.Seconds()
	sample := mapping.Sample{
		X:       0.5 + 0.35*math.Sin(t*0.9),
		Y:       0.5 + 0.25*math.Cos(t*0.6),
		Z:       0.5 + 0.2*math.Sin(t*0.3),
		Present: true,
	}
	if s.cfg.AbsentEvery > 0 && elapsed%s.cfg.AbsentEvery >= s.cfg.AbsentEvery-s.cfg.AbsentFor {
		sample.Present = false
	}
	return sample
}

// Next waits for the next sample slot and returns the sample for it.
func (s *SimSource) Next(ctx context.Context) (mapping.Sample, error) {
	now := s.now()
	if s.next.IsZero() {
		s.next = now
	}
	if wait := s.next.Sub(now); wait > 0 {
		t := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			t.Stop()
			return mapping.Sample{}, ctx.Err()
		case <-t.C:
		}
	} else if err := ctx.Err(); err != nil {
		return mapping.Sample{}, err
	}

	sample := s.At(s.next.Sub(s.start))
	s.next = s.next.Add(s.cfg.Rate)
	return sample, nil
}

// Close is a no-op.
func (s *SimSource) Close() error { return nil }

var _ Source = (*SimSource)(nil)
