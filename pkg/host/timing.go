package host

import (
	"context"
	"fmt"
	"time"
)

// TimingMode selects how the host waits between iterations.
type TimingMode int

const (
	// TimerDefault sleeps on a runtime timer. Wakeups may be late by a scheduler tick.
	TimerDefault TimingMode = iota
	// TimerSystem sleeps to within spinSlack of the deadline, then spins on the
	// monotonic clock for sub-millisecond accuracy.
	TimerSystem
)

// spinSlack is how early a TimerSystem wait stops sleeping and starts spinning.
const spinSlack = 500 * time.Microsecond

func (m TimingMode) String() string {
	switch m {
	case TimerDefault:
		return "default"
	case TimerSystem:
		return "system"
	default:
		return fmt.Sprintf("timing(%d)", int(m))
	}
}

// Config holds the host timing configuration.
type Config struct {
	Timing   TimingMode
	Interval time.Duration // 0 = as fast as samples arrive
}

// DefaultConfig matches a stock scripting host: coarse timer, 1ms loop.
func DefaultConfig() Config {
	return Config{
		Timing:   TimerDefault,
		Interval: time.Millisecond,
	}
}

// Validate checks that the configuration is usable.
func (c Config) Validate() error {
	if c.Timing != TimerDefault && c.Timing != TimerSystem {
		return fmt.Errorf("invalid timing mode %d", int(c.Timing))
	}
	if c.Interval < 0 {
		return fmt.Errorf("interval must be >= 0, got %v", c.Interval)
	}
	return nil
}

// pace blocks until deadline using the given timer mode.
func pace(ctx context.Context, mode TimingMode, deadline time.Time) error {
	wait := time.Until(deadline)
	if wait <= 0 {
		return ctx.Err()
	}

	if mode == TimerSystem {
		wait -= spinSlack
	}
	if wait > 0 {
		t := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
		}
	}

	if mode == TimerSystem {
		for time.Now().Before(deadline) {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
	}
	return nil
}
