// Package bridge is the tracker-to-virtual-joystick script.
//
// On host start it switches the host to the system timer, runs unthrottled and
// registers Update for tracker events. Update maps each sample onto the output
// device and mirrors the axes to the diagnostics watcher.
package bridge

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/teslashibe/go-headbridge/pkg/host"
	"github.com/teslashibe/go-headbridge/pkg/mapping"
)

// Host is the part of the runtime the script configures on start.
type Host interface {
	SetTiming(host.TimingMode)
	SetInterval(time.Duration)
	OnUpdate(host.Handler)
}

var _ Host = (*host.Host)(nil)

// Script binds the mapping to an output device and a watcher.
type Script struct {
	out     mapping.Channels
	watcher mapping.Watcher

	once       sync.Once
	registered atomic.Bool

	updates atomic.Uint64
	present atomic.Uint64
	last    atomic.Pointer[mapping.Output]
}

// New creates a script writing to out and reporting to w. Either may be nil.
func New(out mapping.Channels, w mapping.Watcher) *Script {
	return &Script{out: out, watcher: w}
}

// Starting wires the script into h. Calling it again has no effect.
func (s *Script) Starting(h Host) {
	s.once.Do(func() {
		h.SetTiming(host.TimerSystem)
		h.SetInterval(0)
		h.OnUpdate(s.Update)
		s.registered.Store(true)
	})
}

// Registered reports whether Starting has wired the update handler.
func (s *Script) Registered() bool {
	return s.registered.Load()
}

// Update handles one tracker sample.
func (s *Script) Update(sample mapping.Sample) error {
	s.updates.Add(1)
	if sample.Present {
		s.present.Add(1)
	}

	o, err := mapping.Apply(sample, s.out, s.watcher)
	s.last.Store(&o)
	return err
}

// Stats is a snapshot of script activity.
type Stats struct {
	Registered bool           `json:"registered"`
	Updates    uint64         `json:"updates"`
	Present    uint64         `json:"present"`
	Last       mapping.Output `json:"last"`
}

// Stats returns counters and the last output written.
func (s *Script) Stats() Stats {
	st := Stats{
		Registered: s.Registered(),
		Updates:    s.updates.Load(),
		Present:    s.present.Load(),
	}
	if o := s.last.Load(); o != nil {
		st.Last = *o
	}
	return st
}
