// Package vio provides virtual IO output devices for mapped tracker axes.
//
// Every device implements mapping.Channels. Memory keeps the last value for
// inspection, Joystick drives a Linux uinput device, OSC forwards the axes to a
// rendering integration over UDP and Multi fans out to several devices.
package vio

import (
	"errors"
	"sync"

	"github.com/teslashibe/go-headbridge/pkg/mapping"
)

var (
	// ErrUnsupported is returned when a device cannot exist on this platform.
	ErrUnsupported = errors.New("vio: device not supported on this platform")
	// ErrClosed is returned by Write after Close.
	ErrClosed = errors.New("vio: device closed")
)

// Device is an output that holds OS resources.
type Device interface {
	mapping.Channels
	Close() error
}

// Memory is an in-process output device.
type Memory struct {
	mu     sync.RWMutex
	last   mapping.Output
	writes int
}

// NewMemory creates an empty memory device.
func NewMemory() *Memory {
	return &Memory{}
}

// Write stores o.
func (m *Memory) Write(o mapping.Output) error {
	m.mu.Lock()
	m.last = o
	m.writes++
	m.mu.Unlock()
	return nil
}

// Last returns the most recent output.
func (m *Memory) Last() mapping.Output {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.last
}

// Writes returns how many outputs were written.
func (m *Memory) Writes() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.writes
}

// Close is a no-op.
func (m *Memory) Close() error { return nil }

// Multi writes to every device and joins their errors.
type Multi []mapping.Channels

// Write forwards o to every device, continuing past failures.
func (m Multi) Write(o mapping.Output) error {
	var errs []error
	for _, c := range m {
		if c == nil {
			continue
		}
		if err := c.Write(o); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Close closes every device that holds resources.
func (m Multi) Close() error {
	var errs []error
	for _, c := range m {
		if d, ok := c.(interface{ Close() error }); ok {
			if err := d.Close(); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

var (
	_ Device = (*Memory)(nil)
	_ Device = Multi(nil)
)
