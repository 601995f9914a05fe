//go:build !linux

package vio

import "github.com/teslashibe/go-headbridge/pkg/mapping"

// Joystick is only available on Linux.
type Joystick struct{}

// NewJoystick reports ErrUnsupported outside Linux.
func NewJoystick(cfg JoystickConfig) (*Joystick, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return nil, ErrUnsupported
}

// Write reports ErrUnsupported.
func (j *Joystick) Write(mapping.Output) error { return ErrUnsupported }

// Close is a no-op.
func (j *Joystick) Close() error { return nil }

var _ Device = (*Joystick)(nil)
