package vio

import (
	"fmt"
	"math"

	"github.com/teslashibe/go-headbridge/pkg/mapping"
)

// AxisScale converts axis units into integer joystick counts.
const AxisScale = 1000

// JoystickConfig describes the virtual joystick.
type JoystickConfig struct {
	Path    string // uinput node
	Name    string // device name, at most 79 bytes
	Vendor  uint16
	Product uint16
}

// DefaultJoystickConfig returns the stock virtual joystick identity.
func DefaultJoystickConfig() JoystickConfig {
	return JoystickConfig{
		Path:    "/dev/uinput",
		Name:    "headbridge virtual joystick",
		Vendor:  0x1209, // pid.codes open vendor
		Product: 0x4854,
	}
}

// Validate checks the config.
func (c JoystickConfig) Validate() error {
	if c.Path == "" {
		return fmt.Errorf("joystick path is required")
	}
	if c.Name == "" || len(c.Name) >= uinputMaxNameSize {
		return fmt.Errorf("joystick name must be 1-%d bytes", uinputMaxNameSize-1)
	}
	return nil
}

const uinputMaxNameSize = 80

// axisRange is an integer joystick axis range.
type axisRange struct {
	min, max int32
}

// Axis ranges. X and Y are centred on zero, Z never goes negative.
var (
	rangeXY = axisRange{min: -mapping.Center * AxisScale, max: mapping.Center * AxisScale}
	rangeZ  = axisRange{min: 0, max: mapping.MaxCenter * AxisScale}
)

// counts converts v into clamped integer counts for r.
func (r axisRange) counts(v float64) int32 {
	c := math.Round(v * AxisScale)
	if c < float64(r.min) {
		return r.min
	}
	if c > float64(r.max) {
		return r.max
	}
	return int32(c)
}

// axisCounts converts an output into ABS_X, ABS_Y, ABS_Z counts.
func axisCounts(o mapping.Output) [3]int32 {
	return [3]int32{rangeXY.counts(o.X), rangeXY.counts(o.Y), rangeZ.counts(o.Z)}
}
