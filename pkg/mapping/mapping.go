// Package mapping converts normalized tracker samples into virtual device axis values.
//
// The conversion is a fixed affine rescale gated by presence. When the tracked
// subject is absent all axes read zero; when present, X and Y are centred on zero
// in [-Center, Center] while Z is scaled to [0, MaxCenter] and rounded.
package mapping

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Scale constants for the output device range.
const (
	// Center is the half-range of the X and Y axes.
	Center = 4
	// MaxCenter is the full range of an axis.
	MaxCenter = Center * 2
)

// Sample is one tracker reading. X, Y and Z are normalized, conventionally [0,1].
type Sample struct {
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Z       float64 `json:"z"`
	Present bool    `json:"present"`
}

// Output holds the three virtual device axis values.
type Output struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Channels is the write side of a virtual input device.
type Channels interface {
	Write(out Output) error
}

// Watcher receives labeled values for live inspection.
type Watcher interface {
	Watch(label string, value float64)
}

// Map converts a sample into axis values.
//
// Z intentionally keeps no Center offset and is rounded to a whole number,
// unlike X and Y. Consumers calibrate against this behaviour.
func Map(s Sample) Output {
	if !s.Present {
		return Output{}
	}

	scaled := mgl64.Vec3{s.X, s.Y, s.Z}.Mul(MaxCenter)
	return Output{
		X: scaled.X() - Center,
		Y: scaled.Y() - Center,
		Z: math.Round(scaled.Z()),
	}
}

// Apply maps s, writes the result to out and reports each axis to w.
// w may be nil. The returned error comes from out only.
func Apply(s Sample, out Channels, w Watcher) (Output, error) {
	o := Map(s)

	var err error
	if out != nil {
		err = out.Write(o)
	}

	if w != nil {
		w.Watch("x", o.X)
		w.Watch("y", o.Y)
		w.Watch("z", o.Z)
	}
	return o, err
}
