package vio

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/teslashibe/go-headbridge/pkg/mapping"
)

type failing struct{ err error }

func (f failing) Write(mapping.Output) error { return f.err }

type closeCounter struct {
	Memory
	closed int
}

func (c *closeCounter) Close() error {
	c.closed++
	return nil
}

func TestMemory(t *testing.T) {
	m := NewMemory()
	assert.Equal(t, mapping.Output{}, m.Last())
	assert.Equal(t, 0, m.Writes())

	require.NoError(t, m.Write(mapping.Output{X: 1, Y: 2, Z: 3}))
	require.NoError(t, m.Write(mapping.Output{X: -4, Y: 4, Z: 8}))

	assert.Equal(t, mapping.Output{X: -4, Y: 4, Z: 8}, m.Last())
	assert.Equal(t, 2, m.Writes())
	assert.NoError(t, m.Close())
}

func TestMulti_WritesAllAndJoinsErrors(t *testing.T) {
	a, b := NewMemory(), NewMemory()
	e1, e2 := errors.New("first"), errors.New("second")

	m := Multi{a, failing{e1}, nil, b, failing{e2}}
	err := m.Write(mapping.Output{X: 1})

	assert.ErrorIs(t, err, e1)
	assert.ErrorIs(t, err, e2)
	assert.Equal(t, 1.0, a.Last().X)
	assert.Equal(t, 1.0, b.Last().X)
}

func TestMulti_Close(t *testing.T) {
	c := &closeCounter{}
	m := Multi{c, failing{}, c}
	require.NoError(t, m.Close())
	assert.Equal(t, 2, c.closed)
}

func TestAxisCounts(t *testing.T) {
	tests := []struct {
		name string
		in   mapping.Output
		want [3]int32
	}{
		{"neutral", mapping.Output{}, [3]int32{0, 0, 0}},
		{"full", mapping.Output{X: 4, Y: -4, Z: 8}, [3]int32{4000, -4000, 8000}},
		{"fractional", mapping.Output{X: 1.2346, Y: -0.0004, Z: 3}, [3]int32{1235, 0, 3000}},
		{"clamped", mapping.Output{X: 9, Y: -12, Z: -1}, [3]int32{4000, -4000, 0}},
		{"z clamped high", mapping.Output{Z: 20}, [3]int32{0, 0, 8000}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, axisCounts(tt.in))
		})
	}
}

func TestJoystickConfigValidate(t *testing.T) {
	assert.NoError(t, DefaultJoystickConfig().Validate())

	cfg := DefaultJoystickConfig()
	cfg.Path = ""
	assert.Error(t, cfg.Validate())

	cfg = DefaultJoystickConfig()
	cfg.Name = strings.Repeat("n", uinputMaxNameSize)
	assert.Error(t, cfg.Validate())
}
