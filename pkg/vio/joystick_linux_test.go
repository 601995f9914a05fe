//go:build linux

package vio

import (
	"encoding/binary"
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/teslashibe/go-headbridge/pkg/mapping"
)

func TestIoctlNumbers(t *testing.T) {
	// Values from <linux/uinput.h> on 64-bit kernels.
	assert.Equal(t, uint(0x5501), uiDevCreate)
	assert.Equal(t, uint(0x5502), uiDevDestroy)
	assert.Equal(t, uint(0x405c5503), uiDevSetup)
	assert.Equal(t, uint(0x401c5504), uiAbsSetup)
	assert.Equal(t, uint(0x40045564), uiSetEvBit)
	assert.Equal(t, uint(0x40045565), uiSetKeyBit)
	assert.Equal(t, uint(0x40045567), uiSetAbsBit)
}

func TestEncodeAxes(t *testing.T) {
	b := encodeAxes(nil, [3]int32{-4000, 1234, 8000})
	require.Len(t, b, 4*inputEventSize)

	tv := inputEventSize - 8
	type ev struct {
		typ, code uint16
		value     int32
	}
	want := []ev{
		{evAbs, absX, -4000},
		{evAbs, absY, 1234},
		{evAbs, absZ, 8000},
		{evSyn, synReport, 0},
	}
	for i, w := range want {
		e := b[i*inputEventSize : (i+1)*inputEventSize]
		for _, c := range e[:tv] {
			assert.Zero(t, c, "timestamp must be zero")
		}
		assert.Equal(t, w.typ, binary.NativeEndian.Uint16(e[tv:]))
		assert.Equal(t, w.code, binary.NativeEndian.Uint16(e[tv+2:]))
		assert.Equal(t, w.value, int32(binary.NativeEndian.Uint32(e[tv+4:])))
	}
}

func TestNewJoystick_MissingNode(t *testing.T) {
	cfg := DefaultJoystickConfig()
	cfg.Path = "/nonexistent/uinput"
	_, err := NewJoystick(cfg)
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestJoystick_Device(t *testing.T) {
	f, err := os.OpenFile("/dev/uinput", os.O_WRONLY, 0)
	if err != nil {
		t.Skip("uinput not available:", err)
	}
	f.Close()

	j, err := NewJoystick(DefaultJoystickConfig())
	require.NoError(t, err)

	assert.NoError(t, j.Write(mapping.Output{X: 1, Y: -1, Z: 4}))
	assert.NoError(t, j.Close())
	assert.NoError(t, j.Close())
	assert.ErrorIs(t, j.Write(mapping.Output{}), ErrClosed)
}
