package bridge

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/teslashibe/go-headbridge/pkg/diag"
	"github.com/teslashibe/go-headbridge/pkg/host"
	"github.com/teslashibe/go-headbridge/pkg/mapping"
	"github.com/teslashibe/go-headbridge/pkg/tracker"
	"github.com/teslashibe/go-headbridge/pkg/vio"
)

type fakeHost struct {
	timing   host.TimingMode
	interval time.Duration
	handlers []host.Handler
}

func (f *fakeHost) SetTiming(m host.TimingMode) { f.timing = m }
func (f *fakeHost) SetInterval(d time.Duration) { f.interval = d }
func (f *fakeHost) OnUpdate(fn host.Handler) { f.handlers = append(f.handlers, fn) }

type failingChannels struct{}

func (failingChannels) Write(mapping.Output) error { return errors.New("unplugged") }

func TestStarting_ConfiguresHost(t *testing.T) {
	h := &fakeHost{timing: host.TimerDefault, interval: time.Millisecond}
	s := New(vio.NewMemory(), nil)

	assert.False(t, s.Registered())
	s.Starting(h)

	assert.True(t, s.Registered())
	assert.Equal(t, host.TimerSystem, h.timing)
	assert.Equal(t, time.Duration(0), h.interval)
	assert.Len(t, h.handlers, 1)
}

func TestStarting_Idempotent(t *testing.T) {
	h := &fakeHost{}
	s := New(nil, nil)

	s.Starting(h)
	s.Starting(h)

	assert.Len(t, h.handlers, 1)
}

func TestUpdate_WritesDeviceAndBoard(t *testing.T) {
	mem := vio.NewMemory()
	board := diag.NewBoard()
	s := New(mem, board)

	require.NoError(t, s.Update(mapping.Sample{X: 1, Y: 0.5, Z: 0.5, Present: true}))

	assert.Equal(t, mapping.Output{X: 4, Y: 0, Z: 4}, mem.Last())

	snap := board.Snapshot()
	assert.Equal(t, 4.0, snap["x"].Value)
	assert.Equal(t, 0.0, snap["y"].Value)
	assert.Equal(t, 4.0, snap["z"].Value)

	require.NoError(t, s.Update(mapping.Sample{X: 1, Y: 1, Z: 1}))
	assert.Equal(t, mapping.Output{}, mem.Last())

	st := s.Stats()
	assert.Equal(t, uint64(2), st.Updates)
	assert.Equal(t, uint64(1), st.Present)
	assert.Equal(t, mapping.Output{}, st.Last)
}

func TestUpdate_PropagatesDeviceError(t *testing.T) {
	s := New(failingChannels{}, nil)
	assert.Error(t, s.Update(mapping.Sample{Present: true}))
	assert.Equal(t, uint64(1), s.Stats().Updates)
}

func TestScript_EndToEndWithHost(t *testing.T) {
	mem := vio.NewMemory()
	s := New(mem, diag.NewBoard())

	h, err := host.New(host.DefaultConfig())
	require.NoError(t, err)
	h.OnStarting(func(h *host.Host) { s.Starting(h) })

	ch := make(chan mapping.Sample, 3)
	ch <- mapping.Sample{X: 0, Y: 0, Z: 0, Present: true}
	ch <- mapping.Sample{X: 0.5, Y: 0.5, Z: 0.25, Present: true}
	ch <- mapping.Sample{X: 0.5, Y: 0.5, Z: 0.25}
	close(ch)

	err = h.Run(context.Background(), tracker.NewChanSource(ch))
	require.ErrorIs(t, err, io.EOF)

	assert.Equal(t, host.TimerSystem, h.Timing())
	assert.Equal(t, time.Duration(0), h.Interval())
	assert.Equal(t, 3, mem.Writes())
	assert.Equal(t, mapping.Output{}, mem.Last())
	assert.Equal(t, uint64(2), s.Stats().Present)
}
