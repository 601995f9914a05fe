package tracker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"sync"

	"github.com/hypebeast/go-osc/osc"
	"github.com/teslashibe/go-headbridge/internal/log"
	"github.com/teslashibe/go-headbridge/pkg/mapping"
)

// DefaultOSCAddress is the OSC address carrying head samples: x y z present.
const DefaultOSCAddress = "/tracker/head"

// ErrSourceClosed is returned by Next after Close.
var ErrSourceClosed = errors.New("tracker: source closed")

// OSCSource receives samples as OSC messages over UDP.
type OSCSource struct {
	conn    net.PacketConn
	server  *osc.Server
	samples chan mapping.Sample
	done    chan struct{}
	log     *slog.Logger

	closeOnce sync.Once
	mu        sync.Mutex
	serveErr  error
	rejected  int
}

// ListenOSC binds addr and starts receiving messages sent to address.
func ListenOSC(addr, address string) (*OSCSource, error) {
	if address == "" {
		address = DefaultOSCAddress
	}

	conn, err := net.ListenPacket("udp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen osc %s: %w", addr, err)
	}

	s := &OSCSource{
		conn:    conn,
		samples: make(chan mapping.Sample, queueSize),
		done:    make(chan struct{}),
		log:     log.Component("tracker.osc").With("addr", conn.LocalAddr().String()),
	}

	d := osc.NewStandardDispatcher()
	if err := d.AddMsgHandler(address, s.handle); err != nil {
		conn.Close()
		return nil, fmt.Errorf("register osc handler %s: %w", address, err)
	}
	s.server = &osc.Server{Addr: conn.LocalAddr().String(), Dispatcher: d}

	go func() {
		err := s.server.Serve(conn)
		s.mu.Lock()
		s.serveErr = err
		s.mu.Unlock()
		s.Close()
	}()
	return s, nil
}

// Addr returns the bound UDP address.
func (s *OSCSource) Addr() net.Addr {
	return s.conn.LocalAddr()
}

func (s *OSCSource) handle(msg *osc.Message) {
	sample, err := sampleFromOSC(msg.Arguments)
	if err != nil {
		s.mu.Lock()
		s.rejected++
		s.mu.Unlock()
		s.log.Warn("rejecting osc message", "address", msg.Address, "error", err)
		return
	}

	// The dispatcher may run handlers concurrently.
	s.mu.Lock()
	defer s.mu.Unlock()
	select {
	case <-s.done:
		return
	default:
	}
	if offer(s.samples, sample) {
		s.log.Debug("osc queue full, dropped oldest sample")
	}
}

// sampleFromOSC parses x, y, z and presence arguments.
func sampleFromOSC(args []interface{}) (mapping.Sample, error) {
	if len(args) != 4 {
		return mapping.Sample{}, fmt.Errorf("want 4 arguments, got %d", len(args))
	}

	var coords [3]float64
	for i := 0; i < 3; i++ {
		v, ok := oscFloat(args[i])
		if !ok {
			return mapping.Sample{}, fmt.Errorf("argument %d: want number, got %T", i, args[i])
		}
		coords[i] = v
	}

	var present bool
	switch p := args[3].(type) {
	case bool:
		present = p
	case int32:
		present = p != 0
	case int64:
		present = p != 0
	case float32:
		present = p != 0
	default:
		return mapping.Sample{}, fmt.Errorf("presence: unsupported type %T", args[3])
	}

	return mapping.Sample{X: coords[0], Y: coords[1], Z: coords[2], Present: present}, nil
}

func oscFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float32:
		return float64(n), true
	case float64:
		return n, true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

// Next returns the next received sample.
func (s *OSCSource) Next(ctx context.Context) (mapping.Sample, error) {
	select {
	case <-ctx.Done():
		return mapping.Sample{}, ctx.Err()
	case sample := <-s.samples:
		return sample, nil
	case <-s.done:
		select {
		case sample := <-s.samples:
			return sample, nil
		default:
		}
		s.mu.Lock()
		err := s.serveErr
		s.mu.Unlock()
		if err != nil {
			return mapping.Sample{}, fmt.Errorf("%w: %v", ErrSourceClosed, err)
		}
		return mapping.Sample{}, ErrSourceClosed
	}
}

// Rejected returns how many messages failed to parse.
func (s *OSCSource) Rejected() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rejected
}

// Close stops the receiver.
func (s *OSCSource) Close() error {
	var err error
	s.closeOnce.Do(func() {
		s.mu.Lock()
		close(s.done)
		s.mu.Unlock()
		err = s.conn.Close()
	})
	return err
}

var _ Source = (*OSCSource)(nil)
