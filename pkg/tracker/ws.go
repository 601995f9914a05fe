package tracker

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/teslashibe/go-headbridge/internal/log"
	"github.com/teslashibe/go-headbridge/pkg/mapping"
)

const (
	wsHandshakeTimeout = 10 * time.Second
	wsReadLimit        = 4 * 1024
)

// Frame is the JSON message a tracker daemon sends per update.
type Frame struct {
	Present *bool    `json:"present"`
	X       *float64 `json:"x"`
	Y       *float64 `json:"y"`
	Z       *float64 `json:"z"`
}

// Sample converts a frame. Missing coordinates read as zero; a missing
// presence flag means the frame is not a tracker update.
func (f Frame) Sample() (mapping.Sample, bool) {
	if f.Present == nil {
		return mapping.Sample{}, false
	}
	s := mapping.Sample{Present: *f.Present}
	if f.X != nil {
		s.X = *f.X
	}
	if f.Y != nil {
		s.Y = *f.Y
	}
	if f.Z != nil {
		s.Z = *f.Z
	}
	return s, true
}

// WSSource streams samples from a tracker daemon over a websocket.
type WSSource struct {
	conn    *websocket.Conn
	samples chan mapping.Sample
	log     *slog.Logger

	mu      sync.Mutex
	readErr error
	skipped int
}

// DialWS connects to url and starts reading frames.
func DialWS(ctx context.Context, url string) (*WSSource, error) {
	dialer := websocket.Dialer{HandshakeTimeout: wsHandshakeTimeout}

	conn, _, err := dialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("connect to tracker %s: %w", url, err)
	}
	conn.SetReadLimit(wsReadLimit)

	s := &WSSource{
		conn:    conn,
		samples: make(chan mapping.Sample, queueSize),
		log:     log.Component("tracker.ws").With("url", url),
	}
	go s.readLoop()
	return s, nil
}

// readLoop decodes frames until the connection fails.
func (s *WSSource) readLoop() {
	defer close(s.samples)

	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			s.mu.Lock()
			s.readErr = err
			s.mu.Unlock()
			return
		}

		var f Frame
		if err := json.Unmarshal(data, &f); err != nil {
			s.skip("decode frame", err)
			continue
		}
		sample, ok := f.Sample()
		if !ok {
			s.skip("frame without presence", nil)
			continue
		}
		if offer(s.samples, sample) {
			s.log.Debug("tracker queue full, dropped oldest sample")
		}
	}
}

func (s *WSSource) skip(reason string, err error) {
	s.mu.Lock()
	s.skipped++
	n := s.skipped
	s.mu.Unlock()
	s.log.Warn("skipping tracker frame", "reason", reason, "error", err, "skipped", n)
}

// Next returns the next decoded sample.
func (s *WSSource) Next(ctx context.Context) (mapping.Sample, error) {
	select {
	case <-ctx.Done():
		return mapping.Sample{}, ctx.Err()
	case sample, ok := <-s.samples:
		if !ok {
			s.mu.Lock()
			err := s.readErr
			s.mu.Unlock()
			return mapping.Sample{}, fmt.Errorf("tracker stream closed: %w", err)
		}
		return sample, nil
	}
}

// Skipped returns how many frames were discarded.
func (s *WSSource) Skipped() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.skipped
}

// Close closes the connection.
func (s *WSSource) Close() error {
	_ = s.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second))
	return s.conn.Close()
}

var _ Source = (*WSSource)(nil)
