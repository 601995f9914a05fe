package vio

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"sync"

	"github.com/hypebeast/go-osc/osc"
	"github.com/teslashibe/go-headbridge/pkg/mapping"
)

// OSC address prefix for axis messages.
const DefaultOSCPrefix = "/headtrack"

// OSC sends each axis as a float32 OSC message: <prefix>/x, <prefix>/y, <prefix>/z.
type OSC struct {
	client *osc.Client
	prefix string

	mu     sync.Mutex
	closed bool
}

// NewOSC creates an OSC output sending to target ("host:port").
func NewOSC(target, prefix string) (*OSC, error) {
	host, portStr, err := net.SplitHostPort(target)
	if err != nil {
		return nil, fmt.Errorf("osc target %q: %w", target, err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil || port <= 0 || port > 65535 {
		return nil, fmt.Errorf("osc target %q: invalid port", target)
	}
	if prefix == "" {
		prefix = DefaultOSCPrefix
	}
	return &OSC{
		client: osc.NewClient(host, port),
		prefix: prefix,
	}, nil
}

// Write sends the three axes.
func (o *OSC) Write(out mapping.Output) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.closed {
		return ErrClosed
	}

	var errs []error
	for _, a := range []struct {
		name string
		v    float64
	}{{"x", out.X}, {"y", out.Y}, {"z", out.Z}} {
		msg := osc.NewMessage(o.prefix+"/"+a.name, float32(a.v))
		if err := o.client.Send(msg); err != nil {
			errs = append(errs, fmt.Errorf("osc send %s: %w", a.name, err))
		}
	}
	return errors.Join(errs...)
}

// Close stops further writes.
func (o *OSC) Close() error {
	o.mu.Lock()
	o.closed = true
	o.mu.Unlock()
	return nil
}

var _ Device = (*OSC)(nil)
