package tracker

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/hypebeast/go-osc/osc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/teslashibe/go-headbridge/pkg/mapping"
)

func TestSampleFromOSC(t *testing.T) {
	tests := []struct {
		name    string
		args    []interface{}
		want    mapping.Sample
		wantErr bool
	}{
		{"bool presence", []interface{}{float32(0.5), float32(0.25), float32(1), true},
			mapping.Sample{X: 0.5, Y: 0.25, Z: 1, Present: true}, false},
		{"int presence", []interface{}{float32(0), int32(1), float64(0.5), int32(0)},
			mapping.Sample{X: 0, Y: 1, Z: 0.5}, false},
		{"float presence", []interface{}{float32(0.5), float32(0.5), float32(0.5), float32(1)},
			mapping.Sample{X: 0.5, Y: 0.5, Z: 0.5, Present: true}, false},
		{"too few", []interface{}{float32(0.5), float32(0.5), true}, mapping.Sample{}, true},
		{"string coord", []interface{}{"x", float32(0.5), float32(0.5), true}, mapping.Sample{}, true},
		{"string presence", []interface{}{float32(0.5), float32(0.5), float32(0.5), "yes"}, mapping.Sample{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := sampleFromOSC(tt.args)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestOSCSource_Receives(t *testing.T) {
	src, err := ListenOSC("127.0.0.1:0", "")
	require.NoError(t, err)
	defer src.Close()

	addr := src.Addr().(*net.UDPAddr)
	client := osc.NewClient("127.0.0.1", addr.Port)

	msg := osc.NewMessage(DefaultOSCAddress, float32(0.5), float32(0.75), float32(0.25), int32(1))
	require.NoError(t, client.Send(msg))

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	s, err := src.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, mapping.Sample{X: 0.5, Y: 0.75, Z: 0.25, Present: true}, s)
}

func TestOSCSource_CloseEndsNext(t *testing.T) {
	src, err := ListenOSC("127.0.0.1:0", "/custom/head")
	require.NoError(t, err)
	require.NoError(t, src.Close())
	require.NoError(t, src.Close())

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, err = src.Next(ctx)
	assert.ErrorIs(t, err, ErrSourceClosed)
}

func TestListenOSC_BadAddr(t *testing.T) {
	_, err := ListenOSC("not-an-address", "")
	assert.Error(t, err)
}
