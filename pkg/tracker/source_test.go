package tracker

import (
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/teslashibe/go-headbridge/pkg/mapping"
)

func TestChanSource(t *testing.T) {
	ch := make(chan mapping.Sample, 2)
	ch <- mapping.Sample{X: 0.25, Present: true}
	close(ch)

	src := NewChanSource(ch)
	s, err := src.Next(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0.25, s.X)

	_, err = src.Next(context.Background())
	assert.ErrorIs(t, err, io.EOF)
	assert.NoError(t, src.Close())
}

func TestChanSource_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewChanSource(make(chan mapping.Sample)).Next(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestOffer_DropsOldest(t *testing.T) {
	ch := make(chan mapping.Sample, 2)

	assert.False(t, offer(ch, mapping.Sample{X: 1}))
	assert.False(t, offer(ch, mapping.Sample{X: 2}))
	assert.True(t, offer(ch, mapping.Sample{X: 3}))

	assert.Equal(t, 2.0, (<-ch).X)
	assert.Equal(t, 3.0, (<-ch).X)
}
