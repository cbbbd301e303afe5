package renderer

import (
	"context"
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-viewer/engine/shadertypes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAlignedSize(t *testing.T) {
	tests := []struct {
		name  string
		size  uint64
		align uint64
		want  uint64
	}{
		{"zero", 0, 256, 0},
		{"exact", 256, 256, 256},
		{"round up", 257, 256, 512},
		{"uniform block", shadertypes.GPUUniformsSize, UniformAlignment, 512},
		{"no alignment", 13, 0, 13},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, AlignedSize(tt.size, tt.align))
		})
	}
	assert.Equal(t, uint64(512), AlignedUniformsSize)
}

func TestUniformRing_OffsetsCycle(t *testing.T) {
	r := NewUniformRing(shadertypes.GPUUniformsSize, MaxBuffersInFlight)
	require.Equal(t, uint64(512), r.SlotSize())
	require.Equal(t, 3, r.Slots())
	require.Equal(t, uint64(1536), r.BufferSize())

	ctx := context.Background()
	var got []uint64
	for range 6 {
		off, err := r.Acquire(ctx)
		require.NoError(t, err)
		got = append(got, off)
		r.Release()
	}
	// the index advances before use, so the first frame lands in slot 1
	assert.Equal(t, []uint64{512, 1024, 0, 512, 1024, 0}, got)
	assert.Equal(t, 0, r.InFlight())
}

func TestUniformRing_BlocksWhenFull(t *testing.T) {
	r := NewUniformRing(shadertypes.GPUUniformsSize, MaxBuffersInFlight)
	ctx := context.Background()
	for range MaxBuffersInFlight {
		_, err := r.Acquire(ctx)
		require.NoError(t, err)
	}
	assert.Equal(t, MaxBuffersInFlight, r.InFlight())

	timeout, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
	defer cancel()
	_, err := r.Acquire(timeout)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, MaxBuffersInFlight, r.InFlight())

	done := make(chan uint64)
	go func() {
		off, acqErr := r.Acquire(ctx)
		if acqErr == nil {
			done <- off
		}
		close(done)
	}()
	r.Release()

	select {
	case off := <-done:
		assert.Equal(t, uint64(512), off)
	case <-time.After(time.Second):
		t.Fatal("acquire did not unblock after release")
	}
}

func TestUniformRing_ExtraReleaseIsNoop(t *testing.T) {
	r := NewUniformRing(64, 2)
	assert.Equal(t, uint64(UniformAlignment), r.SlotSize())

	r.Release()
	r.Release()
	assert.Equal(t, 0, r.InFlight())

	ctx := context.Background()
	_, err := r.Acquire(ctx)
	require.NoError(t, err)
	_, err = r.Acquire(ctx)
	require.NoError(t, err)

	timeout, cancel := context.WithTimeout(ctx, 10*time.Millisecond)
	defer cancel()
	_, err = r.Acquire(timeout)
	assert.Error(t, err, "extra releases must not grow the ring")
}

func TestNewUniformRing_DefaultSlots(t *testing.T) {
	r := NewUniformRing(shadertypes.GPUUniformsSize, 0)
	assert.Equal(t, MaxBuffersInFlight, r.Slots())
}
