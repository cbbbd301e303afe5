package profiler

import (
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestComputeStats(t *testing.T) {
	var m runtime.MemStats
	m.Alloc = 2 * 1024 * 1024
	m.Sys = 8 * 1024 * 1024
	m.TotalAlloc = 5 * 1024 * 1024
	m.NumGC = 3
	m.PauseNs[0] = 4000
	m.PauseNs[1] = 9000
	m.PauseNs[2] = 2000

	s := computeStats(&m, 120, 2*time.Second, 1, 1024*1024)
	assert.InDelta(t, 60.0, s.FPS, 1e-9)
	assert.InDelta(t, 2.0, s.HeapMB, 1e-9)
	assert.InDelta(t, 8.0, s.SysMB, 1e-9)
	assert.InDelta(t, 2.0, s.AllocRateMB, 1e-9)
	assert.Equal(t, uint32(3), s.GCCount)
	assert.Equal(t, uint64(2), s.LastPauseUs)
	// only pauses since the previous tick count towards the max
	assert.Equal(t, uint64(9), s.MaxPauseUs)
}

func TestComputeStats_NoGC(t *testing.T) {
	var m runtime.MemStats
	s := computeStats(&m, 10, 0, 0, 0)
	assert.Zero(t, s.FPS)
	assert.Zero(t, s.LastPauseUs)
	assert.Zero(t, s.MaxPauseUs)
}

func TestProfiler_Tick(t *testing.T) {
	start := time.Unix(100, 0)
	now := start
	p := NewProfiler(time.Second)
	p.lastTime = start
	p.now = func() time.Time { return now }

	now = start.Add(500 * time.Millisecond)
	_, logged := p.Tick()
	assert.False(t, logged)

	now = start.Add(time.Second)
	s, logged := p.Tick()
	assert.True(t, logged)
	assert.InDelta(t, 2.0, s.FPS, 1e-9)
	assert.Zero(t, p.frameCount)
	assert.Equal(t, now, p.lastTime)
}

func TestNewProfiler_DefaultInterval(t *testing.T) {
	assert.Equal(t, time.Second, NewProfiler(0).updateInterval)
	assert.Equal(t, 250*time.Millisecond, NewProfiler(250*time.Millisecond).updateInterval)
}
