package profiler

import (
	"runtime"
	"time"

	"github.com/Carmen-Shannon/oxy-viewer/common"
	"go.uber.org/zap"
)

// Stats is one reporting interval's worth of frame and memory statistics.
type Stats struct {
	FPS         float64
	HeapMB      float64
	AllocRateMB float64
	SysMB       float64
	GCCount     uint32
	LastPauseUs uint64
	MaxPauseUs  uint64
}

// Profiler tracks frame rate and memory statistics for performance monitoring.
// Outputs stats to the shared logger at a configurable interval.
type Profiler struct {
	frameCount     int
	lastTime       time.Time
	updateInterval time.Duration
	memStats       runtime.MemStats
	lastGCCount    uint32
	lastTotalAlloc uint64

	now func() time.Time
}

// NewProfiler creates a new Profiler reporting every interval.
// An interval <= 0 defaults to 1 second.
//
// Parameters:
//   - interval: how often statistics are logged
//
// Returns:
//   - *Profiler: the newly created profiler instance
func NewProfiler(interval time.Duration) *Profiler {
	if interval <= 0 {
		interval = time.Second
	}
	return &Profiler{
		lastTime:       time.Now(),
		updateInterval: interval,
		now:            time.Now,
	}
}

// Tick should be called once per frame to track frame timing.
// Logs performance statistics when the update interval has elapsed.
//
// Returns:
//   - Stats: the statistics of the interval that just ended
//   - bool: true if stats were logged this tick, false otherwise
func (p *Profiler) Tick() (Stats, bool) {
	p.frameCount++
	currentTime := p.now()
	elapsed := currentTime.Sub(p.lastTime)
	if elapsed < p.updateInterval {
		return Stats{}, false
	}

	runtime.ReadMemStats(&p.memStats)
	s := computeStats(&p.memStats, p.frameCount, elapsed, p.lastGCCount, p.lastTotalAlloc)

	common.Logger().Info("frame stats",
		zap.Float64("fps", s.FPS),
		zap.Float64("heap_mb", s.HeapMB),
		zap.Float64("alloc_rate_mb_s", s.AllocRateMB),
		zap.Uint32("gc", s.GCCount),
		zap.Uint64("gc_last_pause_us", s.LastPauseUs),
		zap.Uint64("gc_max_pause_us", s.MaxPauseUs),
		zap.Float64("sys_mb", s.SysMB),
	)

	p.frameCount = 0
	p.lastTime = currentTime
	p.lastGCCount = s.GCCount
	p.lastTotalAlloc = p.memStats.TotalAlloc
	return s, true
}

// computeStats derives interval statistics from a memory snapshot and the previous tick's counters.
func computeStats(m *runtime.MemStats, frames int, elapsed time.Duration, lastGC uint32, lastTotalAlloc uint64) Stats {
	const mb = 1024 * 1024
	secs := elapsed.Seconds()
	s := Stats{
		HeapMB:  float64(m.Alloc) / mb,
		SysMB:   float64(m.Sys) / mb,
		GCCount: m.NumGC,
	}
	if secs > 0 {
		s.FPS = float64(frames) / secs
		if m.TotalAlloc >= lastTotalAlloc {
			s.AllocRateMB = float64(m.TotalAlloc-lastTotalAlloc) / mb / secs
		}
	}

	if m.NumGC > 0 {
		// PauseNs is a circular buffer of the last 256 pauses.
		s.LastPauseUs = m.PauseNs[(m.NumGC+255)%256] / 1000
		start := lastGC
		if m.NumGC-start > 256 {
			start = m.NumGC - 256
		}
		for i := start; i < m.NumGC; i++ {
			s.MaxPauseUs = max(s.MaxPauseUs, m.PauseNs[i%256]/1000)
		}
	}
	return s
}
