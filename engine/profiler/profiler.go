package profiler

import (
	"log"
	"runtime"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

// Stats is one reporting interval's worth of measurements.
type Stats struct {
	// FPS is the frames counted over the interval divided by its duration.
	FPS float64
	// Heap is the live heap in bytes.
	Heap uint64
	// AllocRate is the bytes allocated per second over the interval.
	AllocRate uint64
	// GC is the total number of completed collections.
	GC uint32
	// LastPause and MaxPause are GC pause times; MaxPause covers collections since the last report.
	LastPause, MaxPause time.Duration
	// Sys is the memory obtained from the OS in bytes.
	Sys uint64
}

// String formats the stats for the log, with byte sizes humanized.
func (s Stats) String() string {
	var b strings.Builder
	b.WriteString("FPS: ")
	b.WriteString(humanize.FtoaWithDigits(s.FPS, 2))
	b.WriteString(" | Heap: ")
	b.WriteString(humanize.IBytes(s.Heap))
	b.WriteString(" | Alloc Rate: ")
	b.WriteString(humanize.IBytes(s.AllocRate))
	b.WriteString("/s | GC: ")
	b.WriteString(humanize.Comma(int64(s.GC)))
	b.WriteString(" (last: ")
	b.WriteString(s.LastPause.String())
	b.WriteString(", max: ")
	b.WriteString(s.MaxPause.String())
	b.WriteString(") | Sys: ")
	b.WriteString(humanize.IBytes(s.Sys))
	return b.String()
}

// Profiler tracks frame rate and memory statistics for performance monitoring.
// Outputs stats to the log at a configurable interval.
type Profiler struct {
	frameCount     int
	lastTime       time.Time
	updateInterval time.Duration
	memStats       runtime.MemStats
	lastGCCount    uint32
	lastTotalAlloc uint64
	extra          func() string
	last           Stats
}

// ProfilerOption is a functional option for configuring a Profiler.
type ProfilerOption func(*Profiler)

// WithInterval sets how often stats are logged. Non-positive values keep the one second default.
func WithInterval(interval time.Duration) ProfilerOption {
	return func(p *Profiler) {
		if interval > 0 {
			p.updateInterval = interval
		}
	}
}

// WithExtra appends the result of fn to every logged line, e.g. scene counters.
func WithExtra(fn func() string) ProfilerOption {
	return func(p *Profiler) {
		p.extra = fn
	}
}

// NewProfiler creates a new Profiler with default settings.
// Update interval defaults to 1 second.
//
// Parameters:
//   - options: functional options
//
// Returns:
//   - *Profiler: the newly created profiler instance
func NewProfiler(options ...ProfilerOption) *Profiler {
	p := &Profiler{
		lastTime:       time.Now(),
		updateInterval: time.Second,
	}
	for _, opt := range options {
		opt(p)
	}
	return p
}

// Tick should be called once per frame to track frame timing.
// Logs performance statistics when the update interval has elapsed.
//
// Returns:
//   - bool: true if stats were logged this tick, false otherwise
func (p *Profiler) Tick() bool {
	stats, ok := p.tickAt(time.Now())
	if !ok {
		return false
	}
	line := stats.String()
	if p.extra != nil {
		if extra := p.extra(); extra != "" {
			line += " | " + extra
		}
	}
	log.Printf("[Profiler] %s", line)
	return true
}

// Last returns the stats of the most recent report.
func (p *Profiler) Last() Stats {
	return p.last
}

func (p *Profiler) tickAt(now time.Time) (Stats, bool) {
	p.frameCount++
	elapsed := now.Sub(p.lastTime)
	if elapsed < p.updateInterval {
		return Stats{}, false
	}

	runtime.ReadMemStats(&p.memStats)

	stats := Stats{
		FPS:       float64(p.frameCount) / elapsed.Seconds(),
		Heap:      p.memStats.Alloc,
		AllocRate: uint64(float64(p.memStats.TotalAlloc-p.lastTotalAlloc) / elapsed.Seconds()),
		GC:        p.memStats.NumGC,
		Sys:       p.memStats.Sys,
	}

	// PauseNs is a circular buffer of the last 256 pauses
	gcCount := p.memStats.NumGC
	if gcCount > 0 {
		stats.LastPause = time.Duration(p.memStats.PauseNs[(gcCount-1)%256])
		start := p.lastGCCount
		if gcCount-start > 256 {
			start = gcCount - 256
		}
		for i := start; i < gcCount; i++ {
			if pause := time.Duration(p.memStats.PauseNs[i%256]); pause > stats.MaxPause {
				stats.MaxPause = pause
			}
		}
	}

	p.frameCount = 0
	p.lastTime = now
	p.lastGCCount = gcCount
	p.lastTotalAlloc = p.memStats.TotalAlloc
	p.last = stats
	return stats, true
}
