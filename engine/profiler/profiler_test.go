package profiler

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTickReportsPerInterval(t *testing.T) {
	p := NewProfiler(WithInterval(time.Second))
	start := p.lastTime

	for i := 1; i < 60; i++ {
		_, ok := p.tickAt(start.Add(time.Duration(i) * 10 * time.Millisecond))
		require.False(t, ok)
	}
	stats, ok := p.tickAt(start.Add(2 * time.Second))
	require.True(t, ok)
	assert.InDelta(t, 30, stats.FPS, 1e-9)
	assert.NotZero(t, stats.Sys)
	assert.Equal(t, stats, p.Last())

	// the counter restarts after a report
	stats, ok = p.tickAt(start.Add(3 * time.Second))
	require.True(t, ok)
	assert.InDelta(t, 1, stats.FPS, 1e-9)
}

func TestStatsString(t *testing.T) {
	s := Stats{FPS: 59.94, Heap: 3 << 20, AllocRate: 1 << 10, GC: 1200, LastPause: 25 * time.Microsecond, Sys: 12 << 20}
	line := s.String()
	assert.True(t, strings.HasPrefix(line, "FPS: 59.94 | Heap: 3.0 MiB"), line)
	assert.Contains(t, line, "Alloc Rate: 1.0 KiB/s")
	assert.Contains(t, line, "GC: 1,200 (last: 25µs, max: 0s)")
	assert.Contains(t, line, "Sys: 12 MiB")
}

func TestOptions(t *testing.T) {
	p := NewProfiler(WithInterval(-1), WithExtra(func() string { return "chunks: 3" }))
	assert.Equal(t, time.Second, p.updateInterval)
	assert.Equal(t, "chunks: 3", p.extra())
	assert.False(t, p.Tick())
}
