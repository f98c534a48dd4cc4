package pager

import (
	"runtime"
	"sync"
	"testing"
	"time"

	"github.com/Carmen-Shannon/vtrace-go/common"
	"github.com/Carmen-Shannon/vtrace-go/engine/terrain"
	"github.com/Carmen-Shannon/vtrace-go/engine/voxel"
	"github.com/chewxy/math32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingGenerator fills chunks with non-negative X and counts generation calls per coordinate.
type countingGenerator struct {
	mu    sync.Mutex
	calls map[ChunkCoord]int
}

var _ terrain.Generator = &countingGenerator{}

func newCountingGenerator() *countingGenerator {
	return &countingGenerator{calls: make(map[ChunkCoord]int)}
}

func (g *countingGenerator) Seed() int64 { return 0 }

func (g *countingGenerator) Voxel(x, y, z int) voxel.Color {
	if x >= 0 {
		return voxel.Color{R: 1, A: 255}
	}
	return voxel.Transparent
}

func (g *countingGenerator) Chunk(cx, cy, cz int32) *voxel.Chunk[voxel.Color] {
	g.mu.Lock()
	g.calls[ChunkCoord{cx, cy, cz}]++
	g.mu.Unlock()
	if cx < 0 {
		return nil
	}
	c := voxel.NewChunk[voxel.Color]()
	c.Set(0, 0, 0, voxel.Color{R: 1, A: 255})
	return c
}

func (g *countingGenerator) count(c ChunkCoord) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls[c]
}

func TestChunkCoordOf(t *testing.T) {
	assert.Equal(t, ChunkCoord{0, 0, 0}, ChunkCoordOf(0, 15.9, 8))
	assert.Equal(t, ChunkCoord{1, 0, 0}, ChunkCoordOf(16, 0, 0))
	assert.Equal(t, ChunkCoord{-1, -1, 0}, ChunkCoordOf(-0.5, -16, 1))
	assert.Equal(t, ChunkCoord{-2, 0, 0}, ChunkCoordOf(-17, 0, 0))

	min, max := ChunkCoord{1, -1, 2}.Bounds()
	assert.Equal(t, [3]float32{16, -16, 32}, min)
	assert.Equal(t, [3]float32{32, 0, 48}, max)
}

func TestPageGeneratesOnce(t *testing.T) {
	gen := newCountingGenerator()
	p := NewPager(gen, WithWorkers(2))
	defer p.Close()

	added, err := p.Page(ChunkCoord{1, 0, 0})
	require.NoError(t, err)
	assert.True(t, added)

	added, err = p.Page(ChunkCoord{1, 0, 0})
	require.NoError(t, err)
	assert.False(t, added)
	assert.Equal(t, 1, gen.count(ChunkCoord{1, 0, 0}))

	// Empty chunks are recorded and never regenerated.
	added, err = p.Page(ChunkCoord{-1, 0, 0})
	require.NoError(t, err)
	assert.False(t, added)
	_, err = p.Page(ChunkCoord{-1, 0, 0})
	require.NoError(t, err)
	assert.Equal(t, 1, gen.count(ChunkCoord{-1, 0, 0}))

	chunk, ok := p.Chunk(ChunkCoord{-1, 0, 0})
	assert.True(t, ok)
	assert.Nil(t, chunk)

	chunk, ok = p.Chunk(ChunkCoord{5, 5, 5})
	assert.False(t, ok)
	assert.Nil(t, chunk)

	assert.Equal(t, 2, p.Len())
}

func TestPageAround(t *testing.T) {
	gen := newCountingGenerator()
	p := NewPager(gen, WithWorkers(4), WithQueueSize(5))
	defer p.Close()

	center := ChunkCoord{0, 0, 0}
	added, err := p.PageAround(center, 1)
	require.NoError(t, err)

	assert.Equal(t, 27, p.Len())
	// X in {0, 1} is filled: 2 * 3 * 3.
	require.Len(t, added, 18)
	assert.Equal(t, center, added[0])
	for i := 1; i < len(added); i++ {
		assert.LessOrEqual(t, added[i-1].DistanceSq(center), added[i].DistanceSq(center))
	}

	again, err := p.PageAround(center, 1)
	require.NoError(t, err)
	assert.Empty(t, again)
	for x := int32(-1); x <= 1; x++ {
		assert.Equal(t, 1, gen.count(ChunkCoord{x, 1, -1}))
	}

	filled := p.Filled()
	assert.Len(t, filled, 18)
	assert.Equal(t, ChunkCoord{0, -1, -1}, filled[0])

	none, err := p.PageAround(center, -1)
	require.NoError(t, err)
	assert.Nil(t, none)
}

func TestPagerVisible(t *testing.T) {
	p := NewPager(newCountingGenerator())
	defer p.Close()

	view := make([]float32, 16)
	proj := make([]float32, 16)
	vp := make([]float32, 16)
	common.LookAt(view, 0, 8, 8, 1, 8, 8, 0, 1, 0)
	common.Perspective(proj, 80*math32.Pi/180, 1, 0.01, 10000)
	common.Mul4(vp, proj, view)
	frustum := common.ExtractFrustumFromMatrix(vp)

	visible := p.Visible(frustum, []ChunkCoord{{2, 0, 0}, {-3, 0, 0}, {0, 0, 0}})
	assert.Equal(t, []ChunkCoord{{2, 0, 0}, {0, 0, 0}}, visible)
}

func TestPagerClosed(t *testing.T) {
	p := NewPager(newCountingGenerator())
	p.Close()

	_, err := p.Page(ChunkCoord{})
	assert.ErrorIs(t, err, ErrClosed)
	_, err = p.PageAround(ChunkCoord{}, 2)
	assert.ErrorIs(t, err, ErrClosed)
}

func TestPagerCloseStopsWorkers(t *testing.T) {
	before := runtime.NumGoroutine()

	for range 10 {
		p := NewPager(newCountingGenerator(), WithWorkers(4))
		assert.Len(t, p.(*pager).pool, 4)
		_, err := p.PageAround(ChunkCoord{}, 1)
		require.NoError(t, err)
		p.Close()
		p.Close()
	}

	assert.Eventually(t, func() bool {
		return runtime.NumGoroutine() <= before
	}, 2*time.Second, 10*time.Millisecond)
}

func TestPagerOptions(t *testing.T) {
	p := NewPager(newCountingGenerator(), WithWorkers(0), WithQueueSize(-1)).(*pager)
	assert.Equal(t, DefaultWorkers(), p.workers)
	assert.Equal(t, DefaultQueueSize, p.queueSize)
}
