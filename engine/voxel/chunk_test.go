package voxel

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunkRoundTripThroughSeq(t *testing.T) {
	src := NewChunk[int]()
	n := 0
	for x := range ChunkSize {
		for y := range ChunkSize {
			for z := range ChunkSize {
				require.True(t, src.Set(x, y, z, n))
				n++
			}
		}
	}

	dst := NewChunkFromSeq(src.All())
	assert.Equal(t, slices.Collect(src.All()), slices.Collect(dst.All()))

	v, ok := dst.At(1, 2, 3)
	require.True(t, ok)
	assert.Equal(t, 3+ChunkSize*(2+ChunkSize*1), v)
}

func TestChunkFillConstant(t *testing.T) {
	c := NewChunkFromSeq[uint8](func(yield func(uint8) bool) {
		for range chunkVolume {
			if !yield(42) {
				return
			}
		}
	})
	for v := range c.All() {
		assert.Equal(t, uint8(42), v)
	}
}

func TestChunkOutOfRange(t *testing.T) {
	c := NewChunk[Color]()
	_, ok := c.At(-1, 0, 0)
	assert.False(t, ok)
	_, ok = c.At(0, ChunkSize, 0)
	assert.False(t, ok)
	assert.False(t, c.Set(0, 0, ChunkSize, Color{A: 1}))
	assert.False(t, Contains[Color](c, 16, 16, 16))
	assert.True(t, Contains[Color](c, 15, 15, 15))
}

func TestChunkFromShortSeqLeavesZeros(t *testing.T) {
	c := NewChunkFromSeq(slices.Values([]int{7, 8}))
	v, _ := c.At(0, 0, 0)
	assert.Equal(t, 7, v)
	v, _ = c.At(0, 0, 1)
	assert.Equal(t, 8, v)
	v, _ = c.At(0, 0, 2)
	assert.Equal(t, 0, v)
}

func TestDynamicChunkIndexing(t *testing.T) {
	c := NewDynamicChunkFromSeq(2, 3, 4, slices.Values([]int{
		0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11,
		12, 13, 14, 15, 16, 17, 18, 19, 20, 21, 22, 23,
	}))
	assert.Equal(t, 24, c.Len())
	assert.Equal(t, Range{0, 2}, c.DimX())

	v, ok := c.At(1, 2, 3)
	require.True(t, ok)
	assert.Equal(t, 23, v)

	v, _ = c.At(1, 0, 0)
	assert.Equal(t, 12, v)

	_, ok = c.At(2, 0, 0)
	assert.False(t, ok)
}

func TestDynamicChunkNegativeDims(t *testing.T) {
	c := NewDynamicChunk[int](-1, 4, 4)
	assert.Equal(t, 0, c.Len())
	assert.Empty(t, slices.Collect(c.All()))
}

func TestVolumeLayout(t *testing.T) {
	c := NewDynamicChunk[Color](1, 2, 3)
	c.Set(0, 1, 2, Color{R: 9, A: 255})

	vol := Volume(c)
	assert.Equal(t, uint32(3), vol.Width)
	assert.Equal(t, uint32(2), vol.Height)
	assert.Equal(t, uint32(1), vol.Depth)
	require.NoError(t, vol.Validate())

	last := len(vol.Voxels) - 4
	assert.Equal(t, []byte{9, 0, 0, 255}, vol.Voxels[last:])
}

func TestFilled(t *testing.T) {
	c := NewChunk[Color]()
	assert.False(t, Filled(c))
	c.Set(3, 3, 3, Color{A: 1})
	assert.True(t, Filled(c))
}
