package voxel

import "iter"

// ChunkSize is the edge length of a terrain chunk in voxels.
const ChunkSize = 16

const chunkVolume = ChunkSize * ChunkSize * ChunkSize

// Chunk is a fixed ChunkSize^3 voxel grid stored inline.
type Chunk[T any] struct {
	data [chunkVolume]T
}

var _ Format[Color] = &Chunk[Color]{}

// NewChunk returns a zero-filled chunk.
func NewChunk[T any]() *Chunk[T] {
	return &Chunk[T]{}
}

// NewChunkFromSeq fills a chunk in storage order from seq. Missing values stay zero and
// surplus values are ignored.
//
// Parameters:
//   - seq: values in x-major, then y, then z order
//
// Returns:
//   - *Chunk[T]: the filled chunk
func NewChunkFromSeq[T any](seq iter.Seq[T]) *Chunk[T] {
	c := &Chunk[T]{}
	i := 0
	for v := range seq {
		if i >= chunkVolume {
			break
		}
		c.data[i] = v
		i++
	}
	return c
}

func (c *Chunk[T]) DimX() Range { return Range{0, ChunkSize} }
func (c *Chunk[T]) DimY() Range { return Range{0, ChunkSize} }
func (c *Chunk[T]) DimZ() Range { return Range{0, ChunkSize} }
func (c *Chunk[T]) Len() int    { return chunkVolume }

func (c *Chunk[T]) At(x, y, z int) (T, bool) {
	if !Contains[T](c, x, y, z) {
		var zero T
		return zero, false
	}
	return c.data[index(x, y, z, ChunkSize, ChunkSize)], true
}

func (c *Chunk[T]) Set(x, y, z int, v T) bool {
	if !Contains[T](c, x, y, z) {
		return false
	}
	c.data[index(x, y, z, ChunkSize, ChunkSize)] = v
	return true
}

func (c *Chunk[T]) All() iter.Seq[T] {
	return func(yield func(T) bool) {
		for i := range c.data {
			if !yield(c.data[i]) {
				return
			}
		}
	}
}

// DynamicChunk is a voxel grid whose dimensions are chosen at runtime.
type DynamicChunk[T any] struct {
	dx, dy, dz int
	data       []T
}

var _ Format[Color] = &DynamicChunk[Color]{}

// NewDynamicChunk returns a zero-filled grid of dx by dy by dz voxels.
// Negative dimensions are treated as zero.
func NewDynamicChunk[T any](dx, dy, dz int) *DynamicChunk[T] {
	dx, dy, dz = max(dx, 0), max(dy, 0), max(dz, 0)
	return &DynamicChunk[T]{dx: dx, dy: dy, dz: dz, data: make([]T, dx*dy*dz)}
}

// NewDynamicChunkFromSeq fills a dx by dy by dz grid in storage order from seq.
func NewDynamicChunkFromSeq[T any](dx, dy, dz int, seq iter.Seq[T]) *DynamicChunk[T] {
	c := NewDynamicChunk[T](dx, dy, dz)
	i := 0
	for v := range seq {
		if i >= len(c.data) {
			break
		}
		c.data[i] = v
		i++
	}
	return c
}

func (c *DynamicChunk[T]) DimX() Range { return Range{0, c.dx} }
func (c *DynamicChunk[T]) DimY() Range { return Range{0, c.dy} }
func (c *DynamicChunk[T]) DimZ() Range { return Range{0, c.dz} }
func (c *DynamicChunk[T]) Len() int    { return len(c.data) }

func (c *DynamicChunk[T]) At(x, y, z int) (T, bool) {
	if !Contains[T](c, x, y, z) {
		var zero T
		return zero, false
	}
	return c.data[index(x, y, z, c.dy, c.dz)], true
}

func (c *DynamicChunk[T]) Set(x, y, z int, v T) bool {
	if !Contains[T](c, x, y, z) {
		return false
	}
	c.data[index(x, y, z, c.dy, c.dz)] = v
	return true
}

func (c *DynamicChunk[T]) All() iter.Seq[T] {
	return func(yield func(T) bool) {
		for _, v := range c.data {
			if !yield(v) {
				return
			}
		}
	}
}
