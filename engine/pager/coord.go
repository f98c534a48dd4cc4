package pager

import (
	"github.com/Carmen-Shannon/vtrace-go/engine/voxel"
)

// ChunkCoord addresses a chunk in the world grid. World voxel (x, y, z) lives in the chunk
// floor(x/16), floor(y/16), floor(z/16).
type ChunkCoord struct {
	X, Y, Z int32
}

// ChunkCoordOf returns the chunk containing the world-space point (x, y, z).
func ChunkCoordOf(x, y, z float32) ChunkCoord {
	return ChunkCoord{X: floorDiv(x), Y: floorDiv(y), Z: floorDiv(z)}
}

// Origin returns the world-space position of the chunk's minimum corner.
func (c ChunkCoord) Origin() [3]float32 {
	return [3]float32{
		float32(c.X) * voxel.ChunkSize,
		float32(c.Y) * voxel.ChunkSize,
		float32(c.Z) * voxel.ChunkSize,
	}
}

// Bounds returns the axis-aligned world-space box covered by the chunk.
//
// Returns:
//   - [3]float32: the minimum corner
//   - [3]float32: the maximum corner
func (c ChunkCoord) Bounds() ([3]float32, [3]float32) {
	min := c.Origin()
	return min, [3]float32{min[0] + voxel.ChunkSize, min[1] + voxel.ChunkSize, min[2] + voxel.ChunkSize}
}

// DistanceSq returns the squared chunk-grid distance between c and o.
func (c ChunkCoord) DistanceSq(o ChunkCoord) int64 {
	dx, dy, dz := int64(c.X-o.X), int64(c.Y-o.Y), int64(c.Z-o.Z)
	return dx*dx + dy*dy + dz*dz
}

// Less orders coordinates by X, then Y, then Z.
func (c ChunkCoord) Less(o ChunkCoord) bool {
	if c.X != o.X {
		return c.X < o.X
	}
	if c.Y != o.Y {
		return c.Y < o.Y
	}
	return c.Z < o.Z
}

func floorDiv(v float32) int32 {
	q := int32(v / voxel.ChunkSize)
	if v < 0 && float32(q)*voxel.ChunkSize != v {
		q--
	}
	return q
}
