package voxel

import (
	"iter"

	"github.com/Carmen-Shannon/vtrace-go/common"
)

// Range is a half-open integer interval [Min, Max).
type Range struct {
	Min, Max int
}

// Len returns the number of integers in the range.
func (r Range) Len() int {
	return max(r.Max-r.Min, 0)
}

// Contains reports whether v lies inside the range.
func (r Range) Contains(v int) bool {
	return v >= r.Min && v < r.Max
}

// Format is a bounded 3D grid of voxels of type T.
//
// Coordinates are always given as (x, y, z) with x the slowest-varying axis in storage.
// Implementations never panic on out-of-range coordinates.
type Format[T any] interface {
	// DimX returns the valid range along the first axis.
	//
	// Returns:
	//   - Range: the half-open coordinate range
	DimX() Range

	// DimY returns the valid range along the second axis.
	//
	// Returns:
	//   - Range: the half-open coordinate range
	DimY() Range

	// DimZ returns the valid range along the third, fastest-varying axis.
	//
	// Returns:
	//   - Range: the half-open coordinate range
	DimZ() Range

	// At returns the voxel at (x, y, z).
	//
	// Parameters:
	//   - x, y, z: voxel coordinates
	//
	// Returns:
	//   - T: the voxel value, or the zero value when out of range
	//   - bool: false if the coordinates are out of range
	At(x, y, z int) (T, bool)

	// Set stores v at (x, y, z).
	//
	// Parameters:
	//   - x, y, z: voxel coordinates
	//   - v: the value to store
	//
	// Returns:
	//   - bool: false if the coordinates are out of range and nothing was written
	Set(x, y, z int, v T) bool

	// All iterates every voxel in storage order: x-major, then y, then z.
	//
	// Returns:
	//   - iter.Seq[T]: the voxel sequence
	All() iter.Seq[T]

	// Len returns the total number of voxels.
	//
	// Returns:
	//   - int: DimX().Len() * DimY().Len() * DimZ().Len()
	Len() int
}

// Contains reports whether (x, y, z) is addressable in f.
func Contains[T any](f Format[T], x, y, z int) bool {
	return f.DimX().Contains(x) && f.DimY().Contains(y) && f.DimZ().Contains(z)
}

// Filled reports whether any voxel in f is occupied.
func Filled(f Format[Color]) bool {
	for c := range f.All() {
		if c.Filled() {
			return true
		}
	}
	return false
}

// Volume packs a color grid into RGBA bytes in storage order. The fastest axis (z) becomes the
// texture width and the slowest (x) its depth, so a grid addressed (z, y, x) uploads as an
// x-fastest texture aligned with world axes.
//
// Parameters:
//   - f: the color grid to pack
//
// Returns:
//   - common.VolumeStagingData: the staging data ready for Renderer.AddTexture
func Volume(f Format[Color]) common.VolumeStagingData {
	out := common.VolumeStagingData{
		Voxels: make([]byte, 0, f.Len()*4),
		Width:  uint32(f.DimZ().Len()),
		Height: uint32(f.DimY().Len()),
		Depth:  uint32(f.DimX().Len()),
	}
	for c := range f.All() {
		out.Voxels = append(out.Voxels, c.R, c.G, c.B, c.A)
	}
	return out
}

// index maps (x, y, z) to a linear offset for grids of size dy-by-dz in the two fast axes.
func index(x, y, z, dy, dz int) int {
	return z + dz*(y+dy*x)
}
