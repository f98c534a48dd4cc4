// package common contains common types that are used throughout this engine. They are not interface-wrapped structs, just plain structs that express
// commonly used data-types.
package common

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
)

// VolumeStagingData holds RGBA voxel data for a 3D texture pending GPU upload.
// Voxels are laid out x-fastest, then y (rows), then z (slices), 4 bytes per voxel.
type VolumeStagingData struct {
	// Voxels is the packed RGBA data, Width*Height*Depth*4 bytes long.
	Voxels []byte
	// Width is the extent along the fastest-varying axis.
	Width uint32
	// Height is the number of rows per slice.
	Height uint32
	// Depth is the number of slices.
	Depth uint32
}

// Validate checks that the volume has non-zero extents and that the voxel slice matches them.
//
// Returns:
//   - error: a descriptive error if the volume is malformed, nil otherwise
func (v VolumeStagingData) Validate() error {
	if v.Width == 0 || v.Height == 0 || v.Depth == 0 {
		return fmt.Errorf("volume has zero extent %dx%dx%d", v.Width, v.Height, v.Depth)
	}
	want := uint64(v.Width) * uint64(v.Height) * uint64(v.Depth) * 4
	if uint64(len(v.Voxels)) != want {
		return fmt.Errorf("volume %dx%dx%d expects %d bytes, got %d", v.Width, v.Height, v.Depth, want, len(v.Voxels))
	}
	return nil
}

// SamplerStagingData holds the configuration for a sampler binding pending GPU creation.
// Zero fields fall back to the renderer defaults.
type SamplerStagingData struct {
	// AddressModeU, AddressModeV, AddressModeW specify the addressing mode outside [0, 1] per axis.
	AddressModeU, AddressModeV, AddressModeW wgpu.AddressMode
	// MagFilter and MinFilter specify the filtering mode for magnification and minification.
	MagFilter, MinFilter wgpu.FilterMode
	// MipmapFilter specifies the filtering mode for mipmap level selection.
	MipmapFilter wgpu.MipmapFilterMode
	// LodMinClamp and LodMaxClamp bound the sampled level of detail.
	LodMinClamp, LodMaxClamp float32
	// MaxAnisotropy specifies the maximum anisotropy level.
	MaxAnisotropy uint16
}
