package voxel

// Color is an 8-bit RGBA voxel value. A zero alpha marks an empty voxel.
type Color struct {
	R, G, B, A uint8
}

// Transparent is the empty voxel.
var Transparent = Color{}

// ColorFromPacked decodes a little-endian packed RGBA value (0xAABBGGRR).
//
// Parameters:
//   - packed: the packed color
//
// Returns:
//   - Color: the decoded color
func ColorFromPacked(packed uint32) Color {
	return Color{
		R: uint8(packed),
		G: uint8(packed >> 8),
		B: uint8(packed >> 16),
		A: uint8(packed >> 24),
	}
}

// Packed encodes the color as little-endian RGBA (0xAABBGGRR).
func (c Color) Packed() uint32 {
	return uint32(c.R) | uint32(c.G)<<8 | uint32(c.B)<<16 | uint32(c.A)<<24
}

// Filled reports whether the voxel is occupied.
func (c Color) Filled() bool {
	return c.A != 0
}

// Scale multiplies the color channels by tone and returns an opaque color.
// tone is clamped to [0, 1].
//
// Parameters:
//   - tone: brightness factor
//
// Returns:
//   - Color: the scaled, fully opaque color
func (c Color) Scale(tone float64) Color {
	tone = min(max(tone, 0), 1)
	return Color{
		R: uint8(float64(c.R) * tone),
		G: uint8(float64(c.G) * tone),
		B: uint8(float64(c.B) * tone),
		A: 255,
	}
}
