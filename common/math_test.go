package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMul4Identity(t *testing.T) {
	var id [16]float32
	Identity(id[:])
	m := [16]float32{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16}

	var out [16]float32
	Mul4(out[:], id[:], m[:])
	assert.Equal(t, m, out)

	Mul4(out[:], m[:], id[:])
	assert.Equal(t, m, out)
}

func TestInvert4RoundTrip(t *testing.T) {
	var p [16]float32
	Perspective(p[:], 1.2, 1.5, 0.01, 10000)

	var inv, product [16]float32
	require.True(t, Invert4(inv[:], p[:]))
	Mul4(product[:], p[:], inv[:])

	var id [16]float32
	Identity(id[:])
	for i := range id {
		assert.InDelta(t, id[i], product[i], 1e-3, "element %d", i)
	}
}

func TestInvert4Singular(t *testing.T) {
	var zero, out [16]float32
	out[0] = 7
	assert.False(t, Invert4(out[:], zero[:]))
	assert.Equal(t, float32(7), out[0])
}

func TestPerspectiveDepthRange(t *testing.T) {
	var p [16]float32
	Perspective(p[:], 1.3962634, 1, 0.01, 10000)

	_, _, zNear := TransformPoint(p[:], 0, 0, -0.01)
	_, _, zFar := TransformPoint(p[:], 0, 0, -10000)
	assert.InDelta(t, 0, zNear, 1e-5)
	assert.InDelta(t, 1, zFar, 1e-4)
}

func TestLookAtMovesEyeToOrigin(t *testing.T) {
	var v [16]float32
	LookAt(v[:], 3, 4, 5, 4, 4, 5, 0, 1, 0)

	x, y, z := TransformPoint(v[:], 3, 4, 5)
	assert.InDelta(t, 0, x, 1e-5)
	assert.InDelta(t, 0, y, 1e-5)
	assert.InDelta(t, 0, z, 1e-5)

	// the target sits on the -Z axis of view space
	_, _, tz := TransformPoint(v[:], 4, 4, 5)
	assert.InDelta(t, -1, tz, 1e-5)
}

func TestSliceToBytes(t *testing.T) {
	assert.Nil(t, SliceToBytes([]float32{}))
	b := SliceToBytes([]uint32{1, 2})
	assert.Len(t, b, 8)
	assert.Equal(t, byte(1), b[0])
	assert.Equal(t, byte(2), b[4])
}

func TestNextPowerOfTwoAbove(t *testing.T) {
	cases := map[uint32]uint32{0: 1, 1: 2, 2: 4, 3: 4, 4: 8, 1000: 1024, 1024: 2048}
	for in, want := range cases {
		assert.Equal(t, want, NextPowerOfTwoAbove(in), "input %d", in)
	}
}

func TestCoalesce(t *testing.T) {
	assert.Equal(t, 3, Coalesce(0, 3, 4))
	assert.Equal(t, "", Coalesce("", ""))
}

func TestVolumeValidate(t *testing.T) {
	assert.NoError(t, VolumeStagingData{Voxels: make([]byte, 2*3*4*4), Width: 2, Height: 3, Depth: 4}.Validate())
	assert.Error(t, VolumeStagingData{Voxels: make([]byte, 4), Width: 0, Height: 1, Depth: 1}.Validate())
	assert.Error(t, VolumeStagingData{Voxels: make([]byte, 3), Width: 1, Height: 1, Depth: 1}.Validate())
}
