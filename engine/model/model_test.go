package model

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCubeWindsOutward(t *testing.T) {
	cube := NewCube()
	require.Equal(t, 36, cube.IndexCount())
	v := cube.Vertices()
	idx := cube.Indices()

	for tri := 0; tri < len(idx); tri += 3 {
		a, b, c := v[idx[tri]].Position, v[idx[tri+1]].Position, v[idx[tri+2]].Position
		e1 := [3]float32{b[0] - a[0], b[1] - a[1], b[2] - a[2]}
		e2 := [3]float32{c[0] - a[0], c[1] - a[1], c[2] - a[2]}
		n := [3]float32{
			e1[1]*e2[2] - e1[2]*e2[1],
			e1[2]*e2[0] - e1[0]*e2[2],
			e1[0]*e2[1] - e1[1]*e2[0],
		}
		centroid := [3]float32{(a[0] + b[0] + c[0]) / 3, (a[1] + b[1] + c[1]) / 3, (a[2] + b[2] + c[2]) / 3}
		dot := n[0]*centroid[0] + n[1]*centroid[1] + n[2]*centroid[2]
		assert.Greater(t, dot, float32(0), "triangle %d faces inward", tri/3)
	}
}

func TestCubeBuffers(t *testing.T) {
	cube := NewCube()

	vd := cube.VertexData()
	require.Len(t, vd, 8*12)
	// Corner 7 is (+1, +1, +1).
	for i := 0; i < 3; i++ {
		bits := binary.LittleEndian.Uint32(vd[7*12+i*4:])
		assert.Equal(t, float32(1), math.Float32frombits(bits))
	}

	id := cube.IndexData()
	require.Len(t, id, 36*4)
	assert.Equal(t, uint32(5), binary.LittleEndian.Uint32(id[0:]))
	assert.Equal(t, uint32(3), binary.LittleEndian.Uint32(id[35*4:]))

	assert.Equal(t, "cube", cube.Name())
	assert.Equal(t, "cube", cube.MeshProvider().Label())
	assert.Equal(t, 36, cube.MeshProvider().IndexCount())
}

func TestModelOptions(t *testing.T) {
	m := NewModel("tri", []GPUVertex{{}, {}, {}}, []uint32{0, 1, 2}, WithName("renamed"))
	assert.Equal(t, "renamed", m.Name())
	assert.Equal(t, 3, m.IndexCount())
	assert.Equal(t, 12, (&GPUVertex{}).Size())
}
