package scene

import (
	"testing"

	"github.com/Carmen-Shannon/vtrace-go/engine/renderer"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmptyGraphFlattensToNothing(t *testing.T) {
	g := NewGraph()
	assert.False(t, g.IsLeaf())
	assert.Equal(t, mgl32.Ident4(), g.Model())

	out := g.Flatten()
	assert.NotNil(t, out)
	assert.Empty(t, out)
}

func TestFlattenAccumulatesTransforms(t *testing.T) {
	root := NewParent(mgl32.Translate3D(10, 0, 0))
	group := NewParent(mgl32.Scale3D(2, 2, 2), NewLeaf(mgl32.Translate3D(1, 0, 0), 3))
	root.AddChild(group)
	root.AddChild(NewLeaf(mgl32.Ident4(), 1))

	out := root.Flatten()
	require.Len(t, out, 2)

	// Depth-first: the grouped leaf comes before the sibling leaf.
	assert.Equal(t, uint32(3), out[0].TextureID)
	p := out[0].Model.Mul4x1(mgl32.Vec4{0, 0, 0, 1})
	assert.InDelta(t, 12, p.X(), 1e-5)

	assert.Equal(t, uint32(1), out[1].TextureID)
	assert.True(t, out[1].Model.ApproxEqual(mgl32.Translate3D(10, 0, 0)))
}

func TestAddChildPromotesLeaf(t *testing.T) {
	model := mgl32.Translate3D(0, 5, 0)
	n := NewLeaf(model, 7)
	child := NewLeaf(mgl32.Translate3D(1, 0, 0), 9)
	n.AddChild(child)

	require.False(t, n.IsLeaf())
	assert.Equal(t, model, n.Model())
	assert.Equal(t, uint32(0), n.TextureID())
	require.Len(t, n.Children(), 2)

	first := n.Children()[0]
	assert.True(t, first.IsLeaf())
	assert.Equal(t, mgl32.Ident4(), first.Model())
	assert.Equal(t, uint32(7), first.TextureID())
	assert.Same(t, child, n.Children()[1])

	out := n.Flatten()
	require.Len(t, out, 2)
	assert.True(t, out[0].Model.ApproxEqual(model))
	assert.True(t, out[1].Model.ApproxEqual(mgl32.Translate3D(1, 5, 0)))

	n.AddChild(nil)
	assert.Len(t, n.Children(), 2)
}

func TestBatches(t *testing.T) {
	id := mgl32.Ident4()
	instances := []Instance{
		{Model: mgl32.Translate3D(1, 0, 0), TextureID: 2},
		{Model: id, TextureID: 0},
		{Model: mgl32.Translate3D(2, 0, 0), TextureID: 2},
		{Model: id, TextureID: 1},
	}
	batches := Batches(instances)

	assert.Equal(t, []renderer.InstanceBatch{
		{TextureID: 0, First: 0, Count: 1},
		{TextureID: 1, First: 1, Count: 1},
		{TextureID: 2, First: 2, Count: 2},
	}, batches)
	// Stable: original order of texture 2 instances is kept.
	assert.Equal(t, mgl32.Translate3D(1, 0, 0), instances[2].Model)
	assert.Equal(t, mgl32.Translate3D(2, 0, 0), instances[3].Model)

	assert.Empty(t, Batches(nil))
}

func TestGPUInstancesAndChunkTransform(t *testing.T) {
	m := ChunkTransform([3]float32{16, 0, -32}, 8)
	lo := m.Mul4x1(mgl32.Vec4{-1, -1, -1, 1})
	hi := m.Mul4x1(mgl32.Vec4{1, 1, 1, 1})
	assert.True(t, lo.Vec3().ApproxEqual(mgl32.Vec3{16, 0, -32}))
	assert.True(t, hi.Vec3().ApproxEqual(mgl32.Vec3{32, 16, -16}))

	gpu := GPUInstances([]Instance{{Model: m, TextureID: 4}})
	require.Len(t, gpu, 1)
	prod := mgl32.Mat4(gpu[0].Model).Mul4(mgl32.Mat4(gpu[0].InverseModel))
	assert.True(t, prod.ApproxEqualThreshold(mgl32.Ident4(), 1e-4))
}
