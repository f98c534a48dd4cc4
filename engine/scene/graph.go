package scene

import (
	"slices"

	"github.com/Carmen-Shannon/vtrace-go/engine/renderer"
	"github.com/go-gl/mathgl/mgl32"
)

// Node is one element of a scene graph. A node is either a parent grouping children under a
// shared transform, or a leaf referencing a voxel texture.
type Node struct {
	model     mgl32.Mat4
	children  []*Node
	textureID uint32
	leaf      bool
}

// Instance is a flattened leaf: its accumulated world transform and texture.
type Instance struct {
	Model     mgl32.Mat4
	TextureID uint32
}

// NewGraph returns an empty root parent with an identity transform.
func NewGraph() *Node {
	return NewParent(mgl32.Ident4())
}

// NewLeaf creates a leaf node drawing textureID with the given model transform.
func NewLeaf(model mgl32.Mat4, textureID uint32) *Node {
	return &Node{model: model, textureID: textureID, leaf: true}
}

// NewParent creates a parent node with the given model transform and initial children.
func NewParent(model mgl32.Mat4, children ...*Node) *Node {
	return &Node{model: model, children: slices.Clone(children)}
}

// Model returns the node's local transform.
func (n *Node) Model() mgl32.Mat4 { return n.model }

// SetModel replaces the node's local transform.
func (n *Node) SetModel(m mgl32.Mat4) { n.model = m }

// IsLeaf reports whether n is a leaf.
func (n *Node) IsLeaf() bool { return n.leaf }

// TextureID returns the texture of a leaf. Parents return 0.
func (n *Node) TextureID() uint32 {
	if !n.leaf {
		return 0
	}
	return n.textureID
}

// Children returns the node's children in draw order.
func (n *Node) Children() []*Node { return n.children }

// AddChild appends child to n.
//
// Adding to a leaf converts it in place into a parent that keeps the leaf's transform. The leaf's
// own texture becomes the first child under an identity transform, followed by child.
//
// Parameters:
//   - child: the node to attach; nil is ignored
func (n *Node) AddChild(child *Node) {
	if child == nil {
		return
	}
	if n.leaf {
		n.children = []*Node{NewLeaf(mgl32.Ident4(), n.textureID), child}
		n.textureID = 0
		n.leaf = false
		return
	}
	n.children = append(n.children, child)
}

// Flatten walks the graph depth-first in child order and returns one Instance per leaf, with
// each leaf's world transform being the product of every ancestor's model and its own.
//
// Returns:
//   - []Instance: the flattened leaves; empty for a graph without leaves
func (n *Node) Flatten() []Instance {
	out := make([]Instance, 0)
	n.flatten(mgl32.Ident4(), &out)
	return out
}

func (n *Node) flatten(parent mgl32.Mat4, out *[]Instance) {
	world := parent.Mul4(n.model)
	if n.leaf {
		*out = append(*out, Instance{Model: world, TextureID: n.textureID})
		return
	}
	for _, c := range n.children {
		c.flatten(world, out)
	}
}

// Batches stably sorts instances by texture and returns one batch per contiguous texture run.
// The slice is sorted in place so batch offsets index directly into it.
//
// Parameters:
//   - instances: the flattened instances
//
// Returns:
//   - []renderer.InstanceBatch: runs of instances sharing a texture, ascending by texture ID
func Batches(instances []Instance) []renderer.InstanceBatch {
	slices.SortStableFunc(instances, func(a, b Instance) int {
		switch {
		case a.TextureID < b.TextureID:
			return -1
		case a.TextureID > b.TextureID:
			return 1
		}
		return 0
	})

	var batches []renderer.InstanceBatch
	for i, inst := range instances {
		if len(batches) > 0 && batches[len(batches)-1].TextureID == inst.TextureID {
			batches[len(batches)-1].Count++
			continue
		}
		batches = append(batches, renderer.InstanceBatch{TextureID: inst.TextureID, First: uint32(i), Count: 1})
	}
	return batches
}

// GPUInstances converts instances into their GPU layout, computing each inverse model matrix.
func GPUInstances(instances []Instance) []renderer.GPUInstance {
	out := make([]renderer.GPUInstance, len(instances))
	for i, inst := range instances {
		out[i] = renderer.GPUInstance{Model: inst.Model, InverseModel: inst.Model.Inv()}
	}
	return out
}

// ChunkTransform returns the model matrix that maps the cube [-1, 1]^3 onto the box of edge
// 2*half whose minimum corner is origin.
func ChunkTransform(origin [3]float32, half float32) mgl32.Mat4 {
	return mgl32.Translate3D(origin[0]+half, origin[1]+half, origin[2]+half).Mul4(mgl32.Scale3D(half, half, half))
}
