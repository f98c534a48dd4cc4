package model

import (
	"github.com/Carmen-Shannon/vtrace-go/engine/renderer/bind_group_provider"
)

// model is the implementation of the Model interface.
type model struct {
	name         string
	vertices     []GPUVertex
	indices      []uint32
	meshProvider bind_group_provider.BindGroupProvider
}

// Model is an indexed triangle mesh with the provider that holds its GPU buffers once uploaded.
// The engine draws every voxel volume with the same cube model, scaled and placed per instance.
type Model interface {
	// Name retrieves the model identifier.
	//
	// Returns:
	//   - string: the model name
	Name() string

	// Vertices returns the mesh vertices.
	Vertices() []GPUVertex

	// Indices returns the triangle list indices, three per triangle.
	Indices() []uint32

	// VertexData returns the vertices packed for a vertex buffer.
	//
	// Returns:
	//   - []byte: len(Vertices())*12 bytes
	VertexData() []byte

	// IndexData returns the indices packed for a Uint32 index buffer.
	//
	// Returns:
	//   - []byte: len(Indices())*4 bytes
	IndexData() []byte

	// IndexCount returns the number of indices drawn per instance.
	IndexCount() int

	// MeshProvider retrieves the provider holding the uploaded vertex and index buffers.
	//
	// Returns:
	//   - bind_group_provider.BindGroupProvider: the mesh provider
	MeshProvider() bind_group_provider.BindGroupProvider
}

var _ Model = &model{}

// NewModel creates a model from explicit vertex and index data.
//
// Parameters:
//   - name: the model identifier, also used as the mesh provider's label
//   - vertices: the mesh vertices
//   - indices: triangle list indices into vertices
//   - options: builder options
//
// Returns:
//   - Model: the model
func NewModel(name string, vertices []GPUVertex, indices []uint32, options ...ModelBuilderOption) Model {
	m := &model{
		name:     name,
		vertices: vertices,
		indices:  indices,
	}
	for _, opt := range options {
		opt(m)
	}
	if m.meshProvider == nil {
		m.meshProvider = bind_group_provider.NewBindGroupProvider(m.name, bind_group_provider.WithIndexCount(len(indices)))
	}
	return m
}

// cubeCorners are indexed by bit pattern: bit 0 is +x, bit 1 is +y, bit 2 is +z.
var cubeCorners = [8][3]float32{
	{-1, -1, -1}, {1, -1, -1}, {-1, 1, -1}, {1, 1, -1},
	{-1, -1, 1}, {1, -1, 1}, {-1, 1, 1}, {1, 1, 1},
}

// cubeIndices wind counter-clockwise when each face is seen from outside.
var cubeIndices = []uint32{
	5, 1, 3, 5, 3, 7, // +x
	0, 4, 6, 0, 6, 2, // -x
	6, 7, 3, 6, 3, 2, // +y
	0, 1, 5, 0, 5, 4, // -y
	4, 5, 7, 4, 7, 6, // +z
	1, 0, 2, 1, 2, 3, // -z
}

// NewCube creates the unit cube spanning [-1, 1] on every axis.
//
// Parameters:
//   - options: builder options
//
// Returns:
//   - Model: a 12-triangle cube named "cube"
func NewCube(options ...ModelBuilderOption) Model {
	vertices := make([]GPUVertex, len(cubeCorners))
	for i, c := range cubeCorners {
		vertices[i] = GPUVertex{Position: c}
	}
	return NewModel("cube", vertices, append([]uint32(nil), cubeIndices...), options...)
}

func (m *model) Name() string {
	return m.name
}

func (m *model) Vertices() []GPUVertex {
	return m.vertices
}

func (m *model) Indices() []uint32 {
	return m.indices
}

func (m *model) VertexData() []byte {
	return MarshalVertices(m.vertices)
}

func (m *model) IndexData() []byte {
	return MarshalIndices(m.indices)
}

func (m *model) IndexCount() int {
	return len(m.indices)
}

func (m *model) MeshProvider() bind_group_provider.BindGroupProvider {
	return m.meshProvider
}
