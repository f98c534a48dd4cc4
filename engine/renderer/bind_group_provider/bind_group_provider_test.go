package bind_group_provider

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewBindGroupProvider(t *testing.T) {
	p := NewBindGroupProvider("cube", WithIndexCount(36), WithCapacity(8))

	assert.Equal(t, "cube", p.Label())
	assert.Equal(t, 36, p.IndexCount())
	assert.Equal(t, 8, p.Capacity())
	assert.Nil(t, p.BindGroup())
	assert.Nil(t, p.Buffer(0))
	assert.Nil(t, p.Texture(0))
	assert.Nil(t, p.TextureView(0))
	assert.Nil(t, p.Sampler(1))
	assert.Nil(t, p.VertexBuffer())
	assert.Nil(t, p.IndexBuffer())
}

func TestReleaseResetsCounts(t *testing.T) {
	p := NewBindGroupProvider("instances", WithCapacity(-1))
	assert.Equal(t, 0, p.Capacity())

	p.SetCapacity(64)
	p.SetIndexCount(12)
	p.SetBuffer(0, nil)
	p.Release()

	assert.Equal(t, 0, p.Capacity())
	assert.Equal(t, 0, p.IndexCount())
	assert.Nil(t, p.Buffer(0))
}
