package renderer

import (
	"encoding/binary"
	"math"
	"unsafe"
)

// GPUInstance is the per-instance vertex data of the raymarch pipeline.
// Matches the WGSL InstanceInput struct: eight vec4<f32> columns at locations 1 to 8.
// Size: 128 bytes.
type GPUInstance struct {
	Model        [16]float32 // offset  0: column-major object-to-world matrix (64 bytes)
	InverseModel [16]float32 // offset 64: column-major world-to-object matrix (64 bytes)
}

// Size returns the size of the GPUInstance struct in bytes.
//
// Returns:
//   - int: the size of the struct in bytes.
func (g *GPUInstance) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUInstance struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 128-byte buffer ready for GPU upload.
func (g *GPUInstance) Marshal() []byte {
	buf := make([]byte, 128)
	g.marshalInto(buf)
	return buf
}

func (g *GPUInstance) marshalInto(buf []byte) {
	for i, v := range g.Model {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
	}
	for i, v := range g.InverseModel {
		binary.LittleEndian.PutUint32(buf[64+i*4:], math.Float32bits(v))
	}
}

// MarshalInstances packs instances back to back for an instance vertex buffer.
//
// Parameters:
//   - instances: the instances in draw order
//
// Returns:
//   - []byte: len(instances)*128 bytes
func MarshalInstances(instances []GPUInstance) []byte {
	buf := make([]byte, len(instances)*GPUInstanceSize)
	for i := range instances {
		instances[i].marshalInto(buf[i*GPUInstanceSize:])
	}
	return buf
}

// GPUInstanceSize is the byte stride of one GPUInstance in the instance buffer.
const GPUInstanceSize = 128

// InstanceBatch is a run of consecutive instances drawn with the same volume texture.
type InstanceBatch struct {
	// TextureID is the ID returned by Renderer.AddTexture.
	TextureID uint32
	// First is the index of the first instance in the instance buffer.
	First uint32
	// Count is the number of instances in the run.
	Count uint32
}
