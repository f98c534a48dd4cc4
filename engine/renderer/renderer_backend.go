package renderer

import (
	"github.com/Carmen-Shannon/vtrace-go/common"
	"github.com/Carmen-Shannon/vtrace-go/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/vtrace-go/engine/renderer/pipeline"
	"github.com/cogentcore/webgpu/wgpu"
)

// RendererBackendType identifies the GPU backend implementation used by the Renderer.
type RendererBackendType int

const (
	// BackendTypeWGPU selects the WebGPU-based rendering backend.
	BackendTypeWGPU RendererBackendType = iota
)

// PresentMode controls how rendered frames are presented to the display surface.
type PresentMode int

const (
	// PresentModeVSync waits for the next vertical blank before presenting, capping frame rate
	// to the monitor's refresh rate. Eliminates tearing.
	PresentModeVSync PresentMode = iota

	// PresentModeUncapped presents frames immediately without waiting for vertical blank.
	// May cause screen tearing but provides the lowest latency.
	PresentModeUncapped
)

// MSAASampleCount controls the number of samples used for multisample anti-aliasing (MSAA).
// WebGPU guarantees support for 1 (off) and 4.
type MSAASampleCount uint32

const (
	// MSAAOff disables multisample anti-aliasing (sample count 1). This is the default.
	MSAAOff MSAASampleCount = 1

	// MSAA4x enables 4x multisample anti-aliasing.
	MSAA4x MSAASampleCount = 4
)

// RendererBackend is the GPU API seam of the Renderer. The Renderer owns IDs, capacities and
// validation; the backend only creates, writes and draws GPU objects, storing what it creates
// on the providers it is handed.
type RendererBackend interface {
	// ConfigureSurface (re)configures the swapchain and the depth and MSAA attachments.
	//
	// Parameters:
	//   - width: surface width in pixels
	//   - height: surface height in pixels
	//
	// Returns:
	//   - error: if the surface has no usable format or an attachment cannot be created
	ConfigureSurface(width, height int) error

	// SetPresentMode selects the present mode used by the next ConfigureSurface.
	SetPresentMode(mode PresentMode)

	// RegisterRenderPipeline creates the GPU pipeline and its bind group layouts and stores them on p.
	//
	// Parameters:
	//   - p: the pipeline description with vertex and fragment shaders set
	//
	// Returns:
	//   - error: if either stage is missing or GPU creation fails
	RegisterRenderPipeline(p pipeline.Pipeline) error

	// InitMeshBuffers uploads vertex and index data into new buffers on provider. Both must be non-empty.
	InitMeshBuffers(provider bind_group_provider.BindGroupProvider, vertexData, indexData []byte, indexCount int) error

	// InitBindGroup creates the bind group described by descriptor. Uniform bindings without a
	// buffer get one of the entry's MinBindingSize; every other binding must already be set.
	InitBindGroup(provider bind_group_provider.BindGroupProvider, descriptor wgpu.BindGroupLayoutDescriptor) error

	// InitVolumeTexture uploads a 3D RGBA8 texture and stores it with its view at binding.
	InitVolumeTexture(provider bind_group_provider.BindGroupProvider, binding int, volume common.VolumeStagingData) error

	// InitSampler creates a sampler at binding.
	InitSampler(provider bind_group_provider.BindGroupProvider, binding int, sampler common.SamplerStagingData) error

	// InitVertexBuffer replaces provider's vertex buffer with an empty one of size bytes.
	InitVertexBuffer(provider bind_group_provider.BindGroupProvider, size uint64) error

	// WriteBuffer writes data at the start of the buffer bound at binding.
	WriteBuffer(provider bind_group_provider.BindGroupProvider, binding int, data []byte) error

	// WriteVertexBuffer writes data at the start of provider's vertex buffer.
	WriteVertexBuffer(provider bind_group_provider.BindGroupProvider, data []byte) error

	// BeginFrame acquires the next surface texture and opens the frame's render pass.
	BeginFrame() error

	// DrawCall records one instanced indexed draw of mesh.
	//
	// Parameters:
	//   - p: the registered pipeline
	//   - mesh: provider holding the vertex and index buffers (vertex slot 0)
	//   - instances: provider holding the instance buffer (vertex slot 1)
	//   - bindGroups: providers whose bind groups are set at their slice index
	//   - firstInstance: the first instance to draw
	//   - instanceCount: the number of instances to draw
	DrawCall(p pipeline.Pipeline, mesh, instances bind_group_provider.BindGroupProvider, bindGroups []bind_group_provider.BindGroupProvider, firstInstance, instanceCount uint32)

	// EndFrame closes the render pass and submits the frame's commands.
	EndFrame() error

	// Present shows the acquired surface texture.
	Present()

	// Release frees the device-level objects owned by the backend.
	Release()
}
