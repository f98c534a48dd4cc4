package renderer

import (
	"encoding/binary"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/Carmen-Shannon/vtrace-go/common"
	"github.com/Carmen-Shannon/vtrace-go/engine/model"
	"github.com/Carmen-Shannon/vtrace-go/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/vtrace-go/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/vtrace-go/engine/renderer/shader"
	"github.com/Carmen-Shannon/vtrace-go/engine/window"
	"github.com/cogentcore/webgpu/wgpu"
)

const (
	// CameraGroup is the bind group index of the camera uniform.
	CameraGroup = 0
	// VolumeGroup is the bind group index of the per-texture volume and sampler.
	VolumeGroup = 1

	// MaxTextures is the number of volume textures a Renderer accepts, the debug texture included.
	MaxTextures = 65536

	// DebugTextureColor is the packed RGBA (0xAABBGGRR) of the 1x1x1 texture registered as ID 0.
	DebugTextureColor uint32 = 0xFF808080
)

var (
	// ErrTextureLimit is returned by AddTexture once MaxTextures textures exist.
	ErrTextureLimit = errors.New("texture limit reached")
	// ErrInvalidVolume is returned by AddTexture for volumes with zero extents or mismatched data.
	ErrInvalidVolume = errors.New("invalid volume")
	// ErrUnknownPipeline is returned when a pipeline key has not been registered.
	ErrUnknownPipeline = errors.New("unknown pipeline")
	// ErrUnknownTexture is returned when a batch references a texture ID without a bind group.
	ErrUnknownTexture = errors.New("unknown texture")
	// ErrNotInitialized is returned when GPU state is used before a pipeline declaring it was registered.
	ErrNotInitialized = errors.New("renderer not initialized")
)

// volumeTexture is one registered 3D texture. staging is dropped once uploaded.
type volumeTexture struct {
	provider bind_group_provider.BindGroupProvider
	staging  common.VolumeStagingData
	ready    bool
}

// renderer is the implementation of the Renderer interface.
type renderer struct {
	mu *sync.Mutex

	pipelineCache map[string]pipeline.Pipeline

	backendType RendererBackendType
	backend     RendererBackend

	// Pre-creation config collected from builder options
	forceFallbackAdapter bool
	pendingPresentMode   *PresentMode
	pendingMSAA          *MSAASampleCount
	volumeSampler        common.SamplerStagingData

	cube             model.Model
	camera           bind_group_provider.BindGroupProvider
	cameraDescriptor *wgpu.BindGroupLayoutDescriptor
	volumeDescriptor *wgpu.BindGroupLayoutDescriptor

	textures []*volumeTexture
	pending  []uint32

	instances     bind_group_provider.BindGroupProvider
	instanceCount uint32
}

// Renderer draws instanced voxel volumes.
//
// Every volume is a 3D texture with its own bind group at VolumeGroup; the camera uniform is shared at
// CameraGroup. A frame is BeginFrame, any number of DrawInstances, EndFrame and Present. All drawing is
// instanced draws of one cube mesh, one per InstanceBatch.
type Renderer interface {
	// Pipeline retrieves the cached Pipeline associated with the given key.
	// If the Pipeline does not exist, this will return nil.
	//
	// Parameters:
	//   - key: the unique identifier for the Pipeline to retrieve
	//
	// Returns:
	//   - pipeline.Pipeline: the Pipeline associated with the key, or nil if not found
	Pipeline(key string) pipeline.Pipeline

	// Pipelines retrieves a copy of the pipeline cache.
	Pipelines() map[string]pipeline.Pipeline

	// RegisterPipelines creates the GPU pipeline for each Pipeline and caches it by PipelineKey.
	// Keys already registered are skipped. The first pipeline declaring a camera or volume group
	// fixes the layout the Renderer builds bind groups for.
	//
	// Parameters:
	//   - pipelines: the Pipelines to register
	//
	// Returns:
	//   - error: an error if pipeline or camera bind group creation fails
	RegisterPipelines(pipelines ...pipeline.Pipeline) error

	// AddTexture registers a volume and returns its texture ID. The GPU texture is created by the
	// next UpdateDescriptor.
	//
	// Parameters:
	//   - volume: the RGBA voxel data
	//
	// Returns:
	//   - uint32: the sequential texture ID
	//   - error: ErrInvalidVolume or ErrTextureLimit
	AddTexture(volume common.VolumeStagingData) (uint32, error)

	// TextureCount returns the number of registered textures, the debug texture included.
	TextureCount() int

	// UpdateDescriptor uploads every texture added since the previous call and builds its bind group.
	//
	// Returns:
	//   - error: ErrNotInitialized before a volume pipeline is registered, or a GPU error
	UpdateDescriptor() error

	// UpdateInstances replaces the instance buffer contents, growing the buffer when needed.
	//
	// Parameters:
	//   - instances: the instances in batch order
	//
	// Returns:
	//   - error: an error if the buffer cannot be grown or written
	UpdateInstances(instances []GPUInstance) error

	// InstanceCapacity returns how many instances the instance buffer holds.
	InstanceCapacity() uint32

	// WriteCamera writes the camera uniform.
	//
	// Parameters:
	//   - data: the marshalled camera uniform
	//
	// Returns:
	//   - error: ErrNotInitialized before a camera pipeline is registered, or a GPU error
	WriteCamera(data []byte) error

	// BeginFrame starts a frame.
	BeginFrame() error

	// DrawInstances records one instanced draw per non-empty batch. Every batch is checked
	// before the first draw is recorded.
	//
	// Parameters:
	//   - pipelineKey: the registered pipeline to draw with
	//   - batches: runs of instances sharing a texture
	//
	// Returns:
	//   - error: ErrUnknownPipeline, ErrUnknownTexture, or an out-of-range batch
	DrawInstances(pipelineKey string, batches []InstanceBatch) error

	// EndFrame submits the frame's commands.
	EndFrame() error

	// Present shows the frame.
	Present()

	// Resize configures the underlying backend to handle a new surface size.
	//
	// Parameters:
	//   - width: the new width of the surface in pixels
	//   - height: the new height of the surface in pixels
	Resize(width, height int)

	// SetPresentMode updates the present mode. It takes effect on the next Resize.
	SetPresentMode(mode PresentMode)

	// Release frees every GPU object owned by the Renderer and its backend.
	Release()
}

var _ Renderer = &renderer{}

// NewRenderer creates a Renderer drawing into window's surface.
//
// Parameters:
//   - backendType: the GPU backend to use
//   - window: the window providing the surface and its initial size
//   - options: builder options
//
// Returns:
//   - Renderer: the renderer, with the cube mesh uploaded and the debug texture staged
func NewRenderer(backendType RendererBackendType, window window.Window, options ...RendererBuilderOption) Renderer {
	r := newRenderer(backendType, options...)

	msaa := MSAAOff
	if r.pendingMSAA != nil {
		msaa = *r.pendingMSAA
	}

	var backend RendererBackend
	switch backendType {
	case BackendTypeWGPU:
		fallthrough
	default:
		backend = newWGPURendererBackend(window.SurfaceDescriptor(), r.forceFallbackAdapter, msaa)
	}

	if err := r.attach(backend, window.Width(), window.Height()); err != nil {
		panic(err)
	}
	return r
}

// newRenderer applies options to an unattached renderer.
func newRenderer(backendType RendererBackendType, options ...RendererBuilderOption) *renderer {
	r := &renderer{
		mu:            &sync.Mutex{},
		pipelineCache: make(map[string]pipeline.Pipeline),
		backendType:   backendType,
		volumeSampler: common.SamplerStagingData{
			AddressModeU: wgpu.AddressModeClampToEdge,
			AddressModeV: wgpu.AddressModeClampToEdge,
			AddressModeW: wgpu.AddressModeClampToEdge,
			MagFilter:    wgpu.FilterModeNearest,
			MinFilter:    wgpu.FilterModeNearest,
			MipmapFilter: wgpu.MipmapFilterModeNearest,
		},
		camera:    bind_group_provider.NewBindGroupProvider("camera"),
		instances: bind_group_provider.NewBindGroupProvider("instances"),
	}
	for _, opt := range options {
		opt(r)
	}
	return r
}

// attach binds the backend, configures the surface, uploads the cube and stages the debug texture.
func (r *renderer) attach(backend RendererBackend, width, height int) error {
	r.backend = backend
	if r.pendingPresentMode != nil {
		r.backend.SetPresentMode(*r.pendingPresentMode)
	}
	if err := r.backend.ConfigureSurface(width, height); err != nil {
		return fmt.Errorf("failed to configure surface: %w", err)
	}

	r.cube = model.NewCube()
	if err := r.backend.InitMeshBuffers(r.cube.MeshProvider(), r.cube.VertexData(), r.cube.IndexData(), r.cube.IndexCount()); err != nil {
		return fmt.Errorf("failed to upload cube mesh: %w", err)
	}

	debug := make([]byte, 4)
	binary.LittleEndian.PutUint32(debug, DebugTextureColor)
	if _, err := r.AddTexture(common.VolumeStagingData{Voxels: debug, Width: 1, Height: 1, Depth: 1}); err != nil {
		return fmt.Errorf("failed to stage debug texture: %w", err)
	}
	return nil
}

func (r *renderer) Pipeline(key string) pipeline.Pipeline {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pipelineCache[key]
}

func (r *renderer) Pipelines() map[string]pipeline.Pipeline {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string]pipeline.Pipeline, len(r.pipelineCache))
	for k, p := range r.pipelineCache {
		out[k] = p
	}
	return out
}

func (r *renderer) RegisterPipelines(pipelines ...pipeline.Pipeline) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, p := range pipelines {
		key := p.PipelineKey()
		if _, exists := r.pipelineCache[key]; exists {
			continue
		}
		if err := r.backend.RegisterRenderPipeline(p); err != nil {
			return fmt.Errorf("failed to register pipeline %q: %w", key, err)
		}

		merged := shader.MergeBindGroupLayouts(p.Shader(shader.ShaderTypeVertex), p.Shader(shader.ShaderTypeFragment))
		if desc, ok := merged[CameraGroup]; ok && r.cameraDescriptor == nil {
			if err := r.backend.InitBindGroup(r.camera, desc); err != nil {
				return fmt.Errorf("failed to create camera bind group for %q: %w", key, err)
			}
			r.cameraDescriptor = &desc
		}
		if desc, ok := merged[VolumeGroup]; ok && r.volumeDescriptor == nil {
			r.volumeDescriptor = &desc
		}

		r.pipelineCache[key] = p
	}
	return nil
}

func (r *renderer) AddTexture(volume common.VolumeStagingData) (uint32, error) {
	if err := volume.Validate(); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidVolume, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.textures) >= MaxTextures {
		return 0, ErrTextureLimit
	}
	id := uint32(len(r.textures))
	r.textures = append(r.textures, &volumeTexture{
		provider: bind_group_provider.NewBindGroupProvider(fmt.Sprintf("volume %d", id)),
		staging:  volume,
	})
	r.pending = append(r.pending, id)
	return id, nil
}

func (r *renderer) TextureCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.textures)
}

func (r *renderer) UpdateDescriptor() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.pending) == 0 {
		return nil
	}
	if r.volumeDescriptor == nil {
		return fmt.Errorf("%w: no pipeline declares bind group %d", ErrNotInitialized, VolumeGroup)
	}

	for i, id := range r.pending {
		tex := r.textures[id]
		for _, entry := range r.volumeDescriptor.Entries {
			var err error
			switch {
			case entry.Texture.SampleType != wgpu.TextureSampleTypeUndefined:
				err = r.backend.InitVolumeTexture(tex.provider, int(entry.Binding), tex.staging)
			case entry.Sampler.Type != wgpu.SamplerBindingTypeUndefined:
				err = r.backend.InitSampler(tex.provider, int(entry.Binding), r.volumeSampler)
			}
			if err != nil {
				r.pending = r.pending[i:]
				return fmt.Errorf("failed to upload texture %d: %w", id, err)
			}
		}
		if err := r.backend.InitBindGroup(tex.provider, *r.volumeDescriptor); err != nil {
			r.pending = r.pending[i:]
			return fmt.Errorf("failed to create bind group for texture %d: %w", id, err)
		}
		tex.staging = common.VolumeStagingData{}
		tex.ready = true
	}
	r.pending = r.pending[:0]
	return nil
}

func (r *renderer) UpdateInstances(instances []GPUInstance) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	count := uint32(len(instances))
	if capacity := uint32(r.instances.Capacity()); count > capacity {
		grown := common.NextPowerOfTwoAbove(count)
		if err := r.backend.InitVertexBuffer(r.instances, uint64(grown)*GPUInstanceSize); err != nil {
			return fmt.Errorf("failed to grow instance buffer to %d: %w", grown, err)
		}
		r.instances.SetCapacity(int(grown))
		log.Printf("[Renderer] instance buffer grown to %d instances", grown)
	}

	r.instanceCount = count
	if count == 0 {
		return nil
	}
	return r.backend.WriteVertexBuffer(r.instances, MarshalInstances(instances))
}

func (r *renderer) InstanceCapacity() uint32 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return uint32(r.instances.Capacity())
}

func (r *renderer) WriteCamera(data []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.cameraDescriptor == nil || len(r.cameraDescriptor.Entries) == 0 {
		return fmt.Errorf("%w: no pipeline declares bind group %d", ErrNotInitialized, CameraGroup)
	}
	return r.backend.WriteBuffer(r.camera, int(r.cameraDescriptor.Entries[0].Binding), data)
}

func (r *renderer) BeginFrame() error {
	return r.backend.BeginFrame()
}

func (r *renderer) DrawInstances(pipelineKey string, batches []InstanceBatch) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.pipelineCache[pipelineKey]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownPipeline, pipelineKey)
	}
	for _, b := range batches {
		if b.Count == 0 {
			continue
		}
		if int(b.TextureID) >= len(r.textures) || !r.textures[b.TextureID].ready {
			return fmt.Errorf("%w: %d", ErrUnknownTexture, b.TextureID)
		}
		if uint64(b.First)+uint64(b.Count) > uint64(r.instanceCount) {
			return fmt.Errorf("batch [%d, %d) exceeds %d uploaded instances", b.First, b.First+b.Count, r.instanceCount)
		}
	}

	mesh := r.cube.MeshProvider()
	for _, b := range batches {
		if b.Count == 0 {
			continue
		}
		groups := []bind_group_provider.BindGroupProvider{r.camera, r.textures[b.TextureID].provider}
		r.backend.DrawCall(p, mesh, r.instances, groups, b.First, b.Count)
	}
	return nil
}

func (r *renderer) EndFrame() error {
	return r.backend.EndFrame()
}

func (r *renderer) Present() {
	r.backend.Present()
}

func (r *renderer) Resize(width, height int) {
	if err := r.backend.ConfigureSurface(width, height); err != nil {
		log.Printf("[Renderer] resize to %dx%d failed: %v", width, height, err)
	}
}

func (r *renderer) SetPresentMode(mode PresentMode) {
	r.backend.SetPresentMode(mode)
}

func (r *renderer) Release() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, tex := range r.textures {
		tex.provider.Release()
	}
	r.textures = nil
	r.pending = nil
	for _, p := range r.pipelineCache {
		p.Release()
	}
	r.pipelineCache = make(map[string]pipeline.Pipeline)
	r.camera.Release()
	r.instances.Release()
	if r.cube != nil {
		r.cube.MeshProvider().Release()
	}
	r.backend.Release()
}
