package renderer

import (
	"encoding/binary"
	"errors"
	"math"
	"testing"

	"github.com/Carmen-Shannon/vtrace-go/common"
	"github.com/Carmen-Shannon/vtrace-go/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/vtrace-go/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/vtrace-go/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDraw struct {
	pipeline      string
	groups        []string
	firstInstance uint32
	instanceCount uint32
	indexCount    int
}

// fakeBackend records every call and creates no GPU objects.
type fakeBackend struct {
	width, height int
	presentMode   PresentMode
	registered    []string
	meshes        map[string]int
	bindGroups    []string
	volumes       []common.VolumeStagingData
	samplers      []common.SamplerStagingData
	vertexBuffers []uint64
	writes        map[string][]byte
	vertexWrites  [][]byte
	draws         []fakeDraw
	begun, ended  int
	presented     int
	released      bool

	volumeErr    error
	configureErr error
}

var _ RendererBackend = &fakeBackend{}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		meshes: map[string]int{},
		writes: map[string][]byte{},
	}
}

func (f *fakeBackend) ConfigureSurface(width, height int) error {
	if f.configureErr != nil {
		return f.configureErr
	}
	f.width, f.height = width, height
	return nil
}

func (f *fakeBackend) SetPresentMode(mode PresentMode) { f.presentMode = mode }

func (f *fakeBackend) RegisterRenderPipeline(p pipeline.Pipeline) error {
	if p.Shader(shader.ShaderTypeVertex) == nil || p.Shader(shader.ShaderTypeFragment) == nil {
		return errors.New("missing stage")
	}
	f.registered = append(f.registered, p.PipelineKey())
	return nil
}

func (f *fakeBackend) InitMeshBuffers(provider bind_group_provider.BindGroupProvider, _, _ []byte, indexCount int) error {
	f.meshes[provider.Label()] = indexCount
	provider.SetIndexCount(indexCount)
	return nil
}

func (f *fakeBackend) InitBindGroup(provider bind_group_provider.BindGroupProvider, _ wgpu.BindGroupLayoutDescriptor) error {
	f.bindGroups = append(f.bindGroups, provider.Label())
	return nil
}

func (f *fakeBackend) InitVolumeTexture(_ bind_group_provider.BindGroupProvider, _ int, volume common.VolumeStagingData) error {
	if f.volumeErr != nil {
		return f.volumeErr
	}
	f.volumes = append(f.volumes, volume)
	return nil
}

func (f *fakeBackend) InitSampler(_ bind_group_provider.BindGroupProvider, _ int, sampler common.SamplerStagingData) error {
	f.samplers = append(f.samplers, sampler)
	return nil
}

func (f *fakeBackend) InitVertexBuffer(_ bind_group_provider.BindGroupProvider, size uint64) error {
	f.vertexBuffers = append(f.vertexBuffers, size)
	return nil
}

func (f *fakeBackend) WriteBuffer(provider bind_group_provider.BindGroupProvider, _ int, data []byte) error {
	f.writes[provider.Label()] = data
	return nil
}

func (f *fakeBackend) WriteVertexBuffer(_ bind_group_provider.BindGroupProvider, data []byte) error {
	f.vertexWrites = append(f.vertexWrites, data)
	return nil
}

func (f *fakeBackend) BeginFrame() error { f.begun++; return nil }

func (f *fakeBackend) DrawCall(p pipeline.Pipeline, mesh, _ bind_group_provider.BindGroupProvider, bindGroups []bind_group_provider.BindGroupProvider, firstInstance, instanceCount uint32) {
	groups := make([]string, len(bindGroups))
	for i, bg := range bindGroups {
		groups[i] = bg.Label()
	}
	f.draws = append(f.draws, fakeDraw{
		pipeline:      p.PipelineKey(),
		groups:        groups,
		firstInstance: firstInstance,
		instanceCount: instanceCount,
		indexCount:    mesh.IndexCount(),
	})
}

func (f *fakeBackend) EndFrame() error { f.ended++; return nil }
func (f *fakeBackend) Present()        { f.presented++ }
func (f *fakeBackend) Release()        { f.released = true }

func newTestRenderer(t *testing.T, options ...RendererBuilderOption) (*renderer, *fakeBackend) {
	t.Helper()
	fake := newFakeBackend()
	r := newRenderer(BackendTypeWGPU, options...)
	require.NoError(t, r.attach(fake, 640, 480))
	return r, fake
}

func raymarchPipeline(t *testing.T, key string) pipeline.Pipeline {
	t.Helper()
	vs, err := shader.NewShader(key+" vs", shader.ShaderTypeVertex, shader.RaymarchSource)
	require.NoError(t, err)
	fs, err := shader.NewShader(key+" fs", shader.ShaderTypeFragment, shader.RaymarchSource)
	require.NoError(t, err)
	return pipeline.NewPipeline(key,
		pipeline.WithVertexShader(vs),
		pipeline.WithFragmentShader(fs),
		pipeline.WithCullMode(wgpu.CullModeFront),
	)
}

func cubeVolume(n uint32) common.VolumeStagingData {
	return common.VolumeStagingData{
		Voxels: make([]byte, n*n*n*4),
		Width:  n,
		Height: n,
		Depth:  n,
	}
}

func TestAttachStagesCubeAndDebugTexture(t *testing.T) {
	r, fake := newTestRenderer(t, WithPresentMode(PresentModeVSync))

	assert.Equal(t, 640, fake.width)
	assert.Equal(t, 480, fake.height)
	assert.Equal(t, PresentModeVSync, fake.presentMode)
	assert.Equal(t, 36, fake.meshes["cube"])
	assert.Equal(t, 1, r.TextureCount())

	// nothing can be uploaded until a pipeline declares the layouts
	assert.ErrorIs(t, r.UpdateDescriptor(), ErrNotInitialized)
	assert.ErrorIs(t, r.WriteCamera(make([]byte, 80)), ErrNotInitialized)
}

func TestRegisterPipelinesCreatesCameraGroupOnce(t *testing.T) {
	r, fake := newTestRenderer(t)

	require.NoError(t, r.RegisterPipelines(raymarchPipeline(t, "raymarch"), raymarchPipeline(t, "raymarch")))
	assert.Equal(t, []string{"raymarch"}, fake.registered)
	assert.Equal(t, []string{"camera"}, fake.bindGroups)
	assert.NotNil(t, r.Pipeline("raymarch"))
	assert.Nil(t, r.Pipeline("missing"))
	assert.Len(t, r.Pipelines(), 1)

	require.NoError(t, r.WriteCamera(make([]byte, 80)))
	assert.Len(t, fake.writes["camera"], 80)

	err := r.RegisterPipelines(pipeline.NewPipeline("empty"))
	assert.Error(t, err)
	assert.Nil(t, r.Pipeline("empty"))
}

func TestUpdateDescriptorUploadsPendingOnly(t *testing.T) {
	r, fake := newTestRenderer(t)
	require.NoError(t, r.RegisterPipelines(raymarchPipeline(t, "raymarch")))

	require.NoError(t, r.UpdateDescriptor())
	require.Len(t, fake.volumes, 1)
	debug := fake.volumes[0]
	assert.Equal(t, uint32(1), debug.Width)
	assert.Equal(t, []byte{0x80, 0x80, 0x80, 0xFF}, debug.Voxels)
	require.Len(t, fake.samplers, 1)
	assert.Equal(t, wgpu.FilterModeNearest, fake.samplers[0].MagFilter)
	assert.Equal(t, wgpu.AddressModeClampToEdge, fake.samplers[0].AddressModeW)
	assert.Equal(t, []string{"camera", "volume 0"}, fake.bindGroups)

	require.NoError(t, r.UpdateDescriptor())
	assert.Len(t, fake.volumes, 1)

	id, err := r.AddTexture(cubeVolume(16))
	require.NoError(t, err)
	assert.Equal(t, uint32(1), id)
	require.NoError(t, r.UpdateDescriptor())
	require.Len(t, fake.volumes, 2)
	assert.Len(t, fake.volumes[1].Voxels, 16*16*16*4)
	assert.Equal(t, "volume 1", fake.bindGroups[len(fake.bindGroups)-1])
}

func TestUpdateDescriptorKeepsFailedTexturesPending(t *testing.T) {
	r, fake := newTestRenderer(t)
	require.NoError(t, r.RegisterPipelines(raymarchPipeline(t, "raymarch")))

	fake.volumeErr = errors.New("out of memory")
	assert.Error(t, r.UpdateDescriptor())
	assert.Len(t, r.pending, 1)

	fake.volumeErr = nil
	require.NoError(t, r.UpdateDescriptor())
	assert.Empty(t, r.pending)
	assert.True(t, r.textures[0].ready)
}

func TestAddTextureValidation(t *testing.T) {
	r, _ := newTestRenderer(t)

	_, err := r.AddTexture(common.VolumeStagingData{Width: 0, Height: 1, Depth: 1})
	assert.ErrorIs(t, err, ErrInvalidVolume)

	bad := cubeVolume(2)
	bad.Voxels = bad.Voxels[:5]
	_, err = r.AddTexture(bad)
	assert.ErrorIs(t, err, ErrInvalidVolume)
	assert.Equal(t, 1, r.TextureCount())

	r.textures = make([]*volumeTexture, MaxTextures)
	_, err = r.AddTexture(cubeVolume(1))
	assert.ErrorIs(t, err, ErrTextureLimit)
}

func TestUpdateInstancesGrowsToPowerOfTwo(t *testing.T) {
	r, fake := newTestRenderer(t)

	require.NoError(t, r.UpdateInstances(nil))
	assert.Empty(t, fake.vertexBuffers)
	assert.Equal(t, uint32(0), r.InstanceCapacity())

	require.NoError(t, r.UpdateInstances(make([]GPUInstance, 3)))
	assert.Equal(t, []uint64{4 * GPUInstanceSize}, fake.vertexBuffers)
	assert.Equal(t, uint32(4), r.InstanceCapacity())
	assert.Len(t, fake.vertexWrites[0], 3*GPUInstanceSize)

	require.NoError(t, r.UpdateInstances(make([]GPUInstance, 4)))
	assert.Len(t, fake.vertexBuffers, 1)

	require.NoError(t, r.UpdateInstances(make([]GPUInstance, 5)))
	assert.Equal(t, uint64(8*GPUInstanceSize), fake.vertexBuffers[1])
	assert.Equal(t, uint32(8), r.InstanceCapacity())
}

func TestDrawInstances(t *testing.T) {
	r, fake := newTestRenderer(t)
	require.NoError(t, r.RegisterPipelines(raymarchPipeline(t, "raymarch")))
	require.NoError(t, r.UpdateDescriptor())
	require.NoError(t, r.UpdateInstances(make([]GPUInstance, 2)))

	assert.ErrorIs(t, r.DrawInstances("missing", nil), ErrUnknownPipeline)
	assert.ErrorIs(t, r.DrawInstances("raymarch", []InstanceBatch{{TextureID: 7, Count: 1}}), ErrUnknownTexture)

	staged, err := r.AddTexture(cubeVolume(1))
	require.NoError(t, err)
	assert.ErrorIs(t, r.DrawInstances("raymarch", []InstanceBatch{{TextureID: staged, Count: 1}}), ErrUnknownTexture)

	assert.Error(t, r.DrawInstances("raymarch", []InstanceBatch{{TextureID: 0, First: 1, Count: 2}}))
	assert.Empty(t, fake.draws)

	require.NoError(t, r.BeginFrame())
	require.NoError(t, r.DrawInstances("raymarch", []InstanceBatch{
		{TextureID: 0, First: 0, Count: 2},
		{TextureID: staged, First: 2, Count: 0},
	}))
	require.NoError(t, r.EndFrame())
	r.Present()

	require.Len(t, fake.draws, 1)
	draw := fake.draws[0]
	assert.Equal(t, "raymarch", draw.pipeline)
	assert.Equal(t, []string{"camera", "volume 0"}, draw.groups)
	assert.Equal(t, uint32(0), draw.firstInstance)
	assert.Equal(t, uint32(2), draw.instanceCount)
	assert.Equal(t, 36, draw.indexCount)
	assert.Equal(t, 1, fake.begun)
	assert.Equal(t, 1, fake.ended)
	assert.Equal(t, 1, fake.presented)
}

func TestResizeAndRelease(t *testing.T) {
	r, fake := newTestRenderer(t)
	require.NoError(t, r.RegisterPipelines(raymarchPipeline(t, "raymarch")))

	r.Resize(1920, 1080)
	assert.Equal(t, 1920, fake.width)
	assert.Equal(t, 1080, fake.height)
	r.SetPresentMode(PresentModeUncapped)
	assert.Equal(t, PresentModeUncapped, fake.presentMode)

	fake.configureErr = errors.New("no formats")
	r.Resize(800, 600)
	assert.Equal(t, 1920, fake.width)

	r.Release()
	assert.True(t, fake.released)
	assert.Equal(t, 0, r.TextureCount())
	assert.Empty(t, r.Pipelines())
}

func TestAttachFailsWhenSurfaceCannotBeConfigured(t *testing.T) {
	fake := newFakeBackend()
	fake.configureErr = errors.New("no formats")
	r := newRenderer(BackendTypeWGPU)

	err := r.attach(fake, 640, 480)
	require.ErrorIs(t, err, fake.configureErr)
	assert.Empty(t, fake.meshes)
}

func TestMarshalInstances(t *testing.T) {
	var inst GPUInstance
	assert.Equal(t, GPUInstanceSize, inst.Size())

	inst.Model[0] = 2
	inst.InverseModel[15] = 0.5
	buf := MarshalInstances([]GPUInstance{{}, inst})
	require.Len(t, buf, 2*GPUInstanceSize)

	second := buf[GPUInstanceSize:]
	assert.Equal(t, float32(2), math.Float32frombits(binary.LittleEndian.Uint32(second[0:])))
	assert.Equal(t, float32(0.5), math.Float32frombits(binary.LittleEndian.Uint32(second[124:])))
	assert.Equal(t, second, inst.Marshal())
}
