package scene

import (
	"errors"
	"testing"

	"github.com/Carmen-Shannon/vtrace-go/common"
	"github.com/Carmen-Shannon/vtrace-go/engine/camera"
	"github.com/Carmen-Shannon/vtrace-go/engine/pager"
	"github.com/Carmen-Shannon/vtrace-go/engine/renderer"
	"github.com/Carmen-Shannon/vtrace-go/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/vtrace-go/engine/voxel"
	"github.com/Carmen-Shannon/vtrace-go/engine/world"
	"github.com/chewxy/math32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRenderer records the scene's calls without a GPU.
type fakeRenderer struct {
	textures    []common.VolumeStagingData
	limit       int
	addCalls    int
	descriptors int
	instances   []renderer.GPUInstance
	camera      []byte
	draws       [][]renderer.InstanceBatch
	drawKeys    []string
}

var _ renderer.Renderer = &fakeRenderer{}

func (f *fakeRenderer) Pipeline(string) pipeline.Pipeline            { return nil }
func (f *fakeRenderer) Pipelines() map[string]pipeline.Pipeline      { return nil }
func (f *fakeRenderer) RegisterPipelines(...pipeline.Pipeline) error { return nil }

func (f *fakeRenderer) AddTexture(volume common.VolumeStagingData) (uint32, error) {
	f.addCalls++
	if f.limit > 0 && len(f.textures) >= f.limit {
		return 0, renderer.ErrTextureLimit
	}
	f.textures = append(f.textures, volume)
	return uint32(len(f.textures)), nil
}

func (f *fakeRenderer) TextureCount() int { return len(f.textures) + 1 }

func (f *fakeRenderer) UpdateDescriptor() error { f.descriptors++; return nil }

func (f *fakeRenderer) UpdateInstances(instances []renderer.GPUInstance) error {
	f.instances = instances
	return nil
}

func (f *fakeRenderer) InstanceCapacity() uint32 { return uint32(len(f.instances)) }

func (f *fakeRenderer) WriteCamera(data []byte) error { f.camera = data; return nil }

func (f *fakeRenderer) BeginFrame() error { return nil }

func (f *fakeRenderer) DrawInstances(key string, batches []renderer.InstanceBatch) error {
	f.drawKeys = append(f.drawKeys, key)
	f.draws = append(f.draws, batches)
	return nil
}

func (f *fakeRenderer) EndFrame() error                     { return nil }
func (f *fakeRenderer) Present()                            {}
func (f *fakeRenderer) Resize(int, int)                     {}
func (f *fakeRenderer) SetPresentMode(renderer.PresentMode) {}
func (f *fakeRenderer) Release()                            {}

// fakePager serves fixed chunks.
type fakePager struct {
	chunks map[pager.ChunkCoord]*voxel.Chunk[voxel.Color]
	closed bool
}

var _ pager.Pager = &fakePager{}

func (p *fakePager) Page(pager.ChunkCoord) (bool, error) { return false, nil }
func (p *fakePager) PageAround(pager.ChunkCoord, int32) ([]pager.ChunkCoord, error) {
	return nil, nil
}

func (p *fakePager) Chunk(c pager.ChunkCoord) (*voxel.Chunk[voxel.Color], bool) {
	chunk, ok := p.chunks[c]
	return chunk, ok
}

func (p *fakePager) Len() int                   { return len(p.chunks) }
func (p *fakePager) Filled() []pager.ChunkCoord { return nil }

func (p *fakePager) Visible(frustum common.Frustum, candidates []pager.ChunkCoord) []pager.ChunkCoord {
	var out []pager.ChunkCoord
	for _, c := range candidates {
		min, max := c.Bounds()
		if frustum.IntersectsAABB(min, max) {
			out = append(out, c)
		}
	}
	return out
}

func (p *fakePager) Close() { p.closed = true }

// fakeWorld hands out one batch of coordinates per Update.
type fakeWorld struct {
	ctrl    camera.CameraController
	pager   *fakePager
	batches [][]pager.ChunkCoord
	err     error
}

var _ world.World = &fakeWorld{}

func (w *fakeWorld) Controller() camera.CameraController { return w.ctrl }
func (w *fakeWorld) Pager() pager.Pager                  { return w.pager }
func (w *fakeWorld) ViewDistance() int32                 { return 1 }
func (w *fakeWorld) CameraChunk() pager.ChunkCoord       { return pager.ChunkCoordOf(w.ctrl.Position()) }

func (w *fakeWorld) Update(float32, *world.InputState) ([]pager.ChunkCoord, error) {
	if w.err != nil {
		return nil, w.err
	}
	if len(w.batches) == 0 {
		return nil, nil
	}
	next := w.batches[0]
	w.batches = w.batches[1:]
	return next, nil
}

func solidChunk() *voxel.Chunk[voxel.Color] {
	c := voxel.NewChunk[voxel.Color]()
	c.Set(0, 0, 0, voxel.Color{R: 255, A: 255})
	return c
}

var (
	ahead  = pager.ChunkCoord{X: 2, Y: 0, Z: 0}
	behind = pager.ChunkCoord{X: -3, Y: 0, Z: 0}
	empty  = pager.ChunkCoord{X: 3, Y: 0, Z: 0}
)

func newTestScene(t *testing.T, options ...SceneBuilderOption) (Scene, *fakeRenderer, *fakeWorld, camera.CameraController) {
	t.Helper()
	ctrl := camera.NewCameraController()
	cam := camera.NewCamera(camera.WithController(ctrl))
	p := &fakePager{chunks: map[pager.ChunkCoord]*voxel.Chunk[voxel.Color]{
		ahead:  solidChunk(),
		behind: solidChunk(),
		empty:  nil,
	}}
	w := &fakeWorld{ctrl: ctrl, pager: p, batches: [][]pager.ChunkCoord{{ahead, behind, empty}}}
	r := &fakeRenderer{}
	return NewScene("terrain", cam, r, w, options...), r, w, ctrl
}

func TestNewSceneDefaults(t *testing.T) {
	s, _, _, _ := newTestScene(t)
	assert.Equal(t, "terrain", s.Name())
	assert.False(t, s.Active())
	assert.Equal(t, DefaultPipelineKey, s.PipelineKey())
	assert.False(t, s.CullingDisabled())

	s.SetName("other")
	s.SetActive(true)
	assert.Equal(t, "other", s.Name())
	assert.True(t, s.Active())

	s, _, _, _ = newTestScene(t, WithActive(true), WithPipelineKey("custom"), WithPipelineKey(""))
	assert.True(t, s.Active())
	assert.Equal(t, "custom", s.PipelineKey())

	assert.Panics(t, func() { NewScene("x", nil, &fakeRenderer{}, &fakeWorld{}) })
}

func TestPrepareAttachesOnlyVisibleChunks(t *testing.T) {
	s, r, _, ctrl := newTestScene(t)

	require.NoError(t, s.Update(0.016, nil))
	assert.Equal(t, 3, s.Pending())

	require.NoError(t, s.Prepare())
	attached := s.Attached()
	require.Len(t, attached, 1)
	assert.Equal(t, uint32(1), attached[ahead])
	assert.Equal(t, 1, s.Pending(), "the chunk behind the camera stays queued")
	assert.Equal(t, 1, r.descriptors)
	assert.Len(t, r.camera, 80)

	require.Len(t, r.textures, 1)
	assert.Equal(t, uint32(voxel.ChunkSize), r.textures[0].Width)
	require.Len(t, r.instances, 1)
	// the cube spans [-1, 1], so its centre maps to the chunk centre
	model := r.instances[0].Model
	assert.Equal(t, float32(40), model[12])
	assert.Equal(t, float32(8), model[13])
	assert.Equal(t, float32(8), model[0])
	assert.Equal(t, 1, s.InstanceCount())

	ctrl.SetOrientation(math32.Pi, 0)
	require.NoError(t, s.Update(0.016, nil))
	require.NoError(t, s.Prepare())
	assert.Len(t, s.Attached(), 2)
	assert.Equal(t, 0, s.Pending())
	assert.Len(t, r.instances, 2)

	require.NoError(t, s.DrawCalls())
	require.Len(t, r.draws, 1)
	assert.Equal(t, DefaultPipelineKey, r.drawKeys[0])
	assert.Equal(t, []renderer.InstanceBatch{
		{TextureID: 1, First: 0, Count: 1},
		{TextureID: 2, First: 1, Count: 1},
	}, r.draws[0])
}

func TestPrepareWithCullingDisabled(t *testing.T) {
	s, r, _, _ := newTestScene(t, WithCullingDisabled(true))
	require.NoError(t, s.Update(0.016, nil))
	require.NoError(t, s.Prepare())

	assert.Len(t, s.Attached(), 2)
	assert.Equal(t, 0, s.Pending())
	assert.Len(t, r.textures, 2)

	// nothing changed, so instances are not re-uploaded
	r.instances = nil
	require.NoError(t, s.Prepare())
	assert.Nil(t, r.instances)
	assert.Equal(t, 2, r.descriptors)
}

func TestPrepareStopsAtTextureLimit(t *testing.T) {
	s, r, _, _ := newTestScene(t, WithCullingDisabled(true))
	r.limit = 1

	require.NoError(t, s.Update(0.016, nil))
	err := s.Prepare()
	assert.ErrorIs(t, err, renderer.ErrTextureLimit)
	assert.Len(t, s.Attached(), 1)
	assert.Equal(t, 2, s.Pending(), "chunks after the failure stay queued")

	// the chunk attached before the failure is still uploaded
	assert.Equal(t, 1, r.descriptors)
	assert.Len(t, r.instances, 1)
	assert.NotNil(t, r.camera)
	assert.Equal(t, 2, r.addCalls)

	// later frames keep uploading the camera without asking for more textures
	r.camera = nil
	require.NoError(t, s.Prepare())
	assert.Equal(t, 2, r.descriptors)
	assert.Len(t, r.instances, 1)
	assert.NotNil(t, r.camera)
	assert.Equal(t, 2, r.addCalls)
	assert.Equal(t, 2, s.Pending())
	assert.Equal(t, 1, s.InstanceCount())
}

func TestDrawCallsWithoutInstances(t *testing.T) {
	s, r, _, _ := newTestScene(t)
	require.NoError(t, s.DrawCalls())
	assert.Empty(t, r.draws)
}

func TestUpdateErrorAndClose(t *testing.T) {
	s, _, w, _ := newTestScene(t)
	w.err = errors.New("closed")
	assert.Error(t, s.Update(0.016, world.NewInputState()))

	s.Close()
	assert.True(t, w.pager.closed)
	assert.Same(t, w, s.World())
}
