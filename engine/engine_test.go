package engine

import (
	"errors"
	"testing"
	"time"

	"github.com/Carmen-Shannon/vtrace-go/common"
	"github.com/Carmen-Shannon/vtrace-go/engine/camera"
	"github.com/Carmen-Shannon/vtrace-go/engine/pager"
	"github.com/Carmen-Shannon/vtrace-go/engine/renderer"
	"github.com/Carmen-Shannon/vtrace-go/engine/scene"
	"github.com/Carmen-Shannon/vtrace-go/engine/world"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRenderer records frame calls; unimplemented Renderer methods panic via the nil embed.
type fakeRenderer struct {
	renderer.Renderer
	calls    *[]string
	beginErr error
	resized  [2]int
}

func (r *fakeRenderer) BeginFrame() error {
	*r.calls = append(*r.calls, "begin")
	return r.beginErr
}

func (r *fakeRenderer) EndFrame() error          { *r.calls = append(*r.calls, "end"); return nil }
func (r *fakeRenderer) Present()                 { *r.calls = append(*r.calls, "present") }
func (r *fakeRenderer) Resize(width, height int) { r.resized = [2]int{width, height} }

type fakeCamera struct {
	camera.Camera
	aspect float32
}

func (c *fakeCamera) SetAspect(aspect float32) { c.aspect = aspect }

type fakeScene struct {
	scene.Scene
	name      string
	active    bool
	r         *fakeRenderer
	cam       *fakeCamera
	calls     *[]string
	updates   int
	updateErr error
	closed    bool
}

func (s *fakeScene) Name() string                { return s.name }
func (s *fakeScene) Active() bool                { return s.active }
func (s *fakeScene) Renderer() renderer.Renderer { return s.r }
func (s *fakeScene) Camera() camera.Camera       { return s.cam }

func (s *fakeScene) Attached() map[pager.ChunkCoord]uint32 {
	return map[pager.ChunkCoord]uint32{{}: 1, {X: 1}: 2}
}

func (s *fakeScene) Pending() int       { return 3 }
func (s *fakeScene) InstanceCount() int { return 1500 }
func (s *fakeScene) Close()             { s.closed = true }

func (s *fakeScene) Update(dt float32, input *world.InputState) error {
	s.updates++
	return s.updateErr
}

func (s *fakeScene) Prepare() error {
	*s.calls = append(*s.calls, "prepare "+s.name)
	return nil
}

func (s *fakeScene) DrawCalls() error {
	*s.calls = append(*s.calls, "draw "+s.name)
	return nil
}

func newFakeScenes(names ...string) ([]*fakeScene, *[]string) {
	calls := &[]string{}
	r := &fakeRenderer{calls: calls}
	scenes := make([]*fakeScene, len(names))
	for i, n := range names {
		scenes[i] = &fakeScene{name: n, active: true, r: r, cam: &fakeCamera{}, calls: calls}
	}
	return scenes, calls
}

func TestRenderFrameOrdersScenes(t *testing.T) {
	scenes, calls := newFakeScenes("world", "overlay", "hidden")
	scenes[2].active = false
	e := NewEngine(WithScene(10, scenes[1]), WithScene(-1, scenes[0]), WithScene(5, scenes[2]))

	require.True(t, e.(*engine).renderFrame())
	assert.Equal(t, []string{
		"prepare world", "prepare overlay",
		"begin", "draw world", "draw overlay", "end", "present",
	}, *calls)
}

func TestRenderFrameSkipsWithoutScenes(t *testing.T) {
	e := NewEngine().(*engine)
	assert.False(t, e.renderFrame())

	scenes, calls := newFakeScenes("world")
	scenes[0].r.beginErr = errors.New("surface lost")
	e.AddScene(0, scenes[0])
	assert.False(t, e.renderFrame())
	assert.Equal(t, []string{"prepare world", "begin"}, *calls)
}

func TestTickUpdatesScenesAndRetiresInput(t *testing.T) {
	scenes, _ := newFakeScenes("world", "paused")
	scenes[1].active = false
	scenes[0].updateErr = errors.New("pager closed")

	var justPressed bool
	e := NewEngine(WithScene(0, scenes[0]), WithScene(1, scenes[1])).(*engine)
	e.SetTickCallback(func(float32) { justPressed = e.Input().JustPressed(common.KeyW) })

	e.Input().KeyDown(common.KeyW)
	e.tick(1.0 / 60)
	assert.True(t, justPressed)
	assert.Equal(t, 1, scenes[0].updates)
	assert.Zero(t, scenes[1].updates)
	assert.Equal(t, "pager closed", e.lastErrors["world/update"])

	e.tick(1.0 / 60)
	assert.False(t, justPressed)
	assert.True(t, e.Input().Pressed(common.KeyW))

	scenes[0].updateErr = nil
	e.tick(1.0 / 60)
	assert.NotContains(t, e.lastErrors, "world/update")
}

func TestResizeUpdatesRendererAndCamera(t *testing.T) {
	scenes, _ := newFakeScenes("world")
	e := NewEngine(WithScene(0, scenes[0])).(*engine)

	e.resize(800, 400)
	assert.Equal(t, [2]int{800, 400}, scenes[0].r.resized)
	assert.InDelta(t, 2, scenes[0].cam.aspect, 1e-6)

	e.resize(0, 400)
	assert.Equal(t, [2]int{800, 400}, scenes[0].r.resized)
}

func TestSceneStats(t *testing.T) {
	scenes, _ := newFakeScenes("world")
	e := NewEngine(WithScene(0, scenes[0])).(*engine)
	assert.Equal(t, "Chunks: 2 attached, 3 pending | Instances: 1,500", e.sceneStats())
}

func TestSceneRegistry(t *testing.T) {
	scenes, _ := newFakeScenes("a", "b")
	e := NewEngine(WithScene(1, scenes[0]))
	e.AddScene(2, scenes[1])
	assert.Equal(t, scenes[1], e.Scene(2))

	cp := e.Scenes()
	delete(cp, 1)
	assert.Len(t, e.Scenes(), 2)

	e.RemoveScene(1)
	assert.Nil(t, e.Scene(1))
}

func TestRatesAndProfiler(t *testing.T) {
	e := NewEngine(WithTickRate(-1), WithRenderFrameLimit(120), WithProfiling(true)).(*engine)
	assert.Equal(t, time.Second/60, e.engineTickRate)
	assert.Equal(t, time.Duration(float64(time.Second)/120), e.renderFrameLimit)
	assert.True(t, e.profilingEnabled)

	e.SetTickRate(30)
	assert.Equal(t, time.Duration(float64(time.Second)/30), e.engineTickRate)
	e.SetRenderFrameLimit(0)
	assert.Zero(t, e.renderFrameLimit)
	e.DisableProfiler()
	assert.False(t, e.profilingEnabled)
}

func TestRunStopsOnQuit(t *testing.T) {
	scenes, _ := newFakeScenes("world")
	scenes[0].active = false
	e := NewEngine(WithScene(0, scenes[0]), WithRenderFrameLimit(200))

	done := make(chan struct{})
	go func() {
		e.Run()
		close(done)
	}()

	time.Sleep(20 * time.Millisecond)
	e.Quit()
	e.Quit()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after Quit")
	}
	assert.True(t, scenes[0].closed)
}
