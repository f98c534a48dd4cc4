package scene

import (
	"errors"
	"fmt"
	"log"
	"maps"
	"sync"

	"github.com/Carmen-Shannon/vtrace-go/engine/camera"
	"github.com/Carmen-Shannon/vtrace-go/engine/pager"
	"github.com/Carmen-Shannon/vtrace-go/engine/renderer"
	"github.com/Carmen-Shannon/vtrace-go/engine/voxel"
	"github.com/Carmen-Shannon/vtrace-go/engine/world"
)

// DefaultPipelineKey is the pipeline a Scene draws with unless WithPipelineKey overrides it.
const DefaultPipelineKey = "raymarch"

// Scene ties a World to a Camera and a Renderer.
//
// Update runs on the tick goroutine and queues freshly paged chunks. Prepare and DrawCalls run on the
// render goroutine: Prepare turns queued chunks into volume textures and graph leaves, then uploads
// instances and the camera uniform; DrawCalls issues one instanced draw per texture batch.
// Scenes can be hot-swapped via the Active flag. Thread-safe for concurrent access.
type Scene interface {
	// Name returns the scene's identifier.
	Name() string

	// SetName sets the scene's identifier.
	SetName(name string)

	// Active returns whether this scene is currently active for rendering.
	Active() bool

	// SetActive sets whether this scene is active for rendering.
	SetActive(active bool)

	// Camera returns the scene's camera.
	Camera() camera.Camera

	// Renderer returns the scene's renderer.
	Renderer() renderer.Renderer

	// World returns the scene's world.
	World() world.World

	// PipelineKey returns the key of the pipeline DrawCalls draws with.
	PipelineKey() string

	// CullingDisabled reports whether queued chunks are attached without a frustum test.
	CullingDisabled() bool

	// SetCullingDisabled toggles the frustum test applied when attaching queued chunks.
	SetCullingDisabled(disabled bool)

	// Update advances the world by one tick, refreshes the camera and queues newly paged chunks.
	//
	// Parameters:
	//   - dt: elapsed time in seconds
	//   - input: the tick's input; nil applies no movement
	//
	// Returns:
	//   - error: a paging failure
	Update(dt float32, input *world.InputState) error

	// Prepare attaches queued chunks that intersect the camera frustum and uploads the frame's
	// instances and camera uniform. Chunks outside the frustum stay queued for a later frame.
	//
	// Returns:
	//   - error: a renderer failure; after ErrTextureLimit the frame's uploads still run, the
	//     remaining chunks stay queued and no further textures are requested
	Prepare() error

	// DrawCalls records the scene's draws into the current frame.
	//
	// Returns:
	//   - error: a renderer failure
	DrawCalls() error

	// Attached returns a copy of the chunk to texture ID mapping.
	Attached() map[pager.ChunkCoord]uint32

	// Pending returns the number of queued chunks not yet attached.
	Pending() int

	// InstanceCount returns the number of instances uploaded by the last Prepare.
	InstanceCount() int

	// Close closes the world's pager. The scene stops paging afterwards.
	Close()
}

type scene struct {
	mu     *sync.RWMutex
	name   string
	active bool

	cam camera.Camera
	r   renderer.Renderer
	w   world.World

	pipelineKey     string
	cullingDisabled bool

	// queue is appended on the tick goroutine and drained by Prepare
	queueMu *sync.Mutex
	queue   []pager.ChunkCoord

	graph    *Node
	pending  []pager.ChunkCoord
	attached map[pager.ChunkCoord]uint32
	dirty    bool
	batches  []renderer.InstanceBatch
	count    int

	limitReached bool
}

var _ Scene = &scene{}

// NewScene creates a Scene.
//
// Parameters:
//   - name: the scene identifier
//   - cam: the camera whose frustum gates attachment and whose uniform is uploaded each frame
//   - r: the renderer owning the volume textures
//   - w: the world paging terrain around the camera
//   - options: builder options
//
// Returns:
//   - Scene: the scene, inactive unless WithActive is given
func NewScene(name string, cam camera.Camera, r renderer.Renderer, w world.World, options ...SceneBuilderOption) Scene {
	if cam == nil {
		panic("scene: NewScene requires a non-nil Camera")
	}
	if r == nil {
		panic("scene: NewScene requires a non-nil Renderer")
	}
	if w == nil {
		panic("scene: NewScene requires a non-nil World")
	}

	s := &scene{
		mu:          &sync.RWMutex{},
		name:        name,
		cam:         cam,
		r:           r,
		w:           w,
		pipelineKey: DefaultPipelineKey,
		queueMu:     &sync.Mutex{},
		graph:       NewGraph(),
		attached:    make(map[pager.ChunkCoord]uint32),
	}
	for _, option := range options {
		option(s)
	}
	return s
}

func (s *scene) Name() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.name
}

func (s *scene) SetName(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.name = name
}

func (s *scene) Active() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.active
}

func (s *scene) SetActive(active bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = active
}

func (s *scene) Camera() camera.Camera {
	return s.cam
}

func (s *scene) Renderer() renderer.Renderer {
	return s.r
}

func (s *scene) World() world.World {
	return s.w
}

func (s *scene) PipelineKey() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pipelineKey
}

func (s *scene) CullingDisabled() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cullingDisabled
}

func (s *scene) SetCullingDisabled(disabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cullingDisabled = disabled
}

func (s *scene) Update(dt float32, input *world.InputState) error {
	added, err := s.w.Update(dt, input)
	s.cam.Update()
	if err != nil {
		return fmt.Errorf("scene %q: %w", s.Name(), err)
	}
	if len(added) > 0 {
		s.queueMu.Lock()
		s.queue = append(s.queue, added...)
		s.queueMu.Unlock()
	}
	return nil
}

func (s *scene) Prepare() error {
	s.queueMu.Lock()
	queued := s.queue
	s.queue = nil
	s.queueMu.Unlock()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.pending = append(s.pending, queued...)
	// chunks attached before a failure are still uploaded below
	attachErr := s.attachVisible()

	if err := s.r.UpdateDescriptor(); err != nil {
		return errors.Join(attachErr, fmt.Errorf("scene %q: %w", s.name, err))
	}

	if s.dirty {
		instances := s.graph.Flatten()
		batches := Batches(instances)
		if err := s.r.UpdateInstances(GPUInstances(instances)); err != nil {
			return errors.Join(attachErr, fmt.Errorf("scene %q: %w", s.name, err))
		}
		s.batches = batches
		s.count = len(instances)
		s.dirty = false
	}

	uniform := s.cam.Uniform()
	if err := s.r.WriteCamera(uniform.Marshal()); err != nil {
		return errors.Join(attachErr, fmt.Errorf("scene %q: %w", s.name, err))
	}
	return attachErr
}

// attachVisible must be called with s.mu held. Once the renderer's texture limit is hit no further
// textures are requested and new chunks simply stay pending.
func (s *scene) attachVisible() error {
	if len(s.pending) == 0 || s.limitReached {
		return nil
	}

	p := s.w.Pager()
	visible := s.pending
	if !s.cullingDisabled {
		visible = p.Visible(s.cam.Frustum(), s.pending)
	}
	if len(visible) == 0 {
		return nil
	}

	attach := make(map[pager.ChunkCoord]struct{}, len(visible))
	for _, c := range visible {
		attach[c] = struct{}{}
	}

	remaining := make([]pager.ChunkCoord, 0, len(s.pending)-len(visible))
	var failure error
	for _, c := range s.pending {
		if _, ok := attach[c]; !ok || failure != nil {
			remaining = append(remaining, c)
			continue
		}
		if _, done := s.attached[c]; done {
			continue
		}
		chunk, ok := p.Chunk(c)
		if !ok || chunk == nil {
			continue
		}

		id, err := s.r.AddTexture(voxel.Volume(chunk))
		if err != nil {
			if errors.Is(err, renderer.ErrTextureLimit) {
				log.Printf("[Scene] %q reached the texture limit with %d chunks attached", s.name, len(s.attached))
				s.limitReached = true
			}
			failure = fmt.Errorf("scene %q: failed to attach chunk %v: %w", s.name, c, err)
			remaining = append(remaining, c)
			continue
		}

		s.graph.AddChild(NewLeaf(ChunkTransform(c.Origin(), voxel.ChunkSize/2), id))
		s.attached[c] = id
		s.dirty = true
	}
	s.pending = remaining
	return failure
}

func (s *scene) DrawCalls() error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.batches) == 0 {
		return nil
	}
	if err := s.r.DrawInstances(s.pipelineKey, s.batches); err != nil {
		return fmt.Errorf("scene %q: %w", s.name, err)
	}
	return nil
}

func (s *scene) Attached() map[pager.ChunkCoord]uint32 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return maps.Clone(s.attached)
}

func (s *scene) Pending() int {
	s.queueMu.Lock()
	queued := len(s.queue)
	s.queueMu.Unlock()

	s.mu.RLock()
	defer s.mu.RUnlock()
	return queued + len(s.pending)
}

func (s *scene) InstanceCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.count
}

func (s *scene) Close() {
	s.w.Pager().Close()
}
