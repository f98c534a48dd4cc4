package world

import (
	"fmt"

	"github.com/Carmen-Shannon/vtrace-go/common"
	"github.com/Carmen-Shannon/vtrace-go/engine/camera"
	"github.com/Carmen-Shannon/vtrace-go/engine/pager"
)

// DefaultViewDistance is the paging radius around the camera, in chunks.
const DefaultViewDistance int32 = 4

// World is the simulation state advanced on the tick goroutine: the free-fly camera controller
// and the chunk pager streaming terrain around it.
type World interface {
	// Controller returns the camera controller driven by input.
	Controller() camera.CameraController

	// Pager returns the chunk pager.
	Pager() pager.Pager

	// ViewDistance returns the paging radius in chunks.
	ViewDistance() int32

	// CameraChunk returns the chunk containing the camera.
	CameraChunk() pager.ChunkCoord

	// Update applies one tick of input and pages terrain around the camera.
	//
	// W/S move forward and back, A/D strafe, Space rises and LeftShift sinks. Mouse movement
	// since the last tick rotates the view. Update does not call input.EndTick.
	//
	// Parameters:
	//   - dt: elapsed time in seconds
	//   - input: the input state; nil applies no movement
	//
	// Returns:
	//   - []pager.ChunkCoord: newly generated non-empty chunks, nearest first
	//   - error: paging failure
	Update(dt float32, input *InputState) ([]pager.ChunkCoord, error)
}

type world struct {
	controller   camera.CameraController
	pager        pager.Pager
	viewDistance int32
}

var _ World = &world{}

// NewWorld creates a World driving ctrl and paging through p.
//
// Parameters:
//   - ctrl: the camera controller
//   - p: the chunk pager
//   - options: functional options
//
// Returns:
//   - World: the new world
func NewWorld(ctrl camera.CameraController, p pager.Pager, options ...WorldBuilderOption) World {
	w := &world{
		controller:   ctrl,
		pager:        p,
		viewDistance: DefaultViewDistance,
	}
	for _, opt := range options {
		opt(w)
	}
	return w
}

func (w *world) Controller() camera.CameraController { return w.controller }
func (w *world) Pager() pager.Pager                  { return w.pager }
func (w *world) ViewDistance() int32                 { return w.viewDistance }

func (w *world) CameraChunk() pager.ChunkCoord {
	return pager.ChunkCoordOf(w.controller.Position())
}

func (w *world) Update(dt float32, input *InputState) ([]pager.ChunkCoord, error) {
	if input != nil {
		forward := input.Axis(common.KeyW, common.KeyS)
		right := input.Axis(common.KeyD, common.KeyA)
		up := input.Axis(common.KeySpace, common.KeyLeftShift)
		if forward != 0 || right != 0 || up != 0 {
			w.controller.Move(forward, right, up, dt)
		}
		if dx, dy := input.MouseDelta(); dx != 0 || dy != 0 {
			w.controller.Look(float32(dx), float32(dy))
		}
	}

	added, err := w.pager.PageAround(w.CameraChunk(), w.viewDistance)
	if err != nil {
		return nil, fmt.Errorf("failed to page around camera: %w", err)
	}
	return added, nil
}
