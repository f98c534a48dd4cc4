package world

import (
	"sync"

	"github.com/Carmen-Shannon/vtrace-go/common"
)

// InputState accumulates keyboard and mouse input between ticks.
//
// Window callbacks write into it from the event loop while the tick goroutine reads it, so every
// method is guarded by a mutex. EndTick snapshots the current state as the "last" state used for
// edge detection and mouse deltas.
type InputState struct {
	mu sync.Mutex

	keys     [common.MaxKeyCode + 1]bool
	lastKeys [common.MaxKeyCode + 1]bool

	mouse     [2]float64
	lastMouse [2]float64
	mouseSeen bool
}

// NewInputState returns an empty InputState.
func NewInputState() *InputState {
	return &InputState{}
}

// KeyDown records a key press. Codes outside [0, common.MaxKeyCode] are ignored.
func (s *InputState) KeyDown(key int) {
	s.setKey(key, true)
}

// KeyUp records a key release. Codes outside [0, common.MaxKeyCode] are ignored.
func (s *InputState) KeyUp(key int) {
	s.setKey(key, false)
}

// MouseMove records the absolute cursor position. The first position seen becomes the baseline
// so the initial cursor jump never produces a delta.
func (s *InputState) MouseMove(x, y float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mouse = [2]float64{x, y}
	if !s.mouseSeen {
		s.lastMouse = s.mouse
		s.mouseSeen = true
	}
}

// Pressed reports whether key is currently held.
func (s *InputState) Pressed(key int) bool {
	if !validKey(key) {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.keys[key]
}

// JustPressed reports whether key went down since the last EndTick.
func (s *InputState) JustPressed(key int) bool {
	if !validKey(key) {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.keys[key] && !s.lastKeys[key]
}

// MouseDelta returns the cursor movement since the last EndTick.
//
// Returns:
//   - dx, dy: movement in pixels, positive right and down
func (s *InputState) MouseDelta() (dx, dy float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mouse[0] - s.lastMouse[0], s.mouse[1] - s.lastMouse[1]
}

// Axis returns +1 when positive is held, -1 when negative is held, and 0 for both or neither.
func (s *InputState) Axis(positive, negative int) float32 {
	var v float32
	if s.Pressed(positive) {
		v++
	}
	if s.Pressed(negative) {
		v--
	}
	return v
}

// EndTick copies the current key and mouse state into the last state.
func (s *InputState) EndTick() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastKeys = s.keys
	s.lastMouse = s.mouse
}

func (s *InputState) setKey(key int, down bool) {
	if !validKey(key) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.keys[key] = down
}

func validKey(key int) bool {
	return key >= 0 && key <= common.MaxKeyCode
}
