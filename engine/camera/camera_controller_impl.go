package camera

import (
	"sync"

	"github.com/chewxy/math32"
)

const (
	// DefaultSpeed is the default movement speed in world units per second.
	DefaultSpeed float32 = 20
	// DefaultSensitivity is the default mouse look sensitivity in radians per pixel.
	DefaultSensitivity float32 = 0.0025
	// DefaultMaxPitch limits how far the camera can look up or down (89 degrees).
	DefaultMaxPitch = 89 * math32.Pi / 180
)

// cameraControllerImpl is the free-fly implementation of CameraController.
type cameraControllerImpl struct {
	mu sync.Mutex

	position [3]float32
	yaw      float32
	pitch    float32

	maxPitch    float32
	speed       float32
	sensitivity float32
}

var _ CameraController = &cameraControllerImpl{}

// NewCameraController creates a free-fly controller at the origin looking down +X.
//
// Parameters:
//   - options: functional options to configure the controller
//
// Returns:
//   - CameraController: the newly created controller
func NewCameraController(options ...CameraControllerOption) CameraController {
	cc := &cameraControllerImpl{
		maxPitch:    DefaultMaxPitch,
		speed:       DefaultSpeed,
		sensitivity: DefaultSensitivity,
	}
	for _, option := range options {
		option(cc)
	}
	cc.pitch = cc.clampPitch(cc.pitch)
	return cc
}

func (cc *cameraControllerImpl) Position() (x, y, z float32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.position[0], cc.position[1], cc.position[2]
}

func (cc *cameraControllerImpl) SetPosition(x, y, z float32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.position = [3]float32{x, y, z}
}

func (cc *cameraControllerImpl) Direction() (x, y, z float32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.direction()
}

func (cc *cameraControllerImpl) Target() (x, y, z float32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	dx, dy, dz := cc.direction()
	return cc.position[0] + dx, cc.position[1] + dy, cc.position[2] + dz
}

func (cc *cameraControllerImpl) Yaw() float32 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.yaw
}

func (cc *cameraControllerImpl) Pitch() float32 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.pitch
}

func (cc *cameraControllerImpl) SetOrientation(yaw, pitch float32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.yaw = yaw
	cc.pitch = cc.clampPitch(pitch)
}

func (cc *cameraControllerImpl) Move(forward, right, up, dt float32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()

	step := cc.speed * dt
	fx, fy, fz := cc.direction()
	// right = normalize(forward x worldUp) with worldUp = (0, 1, 0)
	rx, rz := -fz, fx
	if l := math32.Sqrt(rx*rx + rz*rz); l > 0 {
		rx, rz = rx/l, rz/l
	}

	cc.position[0] += (fx*forward + rx*right) * step
	cc.position[1] += (fy*forward + up) * step
	cc.position[2] += (fz*forward + rz*right) * step
}

func (cc *cameraControllerImpl) Look(dx, dy float32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.yaw += dx * cc.sensitivity
	cc.pitch = cc.clampPitch(cc.pitch - dy*cc.sensitivity)
}

func (cc *cameraControllerImpl) Speed() float32 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.speed
}

func (cc *cameraControllerImpl) SetSpeed(speed float32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.speed = speed
}

func (cc *cameraControllerImpl) Sensitivity() float32 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.sensitivity
}

func (cc *cameraControllerImpl) SetSensitivity(sensitivity float32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.sensitivity = sensitivity
}

// direction returns the unit forward vector. Caller must hold the mutex.
func (cc *cameraControllerImpl) direction() (x, y, z float32) {
	sy, cy := math32.Sincos(cc.yaw)
	sp, cp := math32.Sincos(cc.pitch)
	return cp * cy, sp, cp * sy
}

func (cc *cameraControllerImpl) clampPitch(p float32) float32 {
	return math32.Max(-cc.maxPitch, math32.Min(cc.maxPitch, p))
}
