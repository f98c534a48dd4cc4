package camera

// CameraController owns the free-fly camera's positional state. Camera reads position and target
// from it and computes view/projection matrices.
//
// Orientation is stored as yaw and pitch. Yaw rotates about world Y starting from +X, pitch tilts
// toward +Y, so the default orientation looks down +X.
type CameraController interface {
	// Position returns the camera's world-space position.
	//
	// Returns:
	//   - x, y, z: world-space camera position
	Position() (x, y, z float32)

	// SetPosition sets the camera's world-space position.
	//
	// Parameters:
	//   - x, y, z: world-space coordinates
	SetPosition(x, y, z float32)

	// Direction returns the unit view direction.
	//
	// Returns:
	//   - x, y, z: the normalized forward vector
	Direction() (x, y, z float32)

	// Target returns the look-at point, one unit along Direction from Position.
	//
	// Returns:
	//   - x, y, z: world-space target position
	Target() (x, y, z float32)

	// Yaw returns the horizontal angle in radians.
	Yaw() float32

	// Pitch returns the vertical angle in radians.
	Pitch() float32

	// SetOrientation sets yaw and pitch directly. Pitch is clamped to the controller's limit.
	//
	// Parameters:
	//   - yaw: horizontal angle in radians
	//   - pitch: vertical angle in radians
	SetOrientation(yaw, pitch float32)

	// Move translates the camera along its forward, right and world-up axes.
	// Each axis input is typically -1, 0 or 1 and is scaled by Speed and dt.
	//
	// Parameters:
	//   - forward: movement along the view direction
	//   - right: movement along the horizontal right axis
	//   - up: movement along world up
	//   - dt: elapsed time in seconds
	Move(forward, right, up, dt float32)

	// Look rotates the camera by a mouse delta scaled by Sensitivity.
	// Positive dx turns right and positive dy, which is screen-down, tilts down.
	//
	// Parameters:
	//   - dx, dy: mouse movement in pixels
	Look(dx, dy float32)

	// Speed returns the movement speed in world units per second.
	Speed() float32

	// SetSpeed sets the movement speed in world units per second.
	SetSpeed(speed float32)

	// Sensitivity returns the mouse look sensitivity in radians per pixel.
	Sensitivity() float32

	// SetSensitivity sets the mouse look sensitivity in radians per pixel.
	SetSensitivity(sensitivity float32)
}
