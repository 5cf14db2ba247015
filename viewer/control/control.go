// Package control turns keyboard state into camera motion for the
// interactive viewer. It has no windowing dependency so it can be tested
// headless.
package control

import (
	"math"

	"github.com/df07/go-whitted-raytracer/pkg/core"
	"github.com/df07/go-whitted-raytracer/pkg/geometry"
)

const (
	// DefaultMoveSpeed is in world units per second
	DefaultMoveSpeed = 2.5

	// DefaultTurnSpeed is in degrees per second
	DefaultTurnSpeed = 60.0

	// maxPitch keeps the view direction away from straight up or down
	maxPitch = 0.99
)

// Input is the set of held keys for one update
type Input struct {
	Forward, Back      bool // W, S
	Left, Right        bool // A, D
	YawLeft, YawRight  bool // left, right arrows
	PitchUp, PitchDown bool // up, down arrows
	Reset              bool // R
}

// Controller moves a camera in response to Input
type Controller struct {
	MoveSpeed float64
	TurnSpeed float64

	camera  *geometry.Camera
	initial geometry.Pose
}

// NewController drives camera, remembering its current pose for Reset
func NewController(camera *geometry.Camera) *Controller {
	return &Controller{
		MoveSpeed: DefaultMoveSpeed,
		TurnSpeed: DefaultTurnSpeed,
		camera:    camera,
		initial:   camera.Pose(),
	}
}

// Update applies one tick of input lasting dt seconds and reports whether the camera pose changed
func (c *Controller) Update(in Input, dt float64) bool {
	before := c.camera.Pose()

	if in.Reset {
		c.camera.SetPosition(c.initial.Position)
		c.camera.SetDirection(c.initial.Direction)
		c.camera.SetFieldOfView(c.initial.FieldOfView)
		c.camera.SetAspectRatio(c.initial.AspectRatio)
		return c.camera.Pose() != before
	}

	step := c.MoveSpeed * dt
	right, _ := c.camera.Basis()
	forward := c.camera.Direction()

	var offset core.Vec3
	if in.Forward {
		offset = offset.Add(forward.Multiply(step))
	}
	if in.Back {
		offset = offset.Subtract(forward.Multiply(step))
	}
	if in.Right {
		offset = offset.Add(right.Multiply(step))
	}
	if in.Left {
		offset = offset.Subtract(right.Multiply(step))
	}
	if offset != (core.Vec3{}) {
		c.camera.Move(offset)
	}

	turn := c.TurnSpeed * dt
	var yaw, pitch float64
	if in.YawLeft {
		yaw += turn
	}
	if in.YawRight {
		yaw -= turn
	}
	if in.PitchUp {
		pitch += turn
	}
	if in.PitchDown {
		pitch -= turn
	}

	direction := c.camera.Direction()
	if yaw != 0 {
		direction = core.TransformDirection(direction, core.Rotate(yaw, geometry.WorldUp))
	}
	if pitch != 0 {
		// Pitch about the right vector of the yawed direction
		axis := direction.Cross(geometry.WorldUp).Normalize()
		pitched := core.TransformDirection(direction, core.Rotate(pitch, axis))
		if math.Abs(pitched.Normalize().Y) < maxPitch {
			direction = pitched
		}
	}
	if yaw != 0 || pitch != 0 {
		c.camera.SetDirection(direction)
	}

	return c.camera.Pose() != before
}
