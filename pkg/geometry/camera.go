package geometry

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/df07/go-whitted-raytracer/pkg/core"
)

// WorldUp is the up direction used to orient every camera
var WorldUp = core.NewVec3(0, 1, 0)

const (
	nearPlane = 0.1
	farPlane  = 100.0
)

// Camera generates primary rays through an analytic viewport placed one unit
// in front of the camera. It keeps no derived state, so setters never leave
// it inconsistent.
type Camera struct {
	position    core.Vec3
	direction   core.Vec3
	fieldOfView float64 // vertical, in degrees
	aspectRatio float64
}

// Pose is a comparable snapshot of everything that affects the rays a camera generates
type Pose struct {
	Position    core.Vec3
	Direction   core.Vec3
	FieldOfView float64
	AspectRatio float64
}

// NewCamera creates a camera. The direction is normalized.
func NewCamera(position, direction core.Vec3, fovDegrees, aspectRatio float64) *Camera {
	return &Camera{
		position:    position,
		direction:   direction.Normalize(),
		fieldOfView: fovDegrees,
		aspectRatio: aspectRatio,
	}
}

// DefaultCamera returns a camera at the origin looking down -Z with a 45° field of view and 16:9 aspect
func DefaultCamera() *Camera {
	return NewCamera(core.Vec3{}, core.NewVec3(0, 0, -1), 45, 16.0/9.0)
}

// Position returns the camera position
func (c *Camera) Position() core.Vec3 { return c.position }

// Direction returns the unit view direction
func (c *Camera) Direction() core.Vec3 { return c.direction }

// FieldOfView returns the vertical field of view in degrees
func (c *Camera) FieldOfView() float64 { return c.fieldOfView }

// AspectRatio returns width / height
func (c *Camera) AspectRatio() float64 { return c.aspectRatio }

// SetPosition moves the camera to position
func (c *Camera) SetPosition(position core.Vec3) { c.position = position }

// SetDirection points the camera along direction, which is normalized
func (c *Camera) SetDirection(direction core.Vec3) { c.direction = direction.Normalize() }

// SetFieldOfView sets the vertical field of view in degrees
func (c *Camera) SetFieldOfView(fovDegrees float64) { c.fieldOfView = fovDegrees }

// SetAspectRatio sets width / height
func (c *Camera) SetAspectRatio(aspectRatio float64) { c.aspectRatio = aspectRatio }

// Move translates the camera by offset
func (c *Camera) Move(offset core.Vec3) {
	c.position = c.position.Add(offset)
}

// LookAt turns the camera toward target
func (c *Camera) LookAt(target core.Vec3) {
	c.direction = target.Subtract(c.position).Normalize()
}

// Pose returns the current pose
func (c *Camera) Pose() Pose {
	return Pose{
		Position:    c.position,
		Direction:   c.direction,
		FieldOfView: c.fieldOfView,
		AspectRatio: c.aspectRatio,
	}
}

// Basis returns the camera's right and up vectors. When the view direction is
// parallel to WorldUp, right falls back to +X.
func (c *Camera) Basis() (right, up core.Vec3) {
	right = c.direction.Cross(WorldUp).Normalize()
	if right.LengthSquared() == 0 {
		right = core.NewVec3(1, 0, 0)
	}
	up = right.Cross(c.direction)
	return right, up
}

// GetRay returns the world-space ray through normalized screen coordinates
// (u, v), u running left to right and v top to bottom, both in [0,1]
func (c *Camera) GetRay(u, v float64) core.Ray {
	right, up := c.Basis()

	// Viewport one unit in front of the camera
	viewportHeight := 2 * math.Tan(mgl64.DegToRad(c.fieldOfView)/2)
	viewportWidth := c.aspectRatio * viewportHeight

	// Top-left corner of the viewport
	corner := c.position.
		Add(c.direction).
		Subtract(right.Multiply(viewportWidth / 2)).
		Add(up.Multiply(viewportHeight / 2))

	target := corner.
		Add(right.Multiply(u * viewportWidth)).
		Subtract(up.Multiply(v * viewportHeight))

	return core.NewRay(c.position, target.Subtract(c.position))
}

// ViewMatrix returns the world-to-camera matrix equivalent to the analytic basis
func (c *Camera) ViewMatrix() mgl64.Mat4 {
	_, up := c.Basis()
	return mgl64.LookAtV(c.position.ToMgl(), c.position.Add(c.direction).ToMgl(), up.ToMgl())
}

// ProjectionMatrix returns the perspective projection matching the camera's field of view and aspect
func (c *Camera) ProjectionMatrix() mgl64.Mat4 {
	return mgl64.Perspective(mgl64.DegToRad(c.fieldOfView), c.aspectRatio, nearPlane, farPlane)
}

// Project maps a world-space point to normalized screen coordinates (u, v),
// the inverse of GetRay. ok is false for points behind the camera.
func (c *Camera) Project(point core.Vec3) (u, v float64, ok bool) {
	clip := c.ProjectionMatrix().Mul4(c.ViewMatrix()).Mul4x1(mgl64.Vec4{point.X, point.Y, point.Z, 1})
	if clip.W() <= 0 {
		return 0, 0, false
	}
	ndcX := clip.X() / clip.W()
	ndcY := clip.Y() / clip.W()
	return (ndcX + 1) / 2, (1 - ndcY) / 2, true
}
