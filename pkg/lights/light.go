package lights

import "github.com/df07/go-whitted-raytracer/pkg/core"

// Light is a point light. It carries no behavior of its own; shading and
// shadow tests are done by the scene.
type Light struct {
	Position  core.Vec3
	Color     core.Vec3
	Intensity float64
}

// NewLight creates a point light
func NewLight(position, color core.Vec3, intensity float64) *Light {
	return &Light{
		Position:  position,
		Color:     color,
		Intensity: intensity,
	}
}

// NewWhiteLight creates a white point light with intensity 1
func NewWhiteLight(position core.Vec3) *Light {
	return NewLight(position, core.NewVec3(1, 1, 1), 1)
}

// SetPosition moves the light
func (l *Light) SetPosition(position core.Vec3) {
	l.Position = position
}

// DirectionFrom returns the unit direction from point to the light and the distance between them
func (l *Light) DirectionFrom(point core.Vec3) (core.Vec3, float64) {
	toLight := l.Position.Subtract(point)
	distance := toLight.Length()
	return toLight.Multiply(1 / distance), distance
}
