package material

import "github.com/df07/go-whitted-raytracer/pkg/core"

// Material holds the Phong shading coefficients attached to a shape.
//
// Ambient, Diffuse and Specular are per-channel multipliers, conventionally in
// [0,1] but not clamped. Reflectiveness blends local shading with the traced
// mirror reflection: 0 is opaque, 1 is a perfect mirror.
type Material struct {
	Color          core.Vec3
	Ambient        core.Vec3
	Diffuse        core.Vec3
	Specular       core.Vec3
	Shininess      float64
	Reflectiveness float64
}

// NewPhong creates a material whose ambient, diffuse and specular
// coefficients are the same on every channel
func NewPhong(color core.Vec3, ambient, diffuse, specular, shininess, reflectiveness float64) Material {
	return Material{
		Color:          color,
		Ambient:        core.Splat(ambient),
		Diffuse:        core.Splat(diffuse),
		Specular:       core.Splat(specular),
		Shininess:      shininess,
		Reflectiveness: reflectiveness,
	}
}

// NewMatte creates a dull, non-reflective material of the given color
func NewMatte(color core.Vec3) Material {
	return NewPhong(color, 0.1, 0.7, 0.2, 16, 0)
}

// NewPlastic creates a non-reflective material with a tight highlight
func NewPlastic(color core.Vec3) Material {
	return NewPhong(color, 0.1, 0.7, 0.3, 32, 0)
}

// NewMirror creates a white material that reflects with the given strength
func NewMirror(reflectiveness float64) Material {
	return NewPhong(core.NewVec3(1, 1, 1), 0.1, 0.1, 0.8, 64, reflectiveness)
}

// IsReflective reports whether tracing should spawn a reflection ray
func (m Material) IsReflective() bool {
	return m.Reflectiveness > 0
}
