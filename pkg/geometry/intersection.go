package geometry

import (
	"github.com/df07/go-whitted-raytracer/pkg/core"
	"github.com/df07/go-whitted-raytracer/pkg/material"
)

// missDistance is the sentinel distance carried by a miss
const missDistance = -1.0

// Intersection describes where a ray hit a shape.
// When Hit is false only Distance is meaningful, and it is always negative.
// When Hit is true Distance is the world-space distance from the ray origin
// (>= 0) and Normal is the unit outward surface normal in world space.
type Intersection struct {
	Hit      bool
	Distance float64
	Material material.Material
	Normal   core.Vec3
}

// Miss returns the intersection reported when a ray hits nothing
func Miss() Intersection {
	return Intersection{Distance: missDistance}
}

// NewHit returns a successful intersection
func NewHit(distance float64, mat material.Material, normal core.Vec3) Intersection {
	return Intersection{
		Hit:      true,
		Distance: distance,
		Material: mat,
		Normal:   normal,
	}
}
