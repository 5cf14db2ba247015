package geometry

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/df07/go-whitted-raytracer/pkg/core"
	"github.com/df07/go-whitted-raytracer/pkg/material"
)

// Sphere is a sphere of Radius centered at the origin of its object space
type Sphere struct {
	Placement
	Radius float64
}

// NewSphere creates a sphere at center
func NewSphere(center core.Vec3, radius float64, mat material.Material) *Sphere {
	return NewSphereWithModel(core.Translate(center), radius, mat)
}

// NewSphereWithModel creates a sphere placed by an arbitrary model matrix
func NewSphereWithModel(model mgl64.Mat4, radius float64, mat material.Material) *Sphere {
	return &Sphere{
		Placement: newPlacement(model, mat),
		Radius:    radius,
	}
}

// Intersect tests a world-space ray against the sphere
func (s *Sphere) Intersect(worldRay core.Ray) Intersection {
	ray := s.transform.RayToObject(worldRay)
	o, d := ray.Origin, ray.Direction

	// Quadratic equation coefficients: at² + bt + c = 0
	a := d.Dot(d)
	b := 2 * o.Dot(d)
	c := o.Dot(o) - s.Radius*s.Radius

	discriminant := b*b - 4*a*c
	if discriminant < 0 {
		return Miss()
	}
	sqrtD := math.Sqrt(discriminant)

	// Nearest root first, then the far one when the origin is inside
	t := (-b - sqrtD) / (2 * a)
	if t < 0 {
		t = (-b + sqrtD) / (2 * a)
		if t < 0 {
			// Sphere is entirely behind the ray
			return Miss()
		}
	}

	objectPoint := ray.At(t)
	// Valid only because the sphere is centered at the object-space origin
	objectNormal := objectPoint.Normalize()

	return s.toWorld(worldRay, objectPoint, objectNormal)
}
