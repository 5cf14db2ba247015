package geometry

import "github.com/df07/go-whitted-raytracer/pkg/core"

// Shape is anything a ray can hit. Implementations take a world-space ray and
// report the nearest hit in world space, or Miss().
//
// The variants shipped with the raytracer are *Sphere and *Cuboid.
type Shape interface {
	Intersect(ray core.Ray) Intersection
}

// Placed is implemented by shapes positioned with a model matrix
type Placed interface {
	Transform() core.Transform
}
