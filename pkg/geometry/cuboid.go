package geometry

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/df07/go-whitted-raytracer/pkg/core"
	"github.com/df07/go-whitted-raytracer/pkg/material"
)

// faceEpsilon is the tolerance used to decide which face a hit point lies on
const faceEpsilon = 1e-4

// Cuboid is a box with the given Dimensions (full width, height, depth),
// axis-aligned and centered at the origin of its object space
type Cuboid struct {
	Placement
	Dimensions core.Vec3
}

// NewCuboid creates a cuboid centered at center
func NewCuboid(center, dimensions core.Vec3, mat material.Material) *Cuboid {
	return NewCuboidWithModel(core.Translate(center), dimensions, mat)
}

// NewCuboidWithModel creates a cuboid placed by an arbitrary model matrix
func NewCuboidWithModel(model mgl64.Mat4, dimensions core.Vec3, mat material.Material) *Cuboid {
	return &Cuboid{
		Placement:  newPlacement(model, mat),
		Dimensions: dimensions,
	}
}

// Intersect tests a world-space ray against the cuboid using the slab method.
// The hit distance is the entry distance tmin. A ray starting inside the box
// has a negative tmin, so the exit distance tmax is reported instead; Distance
// is never negative and ray.At(Distance) is always on the surface.
func (c *Cuboid) Intersect(worldRay core.Ray) Intersection {
	ray := c.transform.RayToObject(worldRay)
	half := c.Dimensions.Multiply(0.5)

	// Division by zero gives signed infinities, which keeps axis-parallel rays correct
	invDir := ray.Direction.Reciprocal()

	tmin := math.Inf(-1)
	tmax := math.Inf(1)
	for axis := 0; axis < 3; axis++ {
		o := ray.Origin.Axis(axis)
		h := half.Axis(axis)
		inv := invDir.Axis(axis)

		tLow := (-h - o) * inv
		tHigh := (h - o) * inv

		// 0 * Inf: an axis-parallel ray starting exactly on a slab plane
		if math.IsNaN(tLow) {
			tLow = math.Inf(-1)
		}
		if math.IsNaN(tHigh) {
			tHigh = math.Inf(1)
		}

		tmin = max(tmin, min(tLow, tHigh))
		tmax = min(tmax, max(tLow, tHigh))
	}

	// Box is behind the ray
	if tmax < 0 {
		return Miss()
	}
	// Slab intervals do not overlap
	if tmin > tmax {
		return Miss()
	}

	t := tmin
	if t < 0 {
		t = tmax
	}

	objectPoint := ray.At(t)
	objectNormal := cuboidFaceNormal(objectPoint, half)

	return c.toWorld(worldRay, objectPoint, objectNormal)
}

// cuboidFaceNormal returns the outward normal of the face containing p.
// Faces are checked in +X, -X, +Y, -Y, +Z, -Z order and the first match wins.
func cuboidFaceNormal(p, half core.Vec3) core.Vec3 {
	faces := [6]struct {
		coord, bound float64
		normal       core.Vec3
	}{
		{p.X, half.X, core.NewVec3(1, 0, 0)},
		{p.X, -half.X, core.NewVec3(-1, 0, 0)},
		{p.Y, half.Y, core.NewVec3(0, 1, 0)},
		{p.Y, -half.Y, core.NewVec3(0, -1, 0)},
		{p.Z, half.Z, core.NewVec3(0, 0, 1)},
		{p.Z, -half.Z, core.NewVec3(0, 0, -1)},
	}
	for _, f := range faces {
		if math.Abs(f.coord-f.bound) < faceEpsilon {
			return f.normal
		}
	}
	return core.Vec3{}
}
