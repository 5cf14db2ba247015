package geometry

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/df07/go-whitted-raytracer/pkg/core"
	"github.com/df07/go-whitted-raytracer/pkg/material"
)

// Placement is embedded by every shape: the model transform that puts the
// canonical object-space shape into the world, and its material.
type Placement struct {
	transform core.Transform
	Material  material.Material
}

func newPlacement(model mgl64.Mat4, mat material.Material) Placement {
	return Placement{
		transform: core.NewTransform(model),
		Material:  mat,
	}
}

// Transform returns the shape's model transform
func (p *Placement) Transform() core.Transform {
	return p.transform
}

// SetModel moves the shape. The cached inverse is refreshed.
func (p *Placement) SetModel(model mgl64.Mat4) {
	p.transform.SetModel(model)
}

// Center returns the world-space image of the object-space origin
func (p *Placement) Center() core.Vec3 {
	return p.transform.PointToWorld(core.Vec3{})
}

// toWorld converts an object-space hit into a world-space intersection.
// The distance is measured again in world space instead of rescaling the
// object-space parameter, since scale makes the two differ.
func (p *Placement) toWorld(worldRay core.Ray, objectPoint, objectNormal core.Vec3) Intersection {
	worldPoint := p.transform.PointToWorld(objectPoint)
	worldNormal := p.transform.NormalToWorld(objectNormal)
	distance := worldPoint.Subtract(worldRay.Origin).Length()
	return NewHit(distance, p.Material, worldNormal)
}
