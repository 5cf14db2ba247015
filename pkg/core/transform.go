package core

import "github.com/go-gl/mathgl/mgl64"

// Transform places an object in world space. The model matrix maps object
// space to world space and its inverse is cached alongside it, so it must only
// be changed through SetModel.
//
// Supported model matrices are compositions of translation, rotation and
// uniform scale. Normals are carried to world space with the forward matrix,
// which is exact for that subset only; non-uniform scale yields skewed normals.
type Transform struct {
	model   mgl64.Mat4
	inverse mgl64.Mat4
}

// NewTransform creates a transform from a model matrix. The matrix must be invertible.
func NewTransform(model mgl64.Mat4) Transform {
	return Transform{model: model, inverse: model.Inv()}
}

// IdentityTransform returns a transform that leaves object space equal to world space
func IdentityTransform() Transform {
	return NewTransform(mgl64.Ident4())
}

// Model returns the object-to-world matrix
func (t Transform) Model() mgl64.Mat4 {
	return t.model
}

// Inverse returns the cached world-to-object matrix
func (t Transform) Inverse() mgl64.Mat4 {
	return t.inverse
}

// SetModel replaces the model matrix and refreshes the cached inverse
func (t *Transform) SetModel(model mgl64.Mat4) {
	t.model = model
	t.inverse = model.Inv()
}

// RayToObject maps a world-space ray into object space. The direction is
// re-normalized because a scaled model matrix is not an isometry.
func (t Transform) RayToObject(ray Ray) Ray {
	return NewRay(
		TransformPoint(ray.Origin, t.inverse),
		TransformDirection(ray.Direction, t.inverse),
	)
}

// PointToWorld maps an object-space point into world space
func (t Transform) PointToWorld(p Vec3) Vec3 {
	return TransformPoint(p, t.model)
}

// NormalToWorld maps an object-space normal into world space and normalizes it.
// It uses the model matrix rather than its inverse transpose, which is only
// correct for translation, rotation and uniform scale.
func (t Transform) NormalToWorld(n Vec3) Vec3 {
	return TransformDirection(n, t.model).Normalize()
}

// TransformPoint applies m to p as a homogeneous point (w = 1) and performs the perspective divide
func TransformPoint(p Vec3, m mgl64.Mat4) Vec3 {
	h := m.Mul4x1(mgl64.Vec4{p.X, p.Y, p.Z, 1})
	w := h.W()
	return Vec3{h.X() / w, h.Y() / w, h.Z() / w}
}

// TransformDirection applies m to d as a direction (w = 0), ignoring translation
func TransformDirection(d Vec3, m mgl64.Mat4) Vec3 {
	h := m.Mul4x1(mgl64.Vec4{d.X, d.Y, d.Z, 0})
	return Vec3{h.X(), h.Y(), h.Z()}
}

// Translate returns a translation matrix
func Translate(v Vec3) mgl64.Mat4 {
	return mgl64.Translate3D(v.X, v.Y, v.Z)
}

// UniformScale returns a scale matrix with the same factor on every axis
func UniformScale(s float64) mgl64.Mat4 {
	return mgl64.Scale3D(s, s, s)
}

// Rotate returns a rotation of degrees around axis
func Rotate(degrees float64, axis Vec3) mgl64.Mat4 {
	a := axis.Normalize()
	return mgl64.HomogRotate3D(mgl64.DegToRad(degrees), mgl64.Vec3{a.X, a.Y, a.Z})
}

// Compose multiplies matrices left to right, so Compose(T, R, S) applies S first
func Compose(ms ...mgl64.Mat4) mgl64.Mat4 {
	out := mgl64.Ident4()
	for _, m := range ms {
		out = out.Mul4(m)
	}
	return out
}

// ToMgl converts v to an mgl64 vector
func (v Vec3) ToMgl() mgl64.Vec3 {
	return mgl64.Vec3{v.X, v.Y, v.Z}
}
