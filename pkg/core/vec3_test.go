package core

import (
	"math"
	"testing"
)

func TestVec3_Reflect(t *testing.T) {
	tests := []struct {
		name     string
		vector   Vec3
		normal   Vec3
		expected Vec3
	}{
		{
			name:     "Head-on reflection",
			vector:   NewVec3(0, 0, -1),
			normal:   NewVec3(0, 0, 1),
			expected: NewVec3(0, 0, 1),
		},
		{
			name:     "45 degree reflection off floor",
			vector:   NewVec3(1, -1, 0),
			normal:   NewVec3(0, 1, 0),
			expected: NewVec3(1, 1, 0),
		},
		{
			name:     "Grazing vector is unchanged",
			vector:   NewVec3(1, 0, 0),
			normal:   NewVec3(0, 1, 0),
			expected: NewVec3(1, 0, 0),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.vector.Reflect(tt.normal)

			const tolerance = 1e-9
			if result.Subtract(tt.expected).Length() > tolerance {
				t.Errorf("Expected %v, got %v", tt.expected, result)
			}
		})
	}
}

func TestVec3_Lerp(t *testing.T) {
	a := NewVec3(0, 0, 0)
	b := NewVec3(1, 2, 4)

	if got := a.Lerp(b, 0); got != a {
		t.Errorf("Lerp(0) = %v, want %v", got, a)
	}
	if got := a.Lerp(b, 1); got != b {
		t.Errorf("Lerp(1) = %v, want %v", got, b)
	}
	if got := a.Lerp(b, 0.5); got.Subtract(NewVec3(0.5, 1, 2)).Length() > 1e-12 {
		t.Errorf("Lerp(0.5) = %v, want (0.5, 1, 2)", got)
	}
}

func TestVec3_NormalizeZero(t *testing.T) {
	if got := (Vec3{}).Normalize(); got != (Vec3{}) {
		t.Errorf("Expected zero vector, got %v", got)
	}
}

func TestVec3_Cross(t *testing.T) {
	x := NewVec3(1, 0, 0)
	y := NewVec3(0, 1, 0)
	if got := x.Cross(y); got != NewVec3(0, 0, 1) {
		t.Errorf("x × y = %v, want (0, 0, 1)", got)
	}
}

func TestVec3_Clamp(t *testing.T) {
	got := NewVec3(-0.5, 0.25, 3).Clamp(0, 1)
	want := NewVec3(0, 0.25, 1)
	if got != want {
		t.Errorf("Clamp = %v, want %v", got, want)
	}
}

func TestVec3_ReciprocalSignedInfinity(t *testing.T) {
	got := NewVec3(0, math.Copysign(0, -1), 2).Reciprocal()
	if !math.IsInf(got.X, 1) {
		t.Errorf("1/+0 = %v, want +Inf", got.X)
	}
	if !math.IsInf(got.Y, -1) {
		t.Errorf("1/-0 = %v, want -Inf", got.Y)
	}
	if got.Z != 0.5 {
		t.Errorf("1/2 = %v, want 0.5", got.Z)
	}
}

func TestVec3_IsFinite(t *testing.T) {
	if !NewVec3(1, 2, 3).IsFinite() {
		t.Error("Expected finite vector")
	}
	if NewVec3(math.NaN(), 0, 0).IsFinite() {
		t.Error("NaN component should not be finite")
	}
	if NewVec3(0, math.Inf(1), 0).IsFinite() {
		t.Error("Inf component should not be finite")
	}
}

func TestRay_DirectionIsNormalized(t *testing.T) {
	directions := []Vec3{
		NewVec3(0, 0, -1),
		NewVec3(3, 4, 0),
		NewVec3(1e-3, 2e-3, -5e-4),
		NewVec3(-100, 250, 17),
	}
	for _, d := range directions {
		ray := NewRay(NewVec3(1, 2, 3), d)
		if math.Abs(ray.Direction.Length()-1) > 1e-5 {
			t.Errorf("Direction %v normalized to length %f", d, ray.Direction.Length())
		}
	}
}

func TestRay_At(t *testing.T) {
	ray := NewRay(NewVec3(1, 0, 0), NewVec3(0, 0, -5))
	got := ray.At(2)
	want := NewVec3(1, 0, -2)
	if got.Subtract(want).Length() > 1e-12 {
		t.Errorf("At(2) = %v, want %v", got, want)
	}
}
