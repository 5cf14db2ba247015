package geometry

import (
	"math/rand"
	"testing"

	"github.com/df07/go-whitted-raytracer/pkg/core"
)

func TestMiss_SentinelIsNegative(t *testing.T) {
	if m := Miss(); m.Hit || m.Distance >= 0 {
		t.Errorf("Miss() = %+v, want Hit=false and negative distance", m)
	}
}

func TestIntersect_MissesAlwaysNegative(t *testing.T) {
	shapes := []Shape{
		NewSphere(core.NewVec3(0, 0, -5), 1, testMaterial),
		NewCuboid(core.NewVec3(2, 0, -5), core.NewVec3(1, 2, 1), testMaterial),
	}
	random := rand.New(rand.NewSource(42))

	misses := 0
	for i := 0; i < 2000; i++ {
		origin := core.NewVec3(random.Float64()*20-10, random.Float64()*20-10, random.Float64()*20-10)
		dir := core.NewVec3(random.Float64()*2-1, random.Float64()*2-1, random.Float64()*2-1)
		if dir.LengthSquared() == 0 {
			continue
		}
		ray := core.NewRay(origin, dir)
		for _, shape := range shapes {
			hit := shape.Intersect(ray)
			if !hit.Hit {
				misses++
				if hit.Distance >= 0 {
					t.Fatalf("Miss with non-negative distance %f for ray %+v", hit.Distance, ray)
				}
				continue
			}
			if hit.Distance < 0 {
				t.Fatalf("Hit with negative distance %f for ray %+v", hit.Distance, ray)
			}
		}
	}
	if misses == 0 {
		t.Error("Expected some random rays to miss")
	}
}
