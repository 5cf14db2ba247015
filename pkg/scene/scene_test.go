package scene

import (
	"context"
	"errors"
	"math"
	"path/filepath"
	"testing"

	"github.com/df07/go-whitted-raytracer/pkg/core"
	"github.com/df07/go-whitted-raytracer/pkg/geometry"
	"github.com/df07/go-whitted-raytracer/pkg/lights"
	"github.com/df07/go-whitted-raytracer/pkg/material"
	"github.com/df07/go-whitted-raytracer/pkg/renderer"
)

const tolerance = 1e-9

func vecNear(a, b core.Vec3, tol float64) bool {
	return a.Subtract(b).Length() <= tol
}

// countingShape records how many times a ray was tested against the wrapped shape
type countingShape struct {
	geometry.Shape
	calls int
}

func (c *countingShape) Intersect(ray core.Ray) geometry.Intersection {
	c.calls++
	return c.Shape.Intersect(ray)
}

func TestFindClosestIntersection_Nearest(t *testing.T) {
	s := NewScene(nil)
	far := material.NewMatte(core.NewVec3(0, 0, 1))
	near := material.NewMatte(core.NewVec3(1, 0, 0))
	s.AddShape(geometry.NewSphere(core.NewVec3(0, 0, -10), 1, far))
	s.AddShape(geometry.NewSphere(core.NewVec3(0, 0, -5), 1, near))

	hit := s.FindClosestIntersection(core.NewRay(core.Vec3{}, core.NewVec3(0, 0, -1)))
	if !hit.Hit {
		t.Fatal("Expected a hit")
	}
	if math.Abs(hit.Distance-4) > tolerance {
		t.Errorf("Expected distance 4, got %f", hit.Distance)
	}
	if hit.Material.Color != near.Color {
		t.Errorf("Expected the nearer sphere's material, got %v", hit.Material.Color)
	}
}

func TestFindClosestIntersection_Miss(t *testing.T) {
	s := NewScene(nil)
	if hit := s.FindClosestIntersection(core.NewRay(core.Vec3{}, core.NewVec3(0, 0, -1))); hit.Hit || hit.Distance >= 0 {
		t.Errorf("Empty scene should miss with negative distance, got %+v", hit)
	}

	s.AddShape(geometry.NewSphere(core.NewVec3(0, 0, -5), 1, material.NewMatte(core.NewVec3(1, 1, 1))))
	if hit := s.FindClosestIntersection(core.NewRay(core.Vec3{}, core.NewVec3(0, 1, 0))); hit.Hit {
		t.Errorf("Ray pointing away should miss, got %+v", hit)
	}
}

func TestFindClosestIntersection_TieGoesToFirstAdded(t *testing.T) {
	s := NewScene(nil)
	first := material.NewMatte(core.NewVec3(1, 0, 0))
	second := material.NewMatte(core.NewVec3(0, 1, 0))
	firstID := s.AddShape(geometry.NewSphere(core.NewVec3(0, 0, -5), 1, first))
	s.AddShape(geometry.NewSphere(core.NewVec3(0, 0, -5), 1, second))

	hit := s.FindClosestIntersection(core.NewRay(core.Vec3{}, core.NewVec3(0, 0, -1)))
	if hit.Material.Color != first.Color {
		t.Errorf("Expected first-added shape to win the tie, got color %v", hit.Material.Color)
	}

	_, id := s.Inspect(0.5, 0.5)
	if id != firstID {
		t.Errorf("Expected Inspect to report shape %d, got %d", firstID, id)
	}
}

func TestAddShape_StableIDs(t *testing.T) {
	s := NewScene(nil)
	a := geometry.NewSphere(core.Vec3{}, 1, material.NewMatte(core.NewVec3(1, 1, 1)))
	b := geometry.NewCuboid(core.Vec3{}, core.NewVec3(1, 1, 1), material.NewMatte(core.NewVec3(1, 1, 1)))

	idA := s.AddShape(a)
	idB := s.AddShape(b)

	if idA != 0 || idB != 1 {
		t.Errorf("Expected IDs 0 and 1, got %d and %d", idA, idB)
	}
	if s.Shape(idA) != a || s.Shape(idB) != b {
		t.Error("Shape(id) did not return the added shape")
	}
	if s.Shape(NoShape) != nil || s.Shape(5) != nil {
		t.Error("Unknown IDs should return nil")
	}
	if len(s.Shapes()) != 2 {
		t.Errorf("Expected 2 shapes, got %d", len(s.Shapes()))
	}
}

func TestCalculateLighting_DirectLight(t *testing.T) {
	camera := geometry.NewCamera(core.NewVec3(0, 5, 0), core.NewVec3(0, -1, 0), 45, 1)
	s := NewScene(camera)
	s.AddLight(lights.NewWhiteLight(core.NewVec3(0, 1, 0)))

	// Light straight above at distance 1, viewer straight above: n·l = 1 and v·r = 1
	mat := material.NewPhong(core.NewVec3(1, 1, 1), 0, 1, 0.1, 1, 0)
	got := s.CalculateLighting(core.Vec3{}, core.NewVec3(0, 1, 0), mat)

	attenuation := 1 / (1 + 0.09 + 0.032)
	want := core.Splat(1.1 * attenuation)
	if !vecNear(got, want, 1e-9) {
		t.Errorf("Expected %v, got %v", want, got)
	}
}

func TestCalculateLighting_AmbientOnlyWithoutLights(t *testing.T) {
	s := NewScene(nil)
	mat := material.NewPhong(core.NewVec3(1, 0.5, 0), 0.2, 0.7, 0.3, 32, 0)

	got := s.CalculateLighting(core.Vec3{}, core.NewVec3(0, 1, 0), mat)
	want := core.NewVec3(0.2, 0.1, 0)
	if !vecNear(got, want, tolerance) {
		t.Errorf("Expected ambient %v, got %v", want, got)
	}
}

func TestCalculateLighting_Clamped(t *testing.T) {
	camera := geometry.NewCamera(core.NewVec3(0, 5, 0), core.NewVec3(0, -1, 0), 45, 1)
	s := NewScene(camera)
	s.AddLight(lights.NewLight(core.NewVec3(0, 1, 0), core.NewVec3(1, 1, 1), 50))

	got := s.CalculateLighting(core.Vec3{}, core.NewVec3(0, 1, 0), material.NewPlastic(core.NewVec3(1, 1, 1)))
	if got != core.NewVec3(1, 1, 1) {
		t.Errorf("Expected clamped white, got %v", got)
	}
}

func TestCalculateLighting_Occlusion(t *testing.T) {
	camera := geometry.NewCamera(core.NewVec3(0, 1, 5), core.NewVec3(0, 0, -1), 45, 1)
	s := NewScene(camera)
	s.AddLight(lights.NewWhiteLight(core.NewVec3(0, 4, 0)))

	mat := material.NewMatte(core.NewVec3(1, 1, 1))
	point := core.Vec3{}
	normal := core.NewVec3(0, 1, 0)
	ambient := mat.Ambient.MultiplyVec(mat.Color)

	lit := s.CalculateLighting(point, normal, mat)
	if lit.X <= ambient.X+0.1 {
		t.Fatalf("Unoccluded point should be lit well above ambient, got %v", lit)
	}

	// Opaque blocker between the point and the light
	s.AddShape(geometry.NewSphere(core.NewVec3(0, 2, 0), 0.5, material.NewMatte(core.NewVec3(1, 1, 1))))

	shadowed := s.CalculateLighting(point, normal, mat)
	if !vecNear(shadowed, ambient, tolerance) {
		t.Errorf("Occluded point should keep only ambient %v, got %v", ambient, shadowed)
	}
}

func TestCalculateLighting_ShapeBehindLightDoesNotOcclude(t *testing.T) {
	camera := geometry.NewCamera(core.NewVec3(0, 1, 5), core.NewVec3(0, 0, -1), 45, 1)
	s := NewScene(camera)
	s.AddLight(lights.NewWhiteLight(core.NewVec3(0, 4, 0)))
	s.AddShape(geometry.NewSphere(core.NewVec3(0, 8, 0), 1, material.NewMatte(core.NewVec3(1, 1, 1))))

	mat := material.NewMatte(core.NewVec3(1, 1, 1))
	got := s.CalculateLighting(core.Vec3{}, core.NewVec3(0, 1, 0), mat)
	if vecNear(got, mat.Ambient.MultiplyVec(mat.Color), tolerance) {
		t.Errorf("Shape beyond the light must not cast a shadow, got %v", got)
	}
}

func TestTraceRay_DepthLimit(t *testing.T) {
	s := NewRedSphereScene()
	ray := core.NewRay(core.NewVec3(0, 0, 5), core.NewVec3(0, 0, -1))

	if got := s.TraceRay(ray, 0); got == Background {
		t.Fatal("Expected the sphere to be visible at depth 0")
	}
	for _, depth := range []int{MaxReflectionDepth, MaxReflectionDepth + 4} {
		if got := s.TraceRay(ray, depth); got != Background {
			t.Errorf("Depth %d: expected background, got %v", depth, got)
		}
	}
}

func TestTraceRay_MissIsBackground(t *testing.T) {
	s := NewRedSphereScene()
	if got := s.TraceRay(core.NewRay(core.NewVec3(0, 0, 5), core.NewVec3(0, 0, 1)), 0); got != Background {
		t.Errorf("Expected background, got %v", got)
	}
}

func TestTraceRay_ReflectionBlend(t *testing.T) {
	camera := geometry.NewCamera(core.NewVec3(0, 0, 5), core.NewVec3(0, 0, -1), 45, 1)
	s := NewScene(camera)
	mat := material.NewMirror(0.5)
	s.AddShape(geometry.NewCuboid(core.Vec3{}, core.NewVec3(4, 4, 0.2), mat))
	s.AddLight(lights.NewWhiteLight(core.NewVec3(1, 2, 4)))

	ray := core.NewRay(core.NewVec3(0, 0, 5), core.NewVec3(0, 0, -1))
	hit := s.FindClosestIntersection(ray)
	base := s.CalculateLighting(ray.At(hit.Distance), hit.Normal, mat)

	// The reflection goes straight back out of the scene and sees the background
	want := base.Multiply(0.5)
	if got := s.TraceRay(ray, 0); !vecNear(got, want, tolerance) {
		t.Errorf("Expected %v, got %v", want, got)
	}
}

func TestTraceRay_ParallelMirrorsTerminate(t *testing.T) {
	left := &countingShape{Shape: geometry.NewCuboid(core.NewVec3(-2, 0, 0), core.NewVec3(0.1, 10, 10), material.NewMirror(1))}
	right := &countingShape{Shape: geometry.NewCuboid(core.NewVec3(2, 0, 0), core.NewVec3(0.1, 10, 10), material.NewMirror(1))}

	s := NewScene(nil)
	s.AddShape(left)
	s.AddShape(right)

	ray := core.NewRay(core.Vec3{}, core.NewVec3(1, 0, 0))
	for depth := 0; depth <= MaxReflectionDepth+1; depth++ {
		left.calls, right.calls = 0, 0

		color := s.TraceRay(ray, depth)

		queries := (left.calls + right.calls) / 2
		if queries > MaxReflectionDepth+1 {
			t.Errorf("Depth %d: expected at most %d intersection tests, got %d", depth, MaxReflectionDepth+1, queries)
		}
		if !color.IsFinite() {
			t.Errorf("Depth %d: color is not finite: %v", depth, color)
		}
		if color != color.Clamp(0, 1) {
			t.Errorf("Depth %d: color is not clamped: %v", depth, color)
		}
	}
}

func TestRender_RedSphere(t *testing.T) {
	fb := NewRedSphereScene().Render(100, 100)

	if fb.Width != 100 || fb.Height != 100 || len(fb.Pix) != 100*100*3 {
		t.Fatalf("Unexpected framebuffer %dx%d with %d bytes", fb.Width, fb.Height, len(fb.Pix))
	}

	r, g, b := fb.RGB(50, 50)
	if r == 0 && g == 0 && b == 0 {
		t.Error("Expected the sphere at the image center")
	}
	if r <= g || r <= b {
		t.Errorf("Center pixel should be red, got (%d,%d,%d)", r, g, b)
	}

	corners := [][2]int{{0, 0}, {99, 0}, {0, 99}, {99, 99}}
	for _, c := range corners {
		if r, g, b := fb.RGB(c[0], c[1]); r != 0 || g != 0 || b != 0 {
			t.Errorf("Corner %v should be background, got (%d,%d,%d)", c, r, g, b)
		}
	}
}

func TestRender_Idempotent(t *testing.T) {
	s := NewDefaultScene()
	first := s.Render(64, 36)
	second := s.Render(64, 36)

	if !first.Equal(second) {
		t.Error("Rendering an unchanged scene twice produced different frames")
	}
}

func TestRender_ParallelMatchesSequential(t *testing.T) {
	s := NewDefaultScene()
	sequential, err := s.RenderContext(context.Background(), 64, 36)
	if err != nil {
		t.Fatalf("Sequential render failed: %v", err)
	}

	s.Options.Workers = 4
	parallel, err := s.RenderContext(context.Background(), 64, 36)
	if err != nil {
		t.Fatalf("Render with 4 workers failed: %v", err)
	}

	if !parallel.Equal(sequential) {
		t.Error("Parallel render differs from sequential render")
	}
	if s.Stats().Workers != 4 {
		t.Errorf("Expected stats for 4 workers, got %d", s.Stats().Workers)
	}

	// Render goes through the same pool
	if !s.Render(64, 36).Equal(sequential) {
		t.Error("Render with 4 workers differs from sequential render")
	}
}

func TestRender_InvalidSize(t *testing.T) {
	fb := NewRedSphereScene().Render(0, 10)
	if fb.Width != 0 || fb.Height != 0 || len(fb.Pix) != 0 {
		t.Errorf("Expected an empty framebuffer, got %dx%d", fb.Width, fb.Height)
	}

	if _, err := NewRedSphereScene().RenderContext(context.Background(), 10, -1); err == nil {
		t.Error("Expected an error for negative height")
	}
}

func TestRenderContext_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewRedSphereScene().RenderContext(ctx, 10, 10)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}

func TestRenderContext_Progress(t *testing.T) {
	s := NewRedSphereScene()
	var last, calls int
	s.Options.Progress = func(done, total int) {
		calls++
		last = done
		if total != 8 {
			t.Errorf("Expected total 8, got %d", total)
		}
	}

	if _, err := s.RenderContext(context.Background(), 8, 8); err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if calls != 8 || last != 8 {
		t.Errorf("Expected 8 progress calls ending at 8, got %d ending at %d", calls, last)
	}
}

func TestFrame_Memoized(t *testing.T) {
	for _, workers := range []int{1, 4} {
		s := NewRedSphereScene()
		s.Options.Workers = workers
		frame := func(width, height int) *renderer.Framebuffer {
			t.Helper()
			fb, err := s.Frame(width, height)
			if err != nil {
				t.Fatalf("Workers=%d: Frame failed: %v", workers, err)
			}
			return fb
		}

		first := frame(32, 32)
		if again := frame(32, 32); again != first {
			t.Errorf("Workers=%d: unchanged scene should return the memoized frame", workers)
		}

		// Camera pose change
		s.Camera().Move(core.NewVec3(0.5, 0, 0))
		moved := frame(32, 32)
		if moved == first {
			t.Errorf("Workers=%d: moving the camera should re-render", workers)
		}
		if moved.Equal(first) {
			t.Errorf("Workers=%d: moving the camera should change the image", workers)
		}

		// Same pose, different size
		resized := frame(16, 16)
		if resized == moved || resized.Width != 16 {
			t.Errorf("Workers=%d: changing the size should re-render", workers)
		}

		// Scene contents
		s.AddLight(lights.NewWhiteLight(core.NewVec3(-2, -4, 3)))
		relit := frame(16, 16)
		if relit == resized {
			t.Errorf("Workers=%d: adding a light should re-render", workers)
		}

		s.Invalidate()
		if invalidated := frame(16, 16); invalidated == relit {
			t.Errorf("Workers=%d: Invalidate should force a re-render", workers)
		}
	}
}

func TestFrame_InvalidSize(t *testing.T) {
	if _, err := NewRedSphereScene().Frame(0, 0); err == nil {
		t.Error("Expected an error for an empty frame")
	}
}

func TestRenderToFile(t *testing.T) {
	for _, workers := range []int{1, 4} {
		s := NewRedSphereScene()
		s.Options.Workers = workers
		path := filepath.Join(t.TempDir(), "red.png")

		if err := s.RenderToFile(path, 40, 40); err != nil {
			t.Fatalf("Workers=%d: RenderToFile failed: %v", workers, err)
		}

		loaded, err := renderer.ReadImage(path)
		if err != nil {
			t.Fatalf("Workers=%d: ReadImage failed: %v", workers, err)
		}
		if !loaded.Equal(NewRedSphereScene().Render(40, 40)) {
			t.Errorf("Workers=%d: saved image differs from the sequential frame", workers)
		}
	}
}

func TestRenderToFile_Errors(t *testing.T) {
	s := NewRedSphereScene()

	err := s.RenderToFile(filepath.Join(t.TempDir(), "red.gif"), 8, 8)
	if !errors.Is(err, renderer.ErrUnsupportedFormat) {
		t.Errorf("Expected ErrUnsupportedFormat, got %v", err)
	}

	if err := s.RenderToFile(filepath.Join(t.TempDir(), "missing", "red.png"), 8, 8); err == nil {
		t.Error("Expected an error for an unwritable path")
	}
}

func TestInspect(t *testing.T) {
	s := NewRedSphereScene()

	hit, id := s.Inspect(0.5, 0.5)
	if !hit.Hit || id != 0 {
		t.Fatalf("Expected to hit shape 0 at the center, got hit=%v id=%d", hit.Hit, id)
	}
	if math.Abs(hit.Distance-4) > 1e-9 {
		t.Errorf("Expected distance 4, got %f", hit.Distance)
	}
	if !vecNear(hit.Normal, core.NewVec3(0, 0, 1), 1e-9) {
		t.Errorf("Expected normal (0,0,1), got %v", hit.Normal)
	}

	if hit, id := s.Inspect(0, 0); hit.Hit || id != NoShape {
		t.Errorf("Expected a miss in the corner, got hit=%v id=%d", hit.Hit, id)
	}
}
