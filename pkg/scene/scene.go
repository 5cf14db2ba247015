package scene

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/df07/go-whitted-raytracer/pkg/core"
	"github.com/df07/go-whitted-raytracer/pkg/geometry"
	"github.com/df07/go-whitted-raytracer/pkg/lights"
	"github.com/df07/go-whitted-raytracer/pkg/material"
	"github.com/df07/go-whitted-raytracer/pkg/renderer"
)

const (
	// MaxReflectionDepth caps the number of mirror bounces followed per primary ray
	MaxReflectionDepth = 3

	// ShadowBias offsets secondary ray origins along the surface normal
	ShadowBias = 1e-3

	// AmbientStrength scales every material's ambient term
	AmbientStrength = 1.0

	// Distance attenuation 1 / (Kc + Kl·d + Kq·d²)
	attenuationConstant  = 1.0
	attenuationLinear    = 0.09
	attenuationQuadratic = 0.032
)

// Background is the color returned for rays that hit nothing
var Background = core.Vec3{}

// ShapeID is a stable handle to a shape added to a Scene
type ShapeID int

// NoShape is returned where no shape was hit
const NoShape ShapeID = -1

// Options controls how frames are rendered. The zero value renders on the
// calling goroutine without progress reports.
type Options struct {
	Workers  int                   // rows rendered in parallel; <= 1 means sequential
	Progress renderer.ProgressFunc // optional, called once per finished row
}

// frameKey identifies everything a memoized frame depends on
type frameKey struct {
	pose     geometry.Pose
	width    int
	height   int
	revision uint64
}

// Scene owns the camera, shapes and lights and renders them with a recursive
// Whitted ray tracer. Shapes and lights must not be changed while a render is
// running.
type Scene struct {
	Options Options

	camera *geometry.Camera
	shapes []geometry.Shape
	lights []*lights.Light

	// Bumped by every mutation that goes through the Scene
	revision uint64

	frame    *renderer.Framebuffer
	frameKey frameKey
	stats    renderer.RenderStats
}

// NewScene creates an empty scene viewed through camera. A nil camera is
// replaced by geometry.DefaultCamera().
func NewScene(camera *geometry.Camera) *Scene {
	if camera == nil {
		camera = geometry.DefaultCamera()
	}
	return &Scene{camera: camera}
}

// AddShape appends a shape and returns its handle. Insertion order decides ties
// between equally distant hits.
func (s *Scene) AddShape(shape geometry.Shape) ShapeID {
	s.shapes = append(s.shapes, shape)
	s.revision++
	return ShapeID(len(s.shapes) - 1)
}

// AddLight appends a point light
func (s *Scene) AddLight(light *lights.Light) {
	s.lights = append(s.lights, light)
	s.revision++
}

// SetCamera replaces the camera
func (s *Scene) SetCamera(camera *geometry.Camera) {
	s.camera = camera
	s.revision++
}

// Camera returns the camera. It may be mutated between frames; Frame notices
// the change through the camera pose.
func (s *Scene) Camera() *geometry.Camera {
	return s.camera
}

// Shape returns the shape with the given handle, or nil for an unknown handle
func (s *Scene) Shape(id ShapeID) geometry.Shape {
	if id < 0 || int(id) >= len(s.shapes) {
		return nil
	}
	return s.shapes[id]
}

// Shapes returns the shapes in insertion order
func (s *Scene) Shapes() []geometry.Shape {
	return s.shapes
}

// Lights returns the lights in insertion order
func (s *Scene) Lights() []*lights.Light {
	return s.lights
}

// Invalidate drops the memoized frame. Call it after changing a shape or light
// in place.
func (s *Scene) Invalidate() {
	s.revision++
}

// FindClosestIntersection returns the nearest hit along ray, or a miss
func (s *Scene) FindClosestIntersection(ray core.Ray) geometry.Intersection {
	hit, _ := s.closest(ray)
	return hit
}

// closest scans every shape. The strict comparison keeps the first-added shape on ties.
func (s *Scene) closest(ray core.Ray) (geometry.Intersection, ShapeID) {
	closest := geometry.Miss()
	id := NoShape
	for i, shape := range s.shapes {
		hit := shape.Intersect(ray)
		if !hit.Hit {
			continue
		}
		if !closest.Hit || hit.Distance < closest.Distance {
			closest = hit
			id = ShapeID(i)
		}
	}
	return closest, id
}

// CalculateLighting shades a surface point with the Phong model, casting one
// hard shadow ray per light. Each channel of the result is clamped to [0,1].
func (s *Scene) CalculateLighting(point, normal core.Vec3, mat material.Material) core.Vec3 {
	color := mat.Ambient.MultiplyVec(mat.Color).Multiply(AmbientStrength)

	viewDir := s.camera.Position().Subtract(point).Normalize()
	shadowOrigin := point.Add(normal.Multiply(ShadowBias))

	for _, light := range s.lights {
		lightDir, lightDistance := light.DirectionFrom(point)

		// Binary hard shadow
		shadow := s.FindClosestIntersection(core.NewRay(shadowOrigin, lightDir))
		if shadow.Hit && shadow.Distance < lightDistance {
			continue
		}

		diffuseFactor := math.Max(normal.Dot(lightDir), 0)
		diffuse := mat.Diffuse.Multiply(diffuseFactor).MultiplyVec(mat.Color).MultiplyVec(light.Color)

		reflectDir := lightDir.Negate().Reflect(normal)
		spec := math.Pow(math.Max(viewDir.Dot(reflectDir), 0), mat.Shininess)
		specular := mat.Specular.Multiply(spec).MultiplyVec(light.Color)

		attenuation := 1 / (attenuationConstant +
			attenuationLinear*lightDistance +
			attenuationQuadratic*lightDistance*lightDistance)

		color = color.Add(diffuse.Add(specular).Multiply(light.Intensity * attenuation))
	}

	return color.Clamp(0, 1)
}

// TraceRay returns the color seen along ray. Reflective surfaces spawn a
// reflection ray at depth+1; at MaxReflectionDepth the background is returned.
func (s *Scene) TraceRay(ray core.Ray, depth int) core.Vec3 {
	if depth >= MaxReflectionDepth {
		return Background
	}

	hit := s.FindClosestIntersection(ray)
	if !hit.Hit {
		return Background
	}

	point := ray.At(hit.Distance)
	base := s.CalculateLighting(point, hit.Normal, hit.Material)
	if !hit.Material.IsReflective() {
		return base
	}

	reflected := core.NewRay(point.Add(hit.Normal.Multiply(ShadowBias)), ray.Direction.Reflect(hit.Normal))
	return base.Lerp(s.TraceRay(reflected, depth+1), hit.Material.Reflectiveness)
}

// PixelRay returns the primary ray through the top-left corner of pixel (x, y)
func (s *Scene) PixelRay(x, y, width, height int) core.Ray {
	u := float64(x) / float64(width)
	v := float64(y) / float64(height)
	return s.camera.GetRay(u, v)
}

// Render traces one ray per pixel and returns the frame. Non-positive
// dimensions yield an empty framebuffer. Any other failure is a bug and panics,
// since nothing can cancel the render.
func (s *Scene) Render(width, height int) *renderer.Framebuffer {
	if width <= 0 || height <= 0 {
		core.Logger().Warn("empty render requested", "width", width, "height", height)
		return renderer.NewFramebuffer(0, 0)
	}
	fb, err := s.RenderContext(context.Background(), width, height)
	if err != nil {
		panic(fmt.Sprintf("scene: render %dx%d failed: %v", width, height, err))
	}
	return fb
}

// RenderContext renders a new frame using s.Options. It returns ctx.Err() if
// the context is canceled before every row is done.
func (s *Scene) RenderContext(ctx context.Context, width, height int) (*renderer.Framebuffer, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid render size %dx%d", width, height)
	}

	logger := core.Logger()
	pool := renderer.NewWorkerPool(max(1, s.Options.Workers))
	fb := renderer.NewFramebuffer(width, height)

	logger.Debug("render started",
		slog.Int("width", width),
		slog.Int("height", height),
		slog.Int("shapes", len(s.shapes)),
		slog.Int("lights", len(s.lights)),
		slog.Int("workers", pool.NumWorkers()))

	start := time.Now()
	shade := func(x, y int) core.Vec3 {
		return s.TraceRay(s.PixelRay(x, y, width, height), 0)
	}
	if err := pool.Render(ctx, fb, shade, s.Options.Progress); err != nil {
		return nil, fmt.Errorf("render interrupted: %w", err)
	}

	s.stats = renderer.NewRenderStats(fb, pool.NumWorkers(), time.Since(start))
	logger.Debug("render finished",
		slog.Duration("elapsed", s.stats.Elapsed),
		slog.Float64("pixelsPerSecond", s.stats.PixelsPerSecond()),
		slog.Float64("averageLuminance", s.stats.AverageLuminance))

	return fb, nil
}

// Stats returns the statistics of the last completed render
func (s *Scene) Stats() renderer.RenderStats {
	return s.stats
}

// Frame returns the framebuffer for the current camera pose, rendering only
// when the pose, the size or the scene contents changed since the last call.
// The returned framebuffer is shared and must not be modified.
func (s *Scene) Frame(width, height int) (*renderer.Framebuffer, error) {
	key := frameKey{pose: s.camera.Pose(), width: width, height: height, revision: s.revision}
	if s.frame != nil && key == s.frameKey {
		return s.frame, nil
	}

	fb, err := s.RenderContext(context.Background(), width, height)
	if err != nil {
		return nil, err
	}
	s.frame = fb
	s.frameKey = key
	return fb, nil
}

// RenderToFile renders a frame and writes it to path. The image format is
// chosen from the file extension.
func (s *Scene) RenderToFile(path string, width, height int) error {
	fb, err := s.RenderContext(context.Background(), width, height)
	if err != nil {
		return err
	}
	if err := renderer.WriteImage(path, fb); err != nil {
		return fmt.Errorf("failed to save %s: %w", path, err)
	}
	core.Logger().Info("image saved", slog.String("path", path), slog.Int("width", width), slog.Int("height", height))
	return nil
}

// Inspect casts the camera ray through normalized screen coordinates (u, v)
// and reports what it hits
func (s *Scene) Inspect(u, v float64) (geometry.Intersection, ShapeID) {
	return s.closest(s.camera.GetRay(u, v))
}
