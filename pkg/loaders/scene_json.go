package loaders

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/df07/go-whitted-raytracer/pkg/core"
	"github.com/df07/go-whitted-raytracer/pkg/geometry"
	"github.com/df07/go-whitted-raytracer/pkg/lights"
	"github.com/df07/go-whitted-raytracer/pkg/material"
	"github.com/df07/go-whitted-raytracer/pkg/scene"
)

// ErrInvalidScene is wrapped by every validation error of a scene description
var ErrInvalidScene = errors.New("invalid scene description")

// Vec3Cfg is a JSON [x, y, z] triple
type Vec3Cfg [3]float64

func (v Vec3Cfg) vec() core.Vec3 { return core.NewVec3(v[0], v[1], v[2]) }

// SceneCfg is the JSON form of a scene.
//
//	{
//	  "name": "Two spheres",
//	  "camera": {"position": [0, 1, 5], "lookAt": [0, 0, 0], "fov": 45},
//	  "shapes": [
//	    {"type": "sphere", "center": [0, 0, 0], "radius": 1,
//	     "material": {"preset": "plastic", "color": [1, 0, 0]}},
//	    {"type": "cuboid", "center": [0, -1.5, 0], "dimensions": [10, 0.1, 10],
//	     "material": {"preset": "matte", "color": [0.5, 0.5, 0.5]}}
//	  ],
//	  "lights": [{"position": [2, 4, 3]}]
//	}
//
// Shapes are added in array order, which decides ties between equally distant hits.
type SceneCfg struct {
	Name        string     `json:"name,omitempty"`
	Description string     `json:"description,omitempty"`
	Group       string     `json:"group,omitempty"`
	Variant     string     `json:"variant,omitempty"`
	Camera      *CameraCfg `json:"camera,omitempty"`
	Shapes      []ShapeCfg `json:"shapes"`
	Lights      []LightCfg `json:"lights"`
}

// CameraCfg places the camera. Exactly one of Direction and LookAt may be
// set; without either the camera looks down -Z.
type CameraCfg struct {
	Position    Vec3Cfg  `json:"position"`
	Direction   *Vec3Cfg `json:"direction,omitempty"`
	LookAt      *Vec3Cfg `json:"lookAt,omitempty"`
	FieldOfView float64  `json:"fov,omitempty"`    // degrees, default 45
	AspectRatio float64  `json:"aspect,omitempty"` // default 16:9
}

// ShapeCfg describes a sphere or a cuboid. RotDeg holds rotations about the
// X, Y and Z axes in degrees, applied in that order.
type ShapeCfg struct {
	Type       string      `json:"type"`
	Center     Vec3Cfg     `json:"center"`
	Radius     float64     `json:"radius,omitempty"`
	Dimensions *Vec3Cfg    `json:"dimensions,omitempty"`
	RotDeg     Vec3Cfg     `json:"rotDeg"`
	Scale      float64     `json:"scale,omitempty"` // uniform, default 1
	Material   MaterialCfg `json:"material"`
}

// MaterialCfg starts from a preset and overrides any coefficient that is set
type MaterialCfg struct {
	Preset         string   `json:"preset,omitempty"` // "matte" (default), "plastic" or "mirror"
	Color          *Vec3Cfg `json:"color,omitempty"`
	Ambient        *float64 `json:"ambient,omitempty"`
	Diffuse        *float64 `json:"diffuse,omitempty"`
	Specular       *float64 `json:"specular,omitempty"`
	Shininess      *float64 `json:"shininess,omitempty"`
	Reflectiveness *float64 `json:"reflectiveness,omitempty"`
}

// LightCfg describes a point light. Color defaults to white and intensity to 1.
type LightCfg struct {
	Position  Vec3Cfg  `json:"position"`
	Color     *Vec3Cfg `json:"color,omitempty"`
	Intensity *float64 `json:"intensity,omitempty"`
}

// LoadScene reads a JSON scene description from path
func LoadScene(path string) (*scene.Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scene file: %w", err)
	}

	s, err := ParseScene(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	core.Logger().Info("scene loaded", "path", path,
		"shapes", len(s.Shapes()), "lights", len(s.Lights()))
	return s, nil
}

// ParseScene builds a scene from a JSON description
func ParseScene(data []byte) (*scene.Scene, error) {
	return DecodeScene(bytes.NewReader(data))
}

// DecodeScene builds a scene from a JSON description read from r. Unknown
// fields are rejected.
func DecodeScene(r io.Reader) (*scene.Scene, error) {
	cfg, err := DecodeSceneCfg(r)
	if err != nil {
		return nil, err
	}
	return cfg.Build()
}

// DecodeSceneCfg decodes a scene description without building it
func DecodeSceneCfg(r io.Reader) (SceneCfg, error) {
	var cfg SceneCfg
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return cfg, fmt.Errorf("%w: %v", ErrInvalidScene, err)
	}
	return cfg, nil
}

// Build validates the description and constructs the scene
func (cfg SceneCfg) Build() (*scene.Scene, error) {
	camera, err := cfg.Camera.build()
	if err != nil {
		return nil, err
	}

	s := scene.NewScene(camera)

	for i, sc := range cfg.Shapes {
		shape, err := sc.build()
		if err != nil {
			return nil, fmt.Errorf("%w: shapes[%d]: %v", ErrInvalidScene, i, err)
		}
		s.AddShape(shape)
	}

	for i, lc := range cfg.Lights {
		light, err := lc.build()
		if err != nil {
			return nil, fmt.Errorf("%w: lights[%d]: %v", ErrInvalidScene, i, err)
		}
		s.AddLight(light)
	}

	return s, nil
}

func (c *CameraCfg) build() (*geometry.Camera, error) {
	camera := geometry.DefaultCamera()
	if c == nil {
		return camera, nil
	}

	camera.SetPosition(c.Position.vec())

	switch {
	case c.Direction != nil && c.LookAt != nil:
		return nil, fmt.Errorf("%w: camera: direction and lookAt are mutually exclusive", ErrInvalidScene)
	case c.Direction != nil:
		dir := c.Direction.vec()
		if dir.LengthSquared() == 0 {
			return nil, fmt.Errorf("%w: camera: direction must be non-zero", ErrInvalidScene)
		}
		camera.SetDirection(dir)
	case c.LookAt != nil:
		target := c.LookAt.vec()
		if target == camera.Position() {
			return nil, fmt.Errorf("%w: camera: lookAt must differ from position", ErrInvalidScene)
		}
		camera.LookAt(target)
	}

	if c.FieldOfView != 0 {
		if c.FieldOfView <= 0 || c.FieldOfView >= 180 {
			return nil, fmt.Errorf("%w: camera: fov must be in (0, 180), got %g", ErrInvalidScene, c.FieldOfView)
		}
		camera.SetFieldOfView(c.FieldOfView)
	}
	if c.AspectRatio != 0 {
		if c.AspectRatio < 0 {
			return nil, fmt.Errorf("%w: camera: aspect must be > 0, got %g", ErrInvalidScene, c.AspectRatio)
		}
		camera.SetAspectRatio(c.AspectRatio)
	}

	return camera, nil
}

// model composes translation, rotation and uniform scale into a model matrix
func (sc ShapeCfg) model() (mgl64.Mat4, error) {
	scale := sc.Scale
	if scale == 0 {
		scale = 1
	}
	if scale < 0 {
		return mgl64.Mat4{}, fmt.Errorf("scale must be > 0, got %g", scale)
	}

	return core.Compose(
		core.Translate(sc.Center.vec()),
		core.Rotate(sc.RotDeg[2], core.NewVec3(0, 0, 1)),
		core.Rotate(sc.RotDeg[1], core.NewVec3(0, 1, 0)),
		core.Rotate(sc.RotDeg[0], core.NewVec3(1, 0, 0)),
		core.UniformScale(scale),
	), nil
}

func (sc ShapeCfg) build() (geometry.Shape, error) {
	model, err := sc.model()
	if err != nil {
		return nil, err
	}
	mat, err := sc.Material.build()
	if err != nil {
		return nil, fmt.Errorf("material: %v", err)
	}

	switch sc.Type {
	case "sphere":
		if sc.Radius <= 0 {
			return nil, fmt.Errorf("radius must be > 0, got %g", sc.Radius)
		}
		return geometry.NewSphereWithModel(model, sc.Radius, mat), nil
	case "cuboid":
		if sc.Dimensions == nil {
			return nil, errors.New("dimensions are required")
		}
		dims := sc.Dimensions.vec()
		if dims.X <= 0 || dims.Y <= 0 || dims.Z <= 0 {
			return nil, fmt.Errorf("dimensions must be > 0 on all axes, got %v", *sc.Dimensions)
		}
		return geometry.NewCuboidWithModel(model, dims, mat), nil
	case "":
		return nil, errors.New("type is required")
	default:
		return nil, fmt.Errorf("unknown type %q", sc.Type)
	}
}

func (mc MaterialCfg) build() (material.Material, error) {
	white := core.NewVec3(1, 1, 1)

	var mat material.Material
	switch mc.Preset {
	case "", "matte":
		mat = material.NewMatte(white)
	case "plastic":
		mat = material.NewPlastic(white)
	case "mirror":
		mat = material.NewMirror(1)
	default:
		return mat, fmt.Errorf("unknown preset %q", mc.Preset)
	}

	if mc.Color != nil {
		mat.Color = mc.Color.vec()
	}
	if mc.Ambient != nil {
		mat.Ambient = core.Splat(*mc.Ambient)
	}
	if mc.Diffuse != nil {
		mat.Diffuse = core.Splat(*mc.Diffuse)
	}
	if mc.Specular != nil {
		mat.Specular = core.Splat(*mc.Specular)
	}
	if mc.Shininess != nil {
		if *mc.Shininess < 0 {
			return mat, fmt.Errorf("shininess must be >= 0, got %g", *mc.Shininess)
		}
		mat.Shininess = *mc.Shininess
	}
	if mc.Reflectiveness != nil {
		r := *mc.Reflectiveness
		if r < 0 || r > 1 || math.IsNaN(r) {
			return mat, fmt.Errorf("reflectiveness must be in [0, 1], got %g", r)
		}
		mat.Reflectiveness = r
	}

	return mat, nil
}

func (lc LightCfg) build() (*lights.Light, error) {
	light := lights.NewWhiteLight(lc.Position.vec())
	if lc.Color != nil {
		light.Color = lc.Color.vec()
	}
	if lc.Intensity != nil {
		if *lc.Intensity < 0 {
			return nil, fmt.Errorf("intensity must be >= 0, got %g", *lc.Intensity)
		}
		light.Intensity = *lc.Intensity
	}
	return light, nil
}
