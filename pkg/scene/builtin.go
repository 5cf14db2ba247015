package scene

import (
	"errors"
	"fmt"

	"github.com/df07/go-whitted-raytracer/pkg/core"
	"github.com/df07/go-whitted-raytracer/pkg/geometry"
	"github.com/df07/go-whitted-raytracer/pkg/lights"
	"github.com/df07/go-whitted-raytracer/pkg/material"
)

// ErrUnknownScene is returned when no built-in scene has the requested name
var ErrUnknownScene = errors.New("unknown scene")

type builtin struct {
	info  SceneInfo
	build func() *Scene
}

// builtins are listed in the order they are presented to users
var builtins = []builtin{
	{
		info: SceneInfo{
			ID:          "default",
			Name:        "Default Scene",
			Description: "Red sphere on a gray floor in front of a mirror wall",
		},
		build: NewDefaultScene,
	},
	{
		info: SceneInfo{
			ID:          "red-sphere",
			Name:        "Red Sphere",
			Description: "Single red sphere lit by one white light",
		},
		build: NewRedSphereScene,
	},
	{
		info: SceneInfo{
			ID:          "mirrors",
			Name:        "Facing Mirrors",
			Description: "Two parallel mirrors with a sphere between them",
		},
		build: NewMirrorsScene,
	},
	{
		info: SceneInfo{
			ID:          "transforms",
			Name:        "Transforms",
			Description: "Rotated cuboids and a scaled sphere lit by two colored lights",
		},
		build: NewTransformsScene,
	},
}

// NewBuiltin builds the built-in scene with the given ID
func NewBuiltin(id string) (*Scene, error) {
	for _, b := range builtins {
		if b.info.ID == id {
			return b.build(), nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownScene, id)
}

// ListBuiltins returns metadata for every built-in scene
func ListBuiltins() []SceneInfo {
	infos := make([]SceneInfo, len(builtins))
	for i, b := range builtins {
		infos[i] = b.info
		infos[i].DisplayName = b.info.Name
		infos[i].Group = BuiltinGroup
		infos[i].Type = TypeBuiltin
	}
	return infos
}

// NewDefaultScene creates a red sphere resting above a gray floor, with a
// mirror wall behind it and a white light up and to the right
func NewDefaultScene() *Scene {
	camera := geometry.DefaultCamera()
	camera.SetPosition(core.NewVec3(0, 4, 10))
	camera.SetDirection(core.NewVec3(0, -0.3, -1))

	s := NewScene(camera)

	s.AddShape(geometry.NewSphere(core.Vec3{}, 1, material.NewPlastic(core.NewVec3(1, 0, 0))))
	s.AddShape(geometry.NewCuboid(
		core.NewVec3(0, -1.5, 0),
		core.NewVec3(10, 0.1, 10),
		material.NewMatte(core.NewVec3(0.5, 0.5, 0.5))))
	s.AddShape(geometry.NewCuboid(
		core.NewVec3(0, 0, -5),
		core.NewVec3(10, 10, 0.1),
		material.NewMirror(1)))

	s.AddLight(lights.NewWhiteLight(core.NewVec3(2, 4, 3)))

	return s
}

// NewRedSphereScene creates a red unit sphere at the origin seen from five
// units away. It does not fill the frame, so the corners stay black.
func NewRedSphereScene() *Scene {
	camera := geometry.NewCamera(core.NewVec3(0, 0, 5), core.NewVec3(0, 0, -1), 45, 1)

	s := NewScene(camera)
	s.AddShape(geometry.NewSphere(core.Vec3{}, 1, material.NewPlastic(core.NewVec3(1, 0, 0))))
	s.AddLight(lights.NewWhiteLight(core.NewVec3(2, 4, 3)))

	return s
}

// NewMirrorsScene creates two facing mirrors with a sphere between them, seen
// at a slight angle so the repeated reflections are visible
func NewMirrorsScene() *Scene {
	camera := geometry.DefaultCamera()
	camera.SetPosition(core.NewVec3(0, 1.5, 3.5))
	camera.LookAt(core.NewVec3(0, 0, -0.5))

	s := NewScene(camera)

	mirror := material.NewMirror(0.9)
	s.AddShape(geometry.NewCuboid(core.NewVec3(-3, 0, 0), core.NewVec3(0.1, 4, 8), mirror))
	s.AddShape(geometry.NewCuboid(core.NewVec3(3, 0, 0), core.NewVec3(0.1, 4, 8), mirror))
	s.AddShape(geometry.NewSphere(core.Vec3{}, 0.75, material.NewPlastic(core.NewVec3(0.2, 0.4, 1))))
	s.AddShape(geometry.NewCuboid(
		core.NewVec3(0, -1, 0),
		core.NewVec3(6, 0.1, 8),
		material.NewMatte(core.NewVec3(0.8, 0.8, 0.8))))

	s.AddLight(lights.NewWhiteLight(core.NewVec3(0, 3, 2)))

	return s
}

// NewTransformsScene places shapes with composed model matrices
func NewTransformsScene() *Scene {
	camera := geometry.DefaultCamera()
	camera.SetPosition(core.NewVec3(0, 3, 8))
	camera.LookAt(core.NewVec3(0, 0, 0))

	s := NewScene(camera)

	s.AddShape(geometry.NewCuboidWithModel(
		core.Compose(core.Translate(core.NewVec3(-2, 0, 0)), core.Rotate(45, core.NewVec3(0, 1, 0))),
		core.NewVec3(1.5, 1.5, 1.5),
		material.NewPlastic(core.NewVec3(0.9, 0.6, 0.1))))
	s.AddShape(geometry.NewCuboidWithModel(
		core.Compose(
			core.Translate(core.NewVec3(2, 0.25, 0)),
			core.Rotate(30, core.NewVec3(1, 0, 0)),
			core.Rotate(20, core.NewVec3(0, 0, 1))),
		core.NewVec3(1, 2, 1),
		material.NewMatte(core.NewVec3(0.1, 0.8, 0.3))))
	s.AddShape(geometry.NewSphereWithModel(
		core.Compose(core.Translate(core.NewVec3(0, 0.5, -1.5)), core.UniformScale(1.5)),
		1,
		material.NewPhong(core.NewVec3(0.9, 0.9, 1), 0.1, 0.4, 0.9, 128, 0.5)))
	s.AddShape(geometry.NewCuboid(
		core.NewVec3(0, -1, 0),
		core.NewVec3(12, 0.1, 12),
		material.NewMatte(core.NewVec3(0.6, 0.6, 0.6))))

	s.AddLight(lights.NewLight(core.NewVec3(-4, 5, 4), core.NewVec3(1, 0.9, 0.8), 1.5))
	s.AddLight(lights.NewLight(core.NewVec3(4, 3, 2), core.NewVec3(0.6, 0.7, 1), 1))

	return s
}
