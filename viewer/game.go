package main

import (
	"github.com/hajimehoshi/ebiten/v2"

	"github.com/df07/go-whitted-raytracer/pkg/core"
	"github.com/df07/go-whitted-raytracer/pkg/renderer"
	"github.com/df07/go-whitted-raytracer/pkg/scene"
	"github.com/df07/go-whitted-raytracer/viewer/control"
)

// game shows the scene's memoized frame and re-renders only when the camera moved
type game struct {
	scene      *scene.Scene
	controller *control.Controller
	width      int
	height     int

	frame  *renderer.Framebuffer // last frame uploaded to img
	pixels []byte
	img    *ebiten.Image
}

func newGame(s *scene.Scene, width, height int) *game {
	return &game{
		scene:      s,
		controller: control.NewController(s.Camera()),
		width:      width,
		height:     height,
		pixels:     make([]byte, width*height*4),
		img:        ebiten.NewImage(width, height),
	}
}

func readInput() control.Input {
	return control.Input{
		Forward:   ebiten.IsKeyPressed(ebiten.KeyW),
		Back:      ebiten.IsKeyPressed(ebiten.KeyS),
		Left:      ebiten.IsKeyPressed(ebiten.KeyA),
		Right:     ebiten.IsKeyPressed(ebiten.KeyD),
		YawLeft:   ebiten.IsKeyPressed(ebiten.KeyArrowLeft),
		YawRight:  ebiten.IsKeyPressed(ebiten.KeyArrowRight),
		PitchUp:   ebiten.IsKeyPressed(ebiten.KeyArrowUp),
		PitchDown: ebiten.IsKeyPressed(ebiten.KeyArrowDown),
		Reset:     ebiten.IsKeyPressed(ebiten.KeyR),
	}
}

func (g *game) Update() error {
	if ebiten.IsKeyPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}

	dt := 1 / float64(ebiten.TPS())
	if g.controller.Update(readInput(), dt) {
		pose := g.scene.Camera().Pose()
		core.Logger().Debug("camera moved", "position", pose.Position, "direction", pose.Direction)
	}

	// Frame re-renders only when the camera pose changed
	fb, err := g.scene.Frame(g.width, g.height)
	if err != nil {
		return err
	}
	if fb != g.frame {
		fb.CopyRGBA(g.pixels)
		g.img.WritePixels(g.pixels)
		g.frame = fb
	}
	return nil
}

func (g *game) Draw(screen *ebiten.Image) {
	screen.DrawImage(g.img, nil)
}

func (g *game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return g.width, g.height
}
