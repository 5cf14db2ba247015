package main

import (
	"flag"
	"log/slog"
	"os"
	"runtime"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/df07/go-whitted-raytracer/pkg/core"
	"github.com/df07/go-whitted-raytracer/pkg/loaders"
	"github.com/df07/go-whitted-raytracer/pkg/scene"
)

func main() {
	sceneType := flag.String("scene", "default", "Built-in scene name or path to a .json scene file")
	scenesDir := flag.String("scenes", "scenes", "Directory searched for <name>.json scene files")
	width := flag.Int("width", 640, "Framebuffer width in pixels")
	height := flag.Int("height", 360, "Framebuffer height in pixels")
	scale := flag.Int("scale", 2, "Window pixels per framebuffer pixel")
	workers := flag.Int("workers", runtime.NumCPU(), "Rows rendered in parallel")
	verbose := flag.Bool("verbose", false, "Enable debug logging")
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	core.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	logger := core.Logger()

	if *width <= 0 || *height <= 0 || *scale <= 0 {
		logger.Error("width, height and scale must be positive")
		os.Exit(2)
	}

	s, err := loaders.ResolveScene(*sceneType, *scenesDir)
	if err != nil {
		logger.Error("failed to load scene", "error", err)
		os.Exit(1)
	}
	s.Camera().SetAspectRatio(float64(*width) / float64(*height))
	s.Options = scene.Options{Workers: *workers}

	ebiten.SetWindowTitle("Whitted Raytracer - " + *sceneType + " (WASD move, arrows look, R reset)")
	ebiten.SetWindowSize(*width**scale, *height**scale)
	ebiten.SetTPS(30)

	if err := ebiten.RunGame(newGame(s, *width, *height)); err != nil {
		logger.Error("viewer stopped", "error", err)
		os.Exit(1)
	}
}
