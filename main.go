package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/df07/go-whitted-raytracer/pkg/core"
	"github.com/df07/go-whitted-raytracer/pkg/loaders"
	"github.com/df07/go-whitted-raytracer/pkg/renderer"
	"github.com/df07/go-whitted-raytracer/pkg/scene"
)

// config holds the parsed command line
type config struct {
	sceneType string
	scenesDir string
	width     int
	height    int
	output    string
	workers   int
	verbose   bool
	help      bool
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run executes the CLI and returns the process exit status
func run(args []string, stdout, stderr io.Writer) int {
	cfg, fs, err := parseFlags(args, stderr)
	if err != nil {
		return 2
	}

	if cfg.help {
		printHelp(stdout, fs)
		return 0
	}

	level := slog.LevelInfo
	if cfg.verbose {
		level = slog.LevelDebug
	}
	core.SetLogger(slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level})))

	if err := render(cfg, stdout, stderr); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func parseFlags(args []string, stderr io.Writer) (config, *flag.FlagSet, error) {
	var cfg config
	fs := flag.NewFlagSet("whitted", flag.ContinueOnError)
	fs.SetOutput(stderr)

	fs.StringVar(&cfg.sceneType, "scene", "default", "Built-in scene name or path to a .json scene file")
	fs.StringVar(&cfg.scenesDir, "scenes", "scenes", "Directory searched for <name>.json scene files")
	fs.IntVar(&cfg.width, "width", 800, "Image width in pixels")
	fs.IntVar(&cfg.height, "height", 450, "Image height in pixels")
	fs.StringVar(&cfg.output, "out", "", "Output image (.png, .bmp, .tif); default output/<scene>/render_<timestamp>.png")
	fs.IntVar(&cfg.workers, "workers", runtime.NumCPU(), "Rows rendered in parallel (1 = single-threaded)")
	fs.BoolVar(&cfg.verbose, "verbose", false, "Enable debug logging")
	fs.BoolVar(&cfg.help, "help", false, "Show help information")

	if err := fs.Parse(args); err != nil {
		return cfg, fs, err
	}
	if cfg.width <= 0 || cfg.height <= 0 {
		err := fmt.Errorf("width and height must be positive, got %dx%d", cfg.width, cfg.height)
		fmt.Fprintln(stderr, err)
		return cfg, fs, err
	}
	return cfg, fs, nil
}

func printHelp(w io.Writer, fs *flag.FlagSet) {
	fmt.Fprintln(w, "Whitted Raytracer")
	fmt.Fprintln(w, "Usage: whitted [options]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Options:")
	fs.SetOutput(w)
	fs.PrintDefaults()
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Available scenes:")
	for _, info := range scene.ListBuiltins() {
		fmt.Fprintf(w, "  %-12s - %s\n", info.ID, info.Description)
	}
	fmt.Fprintln(w, "  <file>.json  - Scene description file")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Output will be saved to output/<scene>/render_<timestamp>.png unless -out is given")
}

func render(cfg config, stdout, stderr io.Writer) error {
	s, err := loaders.ResolveScene(cfg.sceneType, cfg.scenesDir)
	if err != nil {
		return err
	}

	outputPath := cfg.output
	if outputPath == "" {
		name := strings.TrimSuffix(filepath.Base(cfg.sceneType), filepath.Ext(cfg.sceneType))
		timestamp := time.Now().Format("20060102_150405")
		outputPath = filepath.Join("output", name, fmt.Sprintf("render_%s.png", timestamp))
	}
	// Fail on a bad extension before spending time on the render
	if _, err := renderer.FormatFromPath(outputPath); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	s.Camera().SetAspectRatio(float64(cfg.width) / float64(cfg.height))
	s.Options = scene.Options{
		Workers:  cfg.workers,
		Progress: renderer.NewProgressBar(stderr, "Rendering").Update,
	}

	if err := s.RenderToFile(outputPath, cfg.width, cfg.height); err != nil {
		return err
	}

	stats := s.Stats()
	fmt.Fprintf(stdout, "Render completed in %v (%.0f pixels/s, %d workers)\n",
		stats.Elapsed.Round(time.Millisecond), stats.PixelsPerSecond(), stats.Workers)
	fmt.Fprintf(stdout, "Render saved as %s\n", outputPath)
	return nil
}
