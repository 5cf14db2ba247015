package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/df07/go-whitted-raytracer/pkg/core"
	"github.com/df07/go-whitted-raytracer/web/server"
)

func main() {
	// Parse command line flags
	port := flag.Int("port", 8080, "Port to serve on")
	scenesDir := flag.String("scenes", "scenes", "Directory of .json scene files")
	workers := flag.Int("workers", 0, "Rows rendered in parallel per request (0 = one per CPU)")
	verbose := flag.Bool("verbose", false, "Enable debug logging")
	flag.Parse()

	webServer := server.NewServer(server.Config{
		Port:      *port,
		ScenesDir: *scenesDir,
		Workers:   *workers,
	})

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	text := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	core.SetLogger(slog.New(server.NewConsoleHandler(text, webServer.Console())))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := webServer.Shutdown(shutdownCtx); err != nil {
			core.Logger().Error("shutdown failed", "error", err)
		}
	}()

	fmt.Printf("Whitted Raytracer Web Server\n")
	fmt.Printf("Visit http://localhost:%d/api/scenes to list scenes\n", *port)

	if err := webServer.Start(); err != nil {
		core.Logger().Error("server failed", "error", err)
		os.Exit(1)
	}
}
