package renderer

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/df07/go-whitted-raytracer/pkg/core"
)

// ShadeFunc returns the color of pixel (x, y). It must be safe to call from
// several goroutines at once.
type ShadeFunc func(x, y int) core.Vec3

// ProgressFunc is told how many rows are done out of total. Calls are
// serialized but may come from any worker goroutine.
type ProgressFunc func(done, total int)

// WorkerPool renders framebuffer rows, either on the calling goroutine or
// spread across a bounded number of workers. Each pixel is written by exactly
// one worker, so the result does not depend on the worker count.
type WorkerPool struct {
	numWorkers int
}

// NewWorkerPool creates a pool. numWorkers <= 0 means one worker per CPU.
func NewWorkerPool(numWorkers int) *WorkerPool {
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}
	return &WorkerPool{numWorkers: numWorkers}
}

// NumWorkers returns the number of workers
func (wp *WorkerPool) NumWorkers() int {
	return wp.numWorkers
}

// Render fills fb by calling shade for every pixel. It stops early and returns
// the context error when ctx is canceled; rows already written are kept.
func (wp *WorkerPool) Render(ctx context.Context, fb *Framebuffer, shade ShadeFunc, progress ProgressFunc) error {
	if fb.Width <= 0 || fb.Height <= 0 {
		return fmt.Errorf("invalid framebuffer size %dx%d", fb.Width, fb.Height)
	}

	counter := newRowCounter(fb.Height, progress)

	if wp.numWorkers == 1 {
		for y := 0; y < fb.Height; y++ {
			if err := ctx.Err(); err != nil {
				return err
			}
			renderRow(fb, y, shade)
			counter.rowDone()
		}
		return nil
	}

	// Wait cancels gctx when it returns, so only the caller's ctx decides the result
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(wp.numWorkers)
	for y := 0; y < fb.Height; y++ {
		if gctx.Err() != nil {
			break
		}
		y := y
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			renderRow(fb, y, shade)
			counter.rowDone()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	// Canceled before any goroutine noticed
	return ctx.Err()
}

// renderRow shades every pixel of row y
func renderRow(fb *Framebuffer, y int, shade ShadeFunc) {
	for x := 0; x < fb.Width; x++ {
		fb.Set(x, y, shade(x, y))
	}
}
