package renderer

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/df07/go-whitted-raytracer/pkg/core"
)

func gradient(width, height int) ShadeFunc {
	return func(x, y int) core.Vec3 {
		return core.NewVec3(float64(x)/float64(width), float64(y)/float64(height), 0.5)
	}
}

func TestWorkerPool_ParallelMatchesSequential(t *testing.T) {
	const width, height = 37, 23

	sequential := NewFramebuffer(width, height)
	if err := NewWorkerPool(1).Render(context.Background(), sequential, gradient(width, height), nil); err != nil {
		t.Fatalf("Sequential render failed: %v", err)
	}

	for _, workers := range []int{2, 4, 16} {
		parallel := NewFramebuffer(width, height)
		if err := NewWorkerPool(workers).Render(context.Background(), parallel, gradient(width, height), nil); err != nil {
			t.Fatalf("Render with %d workers failed: %v", workers, err)
		}
		if !parallel.Equal(sequential) {
			t.Errorf("Render with %d workers differs from sequential render", workers)
		}
	}
}

func TestWorkerPool_ShadesEveryPixelOnce(t *testing.T) {
	const width, height = 16, 9
	var calls atomic.Int64
	shade := func(x, y int) core.Vec3 {
		calls.Add(1)
		return core.Vec3{}
	}

	if err := NewWorkerPool(4).Render(context.Background(), NewFramebuffer(width, height), shade, nil); err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if got := calls.Load(); got != width*height {
		t.Errorf("Expected %d shade calls, got %d", width*height, got)
	}
}

func TestWorkerPool_Progress(t *testing.T) {
	for _, workers := range []int{1, 3} {
		var reports []int
		progress := func(done, total int) {
			if total != 10 {
				t.Errorf("Expected total 10, got %d", total)
			}
			reports = append(reports, done)
		}

		fb := NewFramebuffer(4, 10)
		if err := NewWorkerPool(workers).Render(context.Background(), fb, gradient(4, 10), progress); err != nil {
			t.Fatalf("Render failed: %v", err)
		}

		if len(reports) != 10 {
			t.Fatalf("Expected 10 progress reports, got %d", len(reports))
		}
		for i, done := range reports {
			if done != i+1 {
				t.Errorf("Progress report %d: expected %d done, got %d", i, i+1, done)
			}
		}
	}
}

func TestWorkerPool_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	for _, workers := range []int{1, 4} {
		err := NewWorkerPool(workers).Render(ctx, NewFramebuffer(8, 8), gradient(8, 8), nil)
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Workers=%d: expected context.Canceled, got %v", workers, err)
		}
	}
}

func TestWorkerPool_InvalidSize(t *testing.T) {
	if err := NewWorkerPool(1).Render(context.Background(), NewFramebuffer(0, 5), gradient(1, 1), nil); err == nil {
		t.Error("Expected error for zero-width framebuffer")
	}
}

func TestNewWorkerPool_Defaults(t *testing.T) {
	if NewWorkerPool(0).NumWorkers() < 1 {
		t.Error("Expected at least one worker by default")
	}
	if got := NewWorkerPool(3).NumWorkers(); got != 3 {
		t.Errorf("Expected 3 workers, got %d", got)
	}
}
