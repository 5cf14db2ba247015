package renderer

import (
	"sync"
	"time"
)

// RenderStats summarizes a finished render
type RenderStats struct {
	Width            int
	Height           int
	TotalPixels      int
	Workers          int
	Elapsed          time.Duration
	AverageLuminance float64 // mean Rec. 709 luminance of the output, in [0,1]
}

// NewRenderStats collects the stats of a framebuffer rendered in elapsed time
func NewRenderStats(fb *Framebuffer, workers int, elapsed time.Duration) RenderStats {
	return RenderStats{
		Width:            fb.Width,
		Height:           fb.Height,
		TotalPixels:      fb.Width * fb.Height,
		Workers:          workers,
		Elapsed:          elapsed,
		AverageLuminance: fb.AverageLuminance(),
	}
}

// PixelsPerSecond returns the render throughput, or 0 when no time elapsed
func (s RenderStats) PixelsPerSecond() float64 {
	if s.Elapsed <= 0 {
		return 0
	}
	return float64(s.TotalPixels) / s.Elapsed.Seconds()
}

// rowCounter serializes progress reports from concurrent workers
type rowCounter struct {
	mu       sync.Mutex
	done     int
	total    int
	progress ProgressFunc
}

func newRowCounter(total int, progress ProgressFunc) *rowCounter {
	return &rowCounter{total: total, progress: progress}
}

func (c *rowCounter) rowDone() {
	if c.progress == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.done++
	c.progress(c.done, c.total)
}
