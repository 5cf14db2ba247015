package renderer

import (
	"fmt"
	"io"
	"strings"
)

// DefaultBarWidth is the number of cells in a progress bar
const DefaultBarWidth = 50

// ProgressBar draws a single-line text progress bar, redrawn in place with a
// carriage return:
//
//	Rendering: [=========>          ] 42%
//
// A newline is written once the bar reaches 100%.
type ProgressBar struct {
	out      io.Writer
	label    string
	width    int
	lastDraw int
	finished bool
}

// NewProgressBar creates a bar that writes to out
func NewProgressBar(out io.Writer, label string) *ProgressBar {
	return &ProgressBar{out: out, label: label, width: DefaultBarWidth, lastDraw: -1}
}

// Update redraws the bar when the whole-percent value changes. Its signature
// matches ProgressFunc.
func (p *ProgressBar) Update(done, total int) {
	if p.finished || total <= 0 {
		return
	}
	percent := min(100, done*100/total)
	if percent == p.lastDraw {
		return
	}
	p.lastDraw = percent

	filled := p.width * percent / 100
	var bar strings.Builder
	bar.WriteString(strings.Repeat("=", filled))
	if filled < p.width {
		bar.WriteString(">")
		bar.WriteString(strings.Repeat(" ", p.width-filled-1))
	}

	fmt.Fprintf(p.out, "\r%s: [%s] %d%% ", p.label, bar.String(), percent)
	if percent == 100 {
		fmt.Fprintln(p.out)
		p.finished = true
	}
}
