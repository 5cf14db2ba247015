package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
)

// ConsoleMessage represents a console message with timestamp
type ConsoleMessage struct {
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
	Level     string    `json:"level"` // "debug", "info", "warn", "error"
}

// Console keeps the most recent log messages for the web console
type Console struct {
	mu       sync.Mutex
	messages []ConsoleMessage
	limit    int
}

// NewConsole creates a console holding at most limit messages
func NewConsole(limit int) *Console {
	return &Console{limit: max(1, limit)}
}

// Append adds a message, dropping the oldest when full
func (c *Console) Append(msg ConsoleMessage) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.messages) == c.limit {
		copy(c.messages, c.messages[1:])
		c.messages = c.messages[:c.limit-1]
	}
	c.messages = append(c.messages, msg)
}

// Messages returns a copy of the buffered messages, oldest first
func (c *Console) Messages() []ConsoleMessage {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]ConsoleMessage, len(c.messages))
	copy(out, c.messages)
	return out
}

// ConsoleHandler is a slog.Handler that copies every record it handles into a
// Console before passing it on
type ConsoleHandler struct {
	next    slog.Handler
	console *Console
	attrs   []slog.Attr
}

// NewConsoleHandler wraps next so records also reach console
func NewConsoleHandler(next slog.Handler, console *Console) *ConsoleHandler {
	return &ConsoleHandler{next: next, console: console}
}

// Enabled implements slog.Handler
func (h *ConsoleHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

// Handle implements slog.Handler
func (h *ConsoleHandler) Handle(ctx context.Context, r slog.Record) error {
	var sb strings.Builder
	sb.WriteString(r.Message)
	writeAttr := func(a slog.Attr) bool {
		fmt.Fprintf(&sb, " %s=%v", a.Key, a.Value)
		return true
	}
	for _, a := range h.attrs {
		writeAttr(a)
	}
	r.Attrs(writeAttr)

	h.console.Append(ConsoleMessage{
		Message:   sb.String(),
		Timestamp: r.Time,
		Level:     strings.ToLower(r.Level.String()),
	})
	return h.next.Handle(ctx, r)
}

// WithAttrs implements slog.Handler
func (h *ConsoleHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	merged := make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	merged = append(merged, h.attrs...)
	merged = append(merged, attrs...)
	return &ConsoleHandler{next: h.next.WithAttrs(attrs), console: h.console, attrs: merged}
}

// WithGroup implements slog.Handler. Group names are not shown in the console.
func (h *ConsoleHandler) WithGroup(name string) slog.Handler {
	return &ConsoleHandler{next: h.next.WithGroup(name), console: h.console, attrs: h.attrs}
}

// handleConsole returns the buffered console messages
func (s *Server) handleConsole(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{"messages": s.console.Messages()})
}
