package server

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/df07/go-whitted-raytracer/pkg/renderer"
)

// ProgressUpdate reports how many rows of the frame are done
type ProgressUpdate struct {
	RowsDone  int   `json:"rowsDone"`
	TotalRows int   `json:"totalRows"`
	Percent   int   `json:"percent"`
	ElapsedMs int64 `json:"elapsedMs"`
}

// CompleteUpdate carries the finished frame
type CompleteUpdate struct {
	ImageData string `json:"imageData"` // Base64 encoded PNG
	Width     int    `json:"width"`
	Height    int    `json:"height"`
	Stats     Stats  `json:"stats"`
}

// handleRenderStream renders a named scene and streams progress via SSE,
// finishing with a "complete" event holding the PNG
func (s *Server) handleRenderStream(c echo.Context) error {
	req, err := parseRenderRequest(c.QueryParams())
	if err != nil {
		return jsonError(c, http.StatusBadRequest, "Invalid request: "+err.Error())
	}

	sceneObj, err := s.createScene(req.Scene)
	if err != nil {
		return jsonError(c, http.StatusNotFound, err.Error())
	}

	w := c.Response()
	setSSEHeaders(w)
	w.WriteHeader(http.StatusOK)

	// Progress calls are serialized by the worker pool, so this is the only writer until the render returns
	startTime := time.Now()
	lastPercent := -1
	progress := func(done, total int) {
		percent := done * 100 / total
		if percent == lastPercent {
			return
		}
		lastPercent = percent
		sendSSEJSON(w, "progress", ProgressUpdate{
			RowsDone:  done,
			TotalRows: total,
			Percent:   percent,
			ElapsedMs: elapsedMs(startTime),
		})
	}

	fb, stats, err := s.render(c.Request().Context(), sceneObj, req, progress)
	if err != nil {
		return sendSSEEvent(w, "error", fmt.Sprintf("Render error: %v", err))
	}

	imageData, err := imageToBase64PNG(fb)
	if err != nil {
		return sendSSEEvent(w, "error", fmt.Sprintf("failed to encode image: %v", err))
	}

	return sendSSEJSON(w, "complete", CompleteUpdate{
		ImageData: imageData,
		Width:     fb.Width,
		Height:    fb.Height,
		Stats:     stats,
	})
}

// setSSEHeaders sets the required headers for Server-Sent Events
func setSSEHeaders(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
}

// imageToBase64PNG converts a framebuffer to base64-encoded PNG
func imageToBase64PNG(fb *renderer.Framebuffer) (string, error) {
	var buf bytes.Buffer
	if err := renderer.EncodeImage(&buf, renderer.FormatPNG, fb); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// sendSSEJSON sends data encoded as JSON
func sendSSEJSON(w http.ResponseWriter, event string, data any) error {
	encoded, err := json.Marshal(data)
	if err != nil {
		return err
	}
	return sendSSEEvent(w, event, string(encoded))
}

// sendSSEEvent sends a generic SSE event
func sendSSEEvent(w http.ResponseWriter, event, data string) error {
	if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, data); err != nil {
		return err
	}
	if flusher, ok := w.(http.Flusher); ok {
		flusher.Flush()
	}
	return nil
}
