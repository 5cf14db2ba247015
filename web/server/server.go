package server

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"runtime"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/df07/go-whitted-raytracer/pkg/core"
	"github.com/df07/go-whitted-raytracer/pkg/loaders"
	"github.com/df07/go-whitted-raytracer/pkg/renderer"
	"github.com/df07/go-whitted-raytracer/pkg/scene"
)

const (
	minDimension  = 16
	maxDimension  = 2000
	defaultWidth  = 400
	defaultHeight = 225

	// maxSceneBytes caps the size of a posted scene description
	maxSceneBytes = 1 << 20

	consoleLimit = 200
)

// Config holds the server settings
type Config struct {
	Port      int
	ScenesDir string // searched for <name>.json scene files
	Workers   int    // rows rendered in parallel per request; <= 0 means one per CPU
}

// Server handles web requests for the raytracer
type Server struct {
	config  Config
	console *Console
	echo    *echo.Echo
}

// RenderRequest represents the query parameters of a render or inspect request
type RenderRequest struct {
	Scene  string          `json:"scene"`  // Scene ID (e.g., "default" or "file:mirrors")
	Width  int             `json:"width"`  // Image width
	Height int             `json:"height"` // Image height
	Format renderer.Format `json:"format"` // Output encoding
}

// Stats represents render statistics
type Stats struct {
	TotalPixels      int     `json:"totalPixels"`
	Workers          int     `json:"workers"`
	ElapsedMs        int64   `json:"elapsedMs"`
	PixelsPerSecond  float64 `json:"pixelsPerSecond"`
	AverageLuminance float64 `json:"averageLuminance"`
}

// NewServer creates a new web server with its routes registered
func NewServer(config Config) *Server {
	if config.Workers <= 0 {
		config.Workers = runtime.NumCPU()
	}

	s := &Server{
		config:  config,
		console: NewConsole(consoleLimit),
		echo:    echo.New(),
	}

	e := s.echo
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(corsMiddleware)
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:  true,
		LogURI:     true,
		LogStatus:  true,
		LogLatency: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			core.Logger().Info("request",
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status,
				"latency", v.Latency)
			return nil
		},
	}))

	// API endpoints
	e.GET("/api/health", s.handleHealth)
	e.GET("/api/scenes", s.handleScenes)
	e.GET("/api/render", s.handleRender)
	e.POST("/api/render", s.handleRenderScene)
	e.GET("/api/render/stream", s.handleRenderStream)
	e.GET("/api/inspect", s.handleInspect)
	e.GET("/api/console", s.handleConsole)

	return s
}

// Console returns the buffer of recent log messages served at /api/console
func (s *Server) Console() *Console {
	return s.console
}

// Handler returns the HTTP handler serving all routes
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start serves until Shutdown is called
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.config.Port)
	core.Logger().Info("starting web server", "addr", "http://localhost"+addr)
	if err := s.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops the server, waiting for in-flight requests until ctx expires
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

func corsMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		c.Response().Header().Set("Access-Control-Allow-Origin", "*")
		c.Response().Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Response().Header().Set("Access-Control-Allow-Headers", "Content-Type, Accept")

		if c.Request().Method == http.MethodOptions {
			return c.NoContent(http.StatusOK)
		}

		return next(c)
	}
}

// jsonError writes {"error": message} with the given status
func jsonError(c echo.Context, status int, message string) error {
	return c.JSON(status, map[string]string{"error": message})
}

// handleHealth provides a simple health check endpoint
func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// handleScenes lists the built-in scenes and the scene files on disk
func (s *Server) handleScenes(c echo.Context) error {
	response, err := scene.ListAllScenes(s.config.ScenesDir)
	if err != nil {
		return jsonError(c, http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, response)
}

// handleRender renders a named scene and returns the encoded image
func (s *Server) handleRender(c echo.Context) error {
	req, err := parseRenderRequest(c.QueryParams())
	if err != nil {
		return jsonError(c, http.StatusBadRequest, "Invalid request: "+err.Error())
	}

	sceneObj, err := s.createScene(req.Scene)
	if err != nil {
		return jsonError(c, http.StatusNotFound, err.Error())
	}

	return s.renderImage(c, sceneObj, req)
}

// handleRenderScene renders a scene description posted as JSON and returns a PNG
func (s *Server) handleRenderScene(c echo.Context) error {
	req, err := parseRenderRequest(c.QueryParams())
	if err != nil {
		return jsonError(c, http.StatusBadRequest, "Invalid request: "+err.Error())
	}

	body := http.MaxBytesReader(c.Response(), c.Request().Body, maxSceneBytes)
	sceneObj, err := loaders.DecodeScene(body)
	if err != nil {
		return jsonError(c, http.StatusBadRequest, err.Error())
	}

	return s.renderImage(c, sceneObj, req)
}

// renderImage renders sceneObj at the requested size and writes the image
func (s *Server) renderImage(c echo.Context, sceneObj *scene.Scene, req *RenderRequest) error {
	fb, stats, err := s.render(c.Request().Context(), sceneObj, req, nil)
	if err != nil {
		return jsonError(c, http.StatusInternalServerError, "Render error: "+err.Error())
	}

	var buf bytes.Buffer
	if err := renderer.EncodeImage(&buf, req.Format, fb); err != nil {
		return jsonError(c, http.StatusInternalServerError, err.Error())
	}

	c.Response().Header().Set("X-Render-Time-Ms", strconv.FormatInt(stats.ElapsedMs, 10))
	return c.Blob(http.StatusOK, req.Format.ContentType(), buf.Bytes())
}

// render fits the camera to the requested size and renders one frame
func (s *Server) render(ctx context.Context, sceneObj *scene.Scene, req *RenderRequest, progress renderer.ProgressFunc) (*renderer.Framebuffer, Stats, error) {
	sceneObj.Camera().SetAspectRatio(float64(req.Width) / float64(req.Height))
	sceneObj.Options = scene.Options{Workers: s.config.Workers, Progress: progress}

	fb, err := sceneObj.RenderContext(ctx, req.Width, req.Height)
	if err != nil {
		return nil, Stats{}, err
	}

	rs := sceneObj.Stats()
	return fb, Stats{
		TotalPixels:      rs.TotalPixels,
		Workers:          rs.Workers,
		ElapsedMs:        rs.Elapsed.Milliseconds(),
		PixelsPerSecond:  rs.PixelsPerSecond(),
		AverageLuminance: rs.AverageLuminance,
	}, nil
}

// parseRenderRequest parses request parameters
func parseRenderRequest(values url.Values) (*RenderRequest, error) {
	req := &RenderRequest{}

	if sceneName := values.Get("scene"); sceneName != "" {
		req.Scene = sceneName
	} else {
		req.Scene = "default"
	}

	var err error
	if req.Width, err = parseIntParam(values, "width", defaultWidth, minDimension, maxDimension); err != nil {
		return nil, err
	}
	if req.Height, err = parseIntParam(values, "height", defaultHeight, minDimension, maxDimension); err != nil {
		return nil, err
	}

	req.Format = renderer.FormatPNG
	if format := values.Get("format"); format != "" {
		if req.Format, err = renderer.ParseFormat(format); err != nil {
			return nil, err
		}
	}

	if req.Width*req.Height > 1200*900 {
		core.Logger().Warn("large render requested", "width", req.Width, "height", req.Height)
	}

	return req, nil
}

// parseIntParam parses an integer parameter from URL query with validation
func parseIntParam(values url.Values, key string, defaultValue, min, max int) (int, error) {
	if value := values.Get(key); value != "" {
		parsed, err := strconv.Atoi(value)
		if err != nil {
			return 0, fmt.Errorf("invalid %s: %s", key, value)
		}
		if parsed < min || parsed > max {
			return 0, fmt.Errorf("%s must be between %d and %d, got: %d", key, min, max, parsed)
		}
		return parsed, nil
	}
	return defaultValue, nil
}

// createScene builds a built-in scene or loads file:<name> from the scenes directory
func (s *Server) createScene(sceneID string) (*scene.Scene, error) {
	if sceneObj, err := scene.NewBuiltin(sceneID); err == nil {
		return sceneObj, nil
	}

	files, err := scene.ListSceneFiles(s.config.ScenesDir)
	if err != nil {
		return nil, err
	}
	for _, info := range files {
		if info.ID == sceneID {
			return loaders.LoadScene(info.FilePath)
		}
	}

	return nil, fmt.Errorf("%w: %q", scene.ErrUnknownScene, sceneID)
}

// elapsedMs is the time since start in whole milliseconds
func elapsedMs(start time.Time) int64 {
	return time.Since(start).Milliseconds()
}
