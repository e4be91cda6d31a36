package server

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"image/png"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/df07/go-whitted-raytracer/pkg/config"
	"github.com/df07/go-whitted-raytracer/pkg/core"
	"github.com/df07/go-whitted-raytracer/pkg/loaders"
	"github.com/df07/go-whitted-raytracer/pkg/output"
	"github.com/df07/go-whitted-raytracer/pkg/renderer"
	"github.com/df07/go-whitted-raytracer/pkg/scene"
)

// Request limits
const (
	minImageSize = 10
	maxImageSize = 2000
	maxSamples   = 10000
	maxPasses    = 100
)

// Server handles web requests for the raytracer
type Server struct {
	config config.Config
	mux    *http.ServeMux
}

// NewServer creates a new web server
func NewServer(cfg config.Config) *Server {
	s := &Server{config: cfg, mux: http.NewServeMux()}

	s.mux.HandleFunc("/api/health", s.handleHealth)
	s.mux.HandleFunc("/api/scenes", s.handleScenes)
	s.mux.HandleFunc("/api/scene-config", s.handleSceneConfig)
	s.mux.HandleFunc("/api/image", s.handleImage)
	s.mux.HandleFunc("/api/render", s.handleRender)
	s.mux.HandleFunc("/api/inspect", s.handleInspect)
	return s
}

// Handler returns the HTTP handler serving the API
func (s *Server) Handler() http.Handler {
	return s.mux
}

// Start serves until ctx is cancelled
func (s *Server) Start(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.config.Port),
		Handler:           s.mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		httpServer.Shutdown(shutdownCtx)
	}()

	log.Printf("Starting web server on http://localhost%s", httpServer.Addr)
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	log.Printf("Web server stopped")
	return nil
}

// RenderRequest represents a render request from the client.
// Zero Width, Height and MaxSamples keep the scene's own settings.
type RenderRequest struct {
	Scene      string // Scene ID, e.g. "sphere" or "file:red-spheres"
	Width      int
	Height     int
	MaxSamples int
	MaxPasses  int
}

// handleHealth provides a simple health check endpoint
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleScenes lists builtin scenes and scene files
func (s *Server) handleScenes(w http.ResponseWriter, r *http.Request) {
	response, err := scene.ListAllScenes(s.config.ScenesDir)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, response)
}

// handleSceneConfig returns the default configuration for a scene
func (s *Server) handleSceneConfig(w http.ResponseWriter, r *http.Request) {
	req := &RenderRequest{}
	if err := s.parseCommonSceneParams(r, req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	sceneObj, err := s.createScene(req, core.NopLogger{})
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	cameraObj, err := sceneObj.Camera()
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	u, v, cameraW := cameraObj.Basis()

	camera := sceneObj.CameraConfig
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"scene": req.Scene,
		"camera": map[string]interface{}{
			"position":    vec(camera.Position),
			"right":       vec(u),
			"up":          vec(v),
			"backward":    vec(cameraW),
			"lensTopLeft": vec(cameraObj.LensTopLeft()),
			"lensWidth":   camera.LensWidth,
			"lensHeight":  camera.LensHeight,
		},
		"defaults": map[string]interface{}{
			"width":           camera.ScreenWidth,
			"height":          camera.ScreenHeight,
			"samplesPerPixel": sceneObj.SamplingConfig.SamplesPerPixel,
			"seed":            sceneObj.SamplingConfig.Seed,
			"maxPasses":       s.config.Passes,
			"primitiveCount":  sceneObj.PrimitiveCount(),
			"lightCount":      len(sceneObj.Lights),
		},
		"limits": map[string]interface{}{
			"width":      map[string]int{"min": minImageSize, "max": maxImageSize},
			"height":     map[string]int{"min": minImageSize, "max": maxImageSize},
			"maxSamples": map[string]int{"min": 1, "max": maxSamples},
			"maxPasses":  map[string]int{"min": 1, "max": maxPasses},
		},
	})
}

// handleImage renders a scene to completion and returns the encoded image
func (s *Server) handleImage(w http.ResponseWriter, r *http.Request) {
	req := &RenderRequest{}
	if err := s.parseCommonSceneParams(r, req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	var err error
	if req.MaxSamples, err = parseIntParam(r.URL.Query(), "maxSamples", 0, 1, maxSamples); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	format := output.FormatPNG
	if value := r.URL.Query().Get("format"); value != "" {
		if format, err = output.FormatFromPath("image." + value); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
	}

	sceneObj, err := s.createScene(req, core.NopLogger{})
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	raytracer, err := s.newRaytracer(sceneObj, 1, core.NopLogger{})
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	startTime := time.Now()
	img, stats, err := raytracer.Render(r.Context())
	if err != nil {
		http.Error(w, fmt.Sprintf("Render error: %v", err), http.StatusInternalServerError)
		return
	}
	log.Printf("Rendered %s (%dx%d, %d samples) in %v",
		req.Scene, img.Bounds().Dx(), img.Bounds().Dy(), stats.TotalSamples, time.Since(startTime))

	var buf bytes.Buffer
	if err := output.Encode(&buf, img, format); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", "render"+format.Extension()))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.Write(buf.Bytes())
}

// parseCommonSceneParams parses the scene name and optional image size
func (s *Server) parseCommonSceneParams(r *http.Request, req *RenderRequest) error {
	query := r.URL.Query()

	req.Scene = query.Get("scene")
	if req.Scene == "" {
		req.Scene = "default"
	}

	var err error
	if req.Width, err = parseIntParam(query, "width", 0, minImageSize, maxImageSize); err != nil {
		return err
	}
	if req.Height, err = parseIntParam(query, "height", 0, minImageSize, maxImageSize); err != nil {
		return err
	}
	if (req.Width == 0) != (req.Height == 0) {
		return errors.New("width and height must be given together")
	}
	return nil
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

// createScene resolves the requested scene and applies size and sample overrides.
// Only builtin and file: IDs are accepted, never filesystem paths.
func (s *Server) createScene(req *RenderRequest, logger core.Logger) (*scene.Scene, error) {
	sceneObj, err := loaders.ResolveScene(req.Scene, s.config.ScenesDir, logger)
	if err != nil {
		return nil, err
	}
	if req.Width > 0 && req.Height > 0 {
		sceneObj.SetResolution(req.Width, req.Height)
	}
	if req.MaxSamples > 0 {
		sceneObj.SamplingConfig.SamplesPerPixel = req.MaxSamples
	}
	return sceneObj, sceneObj.Validate()
}

// newRaytracer creates a progressive raytracer for a scene
func (s *Server) newRaytracer(sceneObj *scene.Scene, passes int, logger core.Logger) (*renderer.ProgressiveRaytracer, error) {
	camera, err := sceneObj.Camera()
	if err != nil {
		return nil, err
	}
	progressive := s.config.Progressive(sceneObj.SamplingConfig)
	progressive.MaxPasses = passes
	return renderer.NewProgressiveRaytracer(sceneObj, camera, progressive, logger)
}

// imageToBase64PNG converts an image to base64-encoded PNG
func imageToBase64PNG(img image.Image) (string, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// writeJSON writes a JSON response with CORS enabled
func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("Error encoding response: %v", err)
	}
}
