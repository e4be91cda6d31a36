package loaders

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/df07/go-whitted-raytracer/pkg/core"
	"github.com/df07/go-whitted-raytracer/pkg/geometry"
	"github.com/df07/go-whitted-raytracer/pkg/lights"
	"github.com/df07/go-whitted-raytracer/pkg/material"
	"github.com/df07/go-whitted-raytracer/pkg/renderer"
	"github.com/df07/go-whitted-raytracer/pkg/scene"
)

// SceneFile is the JSON description of a scene
type SceneFile struct {
	Name        string `json:"name"`
	Variant     string `json:"variant"`
	Description string `json:"description"`
	Group       string `json:"group"`

	Camera          CameraSpec             `json:"camera"`
	SamplesPerPixel int                    `json:"samplesPerPixel"`
	Seed            *int64                 `json:"seed"`
	Background      *colorValue            `json:"background"`
	ShadowBias      *float64               `json:"shadowBias"`
	Surfaces        map[string]SurfaceSpec `json:"surfaces"`
	Lights          []LightSpec            `json:"lights"`
	Primitives      []PrimitiveSpec        `json:"primitives"`
}

// CameraSpec describes the camera. Lens dimensions may be given directly or
// derived from a vertical field of view.
type CameraSpec struct {
	Position      vec3Value `json:"position"`
	Direction     vec3Value `json:"direction"`
	FocalDistance float64   `json:"focalDistance"`
	FieldOfView   float64   `json:"fov"` // Vertical, degrees
	LensHeight    float64   `json:"lensHeight"`
	LensWidth     float64   `json:"lensWidth"`
	Width         int       `json:"width"`
	Height        int       `json:"height"`
}

// SurfaceSpec describes a named surface
type SurfaceSpec struct {
	Diffuse   colorValue `json:"diffuse"`
	Specular  colorValue `json:"specular"`
	Shininess float64    `json:"shininess"`
}

// LightSpec describes a point light
type LightSpec struct {
	Position  vec3Value `json:"position"`
	Intensity float64   `json:"intensity"`
}

// PrimitiveSpec describes one primitive. Type selects which fields apply.
type PrimitiveSpec struct {
	Type    string `json:"type"` // sphere, plane, triangle or mesh
	Surface string `json:"surface"`

	Center vec3Value `json:"center"` // sphere
	Radius float64   `json:"radius"`

	Normal vec3Value `json:"normal"` // plane
	Point  vec3Value `json:"point"`

	Vertices []vec3Value `json:"vertices"` // triangle

	File      string        `json:"file"` // mesh, relative to the scene file
	Transform MeshTransform `json:"transform"`
}

// LoadScene reads a JSON scene file. Mesh paths resolve relative to the file.
func LoadScene(filename string, logger core.Logger) (*scene.Scene, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open scene file: %w", err)
	}
	defer file.Close()

	s, err := ParseScene(file, filepath.Dir(filename), logger)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return s, nil
}

// ParseScene decodes a JSON scene description and builds the scene
func ParseScene(r io.Reader, baseDir string, logger core.Logger) (*scene.Scene, error) {
	var sf SceneFile
	decoder := json.NewDecoder(r)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&sf); err != nil {
		return nil, fmt.Errorf("invalid scene JSON: %w", err)
	}
	return sf.Build(baseDir, logger)
}

// Build converts the description into a validated scene. Warnings and mesh
// loading progress go to logger.
func (sf *SceneFile) Build(baseDir string, logger core.Logger) (*scene.Scene, error) {
	if logger == nil {
		logger = core.NopLogger{}
	}

	cameraConfig, err := sf.Camera.config()
	if err != nil {
		return nil, err
	}

	sampling := renderer.DefaultSamplingConfig()
	if sf.SamplesPerPixel != 0 {
		sampling.SamplesPerPixel = sf.SamplesPerPixel
	}
	if sf.Seed != nil {
		sampling.Seed = *sf.Seed
	}

	s := scene.NewScene(cameraConfig, sampling)
	if sf.Background != nil {
		s.Background = sf.Background.Color()
	}
	if sf.ShadowBias != nil {
		s.ShadowBias = *sf.ShadowBias
	}

	surfaces := make(map[string]*material.Surface, len(sf.Surfaces))
	for name, ss := range sf.Surfaces {
		surface := ss.surface()
		if err := surface.Validate(); err != nil {
			return nil, fmt.Errorf("surface %q: %w", name, err)
		}
		surfaces[name] = surface
	}

	for _, ls := range sf.Lights {
		s.AddLight(lights.NewPointLight(ls.Position.Vec3(), ls.Intensity))
	}

	for i, ps := range sf.Primitives {
		surface, ok := surfaces[ps.Surface]
		if !ok {
			return nil, fmt.Errorf("primitive %d: unknown surface %q", i, ps.Surface)
		}
		primitives, err := ps.build(surface, baseDir, logger)
		if err != nil {
			return nil, fmt.Errorf("primitive %d (%s): %w", i, ps.Type, err)
		}
		s.Add(primitives...)
	}

	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

func (c CameraSpec) config() (renderer.CameraConfig, error) {
	config := renderer.CameraConfig{
		Position:      c.Position.Vec3(),
		Direction:     c.Direction.Vec3(),
		FocalDistance: c.FocalDistance,
		LensHeight:    c.LensHeight,
		LensWidth:     c.LensWidth,
		ScreenHeight:  c.Height,
		ScreenWidth:   c.Width,
	}
	if config.FocalDistance == 0 {
		config.FocalDistance = 1
	}
	if c.Width <= 0 || c.Height <= 0 {
		return config, fmt.Errorf("camera width and height must be positive, got %dx%d", c.Width, c.Height)
	}

	if c.FieldOfView != 0 {
		if c.LensHeight != 0 || c.LensWidth != 0 {
			return config, errors.New("camera takes either fov or lens dimensions, not both")
		}
		config.LensHeight, config.LensWidth = renderer.LensForFieldOfView(
			c.FieldOfView, config.FocalDistance, float64(c.Width)/float64(c.Height))
	}
	return config, nil
}

func (s SurfaceSpec) surface() *material.Surface {
	shininess := s.Shininess
	if shininess == 0 {
		shininess = material.DefaultShininess
	}
	return material.NewSurfaceWithShininess(s.Diffuse.Color().Vec3(), s.Specular.Color().Vec3(), shininess)
}

// build creates the primitives for one entry; meshes expand to many triangles
func (p PrimitiveSpec) build(surface *material.Surface, baseDir string, logger core.Logger) ([]geometry.Primitive, error) {
	switch strings.ToLower(p.Type) {
	case "sphere":
		sphere, err := geometry.NewSphere(p.Center.Vec3(), p.Radius, surface)
		if err != nil {
			return nil, err
		}
		return []geometry.Primitive{sphere}, nil

	case "plane":
		plane, err := geometry.NewPlane(p.Normal.Vec3(), p.Point.Vec3(), surface)
		if err != nil {
			return nil, err
		}
		return []geometry.Primitive{plane}, nil

	case "triangle":
		if len(p.Vertices) != 3 {
			return nil, fmt.Errorf("triangle needs 3 vertices, got %d", len(p.Vertices))
		}
		triangle, err := geometry.NewTriangle(p.Vertices[0].Vec3(), p.Vertices[1].Vec3(), p.Vertices[2].Vec3(), surface)
		if err != nil {
			return nil, err
		}
		return []geometry.Primitive{triangle}, nil

	case "mesh":
		if p.File == "" {
			return nil, errors.New("mesh requires a file")
		}
		path := p.File
		if !filepath.IsAbs(path) {
			path = filepath.Join(baseDir, path)
		}
		data, err := LoadMesh(path, logger)
		if err != nil {
			return nil, err
		}
		p.Transform.Apply(data)

		mesh, err := geometry.NewTriangleMesh(data.Vertices, data.Faces, surface, nil)
		if err != nil {
			return nil, err
		}
		if mesh.Skipped > 0 {
			logger.Printf("Warning: skipped %d zero-area faces in %s\n", mesh.Skipped, p.File)
		}
		return mesh.Primitives(), nil

	default:
		return nil, fmt.Errorf("unknown primitive type %q", p.Type)
	}
}

// ErrScenePath is returned when a scene ID names a file path. Scene files
// are referenced by name with the file prefix so lookups stay inside scenesDir.
var ErrScenePath = errors.New("scene paths are not accepted; use file:<name> for scenes in the scenes directory")

// ResolveScene returns a builtin scene by ID, or a scene file from scenesDir
// for IDs with the file prefix. Paths are rejected with ErrScenePath.
func ResolveScene(id, scenesDir string, logger core.Logger) (*scene.Scene, error) {
	switch {
	case id == "":
		return nil, errors.New("scene name is empty")
	case strings.HasPrefix(id, scene.FileScenePrefix):
		name := strings.TrimPrefix(id, scene.FileScenePrefix)
		if name == "" || strings.ContainsAny(name, `/\`) || strings.Contains(name, "..") {
			return nil, fmt.Errorf("invalid scene file name %q", name)
		}
		return LoadScene(filepath.Join(scenesDir, name+".json"), logger)
	case isScenePath(id):
		return nil, fmt.Errorf("%q: %w", id, ErrScenePath)
	default:
		return scene.NewBuiltinScene(id)
	}
}

// ResolveSceneOrPath is ResolveScene that also loads *.json paths. Only the
// command line uses it; the web server accepts scene IDs alone.
func ResolveSceneOrPath(id, scenesDir string, logger core.Logger) (*scene.Scene, error) {
	if strings.EqualFold(filepath.Ext(id), ".json") {
		return LoadScene(id, logger)
	}
	return ResolveScene(id, scenesDir, logger)
}

func isScenePath(id string) bool {
	return strings.ContainsAny(id, `/\`) || strings.Contains(id, "..") || filepath.Ext(id) != ""
}
