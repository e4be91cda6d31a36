package scene

import (
	"errors"
	"fmt"
	"math"

	"github.com/df07/go-whitted-raytracer/pkg/core"
	"github.com/df07/go-whitted-raytracer/pkg/geometry"
	"github.com/df07/go-whitted-raytracer/pkg/lights"
	"github.com/df07/go-whitted-raytracer/pkg/renderer"
)

// DefaultShadowBias is how far shadow rays start from the surface, along the
// light direction, so they do not re-hit the surface they leave
const DefaultShadowBias = 1e-6

// Scene contains all the elements needed for rendering.
// Slice order is the iteration order; among equidistant hits the earlier
// primitive wins.
type Scene struct {
	Primitives     []geometry.Primitive
	Lights         []lights.PointLight
	Background     core.Color // Returned for rays that hit nothing
	ShadowBias     float64
	CameraConfig   renderer.CameraConfig
	SamplingConfig renderer.SamplingConfig
}

// NewScene creates an empty scene with a black background
func NewScene(cameraConfig renderer.CameraConfig, samplingConfig renderer.SamplingConfig) *Scene {
	return &Scene{
		Primitives:     make([]geometry.Primitive, 0),
		Lights:         make([]lights.PointLight, 0),
		Background:     core.Black,
		ShadowBias:     DefaultShadowBias,
		CameraConfig:   cameraConfig,
		SamplingConfig: samplingConfig,
	}
}

// Add appends primitives to the scene
func (s *Scene) Add(primitives ...geometry.Primitive) {
	s.Primitives = append(s.Primitives, primitives...)
}

// AddMesh appends every triangle of a mesh to the scene
func (s *Scene) AddMesh(mesh *geometry.TriangleMesh) {
	s.Primitives = append(s.Primitives, mesh.Primitives()...)
}

// AddLight appends a point light to the scene
func (s *Scene) AddLight(light lights.PointLight) {
	s.Lights = append(s.Lights, light)
}

// PrimitiveCount returns the number of primitives tested per ray
func (s *Scene) PrimitiveCount() int {
	return len(s.Primitives)
}

// Camera builds the camera described by CameraConfig
func (s *Scene) Camera() (*renderer.Camera, error) {
	return renderer.NewCamera(s.CameraConfig)
}

// Validate checks the scene configuration before rendering
func (s *Scene) Validate() error {
	var errs []error
	if err := s.CameraConfig.Validate(); err != nil {
		errs = append(errs, err)
	}
	if err := s.SamplingConfig.Validate(); err != nil {
		errs = append(errs, err)
	}
	if s.ShadowBias < 0 || math.IsNaN(s.ShadowBias) || math.IsInf(s.ShadowBias, 0) {
		errs = append(errs, fmt.Errorf("shadow bias must be a non-negative finite number, got %g", s.ShadowBias))
	}
	for i, light := range s.Lights {
		if err := light.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("light %d: %w", i, err))
		}
	}
	for i, primitive := range s.Primitives {
		if primitive == nil {
			errs = append(errs, fmt.Errorf("primitive %d is nil", i))
		}
	}
	return errors.Join(errs...)
}

// ComputeColor returns the clamped color seen along a ray.
// A zero-length direction returns the background together with an error
// wrapping core.ErrDegenerateGeometry.
func (s *Scene) ComputeColor(ray core.Ray) (core.Color, error) {
	if ray.Direction.IsZero() || !ray.Direction.IsFinite() {
		return s.Background, fmt.Errorf("primary ray direction %v: %w", ray.Direction, core.ErrDegenerateGeometry)
	}

	nearest, point, hit := s.nearestHit(ray)
	if !hit {
		return s.Background, nil
	}

	color := core.Black
	for _, light := range s.Lights {
		// Light sitting exactly on the hit point has no direction
		shadowRay, err := light.ShadowRay(point, s.ShadowBias)
		if err != nil {
			continue
		}
		if s.isOccluded(shadowRay) {
			continue
		}

		contribution, err := nearest.ComputeColor(point, ray, light)
		if err != nil {
			continue
		}
		color = color.Add(contribution)
	}

	return color.Clamp(), nil
}

// nearestHit scans every primitive and keeps the closest forward hit.
// Degenerate per-primitive queries count as a miss for that primitive.
func (s *Scene) nearestHit(ray core.Ray) (geometry.Primitive, core.Vec3, bool) {
	var nearest geometry.Primitive
	var nearestPoint core.Vec3
	nearestDistance := math.Inf(1)

	for _, primitive := range s.Primitives {
		point, hit, err := primitive.PointIntersectedBy(ray)
		if err != nil || !hit {
			continue
		}
		// Strict comparison keeps the earliest primitive on ties
		if distance := point.Subtract(ray.Origin).Length(); distance < nearestDistance {
			nearest = primitive
			nearestPoint = point
			nearestDistance = distance
		}
	}

	return nearest, nearestPoint, nearest != nil
}

// isOccluded reports whether any primitive intersects the shadow ray.
// The test is not limited to the segment between the point and the light.
func (s *Scene) isOccluded(shadowRay core.Ray) bool {
	for _, primitive := range s.Primitives {
		if hit, err := primitive.IsIntersectedBy(shadowRay); err == nil && hit {
			return true
		}
	}
	return false
}

// Hit describes the nearest intersection along a ray
type Hit struct {
	Primitive geometry.Primitive
	Point     core.Vec3
	Normal    core.Vec3
	Distance  float64
	Index     int // Position of Primitive in Scene.Primitives
}

// Inspect returns the nearest intersection along a ray without shading it
func (s *Scene) Inspect(ray core.Ray) (Hit, bool, error) {
	if ray.Direction.IsZero() || !ray.Direction.IsFinite() {
		return Hit{}, false, fmt.Errorf("ray direction %v: %w", ray.Direction, core.ErrDegenerateGeometry)
	}

	nearest, point, hit := s.nearestHit(ray)
	if !hit {
		return Hit{}, false, nil
	}

	index := -1
	for i, primitive := range s.Primitives {
		if primitive == nearest {
			index = i
			break
		}
	}
	return Hit{
		Primitive: nearest,
		Point:     point,
		Normal:    nearest.NormalAt(point),
		Distance:  point.Subtract(ray.Origin).Length(),
		Index:     index,
	}, true, nil
}

// SetResolution changes the output size. The lens width follows the new
// aspect ratio so the vertical field of view is unchanged.
func (s *Scene) SetResolution(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	s.CameraConfig.ScreenWidth = width
	s.CameraConfig.ScreenHeight = height
	s.CameraConfig.LensWidth = s.CameraConfig.LensHeight * float64(width) / float64(height)
}
