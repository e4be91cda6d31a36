package lights

import (
	"fmt"
	"math"

	"github.com/df07/go-whitted-raytracer/pkg/core"
)

// PointLight is an infinitesimal light source with a scalar intensity
type PointLight struct {
	Position  core.Vec3
	Intensity float64
}

// NewPointLight creates a new point light
func NewPointLight(position core.Vec3, intensity float64) PointLight {
	return PointLight{Position: position, Intensity: intensity}
}

// Validate checks that the light has a finite position and non-negative intensity
func (l PointLight) Validate() error {
	if !l.Position.IsFinite() {
		return fmt.Errorf("light position %v is not finite", l.Position)
	}
	if l.Intensity < 0 || math.IsNaN(l.Intensity) || math.IsInf(l.Intensity, 0) {
		return fmt.Errorf("light intensity must be finite and non-negative, got %g", l.Intensity)
	}
	return nil
}

// ShadowRay builds the occlusion ray from a surface point toward the light.
// The origin is pushed bias units along the light direction so the ray does
// not immediately re-hit the surface it leaves.
func (l PointLight) ShadowRay(point core.Vec3, bias float64) (core.Ray, error) {
	direction, err := l.Position.Subtract(point).Normalize()
	if err != nil {
		return core.Ray{}, fmt.Errorf("shadow ray: %w", err)
	}
	return core.NewRay(point.Add(direction.Multiply(bias)), direction), nil
}
