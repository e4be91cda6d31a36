package geometry

import (
	"fmt"
	"math"

	"github.com/df07/go-whitted-raytracer/pkg/core"
	"github.com/df07/go-whitted-raytracer/pkg/lights"
	"github.com/df07/go-whitted-raytracer/pkg/material"
)

// Sphere represents a sphere shape
type Sphere struct {
	Center  core.Vec3
	Radius  float64
	Surface *material.Surface
}

// NewSphere creates a new sphere
func NewSphere(center core.Vec3, radius float64, surface *material.Surface) (*Sphere, error) {
	if !(radius > 0) || math.IsInf(radius, 0) {
		return nil, fmt.Errorf("sphere radius must be positive and finite, got %g", radius)
	}
	if !center.IsFinite() {
		return nil, fmt.Errorf("sphere center %v is not finite", center)
	}
	if surface == nil {
		return nil, fmt.Errorf("sphere requires a surface")
	}
	return &Sphere{
		Center:  center,
		Radius:  radius,
		Surface: surface,
	}, nil
}

// intersect solves |o + t·d - c|² = r² and returns the smallest strictly
// positive root. When the ray starts inside the sphere that is the far root.
func (s *Sphere) intersect(ray core.Ray) (float64, bool, error) {
	// Vector from sphere center to ray origin
	oc := ray.Origin.Subtract(s.Center)

	// Quadratic equation coefficients: at² + bt + c = 0
	a := ray.Direction.Dot(ray.Direction)
	if a == 0 {
		return 0, false, fmt.Errorf("sphere intersection with zero-length ray direction: %w", core.ErrDegenerateGeometry)
	}
	b := 2 * oc.Dot(ray.Direction)
	c := oc.Dot(oc) - s.Radius*s.Radius

	// No real roots: the ray misses
	discriminant := b*b - 4*a*c
	if discriminant < 0 {
		return 0, false, nil
	}

	sqrtD := math.Sqrt(discriminant)
	near := (-b - sqrtD) / (2 * a)
	far := (-b + sqrtD) / (2 * a)

	if near > 0 {
		return near, true, nil
	}
	if far > 0 {
		return far, true, nil
	}
	// Both roots behind the origin
	return 0, false, nil
}

// IsIntersectedBy reports whether the ray hits the sphere ahead of its origin
func (s *Sphere) IsIntersectedBy(ray core.Ray) (bool, error) {
	_, hit, err := s.intersect(ray)
	return hit, err
}

// PointIntersectedBy returns the nearest forward intersection point
func (s *Sphere) PointIntersectedBy(ray core.Ray) (core.Vec3, bool, error) {
	t, hit, err := s.intersect(ray)
	if !hit || err != nil {
		return core.Vec3{}, false, err
	}
	return ray.At(t), true, nil
}

// NormalAt returns the outward normal (point - center) / radius
func (s *Sphere) NormalAt(point core.Vec3) core.Vec3 {
	return point.Subtract(s.Center).Multiply(1.0 / s.Radius)
}

// ComputeColor shades a point on the sphere for one light
func (s *Sphere) ComputeColor(point core.Vec3, ray core.Ray, light lights.PointLight) (core.Color, error) {
	return s.Surface.Shade(point, s.NormalAt(point), ray.Direction, light.Position, light.Intensity)
}
