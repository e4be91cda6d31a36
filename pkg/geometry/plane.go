package geometry

import (
	"fmt"

	"github.com/df07/go-whitted-raytracer/pkg/core"
	"github.com/df07/go-whitted-raytracer/pkg/lights"
	"github.com/df07/go-whitted-raytracer/pkg/material"
)

// Plane represents an infinite plane n·p + d0 = 0
type Plane struct {
	Normal           core.Vec3 // Unit normal
	DistanceToOrigin float64   // Signed offset, -dot(pointOnPlane, Normal)
	Surface          *material.Surface
}

// NewPlane creates a plane through point with the given normal.
// The normal is normalized; a zero normal is degenerate.
func NewPlane(normal, point core.Vec3, surface *material.Surface) (*Plane, error) {
	unit, err := normal.Normalize()
	if err != nil {
		return nil, fmt.Errorf("plane normal: %w", err)
	}
	if !point.IsFinite() {
		return nil, fmt.Errorf("plane point %v is not finite", point)
	}
	if surface == nil {
		return nil, fmt.Errorf("plane requires a surface")
	}
	return &Plane{
		Normal:           unit,
		DistanceToOrigin: -point.Dot(unit),
		Surface:          surface,
	}, nil
}

// intersect returns the ray parameter of the plane crossing
func (p *Plane) intersect(ray core.Ray) (float64, error) {
	vd := p.Normal.Dot(ray.Direction)
	if vd == 0 {
		return 0, fmt.Errorf("ray %v parallel to plane: %w", ray.Direction, core.ErrDegenerateGeometry)
	}
	vo := p.Normal.Dot(ray.Origin)
	return -(vo + p.DistanceToOrigin) / vd, nil
}

// IsIntersectedBy reports whether the ray crosses the plane at t > 0
func (p *Plane) IsIntersectedBy(ray core.Ray) (bool, error) {
	t, err := p.intersect(ray)
	if err != nil {
		return false, err
	}
	return t > 0, nil
}

// PointIntersectedBy returns the crossing point when it lies ahead of the ray origin
func (p *Plane) PointIntersectedBy(ray core.Ray) (core.Vec3, bool, error) {
	t, err := p.intersect(ray)
	if err != nil || t <= 0 {
		return core.Vec3{}, false, err
	}
	return ray.At(t), true, nil
}

// NormalAt returns the constant plane normal
func (p *Plane) NormalAt(core.Vec3) core.Vec3 {
	return p.Normal
}

// ComputeColor shades a point on the plane for one light
func (p *Plane) ComputeColor(point core.Vec3, ray core.Ray, light lights.PointLight) (core.Color, error) {
	return p.Surface.Shade(point, p.Normal, ray.Direction, light.Position, light.Intensity)
}
