package geometry

import (
	"fmt"
	"math"

	"github.com/df07/go-whitted-raytracer/pkg/core"
	"github.com/df07/go-whitted-raytracer/pkg/lights"
	"github.com/df07/go-whitted-raytracer/pkg/material"
)

// triangleEpsilon bounds the parallel test and the minimum hit distance
const triangleEpsilon = 1e-8

// Triangle represents a single triangle defined by three vertices
type Triangle struct {
	P0, P1, P2 core.Vec3 // The three vertices
	U, V       core.Vec3 // Edges P1-P0 and P2-P0
	Normal     core.Vec3 // Unit normal, normalize(U × V)
	Surface    *material.Surface
}

// NewTriangle creates a new triangle from three vertices.
// Collinear or coincident vertices have no normal and are rejected.
func NewTriangle(p0, p1, p2 core.Vec3, surface *material.Surface) (*Triangle, error) {
	if surface == nil {
		return nil, fmt.Errorf("triangle requires a surface")
	}

	// Precompute edges and normal
	u := p1.Subtract(p0)
	v := p2.Subtract(p0)
	normal, err := u.Cross(v).Normalize()
	if err != nil {
		return nil, fmt.Errorf("triangle %v %v %v has zero area: %w", p0, p1, p2, err)
	}

	return &Triangle{
		P0:      p0,
		P1:      p1,
		P2:      p2,
		U:       u,
		V:       v,
		Normal:  normal,
		Surface: surface,
	}, nil
}

// Barycentric runs the Möller-Trumbore test and returns the barycentric
// coordinates (u, v) and ray parameter t of the hit.
// A ray parallel to the triangle plane is reported as degenerate geometry.
func (t *Triangle) Barycentric(ray core.Ray) (u, v, tHit float64, hit bool, err error) {
	h := ray.Direction.Cross(t.V)
	a := t.U.Dot(h)

	// If determinant is near zero, ray lies in plane of triangle
	if math.Abs(a) < triangleEpsilon {
		return 0, 0, 0, false, fmt.Errorf("ray %v parallel to triangle: %w", ray.Direction, core.ErrDegenerateGeometry)
	}

	f := 1.0 / a
	s := ray.Origin.Subtract(t.P0)
	u = f * s.Dot(h)
	if u < 0.0 || u > 1.0 {
		return u, 0, 0, false, nil
	}

	q := s.Cross(t.U)
	v = f * ray.Direction.Dot(q)
	if v < 0.0 || u+v > 1.0 {
		return u, v, 0, false, nil
	}

	tHit = f * t.V.Dot(q)
	if tHit <= triangleEpsilon {
		return u, v, tHit, false, nil
	}
	return u, v, tHit, true, nil
}

// IsIntersectedBy reports whether the ray hits the triangle
func (t *Triangle) IsIntersectedBy(ray core.Ray) (bool, error) {
	_, _, _, hit, err := t.Barycentric(ray)
	return hit, err
}

// PointIntersectedBy returns origin + direction·t for a hit
func (t *Triangle) PointIntersectedBy(ray core.Ray) (core.Vec3, bool, error) {
	_, _, tHit, hit, err := t.Barycentric(ray)
	if !hit || err != nil {
		return core.Vec3{}, false, err
	}
	return ray.At(tHit), true, nil
}

// NormalAt returns the precomputed triangle normal
func (t *Triangle) NormalAt(core.Vec3) core.Vec3 {
	return t.Normal
}

// ComputeColor shades a point on the triangle for one light
func (t *Triangle) ComputeColor(point core.Vec3, ray core.Ray, light lights.PointLight) (core.Color, error) {
	return t.Surface.Shade(point, t.Normal, ray.Direction, light.Position, light.Intensity)
}
