package geometry

import (
	"github.com/df07/go-whitted-raytracer/pkg/core"
	"github.com/df07/go-whitted-raytracer/pkg/lights"
)

// Primitive is a shape that can be intersected by rays and shaded by point lights.
//
// Degenerate queries (zero-length ray directions, rays parallel to a flat
// shape) are reported with an error wrapping core.ErrDegenerateGeometry rather
// than producing NaN or infinite results.
type Primitive interface {
	// IsIntersectedBy reports whether the ray hits the primitive at t > 0
	IsIntersectedBy(ray core.Ray) (bool, error)

	// PointIntersectedBy returns the nearest valid forward intersection point
	PointIntersectedBy(ray core.Ray) (core.Vec3, bool, error)

	// ComputeColor returns the local illumination from one light at a surface
	// point. Visibility is the caller's concern.
	ComputeColor(point core.Vec3, ray core.Ray, light lights.PointLight) (core.Color, error)

	// NormalAt returns the unit surface normal at a point on the primitive
	NormalAt(point core.Vec3) core.Vec3
}
