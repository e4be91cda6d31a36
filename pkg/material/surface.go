package material

import (
	"fmt"
	"math"

	"github.com/df07/go-whitted-raytracer/pkg/core"
)

// DefaultShininess is the Blinn-Phong exponent used when a surface does not set one
const DefaultShininess = 50.0

// Surface holds the reflectance coefficients of a primitive.
// Surfaces are immutable and shared by pointer between primitives.
type Surface struct {
	Diffuse   core.Vec3 // RGB diffuse reflectance, each channel in [0,1]
	Specular  core.Vec3 // RGB specular reflectance, each channel in [0,1]
	Shininess float64   // Blinn-Phong exponent
}

// NewSurface creates a surface with the default shininess
func NewSurface(diffuse, specular core.Vec3) *Surface {
	return &Surface{
		Diffuse:   diffuse,
		Specular:  specular,
		Shininess: DefaultShininess,
	}
}

// NewSurfaceWithShininess creates a surface with an explicit Blinn-Phong exponent
func NewSurfaceWithShininess(diffuse, specular core.Vec3, shininess float64) *Surface {
	return &Surface{
		Diffuse:   diffuse,
		Specular:  specular,
		Shininess: shininess,
	}
}

// Validate checks that reflectances are in [0,1] and shininess is positive
func (s *Surface) Validate() error {
	for name, v := range map[string]core.Vec3{"diffuse": s.Diffuse, "specular": s.Specular} {
		if !v.IsFinite() || v.X < 0 || v.Y < 0 || v.Z < 0 || v.X > 1 || v.Y > 1 || v.Z > 1 {
			return fmt.Errorf("%s reflectance %v outside [0,1]", name, v)
		}
	}
	if s.Shininess <= 0 || math.IsNaN(s.Shininess) {
		return fmt.Errorf("shininess must be positive, got %g", s.Shininess)
	}
	return nil
}

// Shade evaluates the Blinn-Phong contribution of one point light at one
// surface point. It does not test visibility.
//
// normal must be unit length. viewDirection is the incoming ray direction and
// need not be normalized.
func (s *Surface) Shade(point, normal, viewDirection, lightPosition core.Vec3, intensity float64) (core.Color, error) {
	toLight, err := lightPosition.Subtract(point).Normalize()
	if err != nil {
		return core.Black, fmt.Errorf("light direction: %w", err)
	}
	toViewer, err := viewDirection.Negate().Normalize()
	if err != nil {
		return core.Black, fmt.Errorf("view direction: %w", err)
	}

	diffuse := s.Diffuse.Multiply(intensity * math.Max(0, normal.Dot(toLight)))

	// The half vector vanishes when the light sits exactly behind the viewer's
	// line of sight; there is no highlight in that configuration.
	specular := core.Vec3{}
	if halfVector, err := toLight.Add(toViewer).Normalize(); err == nil {
		highlight := math.Pow(math.Max(0, normal.Dot(halfVector)), s.Shininess)
		specular = s.Specular.Multiply(intensity * highlight)
	}

	return core.ColorFromVec3(diffuse.Add(specular)), nil
}
