package renderer

import (
	"fmt"
	"math"

	"github.com/df07/go-whitted-raytracer/pkg/core"
)

// worldUp is the fixed up vector used to build the camera basis
var worldUp = core.NewVec3(0, 1, 0)

// CameraConfig contains all parameters needed to create a camera
type CameraConfig struct {
	Position      core.Vec3 `json:"position"`      // Eye point P
	Direction     core.Vec3 `json:"direction"`     // Viewing direction D (need not be unit length)
	FocalDistance float64   `json:"focalDistance"` // Distance from eye to lens plane
	LensHeight    float64   `json:"lensHeight"`    // Lens extent along v in world units
	LensWidth     float64   `json:"lensWidth"`     // Lens extent along u in world units
	ScreenHeight  int       `json:"screenHeight"`  // Image height in pixels
	ScreenWidth   int       `json:"screenWidth"`   // Image width in pixels
}

// Camera generates primary rays through a rectangular lens.
// It is immutable after construction and safe to share across goroutines.
type Camera struct {
	config      CameraConfig
	u, v, w     core.Vec3 // Orthonormal basis: right, up, backward
	lensTopLeft core.Vec3 // World-space top-left corner of the lens
}

// NewCamera creates a camera and derives its basis.
// w = -normalize(D), u = normalize(up × w), v = w × u.
func NewCamera(config CameraConfig) (*Camera, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	forward, err := config.Direction.Normalize()
	if err != nil {
		return nil, fmt.Errorf("camera direction: %w", err)
	}
	w := forward.Negate()

	// Fails when the view direction is parallel to world up
	u, err := worldUp.Cross(w).Normalize()
	if err != nil {
		return nil, fmt.Errorf("camera direction %v is parallel to world up: %w", config.Direction, err)
	}
	v := w.Cross(u)

	lensTopLeft := config.Position.
		Add(v.Multiply(config.LensHeight / 2)).
		Subtract(u.Multiply(config.LensWidth / 2))

	return &Camera{
		config:      config,
		u:           u,
		v:           v,
		w:           w,
		lensTopLeft: lensTopLeft,
	}, nil
}

// Validate checks the scalar camera parameters
func (c CameraConfig) Validate() error {
	if !c.Position.IsFinite() {
		return fmt.Errorf("camera position %v is not finite", c.Position)
	}
	if !(c.FocalDistance > 0) || math.IsInf(c.FocalDistance, 0) {
		return fmt.Errorf("focal distance must be positive, got %g", c.FocalDistance)
	}
	if !(c.LensHeight > 0) || !(c.LensWidth > 0) {
		return fmt.Errorf("lens dimensions must be positive, got %gx%g", c.LensWidth, c.LensHeight)
	}
	if c.ScreenHeight <= 0 || c.ScreenWidth <= 0 {
		return fmt.Errorf("screen dimensions must be positive, got %dx%d", c.ScreenWidth, c.ScreenHeight)
	}
	return nil
}

// GenerateRay returns the primary ray through fractional pixel (row, col).
// Pixel centers sit at integer coordinates; the sampler adds jitter in [-0.5, 0.5).
//
//	direction = (lensTopLeft - P) - v*lh*((row+0.5)/sh) + u*lw*((col+0.5)/sw) - w*f
//
// lensTopLeft already includes the eye point P, so P is subtracted to keep
// the direction relative to the ray origin. Using the absolute corner, as a
// plain reading of the lens formula would, only agrees when P is the origin.
// The direction is not normalized.
func (c *Camera) GenerateRay(row, col float64) core.Ray {
	cfg := c.config
	direction := c.lensTopLeft.Subtract(cfg.Position).
		Subtract(c.v.Multiply(cfg.LensHeight * ((row + 0.5) / float64(cfg.ScreenHeight)))).
		Add(c.u.Multiply(cfg.LensWidth * ((col + 0.5) / float64(cfg.ScreenWidth)))).
		Subtract(c.w.Multiply(cfg.FocalDistance))

	return core.NewRay(cfg.Position, direction)
}

// Basis returns the camera's right, up and backward vectors
func (c *Camera) Basis() (u, v, w core.Vec3) {
	return c.u, c.v, c.w
}

// LensTopLeft returns the world-space top-left corner of the lens
func (c *Camera) LensTopLeft() core.Vec3 {
	return c.lensTopLeft
}

// Width returns the image width in pixels
func (c *Camera) Width() int {
	return c.config.ScreenWidth
}

// Height returns the image height in pixels
func (c *Camera) Height() int {
	return c.config.ScreenHeight
}

// Config returns the configuration the camera was built from
func (c *Camera) Config() CameraConfig {
	return c.config
}

// LensForFieldOfView returns lens dimensions giving the requested vertical
// field of view (degrees) at the given focal distance and width/height aspect.
func LensForFieldOfView(vfov, focalDistance, aspectRatio float64) (lensHeight, lensWidth float64) {
	theta := vfov * math.Pi / 180
	lensHeight = 2 * focalDistance * math.Tan(theta/2)
	return lensHeight, lensHeight * aspectRatio
}
