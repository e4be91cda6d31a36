package renderer

import (
	"testing"

	"github.com/df07/go-whitted-raytracer/pkg/core"
	"github.com/df07/go-whitted-raytracer/pkg/geometry"
	"github.com/df07/go-whitted-raytracer/pkg/material"
)

// sceneFunc adapts a function to the Scene interface
type sceneFunc func(ray core.Ray) (core.Color, error)

func (f sceneFunc) ComputeColor(ray core.Ray) (core.Color, error) {
	return f(ray)
}

// newTestCamera looks down -Z from the origin with a square-pixel lens
func newTestCamera(t *testing.T, width, height int) *Camera {
	t.Helper()
	camera, err := NewCamera(CameraConfig{
		Position:      core.NewVec3(0, 0, 0),
		Direction:     core.NewVec3(0, 0, -1),
		FocalDistance: 1,
		LensHeight:    2,
		LensWidth:     2 * float64(width) / float64(height),
		ScreenHeight:  height,
		ScreenWidth:   width,
	})
	if err != nil {
		t.Fatalf("NewCamera: %v", err)
	}
	return camera
}

// newSphereScene returns white where a sphere in front of the camera is hit
func newSphereScene(t *testing.T) Scene {
	t.Helper()
	surface := material.NewSurface(core.NewVec3(1, 1, 1), core.Vec3{})
	sphere, err := geometry.NewSphere(core.NewVec3(0.3, -0.2, -3), 1, surface)
	if err != nil {
		t.Fatal(err)
	}
	return sceneFunc(func(ray core.Ray) (core.Color, error) {
		hit, err := sphere.IsIntersectedBy(ray)
		if err != nil || !hit {
			return core.Black, err
		}
		return core.NewColor(1, 1, 1), nil
	})
}
