package scene

import (
	"fmt"

	"github.com/df07/go-whitted-raytracer/pkg/core"
	"github.com/df07/go-whitted-raytracer/pkg/geometry"
	"github.com/df07/go-whitted-raytracer/pkg/lights"
	"github.com/df07/go-whitted-raytracer/pkg/material"
	"github.com/df07/go-whitted-raytracer/pkg/renderer"
)

const builtinGroup = "Built-in Scenes"

// builtinScene pairs scene metadata with its constructor
type builtinScene struct {
	info  SceneInfo
	build func() (*Scene, error)
}

var builtinScenes = []builtinScene{
	{
		info: SceneInfo{
			ID:          "default",
			Name:        "Default Scene",
			DisplayName: "Default Scene",
			Description: "Three spheres, a triangle and a ground plane lit by two point lights",
			Group:       builtinGroup,
			Type:        "builtin",
		},
		build: NewDefaultScene,
	},
	{
		info: SceneInfo{
			ID:          "sphere",
			Name:        "Single Sphere",
			DisplayName: "Single Sphere",
			Description: "Red sphere on a blue background, lit from the eye",
			Group:       builtinGroup,
			Type:        "builtin",
		},
		build: NewSphereScene,
	},
	{
		info: SceneInfo{
			ID:          "pyramid",
			Name:        "Pyramid",
			DisplayName: "Pyramid",
			Description: "Triangle mesh pyramid casting a shadow on a plane",
			Group:       builtinGroup,
			Type:        "builtin",
		},
		build: NewPyramidScene,
	},
	{
		info: SceneInfo{
			ID:          "empty",
			Name:        "Empty",
			DisplayName: "Empty",
			Description: "No primitives; every pixel is the background",
			Group:       builtinGroup,
			Type:        "builtin",
		},
		build: NewEmptyScene,
	},
}

// BuiltinScenes returns metadata for every scene constructed in code
func BuiltinScenes() []SceneInfo {
	infos := make([]SceneInfo, len(builtinScenes))
	for i, b := range builtinScenes {
		infos[i] = b.info
	}
	return infos
}

// NewBuiltinScene constructs the builtin scene with the given ID
func NewBuiltinScene(id string) (*Scene, error) {
	for _, b := range builtinScenes {
		if b.info.ID == id {
			return b.build()
		}
	}
	return nil, fmt.Errorf("unknown builtin scene %q", id)
}

// wideCamera returns a 16:9 camera config with a 40 degree vertical field of view
func wideCamera(position, direction core.Vec3, width int) renderer.CameraConfig {
	height := width * 9 / 16
	lensHeight, lensWidth := renderer.LensForFieldOfView(40, 1, float64(width)/float64(height))
	return renderer.CameraConfig{
		Position:      position,
		Direction:     direction,
		FocalDistance: 1,
		LensHeight:    lensHeight,
		LensWidth:     lensWidth,
		ScreenHeight:  height,
		ScreenWidth:   width,
	}
}

// NewDefaultScene creates a default scene with spheres, a triangle and a ground plane
func NewDefaultScene() (*Scene, error) {
	s := NewScene(
		wideCamera(core.NewVec3(0, 1, 3), core.NewVec3(0, -0.25, -1), 400),
		renderer.DefaultSamplingConfig(),
	)
	s.Background = core.NewColor(0.05, 0.05, 0.1)

	// Create surfaces
	red := material.NewSurface(core.NewVec3(0.7, 0.15, 0.1), core.NewVec3(0.4, 0.4, 0.4))
	blue := material.NewSurfaceWithShininess(core.NewVec3(0.1, 0.2, 0.6), core.NewVec3(0.6, 0.6, 0.6), 120)
	gold := material.NewSurfaceWithShininess(core.NewVec3(0.6, 0.45, 0.1), core.NewVec3(0.8, 0.7, 0.4), 20)
	green := material.NewSurface(core.NewVec3(0.3, 0.5, 0.2), core.NewVec3(0.05, 0.05, 0.05))
	white := material.NewSurface(core.NewVec3(0.8, 0.8, 0.8), core.NewVec3(0.2, 0.2, 0.2))

	center, err := geometry.NewSphere(core.NewVec3(0, 0.5, -1), 0.5, red)
	if err != nil {
		return nil, err
	}
	left, err := geometry.NewSphere(core.NewVec3(-1.1, 0.4, -1.4), 0.4, blue)
	if err != nil {
		return nil, err
	}
	right, err := geometry.NewSphere(core.NewVec3(1.0, 0.3, -0.6), 0.3, gold)
	if err != nil {
		return nil, err
	}
	ground, err := geometry.NewPlane(core.NewVec3(0, 1, 0), core.NewVec3(0, 0, 0), green)
	if err != nil {
		return nil, err
	}
	panel, err := geometry.NewTriangle(
		core.NewVec3(-2.5, 0, -3),
		core.NewVec3(0.5, 0, -3.5),
		core.NewVec3(-1, 2, -3.2),
		white,
	)
	if err != nil {
		return nil, err
	}

	s.Add(center, left, right, ground, panel)
	s.AddLight(lights.NewPointLight(core.NewVec3(-3, 5, 2), 0.8))
	s.AddLight(lights.NewPointLight(core.NewVec3(4, 3, 3), 0.5))

	return s, nil
}

// NewSphereScene creates the smallest useful scene: one sphere straight ahead
// of a camera at the origin looking down +Z, with the light at the eye
func NewSphereScene() (*Scene, error) {
	s := NewScene(renderer.CameraConfig{
		Position:      core.NewVec3(0, 0, 0),
		Direction:     core.NewVec3(0, 0, 1),
		FocalDistance: 1,
		LensHeight:    2,
		LensWidth:     2,
		ScreenHeight:  100,
		ScreenWidth:   100,
	}, renderer.DefaultSamplingConfig())
	s.Background = core.NewColor(0, 0, 1)

	sphere, err := geometry.NewSphere(core.NewVec3(0, 0, 1), 0.5,
		material.NewSurface(core.NewVec3(1, 0, 0), core.Vec3{}))
	if err != nil {
		return nil, err
	}

	s.Add(sphere)
	s.AddLight(lights.NewPointLight(core.NewVec3(0, 0, 0), 1))
	return s, nil
}

// NewPyramidScene creates a square pyramid mesh standing on a ground plane
func NewPyramidScene() (*Scene, error) {
	s := NewScene(
		wideCamera(core.NewVec3(2.5, 2, 4), core.NewVec3(-2.5, -1.6, -4), 400),
		renderer.DefaultSamplingConfig(),
	)
	s.Background = core.NewColor(0.6, 0.75, 0.9)

	stone := material.NewSurfaceWithShininess(core.NewVec3(0.75, 0.6, 0.35), core.NewVec3(0.3, 0.3, 0.3), 30)
	sand := material.NewSurface(core.NewVec3(0.85, 0.8, 0.6), core.Vec3{})

	// Base lifted slightly so it does not coincide with the ground
	const lift = 0.001
	vertices := []core.Vec3{
		core.NewVec3(-1, lift, 1),
		core.NewVec3(1, lift, 1),
		core.NewVec3(1, lift, -1),
		core.NewVec3(-1, lift, -1),
		core.NewVec3(0, 1.4, 0), // Apex
	}
	faces := []int{
		0, 1, 4, // Front
		1, 2, 4, // Right
		2, 3, 4, // Back
		3, 0, 4, // Left
		0, 3, 2, // Base
		0, 2, 1,
	}
	rotation := core.NewVec3(0, 0.4, 0)
	mesh, err := geometry.NewTriangleMesh(vertices, faces, stone, &geometry.TriangleMeshOptions{
		Rotation: &rotation,
	})
	if err != nil {
		return nil, err
	}

	ground, err := geometry.NewPlane(core.NewVec3(0, 1, 0), core.NewVec3(0, 0, 0), sand)
	if err != nil {
		return nil, err
	}

	s.AddMesh(mesh)
	s.Add(ground)
	s.AddLight(lights.NewPointLight(core.NewVec3(-4, 6, 3), 1))
	return s, nil
}

// NewEmptyScene creates a scene with a camera and a background only
func NewEmptyScene() (*Scene, error) {
	s := NewScene(
		wideCamera(core.NewVec3(0, 0, 0), core.NewVec3(0, 0, -1), 160),
		renderer.SamplingConfig{SamplesPerPixel: 1, Seed: 42},
	)
	s.Background = core.NewColor(0.5, 0.5, 0.5)
	return s, nil
}
