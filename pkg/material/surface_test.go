package material

import (
	"math"
	"testing"

	"github.com/df07/go-whitted-raytracer/pkg/core"
)

func colorNear(a, b core.Color, tolerance float64) bool {
	return math.Abs(a.R-b.R) <= tolerance &&
		math.Abs(a.G-b.G) <= tolerance &&
		math.Abs(a.B-b.B) <= tolerance
}

func TestSurface_ShadeHeadOn(t *testing.T) {
	// Light and viewer both straight above the point: N·L = N·H = 1
	surface := NewSurface(core.NewVec3(0.5, 0.25, 0), core.NewVec3(0.1, 0.1, 0.1))
	point := core.NewVec3(0, 0, 0)
	normal := core.NewVec3(0, 1, 0)
	viewDirection := core.NewVec3(0, -1, 0)
	light := core.NewVec3(0, 10, 0)

	got, err := surface.Shade(point, normal, viewDirection, light, 2.0)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	expected := core.NewColor(0.5*2+0.1*2, 0.25*2+0.1*2, 0.1*2)
	if !colorNear(got, expected, 1e-12) {
		t.Errorf("Expected %v, got %v", expected, got)
	}
}

func TestSurface_ShadeLightBehindSurface(t *testing.T) {
	surface := NewSurface(core.NewVec3(1, 1, 1), core.NewVec3(1, 1, 1))
	got, err := surface.Shade(
		core.NewVec3(0, 0, 0),
		core.NewVec3(0, 1, 0),
		core.NewVec3(0, -1, 0),
		core.NewVec3(0, -5, 0),
		1.0,
	)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if got != core.Black {
		t.Errorf("Expected no contribution from a light behind the surface, got %v", got)
	}
}

func TestSurface_ShininessSharpensHighlight(t *testing.T) {
	// Off-axis configuration where N·H is strictly between 0 and 1
	point := core.NewVec3(0, 0, 0)
	normal := core.NewVec3(0, 1, 0)
	viewDirection := core.NewVec3(1, -1, 0)
	light := core.NewVec3(0, 10, 0)

	dull := NewSurfaceWithShininess(core.Vec3{}, core.NewVec3(1, 1, 1), 5)
	sharp := NewSurfaceWithShininess(core.Vec3{}, core.NewVec3(1, 1, 1), 100)

	dullColor, err := dull.Shade(point, normal, viewDirection, light, 1)
	if err != nil {
		t.Fatal(err)
	}
	sharpColor, err := sharp.Shade(point, normal, viewDirection, light, 1)
	if err != nil {
		t.Fatal(err)
	}

	if sharpColor.R >= dullColor.R {
		t.Errorf("Expected higher shininess to narrow the highlight: dull=%v sharp=%v", dullColor, sharpColor)
	}
}

func TestSurface_ShadeLightAtPointIsDegenerate(t *testing.T) {
	surface := NewSurface(core.NewVec3(1, 1, 1), core.Vec3{})
	_, err := surface.Shade(core.NewVec3(1, 2, 3), core.NewVec3(0, 1, 0), core.NewVec3(0, -1, 0), core.NewVec3(1, 2, 3), 1)
	if !core.IsDegenerate(err) {
		t.Errorf("Expected degenerate geometry error, got %v", err)
	}
}

func TestSurface_ShadeHalfVectorVanishes(t *testing.T) {
	// Light directly along the incoming ray: L = -V, so H is undefined
	surface := NewSurface(core.NewVec3(0.5, 0.5, 0.5), core.NewVec3(1, 1, 1))
	got, err := surface.Shade(
		core.NewVec3(0, 0, 0),
		core.NewVec3(0, 1, 0),
		core.NewVec3(0, 1, 0),
		core.NewVec3(0, 3, 0),
		1,
	)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	expected := core.NewColor(0.5, 0.5, 0.5)
	if !colorNear(got, expected, 1e-12) {
		t.Errorf("Expected diffuse only %v, got %v", expected, got)
	}
}

func TestSurface_Validate(t *testing.T) {
	tests := []struct {
		name    string
		surface *Surface
		wantErr bool
	}{
		{"valid", NewSurface(core.NewVec3(0.5, 0.5, 0.5), core.NewVec3(0, 0, 0)), false},
		{"diffuse above one", NewSurface(core.NewVec3(1.5, 0, 0), core.Vec3{}), true},
		{"negative specular", NewSurface(core.Vec3{}, core.NewVec3(0, -0.1, 0)), true},
		{"zero shininess", NewSurfaceWithShininess(core.Vec3{}, core.Vec3{}, 0), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.surface.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
