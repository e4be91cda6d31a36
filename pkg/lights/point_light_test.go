package lights

import (
	"math"
	"testing"

	"github.com/df07/go-whitted-raytracer/pkg/core"
)

func TestPointLight_ShadowRay(t *testing.T) {
	light := NewPointLight(core.NewVec3(0, 10, 0), 1)
	ray, err := light.ShadowRay(core.NewVec3(0, 0, 0), 1e-3)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if ray.Direction != core.NewVec3(0, 1, 0) {
		t.Errorf("Expected unit direction toward light, got %v", ray.Direction)
	}
	if math.Abs(ray.Origin.Y-1e-3) > 1e-15 || ray.Origin.X != 0 || ray.Origin.Z != 0 {
		t.Errorf("Expected origin offset by bias along direction, got %v", ray.Origin)
	}
}

func TestPointLight_ShadowRayFromLightPosition(t *testing.T) {
	light := NewPointLight(core.NewVec3(1, 1, 1), 1)
	if _, err := light.ShadowRay(core.NewVec3(1, 1, 1), 1e-3); !core.IsDegenerate(err) {
		t.Errorf("Expected degenerate error, got %v", err)
	}
}

func TestPointLight_Validate(t *testing.T) {
	tests := []struct {
		name    string
		light   PointLight
		wantErr bool
	}{
		{"valid", NewPointLight(core.NewVec3(0, 1, 0), 1), false},
		{"zero intensity", NewPointLight(core.NewVec3(0, 1, 0), 0), false},
		{"negative intensity", NewPointLight(core.NewVec3(0, 1, 0), -1), true},
		{"nan position", NewPointLight(core.NewVec3(math.NaN(), 0, 0), 1), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.light.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
