package renderer

import (
	"fmt"
	"image"
	"testing"

	"github.com/df07/go-whitted-raytracer/pkg/core"
)

func TestRaytracer_BackgroundOnlyScene(t *testing.T) {
	background := core.NewColor(0.25, 0.5, 0.75)
	scene := sceneFunc(func(core.Ray) (core.Color, error) { return background, nil })

	rt := NewRaytracer(scene, newTestCamera(t, 8, 6), SamplingConfig{SamplesPerPixel: 4})
	img, stats := rt.RenderPass(core.NewSeededSampler(1))

	expected := background.RGBA()
	for y := 0; y < 6; y++ {
		for x := 0; x < 8; x++ {
			if got := img.RGBAAt(x, y); got != expected {
				t.Fatalf("Pixel (%d,%d): expected %v, got %v", x, y, expected, got)
			}
		}
	}
	if stats.TotalPixels != 48 || stats.TotalSamples != 192 || stats.DegenerateRays != 0 {
		t.Errorf("Unexpected stats: %+v", stats)
	}
}

func TestRaytracer_DegenerateRaysAreCounted(t *testing.T) {
	scene := sceneFunc(func(core.Ray) (core.Color, error) {
		return core.Black, fmt.Errorf("test: %w", core.ErrDegenerateGeometry)
	})

	rt := NewRaytracer(scene, newTestCamera(t, 4, 4), SamplingConfig{SamplesPerPixel: 2})
	_, stats := rt.RenderPass(core.CenterSampler{})

	if stats.DegenerateRays != 32 {
		t.Errorf("Expected 32 degenerate rays, got %d", stats.DegenerateRays)
	}
}

func TestRaytracer_PixelMapping(t *testing.T) {
	// Bright only in the top-left quadrant of the image
	scene := sceneFunc(func(ray core.Ray) (core.Color, error) {
		if ray.Direction.X < 0 && ray.Direction.Y > 0 {
			return core.NewColor(1, 1, 1), nil
		}
		return core.Black, nil
	})

	rt := NewRaytracer(scene, newTestCamera(t, 4, 4), SamplingConfig{SamplesPerPixel: 1})
	img, _ := rt.RenderPass(core.CenterSampler{})

	if img.RGBAAt(0, 0).R != 255 {
		t.Errorf("Expected top-left pixel lit, got %v", img.RGBAAt(0, 0))
	}
	if img.RGBAAt(3, 3).R != 0 || img.RGBAAt(3, 0).R != 0 || img.RGBAAt(0, 3).R != 0 {
		t.Error("Expected pixels outside the top-left quadrant to be dark")
	}
}

func TestRaytracer_RenderBoundsTopsUpSamples(t *testing.T) {
	rt := NewRaytracer(newSphereScene(t), newTestCamera(t, 4, 4), DefaultSamplingConfig())
	pixelStats := newPixelStatsGrid(4, 4)
	bounds := image.Rect(1, 1, 3, 3)

	first := rt.RenderBounds(bounds, pixelStats, core.NewSeededSampler(3), 2)
	second := rt.RenderBounds(bounds, pixelStats, core.NewSeededSampler(3), 5)

	if first.TotalSamples != 8 || second.TotalSamples != 12 {
		t.Errorf("Expected 8 then 12 new samples, got %d then %d", first.TotalSamples, second.TotalSamples)
	}
	if pixelStats[0][0].SampleCount != 0 {
		t.Error("Pixel outside bounds was sampled")
	}
	if pixelStats[2][2].SampleCount != 5 {
		t.Errorf("Expected 5 samples in bounds, got %d", pixelStats[2][2].SampleCount)
	}
}

func TestRaytracer_VarianceFallsWithMoreSamples(t *testing.T) {
	// One pixel split down the middle: half of the jittered rays see white
	scene := sceneFunc(func(ray core.Ray) (core.Color, error) {
		if ray.Direction.X > 0 {
			return core.NewColor(1, 1, 1), nil
		}
		return core.Black, nil
	})
	camera := newTestCamera(t, 1, 1)

	pixelVariance := func(samples int) float64 {
		rt := NewRaytracer(scene, camera, SamplingConfig{SamplesPerPixel: samples})
		var sum, sumSq float64
		const trials = 200
		for seed := int64(0); seed < trials; seed++ {
			img, _ := rt.RenderPass(core.NewSeededSampler(seed))
			value := float64(img.RGBAAt(0, 0).R) / 255
			sum += value
			sumSq += value * value
		}
		mean := sum / trials
		return sumSq/trials - mean*mean
	}

	few := pixelVariance(4)
	many := pixelVariance(100)
	if many >= few {
		t.Errorf("Expected variance to fall with more samples: 4 samples=%g, 100 samples=%g", few, many)
	}
}

func TestRaytracer_AverageVariance(t *testing.T) {
	camera := newTestCamera(t, 1, 1)
	flat := sceneFunc(func(ray core.Ray) (core.Color, error) {
		return core.NewColor(0.3, 0.3, 0.3), nil
	})
	edge := sceneFunc(func(ray core.Ray) (core.Color, error) {
		if ray.Direction.X > 0 {
			return core.NewColor(1, 1, 1), nil
		}
		return core.Black, nil
	})

	_, stats := NewRaytracer(flat, camera, SamplingConfig{SamplesPerPixel: 16}).RenderPass(core.NewSeededSampler(1))
	if stats.AverageVariance > 1e-12 {
		t.Errorf("Expected zero variance for a flat color, got %g", stats.AverageVariance)
	}

	_, stats = NewRaytracer(edge, camera, SamplingConfig{SamplesPerPixel: 100}).RenderPass(core.NewSeededSampler(1))
	if stats.AverageVariance <= 0 {
		t.Errorf("Expected positive variance across an edge, got %g", stats.AverageVariance)
	}
}

func TestPixelStats(t *testing.T) {
	var ps PixelStats
	if ps.Color() != core.Black || ps.Variance() != 0 {
		t.Error("Empty pixel stats should be black with zero variance")
	}

	ps.AddSample(core.NewColor(1, 1, 1))
	ps.AddSample(core.Black)

	if got := ps.Color(); got != core.NewColor(0.5, 0.5, 0.5) {
		t.Errorf("Expected average 0.5 gray, got %v", got)
	}
	if ps.Variance() <= 0 {
		t.Errorf("Expected positive variance, got %f", ps.Variance())
	}
}

func TestSamplingConfig_Validate(t *testing.T) {
	if err := DefaultSamplingConfig().Validate(); err != nil {
		t.Errorf("Default config should be valid: %v", err)
	}
	if err := (SamplingConfig{SamplesPerPixel: 0}).Validate(); err == nil {
		t.Error("Expected error for zero samples")
	}
}
