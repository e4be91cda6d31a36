package renderer

import (
	"fmt"
	"image"

	"github.com/df07/go-whitted-raytracer/pkg/core"
)

// DefaultLogger implements core.Logger by writing to stdout
type DefaultLogger struct{}

func (dl *DefaultLogger) Printf(format string, args ...interface{}) {
	fmt.Printf(format, args...)
}

// NewDefaultLogger creates a new default logger
func NewDefaultLogger() core.Logger {
	return &DefaultLogger{}
}

// Scene resolves the color seen along a ray.
// Implementations must be safe for concurrent use.
type Scene interface {
	ComputeColor(ray core.Ray) (core.Color, error)
}

// SamplingConfig contains rendering configuration
type SamplingConfig struct {
	SamplesPerPixel int   `json:"samplesPerPixel"` // Number of jittered rays per pixel
	Seed            int64 `json:"seed"`            // Base seed for per-tile samplers
}

// DefaultSamplingConfig returns sensible default values
func DefaultSamplingConfig() SamplingConfig {
	return SamplingConfig{
		SamplesPerPixel: 100,
		Seed:            42,
	}
}

// Validate checks the sampling configuration
func (sc SamplingConfig) Validate() error {
	if sc.SamplesPerPixel <= 0 {
		return fmt.Errorf("samples per pixel must be positive, got %d", sc.SamplesPerPixel)
	}
	return nil
}

// Raytracer samples pixels of a camera image against a scene.
// It holds no mutable state, so one instance can serve many goroutines.
type Raytracer struct {
	scene  Scene
	camera *Camera
	config SamplingConfig
}

// NewRaytracer creates a new raytracer
func NewRaytracer(scene Scene, camera *Camera, config SamplingConfig) *Raytracer {
	return &Raytracer{
		scene:  scene,
		camera: camera,
		config: config,
	}
}

// Width returns the image width in pixels
func (rt *Raytracer) Width() int {
	return rt.camera.Width()
}

// Height returns the image height in pixels
func (rt *Raytracer) Height() int {
	return rt.camera.Height()
}

// SamplingConfig returns the active sampling configuration
func (rt *Raytracer) SamplingConfig() SamplingConfig {
	return rt.config
}

// RenderPass renders the whole image sequentially with the configured number
// of samples per pixel, drawing all jitter from a single sampler.
func (rt *Raytracer) RenderPass(sampler core.Sampler) (*image.RGBA, RenderStats) {
	bounds := image.Rect(0, 0, rt.Width(), rt.Height())
	pixelStats := newPixelStatsGrid(rt.Width(), rt.Height())

	stats := rt.RenderBounds(bounds, pixelStats, sampler, rt.config.SamplesPerPixel)
	return rt.assembleImage(pixelStats), stats
}

// RenderBounds samples every pixel in bounds until it holds targetSamples samples.
// Pixels are visited row-major so a given sampler stream always produces the
// same image. pixelStats is indexed [row][col] in image coordinates.
func (rt *Raytracer) RenderBounds(bounds image.Rectangle, pixelStats [][]PixelStats, sampler core.Sampler, targetSamples int) RenderStats {
	stats := RenderStats{
		TotalPixels: bounds.Dx() * bounds.Dy(),
		MaxSamples:  targetSamples,
		MinSamples:  targetSamples, // Start with max, will be reduced
	}

	for row := bounds.Min.Y; row < bounds.Max.Y; row++ {
		for col := bounds.Min.X; col < bounds.Max.X; col++ {
			samplesUsed, degenerate := rt.samplePixel(row, col, &pixelStats[row][col], sampler, targetSamples)
			stats.TotalSamples += samplesUsed
			stats.DegenerateRays += degenerate
			stats.MinSamples = min(stats.MinSamples, samplesUsed)
			stats.MaxSamplesUsed = max(stats.MaxSamplesUsed, samplesUsed)
			stats.AverageVariance += pixelStats[row][col].Variance()
		}
	}

	if stats.TotalPixels > 0 {
		stats.AverageSamples = float64(stats.TotalSamples) / float64(stats.TotalPixels)
		stats.AverageVariance /= float64(stats.TotalPixels)
	}
	return stats
}

// samplePixel tops a pixel up to targetSamples jittered samples
func (rt *Raytracer) samplePixel(row, col int, ps *PixelStats, sampler core.Sampler, targetSamples int) (samplesUsed, degenerate int) {
	initialSampleCount := ps.SampleCount

	for ps.SampleCount < targetSamples {
		jr := sampler.Jitter()
		jc := sampler.Jitter()
		ray := rt.camera.GenerateRay(float64(row)+jr, float64(col)+jc)

		// Degenerate rays still contribute the background the scene returned
		color, err := rt.scene.ComputeColor(ray)
		if err != nil {
			degenerate++
		}
		ps.AddSample(color)
	}

	return ps.SampleCount - initialSampleCount, degenerate
}

// assembleImage converts averaged pixel statistics into 8-bit pixels
func (rt *Raytracer) assembleImage(pixelStats [][]PixelStats) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, rt.Width(), rt.Height()))
	for y := range pixelStats {
		for x := range pixelStats[y] {
			img.SetRGBA(x, y, pixelStats[y][x].Color().RGBA())
		}
	}
	return img
}
