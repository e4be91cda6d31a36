package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/df07/go-whitted-raytracer/pkg/output"
	"github.com/df07/go-whitted-raytracer/pkg/renderer"
	"github.com/df07/go-whitted-raytracer/pkg/scene"
)

// Config holds settings shared by the render and serve commands.
// Zero values for Width, Height and Samples and a nil Seed keep the scene's own values.
type Config struct {
	Width     int
	Height    int
	Samples   int
	Seed      *int64
	Workers   int // 0 = use CPU count
	TileSize  int
	Passes    int
	OutputDir string
	Thumbnail uint // Longest thumbnail edge; 0 disables thumbnails
	Port      int
	ScenesDir string
	S3        output.S3Config
}

// Default returns the built-in settings
func Default() Config {
	progressive := renderer.DefaultProgressiveConfig()
	return Config{
		TileSize:  progressive.TileSize,
		Passes:    progressive.MaxPasses,
		OutputDir: "output",
		Port:      8080,
		ScenesDir: "scenes",
	}
}

// Load returns the defaults overridden by envFile (when present) and then by
// RAYTRACER_* and S3_* environment variables. Variables already set in the
// environment take precedence over the file. A missing envFile is not an
// error; an unreadable or malformed one is.
func Load(envFile string) (Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Default(), fmt.Errorf("failed to load %s: %w", envFile, err)
		}
	}

	cfg := Default()
	var errs []error
	intVar := func(key string, dst *int) {
		if value, ok := os.LookupEnv(key); ok && value != "" {
			parsed, err := strconv.Atoi(value)
			if err != nil {
				errs = append(errs, fmt.Errorf("invalid %s: %q", key, value))
				return
			}
			*dst = parsed
		}
	}
	stringVar := func(key string, dst *string) {
		if value, ok := os.LookupEnv(key); ok && value != "" {
			*dst = value
		}
	}

	intVar("RAYTRACER_WIDTH", &cfg.Width)
	intVar("RAYTRACER_HEIGHT", &cfg.Height)
	intVar("RAYTRACER_SAMPLES", &cfg.Samples)
	intVar("RAYTRACER_WORKERS", &cfg.Workers)
	intVar("RAYTRACER_TILE_SIZE", &cfg.TileSize)
	intVar("RAYTRACER_PASSES", &cfg.Passes)
	intVar("RAYTRACER_PORT", &cfg.Port)
	stringVar("RAYTRACER_OUTPUT_DIR", &cfg.OutputDir)
	stringVar("RAYTRACER_SCENES_DIR", &cfg.ScenesDir)

	if value, ok := os.LookupEnv("RAYTRACER_SEED"); ok && value != "" {
		seed, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			errs = append(errs, fmt.Errorf("invalid RAYTRACER_SEED: %q", value))
		} else {
			cfg.Seed = &seed
		}
	}
	if value, ok := os.LookupEnv("RAYTRACER_THUMBNAIL"); ok && value != "" {
		size, err := strconv.ParseUint(value, 10, 32)
		if err != nil {
			errs = append(errs, fmt.Errorf("invalid RAYTRACER_THUMBNAIL: %q", value))
		} else {
			cfg.Thumbnail = uint(size)
		}
	}

	stringVar("S3_BUCKET", &cfg.S3.Bucket)
	stringVar("S3_PREFIX", &cfg.S3.Prefix)
	stringVar("S3_REGION", &cfg.S3.Region)
	stringVar("S3_ENDPOINT", &cfg.S3.Endpoint)
	stringVar("S3_ACCESS_KEY", &cfg.S3.AccessKey)
	stringVar("S3_SECRET_KEY", &cfg.S3.SecretKey)
	stringVar("S3_ACL", &cfg.S3.ACL)

	if err := errors.Join(errs...); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks the settings
func (c Config) Validate() error {
	var errs []error
	if c.Width < 0 || c.Height < 0 {
		errs = append(errs, fmt.Errorf("width and height must not be negative, got %dx%d", c.Width, c.Height))
	}
	if (c.Width == 0) != (c.Height == 0) {
		errs = append(errs, errors.New("width and height must be set together"))
	}
	if c.Samples < 0 {
		errs = append(errs, fmt.Errorf("samples must not be negative, got %d", c.Samples))
	}
	if c.Workers < 0 {
		errs = append(errs, fmt.Errorf("workers must not be negative, got %d", c.Workers))
	}
	if c.TileSize <= 0 {
		errs = append(errs, fmt.Errorf("tile size must be positive, got %d", c.TileSize))
	}
	if c.Passes <= 0 {
		errs = append(errs, fmt.Errorf("passes must be positive, got %d", c.Passes))
	}
	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("port must be between 1 and 65535, got %d", c.Port))
	}
	return errors.Join(errs...)
}

// UploadEnabled reports whether an S3 bucket is configured
func (c Config) UploadEnabled() bool {
	return c.S3.Bucket != ""
}

// ApplyTo overrides the scene's resolution and sampling with any settings that were given
func (c Config) ApplyTo(s *scene.Scene) {
	if c.Width > 0 && c.Height > 0 {
		s.SetResolution(c.Width, c.Height)
	}
	if c.Samples > 0 {
		s.SamplingConfig.SamplesPerPixel = c.Samples
	}
	if c.Seed != nil {
		s.SamplingConfig.Seed = *c.Seed
	}
}

// Progressive returns the progressive renderer settings for a scene's sampling
func (c Config) Progressive(sampling renderer.SamplingConfig) renderer.ProgressiveConfig {
	progressive := renderer.DefaultProgressiveConfig()
	progressive.TileSize = c.TileSize
	progressive.MaxPasses = c.Passes
	progressive.NumWorkers = c.Workers
	progressive.MaxSamplesPerPixel = sampling.SamplesPerPixel
	progressive.Seed = sampling.Seed
	return progressive
}
