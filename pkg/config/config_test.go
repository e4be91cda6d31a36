package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/df07/go-whitted-raytracer/pkg/renderer"
	"github.com/df07/go-whitted-raytracer/pkg/scene"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Default config should validate: %v", err)
	}
	if cfg.TileSize != 64 || cfg.Passes != 5 || cfg.Port != 8080 {
		t.Errorf("Unexpected defaults %+v", cfg)
	}
	if cfg.UploadEnabled() {
		t.Error("Upload should be disabled by default")
	}
}

func TestLoad_Environment(t *testing.T) {
	t.Setenv("RAYTRACER_WIDTH", "320")
	t.Setenv("RAYTRACER_HEIGHT", "240")
	t.Setenv("RAYTRACER_SAMPLES", "16")
	t.Setenv("RAYTRACER_SEED", "99")
	t.Setenv("RAYTRACER_WORKERS", "3")
	t.Setenv("RAYTRACER_THUMBNAIL", "128")
	t.Setenv("RAYTRACER_OUTPUT_DIR", "renders")
	t.Setenv("S3_BUCKET", "images")
	t.Setenv("S3_REGION", "eu-west-1")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Width != 320 || cfg.Height != 240 || cfg.Samples != 16 || cfg.Seed == nil || *cfg.Seed != 99 || cfg.Workers != 3 {
		t.Errorf("Environment not applied: %+v", cfg)
	}
	if cfg.Thumbnail != 128 || cfg.OutputDir != "renders" {
		t.Errorf("Environment not applied: %+v", cfg)
	}
	if !cfg.UploadEnabled() || cfg.S3.Region != "eu-west-1" {
		t.Errorf("S3 settings not applied: %+v", cfg.S3)
	}
}

func TestLoad_EnvFile(t *testing.T) {
	t.Setenv("RAYTRACER_PORT", "")
	t.Setenv("S3_BUCKET", "")
	// t.Setenv restores these after the test; the file sets them for Load
	os.Unsetenv("RAYTRACER_PORT")
	os.Unsetenv("S3_BUCKET")

	envFile := filepath.Join(t.TempDir(), ".env")
	content := "RAYTRACER_PORT=9090\nS3_BUCKET=from-file\n"
	if err := os.WriteFile(envFile, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(envFile)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != 9090 || cfg.S3.Bucket != "from-file" {
		t.Errorf("Env file not applied: port=%d bucket=%q", cfg.Port, cfg.S3.Bucket)
	}
}

func TestLoad_MissingEnvFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.env")); err != nil {
		t.Errorf("Missing env file should be ignored, got %v", err)
	}
}

func TestLoad_MalformedEnvFile(t *testing.T) {
	envFile := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(envFile, []byte("RAYTRACER-PORT=9090\n"), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := Load(envFile)
	if err == nil {
		t.Fatal("Expected error for malformed env file")
	}
	if !strings.Contains(err.Error(), envFile) {
		t.Errorf("Expected error to name the file, got %q", err.Error())
	}
}

func TestLoad_SeedZero(t *testing.T) {
	t.Setenv("RAYTRACER_SEED", "0")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Seed == nil || *cfg.Seed != 0 {
		t.Fatalf("Expected explicit seed 0, got %v", cfg.Seed)
	}

	s, err := scene.NewSphereScene()
	if err != nil {
		t.Fatal(err)
	}
	if s.SamplingConfig.Seed == 0 {
		t.Fatal("Sphere scene should start with a non-zero seed")
	}
	cfg.ApplyTo(s)
	if s.SamplingConfig.Seed != 0 {
		t.Errorf("Expected seed 0 applied, got %d", s.SamplingConfig.Seed)
	}
}

func TestLoad_InvalidValues(t *testing.T) {
	t.Setenv("RAYTRACER_WIDTH", "wide")
	t.Setenv("RAYTRACER_SEED", "1.5")

	_, err := Load("")
	if err == nil {
		t.Fatal("Expected error for invalid values")
	}
	for _, key := range []string{"RAYTRACER_WIDTH", "RAYTRACER_SEED"} {
		if !strings.Contains(err.Error(), key) {
			t.Errorf("Expected error to mention %s, got %q", key, err.Error())
		}
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr bool
	}{
		{"valid", func(c *Config) {}, false},
		{"size override", func(c *Config) { c.Width, c.Height = 100, 50 }, false},
		{"width only", func(c *Config) { c.Width = 100 }, true},
		{"negative size", func(c *Config) { c.Width, c.Height = -1, -1 }, true},
		{"negative samples", func(c *Config) { c.Samples = -1 }, true},
		{"negative workers", func(c *Config) { c.Workers = -2 }, true},
		{"zero tile size", func(c *Config) { c.TileSize = 0 }, true},
		{"zero passes", func(c *Config) { c.Passes = 0 }, true},
		{"bad port", func(c *Config) { c.Port = 70000 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(&cfg)
			if err := cfg.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfig_ApplyTo(t *testing.T) {
	s, err := scene.NewSphereScene()
	if err != nil {
		t.Fatal(err)
	}
	original := s.SamplingConfig

	// Zero values keep the scene's settings
	Default().ApplyTo(s)
	if s.SamplingConfig != original || s.CameraConfig.ScreenWidth != 100 {
		t.Errorf("Defaults should not change the scene: %+v", s.SamplingConfig)
	}

	cfg := Default()
	cfg.Width, cfg.Height = 40, 20
	cfg.Samples = 4
	seed := int64(7)
	cfg.Seed = &seed
	cfg.ApplyTo(s)
	if s.CameraConfig.ScreenWidth != 40 || s.CameraConfig.ScreenHeight != 20 {
		t.Errorf("Resolution not applied: %+v", s.CameraConfig)
	}
	if s.SamplingConfig.SamplesPerPixel != 4 || s.SamplingConfig.Seed != 7 {
		t.Errorf("Sampling not applied: %+v", s.SamplingConfig)
	}
}

func TestConfig_Progressive(t *testing.T) {
	cfg := Default()
	cfg.Workers = 2
	cfg.Passes = 3

	progressive := cfg.Progressive(renderer.SamplingConfig{SamplesPerPixel: 25, Seed: 5})
	if progressive.MaxSamplesPerPixel != 25 || progressive.Seed != 5 {
		t.Errorf("Sampling not carried over: %+v", progressive)
	}
	if progressive.NumWorkers != 2 || progressive.MaxPasses != 3 || progressive.TileSize != 64 {
		t.Errorf("Config not carried over: %+v", progressive)
	}
	if err := progressive.Validate(); err != nil {
		t.Errorf("Progressive config should validate: %v", err)
	}
}
