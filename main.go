package main

import (
	"context"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"

	"github.com/df07/go-whitted-raytracer/pkg/config"
	"github.com/df07/go-whitted-raytracer/pkg/core"
	"github.com/df07/go-whitted-raytracer/pkg/loaders"
	"github.com/df07/go-whitted-raytracer/pkg/output"
	"github.com/df07/go-whitted-raytracer/pkg/renderer"
	"github.com/df07/go-whitted-raytracer/pkg/scene"
	"github.com/df07/go-whitted-raytracer/web/server"
)

var version = "dev"

func main() {
	if err := fang.Execute(context.Background(), newRootCommand(),
		fang.WithVersion(version),
		fang.WithNotifySignal(os.Interrupt, syscall.SIGTERM),
	); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "raytracer",
		Short: "Whitted-style ray tracer with Blinn-Phong shading and hard shadows",
		Long: "Renders scenes of spheres, planes and triangle meshes lit by point lights.\n" +
			"Scenes are builtin (see 'raytracer scenes') or JSON files.",
		SilenceUsage: true,
	}
	root.PersistentFlags().String("env", ".env", "Environment file with RAYTRACER_* and S3_* settings")
	root.PersistentFlags().String("scenes-dir", "", "Directory of JSON scene files (default \"scenes\")")

	root.AddCommand(newRenderCommand(), newScenesCommand(), newServeCommand())
	return root
}

// loadConfig reads the environment then applies any flags the user set
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	envFile, _ := cmd.Flags().GetString("env")
	cfg, err := config.Load(envFile)
	if err != nil {
		return cfg, err
	}

	flags := cmd.Flags()
	if flags.Changed("scenes-dir") {
		cfg.ScenesDir, _ = flags.GetString("scenes-dir")
	}
	for name, dst := range map[string]*int{
		"width":     &cfg.Width,
		"height":    &cfg.Height,
		"samples":   &cfg.Samples,
		"workers":   &cfg.Workers,
		"passes":    &cfg.Passes,
		"tile-size": &cfg.TileSize,
		"port":      &cfg.Port,
	} {
		if flags.Lookup(name) != nil && flags.Changed(name) {
			*dst, _ = flags.GetInt(name)
		}
	}
	if flags.Lookup("seed") != nil && flags.Changed("seed") {
		seed, _ := flags.GetInt64("seed")
		cfg.Seed = &seed
	}
	if flags.Lookup("thumbnail") != nil && flags.Changed("thumbnail") {
		cfg.Thumbnail, _ = flags.GetUint("thumbnail")
	}
	if flags.Lookup("output-dir") != nil && flags.Changed("output-dir") {
		cfg.OutputDir, _ = flags.GetString("output-dir")
	}

	return cfg, cfg.Validate()
}

// createScene resolves a builtin scene name, a file: scene ID or a JSON path
func createScene(sceneType, scenesDir string, logger core.Logger) (*scene.Scene, error) {
	return loaders.ResolveSceneOrPath(sceneType, scenesDir, logger)
}

func newRenderCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "render [scene]",
		Short: "Render a scene to an image file",
		Long: "Render a builtin scene, a file: scene from the scenes directory, or a JSON scene file.\n" +
			"The output format follows the file extension: .png, .ppm, .bmp or .tif.",
		Example: "  raytracer render sphere -o sphere.ppm\n" +
			"  raytracer render scenes/room.json --samples 200 --thumbnail 128\n" +
			"  raytracer render default --width 800 --height 450 --upload",
		Args: cobra.MaximumNArgs(1),
		RunE: runRender,
	}

	flags := cmd.Flags()
	flags.Int("width", 0, "Image width (overrides the scene)")
	flags.Int("height", 0, "Image height (overrides the scene)")
	flags.Int("samples", 0, "Samples per pixel (overrides the scene)")
	flags.Int64("seed", 0, "Sampler seed (overrides the scene)")
	flags.Int("workers", 0, "Parallel workers (0 = CPU count)")
	flags.Int("passes", 0, "Progressive passes (default 5)")
	flags.Int("tile-size", 0, "Tile size in pixels (default 64)")
	flags.StringP("output", "o", "", "Output file (default output/<scene>/render_<timestamp>.png)")
	flags.String("output-dir", "", "Directory for default output names (default \"output\")")
	flags.Uint("thumbnail", 0, "Also write a thumbnail fitting this many pixels")
	flags.String("background", "", "Background color as hex, e.g. #1a1a2e")
	flags.Bool("upload", false, "Upload the image to the configured S3 bucket")
	return cmd
}

func runRender(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	sceneType := "default"
	if len(args) > 0 {
		sceneType = args[0]
	}
	logger := renderer.NewDefaultLogger()
	selectedScene, err := createScene(sceneType, cfg.ScenesDir, logger)
	if err != nil {
		return err
	}

	if background, _ := cmd.Flags().GetString("background"); background != "" {
		color, err := loaders.ParseColor(background)
		if err != nil {
			return err
		}
		selectedScene.Background = color
	}
	cfg.ApplyTo(selectedScene)
	if err := selectedScene.Validate(); err != nil {
		return err
	}

	camera, err := selectedScene.Camera()
	if err != nil {
		return err
	}

	logger.Printf("Rendering %s (%dx%d, %d samples per pixel, %d primitives, %d lights)\n",
		sceneType, camera.Width(), camera.Height(), selectedScene.SamplingConfig.SamplesPerPixel,
		selectedScene.PrimitiveCount(), len(selectedScene.Lights))

	raytracer, err := renderer.NewProgressiveRaytracer(selectedScene, camera,
		cfg.Progressive(selectedScene.SamplingConfig), logger)
	if err != nil {
		return err
	}

	startTime := time.Now()
	img, stats, err := raytracer.Render(cmd.Context())
	if err != nil {
		return err
	}
	logger.Printf("Render completed in %v\n", time.Since(startTime))
	logger.Printf("Samples per pixel: %.1f (range %d - %d), variance: %.5f, degenerate rays: %d\n",
		stats.AverageSamples, stats.MinSamples, stats.MaxSamplesUsed, stats.AverageVariance, stats.DegenerateRays)

	filename, _ := cmd.Flags().GetString("output")
	if filename == "" {
		filename = defaultOutputPath(cfg.OutputDir, sceneType, time.Now())
	}
	if err := output.Save(filename, img); err != nil {
		return err
	}
	logger.Printf("Render saved as %s\n", filename)
	written := map[string]image.Image{filename: img}

	if cfg.Thumbnail > 0 {
		thumbName := thumbnailPath(filename)
		thumb := output.Thumbnail(img, cfg.Thumbnail)
		if err := output.Save(thumbName, thumb); err != nil {
			return err
		}
		logger.Printf("Thumbnail saved as %s\n", thumbName)
		written[thumbName] = thumb
	}

	if upload, _ := cmd.Flags().GetBool("upload"); upload {
		return uploadImages(cmd.Context(), cfg, written)
	}
	return nil
}

// defaultOutputPath names renders output/<scene>/render_<timestamp>.png
func defaultOutputPath(outputDir, sceneType string, now time.Time) string {
	name := strings.TrimSuffix(filepath.Base(sceneType), filepath.Ext(sceneType))
	name = strings.TrimPrefix(name, scene.FileScenePrefix)
	return filepath.Join(outputDir, name, fmt.Sprintf("render_%s.png", now.Format("20060102_150405")))
}

// thumbnailPath inserts "_thumb" before the extension
func thumbnailPath(filename string) string {
	ext := filepath.Ext(filename)
	return strings.TrimSuffix(filename, ext) + "_thumb" + ext
}

func uploadImages(ctx context.Context, cfg config.Config, images map[string]image.Image) error {
	if !cfg.UploadEnabled() {
		return fmt.Errorf("upload requested but S3_BUCKET is not set")
	}
	uploader, err := output.NewS3Uploader(cfg.S3)
	if err != nil {
		return err
	}
	for filename, img := range images {
		format, err := output.FormatFromPath(filename)
		if err != nil {
			return err
		}
		location, err := uploader.UploadImage(ctx, filepath.Base(filename), img, format)
		if err != nil {
			return err
		}
		fmt.Printf("Uploaded %s\n", location)
	}
	return nil
}

func newScenesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "scenes",
		Short: "List builtin scenes and scene files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			response, err := scene.ListAllScenes(cfg.ScenesDir)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, group := range response.Groups {
				fmt.Fprintf(out, "%s:\n", group.Name)
				for _, info := range group.Scenes {
					fmt.Fprintf(out, "  %-24s %s\n", info.ID, info.Description)
				}
			}
			return nil
		},
	}
}

func newServeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the web server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			fmt.Printf("Visit http://localhost:%d/api/scenes to list scenes\n", cfg.Port)
			return server.NewServer(cfg).Start(cmd.Context())
		},
	}
	cmd.Flags().Int("port", 0, "Port to serve on (default 8080)")
	cmd.Flags().Int("workers", 0, "Parallel workers per render (0 = CPU count)")
	cmd.Flags().Int("passes", 0, "Default progressive passes (default 5)")
	return cmd
}
