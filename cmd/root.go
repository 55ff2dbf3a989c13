package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"facereel/internal/config"
	"facereel/internal/enrich"
	"facereel/internal/identity"
	"facereel/internal/logging"
	"facereel/internal/media"
	"facereel/internal/scan"
	"facereel/internal/store"
)

var logLevel string

var rootCmd = &cobra.Command{
	Use:   "facereel",
	Short: "Scan home videos for registered people and build highlight reels",
	Long: `Facereel scans a personal video library for pre-registered people using
face matching, records every confirmed appearance, and turns one person's
timeline into a short four-act highlight reel playlist.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
}

func initConfig() {
	// .env file is optional, don't fail if not found
	_ = godotenv.Load()
}

// runtime bundles the collaborators shared by the subcommands.
type runtime struct {
	cfg      *config.Config
	logger   *slog.Logger
	store    *store.Store
	registry *identity.Registry
	vision   *media.VisionClient
	frames   *media.FFmpegSource
	enricher *enrich.Service
}

func newRuntime() (*runtime, error) {
	cfg := config.Load()
	logger := logging.NewLogger(logLevel)

	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory %s: %w", cfg.DataDir, err)
	}

	registry, err := identity.LoadRegistry(cfg.FacesPath())
	if err != nil {
		return nil, err
	}

	vision := media.NewVisionClient(cfg.Vision.URL)
	frames := media.NewFFmpegSource(
		envOr("FACEREEL_FFMPEG", "ffmpeg"),
		envOr("FACEREEL_FFPROBE", "ffprobe"),
	)

	return &runtime{
		cfg:      cfg,
		logger:   logger,
		store:    store.Load(cfg.StorePath(), logger),
		registry: registry,
		vision:   vision,
		frames:   frames,
		enricher: enrich.NewService(frames, vision, cfg.ThumbnailDir(), logger),
	}, nil
}

// orchestrator builds the scan pipeline on top of the shared runtime. A zero
// worker count sizes the pool automatically.
func (rt *runtime) orchestrator(workers int) *scan.Orchestrator {
	matcher := identity.NewMatcher(rt.registry,
		rt.cfg.Tuning.Match.MaxDistance, rt.cfg.Tuning.Match.MinFaceRatio)
	analyzer := scan.NewAnalyzer(rt.frames, rt.vision, matcher, rt.enricher,
		rt.cfg.Tuning.Scan.IntervalSec, rt.cfg.Tuning.Scan.EdgeMarginSec, rt.logger)
	if workers == 0 {
		workers = rt.cfg.Scan.Workers
	}
	return scan.NewOrchestrator(analyzer, rt.store, workers, rt.logger)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
