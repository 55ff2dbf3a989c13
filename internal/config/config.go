package config

import (
	_ "embed"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"
)

//go:embed tuning.yaml
var tuningYAML []byte

type Config struct {
	DataDir string
	Vision  VisionConfig
	Scan    ScanConfig
	Web     WebConfig
	Tuning  Tuning
}

type VisionConfig struct {
	URL string // vision sidecar base URL, defaults to http://localhost:8000
}

type ScanConfig struct {
	Workers int // worker pool size, 0 = auto (min(4, cpu/2))
}

type WebConfig struct {
	Host string
	Port int
}

// Tuning holds the algorithm tunables shipped with the binary.
// Values live in the embedded tuning.yaml so they stay in one place.
type Tuning struct {
	Match struct {
		MaxDistance  float64 `yaml:"max_distance"`
		MinFaceRatio float64 `yaml:"min_face_ratio"`
	} `yaml:"match"`
	Scan struct {
		IntervalSec   float64 `yaml:"interval_sec"`
		EdgeMarginSec float64 `yaml:"edge_margin_sec"`
	} `yaml:"scan"`
	Story struct {
		ActBoundaries    []float64 `yaml:"act_boundaries"`
		ActQuotas        []int     `yaml:"act_quotas"`
		PoolFactor       int       `yaml:"pool_factor"`
		Jitter           float64   `yaml:"jitter"`
		MinSeparationSec float64   `yaml:"min_separation_sec"`
	} `yaml:"story"`
}

// StorePath returns the location of the scan result store.
func (c *Config) StorePath() string {
	return filepath.Join(c.DataDir, "scan_results.json")
}

// FacesPath returns the location of the registered face references.
func (c *Config) FacesPath() string {
	return filepath.Join(c.DataDir, "faces.json")
}

// ProfileDir returns the directory holding profile icons.
func (c *Config) ProfileDir() string {
	return filepath.Join(c.DataDir, "profiles")
}

// ThumbnailDir returns the directory holding event thumbnails.
func (c *Config) ThumbnailDir() string {
	return filepath.Join(c.DataDir, "thumbnails")
}

// envInt reads an environment variable and parses it as a positive integer.
// Returns the default value if the env var is unset, empty, or invalid.
func envInt(key string, defaultVal int) int {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if n, err := strconv.Atoi(s); err == nil && n > 0 {
		return n
	}
	return defaultVal
}

func defaultDataDir() string {
	if dir := os.Getenv("FACEREEL_DATA_DIR"); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".facereel"
	}
	return filepath.Join(home, ".facereel")
}

func Load() *Config {
	var tuning Tuning
	if err := yaml.Unmarshal(tuningYAML, &tuning); err != nil {
		// This is an embedded file so this error should never happen in practice
		panic("failed to unmarshal embedded tuning.yaml: " + err.Error())
	}

	visionURL := os.Getenv("FACEREEL_VISION_URL")
	if visionURL == "" {
		visionURL = "http://localhost:8000"
	}

	host := os.Getenv("FACEREEL_WEB_HOST")
	if host == "" {
		host = "0.0.0.0"
	}

	return &Config{
		DataDir: defaultDataDir(),
		Vision: VisionConfig{
			URL: visionURL,
		},
		Scan: ScanConfig{
			Workers: envInt("FACEREEL_SCAN_WORKERS", 0),
		},
		Web: WebConfig{
			Host: host,
			Port: envInt("FACEREEL_WEB_PORT", 8080),
		},
		Tuning: tuning,
	}
}
