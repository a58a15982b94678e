// Package config provides configuration loading and management for the
// TTASR patch sampler. It handles loading configuration from YAML files,
// provides default values matching the DualSR training setup, and
// validates the numeric preconditions the sampler depends on.
package config

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config represents the sampler configuration loaded from YAML
type Config struct {
	// Data parameters control patch geometry and curriculum length
	Data struct {
		// InputCropSize is the side length of the high-resolution (G) patch
		InputCropSize int `yaml:"inputCropSize"`

		// ScaleFactorDownsampler relates the low-resolution branch to the
		// high-resolution branch (e.g. 0.5 for a x2 downsampler).
		// Its reciprocal must be an exact integer.
		ScaleFactorDownsampler float64 `yaml:"scaleFactorDownsampler"`

		// NumIters is the number of training iterations the sequence feeds
		NumIters int `yaml:"numIters"`

		// BatchSize is the number of samples consumed per iteration
		BatchSize int `yaml:"batchSize"`

		// RealImage marks the input as a genuinely captured low-resolution
		// image; synthetic inputs get a 10px border shave to avoid edge
		// artifacts from the synthetic degradation
		RealImage bool `yaml:"realImage"`
	} `yaml:"data"`

	// Paths parameters locate input and output files
	Paths struct {
		// InputImagePath is the path to one specific image file
		// (single-image mode)
		InputImagePath string `yaml:"inputImagePath"`

		// InputDir is the directory of input images (multi-image mode)
		InputDir string `yaml:"inputDir"`

		// OutputDir is where sampled patches and results are written
		OutputDir string `yaml:"outputDir"`

		// GTDir is the directory holding ground-truth images for the
		// benchmark being evaluated
		GTDir string `yaml:"gtDir"`
	} `yaml:"paths"`
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	cfg := &Config{}

	// Defaults mirror the DualSR single-image training setup
	cfg.Data.InputCropSize = 128
	cfg.Data.ScaleFactorDownsampler = 0.5
	cfg.Data.NumIters = 2000
	cfg.Data.BatchSize = 2
	cfg.Data.RealImage = false

	cfg.Paths.InputDir = "test/LR"
	cfg.Paths.OutputDir = "results"

	return cfg
}

// LoadConfig loads configuration from a YAML file
// If the file doesn't exist, it returns the default configuration
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	// Check if config file exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return cfg, nil
	}

	// Read config file
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	// Parse YAML
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	return cfg, nil
}

// SaveConfig saves the configuration to a YAML file
func SaveConfig(cfg *Config, configPath string) error {
	// Create directory if it doesn't exist
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	// Marshal config to YAML
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("error marshaling config: %w", err)
	}

	// Write to file
	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}

	return nil
}

// Validate checks the numeric preconditions the sampler assumes. A
// non-integer reciprocal of the scale factor is rejected outright rather
// than truncated, so a misconfiguration cannot turn into a one-pixel
// misalignment later.
func (c *Config) Validate() error {
	if c.Data.InputCropSize <= 0 {
		return fmt.Errorf("inputCropSize must be positive, got %d", c.Data.InputCropSize)
	}
	if c.Data.NumIters <= 0 {
		return fmt.Errorf("numIters must be positive, got %d", c.Data.NumIters)
	}
	if c.Data.BatchSize <= 0 {
		return fmt.Errorf("batchSize must be positive, got %d", c.Data.BatchSize)
	}

	sf := c.Data.ScaleFactorDownsampler
	if sf <= 0 || sf >= 1 {
		return fmt.Errorf("scaleFactorDownsampler must be in (0, 1), got %g", sf)
	}
	inv := 1.0 / sf
	if math.Abs(inv-math.Round(inv)) > 1e-9 {
		return fmt.Errorf("reciprocal of scaleFactorDownsampler must be an integer, got 1/%g = %g", sf, inv)
	}

	// The D patch size must come out as a whole number of pixels
	d := float64(c.Data.InputCropSize) * sf
	if math.Abs(d-math.Round(d)) > 1e-9 || d < 1 {
		return fmt.Errorf("inputCropSize %d is not divisible by the downscale ratio %d",
			c.Data.InputCropSize, c.InverseScale())
	}

	return nil
}

// InverseScale returns the integer downscale ratio 1/scaleFactorDownsampler.
// Only meaningful after Validate has accepted the configuration.
func (c *Config) InverseScale() int {
	return int(math.Round(1.0 / c.Data.ScaleFactorDownsampler))
}

// DInputSize returns the side length of the low-resolution (D) patch
func (c *Config) DInputSize() int {
	return int(math.Round(float64(c.Data.InputCropSize) * c.Data.ScaleFactorDownsampler))
}

// gtNamingRule maps an input image file name to its ground-truth file name
// for one benchmark directory layout.
type gtNamingRule func(imgName string) string

// gtNamingRules is an explicit table of the benchmark naming conventions.
// Set5 stores low-resolution inputs with a trailing scale token (for
// example babyx2.png next to the ground truth baby.png); the other
// supported benchmarks reuse the input file name unchanged.
var gtNamingRules = map[string]gtNamingRule{
	"Set5": func(name string) string {
		base := strings.TrimSuffix(name, filepath.Ext(name))
		if len(base) > 2 {
			base = base[:len(base)-2]
		}
		return base + ".png"
	},
	"BSD100":   func(name string) string { return name },
	"Urban100": func(name string) string { return name },
	"myRealSR": func(name string) string { return name },
}

// ResolveGTPath resolves the ground-truth image path for the given input
// image file name using the benchmark naming table keyed by the base name
// of the configured ground-truth directory. An unknown benchmark is an
// error rather than a guessed path.
func (c *Config) ResolveGTPath(imgName string) (string, error) {
	if c.Paths.GTDir == "" {
		return "", fmt.Errorf("no ground-truth directory configured")
	}
	benchmark := filepath.Base(c.Paths.GTDir)
	rule, ok := gtNamingRules[benchmark]
	if !ok {
		return "", fmt.Errorf("unknown benchmark %q: no ground-truth naming rule", benchmark)
	}
	return filepath.Join(c.Paths.GTDir, rule(imgName)), nil
}
