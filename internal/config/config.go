// Package config loads audit configuration from YAML.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds all audit settings.
type Config struct {
	Storage  StorageConfig  `yaml:"storage"`
	Detector DetectorConfig `yaml:"detector"`
	Output   OutputConfig   `yaml:"output"`
}

// StorageConfig selects the backing stores. Empty DSNs select the in-memory
// stores hydrated from fixtures.
type StorageConfig struct {
	PostgresDSN   string `yaml:"postgres_dsn"`
	ClickhouseDSN string `yaml:"clickhouse_dsn"`
	FixturesDir   string `yaml:"fixtures_dir"`
}

// DetectorConfig holds duplicate-detection tolerances.
type DetectorConfig struct {
	MetricTolerance     float64 `yaml:"metric_tolerance"`
	SimilarityThreshold float64 `yaml:"similarity_threshold"`
	KeepDuplicates      bool    `yaml:"keep_duplicates"`
}

// OutputConfig controls where rendered reports go.
type OutputConfig struct {
	Dir string `yaml:"dir"`
}

// Default returns the standard configuration.
func Default() Config {
	return Config{
		Detector: DetectorConfig{
			MetricTolerance:     1e-8,
			SimilarityThreshold: 0.95,
		},
		Output: OutputConfig{
			Dir: "docs",
		},
	}
}

// Load reads a YAML config file over the defaults.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks ranges that would otherwise only fail at detector
// construction.
func (c Config) Validate() error {
	if c.Detector.MetricTolerance < 0 {
		return fmt.Errorf("detector.metric_tolerance %v must be >= 0", c.Detector.MetricTolerance)
	}
	if c.Detector.SimilarityThreshold < 0 || c.Detector.SimilarityThreshold > 1 {
		return fmt.Errorf("detector.similarity_threshold %v must be in [0,1]", c.Detector.SimilarityThreshold)
	}
	if c.Output.Dir == "" {
		return fmt.Errorf("output.dir must not be empty")
	}
	return nil
}
