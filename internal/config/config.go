// Package config loads optimization-run presets from YAML files.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Run describes one optimization run.
type Run struct {
	// Objective names a benchmark function from the objective registry.
	Objective string `yaml:"objective"`

	// Dimension is the search-space dimension.
	Dimension int `yaml:"dimension"`

	// Sigma is the initial step size.
	Sigma float64 `yaml:"sigma"`

	// Lambda is the population size; 0 picks the default.
	Lambda int `yaml:"lambda"`

	// MaxIter caps the iterations; 0 means unbounded.
	MaxIter int `yaml:"maxIter"`

	// MaxEvals caps the objective evaluations; 0 means unlimited.
	MaxEvals int `yaml:"maxEvals"`

	// Seed fixes the sample stream.
	Seed int64 `yaml:"seed"`

	// VerbDisp prints a status row every N iterations; 0 is silent.
	VerbDisp int `yaml:"verbDisp"`

	// CheckpointEvery saves a checkpoint every N iterations; 0 disables.
	CheckpointEvery int `yaml:"checkpointEvery"`
}

// Config is a named collection of run presets.
type Config struct {
	Presets map[string]Run `yaml:"presets"`
}

// DefaultRun returns the run settings used when nothing else is specified.
func DefaultRun() Run {
	return Run{
		Objective: "sphere",
		Dimension: 10,
		Sigma:     0.5,
		MaxIter:   1000,
		Seed:      42,
	}
}

// Load reads a config file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	return &cfg, nil
}

// Preset returns the named run preset.
func (c *Config) Preset(name string) (Run, error) {
	run, ok := c.Presets[name]
	if !ok {
		return Run{}, fmt.Errorf("unknown preset %q", name)
	}
	return run, nil
}

// Validate checks a run for usable values.
func (r Run) Validate() error {
	if r.Objective == "" {
		return fmt.Errorf("objective cannot be empty")
	}
	if r.Dimension <= 0 {
		return fmt.Errorf("dimension must be positive, got %d", r.Dimension)
	}
	if r.Sigma <= 0 {
		return fmt.Errorf("sigma must be positive, got %g", r.Sigma)
	}
	if r.Lambda < 0 || r.MaxIter < 0 || r.MaxEvals < 0 {
		return fmt.Errorf("lambda, maxIter and maxEvals cannot be negative")
	}
	return nil
}
