// Package config loads scalargrad CLI settings.
package config

import (
	"bytes"
	"fmt"
	"os"

	"github.com/goccy/go-yaml"

	"github.com/born-ml/scalargrad/internal/gradcheck"
)

// Optimizers.
const (
	OptimizerSGD  = "sgd"
	OptimizerAdam = "adam"
)

// Output formats.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// Config holds CLI settings. Zero fields in a file keep their defaults.
type Config struct {
	Output       string  `yaml:"output"`        // text, json or yaml
	Epsilon      float64 `yaml:"epsilon"`       // finite-difference step for check
	Tolerance    float64 `yaml:"tolerance"`     // relative tolerance for check
	Workers      int     `yaml:"workers"`       // 0 = one per CPU
	Precision    int     `yaml:"precision"`     // digits shown in graphs
	GraphvizPath string  `yaml:"graphviz_path"` // dot binary; $PATH lookup if empty
	Verbose      bool    `yaml:"verbose"`

	Optimizer    string  `yaml:"optimizer"`     // sgd or adam
	LearningRate float64 `yaml:"learning_rate"` // step size for minimize
	Momentum     float64 `yaml:"momentum"`      // sgd only
	Steps        int     `yaml:"steps"`         // step budget for minimize
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Output:    FormatText,
		Epsilon:   gradcheck.DefaultEpsilon,
		Tolerance: gradcheck.DefaultTolerance,
		Precision: 4,

		Optimizer:    OptimizerAdam,
		LearningRate: 0.05,
		Steps:        1000,
	}
}

// Load reads a YAML file over the defaults. Unknown keys are rejected.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path) // #nosec G304 - path is user-supplied by design
	if err != nil {
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data), yaml.DisallowUnknownField())
	if err := dec.Decode(&cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks value ranges.
func (c Config) Validate() error {
	switch c.Output {
	case FormatText, FormatJSON, FormatYAML:
	default:
		return fmt.Errorf("output must be text, json or yaml, got %q", c.Output)
	}
	if c.Epsilon <= 0 {
		return fmt.Errorf("epsilon must be positive, got %g", c.Epsilon)
	}
	if c.Tolerance <= 0 {
		return fmt.Errorf("tolerance must be positive, got %g", c.Tolerance)
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers must not be negative, got %d", c.Workers)
	}
	if c.Precision <= 0 || c.Precision > 17 {
		return fmt.Errorf("precision must be in [1, 17], got %d", c.Precision)
	}
	switch c.Optimizer {
	case OptimizerSGD, OptimizerAdam:
	default:
		return fmt.Errorf("optimizer must be sgd or adam, got %q", c.Optimizer)
	}
	if c.LearningRate <= 0 {
		return fmt.Errorf("learning_rate must be positive, got %g", c.LearningRate)
	}
	if c.Momentum < 0 || c.Momentum >= 1 {
		return fmt.Errorf("momentum must be in [0, 1), got %g", c.Momentum)
	}
	if c.Steps <= 0 {
		return fmt.Errorf("steps must be positive, got %d", c.Steps)
	}
	return nil
}
