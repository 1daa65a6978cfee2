package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scalargrad.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, FormatText, cfg.Output)
	assert.Equal(t, 1e-6, cfg.Epsilon)
	assert.Equal(t, 1e-4, cfg.Tolerance)
}

func TestLoad_OverridesDefaults(t *testing.T) {
	path := writeFile(t, `
output: json
tolerance: 0.001
workers: 2
optimizer: sgd
momentum: 0.9
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, FormatJSON, cfg.Output)
	assert.Equal(t, 0.001, cfg.Tolerance)
	assert.Equal(t, 2, cfg.Workers)
	assert.Equal(t, 1e-6, cfg.Epsilon, "unset keys keep defaults")
	assert.Equal(t, 4, cfg.Precision)
	assert.Equal(t, OptimizerSGD, cfg.Optimizer)
	assert.Equal(t, 0.9, cfg.Momentum)
	assert.Equal(t, 1000, cfg.Steps)
}

func TestLoad_UnknownKey(t *testing.T) {
	path := writeFile(t, "outptu: json\n")

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse config")
}

func TestLoad_Invalid(t *testing.T) {
	path := writeFile(t, "output: xml\n")

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "output must be text, json or yaml")
}

func TestLoad_Missing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"epsilon", func(c *Config) { c.Epsilon = 0 }},
		{"tolerance", func(c *Config) { c.Tolerance = -1 }},
		{"workers", func(c *Config) { c.Workers = -2 }},
		{"precision", func(c *Config) { c.Precision = 40 }},
		{"optimizer", func(c *Config) { c.Optimizer = "lbfgs" }},
		{"learning rate", func(c *Config) { c.LearningRate = 0 }},
		{"momentum", func(c *Config) { c.Momentum = 1 }},
		{"steps", func(c *Config) { c.Steps = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
