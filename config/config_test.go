package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	assert.NoError(t, Default().Validate())
}

func TestLoadAppliesOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "train.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"classes": 21,
		"zoom_factor": 4,
		"world_size": 2,
		"dist_url": "[::1]:8080",
		"scales": [0.75, 1.0, 1.25]
	}`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 21, cfg.Classes)
	assert.Equal(t, 4, cfg.ZoomFactor)
	assert.Equal(t, 2, cfg.WorldSize)
	assert.Equal(t, []float64{0.75, 1.0, 1.25}, cfg.Scales)
	// Defaults survive for unset fields.
	assert.Equal(t, int32(255), cfg.IgnoreLabel)
	assert.Equal(t, 473, cfg.TrainH)
}

func TestLoadRejectsInvalid(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"zoom_factor": 3}`), 0o644))
	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.json"))
	assert.Error(t, err)
}

func TestValidateRules(t *testing.T) {
	mutations := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad split", func(c *Config) { c.Split = "dev" }},
		{"one class", func(c *Config) { c.Classes = 1 }},
		{"bad zoom", func(c *Config) { c.ZoomFactor = 3 }},
		{"zero epochs", func(c *Config) { c.Epochs = 0 }},
		{"zero batch", func(c *Config) { c.BatchSize = 0 }},
		{"negative lr", func(c *Config) { c.BaseLR = -1 }},
		{"inverted scale range", func(c *Config) { c.ScaleMin = 3; c.ScaleMax = 1 }},
		{"rank out of range", func(c *Config) { c.Rank = 5 }},
		{"distributed without url", func(c *Config) { c.WorldSize = 2; c.DistURL = "" }},
		{"negative loss scale", func(c *Config) { c.LossScale = -2 }},
		{"empty scales", func(c *Config) { c.Scales = nil }},
		{"negative eval scale", func(c *Config) { c.Scales = []float64{-1} }},
		{"overlap too large", func(c *Config) { c.OverlapRatio = 1 }},
		{"zero crop", func(c *Config) { c.TestH = 0 }},
	}
	for _, m := range mutations {
		cfg := Default()
		m.mutate(cfg)
		assert.Error(t, cfg.Validate(), m.name)
	}
}

func TestValidateAcceptsZeroOverlap(t *testing.T) {
	cfg := Default()
	cfg.OverlapRatio = 0
	assert.NoError(t, cfg.Validate())
}

func TestTotalIterations(t *testing.T) {
	cfg := Default()
	cfg.BatchSize = 4
	cfg.Epochs = 3
	// 10 samples in batches of 4 -> 3 iterations per epoch.
	assert.Equal(t, 9, cfg.TotalIterations(10))
}
