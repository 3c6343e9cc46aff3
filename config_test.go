package edfconv

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigDerived(t *testing.T) {
	cfg := Config{SampleRate: 100, TargetRate: 30, Window: 2, Scale: 1}

	assert.Equal(t, 3, cfg.DownFactor())
	assert.Equal(t, 60, cfg.WindowSamples())
	assert.InDelta(t, 33.333333, cfg.EffectiveRate(), 1e-6)

	cfg = Config{SampleRate: 256, TargetRate: 64, Window: 0.5}
	assert.Equal(t, 4, cfg.DownFactor())
	assert.Equal(t, 32, cfg.WindowSamples())
	assert.Equal(t, 64.0, cfg.EffectiveRate())
}

func TestConfigValidate(t *testing.T) {
	good := Config{SampleRate: 100, TargetRate: 10, Window: 30, Scale: 1e6}
	require.NoError(t, good.Validate())

	tests := map[string]func(c *Config){
		"zero fs":           func(c *Config) { c.SampleRate = 0 },
		"negative new_fs":   func(c *Config) { c.TargetRate = -1 },
		"nan win":           func(c *Config) { c.Window = math.NaN() },
		"inf scale":         func(c *Config) { c.Scale = math.Inf(1) },
		"down factor zero":  func(c *Config) { c.TargetRate = 200 },
		"window too short":  func(c *Config) { c.Window = 0.01 },
		"unknown filter":    func(c *Config) { c.Filter = "kaiser" },
		"infinite fs":       func(c *Config) { c.SampleRate = math.Inf(1) },
		"zero window":       func(c *Config) { c.Window = 0 },
		"negative fs":       func(c *Config) { c.SampleRate = -100 },
		"nan target":        func(c *Config) { c.TargetRate = math.NaN() },
		"negative window":   func(c *Config) { c.Window = -2 },
		"nan scale":         func(c *Config) { c.Scale = math.NaN() },
		"tiny target rate":  func(c *Config) { c.TargetRate = 1e-9; c.Window = 1 },
	}

	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			cfg := good
			mutate(&cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrInvalidParameter)
		})
	}
}

func TestConfigHugeRatio(t *testing.T) {
	cfg := Config{SampleRate: 1e30, TargetRate: 1, Window: 1, Scale: 1}

	assert.Zero(t, cfg.DownFactor())

	err := cfg.Validate()
	require.ErrorIs(t, err, ErrInvalidParameter)
	assert.Contains(t, err.Error(), "largest down factor")

	cfg.SampleRate = 1 << 20
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 1<<20, cfg.DownFactor())
}

func TestConfigZeroScaleAllowed(t *testing.T) {
	cfg := NewZeroConfig()
	cfg.SampleRate, cfg.TargetRate, cfg.Window = 100, 100, 1
	cfg.Scale = 0

	assert.NoError(t, cfg.Validate())
}

func TestConfigFilter(t *testing.T) {
	cfg := Config{Filter: "Blackman"}
	_, err := cfg.FilterWindow()
	assert.NoError(t, err)

	cfg.Filter = ""
	_, err = cfg.FilterWindow()
	assert.NoError(t, err)
}
