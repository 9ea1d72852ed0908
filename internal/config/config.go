// Package config loads the rig daemon's configuration from the environment.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/teslashibe/go-vrig/pkg/rig"
)

// Smoothing presets accepted by VRIG_PRESET.
const (
	PresetDefault = "default"
	PresetSmooth  = "smooth"
	PresetSnappy  = "snappy"
)

// Config holds the daemon settings.
type Config struct {
	Port     string `env:"VRIG_PORT" envDefault:"8090"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
	Debug    bool   `env:"VRIG_DEBUG" envDefault:"false"`

	// SwapHands feeds the detector's right hand to the avatar's left side.
	SwapHands bool `env:"VRIG_SWAP_HANDS" envDefault:"true"`

	Preset string `env:"VRIG_PRESET" envDefault:"default"`

	// Overrides applied on top of the preset when set.
	EyeLerp   *float64 `env:"VRIG_EYE_LERP"`
	MouthLerp *float64 `env:"VRIG_MOUTH_LERP"`
	GazeLerp  *float64 `env:"VRIG_GAZE_LERP"`
}

// Load parses the environment into a Config.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if cfg.Debug && cfg.LogLevel == "info" {
		cfg.LogLevel = "debug"
	}
	return cfg, nil
}

// HandAssignment returns the hand landmark policy.
func (c Config) HandAssignment() rig.HandAssignment {
	if c.SwapHands {
		return rig.HandsSwapped
	}
	return rig.HandsAsLabeled
}

// RetargetConfig builds the retargeter configuration for new sessions.
func (c Config) RetargetConfig() (rig.Config, error) {
	var cfg rig.Config
	switch c.Preset {
	case PresetDefault, "":
		cfg = rig.DefaultConfig()
	case PresetSmooth:
		cfg = rig.SmoothConfig()
	case PresetSnappy:
		cfg = rig.SnappyConfig()
	default:
		return rig.Config{}, fmt.Errorf("unknown preset %q", c.Preset)
	}

	if c.EyeLerp != nil {
		cfg.EyeLerp = *c.EyeLerp
	}
	if c.MouthLerp != nil {
		cfg.MouthLerp = *c.MouthLerp
	}
	if c.GazeLerp != nil {
		cfg.GazeLerp = *c.GazeLerp
	}

	if err := cfg.Validate(); err != nil {
		return rig.Config{}, err
	}
	return cfg, nil
}
