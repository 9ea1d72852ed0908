package config

import (
	"errors"
	"testing"

	"github.com/teslashibe/go-vrig/pkg/rig"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Port != "8090" {
		t.Errorf("Port = %q, want 8090", cfg.Port)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q, want info", cfg.LogLevel)
	}
	if cfg.HandAssignment() != rig.HandsSwapped {
		t.Errorf("HandAssignment = %v, want swapped", cfg.HandAssignment())
	}

	rc, err := cfg.RetargetConfig()
	if err != nil {
		t.Fatalf("RetargetConfig: %v", err)
	}
	if rc.EyeLerp != 0.3 || rc.MouthLerp != 0.1 || rc.GazeLerp != 0.4 {
		t.Errorf("lerps = %v %v %v, want 0.3 0.1 0.4", rc.EyeLerp, rc.MouthLerp, rc.GazeLerp)
	}
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("VRIG_PORT", "9000")
	t.Setenv("VRIG_SWAP_HANDS", "false")
	t.Setenv("VRIG_DEBUG", "true")
	t.Setenv("VRIG_EYE_LERP", "0.5")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Port != "9000" {
		t.Errorf("Port = %q, want 9000", cfg.Port)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want debug when VRIG_DEBUG is set", cfg.LogLevel)
	}
	if cfg.HandAssignment() != rig.HandsAsLabeled {
		t.Errorf("HandAssignment = %v, want as-labeled", cfg.HandAssignment())
	}

	rc, err := cfg.RetargetConfig()
	if err != nil {
		t.Fatalf("RetargetConfig: %v", err)
	}
	if rc.EyeLerp != 0.5 {
		t.Errorf("EyeLerp = %v, want 0.5", rc.EyeLerp)
	}
	if rc.MouthLerp != 0.1 {
		t.Errorf("MouthLerp = %v, want preset value 0.1", rc.MouthLerp)
	}
}

func TestLoad_InvalidValue(t *testing.T) {
	t.Setenv("VRIG_GAZE_LERP", "fast")

	if _, err := Load(); err == nil {
		t.Error("Load should fail for a non-numeric lerp")
	}
}

func TestRetargetConfig_Presets(t *testing.T) {
	smooth, err := Config{Preset: PresetSmooth}.RetargetConfig()
	if err != nil {
		t.Fatalf("smooth: %v", err)
	}
	if smooth.Targets[0].Lerp >= rig.DefaultBoneLerp {
		t.Errorf("smooth bone lerp = %v, want below default", smooth.Targets[0].Lerp)
	}

	snappy, err := Config{Preset: PresetSnappy}.RetargetConfig()
	if err != nil {
		t.Fatalf("snappy: %v", err)
	}
	if snappy.GazeLerp != 0.6 {
		t.Errorf("snappy GazeLerp = %v, want 0.6", snappy.GazeLerp)
	}

	if _, err := (Config{Preset: "bouncy"}).RetargetConfig(); err == nil {
		t.Error("unknown preset should fail")
	}
}

func TestRetargetConfig_OutOfRange(t *testing.T) {
	bad := 1.5
	_, err := Config{MouthLerp: &bad}.RetargetConfig()
	if !errors.Is(err, rig.ErrInvalidFactor) {
		t.Errorf("err = %v, want ErrInvalidFactor", err)
	}
}
