// SPDX-License-Identifier: MIT
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Load reads configuration from a YAML file. An empty path searches the
// default location ("bls.yaml") and silently falls back to built-in defaults
// when no file exists. Environment overrides are applied after the file, and
// the result is clamped into valid ranges.
func Load(path string) (*Config, error) {
	cfg := NewConfig()

	if path == "" {
		if _, err := os.Stat("bls.yaml"); err == nil {
			path = "bls.yaml"
		} else {
			cfg.applyEnvOverrides()
			cfg.Clamp()
			return cfg, nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.applyEnvOverrides()
	cfg.Clamp()

	return cfg, nil
}

// Clamp forces every numeric setting into its valid range. Out-of-range
// values are silently corrected at the boundary rather than rejected, and
// unrecognized enum values fall back to their defaults.
func (c *Config) Clamp() {
	s := &c.Stimulus
	s.FrequencyHz = clampFloat(s.FrequencyHz, MinFrequencyHz, MaxFrequencyHz)
	s.Amplitude = clampFloat(s.Amplitude, 0, 1)
	s.CenterOffset = clampFloat(s.CenterOffset, 0, 1)
	s.Sensitivity = clampFloat(s.Sensitivity, 0, 1)
	s.Volume = clampFloat(s.Volume, 0, 1)

	switch s.SyncMode {
	case SyncBeat, SyncManual:
	default:
		s.SyncMode = DefaultSyncMode
	}
	switch s.MovementPattern {
	case PatternPingPong, PatternSine:
	default:
		s.MovementPattern = DefaultPattern
	}
	switch s.Cue {
	case CueClick, CueBeep, CueHiss, CueNone:
	default:
		s.Cue = DefaultCue
	}

	a := &c.Analysis
	if a.WindowSeconds <= 0 {
		a.WindowSeconds = DefaultWindowSeconds
	}
	if a.MinSpacingSeconds <= 0 {
		a.MinSpacingSeconds = DefaultMinSpacingSeconds
	}
	a.ThresholdFloor = clampFloat(a.ThresholdFloor, 0, 1)
	a.ThresholdSpan = clampFloat(a.ThresholdSpan, 0, 1-a.ThresholdFloor)
	if a.LowBandCutoffHz <= 0 {
		a.LowBandCutoffHz = DefaultLowBandCutoffHz
	}

	if c.Audio.SampleRate <= 0 {
		c.Audio.SampleRate = DefaultSampleRate
	}
	if c.Audio.FramesPerBuffer <= 0 {
		c.Audio.FramesPerBuffer = DefaultFramesPerBuffer
	}
}

// applyEnvOverrides applies BLS_* environment variables on top of whatever
// the file (or the defaults) provided.
func (c *Config) applyEnvOverrides() {
	if val, ok := os.LookupEnv("BLS_DEBUG"); ok {
		if b, err := strconv.ParseBool(val); err == nil {
			c.Debug = b
		}
	}
	if val, ok := os.LookupEnv("BLS_LOG_LEVEL"); ok {
		c.LogLevel = val
	}
	if val, ok := os.LookupEnv("BLS_WS_ENABLED"); ok {
		if b, err := strconv.ParseBool(val); err == nil {
			c.Transport.WebSocketEnabled = b
		}
	}
	if val, ok := os.LookupEnv("BLS_WS_ADDR"); ok {
		c.Transport.WebSocketAddr = val
	}
	if val, ok := os.LookupEnv("BLS_NO_AUDIO"); ok {
		if b, err := strconv.ParseBool(val); err == nil {
			c.Audio.Disabled = b
		}
	}
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
