// SPDX-License-Identifier: MIT
package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeTempConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "bls.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write temp config: %v", err)
	}
	return path
}

func TestLoadDefaultsWithoutFile(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load with no file failed: %v", err)
	}

	if cfg.Stimulus.SyncMode != DefaultSyncMode {
		t.Errorf("SyncMode = %q, want %q", cfg.Stimulus.SyncMode, DefaultSyncMode)
	}
	if cfg.Stimulus.FrequencyHz != DefaultFrequencyHz {
		t.Errorf("FrequencyHz = %v, want %v", cfg.Stimulus.FrequencyHz, DefaultFrequencyHz)
	}
	if cfg.Audio.SampleRate != DefaultSampleRate {
		t.Errorf("SampleRate = %v, want %v", cfg.Audio.SampleRate, DefaultSampleRate)
	}
	if cfg.Analysis.WindowSeconds != DefaultWindowSeconds {
		t.Errorf("WindowSeconds = %v, want %v", cfg.Analysis.WindowSeconds, DefaultWindowSeconds)
	}
}

func TestLoadFromFile(t *testing.T) {
	path := writeTempConfig(t, `
debug: true
log_level: debug
stimulus:
  sync_mode: beat
  movement_pattern: ping-pong
  frequency_hz: 2.5
  amplitude: 0.3
  cue: beep
audio:
  sample_rate: 48000
  output_device: 3
transport:
  websocket_enabled: true
  websocket_addr: "127.0.0.1:9999"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if !cfg.Debug {
		t.Error("Debug not loaded")
	}
	if cfg.Stimulus.SyncMode != SyncBeat {
		t.Errorf("SyncMode = %q, want %q", cfg.Stimulus.SyncMode, SyncBeat)
	}
	if cfg.Stimulus.MovementPattern != PatternPingPong {
		t.Errorf("MovementPattern = %q, want %q", cfg.Stimulus.MovementPattern, PatternPingPong)
	}
	if cfg.Stimulus.FrequencyHz != 2.5 {
		t.Errorf("FrequencyHz = %v, want 2.5", cfg.Stimulus.FrequencyHz)
	}
	if cfg.Stimulus.Cue != CueBeep {
		t.Errorf("Cue = %q, want %q", cfg.Stimulus.Cue, CueBeep)
	}
	if cfg.Audio.SampleRate != 48000 {
		t.Errorf("SampleRate = %v, want 48000", cfg.Audio.SampleRate)
	}
	if cfg.Audio.OutputDevice != 3 {
		t.Errorf("OutputDevice = %v, want 3", cfg.Audio.OutputDevice)
	}
	if !cfg.Transport.WebSocketEnabled || cfg.Transport.WebSocketAddr != "127.0.0.1:9999" {
		t.Errorf("transport not loaded: %+v", cfg.Transport)
	}

	// Fields absent from the file keep their defaults.
	if cfg.Stimulus.Volume != DefaultVolume {
		t.Errorf("Volume = %v, want default %v", cfg.Stimulus.Volume, DefaultVolume)
	}
}

func TestLoadMissingFileFails(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("expected error for missing explicit config path")
	}
}

func TestLoadMalformedYAMLFails(t *testing.T) {
	path := writeTempConfig(t, "stimulus: [not a mapping")
	if _, err := Load(path); err == nil {
		t.Error("expected parse error for malformed YAML")
	}
}

func TestClampCorrectsOutOfRangeValues(t *testing.T) {
	cfg := NewConfig()
	cfg.Stimulus.FrequencyHz = 500
	cfg.Stimulus.Amplitude = -2
	cfg.Stimulus.CenterOffset = 1.4
	cfg.Stimulus.Sensitivity = 7
	cfg.Stimulus.Volume = -0.5
	cfg.Analysis.WindowSeconds = -1
	cfg.Analysis.ThresholdFloor = 0.9
	cfg.Analysis.ThresholdSpan = 0.4
	cfg.Audio.SampleRate = 0

	cfg.Clamp()

	if cfg.Stimulus.FrequencyHz != MaxFrequencyHz {
		t.Errorf("FrequencyHz = %v, want %v", cfg.Stimulus.FrequencyHz, MaxFrequencyHz)
	}
	if cfg.Stimulus.Amplitude != 0 {
		t.Errorf("Amplitude = %v, want 0", cfg.Stimulus.Amplitude)
	}
	if cfg.Stimulus.CenterOffset != 1 {
		t.Errorf("CenterOffset = %v, want 1", cfg.Stimulus.CenterOffset)
	}
	if cfg.Stimulus.Sensitivity != 1 {
		t.Errorf("Sensitivity = %v, want 1", cfg.Stimulus.Sensitivity)
	}
	if cfg.Stimulus.Volume != 0 {
		t.Errorf("Volume = %v, want 0", cfg.Stimulus.Volume)
	}
	if cfg.Analysis.WindowSeconds != DefaultWindowSeconds {
		t.Errorf("WindowSeconds = %v, want default", cfg.Analysis.WindowSeconds)
	}
	// Span cannot push the threshold past 1.
	if got := cfg.Analysis.ThresholdFloor + cfg.Analysis.ThresholdSpan; got > 1 {
		t.Errorf("floor+span = %v, want <= 1", got)
	}
	if cfg.Audio.SampleRate != DefaultSampleRate {
		t.Errorf("SampleRate = %v, want default", cfg.Audio.SampleRate)
	}
}

func TestClampUnknownEnumsFallBack(t *testing.T) {
	cfg := NewConfig()
	cfg.Stimulus.SyncMode = "psychic"
	cfg.Stimulus.MovementPattern = "zigzag"
	cfg.Stimulus.Cue = "airhorn"

	cfg.Clamp()

	if cfg.Stimulus.SyncMode != DefaultSyncMode {
		t.Errorf("SyncMode = %q, want default", cfg.Stimulus.SyncMode)
	}
	if cfg.Stimulus.MovementPattern != DefaultPattern {
		t.Errorf("MovementPattern = %q, want default", cfg.Stimulus.MovementPattern)
	}
	if cfg.Stimulus.Cue != DefaultCue {
		t.Errorf("Cue = %q, want default", cfg.Stimulus.Cue)
	}
}

func TestClampKeepsValidValues(t *testing.T) {
	cfg := NewConfig()
	cfg.Stimulus.SyncMode = SyncBeat
	cfg.Stimulus.FrequencyHz = 2.0
	cfg.Stimulus.Amplitude = 0.75

	cfg.Clamp()

	if cfg.Stimulus.SyncMode != SyncBeat {
		t.Errorf("valid SyncMode changed to %q", cfg.Stimulus.SyncMode)
	}
	if cfg.Stimulus.FrequencyHz != 2.0 || cfg.Stimulus.Amplitude != 0.75 {
		t.Errorf("valid values changed: freq=%v amp=%v", cfg.Stimulus.FrequencyHz, cfg.Stimulus.Amplitude)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("BLS_DEBUG", "true")
	t.Setenv("BLS_WS_ENABLED", "1")
	t.Setenv("BLS_WS_ADDR", "0.0.0.0:7070")
	t.Setenv("BLS_NO_AUDIO", "true")
	t.Setenv("BLS_LOG_LEVEL", "warn")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if !cfg.Debug {
		t.Error("BLS_DEBUG not applied")
	}
	if !cfg.Transport.WebSocketEnabled {
		t.Error("BLS_WS_ENABLED not applied")
	}
	if cfg.Transport.WebSocketAddr != "0.0.0.0:7070" {
		t.Errorf("WebSocketAddr = %q, want 0.0.0.0:7070", cfg.Transport.WebSocketAddr)
	}
	if !cfg.Audio.Disabled {
		t.Error("BLS_NO_AUDIO not applied")
	}
	if cfg.LogLevel != "warn" {
		t.Errorf("LogLevel = %q, want warn", cfg.LogLevel)
	}
}

func TestEnvOverrideIgnoresGarbage(t *testing.T) {
	t.Setenv("BLS_DEBUG", "maybe")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Debug {
		t.Error("unparseable BLS_DEBUG flipped the flag")
	}
}
