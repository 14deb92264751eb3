// SPDX-License-Identifier: MIT
package config

// Boundaries and defaults for the stimulation engine. The analysis constants
// (threshold range, peak spacing, window length) are tuning parameters, not
// correctness requirements, so they are exposed here rather than hard-coded
// in the detection code.
const (
	// Sync modes.
	SyncBeat   = "beat"
	SyncManual = "manual"

	// Movement patterns.
	PatternPingPong = "ping-pong"
	PatternSine     = "sine"

	// Cue sounds.
	CueClick = "click"
	CueBeep  = "beep"
	CueHiss  = "hiss"
	CueNone  = "none"

	// Audio engine defaults.
	DefaultOutputDevice    = -1 // -1 selects the system default device
	DefaultSampleRate      = 44100
	DefaultFramesPerBuffer = 512
	DefaultLowLatency      = false

	// Stimulus defaults.
	DefaultSyncMode    = SyncManual
	DefaultPattern     = PatternSine
	DefaultFrequencyHz = 1.0
	DefaultAmplitude   = 0.5
	DefaultCenter      = 0.5
	DefaultSensitivity = 0.5
	DefaultCue         = CueClick
	DefaultVolume      = 0.8

	// Analysis defaults.
	DefaultWindowSeconds     = 30.0
	DefaultMinSpacingSeconds = 0.1
	DefaultThresholdFloor    = 0.3
	DefaultThresholdSpan     = 0.4
	DefaultLowBandCutoffHz   = 250.0

	// Stimulus parameter limits. Values outside these ranges are clamped,
	// never rejected.
	MinFrequencyHz = 0.05
	MaxFrequencyHz = 10.0
)

// Config is the main application configuration, loaded from YAML with
// environment and flag overrides applied on top.
type Config struct {
	Debug    bool   `yaml:"debug"`
	LogLevel string `yaml:"log_level"`

	// Runtime-only fields set by the CLI, never read from YAML.
	Command  string `yaml:"-"` // one-off command ("analyze", "list")
	File     string `yaml:"-"` // audio track path for this session
	Headless bool   `yaml:"-"` // run without the terminal renderer

	Audio     AudioConfig     `yaml:"audio"`
	Stimulus  StimulusConfig  `yaml:"stimulus"`
	Analysis  AnalysisConfig  `yaml:"analysis"`
	Transport TransportConfig `yaml:"transport"`
}

// AudioConfig holds output device and stream settings.
type AudioConfig struct {
	OutputDevice    int     `yaml:"output_device"`     // PortAudio device index (-1 for default)
	SampleRate      float64 `yaml:"sample_rate"`       // Hz
	FramesPerBuffer int     `yaml:"frames_per_buffer"` // stream callback buffer size
	LowLatency      bool    `yaml:"low_latency"`
	Disabled        bool    `yaml:"disabled"` // force visual-only operation
}

// StimulusConfig holds the user-controlled stimulation parameters. These map
// one-to-one onto the scheduler settings and are read each tick.
type StimulusConfig struct {
	SyncMode        string  `yaml:"sync_mode"`        // "beat" or "manual"
	MovementPattern string  `yaml:"movement_pattern"` // "ping-pong" or "sine"
	FrequencyHz     float64 `yaml:"frequency_hz"`     // manual oscillation rate
	Amplitude       float64 `yaml:"amplitude"`        // 0-1 sweep width
	CenterOffset    float64 `yaml:"center_offset"`    // 0-1 sweep center
	Sensitivity     float64 `yaml:"sensitivity"`      // 0-1 peak detection sensitivity
	Cue             string  `yaml:"cue"`              // beat cue sound
	Volume          float64 `yaml:"volume"`           // 0-1 master gain
}

// AnalysisConfig holds the beat detection tuning parameters.
type AnalysisConfig struct {
	WindowSeconds     float64 `yaml:"window_seconds"`      // leading segment analyzed
	MinSpacingSeconds float64 `yaml:"min_spacing_seconds"` // minimum inter-peak distance
	ThresholdFloor    float64 `yaml:"threshold_floor"`     // threshold at sensitivity 0
	ThresholdSpan     float64 `yaml:"threshold_span"`      // threshold sweep width
	LowBand           bool    `yaml:"low_band"`            // pre-filter to low frequencies
	LowBandCutoffHz   float64 `yaml:"low_band_cutoff_hz"`
}

// TransportConfig holds settings for pushing frames to external renderers.
type TransportConfig struct {
	WebSocketEnabled bool   `yaml:"websocket_enabled"`
	WebSocketAddr    string `yaml:"websocket_addr"`
}

// NewConfig returns a Config populated with defaults.
func NewConfig() *Config {
	return &Config{
		Debug:    false,
		LogLevel: "info",
		Audio: AudioConfig{
			OutputDevice:    DefaultOutputDevice,
			SampleRate:      DefaultSampleRate,
			FramesPerBuffer: DefaultFramesPerBuffer,
			LowLatency:      DefaultLowLatency,
		},
		Stimulus: StimulusConfig{
			SyncMode:        DefaultSyncMode,
			MovementPattern: DefaultPattern,
			FrequencyHz:     DefaultFrequencyHz,
			Amplitude:       DefaultAmplitude,
			CenterOffset:    DefaultCenter,
			Sensitivity:     DefaultSensitivity,
			Cue:             DefaultCue,
			Volume:          DefaultVolume,
		},
		Analysis: AnalysisConfig{
			WindowSeconds:     DefaultWindowSeconds,
			MinSpacingSeconds: DefaultMinSpacingSeconds,
			ThresholdFloor:    DefaultThresholdFloor,
			ThresholdSpan:     DefaultThresholdSpan,
			LowBand:           false,
			LowBandCutoffHz:   DefaultLowBandCutoffHz,
		},
		Transport: TransportConfig{
			WebSocketEnabled: false,
			WebSocketAddr:    "127.0.0.1:8080",
		},
	}
}
