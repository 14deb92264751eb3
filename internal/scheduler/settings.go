// SPDX-License-Identifier: MIT
package scheduler

import (
	"github.com/Arcadesys/doctorfeelgood-sub001/internal/config"
	"github.com/Arcadesys/doctorfeelgood-sub001/internal/dsp"
)

// Mode selects the tick strategy.
type Mode string

const (
	ModeBeat   Mode = config.SyncBeat
	ModeManual Mode = config.SyncManual
)

// Pattern selects the manual movement shape.
type Pattern string

const (
	PatternPingPong Pattern = config.PatternPingPong
	PatternSine     Pattern = config.PatternSine
)

// Settings are the parameters read on every tick. Immutable once applied;
// changes go through Scheduler.Apply and take effect on the next tick.
type Settings struct {
	Mode         Mode
	Pattern      Pattern
	FrequencyHz  float64 // manual oscillation rate
	Amplitude    float64 // 0-1 sweep width around the center
	CenterOffset float64 // 0-1 sweep center
}

// SettingsFromConfig converts the user-facing stimulus configuration,
// assuming it has already been clamped.
func SettingsFromConfig(s config.StimulusConfig) Settings {
	return Settings{
		Mode:         Mode(s.SyncMode),
		Pattern:      Pattern(s.MovementPattern),
		FrequencyHz:  s.FrequencyHz,
		Amplitude:    s.Amplitude,
		CenterOffset: s.CenterOffset,
	}
}

// strategy is the tagged variant dispatched once per tick: exactly one of
// the two is active at any time, and the "no valid tempo yet" fallback is a
// construction-time case rather than a per-tick nil check.
type strategy interface {
	// position returns the normalized [0,1] target position at elapsed
	// seconds, the current beat index (-1 outside beat mode), and whether
	// this instant is a beat boundary.
	position(elapsedSeconds float64) (pos float64, beat int, boundary bool)
}

// beatStrategy steps the target left-right on the parity of the beat
// number derived from a tempo estimate. Position is a step function, not a
// sweep.
type beatStrategy struct {
	settings Settings
	tempo    dsp.Estimate
}

// boundaryEpsilon is the beat fraction under which a tick counts as the
// start of a beat. At the 16 ms poll interval every beat start lands inside
// this window for any tempo in range.
const boundaryEpsilon = 0.05

func (b beatStrategy) position(elapsed float64) (float64, int, bool) {
	beatInterval := 60 / b.tempo.BPM
	beat := int(elapsed / beatInterval)
	fraction := elapsed/beatInterval - float64(beat)

	// Even beats sit left, odd beats right.
	var pos float64
	if beat%2 == 0 {
		pos = b.settings.CenterOffset - b.settings.Amplitude
	} else {
		pos = b.settings.CenterOffset + b.settings.Amplitude
	}

	return clampUnit(pos), beat, fraction < boundaryEpsilon
}

// manualStrategy sweeps the target continuously at a fixed rate,
// independent of any analysis output. No beat boundaries are emitted.
type manualStrategy struct {
	settings Settings
}

func (m manualStrategy) position(elapsed float64) (float64, int, bool) {
	phase := m.settings.FrequencyHz * elapsed

	var wave float64
	switch m.settings.Pattern {
	case PatternPingPong:
		wave = triangle(phase)
	default:
		wave = sine(phase)
	}

	pos := m.settings.CenterOffset + m.settings.Amplitude*wave
	return clampUnit(pos), -1, false
}
