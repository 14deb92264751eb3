// SPDX-License-Identifier: MIT
package audio

import (
	"math"

	"github.com/Arcadesys/doctorfeelgood-sub001/internal/config"
)

// CueKind selects the sound synthesized at a beat boundary.
type CueKind int

const (
	CueNone CueKind = iota
	CueClick
	CueBeep
	CueHiss
)

// ParseCue maps a config cue name to a CueKind. Unknown names are silent.
func ParseCue(name string) CueKind {
	switch name {
	case config.CueClick:
		return CueClick
	case config.CueBeep:
		return CueBeep
	case config.CueHiss:
		return CueHiss
	default:
		return CueNone
	}
}

// Cue burst lengths in seconds. All well under the 0.3 s ceiling so bursts
// from consecutive beats cannot pile up even at the fastest tempo.
const (
	clickSeconds = 0.03
	beepSeconds  = 0.15
	hissSeconds  = 0.25
)

// cueLength returns the burst length in samples for a kind.
func cueLength(kind CueKind, sampleRate float64) int {
	switch kind {
	case CueClick:
		return int(clickSeconds * sampleRate)
	case CueBeep:
		return int(beepSeconds * sampleRate)
	case CueHiss:
		return int(hissSeconds * sampleRate)
	default:
		return 0
	}
}

// cueSlot is a disposable transient voice. Slots live in a fixed array on
// the Graph; claim/release is coordinated through the state field so the
// render callback never races a Click call.
type cueSlot struct {
	kind      CueKind
	total     int
	remaining int
	noise     uint32 // xorshift state for hiss
	lowpass   float64
}

// render synthesizes one sample of the burst and advances the slot.
// Returns 0 once the burst is exhausted.
func (c *cueSlot) render(sampleRate float64) float64 {
	if c.remaining <= 0 {
		return 0
	}
	pos := c.total - c.remaining
	t := float64(pos) / sampleRate
	c.remaining--

	switch c.kind {
	case CueClick:
		// Short 2 kHz ping with a fast exponential decay.
		return math.Exp(-t*180) * math.Sin(2*math.Pi*2000*t)
	case CueBeep:
		// Plain 880 Hz tone with a linear fade-out to avoid a tail click.
		fade := float64(c.remaining) / float64(c.total)
		return 0.8 * fade * math.Sin(2*math.Pi*880*t)
	case CueHiss:
		// White noise through a one-pole lowpass, decaying.
		c.noise ^= c.noise << 13
		c.noise ^= c.noise >> 17
		c.noise ^= c.noise << 5
		white := float64(int32(c.noise)) / math.MaxInt32
		c.lowpass += 0.15 * (white - c.lowpass)
		return math.Exp(-t*20) * c.lowpass
	default:
		return 0
	}
}
