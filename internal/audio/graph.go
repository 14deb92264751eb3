// SPDX-License-Identifier: MIT
/*
Package audio implements the real-time output graph of the stimulation
engine: track source → gain → stereo pan → device, plus transient cue
bursts mixed in at beat boundaries.

Thread safety:
- Pan, volume, and playback state are atomics written by the scheduler
  tick and read by the PortAudio render callback.
- Cue voices live in a fixed array claimed and released through atomic
  state transitions, so a long session can never accumulate live voices.
- The graph only ever sets parameter values; it never reads rendered
  sample data back from the device.
*/
package audio

import (
	"errors"
	"fmt"
	"math"
	"sync"
	"sync/atomic"

	"github.com/gordonklaus/portaudio"

	"github.com/Arcadesys/doctorfeelgood-sub001/internal/config"
	applog "github.com/Arcadesys/doctorfeelgood-sub001/internal/log"
)

// ErrAudioUnavailable is reported when the platform provides no usable
// audio output. The graph degrades to no-ops and visual stimulation
// continues unaffected.
var ErrAudioUnavailable = errors.New("audio output unavailable")

// maxCueVoices bounds the number of simultaneously sounding cue bursts.
// Claims beyond the limit are dropped, never queued.
const maxCueVoices = 8

// Cue voice lifecycle states.
const (
	voiceFree int32 = iota
	voicePreparing
	voiceActive
)

type cueVoice struct {
	state atomic.Int32
	slot  cueSlot
}

// trackState is the playback cursor over a loaded track. Swapped atomically
// as a unit on track change; the cursor itself is advanced only by the
// render callback.
type trackState struct {
	data []float64
	step float64 // track samples consumed per output sample
	pos  float64
}

// Graph is the session audio graph. Built lazily on the first Start and
// reused for the rest of the session.
type Graph struct {
	cfg config.AudioConfig

	mu      sync.Mutex
	built   bool
	enabled bool
	stream  *portaudio.Stream

	pan     atomic.Uint64 // float64 bits, [-1, 1]
	volume  atomic.Uint64 // float64 bits, [0, 1]
	playing atomic.Int32

	track atomic.Pointer[trackState]
	cues  [maxCueVoices]cueVoice
}

// NewGraph creates a graph for the given audio settings. No device is
// touched until Start. A config-disabled graph behaves exactly like one
// whose platform denied audio.
func NewGraph(cfg config.AudioConfig) *Graph {
	g := &Graph{cfg: cfg, enabled: !cfg.Disabled}
	g.SetPan(0)
	g.SetVolume(config.DefaultVolume)
	return g
}

// Enabled reports whether audio output is operational. False means every
// audio operation is a no-op.
func (g *Graph) Enabled() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.enabled
}

// Start builds the output stream on first use and starts rendering.
// Starting an already running graph is a no-op. When the platform denies
// audio the graph flips to disabled and reports ErrAudioUnavailable once;
// later calls return the same sentinel without touching the device again.
func (g *Graph) Start() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.enabled {
		return ErrAudioUnavailable
	}

	if !g.built {
		if err := g.build(); err != nil {
			g.enabled = false
			applog.Warnf("audio: output disabled: %v", err)
			return fmt.Errorf("%w: %v", ErrAudioUnavailable, err)
		}
		g.built = true
	}

	// The stream opens stopped; the first user-triggered Start resumes it.
	if err := g.stream.Start(); err != nil && !errors.Is(err, portaudio.StreamIsNotStopped) {
		g.enabled = false
		return fmt.Errorf("%w: %v", ErrAudioUnavailable, err)
	}

	g.playing.Store(1)
	return nil
}

// build opens the PortAudio output stream. Caller holds g.mu.
func (g *Graph) build() error {
	device, err := OutputDevice(g.cfg.OutputDevice)
	if err != nil {
		return err
	}

	latency := device.DefaultHighOutputLatency
	if g.cfg.LowLatency {
		latency = device.DefaultLowOutputLatency
	}

	params := portaudio.StreamParameters{
		Output: portaudio.StreamDeviceParameters{
			Channels: 2,
			Device:   device,
			Latency:  latency,
		},
		FramesPerBuffer: g.cfg.FramesPerBuffer,
		SampleRate:      g.cfg.SampleRate,
	}

	stream, err := portaudio.OpenStream(params, g.render)
	if err != nil {
		return err
	}
	g.stream = stream

	applog.Infof("audio: output stream on %q (%.0f Hz, %d frames/buffer)",
		device.Name, g.cfg.SampleRate, g.cfg.FramesPerBuffer)
	return nil
}

// Stop halts rendering and releases any sounding cue voices. Idempotent.
func (g *Graph) Stop() {
	g.playing.Store(0)
	for i := range g.cues {
		g.cues[i].state.Store(voiceFree)
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if g.stream != nil {
		if err := g.stream.Stop(); err != nil {
			applog.Debugf("audio: stream stop: %v", err)
		}
	}
}

// Close tears the graph down. Safe to call multiple times.
func (g *Graph) Close() error {
	g.Stop()

	g.mu.Lock()
	defer g.mu.Unlock()
	if g.stream != nil {
		if err := g.stream.Close(); err != nil {
			return err
		}
		g.stream = nil
		g.built = false
	}
	return nil
}

// SetTrack installs the decoded track to play under the stimulation,
// replacing any prior track. The cursor restarts at the beginning. A nil
// track silences the source path (cues still sound).
func (g *Graph) SetTrack(data []float64, sampleRate float64) {
	if len(data) == 0 || sampleRate <= 0 {
		g.track.Store(nil)
		return
	}
	g.track.Store(&trackState{
		data: data,
		step: sampleRate / g.cfg.SampleRate,
	})
}

// SetPan sets the stereo balance, clamped to [-1, 1]. Clamping is
// idempotent: an already clamped value passes through unchanged.
func (g *Graph) SetPan(v float64) {
	g.pan.Store(math.Float64bits(clampPan(v)))
}

// Pan returns the effective pan value.
func (g *Graph) Pan() float64 {
	return math.Float64frombits(g.pan.Load())
}

// SetVolume sets the master gain, clamped to [0, 1].
func (g *Graph) SetVolume(v float64) {
	g.volume.Store(math.Float64bits(clampVolume(v)))
}

// Volume returns the effective master gain.
func (g *Graph) Volume() float64 {
	return math.Float64frombits(g.volume.Load())
}

// Click fires a transient cue burst. The burst claims one of the fixed
// voice slots and self-releases when exhausted; when every slot is busy the
// cue is dropped. No-op on a disabled graph or for CueNone.
func (g *Graph) Click(kind CueKind) {
	if kind == CueNone || !g.Enabled() {
		return
	}

	for i := range g.cues {
		v := &g.cues[i]
		if !v.state.CompareAndSwap(voiceFree, voicePreparing) {
			continue
		}
		n := cueLength(kind, g.cfg.SampleRate)
		v.slot = cueSlot{
			kind:      kind,
			total:     n,
			remaining: n,
			noise:     0x9e3779b9 + uint32(i),
		}
		v.state.Store(voiceActive)
		return
	}

	applog.Debugf("audio: cue dropped, all %d voices busy", maxCueVoices)
}

// render is the PortAudio output callback. Hot path: no allocations, no
// locks, parameter values read through atomics only.
func (g *Graph) render(out []float32) {
	vol := math.Float64frombits(g.volume.Load())
	pan := math.Float64frombits(g.pan.Load())

	// Constant-power pan law.
	angle := (pan + 1) * math.Pi / 4
	gainL := math.Cos(angle)
	gainR := math.Sin(angle)

	track := g.track.Load()
	playing := g.playing.Load() == 1

	frames := len(out) / 2
	for i := 0; i < frames; i++ {
		var s float64

		if playing && track != nil {
			idx := int(track.pos)
			if idx >= len(track.data) {
				track.pos -= float64(len(track.data)) // loop
				idx = int(track.pos)
			}
			if idx < len(track.data) {
				s = track.data[idx]
			}
			track.pos += track.step
		}

		for v := range g.cues {
			voice := &g.cues[v]
			if voice.state.Load() != voiceActive {
				continue
			}
			s += voice.slot.render(g.cfg.SampleRate)
			if voice.slot.remaining <= 0 {
				voice.state.Store(voiceFree)
			}
		}

		s *= vol
		out[2*i] = float32(s * gainL)
		out[2*i+1] = float32(s * gainR)
	}
}

func clampPan(v float64) float64 {
	if v < -1 {
		return -1
	}
	if v > 1 {
		return 1
	}
	return v
}

func clampVolume(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
