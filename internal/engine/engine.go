// SPDX-License-Identifier: MIT
/*
Package engine owns a stimulation session: the loaded track, the audio
graph, the scheduler, and the cached tempo estimate. It is the only
component allowed to mutate any of them, and the scheduler emit path it
installs is the single writer that hands the same position value to the
audio pan and to every renderer in the same tick.
*/
package engine

import (
	"errors"
	"fmt"
	"sync"

	"github.com/Arcadesys/doctorfeelgood-sub001/internal/audio"
	"github.com/Arcadesys/doctorfeelgood-sub001/internal/config"
	"github.com/Arcadesys/doctorfeelgood-sub001/internal/dsp"
	applog "github.com/Arcadesys/doctorfeelgood-sub001/internal/log"
	"github.com/Arcadesys/doctorfeelgood-sub001/internal/scheduler"
	"github.com/Arcadesys/doctorfeelgood-sub001/internal/source"
	"github.com/Arcadesys/doctorfeelgood-sub001/internal/transport"
)

// Engine is a stimulation session.
type Engine struct {
	cfg *config.Config

	mu     sync.Mutex
	src    *source.AudioSource
	tempo  *dsp.Estimate // cached analysis result, nil until analyzed
	cue    audio.CueKind
	notice string // last user-visible degradation notice

	graph    *audio.Graph
	sched    *scheduler.Scheduler
	analyzer *dsp.Analyzer
	trans    transport.Transport

	frames chan scheduler.Frame
}

// New creates a session from a clamped configuration. trans may be nil for
// sessions with no external renderer.
func New(cfg *config.Config, trans transport.Transport) *Engine {
	e := &Engine{
		cfg:   cfg,
		cue:   audio.ParseCue(cfg.Stimulus.Cue),
		graph: audio.NewGraph(cfg.Audio),
		analyzer: dsp.NewAnalyzer(dsp.Params{
			ThresholdFloor:    cfg.Analysis.ThresholdFloor,
			ThresholdSpan:     cfg.Analysis.ThresholdSpan,
			MinSpacingSeconds: cfg.Analysis.MinSpacingSeconds,
			WindowSeconds:     cfg.Analysis.WindowSeconds,
		}, cfg.Analysis.LowBand, cfg.Analysis.LowBandCutoffHz),
		trans:  trans,
		frames: make(chan scheduler.Frame, 8),
	}
	e.graph.SetVolume(cfg.Stimulus.Volume)
	e.sched = scheduler.New(scheduler.SettingsFromConfig(cfg.Stimulus), e.onFrame)
	return e
}

// onFrame is the scheduler emit path. It runs once per tick and fans the
// single computed position out to the audio graph and the renderers.
func (e *Engine) onFrame(f scheduler.Frame) {
	e.graph.SetPan(f.Pan)

	if f.Pulse {
		e.mu.Lock()
		cue := e.cue
		e.mu.Unlock()
		e.graph.Click(cue)
	}

	if e.trans != nil {
		payload := map[string]any{
			"type":     "frame",
			"position": f.Position,
			"pan":      f.Pan,
		}
		if f.Pulse {
			payload["type"] = "beat"
			payload["beat"] = f.Beat
			payload["left"] = f.LeftPhase
		}
		_ = e.trans.Send(payload)
	}

	// Local renderer channel; drop when the consumer lags, only the newest
	// frame matters.
	select {
	case e.frames <- f:
	default:
	}
}

// Frames exposes the per-tick output for an in-process renderer.
func (e *Engine) Frames() <-chan scheduler.Frame { return e.frames }

// LoadTrack replaces the session's audio source. The previous source's
// decoded buffer is released, the cached tempo estimate is invalidated, and
// analysis runs once on the new track.
func (e *Engine) LoadTrack(origin source.Origin, ref, title string) error {
	src, err := source.Load(origin, ref, title)
	if err != nil {
		return fmt.Errorf("load track: %w", err)
	}

	e.mu.Lock()
	if e.src != nil {
		e.src.Close()
	}
	e.src = src
	e.tempo = nil
	e.mu.Unlock()

	buf := src.Buffer()
	e.graph.SetTrack(buf.Data, buf.SampleRate)
	applog.Infof("engine: loaded %q (%s, %.1fs)", src.Title(), src.Origin(), buf.Duration().Seconds())

	// One-shot blocking analysis, deliberately off the tick path.
	e.Analyze()
	return nil
}

// Analyze runs beat analysis over the current track and caches the result.
// The estimate is recomputed only here, never per tick. Returns false when
// no track is loaded.
func (e *Engine) Analyze() (dsp.Estimate, bool) {
	e.mu.Lock()
	src := e.src
	sensitivity := e.cfg.Stimulus.Sensitivity
	e.mu.Unlock()

	if src == nil || src.Buffer() == nil {
		return dsp.Estimate{}, false
	}

	buf := src.Buffer()
	est := e.analyzer.Analyze(buf.Data, buf.SampleRate, sensitivity)

	e.mu.Lock()
	e.tempo = &est
	e.mu.Unlock()

	applog.Infof("engine: detected beat %.1f BPM, confidence %.0f%%", est.BPM, est.Confidence*100)
	return est, true
}

// Tempo returns the cached estimate and whether one exists.
func (e *Engine) Tempo() (dsp.Estimate, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.tempo == nil {
		return dsp.Estimate{}, false
	}
	return *e.tempo, true
}

// Notice returns the last degradation notice ("sync disabled", "audio
// disabled"), empty when fully operational.
func (e *Engine) Notice() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.notice
}

func (e *Engine) setNotice(msg string) {
	e.mu.Lock()
	e.notice = msg
	e.mu.Unlock()
}

// Start begins the session: audio graph first, then the scheduler. An
// unavailable audio platform degrades to visual-only instead of failing.
func (e *Engine) Start() error {
	if err := e.graph.Start(); err != nil {
		if errors.Is(err, audio.ErrAudioUnavailable) {
			e.setNotice("audio disabled / visual only")
			applog.Warnf("engine: %v, continuing visual-only", err)
		} else {
			return err
		}
	}

	if err := e.Apply(e.cfg.Stimulus); err != nil && !errors.Is(err, scheduler.ErrNoTempo) {
		return err
	}

	e.sched.Start()
	return nil
}

// Stop halts the scheduler and the audio graph, releasing transient cue
// voices. Idempotent.
func (e *Engine) Stop() {
	e.sched.Stop()
	e.graph.Stop()
}

// Running reports whether the session scheduler is ticking.
func (e *Engine) Running() bool { return e.sched.Running() }

// Apply installs new stimulus settings, clamped, effective next tick.
// Requesting beat sync without a usable tempo estimate fails soft: the
// manual oscillation keeps running and the condition surfaces as a notice
// plus scheduler.ErrNoTempo.
func (e *Engine) Apply(stim config.StimulusConfig) error {
	e.mu.Lock()
	cfg := *e.cfg
	cfg.Stimulus = stim
	cfg.Clamp()
	stim = cfg.Stimulus
	e.cfg.Stimulus = stim
	e.cue = audio.ParseCue(stim.Cue)
	tempo := e.tempo
	e.mu.Unlock()

	e.graph.SetVolume(stim.Volume)

	err := e.sched.Apply(scheduler.SettingsFromConfig(stim), tempo)
	if errors.Is(err, scheduler.ErrNoTempo) {
		e.setNotice("sync disabled / using manual rate")
		applog.Warnf("engine: beat sync requested without beat data, staying manual")
		return err
	}
	if err == nil && stim.SyncMode == config.SyncBeat {
		e.setNotice("")
	}
	return err
}

// Stimulus returns the currently applied stimulus settings.
func (e *Engine) Stimulus() config.StimulusConfig {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cfg.Stimulus
}

// AudioEnabled reports whether the audio path is operational.
func (e *Engine) AudioEnabled() bool { return e.graph.Enabled() }

// Close tears the whole session down: scheduler, graph, transport, source.
func (e *Engine) Close() error {
	e.Stop()

	var firstErr error
	if err := e.graph.Close(); err != nil {
		firstErr = err
	}
	if e.trans != nil {
		if err := e.trans.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	e.mu.Lock()
	if e.src != nil {
		e.src.Close()
		e.src = nil
	}
	e.mu.Unlock()

	return firstErr
}
