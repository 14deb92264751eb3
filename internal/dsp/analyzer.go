// SPDX-License-Identifier: MIT
package dsp

import (
	applog "github.com/Arcadesys/doctorfeelgood-sub001/internal/log"
)

// Analyzer runs the full beat analysis pipeline over a decoded track:
// optional low-band pre-filter, preprocessing, peak extraction, tempo
// estimation. Analysis is a one-shot blocking computation over up to the
// configured window of samples; callers cache the resulting Estimate and
// must never invoke it from the scheduler tick path.
type Analyzer struct {
	params          Params
	lowBand         bool
	lowBandCutoffHz float64
}

// NewAnalyzer creates an Analyzer with the given peak detection tuning.
// cutoffHz is only consulted when lowBand is set.
func NewAnalyzer(params Params, lowBand bool, cutoffHz float64) *Analyzer {
	return &Analyzer{
		params:          params,
		lowBand:         lowBand,
		lowBandCutoffHz: cutoffHz,
	}
}

// Analyze estimates the tempo of a mono sample buffer. It never fails:
// degenerate inputs produce the bounded fallback estimates documented on
// EstimateTempo.
func (a *Analyzer) Analyze(samples []float64, sampleRate, sensitivity float64) Estimate {
	// Filtering the full track would be wasted work; only the analysis
	// window is ever inspected downstream.
	if window := int(a.params.WindowSeconds * sampleRate); window > 0 && window < len(samples) {
		samples = samples[:window]
	}

	if a.lowBand {
		samples = LowBandFilter(samples, sampleRate, a.lowBandCutoffHz)
	}

	smoothed := Preprocess(samples)
	peaks := DetectPeaks(smoothed, sampleRate, sensitivity, a.params)
	est := EstimateTempo(peaks, sampleRate)

	applog.Debugf("analysis: %d peaks over %.1fs window, %.1f BPM (confidence %.2f)",
		len(peaks), float64(len(samples))/sampleRate, est.BPM, est.Confidence)

	return est
}
