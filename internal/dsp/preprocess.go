// SPDX-License-Identifier: MIT
/*
Package dsp implements the offline beat analysis pipeline:
normalization and smoothing of raw samples, amplitude peak extraction,
and tempo estimation from inter-peak intervals.

The whole pipeline is one-shot and allocation-heavy by design. It runs
once per loaded track, bounded to a fixed leading window of the signal,
and never on the scheduler tick path.
*/
package dsp

import "math"

// smoothTaps is the width of the centered moving average applied after
// normalization. Five taps damps single-sample spikes that would otherwise
// register as false peaks, without smearing genuine onsets.
const smoothTaps = 5

// Preprocess returns a copy of samples normalized so the global peak maps to
// 1.0, then smoothed with a centered moving average. A silent buffer is only
// copied, and a buffer shorter than the smoothing window is returned as an
// unmodified copy. The input is never mutated.
func Preprocess(samples []float64) []float64 {
	out := make([]float64, len(samples))
	copy(out, samples)
	if len(out) < smoothTaps {
		return out
	}

	normalize(out)
	smooth(out)
	return out
}

// normalize scales the buffer in place so max |sample| == 1. No-op when the
// buffer is silent.
func normalize(samples []float64) {
	var peak float64
	for _, s := range samples {
		if a := math.Abs(s); a > peak {
			peak = a
		}
	}
	if peak == 0 {
		return
	}
	for i := range samples {
		samples[i] /= peak
	}
}

// smooth applies the centered moving average in place. The first and last
// two samples fall outside the window and are left untouched.
func smooth(samples []float64) {
	half := smoothTaps / 2
	prev := make([]float64, len(samples))
	copy(prev, samples)

	for i := half; i < len(samples)-half; i++ {
		var sum float64
		for j := i - half; j <= i+half; j++ {
			sum += prev[j]
		}
		samples[i] = sum / smoothTaps
	}
}
