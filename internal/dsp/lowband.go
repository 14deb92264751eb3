// SPDX-License-Identifier: MIT
package dsp

import (
	"gonum.org/v1/gonum/dsp/fourier"

	"github.com/Arcadesys/doctorfeelgood-sub001/pkg/bitint"
)

// LowBandFilter returns a copy of samples with energy above cutoffHz
// removed. Kick and snare attacks dominate the band below a few hundred Hz,
// so running peak extraction on the filtered signal isolates the rhythm
// section on dense mixes.
//
// The signal is zero-padded to a power-of-two length, transformed once,
// truncated in the frequency domain, and inverse-transformed. Buffers too
// short to carry anything below the cutoff are returned as unmodified
// copies.
func LowBandFilter(samples []float64, sampleRate, cutoffHz float64) []float64 {
	out := make([]float64, len(samples))
	copy(out, samples)
	if len(samples) < 2 || sampleRate <= 0 || cutoffHz <= 0 {
		return out
	}

	n := bitint.NextPowerOfTwo(len(samples))
	padded := make([]float64, n)
	copy(padded, samples)

	fft := fourier.NewFFT(n)
	coeffs := fft.Coefficients(nil, padded)

	// Bin i covers frequency fft.Freq(i) * sampleRate.
	for i := range coeffs {
		if fft.Freq(i)*sampleRate > cutoffHz {
			coeffs[i] = 0
		}
	}

	restored := fft.Sequence(nil, coeffs)
	// Sequence returns the unnormalized inverse, scaled by n.
	scale := 1 / float64(n)
	for i := range out {
		out[i] = restored[i] * scale
	}
	return out
}
