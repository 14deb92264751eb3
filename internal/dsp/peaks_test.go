// SPDX-License-Identifier: MIT
package dsp

import (
	"testing"

	"github.com/Arcadesys/doctorfeelgood-sub001/pkg/utils"
)

const peakTestRate = 1000.0 // 1 kHz keeps sample indices readable

func TestDetectPeaksPulseTrain(t *testing.T) {
	// 20 pulses, 500 samples (0.5 s) apart.
	raw := utils.GeneratePulseTrain(20, 500, 11000)
	smoothed := Preprocess(raw)

	peaks := DetectPeaks(smoothed, peakTestRate, 0, DefaultParams())

	if len(peaks) != 20 {
		t.Fatalf("peak count = %d, want 20", len(peaks))
	}
	for i := 1; i < len(peaks); i++ {
		if peaks[i] <= peaks[i-1] {
			t.Fatalf("peaks not strictly increasing at %d: %d then %d", i, peaks[i-1], peaks[i])
		}
		if spacing := peaks[i] - peaks[i-1]; spacing < 100 {
			t.Errorf("peaks %d and %d only %d samples apart, want >= 100", i-1, i, spacing)
		}
	}
}

func TestDetectPeaksNothingAboveThreshold(t *testing.T) {
	samples := make([]float64, 2000)
	for i := range samples {
		samples[i] = 0.1 // everything below the 0.3 floor
	}

	peaks := DetectPeaks(samples, peakTestRate, 0, DefaultParams())
	if len(peaks) != 0 {
		t.Errorf("expected no peaks, got %d", len(peaks))
	}
}

func TestDetectPeaksSensitivitySweepsThreshold(t *testing.T) {
	// One pulse peaking at 0.5: visible at the 0.3 floor, invisible at the
	// 0.7 ceiling.
	samples := make([]float64, 1000)
	samples[498] = 0.3
	samples[499] = 0.4
	samples[500] = 0.5
	samples[501] = 0.4
	samples[502] = 0.3

	if peaks := DetectPeaks(samples, peakTestRate, 0, DefaultParams()); len(peaks) != 1 {
		t.Errorf("sensitivity 0: peak count = %d, want 1", len(peaks))
	}
	if peaks := DetectPeaks(samples, peakTestRate, 1, DefaultParams()); len(peaks) != 0 {
		t.Errorf("sensitivity 1: peak count = %d, want 0", len(peaks))
	}
}

func TestDetectPeaksMinimumSpacing(t *testing.T) {
	// Two pulses 50 samples apart at 1 kHz: inside the 0.1 s guard, so the
	// greedy pass keeps only the first.
	samples := utils.GeneratePulseTrainAt([]int{400, 450}, 1000)

	peaks := DetectPeaks(samples, peakTestRate, 0, DefaultParams())
	if len(peaks) != 1 {
		t.Fatalf("peak count = %d, want 1", len(peaks))
	}
	if peaks[0] != 400 {
		t.Errorf("kept peak at %d, want the earlier pulse at 400", peaks[0])
	}
}

func TestDetectPeaksWindowCap(t *testing.T) {
	// Pulses before and after the 30 s window boundary (30000 samples at
	// 1 kHz); only the leading segment is analyzed.
	samples := utils.GeneratePulseTrainAt([]int{10000, 20000, 29000, 31000, 35000}, 40000)

	peaks := DetectPeaks(samples, peakTestRate, 0, DefaultParams())
	if len(peaks) != 3 {
		t.Fatalf("peak count = %d, want 3 (window capped)", len(peaks))
	}
	for _, p := range peaks {
		if p >= 30000 {
			t.Errorf("peak %d lies beyond the analysis window", p)
		}
	}
}

func TestDetectPeaksOutOfRangeSensitivityClamped(t *testing.T) {
	samples := utils.GeneratePulseTrainAt([]int{500}, 1000)

	low := DetectPeaks(samples, peakTestRate, -2, DefaultParams())
	high := DetectPeaks(samples, peakTestRate, 0, DefaultParams())
	if len(low) != len(high) {
		t.Errorf("sensitivity -2 found %d peaks, sensitivity 0 found %d; want equal", len(low), len(high))
	}
}
