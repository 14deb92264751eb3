// SPDX-License-Identifier: MIT
package dsp

import (
	"math"
	"testing"
)

func TestPreprocessShortBufferUnmodified(t *testing.T) {
	tests := [][]float64{
		nil,
		{},
		{0.5},
		{0.5, -0.2},
		{0.1, 0.9, 0.3, 0.2},
	}

	for _, input := range tests {
		got := Preprocess(input)
		if len(got) != len(input) {
			t.Fatalf("length changed: got %d, want %d", len(got), len(input))
		}
		for i := range input {
			if got[i] != input[i] {
				t.Errorf("buffer of length %d: sample %d changed: got %v, want %v",
					len(input), i, got[i], input[i])
			}
		}
	}
}

func TestPreprocessDoesNotMutateInput(t *testing.T) {
	input := []float64{0, 0.1, 0.5, 0.1, 0, 0.2, 0.3, 0.1, 0, 0}
	saved := make([]float64, len(input))
	copy(saved, input)

	Preprocess(input)

	for i := range input {
		if input[i] != saved[i] {
			t.Fatalf("input mutated at %d: got %v, want %v", i, input[i], saved[i])
		}
	}
}

func TestNormalizePeakToUnit(t *testing.T) {
	samples := []float64{0.1, -0.4, 0.2, 0.1, -0.1}
	normalize(samples)

	var peak float64
	for _, s := range samples {
		if a := math.Abs(s); a > peak {
			peak = a
		}
	}
	if math.Abs(peak-1.0) > 1e-12 {
		t.Errorf("normalized peak = %v, want 1.0", peak)
	}
	// The negative extreme carried the peak; sign must survive.
	if samples[1] != -1.0 {
		t.Errorf("peak sample = %v, want -1.0", samples[1])
	}
}

func TestNormalizeSilentBufferNoOp(t *testing.T) {
	samples := make([]float64, 16)
	normalize(samples)
	for i, s := range samples {
		if s != 0 {
			t.Fatalf("silent buffer modified at %d: %v", i, s)
		}
	}
}

func TestSmoothDampsSpike(t *testing.T) {
	// A lone unit spike should be spread to 1/5 by the 5-tap average.
	samples := make([]float64, 11)
	samples[5] = 1.0

	smooth(samples)

	if math.Abs(samples[5]-0.2) > 1e-12 {
		t.Errorf("spike after smoothing = %v, want 0.2", samples[5])
	}
}

func TestSmoothLeavesEdgesUntouched(t *testing.T) {
	samples := []float64{0.7, 0.6, 0.1, 0.1, 0.1, 0.1, 0.1, 0.6, 0.7}
	smooth(samples)

	for _, i := range []int{0, 1, len(samples) - 2, len(samples) - 1} {
		want := 0.7
		if i == 1 || i == len(samples)-2 {
			want = 0.6
		}
		if samples[i] != want {
			t.Errorf("edge sample %d = %v, want %v", i, samples[i], want)
		}
	}
}
