// SPDX-License-Identifier: MIT
package dsp

import (
	"sort"

	"gonum.org/v1/gonum/stat"
)

// Plausible musical tempo range. Raw estimates outside it are clamped, never
// rejected.
const (
	MinBPM = 60.0
	MaxBPM = 180.0

	// DefaultBPM is reported when there are too few peaks to measure a
	// tempo at all.
	DefaultBPM = 120.0

	// neutralConfidence is reported when there are peaks enough for a BPM
	// but too few intervals to judge their consistency.
	neutralConfidence = 0.5
)

// Estimate is a tempo reading derived from detected peaks. BPM is always in
// [MinBPM, MaxBPM]; Confidence is a [0,1] heuristic for how regular the
// inter-peak intervals were.
type Estimate struct {
	BPM        float64 `json:"bpm"`
	Confidence float64 `json:"confidence"`
}

// EstimateTempo converts peak positions into a tempo estimate. The median
// inter-peak interval is used rather than the mean so that one or two
// spurious or missed peaks cannot drag the estimate. Degenerate inputs never
// fail: fewer than 2 peaks yields the {120, 0} fallback, and fewer than 4
// peaks yields a neutral 0.5 confidence.
func EstimateTempo(peaks []int, sampleRate float64) Estimate {
	if len(peaks) < 2 {
		return Estimate{BPM: DefaultBPM, Confidence: 0}
	}

	intervals := make([]float64, len(peaks)-1)
	for i := range intervals {
		intervals[i] = float64(peaks[i+1] - peaks[i])
	}

	bpm := 60 * sampleRate / median(intervals)
	if bpm < MinBPM {
		bpm = MinBPM
	} else if bpm > MaxBPM {
		bpm = MaxBPM
	}

	return Estimate{BPM: bpm, Confidence: intervalConfidence(intervals, len(peaks))}
}

// intervalConfidence maps the coefficient of variation of the intervals to
// [0,1]: perfectly regular intervals approach 1, and intervals that vary by
// half the mean or more collapse to 0.
func intervalConfidence(intervals []float64, peakCount int) float64 {
	if peakCount < 4 {
		return neutralConfidence
	}

	mean, stddev := stat.MeanStdDev(intervals, nil)
	if mean == 0 {
		return 0
	}
	cv := stddev / mean

	conf := 1 - 2*cv
	if conf < 0 {
		return 0
	}
	if conf > 1 {
		return 1
	}
	return conf
}

// median returns the middle value of vs (mean of the two middle values for
// an even count). The input is not modified.
func median(vs []float64) float64 {
	sorted := make([]float64, len(vs))
	copy(sorted, vs)
	sort.Float64s(sorted)

	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}
	return sorted[mid]
}
