// SPDX-License-Identifier: MIT
package dsp

// Params holds the peak detection tuning constants. They are empirically
// chosen values, exposed as configuration rather than hard-coded, because
// they tune detection quality rather than enforce correctness.
type Params struct {
	ThresholdFloor    float64 // detection threshold at sensitivity 0
	ThresholdSpan     float64 // threshold sweep width across the sensitivity range
	MinSpacingSeconds float64 // minimum distance between accepted peaks
	WindowSeconds     float64 // leading segment of the track to analyze
}

// DefaultParams returns the stock tuning: threshold swept across [0.3, 0.7]
// by sensitivity, 0.1 s minimum peak spacing, 30 s analysis window.
func DefaultParams() Params {
	return Params{
		ThresholdFloor:    0.3,
		ThresholdSpan:     0.4,
		MinSpacingSeconds: 0.1,
		WindowSeconds:     30,
	}
}

// DetectPeaks scans the leading window of a preprocessed buffer for onset
// peaks. A sample qualifies when it exceeds the sensitivity-derived
// threshold, is strictly greater than its two neighbors on each side, and
// lies at least the minimum spacing after the previously accepted peak.
//
// The scan is a greedy single pass: accepted peaks are never revisited, and
// the returned indices are strictly increasing. A buffer with no samples
// above the threshold yields an empty result.
func DetectPeaks(samples []float64, sampleRate, sensitivity float64, p Params) []int {
	if sensitivity < 0 {
		sensitivity = 0
	} else if sensitivity > 1 {
		sensitivity = 1
	}
	threshold := p.ThresholdFloor + sensitivity*p.ThresholdSpan

	end := len(samples)
	if window := int(p.WindowSeconds * sampleRate); window > 0 && window < end {
		end = window
	}
	minSpacing := int(p.MinSpacingSeconds * sampleRate)

	var peaks []int
	lastPeak := -minSpacing - 1

	for i := 2; i < end-2; i++ {
		s := samples[i]
		if s <= threshold {
			continue
		}
		// 5-point local maximum test.
		if s <= samples[i-1] || s <= samples[i-2] || s <= samples[i+1] || s <= samples[i+2] {
			continue
		}
		if i-lastPeak < minSpacing {
			continue
		}
		peaks = append(peaks, i)
		lastPeak = i
	}

	return peaks
}
