// Package utils provides shared test helpers: synthetic signal generators
// and recording doubles for the transport interface.
package utils

import (
	"math"
	"sync"
)

// GeneratePulseTrain builds a buffer with sharp unit-amplitude pulses every
// interval samples, starting at index interval. Each pulse is a single
// dominant sample flanked by smaller shoulders so it survives smoothing as a
// strict local maximum.
func GeneratePulseTrain(count, interval, size int) []float64 {
	buffer := make([]float64, size)
	for i := 0; i < count; i++ {
		center := (i + 1) * interval
		if center+2 >= size || center-2 < 0 {
			break
		}
		buffer[center-2] = 0.3
		buffer[center-1] = 0.6
		buffer[center] = 1.0
		buffer[center+1] = 0.6
		buffer[center+2] = 0.3
	}
	return buffer
}

// GeneratePulseTrainAt places pulses at the given sample positions.
func GeneratePulseTrainAt(positions []int, size int) []float64 {
	buffer := make([]float64, size)
	for _, center := range positions {
		if center+2 >= size || center-2 < 0 {
			continue
		}
		buffer[center-2] = 0.3
		buffer[center-1] = 0.6
		buffer[center] = 1.0
		buffer[center+1] = 0.6
		buffer[center+2] = 0.3
	}
	return buffer
}

// GenerateSineWave builds a unit-amplitude sine at the given frequency.
func GenerateSineWave(size int, sampleRate, frequency float64) []float64 {
	buffer := make([]float64, size)
	for i := range buffer {
		t := float64(i) / sampleRate
		buffer[i] = math.Sin(2 * math.Pi * frequency * t)
	}
	return buffer
}

// MockTransport records everything sent through it for later inspection.
// Safe for concurrent use; sessions send from their tick goroutine.
type MockTransport struct {
	mu   sync.Mutex
	sent []any
}

// Send stores the payload instead of transmitting.
func (m *MockTransport) Send(data any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, data)
	return nil
}

// Sent returns a snapshot of every payload sent so far.
func (m *MockTransport) Sent() []any {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]any, len(m.sent))
	copy(out, m.sent)
	return out
}

// Close is a no-op.
func (m *MockTransport) Close() error { return nil }
