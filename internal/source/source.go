// SPDX-License-Identifier: MIT
/*
Package source handles the loaded audio track: decoding WAV files into an
immutable mono sample buffer, and generating the built-in sample track so a
session can run without any user file.

A SampleBuffer is decoded once per AudioSource and discarded when the source
is replaced. Remote URLs are fetched by an external collaborator; by the
time a source reaches this package its reference is always a local path.
*/
package source

import (
	"fmt"
	"math"
	"os"
	"time"

	"github.com/go-audio/wav"
)

// Origin identifies where the loaded track came from.
type Origin string

const (
	OriginUpload Origin = "upload"
	OriginSample Origin = "sample"
	OriginRemote Origin = "remote-url"
)

// SampleBuffer holds decoded mono audio. Immutable after creation.
type SampleBuffer struct {
	Data       []float64
	SampleRate float64
}

// Duration returns the playable length of the buffer.
func (b *SampleBuffer) Duration() time.Duration {
	if b.SampleRate <= 0 {
		return 0
	}
	return time.Duration(float64(len(b.Data)) / b.SampleRate * float64(time.Second))
}

// AudioSource is the loaded track. It exclusively owns its decoded buffer;
// collaborators hold only read references obtained via Buffer.
type AudioSource struct {
	origin Origin
	ref    string
	title  string
	buf    *SampleBuffer
}

// Load opens the referenced track and decodes it. OriginSample ignores ref
// and generates the built-in click-train fixture.
func Load(origin Origin, ref, title string) (*AudioSource, error) {
	src := &AudioSource{origin: origin, ref: ref, title: title}

	switch origin {
	case OriginSample:
		src.buf = generateSampleTrack()
		if src.title == "" {
			src.title = "Built-in sample"
		}
	case OriginUpload, OriginRemote:
		buf, err := decodeWAV(ref)
		if err != nil {
			return nil, err
		}
		src.buf = buf
	default:
		return nil, fmt.Errorf("unknown source origin %q", origin)
	}

	return src, nil
}

// Origin returns where the track came from.
func (s *AudioSource) Origin() Origin { return s.origin }

// Title returns the display title, falling back to the reference.
func (s *AudioSource) Title() string {
	if s.title != "" {
		return s.title
	}
	return s.ref
}

// Buffer returns the decoded samples, or nil after Close.
func (s *AudioSource) Buffer() *SampleBuffer { return s.buf }

// Close releases the decoded buffer. Safe to call more than once; sources
// must be closed when superseded so repeated track swaps cannot grow memory
// without bound.
func (s *AudioSource) Close() {
	s.buf = nil
}

// decodeWAV reads a WAV file into a mono SampleBuffer. Multi-channel input
// is mixed down by averaging, and integer samples are scaled to [-1, 1] by
// the source bit depth.
func decodeWAV(path string) (*SampleBuffer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open audio file: %w", err)
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	pcm, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	if pcm == nil || pcm.Format == nil || len(pcm.Data) == 0 {
		return nil, fmt.Errorf("no audio data in %s", path)
	}

	channels := pcm.Format.NumChannels
	if channels < 1 {
		channels = 1
	}
	bitDepth := pcm.SourceBitDepth
	if bitDepth <= 0 {
		bitDepth = 16
	}
	scale := float64(int(1) << (bitDepth - 1))

	frames := len(pcm.Data) / channels
	data := make([]float64, frames)
	for i := 0; i < frames; i++ {
		var sum float64
		for c := 0; c < channels; c++ {
			sum += float64(pcm.Data[i*channels+c]) / scale
		}
		data[i] = sum / float64(channels)
	}

	return &SampleBuffer{
		Data:       data,
		SampleRate: float64(pcm.Format.SampleRate),
	}, nil
}

// Sample track parameters: a 120 BPM click train, long enough to fill the
// analysis window.
const (
	sampleTrackBPM     = 120.0
	sampleTrackSeconds = 32
	sampleTrackRate    = 44100.0
)

// generateSampleTrack synthesizes the built-in track: short decaying 1 kHz
// bursts on a steady 120 BPM grid over a quiet noise floor.
func generateSampleTrack() *SampleBuffer {
	size := int(sampleTrackSeconds * sampleTrackRate)
	data := make([]float64, size)

	beatInterval := int(60.0 / sampleTrackBPM * sampleTrackRate)
	burstLen := int(0.03 * sampleTrackRate)

	for start := 0; start < size; start += beatInterval {
		for i := 0; i < burstLen && start+i < size; i++ {
			t := float64(i) / sampleTrackRate
			decay := math.Exp(-t * 120)
			data[start+i] = 0.9 * decay * math.Sin(2*math.Pi*1000*t)
		}
	}

	return &SampleBuffer{Data: data, SampleRate: sampleTrackRate}
}
