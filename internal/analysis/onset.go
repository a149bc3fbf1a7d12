// Package analysis turns decoded audio into onsets, a tempo and a beat grid.
// Nothing in here fails: degenerate input degrades to empty results and the
// fallback tempo.
package analysis

import (
	"math"

	"git.lost.host/meutraa/autochart/internal/game"
)

const (
	WindowSize = 1024
	HopSize    = 512

	// DefaultSampleRate is assumed when a buffer does not carry one.
	DefaultSampleRate = 44100

	OnsetThreshold   = 0.3
	MinOnsetInterval = 0.1 // seconds
)

// Mono averages each frame's channels into one sample.
func Mono(pcm *game.PCM) []float64 {
	channels := pcm.Channels
	if channels <= 1 {
		mono := make([]float64, len(pcm.Samples))
		copy(mono, pcm.Samples)
		return mono
	}
	mono := make([]float64, pcm.Frames())
	for i := range mono {
		sum := 0.0
		for ch := 0; ch < channels; ch++ {
			sum += pcm.Samples[i*channels+ch]
		}
		mono[i] = sum / float64(channels)
	}
	return mono
}

// Envelope computes the RMS energy of each window, normalized by the loudest
// window. Buffers shorter than one window have no frames.
func Envelope(samples []float64) []float64 {
	if len(samples) < WindowSize {
		return []float64{}
	}
	frames := (len(samples)-WindowSize)/HopSize + 1
	envelope := make([]float64, frames)
	max := 0.0
	for i := range envelope {
		start := i * HopSize
		energy := 0.0
		for _, s := range samples[start : start+WindowSize] {
			energy += s * s
		}
		envelope[i] = math.Sqrt(energy / WindowSize)
		if envelope[i] > max {
			max = envelope[i]
		}
	}
	if max > 0 {
		for i := range envelope {
			envelope[i] /= max
		}
	}
	return envelope
}

// minOnsetFrames rounds up so accepted onsets are never closer than
// MinOnsetInterval.
func minOnsetFrames(sampleRate int) int {
	return int(math.Ceil(MinOnsetInterval * float64(sampleRate) / HopSize))
}

// FrameTime converts an envelope frame index to seconds.
func FrameTime(frame, sampleRate int) float64 {
	return float64(frame*HopSize) / float64(sampleRate)
}

// Onsets returns the times of strict local maxima above OnsetThreshold,
// skipping any peak too close to the previously accepted one.
func Onsets(envelope []float64, sampleRate int) []float64 {
	if sampleRate <= 0 {
		sampleRate = DefaultSampleRate
	}
	onsets := []float64{}
	minDistance := minOnsetFrames(sampleRate)
	last := -minDistance
	for i := 1; i < len(envelope)-1; i++ {
		e := envelope[i]
		if e <= OnsetThreshold || e <= envelope[i-1] || e <= envelope[i+1] {
			continue
		}
		if i-last < minDistance {
			continue
		}
		onsets = append(onsets, FrameTime(i, sampleRate))
		last = i
	}
	return onsets
}
