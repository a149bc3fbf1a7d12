// Package testdata holds deterministic fixtures shared by package tests.
package testdata

import (
	"encoding/json"

	"git.lost.host/meutraa/autochart/internal/game"
)

const (
	SampleRate = 44100
	Hop        = 512

	// ClickPeriod is 43 hops, about 120.19 BPM at 44.1kHz.
	ClickPeriod = 43 * Hop

	clickOffset = 100
	clickLength = 700
)

// Clicks renders count decaying clicks spaced period samples apart, the
// first one starting startHop hops into the buffer. The buffer is padded to
// tail extra seconds of silence after the last click.
func Clicks(channels, period, count, startHop int, tail float64) *game.PCM {
	if channels < 1 {
		channels = 1
	}
	frames := startHop*Hop + count*period + int(tail*SampleRate)
	samples := make([]float64, frames*channels)
	for c := 0; c < count; c++ {
		start := startHop*Hop + clickOffset + c*period
		for i := 0; i < clickLength && start+i < frames; i++ {
			// Alternate sign so the click has no DC offset.
			v := 1 - float64(i)/clickLength
			if i%2 == 1 {
				v = -v
			}
			for ch := 0; ch < channels; ch++ {
				samples[(start+i)*channels+ch] = v
			}
		}
	}
	return &game.PCM{Samples: samples, Channels: channels, SampleRate: SampleRate}
}

// ClickTime is the time of the envelope frame that peaks for click n.
func ClickTime(period, startHop, n int) float64 {
	return float64(startHop*Hop+n*period) / SampleRate
}

// Silence returns seconds of all-zero audio.
func Silence(channels int, seconds float64) *game.PCM {
	return &game.PCM{
		Samples:    make([]float64, int(seconds*SampleRate)*channels),
		Channels:   channels,
		SampleRate: SampleRate,
	}
}

// GetChart returns a small hand-written chart.
func GetChart() (*game.Chart, error) {
	var chart game.Chart
	if err := json.Unmarshal([]byte(data), &chart); nil != err {
		return nil, err
	}
	return &chart, nil
}

const data = `{
	"sourceId": "fixture",
	"audioReference": "fixture.wav",
	"bpm": 120,
	"difficultyTag": "normal",
	"notes": [
		{"time": 1.0, "lane": 0, "kind": "tap", "duration": 0},
		{"time": 1.5, "lane": 1, "kind": "tap", "duration": 0},
		{"time": 2.0, "lane": 0, "kind": "tap", "duration": 0},
		{"time": 2.0, "lane": 3, "kind": "tap", "duration": 0},
		{"time": 2.5, "lane": 2, "kind": "hold", "duration": 1.0},
		{"time": 3.0, "lane": 0, "kind": "tap", "duration": 0},
		{"time": 3.1, "lane": 0, "kind": "tap", "duration": 0},
		{"time": 4.0, "lane": 1, "kind": "tap", "duration": 0}
	]
}`
