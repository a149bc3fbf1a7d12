package analysis

import (
	"math"

	"git.lost.host/meutraa/autochart/internal/game"
	"golang.org/x/exp/slices"
)

const (
	FallbackBPM = 120.0
	MinBPM      = 60.0
	MaxBPM      = 200.0
)

// median of a sorted copy, averaging the middle pair for even lengths.
func median(values []float64) float64 {
	sorted := append([]float64(nil), values...)
	slices.Sort(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}
	return sorted[mid]
}

// EstimateBPM takes the median inter-onset interval, folds the tempo into
// [MinBPM, MaxBPM] by octaves and rounds to a whole BPM.
func EstimateBPM(onsets []float64) float64 {
	if len(onsets) < 2 {
		return FallbackBPM
	}
	intervals := make([]float64, len(onsets)-1)
	for i := 1; i < len(onsets); i++ {
		intervals[i-1] = onsets[i] - onsets[i-1]
	}
	interval := median(intervals)
	if interval <= 0 || math.IsNaN(interval) || math.IsInf(interval, 0) {
		return FallbackBPM
	}

	bpm := 60 / interval
	if math.IsInf(bpm, 0) {
		return FallbackBPM
	}
	for bpm < MinBPM {
		bpm *= 2
	}
	for bpm > MaxBPM {
		bpm /= 2
	}
	return game.Clamp(math.Round(bpm), MinBPM, MaxBPM)
}

// Grid steps from the first onset (or 0) by one beat until duration. A
// non-positive bpm degenerates to the onsets themselves.
func Grid(bpm float64, onsets []float64, duration float64) game.BeatGrid {
	if bpm <= 0 {
		return append(game.BeatGrid{}, onsets...)
	}
	first := 0.0
	if len(onsets) > 0 {
		first = onsets[0]
	}
	interval := 60 / bpm
	grid := game.BeatGrid{}
	for i := 0; ; i++ {
		// Multiply rather than accumulate so long tracks do not drift.
		t := first + float64(i)*interval
		if t >= duration {
			break
		}
		grid = append(grid, t)
	}
	return grid
}
