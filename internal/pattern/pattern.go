// Package pattern places notes on a beat grid. It is the only place in the
// module allowed to use randomness; every draw comes from the injected source.
package pattern

import (
	"fmt"
	"math/rand"

	"git.lost.host/meutraa/autochart/internal/game"
	"golang.org/x/exp/slices"
)

const (
	DefaultLanes = 4

	// TapOnlyTail is the number of closing beats that never start a hold.
	TapOnlyTail = 4

	FallbackHold = 0.5 // seconds
	MaxHoldBeats = 4
)

type Generator struct {
	Lanes   int
	Profile game.Profile
	Rand    *rand.Rand
}

// New validates the profile and lane count up front.
func New(lanes int, profile game.Profile, rng *rand.Rand) (*Generator, error) {
	if lanes < 1 {
		return nil, fmt.Errorf("%w: lane count %d", game.ErrConfig, lanes)
	}
	if err := profile.Validate(); nil != err {
		return nil, err
	}
	if nil == rng {
		return nil, fmt.Errorf("%w: no random source", game.ErrConfig)
	}
	return &Generator{Lanes: lanes, Profile: profile, Rand: rng}, nil
}

// Generate emits notes for the grid, sorted by time then lane.
func (g *Generator) Generate(grid game.BeatGrid) []game.Note {
	notes := []game.Note{}
	lastLane := -1
	patternIndex := 0

	for i, time := range grid {
		if g.Rand.Float64() >= g.Profile.NoteDensity {
			continue
		}

		lanes := g.lanes(g.count(patternIndex), lastLane)
		for _, lane := range lanes {
			note := game.Note{Time: time, Lane: lane, Kind: g.kind(i, len(grid))}
			if note.Kind == game.Hold {
				note.Duration = g.holdDuration(i, grid)
			}
			notes = append(notes, note)
		}

		if len(lanes) > 0 {
			lastLane = lanes[len(lanes)-1]
		}
		patternIndex++
	}

	// Lanes within a beat are already ascending, so a stable sort by time
	// leaves same-time notes ordered by lane.
	slices.SortStableFunc(notes, func(a, b game.Note) bool {
		return a.Time < b.Time
	})
	return notes
}

// count decides how many simultaneous notes a pattern gets.
func (g *Generator) count(patternIndex int) int {
	max := g.Profile.MaxSimultaneousNotes
	if patternIndex%4 == 0 && g.Rand.Float64() < 0.3 {
		if max < 2 {
			return max
		}
		return 2
	}
	if patternIndex%8 == 0 && g.Rand.Float64() < 0.2 {
		return max
	}
	return 1
}

// lanes draws count distinct lanes. Below full complexity the candidates are
// kept within complexity+1 of the previous lane.
func (g *Generator) lanes(count, lastLane int) []int {
	available := make([]int, 0, g.Lanes)
	complexity := g.Profile.PatternComplexity
	if lastLane >= 0 && complexity < 3 {
		for l := 0; l < g.Lanes; l++ {
			if game.Abs(l-lastLane) <= complexity+1 {
				available = append(available, l)
			}
		}
	}
	if len(available) == 0 {
		for l := 0; l < g.Lanes; l++ {
			available = append(available, l)
		}
	}

	lanes := make([]int, 0, count)
	for len(lanes) < count && len(available) > 0 {
		idx := g.Rand.Intn(len(available))
		lanes = append(lanes, available[idx])
		available = append(available[:idx], available[idx+1:]...)
	}
	slices.Sort(lanes)
	return lanes
}

func (g *Generator) kind(beat, beats int) game.NoteKind {
	if beat >= beats-TapOnlyTail {
		return game.Tap
	}
	if g.Rand.Float64() < g.Profile.HoldNoteChance {
		return game.Hold
	}
	return game.Tap
}

// holdDuration spans 1 to MaxHoldBeats beats, clamped to the end of the grid.
func (g *Generator) holdDuration(beat int, grid game.BeatGrid) float64 {
	beats := 1 + g.Rand.Intn(MaxHoldBeats)
	end := game.Clamp(beat+beats, beat, len(grid)-1)
	if end <= beat {
		return FallbackHold
	}
	if span := grid.Span(beat, end); span > 0 {
		return span
	}
	return FallbackHold
}
