package game

import (
	"fmt"
	"strings"
)

type Difficulty uint8

const (
	Easy Difficulty = iota
	Normal
	Hard
	Custom
)

var difficultyNames = map[Difficulty]string{
	Easy:   "easy",
	Normal: "normal",
	Hard:   "hard",
	Custom: "custom",
}

func (d Difficulty) String() string {
	return difficultyNames[d]
}

func ParseDifficulty(s string) (Difficulty, error) {
	for d, name := range difficultyNames {
		if strings.EqualFold(s, name) {
			return d, nil
		}
	}
	return Custom, fmt.Errorf("%w: unknown difficulty %q", ErrConfig, s)
}

// Profile controls how dense and how complex a generated chart is.
type Profile struct {
	Tag                  string
	NoteDensity          float64 // Chance a beat receives notes, [0,1]
	MaxSimultaneousNotes int     // [1,4]
	HoldNoteChance       float64 // [0,1]
	PatternComplexity    int     // 1 keeps lanes close together, 3 allows any jump
}

var presets = map[Difficulty]Profile{
	Easy:   {Tag: "easy", NoteDensity: 0.5, MaxSimultaneousNotes: 1, HoldNoteChance: 0, PatternComplexity: 1},
	Normal: {Tag: "normal", NoteDensity: 0.75, MaxSimultaneousNotes: 2, HoldNoteChance: 0.1, PatternComplexity: 2},
	Hard:   {Tag: "hard", NoteDensity: 1, MaxSimultaneousNotes: 3, HoldNoteChance: 0.2, PatternComplexity: 3},
}

// Preset returns the canonical profile for a difficulty. Custom has no preset
// and falls back to Normal.
func Preset(d Difficulty) Profile {
	p, ok := presets[d]
	if !ok {
		return presets[Normal]
	}
	return p
}

// NewProfile builds a custom profile, rejecting out of range parameters.
func NewProfile(density float64, maxSimultaneous int, holdChance float64, complexity int) (Profile, error) {
	p := Profile{
		Tag:                  Custom.String(),
		NoteDensity:          density,
		MaxSimultaneousNotes: maxSimultaneous,
		HoldNoteChance:       holdChance,
		PatternComplexity:    complexity,
	}
	return p, p.Validate()
}

func (p Profile) Validate() error {
	if p.NoteDensity < 0 || p.NoteDensity > 1 {
		return fmt.Errorf("%w: note density %v not in [0,1]", ErrConfig, p.NoteDensity)
	}
	if p.MaxSimultaneousNotes < 1 || p.MaxSimultaneousNotes > 4 {
		return fmt.Errorf("%w: max simultaneous notes %v not in [1,4]", ErrConfig, p.MaxSimultaneousNotes)
	}
	if p.HoldNoteChance < 0 || p.HoldNoteChance > 1 {
		return fmt.Errorf("%w: hold note chance %v not in [0,1]", ErrConfig, p.HoldNoteChance)
	}
	if p.PatternComplexity < 1 || p.PatternComplexity > 3 {
		return fmt.Errorf("%w: pattern complexity %v not in [1,3]", ErrConfig, p.PatternComplexity)
	}
	if p.Tag == "" {
		return fmt.Errorf("%w: profile has no difficulty tag", ErrConfig)
	}
	return nil
}
