package game

import "fmt"

// Chart is the persisted result of the analysis pipeline and the only thing
// the real-time engine needs to play a track.
type Chart struct {
	SourceID       string  `json:"sourceId"`
	AudioReference string  `json:"audioReference"`
	BPM            float64 `json:"bpm"`
	Difficulty     string  `json:"difficultyTag"`
	Notes          []Note  `json:"notes"`
}

func (c *Chart) NoteCount() int {
	return len(c.Notes)
}

func (c *Chart) HoldCount() int {
	count := 0
	for _, n := range c.Notes {
		if n.Kind == Hold {
			count++
		}
	}
	return count
}

// Length is the time of the last note end, 0 for an empty chart.
func (c *Chart) Length() float64 {
	end := 0.0
	for _, n := range c.Notes {
		if e := n.Time + n.Duration; e > end {
			end = e
		}
	}
	return end
}

// Validate checks the ordering and value ranges a loaded chart must satisfy.
func (c *Chart) Validate(lanes int) error {
	if c.SourceID == "" {
		return fmt.Errorf("%w: missing source id", ErrSerialization)
	}
	if c.BPM < 0 {
		return fmt.Errorf("%w: negative bpm %v", ErrSerialization, c.BPM)
	}
	for i, n := range c.Notes {
		if n.Time < 0 || n.Duration < 0 {
			return fmt.Errorf("%w: note %d has negative time", ErrSerialization, i)
		}
		if n.Lane < 0 || (lanes > 0 && n.Lane >= lanes) {
			return fmt.Errorf("%w: note %d lane %d out of range", ErrSerialization, i, n.Lane)
		}
		if n.Kind == Tap && n.Duration != 0 {
			return fmt.Errorf("%w: tap note %d has a duration", ErrSerialization, i)
		}
		if i > 0 {
			prev := c.Notes[i-1]
			if n.Time < prev.Time || (n.Time == prev.Time && n.Lane < prev.Lane) {
				return fmt.Errorf("%w: note %d out of order", ErrSerialization, i)
			}
		}
	}
	return nil
}
