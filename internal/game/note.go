package game

import (
	"fmt"
	"math"
	"time"
)

type NoteKind uint8

const (
	Tap NoteKind = iota
	Hold
)

func (k NoteKind) String() string {
	switch k {
	case Tap:
		return "tap"
	case Hold:
		return "hold"
	}
	return fmt.Sprintf("NoteKind(%d)", uint8(k))
}

func (k NoteKind) MarshalText() ([]byte, error) {
	if k != Tap && k != Hold {
		return nil, fmt.Errorf("%w: unknown note kind %d", ErrSerialization, uint8(k))
	}
	return []byte(k.String()), nil
}

func (k *NoteKind) UnmarshalText(b []byte) error {
	switch string(b) {
	case "tap":
		*k = Tap
	case "hold":
		*k = Hold
	default:
		return fmt.Errorf("%w: unknown note kind %q", ErrSerialization, b)
	}
	return nil
}

type Note struct {
	Time     float64  `json:"time"`     // Seconds from the start of the track
	Lane     int      `json:"lane"`     // The chart column
	Kind     NoteKind `json:"kind"`     // Tap or Hold
	Duration float64  `json:"duration"` // Hold length in seconds, 0 for taps
}

// Target is the time the note should be hit.
func (n *Note) Target() time.Duration {
	return Seconds(n.Time)
}

// End is the time a hold should be released, equal to Target for taps.
func (n *Note) End() time.Duration {
	return Seconds(n.Time + n.Duration)
}

// Seconds converts a chart timestamp to a clock duration.
func Seconds(s float64) time.Duration {
	return time.Duration(math.Round(s * float64(time.Second)))
}
