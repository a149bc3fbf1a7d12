package api

import (
	"fmt"
	"math"
	"time"

	"git.lost.host/meutraa/autochart/internal/game"
)

const (
	// MaxLeadIn is how far before the song a recorded press may lie.
	MaxLeadIn = 10 * time.Second
	// MaxReplayBody caps the size of a posted input log.
	MaxReplayBody = 4 << 20
)

// Input is a lane press on the wire, timed in milliseconds of song time.
type Input struct {
	Lane int     `json:"lane"`
	Time float64 `json:"time"`
}

func (in Input) Input() game.Input {
	return game.Input{Lane: in.Lane, HitTime: time.Duration(in.Time * float64(time.Millisecond))}
}

// inputs converts a posted log, rejecting times outside of
// [-MaxLeadIn, end of chart + miss].
func inputs(posted []Input, chart *game.Chart, miss time.Duration) ([]game.Input, error) {
	lo := float64(-MaxLeadIn) / float64(time.Millisecond)
	hi := float64(game.Seconds(chart.Length())+miss) / float64(time.Millisecond)
	ins := make([]game.Input, len(posted))
	for i, in := range posted {
		if math.IsNaN(in.Time) || math.IsInf(in.Time, 0) || in.Time < lo || in.Time > hi {
			return nil, fmt.Errorf("%w: input %d at %vms is outside [%v, %v]", game.ErrSerialization, i, in.Time, lo, hi)
		}
		ins[i] = in.Input()
	}
	return ins, nil
}
