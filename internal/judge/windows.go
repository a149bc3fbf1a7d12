package judge

import (
	"fmt"
	"time"

	"git.lost.host/meutraa/autochart/internal/game"
)

// Windows are the timing tolerances for each judgement, compared against the
// absolute distance between an input and a note target.
type Windows struct {
	Perfect time.Duration
	Great   time.Duration
	Good    time.Duration

	// Miss admits an input to a note at all. Notes older than this are
	// resolved as misses by Sweep.
	Miss time.Duration
}

func DefaultWindows() Windows {
	return Windows{
		Perfect: 50 * time.Millisecond,
		Great:   100 * time.Millisecond,
		Good:    150 * time.Millisecond,
		Miss:    200 * time.Millisecond,
	}
}

func (w Windows) Validate() error {
	if w.Perfect <= 0 || w.Perfect >= w.Great || w.Great >= w.Good || w.Good >= w.Miss {
		return fmt.Errorf("%w: judgement windows must be ascending, got %v/%v/%v/%v",
			game.ErrConfig, w.Perfect, w.Great, w.Good, w.Miss)
	}
	return nil
}

// Classify an absolute distance that has already been admitted by the miss
// threshold.
func (w Windows) Classify(distance time.Duration) game.Judgement {
	distance = game.Abs(distance)
	switch {
	case distance <= w.Perfect:
		return game.Perfect
	case distance <= w.Great:
		return game.Great
	case distance <= w.Good:
		return game.Good
	}
	return game.Miss
}
