package session

import (
	"fmt"
	"time"

	"git.lost.host/meutraa/autochart/internal/clock"
	"git.lost.host/meutraa/autochart/internal/game"
	"git.lost.host/meutraa/autochart/internal/score"
)

// Replay scores a recorded input log against a chart without audio. The
// clock jumps from one event to the next: an input, the moment a note ages
// past the miss threshold, or the end of the track. Nothing is judged in
// between, so the outcomes match a live play ticked at any finer period.
func Replay(chart *game.Chart, inputs []game.Input, opts Options) (score.Result, error) {
	// Recorded presses already carry the offset.
	opts.InputOffset = 0
	source := &clock.Manual{}
	s, err := New(source, opts)
	if nil != err {
		return score.Result{}, err
	}
	length := game.Seconds(chart.Length()) + opts.Windows.Miss + time.Millisecond
	for _, in := range inputs {
		if in.HitTime > length {
			length = in.HitTime + time.Millisecond
		}
	}
	track := &clock.SilentTrack{Duration: length, Source: source}
	if err := s.Load(chart, track); nil != err {
		return score.Result{}, err
	}
	// Presses made during a lead in have negative times.
	start := time.Duration(0)
	if len(inputs) > 0 && inputs[0].HitTime < 0 {
		start = inputs[0].HitTime
	}
	if err := s.Start(start); nil != err {
		return score.Result{}, err
	}

	// Notes are ordered by time, so their miss deadlines ascend.
	deadlines := make([]time.Duration, len(chart.Notes))
	for i := range chart.Notes {
		deadlines[i] = chart.Notes[i].Target() + opts.Windows.Miss + 1
	}

	now, i, d := start, 0, 0
	for s.State() == Playing {
		if i < len(inputs) && inputs[i].HitTime < now {
			return score.Result{}, fmt.Errorf("%w: input %d at %v is out of order", game.ErrSerialization, i, inputs[i].HitTime)
		}
		for d < len(deadlines) && deadlines[d] <= now {
			d++
		}
		next := length
		if d < len(deadlines) && deadlines[d] < next {
			next = deadlines[d]
		}
		if i < len(inputs) && inputs[i].HitTime < next {
			next = inputs[i].HitTime
		}
		source.Set(next - start)
		for ; i < len(inputs) && inputs[i].HitTime == next; i++ {
			s.Press(inputs[i].Lane)
		}
		if err := s.Tick(); nil != err {
			return score.Result{}, err
		}
		now = next
	}
	return s.Result(), nil
}
