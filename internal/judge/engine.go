// Package judge matches lane inputs to active notes and resolves notes that
// were never struck.
package judge

import (
	"fmt"
	"time"

	"git.lost.host/meutraa/autochart/internal/game"
	"git.lost.host/meutraa/autochart/internal/schedule"
)

type Outcome struct {
	Judgement game.Judgement
	Note      *game.Note
	Index     int // Position of Note in the chart

	// Offset is the input time minus the target time, negative when early.
	// For notes resolved by aging it is the age at the sweep.
	Offset time.Duration
	Time   time.Duration // Clock time the outcome was produced at
}

type Engine struct {
	Windows Windows

	scheduler *schedule.Scheduler
	judged    []bool
	observers []func(Outcome)
}

func New(scheduler *schedule.Scheduler, windows Windows) *Engine {
	return &Engine{Windows: windows, scheduler: scheduler}
}

// Reset forgets every judgement, ready for a chart of n notes.
func (e *Engine) Reset(n int) {
	e.judged = make([]bool, n)
}

// Observe registers a callback for every outcome, called in judgement order.
func (e *Engine) Observe(f func(Outcome)) {
	e.observers = append(e.observers, f)
}

// Judged reports whether the chart note at index has an outcome.
func (e *Engine) Judged(index int) bool {
	return index < len(e.judged) && e.judged[index]
}

// Hit judges an input against the closest unjudged note on its lane. It
// returns false when no note is within the miss threshold. When two notes are
// equally distant the earlier one is judged.
func (e *Engine) Hit(input game.Input) (Outcome, bool) {
	var closest *schedule.ActiveNote
	distance := time.Duration(0)
	for _, n := range e.scheduler.Active() {
		if n.Judged || n.Lane() != input.Lane {
			continue
		}
		d := game.Abs(input.HitTime - n.Target())
		if d > e.Windows.Miss {
			continue
		}
		if nil == closest || d < distance || (d == distance && n.Target() < closest.Target()) {
			closest = n
			distance = d
		}
	}
	if nil == closest {
		return Outcome{}, false
	}
	offset := input.HitTime - closest.Target()
	return e.resolve(closest, e.Windows.Classify(offset), offset, input.HitTime), true
}

// Sweep resolves every unjudged note older than the miss threshold as a miss.
func (e *Engine) Sweep(now time.Duration) int {
	count := 0
	e.scheduler.Sweep(func(n *schedule.ActiveNote) bool {
		return !n.Judged && now-n.Target() > e.Windows.Miss
	}, func(n *schedule.ActiveNote) {
		e.emit(n, game.Miss, now-n.Target(), now)
		count++
	})
	return count
}

func (e *Engine) resolve(n *schedule.ActiveNote, j game.Judgement, offset, now time.Duration) Outcome {
	o := e.emit(n, j, offset, now)
	e.scheduler.Recycle(n)
	return o
}

func (e *Engine) emit(n *schedule.ActiveNote, j game.Judgement, offset, now time.Duration) Outcome {
	if n.Judged || e.Judged(n.Index) {
		panic(fmt.Sprintf("judge: note %d judged twice", n.Index))
	}
	if n.Index >= len(e.judged) {
		judged := make([]bool, n.Index+1)
		copy(judged, e.judged)
		e.judged = judged
	}
	n.Judged = true
	e.judged[n.Index] = true
	o := Outcome{
		Judgement: j,
		Note:      n.Note,
		Index:     n.Index,
		Offset:    offset,
		Time:      now,
	}
	for _, f := range e.observers {
		f(o)
	}
	return o
}
