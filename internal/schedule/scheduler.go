// Package schedule spawns chart notes ahead of the playback clock, moves them
// and recycles them once they are judged.
package schedule

import (
	"time"

	"git.lost.host/meutraa/autochart/internal/game"
)

const (
	DefaultLeadTime  = 2 * time.Second
	DefaultFallSpeed = 5.0
)

type Scheduler struct {
	LeadTime  time.Duration
	FallSpeed float64

	pool   *Pool
	chart  *game.Chart
	cursor int
	active []*ActiveNote
}

func New(pool *Pool, lead time.Duration, speed float64) *Scheduler {
	return &Scheduler{LeadTime: lead, FallSpeed: speed, pool: pool}
}

// Load resets the cursor and recycles every active note.
func (s *Scheduler) Load(chart *game.Chart) {
	s.Clear()
	s.chart = chart
	s.cursor = 0
}

// Update spawns every note whose target is within the lead time of now and
// then moves the active notes.
func (s *Scheduler) Update(now time.Duration) error {
	if nil == s.chart {
		return nil
	}
	horizon := now + s.LeadTime
	for s.cursor < len(s.chart.Notes) {
		note := &s.chart.Notes[s.cursor]
		if note.Target() > horizon {
			break
		}
		n, err := s.pool.Get()
		if nil != err {
			return err
		}
		n.Note = note
		n.Index = s.cursor
		n.Active = true
		s.active = append(s.active, n)
		s.cursor++
	}
	for _, n := range s.active {
		n.Position = Position(n.Target(), now, s.FallSpeed)
	}
	return nil
}

// Position is how far above the judgement line a note is drawn.
func Position(target, now time.Duration, speed float64) float64 {
	return (target - now).Seconds() * speed
}

// Active returns the active notes in spawn order. The slice is reused, do
// not hold on to it across updates.
func (s *Scheduler) Active() []*ActiveNote {
	return s.active
}

// Recycle removes a note from the active set and returns it to the pool.
func (s *Scheduler) Recycle(n *ActiveNote) {
	for i, a := range s.active {
		if a == n {
			s.active = append(s.active[:i], s.active[i+1:]...)
			s.pool.Put(n)
			return
		}
	}
	panic("schedule: recycling a note that is not active")
}

// Sweep recycles every active note matching remove, calling onRemove first.
func (s *Scheduler) Sweep(remove func(*ActiveNote) bool, onRemove func(*ActiveNote)) {
	kept := s.active[:0]
	removed := []*ActiveNote{}
	for _, n := range s.active {
		if remove(n) {
			removed = append(removed, n)
			continue
		}
		kept = append(kept, n)
	}
	for i := len(kept); i < len(s.active); i++ {
		s.active[i] = nil
	}
	s.active = kept
	for _, n := range removed {
		if nil != onRemove {
			onRemove(n)
		}
		s.pool.Put(n)
	}
}

// Clear recycles every active note without judging it.
func (s *Scheduler) Clear() {
	for _, n := range s.active {
		s.pool.Put(n)
	}
	s.active = s.active[:0]
}

// Remaining is the number of chart notes not yet spawned.
func (s *Scheduler) Remaining() int {
	if nil == s.chart {
		return 0
	}
	return len(s.chart.Notes) - s.cursor
}

// Done is true when every note has been spawned and recycled.
func (s *Scheduler) Done() bool {
	return s.Remaining() == 0 && len(s.active) == 0
}

func (s *Scheduler) Pool() *Pool {
	return s.pool
}
