// Package session owns one play of a chart: the clock, the note scheduler,
// the judge and the score, advanced together by Tick.
package session

import (
	"fmt"
	"log"
	"sync"
	"time"

	"git.lost.host/meutraa/autochart/internal/clock"
	"git.lost.host/meutraa/autochart/internal/game"
	"git.lost.host/meutraa/autochart/internal/judge"
	"git.lost.host/meutraa/autochart/internal/schedule"
	"git.lost.host/meutraa/autochart/internal/score"
)

// Session is driven from a single goroutine. Only Press may be called from
// elsewhere.
type Session struct {
	Options Options

	clock     *clock.Clock
	scheduler *schedule.Scheduler
	judge     *judge.Engine
	score     *score.Accumulator

	chart  *game.Chart
	track  clock.Track
	state  State
	err    error
	inputs []game.Input

	mu      sync.Mutex
	pending []int

	stateObservers []func(from, to State)
}

func New(source clock.Source, opts Options) (*Session, error) {
	if err := opts.Validate(); nil != err {
		return nil, err
	}
	pool := schedule.NewPool(opts.PoolSize)
	pool.Limit = opts.PoolLimit
	scheduler := schedule.New(pool, opts.LeadTime, opts.FallSpeed)
	s := &Session{
		Options:   opts,
		clock:     clock.New(source),
		scheduler: scheduler,
		judge:     judge.New(scheduler, opts.Windows),
		score:     score.NewAccumulator(opts.Points),
	}
	s.judge.Observe(func(o judge.Outcome) {
		s.score.Apply(o.Judgement)
	})
	return s, nil
}

func (s *Session) setState(to State) error {
	if err := s.can(to); nil != err {
		return err
	}
	from := s.state
	s.state = to
	for _, f := range s.stateObservers {
		f(from, to)
	}
	return nil
}

func (s *Session) State() State {
	return s.state
}

// Err is the error that ended the last play early, if any.
func (s *Session) Err() error {
	return s.err
}

func (s *Session) Chart() *game.Chart {
	return s.chart
}

func (s *Session) Clock() *clock.Clock {
	return s.clock
}

// Active notes on screen, valid until the next Tick.
func (s *Session) Active() []*schedule.ActiveNote {
	return s.scheduler.Active()
}

func (s *Session) Score() *score.Accumulator {
	return s.score
}

// Inputs returns every press judged so far, stamped with its tick time.
func (s *Session) Inputs() []game.Input {
	return append([]game.Input(nil), s.inputs...)
}

func (s *Session) Result() score.Result {
	return s.score.Result()
}

func (s *Session) ObserveState(f func(from, to State)) {
	s.stateObservers = append(s.stateObservers, f)
}

func (s *Session) ObserveOutcome(f func(judge.Outcome)) {
	s.judge.Observe(f)
}

func (s *Session) ObserveScore(f func(score.Change)) {
	s.score.Observe(f)
}

// BeginLoading marks the session busy while a chart is produced elsewhere.
func (s *Session) BeginLoading() error {
	if err := s.can(Loading); nil != err {
		return err
	}
	s.halt()
	return s.setState(Loading)
}

// Load a chart and its track, leaving the session ready to start.
func (s *Session) Load(chart *game.Chart, track clock.Track) error {
	if err := chart.Validate(s.Options.Lanes); nil != err {
		return err
	}
	if err := s.can(Ready); nil != err {
		return err
	}
	s.halt()
	s.chart = chart
	s.track = track
	s.reset()
	return s.setState(Ready)
}

func (s *Session) can(to State) error {
	if !allowed(s.state, to) {
		return fmt.Errorf("%w: %v to %v", ErrState, s.state, to)
	}
	return nil
}

func (s *Session) reset() {
	s.clock.Load(s.track)
	s.scheduler.Load(s.chart)
	s.judge.Reset(s.chart.NoteCount())
	s.score.Reset(s.chart.NoteCount())
	s.inputs = s.inputs[:0]
	s.err = nil
	s.drain()
}

func (s *Session) halt() {
	if s.state == Playing || s.state == Paused {
		s.clock.Stop()
	}
	s.scheduler.Clear()
}

// Start plays the loaded chart from offset. A negative offset is a lead in.
func (s *Session) Start(offset time.Duration) error {
	if s.state != Ready {
		return fmt.Errorf("%w: start from %v", ErrState, s.state)
	}
	if err := s.clock.Play(offset); nil != err {
		return err
	}
	s.drain()
	return s.setState(Playing)
}

// Pause freezes the clock, so no note spawns or ages until Resume.
func (s *Session) Pause() error {
	if s.state != Playing {
		return fmt.Errorf("%w: pause from %v", ErrState, s.state)
	}
	s.clock.Pause()
	s.drain()
	return s.setState(Paused)
}

func (s *Session) Resume() error {
	if s.state != Paused {
		return fmt.Errorf("%w: resume from %v", ErrState, s.state)
	}
	s.clock.Resume()
	return s.setState(Playing)
}

// Restart reloads the current chart and resets the score.
func (s *Session) Restart() error {
	if nil == s.chart {
		return game.ErrNoChart
	}
	if err := s.can(Ready); nil != err {
		return err
	}
	s.halt()
	s.reset()
	return s.setState(Ready)
}

// Quit drops any play in progress and returns to idle.
func (s *Session) Quit() error {
	if s.state == Idle {
		return nil
	}
	if err := s.can(Idle); nil != err {
		return err
	}
	s.halt()
	return s.setState(Idle)
}

// Press queues a lane press for the next tick. Presses outside of play are
// dropped.
func (s *Session) Press(lane int) {
	if lane < 0 || lane >= s.Options.Lanes {
		return
	}
	s.mu.Lock()
	s.pending = append(s.pending, lane)
	s.mu.Unlock()
}

func (s *Session) drain() []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	lanes := s.pending
	s.pending = nil
	return lanes
}

// Tick advances the play by one step: the clock is read once, notes are
// spawned, queued presses are judged at that time, old notes are missed and
// the score follows the outcomes. It returns an error only when the play
// cannot continue.
func (s *Session) Tick() error {
	if s.state != Playing {
		s.drain()
		return nil
	}
	ended := s.clock.Update()
	now := s.clock.CurrentTime()

	if err := s.scheduler.Update(now); nil != err {
		return s.fail(err)
	}
	for _, lane := range s.drain() {
		input := game.Input{Lane: lane, HitTime: now - s.Options.InputOffset}
		s.inputs = append(s.inputs, input)
		s.judge.Hit(input)
	}
	s.judge.Sweep(now)

	if ended {
		if err := s.finish(now); nil != err {
			return s.fail(err)
		}
		return s.setState(Result)
	}
	return nil
}

// finish misses every note the song ended before resolving.
func (s *Session) finish(now time.Duration) error {
	if s.scheduler.Done() {
		return nil
	}
	end := now
	if last := s.chart.Notes[len(s.chart.Notes)-1].Target(); last > end {
		end = last
	}
	end += s.Options.Windows.Miss + 1
	for !s.scheduler.Done() {
		if err := s.scheduler.Update(end); nil != err {
			return err
		}
		s.judge.Sweep(end)
	}
	return nil
}

func (s *Session) fail(err error) error {
	log.Println("play stopped:", err)
	s.err = err
	s.clock.Stop()
	s.scheduler.Clear()
	if serr := s.setState(Result); nil != serr {
		return serr
	}
	return err
}
