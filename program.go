package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"sync"
	"time"

	"git.lost.host/meutraa/autochart/internal/api"
	"git.lost.host/meutraa/autochart/internal/audio"
	"git.lost.host/meutraa/autochart/internal/config"
	"git.lost.host/meutraa/autochart/internal/export"
	"git.lost.host/meutraa/autochart/internal/game"
	"git.lost.host/meutraa/autochart/internal/input"
	"git.lost.host/meutraa/autochart/internal/judge"
	"git.lost.host/meutraa/autochart/internal/pipeline"
	"git.lost.host/meutraa/autochart/internal/render"
	"git.lost.host/meutraa/autochart/internal/score"
	"git.lost.host/meutraa/autochart/internal/session"
	"git.lost.host/meutraa/autochart/internal/store"
	"git.lost.host/meutraa/autochart/internal/theme"
	"github.com/bep/debounce"
	"github.com/faiface/beep"
	"golang.org/x/term"
)

const (
	sampleRate     = beep.SampleRate(44100)
	keyBuffer      = 128
	progressPeriod = 250 * time.Millisecond
)

type Program struct {
	Settings config.Settings
	Out      io.Writer

	Store    store.Store
	Recorder score.Recorder
	Theme    theme.Theme
	Pipeline *pipeline.Pipeline
}

func (p *Program) Init() error {
	if nil == p.Out {
		p.Out = os.Stdout
	}
	// Ensure our Default implementations are used as interfaces
	p.Theme = &theme.DefaultTheme{}
	p.Recorder = &score.DefaultRecorder{Path: p.Settings.Database}

	if p.Settings.ChartDir != "" {
		p.Store = store.NewDirStore(p.Settings.ChartDir)
	} else {
		s, err := store.NewSQLiteStore(p.Settings.Database)
		if nil != err {
			return err
		}
		p.Store = s
	}
	if err := p.Recorder.Init(); nil != err {
		p.Store.Close()
		return err
	}

	p.Pipeline = &pipeline.Pipeline{
		Provider: &audio.DefaultProvider{},
		Store:    p.Store,
		Lanes:    p.Settings.Session.Lanes,
	}
	return nil
}

func (p *Program) Deinit() {
	p.Recorder.Deinit()
	if err := p.Store.Close(); nil != err {
		log.Println("unable to close chart store", err)
	}
}

func (p *Program) Run(ctx context.Context) error {
	switch p.Settings.Command {
	case config.Generate:
		return p.Generate(ctx)
	case config.Play:
		return p.Play(ctx)
	case config.Export:
		return p.Export()
	case config.History:
		return p.History()
	case config.Serve:
		return p.Serve()
	}
	return fmt.Errorf("%w: unknown command %q", game.ErrConfig, p.Settings.Command)
}

func (p *Program) request(path string) pipeline.Request {
	return pipeline.Request{
		Path:    path,
		Profile: p.Settings.Profile,
		Seed:    p.Settings.Seed,
		Force:   p.Settings.Force,
	}
}

// Generate charts every audio file, logging progress at most a few times a
// second.
func (p *Program) Generate(ctx context.Context) error {
	var mu sync.Mutex
	progress := map[string]float64{}
	debounced := debounce.New(progressPeriod)
	p.Pipeline.OnProgress = func(path string, f float64) {
		mu.Lock()
		progress[audio.SourceID(path)] = f
		mu.Unlock()
		debounced(func() {
			mu.Lock()
			defer mu.Unlock()
			for id, f := range progress {
				log.Printf("%s %3.0f%%", id, f*100)
			}
		})
	}

	reqs := make([]pipeline.Request, len(p.Settings.Audio))
	for i, path := range p.Settings.Audio {
		reqs[i] = p.request(path)
	}

	failed := 0
	for _, r := range p.Pipeline.Batch(ctx, reqs, p.Settings.Workers) {
		if nil != r.Err {
			failed++
			log.Println(r.Request.Path, r.Err)
			continue
		}
		fmt.Fprintf(p.Out, "%s %s: %d notes, %d holds, %.1f bpm\n",
			r.Chart.SourceID, r.Chart.Difficulty, r.Chart.NoteCount(), r.Chart.HoldCount(), r.Chart.BPM)
	}
	if failed > 0 {
		return fmt.Errorf("%w: %d of %d tracks", game.ErrNoChart, failed, len(reqs))
	}
	return nil
}

func (p *Program) Play(ctx context.Context) error {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return errors.New("play needs an interactive terminal")
	}
	keymap, err := input.NewKeymap(p.Settings.Keys, p.Settings.Session.Lanes)
	if nil != err {
		return err
	}

	device, err := audio.NewDevice(sampleRate, p.Settings.Buffer)
	if nil != err {
		return fmt.Errorf("unable to open audio device: %w", err)
	}
	s, err := session.New(device.Clock(), p.Settings.Session)
	if nil != err {
		return err
	}
	if err := s.BeginLoading(); nil != err {
		return err
	}

	path := p.Settings.Audio[0]
	chart, err := p.Pipeline.Load(ctx, p.request(path))
	if nil != err {
		return err
	}
	track, err := audio.OpenTrack(path, device)
	if nil != err {
		return err
	}
	defer track.Close()
	if err := s.Load(chart, track); nil != err {
		return err
	}

	if err := p.play(ctx, s, keymap); nil != err {
		return err
	}
	if s.State() != session.Result {
		return nil
	}
	if nil != s.Err() {
		return s.Err()
	}

	result := s.Result()
	if _, err := p.Recorder.Save(chart, result, s.Inputs()); nil != err {
		log.Println("unable to save play", err)
	}
	fmt.Fprint(p.Out, theme.RenderResult(p.Theme, result))
	return nil
}

// play holds the terminal until the session leaves play.
func (p *Program) play(ctx context.Context, s *session.Session, keymap input.Keymap) error {
	reader, err := input.OpenKeyboard(keymap, keyBuffer)
	if nil != err {
		return err
	}
	defer func() {
		if err := reader.Close(); nil != err {
			log.Println("unable to close keyboard", err)
		}
	}()

	r := &render.DefaultRenderer{Out: p.Out}
	if err := r.Init(); nil != err {
		return err
	}
	defer r.Deinit()

	lanes := p.Settings.Session.Lanes
	s.ObserveOutcome(func(o judge.Outcome) {
		r.Println(fmt.Sprintf("%s %s %+5dms",
			p.Theme.RenderLane(o.Note.Lane, lanes), p.Theme.RenderJudgement(o.Judgement), o.Offset.Milliseconds()))
	})
	s.ObserveScore(func(c score.Change) {
		r.Status(fmt.Sprintf("%8d  x%d", c.Score, c.Combo))
	})
	s.ObserveState(func(from, to session.State) {
		if to == session.Paused {
			r.Status("paused")
		}
	})

	delay := -p.Settings.Delay
	if err := s.Start(delay); nil != err {
		return err
	}

	return r.Loop(ctx, p.Settings.Tick, func(now time.Time) bool {
	drain:
		for {
			select {
			case ev, ok := <-reader.Events():
				if !ok {
					ev = input.Event{Action: input.Quit}
				}
				if !handle(s, ev, delay, r.Status) {
					return false
				}
			default:
				break drain
			}
		}
		// A failed tick ends the play, its error is returned by s.Err.
		s.Tick()
		state := s.State()
		return state == session.Playing || state == session.Paused
	})
}

// handle applies one key event to the session. It returns false once the
// player quits. Rejected transitions are logged and the play goes on.
func handle(s *session.Session, ev input.Event, delay time.Duration, status func(string)) bool {
	var err error
	switch ev.Action {
	case input.Press:
		s.Press(ev.Lane)
	case input.Pause:
		if s.State() == session.Paused {
			err = s.Resume()
		} else {
			err = s.Pause()
		}
	case input.Restart:
		status("")
		if err = s.Restart(); nil == err {
			err = s.Start(delay)
		}
	case input.Quit:
		if err := s.Quit(); nil != err {
			log.Println(err)
		}
		return false
	}
	if nil != err {
		log.Println(err)
	}
	return true
}

func (p *Program) chart() (*game.Chart, error) {
	return p.Store.Get(store.Key{SourceID: p.Settings.Source, Difficulty: p.Settings.Difficulty})
}

func (p *Program) Export() error {
	chart, err := p.chart()
	if nil != err {
		return err
	}
	if err := export.Save(p.Settings.Out, chart); nil != err {
		return err
	}
	fmt.Fprintf(p.Out, "wrote %d notes to %s\n", chart.NoteCount(), p.Settings.Out)
	return nil
}

func (p *Program) History() error {
	chart, err := p.chart()
	if nil != err {
		return err
	}
	plays, err := p.Recorder.Load(chart)
	if nil != err {
		return err
	}
	if len(plays) == 0 {
		fmt.Fprintln(p.Out, "no plays")
		return nil
	}
	for _, h := range plays {
		fmt.Fprintf(p.Out, "%s  %s  %8d  %6.2f%%  x%d\n",
			h.Played.Format(time.DateTime), p.Theme.RenderRank(h.Result.Rank), h.Result.Score, h.Result.Accuracy*100, h.Result.MaxCombo)
	}
	return nil
}

func (p *Program) Serve() error {
	server := &api.Server{
		Store:    p.Store,
		Recorder: p.Recorder,
		Options:  p.Settings.Session,
		Origins:  p.Settings.Origins,
	}
	return server.ListenAndServe(p.Settings.Listen)
}
