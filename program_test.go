package main

import (
	"bytes"
	"context"
	"errors"
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"git.lost.host/meutraa/autochart/internal/clock"
	"git.lost.host/meutraa/autochart/internal/config"
	"git.lost.host/meutraa/autochart/internal/export"
	"git.lost.host/meutraa/autochart/internal/game"
	"git.lost.host/meutraa/autochart/internal/input"
	"git.lost.host/meutraa/autochart/internal/score"
	"git.lost.host/meutraa/autochart/internal/session"
	"git.lost.host/meutraa/autochart/internal/store"
	"git.lost.host/meutraa/autochart/internal/testdata"
)

func program(t *testing.T, settings config.Settings) (*Program, *bytes.Buffer) {
	var out bytes.Buffer
	settings.Database = filepath.Join(t.TempDir(), "autochart.db")
	p := &Program{Settings: settings, Out: &out}
	if err := p.Init(); nil != err {
		t.Fatal(err)
	}
	t.Cleanup(p.Deinit)
	return p, &out
}

func TestExportAndHistory(t *testing.T) {
	s := config.Defaults()
	s.Source, s.Difficulty = "fixture", "normal"
	s.Out = filepath.Join(t.TempDir(), "fixture.mid")
	p, out := program(t, s)

	chart, err := testdata.GetChart()
	if nil != err {
		t.Fatal(err)
	}
	if err := p.Store.Put(chart); nil != err {
		t.Fatal(err)
	}

	if err := p.History(); nil != err {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "no plays") {
		t.Log(out.String())
		t.Fail()
	}

	result := score.Result{Score: 1234, Rank: score.S, Accuracy: 0.95, MaxCombo: 7}
	if _, err := p.Recorder.Save(chart, result, nil); nil != err {
		t.Fatal(err)
	}
	out.Reset()
	if err := p.History(); nil != err {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "1234") || !strings.Contains(out.String(), "95.00%") {
		t.Log(out.String())
		t.Fail()
	}

	if err := p.Export(); nil != err {
		t.Fatal(err)
	}
	f, err := os.Open(s.Out)
	if nil != err {
		t.Fatal(err)
	}
	defer f.Close()
	hits, err := export.Read(f)
	if nil != err {
		t.Fatal(err)
	}
	if len(hits) != chart.NoteCount() {
		t.Log(len(hits), "hits")
		t.Fail()
	}
}

func TestMissingChart(t *testing.T) {
	s := config.Defaults()
	s.Source, s.Difficulty = "nothing", "hard"
	p, _ := program(t, s)
	if err := p.History(); !errors.Is(err, store.ErrNotFound) {
		t.Log(err)
		t.Fail()
	}
	if err := p.Export(); !errors.Is(err, store.ErrNotFound) {
		t.Log(err)
		t.Fail()
	}
}

func TestGenerateFailure(t *testing.T) {
	s := config.Defaults()
	s.Command = config.Generate
	s.Audio = []string{filepath.Join(t.TempDir(), "missing.wav")}
	p, _ := program(t, s)
	if err := p.Run(context.Background()); !errors.Is(err, game.ErrNoChart) {
		t.Log(err)
		t.Fail()
	}
}

func TestUnknownCommand(t *testing.T) {
	p, _ := program(t, config.Defaults())
	if err := p.Run(context.Background()); !errors.Is(err, game.ErrConfig) {
		t.Log(err)
		t.Fail()
	}
}

func TestHandleEvents(t *testing.T) {
	var logged bytes.Buffer
	log.SetOutput(&logged)
	t.Cleanup(func() { log.SetOutput(os.Stderr) })

	chart, err := testdata.GetChart()
	if nil != err {
		t.Fatal(err)
	}
	source := &clock.Manual{}
	s, err := session.New(source, session.DefaultOptions())
	if nil != err {
		t.Fatal(err)
	}
	if err := s.Load(chart, &clock.SilentTrack{Duration: 5 * time.Second, Source: source}); nil != err {
		t.Fatal(err)
	}
	statuses := 0
	status := func(string) { statuses++ }
	delay := -time.Second

	// Pausing before the play starts is rejected and logged
	if !handle(s, input.Event{Action: input.Pause}, delay, status) || s.State() != session.Ready {
		t.Fatal("state", s.State())
	}
	if !strings.Contains(logged.String(), "pause from ready") {
		t.Log("log", logged.String())
		t.Fail()
	}

	if err := s.Start(delay); nil != err {
		t.Fatal(err)
	}
	for _, test := range []struct {
		action input.Action
		state  session.State
	}{
		{input.Press, session.Playing},
		{input.Pause, session.Paused},
		{input.Press, session.Paused},
		{input.Pause, session.Playing},
		{input.Restart, session.Playing},
	} {
		if !handle(s, input.Event{Action: test.action}, delay, status) || s.State() != test.state {
			t.Log(test.action, "left the session", s.State(), "expected", test.state)
			t.Fail()
		}
	}
	if statuses != 1 {
		t.Log("restart should clear the status once", statuses)
		t.Fail()
	}

	logged.Reset()
	if handle(s, input.Event{Action: input.Quit}, delay, status) || s.State() != session.Idle {
		t.Fatal("quit left the session", s.State())
	}
	if logged.Len() != 0 {
		t.Log("unexpected log", logged.String())
		t.Fail()
	}
}
