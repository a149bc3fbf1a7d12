package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"git.lost.host/meutraa/autochart/internal/game"
)

func audioFile(t *testing.T) string {
	path := filepath.Join(t.TempDir(), "song.wav")
	if err := os.WriteFile(path, []byte("RIFF"), 0o644); nil != err {
		t.Fatal(err)
	}
	return path
}

func TestDefaults(t *testing.T) {
	if err := Defaults().Validate(); nil != err {
		t.Log(err)
		t.Fail()
	}
}

func TestGenerate(t *testing.T) {
	path := audioFile(t)
	s, err := Parse([]string{"--db", "x.db", "generate", "-D", "hard", "--lanes", "6", "--seed", "42", "-w", "4", path})
	if nil != err {
		t.Fatal(err)
	}
	if s.Command != Generate || s.Database != "x.db" || s.Workers != 4 {
		t.Log(s)
		t.Fail()
	}
	if s.Profile != game.Preset(game.Hard) || s.Session.Lanes != 6 {
		t.Log(s.Profile, s.Session.Lanes)
		t.Fail()
	}
	if nil == s.Seed || *s.Seed != 42 {
		t.Log("seed not set")
		t.Fail()
	}
	if len(s.Audio) != 1 || s.Audio[0] != path {
		t.Log(s.Audio)
		t.Fail()
	}
}

func TestSeedUnset(t *testing.T) {
	s, err := Parse([]string{"generate", audioFile(t)})
	if nil != err {
		t.Fatal(err)
	}
	if nil != s.Seed || s.Profile.Tag != "normal" {
		t.Log(s.Seed, s.Profile)
		t.Fail()
	}
}

func TestCustomProfile(t *testing.T) {
	s, err := Parse([]string{"generate", "-D", "custom", "--density", "0.3", "--max-notes", "1", "--hold-chance", "0", "--complexity", "1", audioFile(t)})
	if nil != err {
		t.Fatal(err)
	}
	want := game.Profile{Tag: "custom", NoteDensity: 0.3, MaxSimultaneousNotes: 1, HoldNoteChance: 0, PatternComplexity: 1}
	if s.Profile != want {
		t.Log(s.Profile)
		t.Fail()
	}
}

func TestPlay(t *testing.T) {
	s, err := Parse([]string{"play", "-k", "asdfg", "-l", "5", "-o", "30ms", "--delay", "2s", "--good", "160ms", audioFile(t)})
	if nil != err {
		t.Fatal(err)
	}
	if s.Keys != "asdfg" || s.Session.Lanes != 5 || s.Delay != 2*time.Second {
		t.Log(s)
		t.Fail()
	}
	if s.Session.InputOffset != 30*time.Millisecond {
		t.Log("offset", s.Session.InputOffset)
		t.Fail()
	}
	if s.Session.Windows.Good != 160*time.Millisecond || s.Session.Windows.Miss != 210*time.Millisecond {
		t.Log(s.Session.Windows)
		t.Fail()
	}
}

func TestInvalid(t *testing.T) {
	path := audioFile(t)
	for name, args := range map[string][]string{
		"keys":      {"play", "-l", "3", path},
		"lanes":     {"play", "-l", "9", "-k", "abcdefghi", path},
		"seed":      {"generate", "--seed", "abc", path},
		"density":   {"generate", "-D", "custom", "--density", "2", path},
		"windows":   {"play", "--perfect", "120ms", path},
		"lead":      {"play", "--lead", "100ms", path},
		"command":   {"dance"},
		"missing":   {"generate", filepath.Join(t.TempDir(), "nothing.wav")},
		"workers":   {"generate", "-w", "0", path},
		"tick":      {"play", "--tick", "0s", path},
		"difficult": {"generate", "-D", "insane", path},
	} {
		if _, err := Parse(args); !errors.Is(err, game.ErrConfig) {
			t.Log(name, err)
			t.Fail()
		}
	}
}

func TestExport(t *testing.T) {
	s, err := Parse([]string{"export", "song", "hard", "song.mid"})
	if nil != err {
		t.Fatal(err)
	}
	if s.Source != "song" || s.Difficulty != "hard" || s.Out != "song.mid" {
		t.Log(s)
		t.Fail()
	}
}

func TestServe(t *testing.T) {
	s, err := Parse([]string{"--charts", "charts", "serve", "-L", ":9000", "--origin", "http://a", "--origin", "http://b"})
	if nil != err {
		t.Fatal(err)
	}
	if s.Listen != ":9000" || len(s.Origins) != 2 || s.ChartDir != "charts" {
		t.Log(s)
		t.Fail()
	}
}
