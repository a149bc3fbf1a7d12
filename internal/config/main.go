// Package config parses the command line into validated settings.
package config

import (
	"fmt"
	"strconv"
	"time"

	"git.lost.host/meutraa/autochart/internal/game"
	"git.lost.host/meutraa/autochart/internal/session"
	"gopkg.in/alecthomas/kingpin.v2"
)

const Version = "0.3.0"

// Commands
const (
	Generate = "generate"
	Play     = "play"
	Export   = "export"
	History  = "history"
	Serve    = "serve"
)

type Settings struct {
	Command string

	Database string
	ChartDir string // Optional JSON mirror of the chart store

	// Chart selection and generation
	Audio   []string
	Profile game.Profile
	Seed    *int64
	Force   bool
	Workers int

	// Play
	Keys    string
	Delay   time.Duration
	Tick    time.Duration
	Buffer  time.Duration
	Session session.Options

	// Export and history
	Source     string
	Difficulty string
	Out        string

	// Serve
	Listen  string
	Origins []string
}

func Defaults() Settings {
	return Settings{
		Database: "./autochart.db",
		Profile:  game.Preset(game.Normal),
		Workers:  2,
		Keys:     "dfjk",
		Delay:    1500 * time.Millisecond,
		Tick:     time.Millisecond,
		Buffer:   time.Second / 60,
		Session:  session.DefaultOptions(),
		Listen:   ":8080",
	}
}

func (s Settings) Validate() error {
	if err := s.Profile.Validate(); nil != err {
		return err
	}
	if s.Session.Lanes < 1 || s.Session.Lanes > 8 {
		return fmt.Errorf("%w: lanes %d not in [1,8]", game.ErrConfig, s.Session.Lanes)
	}
	if err := s.Session.Validate(); nil != err {
		return err
	}
	if n := len([]rune(s.Keys)); s.Command == Play && n != s.Session.Lanes {
		return fmt.Errorf("%w: %d keys for %d lanes", game.ErrConfig, n, s.Session.Lanes)
	}
	if s.Tick <= 0 || s.Buffer <= 0 {
		return fmt.Errorf("%w: tick %v and buffer %v must be positive", game.ErrConfig, s.Tick, s.Buffer)
	}
	if s.Delay < 0 {
		return fmt.Errorf("%w: negative start delay %v", game.ErrConfig, s.Delay)
	}
	if s.Workers < 1 {
		return fmt.Errorf("%w: %d workers", game.ErrConfig, s.Workers)
	}
	return nil
}

type chartFlags struct {
	difficulty *string
	seed       *string
	lanes      *int
	force      *bool
	density    *float64
	maxNotes   *int
	holdChance *float64
	complexity *int
}

func addChartFlags(cmd *kingpin.CmdClause, d Settings) *chartFlags {
	return &chartFlags{
		difficulty: cmd.Flag("difficulty", "easy, normal, hard or custom").Default(d.Profile.Tag).Short('D').Enum("easy", "normal", "hard", "custom"),
		seed:       cmd.Flag("seed", "Pattern seed, derived from the track when unset").String(),
		lanes:      cmd.Flag("lanes", "Number of lanes").Default(fmt.Sprint(d.Session.Lanes)).Short('l').Int(),
		force:      cmd.Flag("force", "Regenerate even when a chart is cached").Short('f').Bool(),
		density:    cmd.Flag("density", "Custom chance a beat has notes").Default("0.75").Float64(),
		maxNotes:   cmd.Flag("max-notes", "Custom maximum simultaneous notes").Default("2").Int(),
		holdChance: cmd.Flag("hold-chance", "Custom chance a note is a hold").Default("0.1").Float64(),
		complexity: cmd.Flag("complexity", "Custom pattern complexity, 1 to 3").Default("2").Int(),
	}
}

func (f *chartFlags) apply(s *Settings) error {
	d, err := game.ParseDifficulty(*f.difficulty)
	if nil != err {
		return err
	}
	if d == game.Custom {
		s.Profile, err = game.NewProfile(*f.density, *f.maxNotes, *f.holdChance, *f.complexity)
		if nil != err {
			return err
		}
	} else {
		s.Profile = game.Preset(d)
	}
	if *f.seed != "" {
		seed, err := strconv.ParseInt(*f.seed, 10, 64)
		if nil != err {
			return fmt.Errorf("%w: seed %q is not an integer", game.ErrConfig, *f.seed)
		}
		s.Seed = &seed
	}
	s.Session.Lanes = *f.lanes
	s.Force = *f.force
	return nil
}

// Parse reads args, without the program name, into settings.
func Parse(args []string) (Settings, error) {
	s := Defaults()
	w := s.Session.Windows

	app := kingpin.New("autochart", "Generate rhythm game charts from audio and play them.")
	app.Version(Version)
	database := app.Flag("db", "SQLite database for charts and scores").Default(s.Database).String()
	chartDir := app.Flag("charts", "Also keep charts as JSON files in this directory").String()

	generate := app.Command(Generate, "Generate and cache charts for audio files")
	generateFlags := addChartFlags(generate, s)
	generateAudio := generate.Arg("audio", "Audio files (wav, mp3, ogg)").Required().ExistingFiles()
	workers := generate.Flag("workers", "Tracks analysed at once").Default(fmt.Sprint(s.Workers)).Short('w').Int()

	play := app.Command(Play, "Play a chart against its track")
	playFlags := addChartFlags(play, s)
	playAudio := play.Arg("audio", "Audio file (wav, mp3, ogg)").Required().ExistingFile()
	keys := play.Flag("keys", "One key per lane").Default(s.Keys).Short('k').String()
	offset := play.Flag("offset", "Global offset").Default("0ms").Short('o').Duration()
	delay := play.Flag("delay", "Start delay").Default(s.Delay.String()).Short('d').Duration()
	tick := play.Flag("tick", "Tick period").Default(s.Tick.String()).Short('p').Duration()
	buffer := play.Flag("buffer", "Audio device buffer").Default(s.Buffer.String()).Duration()
	lead := play.Flag("lead", "How long before its time a note appears").Default(s.Session.LeadTime.String()).Duration()
	speed := play.Flag("speed", "Fall speed in units per second").Default(fmt.Sprint(s.Session.FallSpeed)).Short('s').Float64()
	perfect := play.Flag("perfect", "Perfect window").Default(w.Perfect.String()).Duration()
	great := play.Flag("great", "Great window").Default(w.Great.String()).Duration()
	good := play.Flag("good", "Good window").Default(w.Good.String()).Duration()
	miss := play.Flag("miss", "Miss threshold, good window plus 50ms when unset").Duration()

	export := app.Command(Export, "Write a cached chart as a MIDI file")
	exportSource := export.Arg("source", "Source id, the audio file name without extension").Required().String()
	exportDifficulty := export.Arg("difficulty", "Difficulty tag").Required().String()
	exportOut := export.Arg("out", "MIDI file to write").Required().String()

	history := app.Command(History, "List plays of a cached chart")
	historySource := history.Arg("source", "Source id").Required().String()
	historyDifficulty := history.Arg("difficulty", "Difficulty tag").Required().String()

	serve := app.Command(Serve, "Serve charts and scores over HTTP")
	listen := serve.Flag("listen", "Address to listen on").Default(s.Listen).Short('L').String()
	origins := serve.Flag("origin", "Allowed CORS origin, repeatable").Strings()

	command, err := app.Parse(args)
	if nil != err {
		return s, fmt.Errorf("%w: %v", game.ErrConfig, err)
	}
	s.Command = command
	s.Database = *database
	s.ChartDir = *chartDir

	switch command {
	case Generate:
		err = generateFlags.apply(&s)
		s.Audio = *generateAudio
		s.Workers = *workers
	case Play:
		err = playFlags.apply(&s)
		s.Audio = []string{*playAudio}
		s.Keys = *keys
		s.Delay = *delay
		s.Tick = *tick
		s.Buffer = *buffer
		s.Session.InputOffset = *offset
		s.Session.LeadTime = *lead
		s.Session.FallSpeed = *speed
		s.Session.Windows.Perfect = *perfect
		s.Session.Windows.Great = *great
		s.Session.Windows.Good = *good
		s.Session.Windows.Miss = *good + 50*time.Millisecond
		if *miss > 0 {
			s.Session.Windows.Miss = *miss
		}
	case Export:
		s.Source, s.Difficulty, s.Out = *exportSource, *exportDifficulty, *exportOut
	case History:
		s.Source, s.Difficulty = *historySource, *historyDifficulty
	case Serve:
		s.Listen = *listen
		s.Origins = *origins
	}
	if nil != err {
		return s, err
	}
	return s, s.Validate()
}
