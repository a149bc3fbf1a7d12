// Package export writes charts as Standard MIDI Files, so a generated chart
// can be auditioned against its track in any sequencer.
package export

import (
	"fmt"
	"io"
	"math"
	"os"

	"git.lost.host/meutraa/autochart/internal/analysis"
	"git.lost.host/meutraa/autochart/internal/game"
	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
	"golang.org/x/exp/slices"
)

const (
	Resolution = smf.MetricTicks(960)

	// Channel 10, the General MIDI percussion channel.
	Channel  = 9
	Velocity = 100

	// TapLength is how long a tap sounds, in seconds.
	TapLength = 0.1
)

// Keys maps lanes to General MIDI drums: kick, snare, closed hat, open hat,
// crash, ride, low tom, high tom.
var Keys = []uint8{36, 38, 42, 46, 49, 51, 45, 48}

type event struct {
	tick uint32
	on   bool
	key  uint8
}

func bpmOf(c *game.Chart) float64 {
	if c.BPM > 0 {
		return c.BPM
	}
	return analysis.FallbackBPM
}

// ticks converts seconds at a fixed tempo.
func ticks(seconds, bpm float64) uint32 {
	return uint32(math.Round(seconds * bpm / 60 * float64(Resolution)))
}

// Build lays the chart out on a single tempo map track followed by a note
// track.
func Build(c *game.Chart) (*smf.SMF, error) {
	if len(c.Notes) > 0 {
		if lanes := maxLane(c) + 1; lanes > len(Keys) {
			return nil, fmt.Errorf("%w: %d lanes, at most %d can be exported", game.ErrConfig, lanes, len(Keys))
		}
	}
	bpm := bpmOf(c)

	var tempo smf.Track
	tempo.Add(0, smf.MetaTrackSequenceName(c.SourceID+" "+c.Difficulty))
	tempo.Add(0, smf.MetaMeter(4, 4))
	tempo.Add(0, smf.MetaTempo(bpm))
	tempo.Close(0)

	events := make([]event, 0, 2*len(c.Notes))
	for _, n := range c.Notes {
		length := TapLength
		if n.Kind == game.Hold && n.Duration > 0 {
			length = n.Duration
		}
		key := Keys[n.Lane]
		events = append(events,
			event{tick: ticks(n.Time, bpm), on: true, key: key},
			event{tick: ticks(n.Time+length, bpm), on: false, key: key},
		)
	}
	// Offs before ons on the same tick so a repeated key retriggers.
	slices.SortStableFunc(events, func(a, b event) bool {
		if a.tick != b.tick {
			return a.tick < b.tick
		}
		return !a.on && b.on
	})

	var notes smf.Track
	notes.Add(0, smf.MetaTrackSequenceName("notes"))
	last := uint32(0)
	for _, e := range events {
		if e.on {
			notes.Add(e.tick-last, midi.NoteOn(Channel, e.key, Velocity))
		} else {
			notes.Add(e.tick-last, midi.NoteOff(Channel, e.key))
		}
		last = e.tick
	}
	notes.Close(0)

	s := smf.New()
	s.TimeFormat = Resolution
	if err := s.Add(tempo); nil != err {
		return nil, err
	}
	if err := s.Add(notes); nil != err {
		return nil, err
	}
	return s, nil
}

func maxLane(c *game.Chart) int {
	m := 0
	for _, n := range c.Notes {
		if n.Lane > m {
			m = n.Lane
		}
	}
	return m
}

func Write(w io.Writer, c *game.Chart) error {
	s, err := Build(c)
	if nil != err {
		return err
	}
	_, err = s.WriteTo(w)
	return err
}

func Save(file string, c *game.Chart) error {
	f, err := os.Create(file)
	if nil != err {
		return err
	}
	if err := Write(f, c); nil != err {
		f.Close()
		return err
	}
	return f.Close()
}

// Hit is a note read back from an exported file.
type Hit struct {
	Time     float64 // seconds
	Lane     int
	Duration float64 // seconds the key was held
}

// Read parses an exported file back into lane hits ordered by time.
func Read(r io.Reader) ([]Hit, error) {
	s, err := smf.ReadFrom(r)
	if nil != err {
		return nil, fmt.Errorf("%w: %v", game.ErrSerialization, err)
	}
	lanes := map[uint8]int{}
	for i, k := range Keys {
		lanes[k] = i
	}

	hits := []Hit{}
	open := map[uint8]int{}
	for _, track := range s.Tracks {
		var abs int64
		for _, e := range track {
			abs += int64(e.Delta)
			var ch, key, vel uint8
			switch {
			case e.Message.GetNoteOn(&ch, &key, &vel):
				open[key] = len(hits)
				hits = append(hits, Hit{Time: seconds(s, abs), Lane: lanes[key]})
			case e.Message.GetNoteOff(&ch, &key, &vel):
				if i, ok := open[key]; ok {
					hits[i].Duration = seconds(s, abs) - hits[i].Time
					delete(open, key)
				}
			}
		}
	}
	slices.SortStableFunc(hits, func(a, b Hit) bool {
		return a.Time < b.Time
	})
	return hits, nil
}

func seconds(s *smf.SMF, ticks int64) float64 {
	return float64(s.TimeAt(ticks)) / 1e6
}
