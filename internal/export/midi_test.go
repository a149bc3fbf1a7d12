package export

import (
	"bytes"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"git.lost.host/meutraa/autochart/internal/game"
	"git.lost.host/meutraa/autochart/internal/testdata"
)

// One tick at 120 BPM and 960 ticks per beat is about half a millisecond.
const tolerance = 0.001

func TestRoundTrip(t *testing.T) {
	chart, err := testdata.GetChart()
	if nil != err {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if err := Write(&buf, chart); nil != err {
		t.Fatal(err)
	}
	hits, err := Read(&buf)
	if nil != err {
		t.Fatal(err)
	}
	if len(hits) != len(chart.Notes) {
		t.Fatal("hits", hits)
	}
	for i, n := range chart.Notes {
		h := hits[i]
		length := TapLength
		if n.Kind == game.Hold {
			length = n.Duration
		}
		if math.Abs(h.Time-n.Time) > tolerance || math.Abs(h.Duration-length) > tolerance {
			t.Log("note", i, n, "read back as", h)
			t.Fail()
		}
	}
	lanes := map[int]int{}
	for _, h := range hits {
		lanes[h.Lane]++
	}
	expected := map[int]int{}
	for _, n := range chart.Notes {
		expected[n.Lane]++
	}
	for lane, count := range expected {
		if lanes[lane] != count {
			t.Log("lane", lane, "expected", count, "got", lanes[lane])
			t.Fail()
		}
	}
}

func TestTempo(t *testing.T) {
	for _, bpm := range []float64{0, 90, 174} {
		chart := &game.Chart{SourceID: "tempo", Difficulty: "easy", BPM: bpm, Notes: []game.Note{{Time: 3, Lane: 1}}}
		var buf bytes.Buffer
		if err := Write(&buf, chart); nil != err {
			t.Fatal(err)
		}
		hits, err := Read(&buf)
		if nil != err || len(hits) != 1 || math.Abs(hits[0].Time-3) > tolerance {
			t.Fatal("bpm", bpm, hits, err)
		}
	}
}

func TestEmptyChart(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, &game.Chart{SourceID: "empty", Difficulty: "easy"}); nil != err {
		t.Fatal(err)
	}
	hits, err := Read(&buf)
	if nil != err || len(hits) != 0 {
		t.Fatal(hits, err)
	}
}

func TestTooManyLanes(t *testing.T) {
	chart := &game.Chart{SourceID: "wide", Difficulty: "custom", Notes: []game.Note{{Time: 1, Lane: len(Keys)}}}
	if _, err := Build(chart); !errors.Is(err, game.ErrConfig) {
		t.Fatal("expected a config error, got", err)
	}
}

func TestReadGarbage(t *testing.T) {
	if _, err := Read(bytes.NewReader([]byte("not a midi file"))); !errors.Is(err, game.ErrSerialization) {
		t.Fatal("expected a serialization error, got", err)
	}
}

func TestSave(t *testing.T) {
	chart, _ := testdata.GetChart()
	file := filepath.Join(t.TempDir(), "fixture.mid")
	if err := Save(file, chart); nil != err {
		t.Fatal(err)
	}
	f, err := os.Open(file)
	if nil != err {
		t.Fatal(err)
	}
	defer f.Close()
	hits, err := Read(f)
	if nil != err || len(hits) != len(chart.Notes) {
		t.Fatal(hits, err)
	}
}
