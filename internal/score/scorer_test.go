package score

import (
	"math"
	"testing"

	"git.lost.host/meutraa/autochart/internal/game"
)

func TestComboBonus(t *testing.T) {
	a := NewAccumulator(DefaultPoints())
	a.Reset(100)
	for i := 0; i < 50; i++ {
		a.Apply(game.Perfect)
	}
	if a.Combo() != 50 {
		t.Fatal("combo", a.Combo())
	}
	var expected = []int{1102, 1104, 1106}
	last := 0
	for _, e := range expected {
		inc := a.Apply(game.Perfect)
		if inc != e || inc <= last {
			t.Log("Combo", a.Combo(), "expected", e, "got", inc)
			t.Fail()
		}
		last = inc
	}
}

func TestFirstIncrements(t *testing.T) {
	a := NewAccumulator(DefaultPoints())
	a.Reset(3)
	var increments = map[game.Judgement]int{
		game.Perfect: 1002, // combo 1
		game.Great:   803,  // combo 2
		game.Good:    503,  // combo 3
	}
	for _, j := range []game.Judgement{game.Perfect, game.Great, game.Good} {
		if inc := a.Apply(j); inc != increments[j] {
			t.Log(j, "expected", increments[j], "got", inc)
			t.Fail()
		}
	}
	if a.Score() != 1002+803+503 {
		t.Fatal("score", a.Score())
	}
}

func TestMissResetsCombo(t *testing.T) {
	a := NewAccumulator(DefaultPoints())
	a.Reset(5)
	a.Apply(game.Perfect)
	a.Apply(game.Great)
	before := a.Score()
	if inc := a.Apply(game.Miss); inc != 0 {
		t.Fatal("miss scored", inc)
	}
	if a.Combo() != 0 || a.Score() != before || a.MaxCombo() != 2 {
		t.Fatal("miss changed more than the combo", a.Combo(), a.Score(), a.MaxCombo())
	}
	a.Apply(game.Good)
	if a.Combo() != 1 || a.MaxCombo() != 2 {
		t.Fatal("combo did not restart", a.Combo(), a.MaxCombo())
	}
}

func TestAccuracy(t *testing.T) {
	a := NewAccumulator(DefaultPoints())
	if a.Accuracy() != 0 {
		t.Fatal("empty chart accuracy", a.Accuracy())
	}
	a.Reset(4)
	a.Apply(game.Perfect)
	a.Apply(game.Great)
	a.Apply(game.Good)
	a.Apply(game.Miss)
	if math.Abs(a.Accuracy()-230.0/400) > 1e-12 {
		t.Fatal("accuracy", a.Accuracy())
	}
	r := a.Result()
	if r.Perfect != 1 || r.Great != 1 || r.Good != 1 || r.Miss != 1 || r.TotalNotes != 4 || r.Rank != D {
		t.Fatal("result", r)
	}
}

func TestOneMissIsNotSS(t *testing.T) {
	a := NewAccumulator(DefaultPoints())
	a.Reset(100)
	for i := 0; i < 99; i++ {
		a.Apply(game.Perfect)
	}
	a.Apply(game.Miss)
	if math.Abs(a.Accuracy()-0.99) > 1e-12 {
		t.Fatal("accuracy", a.Accuracy())
	}
	if a.Rank() != S {
		t.Fatal("rank", a.Rank())
	}
}

func TestObserve(t *testing.T) {
	a := NewAccumulator(DefaultPoints())
	a.Reset(2)
	changes := []Change{}
	a.Observe(func(c Change) {
		changes = append(changes, c)
	})
	a.Apply(game.Perfect)
	a.Apply(game.Miss)
	if len(changes) != 2 || changes[0].Score != 1002 || changes[1].Combo != 0 || changes[1].Score != 1002 {
		t.Fatal("changes", changes)
	}
}

func TestResetClears(t *testing.T) {
	a := NewAccumulator(DefaultPoints())
	a.Reset(2)
	a.Apply(game.Perfect)
	a.Reset(3)
	if a.Score() != 0 || a.Combo() != 0 || a.Judged() != 0 || a.Total() != 3 {
		t.Fatal("reset kept state")
	}
}
