package schedule

import (
	"math"
	"testing"
	"time"

	"git.lost.host/meutraa/autochart/internal/game"
	"git.lost.host/meutraa/autochart/internal/testdata"
)

func newScheduler(t *testing.T) (*Scheduler, *game.Chart) {
	chart, err := testdata.GetChart()
	if nil != err {
		t.Fatal("unable to parse chart", err)
	}
	s := New(NewPool(DefaultPoolSize), DefaultLeadTime, DefaultFallSpeed)
	s.Load(chart)
	return s, chart
}

func TestSpawnWithinLeadTime(t *testing.T) {
	s, _ := newScheduler(t)

	var spawnTests = map[time.Duration]int{
		0:                       4, // 1.0 1.5 2.0 2.0
		500 * time.Millisecond:  5, // + 2.5
		1000 * time.Millisecond: 6, // + 3.0
		1100 * time.Millisecond: 7, // + 3.1
		2000 * time.Millisecond: 8, // + 4.0
	}
	last := time.Duration(0)
	for _, now := range []time.Duration{0, 500 * time.Millisecond, time.Second, 1100 * time.Millisecond, 2 * time.Second} {
		if now < last {
			t.Fatal("test times out of order")
		}
		last = now
		if err := s.Update(now); nil != err {
			t.Fatal(err)
		}
		if len(s.Active()) != spawnTests[now] {
			t.Log("At", now, "expected", spawnTests[now], "active notes, got", len(s.Active()))
			t.Fail()
		}
	}
	if s.Remaining() != 0 {
		t.Fatal("notes left to spawn", s.Remaining())
	}
}

func TestNeverRespawns(t *testing.T) {
	s, chart := newScheduler(t)
	seen := map[int]bool{}
	for now := time.Duration(0); now < 6*time.Second; now += 16 * time.Millisecond {
		before := s.Remaining()
		if err := s.Update(now); nil != err {
			t.Fatal(err)
		}
		active := s.Active()
		for _, n := range active[len(active)-(before-s.Remaining()):] {
			if seen[n.Index] {
				t.Fatal("note", n.Index, "spawned twice")
			}
			seen[n.Index] = true
		}
		s.Sweep(func(n *ActiveNote) bool {
			return n.Target() <= now
		}, nil)
	}
	if len(seen) != len(chart.Notes) {
		t.Fatal("not every note spawned", len(seen))
	}
	if !s.Done() {
		t.Fatal("scheduler not done")
	}
}

func TestPositions(t *testing.T) {
	s, _ := newScheduler(t)
	if err := s.Update(0); nil != err {
		t.Fatal(err)
	}
	n := s.Active()[0]
	if math.Abs(n.Position-5) > 1e-9 {
		t.Fatal("note 1s away at speed 5 should be at 5, got", n.Position)
	}
	s.Update(1250 * time.Millisecond)
	if math.Abs(n.Position+1.25) > 1e-9 {
		t.Fatal("late note should be below the line, got", n.Position)
	}
}

func TestActiveNotesAreUnique(t *testing.T) {
	s, _ := newScheduler(t)
	s.Update(10 * time.Second)
	slots := map[*ActiveNote]bool{}
	for _, n := range s.Active() {
		if slots[n] {
			t.Fatal("active note listed twice")
		}
		slots[n] = true
		if !n.Active || !s.Pool().InUse(n) {
			t.Fatal("active note not in use", n.Index)
		}
	}
}

func TestRecycleAndClear(t *testing.T) {
	s, _ := newScheduler(t)
	s.Update(time.Second)
	first := s.Active()[0]
	index := first.Index
	s.Recycle(first)
	for _, n := range s.Active() {
		if n.Index == index {
			t.Fatal("recycled note still active")
		}
	}
	free := s.Pool().Free()
	count := len(s.Active())
	s.Clear()
	if len(s.Active()) != 0 || s.Pool().Free() != free+count {
		t.Fatal("clear did not return every slot")
	}
}

func TestSweepCallback(t *testing.T) {
	s, _ := newScheduler(t)
	s.Update(time.Second)
	removed := []int{}
	s.Sweep(func(n *ActiveNote) bool {
		return n.Lane() == 0
	}, func(n *ActiveNote) {
		if !s.Pool().InUse(n) {
			t.Fatal("note recycled before callback")
		}
		removed = append(removed, n.Index)
	})
	if len(removed) != 3 { // 1.0 2.0 3.0 lane 0
		t.Fatal("removed", removed)
	}
	for _, n := range s.Active() {
		if n.Lane() == 0 {
			t.Fatal("lane 0 note survived the sweep")
		}
	}
}

func TestPoolExhaustion(t *testing.T) {
	chart, _ := testdata.GetChart()
	pool := NewPool(2)
	pool.Limit = 2
	s := New(pool, DefaultLeadTime, DefaultFallSpeed)
	s.Load(chart)
	if err := s.Update(time.Second); nil == err {
		t.Fatal("expected pool exhaustion")
	}
}
