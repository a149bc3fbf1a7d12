// Package score accumulates judgement outcomes into a score, combo and rank,
// and records finished plays.
package score

import (
	"fmt"
	"math"

	"git.lost.host/meutraa/autochart/internal/game"
)

// Points awarded for each hit judgement before the combo bonus.
type Points struct {
	Perfect int
	Great   int
	Good    int
}

func DefaultPoints() Points {
	return Points{Perfect: 1000, Great: 800, Good: 500}
}

func (p Points) For(j game.Judgement) int {
	switch j {
	case game.Perfect:
		return p.Perfect
	case game.Great:
		return p.Great
	case game.Good:
		return p.Good
	}
	return 0
}

func (p Points) Validate() error {
	if p.Perfect < 0 || p.Great < 0 || p.Good < 0 {
		return fmt.Errorf("%w: negative points %+v", game.ErrConfig, p)
	}
	return nil
}

// Weight of each judgement in the accuracy, in percent.
var weights = [...]int{
	game.Perfect: 100,
	game.Great:   80,
	game.Good:    50,
	game.Miss:    0,
}

// Change is sent to observers after every applied judgement.
type Change struct {
	Judgement game.Judgement
	Increment int
	Score     int
	Combo     int
}

// Accumulator owns the score state of one play. It is not safe for
// concurrent use; the tick loop owns it.
type Accumulator struct {
	Points Points

	total    int
	score    int
	combo    int
	maxCombo int
	counts   [len(game.Judgements)]int

	observers []func(Change)
}

func NewAccumulator(points Points) *Accumulator {
	return &Accumulator{Points: points}
}

// Reset clears the state for a chart of total notes.
func (a *Accumulator) Reset(total int) {
	a.total = total
	a.score = 0
	a.combo = 0
	a.maxCombo = 0
	a.counts = [len(game.Judgements)]int{}
}

func (a *Accumulator) Observe(f func(Change)) {
	a.observers = append(a.observers, f)
}

// Multiplier is the combo bonus, growing by a tenth every fifty combo.
func Multiplier(combo int) float64 {
	return 1 + float64(combo)/50*0.1
}

// Apply a judgement and return the score increment. The bonus uses the combo
// after the judgement has been counted.
func (a *Accumulator) Apply(j game.Judgement) int {
	a.counts[j]++
	if j.Hit() {
		a.combo++
	} else {
		a.combo = 0
	}
	if a.combo > a.maxCombo {
		a.maxCombo = a.combo
	}
	inc := int(math.RoundToEven(float64(a.Points.For(j)) * Multiplier(a.combo)))
	a.score += inc

	c := Change{Judgement: j, Increment: inc, Score: a.score, Combo: a.combo}
	for _, f := range a.observers {
		f(c)
	}
	return inc
}

func (a *Accumulator) Score() int {
	return a.score
}

func (a *Accumulator) Combo() int {
	return a.combo
}

func (a *Accumulator) MaxCombo() int {
	return a.maxCombo
}

func (a *Accumulator) Count(j game.Judgement) int {
	return a.counts[j]
}

func (a *Accumulator) Total() int {
	return a.total
}

// Judged is the number of judgements applied so far.
func (a *Accumulator) Judged() int {
	n := 0
	for _, c := range a.counts {
		n += c
	}
	return n
}

// Accuracy is the weighted hit count over every note in the chart, so notes
// not yet judged count against it.
func (a *Accumulator) Accuracy() float64 {
	if a.total <= 0 {
		return 0
	}
	sum := 0
	for j, c := range a.counts {
		sum += c * weights[j]
	}
	return float64(sum) / float64(a.total*100)
}

func (a *Accumulator) Rank() Rank {
	return RankFor(a.Accuracy(), a.counts[game.Miss])
}

func (a *Accumulator) Result() Result {
	return Result{
		Score:      a.score,
		MaxCombo:   a.maxCombo,
		Accuracy:   a.Accuracy(),
		Rank:       a.Rank(),
		Perfect:    a.counts[game.Perfect],
		Great:      a.counts[game.Great],
		Good:       a.counts[game.Good],
		Miss:       a.counts[game.Miss],
		TotalNotes: a.total,
	}
}

// Result is the summary of a finished play.
type Result struct {
	Score      int     `json:"score"`
	MaxCombo   int     `json:"maxCombo"`
	Accuracy   float64 `json:"accuracy"`
	Rank       Rank    `json:"rank"`
	Perfect    int     `json:"perfect"`
	Great      int     `json:"great"`
	Good       int     `json:"good"`
	Miss       int     `json:"miss"`
	TotalNotes int     `json:"totalNotes"`
}
