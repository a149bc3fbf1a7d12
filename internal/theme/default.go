package theme

import (
	"fmt"
	"strings"

	"git.lost.host/meutraa/autochart/internal/game"
	"git.lost.host/meutraa/autochart/internal/score"
	"github.com/fatih/color"
)

type DefaultTheme struct {
}

var (
	judgementColors = map[game.Judgement]*color.Color{
		game.Perfect: color.New(color.FgHiMagenta, color.Bold),
		game.Great:   color.New(color.FgHiCyan, color.Bold),
		game.Good:    color.New(color.FgGreen),
		game.Miss:    color.New(color.FgRed, color.Bold),
	}
	rankColors = map[score.Rank]*color.Color{
		score.SS: color.New(color.FgHiYellow, color.Bold),
		score.S:  color.New(color.FgYellow, color.Bold),
		score.A:  color.New(color.FgGreen, color.Bold),
		score.B:  color.New(color.FgCyan),
		score.C:  color.New(color.FgBlue),
		score.D:  color.New(color.FgRed),
	}
	laneColors = [...]*color.Color{
		color.New(color.FgRed),     // 1/4
		color.New(color.FgBlue),    // 1/8
		color.New(color.FgMagenta), // 1/12
		color.New(color.FgYellow),  // 1/16
	}
	plain = color.New(color.Reset)
)

const laneSym = "⬤"

// RenderJudgement pads names to the same width so columns of outcomes line up.
func (t *DefaultTheme) RenderJudgement(j game.Judgement) string {
	c, ok := judgementColors[j]
	if !ok {
		c = plain
	}
	return c.Sprintf("%7v", j)
}

func (t *DefaultTheme) RenderRank(r score.Rank) string {
	c, ok := rankColors[r]
	if !ok {
		c = plain
	}
	return c.Sprint(r)
}

// RenderLane draws a row with a note in one lane.
func (t *DefaultTheme) RenderLane(lane int, lanes int) string {
	var b strings.Builder
	for i := 0; i < lanes; i++ {
		if i == lane {
			b.WriteString(laneColors[i%len(laneColors)].Sprint(laneSym))
		} else {
			b.WriteString("-")
		}
		if i < lanes-1 {
			b.WriteString(" ")
		}
	}
	return b.String()
}

// RenderResult is the summary block printed after a play.
func RenderResult(t Theme, r score.Result) string {
	var b strings.Builder
	fmt.Fprintf(&b, "   Score:  %8v\n", r.Score)
	fmt.Fprintf(&b, "Accuracy:  %7.2f%%\n", r.Accuracy*100)
	fmt.Fprintf(&b, "   Combo:  %8v\n", r.MaxCombo)
	fmt.Fprintf(&b, "    Rank:  %8v\n", t.RenderRank(r.Rank))
	counts := map[game.Judgement]int{
		game.Perfect: r.Perfect,
		game.Great:   r.Great,
		game.Good:    r.Good,
		game.Miss:    r.Miss,
	}
	for _, j := range game.Judgements {
		fmt.Fprintf(&b, " %v:  %8v\n", t.RenderJudgement(j), counts[j])
	}
	return b.String()
}
