package theme

import (
	"git.lost.host/meutraa/autochart/internal/game"
	"git.lost.host/meutraa/autochart/internal/score"
)

type Theme interface {
	RenderJudgement(j game.Judgement) string
	RenderRank(r score.Rank) string
	RenderLane(lane int, lanes int) string
}
