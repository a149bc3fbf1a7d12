package parser

import (
	"io"

	"git.lost.host/meutraa/autochart/internal/game"
)

type Parser interface {
	Parse(r io.Reader) (*game.Chart, error)
	Write(w io.Writer, chart *game.Chart) error
}
