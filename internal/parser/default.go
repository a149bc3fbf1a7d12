package parser

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"git.lost.host/meutraa/autochart/internal/game"
)

// DefaultParser reads and writes chart records as JSON.
type DefaultParser struct {
	// Lanes bounds note lanes when validating, 0 skips the upper bound.
	Lanes int
}

func (p *DefaultParser) Parse(r io.Reader) (*game.Chart, error) {
	decoder := json.NewDecoder(r)
	decoder.DisallowUnknownFields()

	var chart game.Chart
	if err := decoder.Decode(&chart); nil != err {
		return nil, fmt.Errorf("%w: %v", game.ErrSerialization, err)
	}
	if err := chart.Validate(p.Lanes); nil != err {
		return nil, err
	}
	return &chart, nil
}

func (p *DefaultParser) Write(w io.Writer, chart *game.Chart) error {
	if err := chart.Validate(p.Lanes); nil != err {
		return err
	}
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(chart)
}

func (p *DefaultParser) Marshal(chart *game.Chart) ([]byte, error) {
	var buf bytes.Buffer
	if err := p.Write(&buf, chart); nil != err {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (p *DefaultParser) Unmarshal(data []byte) (*game.Chart, error) {
	return p.Parse(bytes.NewReader(data))
}

func (p *DefaultParser) Load(file string) (*game.Chart, error) {
	f, err := os.Open(file)
	if nil != err {
		return nil, err
	}
	defer f.Close()
	return p.Parse(f)
}

// Save writes the chart through a temporary file so a crash never leaves a
// half written record behind.
func (p *DefaultParser) Save(file string, chart *game.Chart) error {
	data, err := p.Marshal(chart)
	if nil != err {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(file), 0755); nil != err {
		return err
	}
	// Each write gets its own temporary file, so concurrent saves of one
	// record never interleave.
	tmp, err := os.CreateTemp(filepath.Dir(file), filepath.Base(file)+".*.tmp")
	if nil != err {
		return err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); nil != err {
		tmp.Close()
		return err
	}
	if err := tmp.Chmod(0644); nil != err {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); nil != err {
		return err
	}
	return os.Rename(tmp.Name(), file)
}
