// Package pipeline turns an audio file into a chart, going through the store
// first so a track is only analysed once per difficulty.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"log"
	"math/rand"
	"path/filepath"

	"git.lost.host/meutraa/autochart/internal/analysis"
	"git.lost.host/meutraa/autochart/internal/audio"
	"git.lost.host/meutraa/autochart/internal/game"
	"git.lost.host/meutraa/autochart/internal/pattern"
	"git.lost.host/meutraa/autochart/internal/store"
)

// Loading progress milestones.
const (
	Decoded    = 0.5
	Analyzing  = 0.6
	Generating = 0.8
	Persisted  = 0.9
	Done       = 1.0
)

type Request struct {
	Path    string
	Profile game.Profile

	// Seed overrides the seed derived from the source and difficulty.
	Seed *int64

	// Force skips the cached chart and replaces it.
	Force bool
}

type Pipeline struct {
	Provider audio.Provider
	Store    store.Store
	Lanes    int

	// OnProgress receives the milestones above in increasing order.
	OnProgress func(path string, progress float64)
}

func (p *Pipeline) progress(path string, f float64) {
	if nil != p.OnProgress {
		p.OnProgress(path, f)
	}
}

// Seed derives a stable seed so regenerating a chart gives the same notes.
func Seed(sourceID, tag string) int64 {
	h := fnv.New64a()
	h.Write([]byte(sourceID + "/" + tag))
	return int64(h.Sum64())
}

// Load returns the cached chart for the request, or decodes, analyses and
// generates one and stores it. A cached record that no longer decodes is
// regenerated.
func (p *Pipeline) Load(ctx context.Context, req Request) (*game.Chart, error) {
	if err := req.Profile.Validate(); nil != err {
		return nil, err
	}
	key := store.Key{SourceID: audio.SourceID(req.Path), Difficulty: req.Profile.Tag}

	if nil != p.Store && !req.Force {
		chart, err := p.Store.Get(key)
		switch {
		case nil == err:
			p.progress(req.Path, Done)
			return chart, nil
		case errors.Is(err, game.ErrSerialization):
			log.Println("regenerating malformed chart", key, err)
		case !errors.Is(err, store.ErrNotFound):
			log.Println("unable to read chart store", key, err)
		}
	}

	if err := ctx.Err(); nil != err {
		return nil, err
	}
	pcm, err := p.Provider.Load(req.Path)
	if nil != err {
		return nil, fmt.Errorf("%w: %w", game.ErrNoChart, err)
	}
	p.progress(req.Path, Decoded)

	if err := ctx.Err(); nil != err {
		return nil, err
	}
	seed := Seed(key.SourceID, key.Difficulty)
	if nil != req.Seed {
		seed = *req.Seed
	}
	reference, err := filepath.Abs(req.Path)
	if nil != err {
		reference = req.Path
	}
	chart, err := p.generate(ctx, key.SourceID, reference, pcm, req.Profile, seed, req.Path)
	if nil != err {
		return nil, err
	}

	if nil != p.Store {
		if err := p.Store.Put(chart); nil != err {
			log.Println("unable to cache chart", key, err)
		}
	}
	p.progress(req.Path, Persisted)
	p.progress(req.Path, Done)
	return chart, nil
}

// Generate builds a chart from an already decoded buffer without touching
// the store.
func (p *Pipeline) Generate(ctx context.Context, sourceID, reference string, pcm *game.PCM, profile game.Profile, seed int64) (*game.Chart, error) {
	if err := profile.Validate(); nil != err {
		return nil, err
	}
	return p.generate(ctx, sourceID, reference, pcm, profile, seed, reference)
}

func (p *Pipeline) generate(ctx context.Context, sourceID, reference string, pcm *game.PCM, profile game.Profile, seed int64, path string) (*game.Chart, error) {
	p.progress(path, Analyzing)
	result := analysis.Analyze(pcm)
	if err := ctx.Err(); nil != err {
		return nil, err
	}

	p.progress(path, Generating)
	lanes := p.Lanes
	if lanes <= 0 {
		lanes = pattern.DefaultLanes
	}
	generator, err := pattern.New(lanes, profile, rand.New(rand.NewSource(seed)))
	if nil != err {
		return nil, err
	}
	return &game.Chart{
		SourceID:       sourceID,
		AudioReference: reference,
		BPM:            result.BPM,
		Difficulty:     profile.Tag,
		Notes:          generator.Generate(result.Grid),
	}, nil
}
