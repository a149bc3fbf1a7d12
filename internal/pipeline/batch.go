package pipeline

import (
	"context"
	"sync"

	"git.lost.host/meutraa/autochart/internal/game"
)

type BatchResult struct {
	Request Request
	Chart   *game.Chart
	Err     error
}

// Batch loads every request with at most workers analyses in flight.
// Results keep the order of the requests.
func (p *Pipeline) Batch(ctx context.Context, reqs []Request, workers int) []BatchResult {
	if workers < 1 {
		workers = 1
	}
	results := make([]BatchResult, len(reqs))
	sem := make(chan struct{}, workers)
	var wg sync.WaitGroup

	for i, req := range reqs {
		wg.Add(1)
		go func(i int, req Request) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			chart, err := p.Load(ctx, req)
			results[i] = BatchResult{Request: req, Chart: chart, Err: err}
		}(i, req)
	}
	wg.Wait()
	return results
}
