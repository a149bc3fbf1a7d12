package game

// BeatGrid is a uniformly spaced run of beat timestamps in seconds.
type BeatGrid []float64

// Interval is the spacing between beats, 0 when the grid has fewer than two beats.
func (g BeatGrid) Interval() float64 {
	if len(g) < 2 {
		return 0
	}
	return g[1] - g[0]
}

// Span returns the time between beat i and beat j.
func (g BeatGrid) Span(i, j int) float64 {
	return g[j] - g[i]
}
