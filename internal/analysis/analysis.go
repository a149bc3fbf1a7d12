package analysis

import "git.lost.host/meutraa/autochart/internal/game"

// Result holds every intermediate product of analysing one buffer.
type Result struct {
	Envelope []float64
	Onsets   []float64
	BPM      float64
	Grid     game.BeatGrid
	Duration float64
}

// Analyze runs the envelope, onset, tempo and grid stages over a buffer.
func Analyze(pcm *game.PCM) *Result {
	sampleRate := pcm.SampleRate
	if sampleRate <= 0 {
		sampleRate = DefaultSampleRate
	}
	envelope := Envelope(Mono(pcm))
	onsets := Onsets(envelope, sampleRate)
	bpm := EstimateBPM(onsets)
	duration := float64(pcm.Frames()) / float64(sampleRate)
	return &Result{
		Envelope: envelope,
		Onsets:   onsets,
		BPM:      bpm,
		Grid:     Grid(bpm, onsets, duration),
		Duration: duration,
	}
}
