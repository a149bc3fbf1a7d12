package game

// PCM is a decoded audio buffer. Samples are interleaved by channel.
type PCM struct {
	Samples    []float64
	Channels   int
	SampleRate int
}

// Frames is the number of samples per channel.
func (p *PCM) Frames() int {
	if p.Channels <= 1 {
		return len(p.Samples)
	}
	return len(p.Samples) / p.Channels
}

// Duration is the length of the buffer in seconds.
func (p *PCM) Duration() float64 {
	if p.SampleRate <= 0 {
		return 0
	}
	return float64(p.Frames()) / float64(p.SampleRate)
}
