package clock

import "time"

// Manual is a Source advanced by hand, for replays and tests.
type Manual struct {
	now time.Duration
}

func (m *Manual) Now() time.Duration {
	return m.now
}

// Advance moves the source forward; negative steps are ignored.
func (m *Manual) Advance(d time.Duration) {
	if d > 0 {
		m.now += d
	}
}

// Set moves the source to t if t is ahead of it.
func (m *Manual) Set(t time.Duration) {
	if t > m.now {
		m.now = t
	}
}

// SilentTrack is a Track with no audio, it plays for Duration of source time.
type SilentTrack struct {
	Duration time.Duration
	Source   Source

	start   time.Duration
	offset  time.Duration
	playing bool
	stopped bool
}

func (t *SilentTrack) Play(offset time.Duration) error {
	t.start = t.Source.Now()
	t.offset = offset
	t.playing = true
	t.stopped = false
	return nil
}

func (t *SilentTrack) Pause() {
	if !t.playing {
		return
	}
	t.offset = t.position()
	t.playing = false
}

func (t *SilentTrack) Resume() {
	if t.playing || t.stopped {
		return
	}
	t.start = t.Source.Now()
	t.playing = true
}

func (t *SilentTrack) Stop() {
	t.playing = false
	t.stopped = true
}

func (t *SilentTrack) Playing() bool {
	return t.playing && t.position() < t.Duration
}

func (t *SilentTrack) Length() time.Duration {
	return t.Duration
}

func (t *SilentTrack) position() time.Duration {
	if !t.playing {
		return t.offset
	}
	return t.offset + t.Source.Now() - t.start
}
