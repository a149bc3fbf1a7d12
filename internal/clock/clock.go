// Package clock keeps the authoritative song time. It is read from a
// monotonic device source rather than summed from frame deltas, so a slow
// frame never shifts where the song is.
package clock

import (
	"errors"
	"time"
)

// Source is a monotonic, free running time reading, normally the audio device.
type Source interface {
	Now() time.Duration
}

// Track is the audio being played against the clock.
type Track interface {
	Play(offset time.Duration) error
	Pause()
	Resume()
	Stop()
	Playing() bool
	Length() time.Duration
}

var ErrNoTrack = errors.New("no track loaded")

type Clock struct {
	source Source
	track  Track

	start   time.Duration // source time at song time 0
	paused  time.Duration // song time while not playing
	playing bool
	ended   bool

	onEnd []func()
}

func New(source Source) *Clock {
	return &Clock{source: source}
}

func (c *Clock) Load(track Track) {
	if nil != c.track && c.playing {
		c.track.Stop()
	}
	c.track = track
	c.paused = 0
	c.playing = false
	c.ended = false
}

func (c *Clock) Play(offset time.Duration) error {
	if nil == c.track {
		return ErrNoTrack
	}
	if err := c.track.Play(offset); nil != err {
		return err
	}
	c.start = c.source.Now() - offset
	c.playing = true
	c.ended = false
	return nil
}

func (c *Clock) Pause() {
	if !c.playing {
		return
	}
	c.paused = c.CurrentTime()
	c.track.Pause()
	c.playing = false
}

func (c *Clock) Resume() {
	if c.playing || nil == c.track || c.ended {
		return
	}
	c.start = c.source.Now() - c.paused
	c.track.Resume()
	c.playing = true
}

func (c *Clock) Stop() {
	if nil != c.track {
		c.track.Stop()
	}
	c.playing = false
	c.paused = 0
}

func (c *Clock) CurrentTime() time.Duration {
	if c.playing {
		return c.source.Now() - c.start
	}
	return c.paused
}

func (c *Clock) IsPlaying() bool {
	return c.playing
}

func (c *Clock) Length() time.Duration {
	if nil == c.track {
		return 0
	}
	return c.track.Length()
}

// OnEnd registers a callback for the end of the song.
func (c *Clock) OnEnd(f func()) {
	c.onEnd = append(c.onEnd, f)
}

// Update detects the end of the song: the track has gone quiet and the clock
// reached its length. The time freezes at the end and callbacks fire once.
func (c *Clock) Update() bool {
	if !c.playing || c.ended {
		return c.ended
	}
	now := c.CurrentTime()
	if !c.track.Playing() && now >= c.track.Length() {
		c.paused = now
		c.playing = false
		c.ended = true
		for _, f := range c.onEnd {
			f()
		}
	}
	return c.ended
}

func (c *Clock) Ended() bool {
	return c.ended
}
