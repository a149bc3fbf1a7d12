package audio

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/speaker"
)

// Device is the initialized speaker. Its clock counts frames pulled by the
// output device, so it advances with the audio hardware and not with frames
// rendered or ticks processed.
type Device struct {
	SampleRate beep.SampleRate
	clock      *DeviceClock
}

func NewDevice(sampleRate beep.SampleRate, buffer time.Duration) (*Device, error) {
	if err := speaker.Init(sampleRate, sampleRate.N(buffer)); nil != err {
		return nil, err
	}
	clock := NewDeviceClock(sampleRate)
	speaker.Play(clock)
	return &Device{SampleRate: sampleRate, clock: clock}, nil
}

func (d *Device) Clock() *DeviceClock {
	return d.clock
}

// DeviceClock is a silent streamer that never ends. Between device pulls the
// reading is interpolated with the wall clock, capped at the size of the last
// pull, and it never goes backwards.
type DeviceClock struct {
	rate   beep.SampleRate
	frames int64 // atomic

	mu       sync.Mutex
	lastPull time.Time
	lastSize time.Duration
	highMark time.Duration
	now      func() time.Time
}

func NewDeviceClock(rate beep.SampleRate) *DeviceClock {
	return &DeviceClock{rate: rate, now: time.Now}
}

func (c *DeviceClock) Stream(samples [][2]float64) (int, bool) {
	for i := range samples {
		samples[i] = [2]float64{}
	}
	c.mu.Lock()
	c.lastPull = c.now()
	c.lastSize = c.rate.D(len(samples))
	c.mu.Unlock()
	atomic.AddInt64(&c.frames, int64(len(samples)))
	return len(samples), true
}

func (c *DeviceClock) Err() error {
	return nil
}

// Now is the device time, monotonically non-decreasing.
func (c *DeviceClock) Now() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()

	// The pulled frames have only started playing, so the count minus the
	// last pull is where the device was at lastPull.
	now := c.rate.D(int(atomic.LoadInt64(&c.frames))) - c.lastSize
	if !c.lastPull.IsZero() {
		elapsed := c.now().Sub(c.lastPull)
		if elapsed > c.lastSize {
			elapsed = c.lastSize
		}
		now += elapsed
	}
	if now < c.highMark {
		now = c.highMark
	}
	c.highMark = now
	return now
}

// Track plays one decoded file through the speaker and implements the
// playback clock's track.
type Track struct {
	streamer beep.StreamSeekCloser
	format   beep.Format
	device   *Device

	ctrl *beep.Ctrl
	done *atomic.Bool // replaced on every Play so a detached sequence cannot flag the new one
}

func OpenTrack(path string, device *Device) (*Track, error) {
	streamer, format, err := Open(path)
	if nil != err {
		return nil, err
	}
	return &Track{streamer: streamer, format: format, device: device}, nil
}

func (t *Track) Length() time.Duration {
	return t.format.SampleRate.D(t.streamer.Len())
}

func (t *Track) Play(offset time.Duration) error {
	t.detach()

	// A negative offset is a lead in of silence before the track starts.
	position, lead := t.format.SampleRate.N(offset), 0
	if position < 0 {
		position, lead = 0, -position
	}
	if position > t.streamer.Len() {
		position = t.streamer.Len()
	}
	speaker.Lock()
	err := t.streamer.Seek(position)
	speaker.Unlock()
	if nil != err {
		return err
	}

	var s beep.Streamer = t.streamer
	if lead > 0 {
		s = beep.Seq(beep.Silence(lead), s)
	}
	if t.format.SampleRate != t.device.SampleRate {
		s = beep.Resample(4, t.format.SampleRate, t.device.SampleRate, s)
	}
	done := &atomic.Bool{}
	t.done = done
	t.ctrl = &beep.Ctrl{Streamer: s}
	speaker.Play(beep.Seq(t.ctrl, beep.Callback(func() {
		done.Store(true)
	})))
	return nil
}

func (t *Track) Pause() {
	t.setPaused(true)
}

func (t *Track) Resume() {
	t.setPaused(false)
}

func (t *Track) Stop() {
	t.detach()
	if nil != t.done {
		t.done.Store(true)
	}
}

// Playing is false once the decoder ran out of samples.
func (t *Track) Playing() bool {
	if nil == t.ctrl || t.done.Load() {
		return false
	}
	speaker.Lock()
	defer speaker.Unlock()
	return !t.ctrl.Paused
}

func (t *Track) Close() error {
	t.Stop()
	return t.streamer.Close()
}

func (t *Track) setPaused(paused bool) {
	if nil == t.ctrl {
		return
	}
	speaker.Lock()
	t.ctrl.Paused = paused
	speaker.Unlock()
}

// detach drops the current controller from the mixer by emptying it.
func (t *Track) detach() {
	if nil == t.ctrl {
		return
	}
	speaker.Lock()
	t.ctrl.Streamer = nil
	speaker.Unlock()
	t.ctrl = nil
}
