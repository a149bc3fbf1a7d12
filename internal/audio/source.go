// Package audio adapts beep decoders and the speaker to the analysis
// pipeline and the playback clock.
package audio

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"git.lost.host/meutraa/autochart/internal/game"
	"github.com/faiface/beep"
	"github.com/faiface/beep/mp3"
	"github.com/faiface/beep/vorbis"
	"github.com/faiface/beep/wav"
)

// Provider supplies decoded PCM for a local audio file.
type Provider interface {
	Load(path string) (*game.PCM, error)
}

// Extensions lists the file types DefaultProvider can decode.
var Extensions = []string{".wav", ".mp3", ".ogg"}

type DefaultProvider struct{}

func (p *DefaultProvider) Load(path string) (*game.PCM, error) {
	streamer, format, err := Open(path)
	if nil != err {
		return nil, err
	}
	defer streamer.Close()
	return Decode(streamer, format)
}

// Open picks a decoder by file extension.
func Open(path string) (beep.StreamSeekCloser, beep.Format, error) {
	f, err := os.Open(path)
	if nil != err {
		return nil, beep.Format{}, fmt.Errorf("%w: %v", game.ErrInputData, err)
	}

	var streamer beep.StreamSeekCloser
	var format beep.Format
	switch strings.ToLower(filepath.Ext(path)) {
	case ".wav":
		streamer, format, err = wav.Decode(f)
	case ".mp3":
		streamer, format, err = mp3.Decode(f)
	case ".ogg":
		streamer, format, err = vorbis.Decode(f)
	default:
		err = errors.New("unsupported audio format")
	}
	if nil != err {
		f.Close()
		return nil, beep.Format{}, fmt.Errorf("%w: %s: %v", game.ErrInputData, path, err)
	}
	return streamer, format, nil
}

// Decode drains a streamer into an interleaved buffer with the format's
// channel count. Beep always streams stereo frames, mono sources repeat the
// left channel on the right.
func Decode(s beep.Streamer, format beep.Format) (*game.PCM, error) {
	channels := format.NumChannels
	if channels < 1 || channels > 2 {
		channels = 2
	}
	pcm := &game.PCM{Channels: channels, SampleRate: int(format.SampleRate)}

	buf := make([][2]float64, 512)
	for {
		n, ok := s.Stream(buf)
		for _, frame := range buf[:n] {
			pcm.Samples = append(pcm.Samples, frame[:channels]...)
		}
		if !ok {
			break
		}
	}
	if err := s.Err(); nil != err {
		return nil, fmt.Errorf("%w: %v", game.ErrInputData, err)
	}
	return pcm, nil
}

// SourceID names a track after its file, without directory or extension.
func SourceID(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
