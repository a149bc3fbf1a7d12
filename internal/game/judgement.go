package game

import "time"

type Judgement uint8

const (
	Perfect Judgement = iota
	Great
	Good
	Miss
)

// Judgements lists every outcome from best to worst.
var Judgements = [...]Judgement{Perfect, Great, Good, Miss}

func (j Judgement) String() string {
	switch j {
	case Perfect:
		return "Perfect"
	case Great:
		return "Great"
	case Good:
		return "Good"
	}
	return "Miss"
}

// Hit reports whether the judgement keeps the combo alive.
func (j Judgement) Hit() bool {
	return j != Miss
}

// Input is a single lane press, timestamped against the playback clock.
type Input struct {
	Lane    int
	HitTime time.Duration
}
