package session

import (
	"fmt"
	"time"

	"git.lost.host/meutraa/autochart/internal/game"
	"git.lost.host/meutraa/autochart/internal/judge"
	"git.lost.host/meutraa/autochart/internal/pattern"
	"git.lost.host/meutraa/autochart/internal/schedule"
	"git.lost.host/meutraa/autochart/internal/score"
)

type Options struct {
	Lanes     int
	LeadTime  time.Duration
	FallSpeed float64
	Windows   judge.Windows
	Points    score.Points

	// InputOffset is subtracted from every press, compensating for audio
	// output latency.
	InputOffset time.Duration

	PoolSize int
	// PoolLimit caps pool growth, 0 grows without bound.
	PoolLimit int
}

func DefaultOptions() Options {
	return Options{
		Lanes:     pattern.DefaultLanes,
		LeadTime:  schedule.DefaultLeadTime,
		FallSpeed: schedule.DefaultFallSpeed,
		Windows:   judge.DefaultWindows(),
		Points:    score.DefaultPoints(),
		PoolSize:  schedule.DefaultPoolSize,
	}
}

func (o Options) Validate() error {
	if o.Lanes < 1 {
		return fmt.Errorf("%w: lane count %d", game.ErrConfig, o.Lanes)
	}
	if err := o.Windows.Validate(); nil != err {
		return err
	}
	// A note must be spawned before it can age out.
	if o.LeadTime <= o.Windows.Miss {
		return fmt.Errorf("%w: lead time %v must exceed the miss threshold %v", game.ErrConfig, o.LeadTime, o.Windows.Miss)
	}
	if o.FallSpeed <= 0 {
		return fmt.Errorf("%w: fall speed %v", game.ErrConfig, o.FallSpeed)
	}
	if o.PoolSize < 0 || o.PoolLimit < 0 {
		return fmt.Errorf("%w: pool size %d limit %d", game.ErrConfig, o.PoolSize, o.PoolLimit)
	}
	return o.Points.Validate()
}
