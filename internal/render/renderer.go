package render

import (
	"context"
	"time"
)

// Renderer owns the terminal while a chart plays. Output goes through a
// buffer that is flushed once per tick.
type Renderer interface {
	Init() error
	Deinit() error
	Loop(ctx context.Context, period time.Duration, tick func(now time.Time) bool) error
	Status(message string)
	Println(message string)
}
