package render

import (
	"context"
	"io"
	"os"
	"strings"
	"time"
)

// DefaultRenderer keeps a single status line at the bottom of the output and
// prints messages above it.
type DefaultRenderer struct {
	Out io.Writer

	buffer strings.Builder
	status string
}

func (r *DefaultRenderer) out() io.Writer {
	if nil == r.Out {
		return os.Stdout
	}
	return r.Out
}

func (r *DefaultRenderer) Init() error {
	r.buffer.WriteString("\033[?25l") // Make the cursor invisible
	return r.flush()
}

func (r *DefaultRenderer) Deinit() error {
	r.clearLine()
	r.buffer.WriteString(r.status)
	r.buffer.WriteString("\r\n\033[?25h") // Make the cursor visible
	r.status = ""
	return r.flush()
}

// Loop calls tick once per period until it returns false or ctx is done. A
// slow tick shortens the sleep that follows it.
func (r *DefaultRenderer) Loop(ctx context.Context, period time.Duration, tick func(now time.Time) bool) error {
	for {
		now := time.Now()
		deadline := now.Add(period)

		cont := tick(now)
		if err := r.flush(); nil != err {
			return err
		}
		if !cont {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Until(deadline)):
		}
	}
}

func (r *DefaultRenderer) clearLine() {
	r.buffer.WriteString("\r\033[2K")
}

// Status replaces the status line.
func (r *DefaultRenderer) Status(message string) {
	r.status = message
	r.clearLine()
	r.buffer.WriteString(message)
}

// Println writes a line above the status line. The terminal is raw while
// playing, so lines end in \r\n.
func (r *DefaultRenderer) Println(message string) {
	r.clearLine()
	r.buffer.WriteString(message)
	r.buffer.WriteString("\r\n")
	r.buffer.WriteString(r.status)
}

func (r *DefaultRenderer) flush() error {
	if r.buffer.Len() == 0 {
		return nil
	}
	_, err := io.WriteString(r.out(), r.buffer.String())
	r.buffer.Reset()
	return err
}
