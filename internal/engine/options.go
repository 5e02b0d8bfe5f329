package engine

import (
	"errors"
	"log/slog"
	"time"

	"github.com/PixPMusic/gopher-gesture/internal/actions"
)

const (
	DefaultQueueSize    = 256
	DefaultTickInterval = 10 * time.Millisecond
)

// Option configures an Engine
type Option func(*Engine)

// WithLogger sets the logger
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithEnvironment sets the environment conditions are evaluated against
func WithEnvironment(env actions.Environment) Option {
	return func(e *Engine) {
		if env != nil {
			e.env = env
		}
	}
}

// WithClock replaces the wall clock used to timestamp raw messages and
// drive the tick.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// WithQueueSize bounds the number of events waiting for the consumer
func WithQueueSize(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.queueSize = n
		}
	}
}

// WithTickInterval sets how often timers are advanced while idle
func WithTickInterval(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.tickInterval = d
		}
	}
}

// clockEnvironment is used when no environment is supplied. It knows the
// time but not the frontmost application.
type clockEnvironment struct {
	now func() time.Time
}

func (c clockEnvironment) ActiveApp() (string, error) {
	return "", errors.New("active application unknown")
}

func (c clockEnvironment) Now() time.Time {
	return c.now()
}
