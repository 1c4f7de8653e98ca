package timer

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// Timings are written at debug level to the logger carried by ctx
// (zerolog.Ctx). A context without one falls back to
// zerolog.DefaultContextLogger and stays silent when that is unset.

// ---------------------------------------------------------
// Mode 1: Function Level (The "Defer" pattern)
// ---------------------------------------------------------

// Track returns a function that, when executed, logs the duration at debug.
// Usage: defer timer.Track(ctx, "FunctionName")()
func Track(ctx context.Context, name string) func() {
	l := zerolog.Ctx(ctx)
	start := time.Now()
	return func() {
		l.Debug().Str("step", name).Dur("took", time.Since(start)).Msg("timing")
	}
}

// ---------------------------------------------------------
// Mode 2: Block Level (The "Stopwatch" pattern)
// ---------------------------------------------------------

// Stopwatch is useful for measuring multiple steps within one function.
type Stopwatch struct {
	log   *zerolog.Logger
	name  string
	start time.Time
	last  time.Time
}

// NewStopwatch starts the clock.
func NewStopwatch(ctx context.Context, name string) *Stopwatch {
	now := time.Now()
	return &Stopwatch{log: zerolog.Ctx(ctx), name: name, start: now, last: now}
}

// Lap logs the time taken since the last Lap call and returns it.
func (s *Stopwatch) Lap(stepName string) time.Duration {
	now := time.Now()
	elapsed := now.Sub(s.last)
	s.last = now
	s.log.Debug().
		Str("stopwatch", s.name).
		Str("step", stepName).
		Dur("took", elapsed).
		Dur("total", now.Sub(s.start)).
		Msg("lap")
	return elapsed
}

// Total logs the total time since the stopwatch started and returns it.
func (s *Stopwatch) Total() time.Duration {
	total := time.Since(s.start)
	s.log.Debug().Str("stopwatch", s.name).Dur("total", total).Msg("finished")
	return total
}
