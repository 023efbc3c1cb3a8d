package xsail

import (
	"context"
	"time"

	"github.com/trickstertwo/xclock"
)

// Timer measures time since a start point and sleeps to fixed deadlines.
// It is not safe for concurrent use; each loop owns its own.
type Timer struct {
	clock   xclock.Clock
	start   time.Time
	started bool
}

// NewTimer returns a stopped timer reading clock, or xclock.Default() when nil.
func NewTimer(clock xclock.Clock) *Timer {
	if clock == nil {
		clock = xclock.Default()
	}
	return &Timer{clock: clock}
}

// Start begins timing. It has no effect on a started timer.
func (t *Timer) Start() {
	if !t.started {
		t.Reset()
	}
}

// Reset restarts timing from now.
func (t *Timer) Reset() {
	t.start = t.clock.Now()
	t.started = true
}

func (t *Timer) Stop()         { t.started = false }
func (t *Timer) Started() bool { return t.started }

// Elapsed is zero for a stopped timer.
func (t *Timer) Elapsed() time.Duration {
	if !t.started {
		return 0
	}
	return t.clock.Since(t.start)
}

// Reached reports whether at least d has elapsed.
func (t *Timer) Reached(d time.Duration) bool {
	return t.started && t.Elapsed() >= d
}

// SleepUntil sleeps until period has elapsed since the start point, so work
// done since Start or Reset is subtracted from the wait. It returns ctx.Err()
// if ctx ends first.
func (t *Timer) SleepUntil(ctx context.Context, period time.Duration) error {
	return sleep(ctx, period-t.Elapsed())
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	tm := time.NewTimer(d)
	defer tm.Stop()
	select {
	case <-tm.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Every returns a loop that waits initialDelay, then calls step once per
// period until ctx ends or step fails.
func Every(period, initialDelay time.Duration, step func(ctx context.Context) error) LoopFunc {
	return func(ctx context.Context) error {
		clock, ok := ClockFromContext(ctx)
		if !ok {
			clock = xclock.Default()
		}
		if err := sleep(ctx, initialDelay); err != nil {
			return err
		}
		t := NewTimer(clock)
		t.Start()
		for {
			if err := step(ctx); err != nil {
				return err
			}
			if err := t.SleepUntil(ctx, period); err != nil {
				return err
			}
			t.Reset()
		}
	}
}
