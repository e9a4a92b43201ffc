// Package retry holds the backoff policy shared by the generator and the synthesizer.
package retry

import (
	"context"
	"time"
)

// Policy is a bounded exponential backoff: the delay starts at InitialDelay
// and doubles after every retryable failure.
type Policy struct {
	MaxAttempts  int
	InitialDelay time.Duration
}

// Delays has one entry per attempt: the wait that follows it when it fails.
func (p Policy) Delays() []time.Duration {
	out := make([]time.Duration, 0, p.MaxAttempts)
	d := p.InitialDelay
	for i := 0; i < p.MaxAttempts; i++ {
		out = append(out, d)
		d *= 2
	}
	return out
}

type SleepFunc func(ctx context.Context, d time.Duration) error

// Sleep waits for d or until ctx is done.
func Sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
