package buffer

import (
	"context"
	"time"

	"github.com/Vovarama1992/go-utils/logger"
)

type Runner interface {
	Run(ctx context.Context) (PassReport, error)
}

// Scheduler runs a pass right away and then once per interval. Passes never
// overlap: a tick that fires during a long pass is dropped.
type Scheduler struct {
	runner   Runner
	interval time.Duration
	log      *logger.ZapLogger
}

func NewScheduler(runner Runner, interval time.Duration, log *logger.ZapLogger) *Scheduler {
	return &Scheduler{runner: runner, interval: interval, log: log}
}

// Start blocks until ctx is done.
func (s *Scheduler) Start(ctx context.Context) {
	s.runOnce(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.runOnce(ctx)
		}
	}
}

// Go starts the scheduler in the background. The returned channel closes
// once ctx is done and the pass in flight, if any, has returned.
func (s *Scheduler) Go(ctx context.Context) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		s.Start(ctx)
	}()
	return done
}

func (s *Scheduler) runOnce(ctx context.Context) {
	rep, err := s.runner.Run(ctx)
	if err != nil && ctx.Err() == nil {
		s.log.Log(logger.LogEntry{
			Level:   "error",
			Message: "[" + rep.PassID + "] maintenance pass failed, next try in " + s.interval.String(),
			Service: "buffer",
			Error:   err,
		})
	}
}
