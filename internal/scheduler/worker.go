package scheduler

import (
	"context"
	"time"
)

// fire commits one attempt. The attempt and in-flight counters move before
// the goroutine starts, so drain can never observe a fired attempt it does
// not know about.
func (s *Scheduler) fire(ctx context.Context) {
	job := s.job
	n := job.attempts.Add(1)
	job.inflight.Add(1)

	go func() {
		defer job.inflight.Add(-1)
		s.attempt(ctx, n)
	}()
}

// attempt executes a single request and records its outcome. A panic inside
// the requester counts as a failed attempt instead of killing the process.
func (s *Scheduler) attempt(ctx context.Context, n int64) {
	defer func() {
		if r := recover(); r != nil {
			s.job.failures.Add(1)
			s.opt.Logger.Logf("request %d panicked: %v", n, r)
		}
	}()

	start := time.Now()
	err := s.opt.Requester.Do(ctx)
	if err != nil {
		s.job.failures.Add(1)
		s.opt.Logger.Logf("request %d failed: %v", n, err)
		return
	}
	s.job.successes.Add(1)
	s.opt.VerboseLogger.Logf("request %d succeeded in %s", n, time.Since(start).Round(time.Millisecond))
}
