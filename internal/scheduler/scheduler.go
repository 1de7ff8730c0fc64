package scheduler

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Requester abstracts executing a single request attempt.
// Implementations should return an error for failed attempts.
type Requester interface {
	Do(ctx context.Context) error
}

// Logger receives scheduler lifecycle and failure messages.
type Logger interface {
	Logf(format string, args ...interface{})
}

type nopLogger struct{}

func (nopLogger) Logf(string, ...interface{}) {}

// Options configure the Scheduler.
type Options struct {
	// Requester executes a single attempt. Required.
	Requester Requester
	// Logger receives failure warnings and the final summary. Optional.
	Logger Logger
	// VerboseLogger receives per-attempt success lines and lifecycle
	// chatter. Optional; leave nil to keep runs quiet.
	VerboseLogger Logger
	// LimiterFactory builds the pacing limiter. Tests inject a fast one.
	LimiterFactory func(interval time.Duration) *rate.Limiter
	// StartPoll and DrainPoll bound how long the scheduler sleeps between
	// checks while waiting for the start time or draining in-flight work.
	StartPoll time.Duration
	DrainPoll time.Duration
}

func (o *Options) normalize() {
	if o.Logger == nil {
		o.Logger = nopLogger{}
	}
	if o.VerboseLogger == nil {
		o.VerboseLogger = nopLogger{}
	}
	if o.LimiterFactory == nil {
		o.LimiterFactory = func(interval time.Duration) *rate.Limiter {
			// Burst of one: the bucket starts full, so the first Wait
			// returns at the start time and each later Wait spaces
			// attempts one interval apart.
			return rate.NewLimiter(rate.Every(interval), 1)
		}
	}
	if o.StartPoll <= 0 {
		o.StartPoll = time.Second
	}
	if o.DrainPoll <= 0 {
		o.DrainPoll = 100 * time.Millisecond
	}
}

// Result captures the run summary.
type Result struct {
	Attempts  int64
	Successes int64
	Failures  int64
	Elapsed   time.Duration
	Cancelled bool
}

// Scheduler executes a Job: it waits for the start time, paces attempts at
// the job interval, and drains in-flight attempts before returning.
type Scheduler struct {
	job *Job
	opt Options
}

func New(job *Job, opt Options) *Scheduler {
	opt.normalize()
	return &Scheduler{job: job, opt: opt}
}

// Run executes the job until a stop condition is met, then drains. It always
// returns a Result, even when cancelled mid-run.
func (s *Scheduler) Run(ctx context.Context) Result {
	job := s.job
	start := time.Now()

	if job.State() == StateAborted {
		return s.result(start, true)
	}
	job.MarkScheduled()

	// runCtx folds external cancellation, Job.Cancel, and the finish time
	// into one signal, so a long interval never outlives the deadline.
	runCtx, cancel := context.WithDeadline(ctx, job.FinishTime())
	defer cancel()
	go func() {
		select {
		case <-job.Done():
			cancel()
		case <-runCtx.Done():
		}
	}()

	// Attempts must not die with the run context; they finish on their own
	// or hit the per-request timeout.
	workCtx := context.WithoutCancel(ctx)

	if err := s.awaitStart(runCtx); err != nil {
		job.markFinished()
		return s.result(start, true)
	}

	job.markRunning()
	s.opt.VerboseLogger.Logf("scheduling until %s", job.FinishTime().Format(time.RFC3339))

	limiter := s.opt.LimiterFactory(job.Interval())
	for {
		if s.shouldStop(runCtx) {
			break
		}
		if err := limiter.Wait(runCtx); err != nil {
			break
		}
		if s.shouldStop(runCtx) {
			break
		}
		s.fire(workCtx)
	}

	cancelled := ctx.Err() != nil || job.Cancelled()

	job.markDraining()
	s.drain()
	job.markFinished()
	// Release anyone waiting on Done once the run is truly over.
	job.Cancel()

	res := s.result(start, cancelled)
	s.opt.Logger.Logf("%d/%d requests succeeded in %s",
		res.Successes, res.Attempts, res.Elapsed.Round(time.Millisecond))
	return res
}

// awaitStart sleeps in short slices until the job's start time, so that
// cancellation interrupts the wait promptly.
func (s *Scheduler) awaitStart(ctx context.Context) error {
	for {
		wait := time.Until(s.job.StartTime())
		if wait <= 0 {
			return nil
		}
		if wait > s.opt.StartPoll {
			wait = s.opt.StartPoll
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}
}

// shouldStop checks stop conditions in priority order: cancellation, finish
// time, attempt cap.
func (s *Scheduler) shouldStop(ctx context.Context) bool {
	if ctx.Err() != nil {
		return true
	}
	job := s.job
	if !time.Now().Before(job.FinishTime()) {
		return true
	}
	if max := job.MaxAttempts(); max > 0 && job.Attempts() >= max {
		return true
	}
	return false
}

// drain waits for every in-flight attempt to finish. There is no timeout;
// the per-request timeout bounds how long an attempt can linger.
func (s *Scheduler) drain() {
	for s.job.InFlight() > 0 {
		time.Sleep(s.opt.DrainPoll)
	}
}

func (s *Scheduler) result(start time.Time, cancelled bool) Result {
	job := s.job
	return Result{
		Attempts:  job.Attempts(),
		Successes: job.Successes(),
		Failures:  job.Failures(),
		Elapsed:   time.Since(start),
		Cancelled: cancelled,
	}
}
