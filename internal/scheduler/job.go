package scheduler

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// State tracks where a Job is in its lifecycle.
type State int32

const (
	StateCreated State = iota
	StateProbePending
	StateAborted
	StateScheduled
	StateRunning
	StateDraining
	StateFinished
)

func (s State) String() string {
	switch s {
	case StateCreated:
		return "created"
	case StateProbePending:
		return "probe-pending"
	case StateAborted:
		return "aborted"
	case StateScheduled:
		return "scheduled"
	case StateRunning:
		return "running"
	case StateDraining:
		return "draining"
	case StateFinished:
		return "finished"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

// JobOptions describe one bounded run.
type JobOptions struct {
	Target      string
	Interval    time.Duration
	StartTime   time.Time     // zero means now
	FinishTime  time.Time     // zero means midnight ending the start day
	MaxDuration time.Duration // when > 0, overrides FinishTime
	MaxNumber   float64       // 0 or +Inf means unbounded; fractions round up
}

// Job is the unit of scheduling: a target, an interval, and resolved stop
// conditions. Counters are atomic so the scheduler loop, the workers, and
// progress reporters can read them without locking.
type Job struct {
	target      string
	interval    time.Duration
	start       time.Time
	finish      time.Time
	maxAttempts int64 // 0 means unbounded

	state atomic.Int32

	attempts  atomic.Int64
	successes atomic.Int64
	failures  atomic.Int64
	inflight  atomic.Int64

	stop     chan struct{}
	stopOnce sync.Once
}

// NewJob validates options and resolves the effective start and finish
// times. Stop condition priority: MaxDuration beats FinishTime, which beats
// the default of midnight ending the start day.
func NewJob(opts JobOptions) (*Job, error) {
	target := strings.TrimSpace(opts.Target)
	if target == "" {
		return nil, errors.New("target is required")
	}
	if opts.Interval <= 0 {
		return nil, errors.New("interval must be > 0")
	}

	start := opts.StartTime
	if start.IsZero() {
		start = time.Now()
	}

	var finish time.Time
	switch {
	case opts.MaxDuration > 0:
		finish = start.Add(opts.MaxDuration)
	case !opts.FinishTime.IsZero():
		finish = opts.FinishTime
	default:
		y, m, d := start.Date()
		finish = time.Date(y, m, d, 0, 0, 0, 0, start.Location()).AddDate(0, 0, 1)
	}

	if !finish.After(start) {
		return nil, fmt.Errorf("finish time %s is not after start time %s",
			finish.Format(time.RFC3339), start.Format(time.RFC3339))
	}

	if opts.MaxNumber < 0 || math.IsNaN(opts.MaxNumber) {
		return nil, errors.New("max number must be >= 0")
	}
	var maxAttempts int64
	if opts.MaxNumber > 0 && !math.IsInf(opts.MaxNumber, 1) {
		maxAttempts = int64(math.Ceil(opts.MaxNumber))
	}

	return &Job{
		target:      target,
		interval:    opts.Interval,
		start:       start,
		finish:      finish,
		maxAttempts: maxAttempts,
		stop:        make(chan struct{}),
	}, nil
}

func (j *Job) Target() string          { return j.target }
func (j *Job) Interval() time.Duration { return j.interval }
func (j *Job) StartTime() time.Time    { return j.start }
func (j *Job) FinishTime() time.Time   { return j.finish }
func (j *Job) MaxAttempts() int64      { return j.maxAttempts }

func (j *Job) Attempts() int64  { return j.attempts.Load() }
func (j *Job) Successes() int64 { return j.successes.Load() }
func (j *Job) Failures() int64  { return j.failures.Load() }
func (j *Job) InFlight() int64  { return j.inflight.Load() }

// State returns the job's current lifecycle state.
func (j *Job) State() State {
	return State(j.state.Load())
}

// Cancel requests that the run stop before its natural end. Safe to call
// from any goroutine and more than once; in-flight attempts still drain.
func (j *Job) Cancel() {
	j.stopOnce.Do(func() { close(j.stop) })
}

// Done returns a channel closed once Cancel has been called.
func (j *Job) Done() <-chan struct{} {
	return j.stop
}

// Cancelled reports whether Cancel has been called.
func (j *Job) Cancelled() bool {
	select {
	case <-j.stop:
		return true
	default:
		return false
	}
}

// BeginProbe moves the job into the probe gate. It fails if the job already
// left the created state.
func (j *Job) BeginProbe() bool {
	return j.state.CompareAndSwap(int32(StateCreated), int32(StateProbePending))
}

// Abort terminates the job before it was ever scheduled, typically because
// the operator declined during the probe gate.
func (j *Job) Abort() {
	if j.state.CompareAndSwap(int32(StateProbePending), int32(StateAborted)) ||
		j.state.CompareAndSwap(int32(StateCreated), int32(StateAborted)) {
		j.Cancel()
	}
}

// MarkScheduled commits the job for execution, either directly from created
// (probe skipped) or after the probe gate let it through.
func (j *Job) MarkScheduled() bool {
	return j.state.CompareAndSwap(int32(StateCreated), int32(StateScheduled)) ||
		j.state.CompareAndSwap(int32(StateProbePending), int32(StateScheduled))
}

func (j *Job) markRunning()  { j.state.Store(int32(StateRunning)) }
func (j *Job) markDraining() { j.state.Store(int32(StateDraining)) }
func (j *Job) markFinished() { j.state.Store(int32(StateFinished)) }
