// Package scheduler provides the request scheduling engine for littlebot.
//
// A [Job] describes one bounded run: the target, the interval between
// attempts, and the stop conditions (finish time, maximum duration, or
// maximum number of attempts). The [Scheduler] executes the job:
//
//	job, err := scheduler.NewJob(scheduler.JobOptions{
//		Target:   "https://example.com",
//		Interval: time.Second,
//	})
//	if err != nil {
//		return err
//	}
//	sched := scheduler.New(job, scheduler.Options{Requester: myRequester})
//	result := sched.Run(ctx)
//
// # Requester Interface
//
// The [Requester] interface defines what the scheduler executes on every
// tick:
//
//	type Requester interface {
//		Do(ctx context.Context) error
//	}
//
// # Timing Model
//
// The scheduler waits for the job's start time, fires the first attempt, and
// then paces subsequent attempts one interval apart using a token bucket.
// Each attempt runs in its own goroutine so a slow response never delays the
// next tick. In-flight count is unbounded: if the target responds slower than
// the interval, concurrent attempts accumulate until the per-request timeout
// reaps them.
//
// # Termination
//
// Before every attempt the scheduler checks, in order: external cancellation,
// the finish time, and the attempt cap. After the loop exits it drains,
// waiting for every in-flight attempt to complete before reporting. The drain
// has no timeout; the per-request timeout bounds it in practice.
//
// # Error Handling
//
// The [HTTPError] type carries status details for responses that were
// received but not accepted:
//
//	var httpErr *scheduler.HTTPError
//	if errors.As(err, &httpErr) {
//		fmt.Printf("Status: %d, Body: %s\n", httpErr.StatusCode, httpErr.Body)
//	}
package scheduler
