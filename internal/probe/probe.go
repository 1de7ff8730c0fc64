// Package probe implements the pre-flight check that runs before a job is
// scheduled: a single request against the target, gated on operator input
// when the target does not answer with a clean 200.
package probe

import (
	"context"
	"io"
	"net/http"
)

// Outcome classifies the result of a single probe request.
type Outcome int

const (
	// OutcomeOK means the target answered 200.
	OutcomeOK Outcome = iota
	// OutcomeHTTPError means a response arrived with a non-200 status.
	OutcomeHTTPError
	// OutcomeNetworkError means no response arrived at all.
	OutcomeNetworkError
)

// CheckResult carries the outcome of one probe request.
type CheckResult struct {
	Outcome    Outcome
	StatusCode int
	Err        error
}

// Prober performs a single check against the target.
type Prober interface {
	Check(ctx context.Context) CheckResult
}

// Choice is the operator's decision after a failed probe.
type Choice int

const (
	ChoiceRetry Choice = iota
	ChoiceContinue
	ChoiceAbort
)

// Prompter collects operator decisions. ConfirmFailure runs after a network
// failure and may ask for a retry; ConfirmStatus runs after an unexpected
// status code and is a straight yes/no.
type Prompter interface {
	ConfirmFailure(ctx context.Context, err error) (Choice, error)
	ConfirmStatus(ctx context.Context, statusCode int) (bool, error)
}

// Doer is the subset of http.Client the prober needs.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// RequestFactory builds the probe request. It matches the request every
// scheduled attempt will send.
type RequestFactory func(ctx context.Context) (*http.Request, error)

// HTTPProber checks the target with a single GET request.
type HTTPProber struct {
	Client Doer
	Build  RequestFactory
}

func (p *HTTPProber) Check(ctx context.Context) CheckResult {
	req, err := p.Build(ctx)
	if err != nil {
		return CheckResult{Outcome: OutcomeNetworkError, Err: err}
	}

	resp, err := p.Client.Do(req)
	if err != nil {
		return CheckResult{Outcome: OutcomeNetworkError, Err: err}
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return CheckResult{Outcome: OutcomeHTTPError, StatusCode: resp.StatusCode}
	}
	return CheckResult{Outcome: OutcomeOK, StatusCode: resp.StatusCode}
}

// Gate runs probes in a loop until the operator's decisions resolve to
// proceed or abort.
type Gate struct {
	Prober   Prober
	Prompter Prompter
}

// Run returns true when the job should be scheduled and false when the
// operator aborted. A prompter error (for example closed stdin) aborts.
func (g *Gate) Run(ctx context.Context) (bool, error) {
	for {
		if err := ctx.Err(); err != nil {
			return false, err
		}

		res := g.Prober.Check(ctx)
		switch res.Outcome {
		case OutcomeOK:
			return true, nil

		case OutcomeHTTPError:
			proceed, err := g.Prompter.ConfirmStatus(ctx, res.StatusCode)
			if err != nil {
				return false, err
			}
			return proceed, nil

		default:
			choice, err := g.Prompter.ConfirmFailure(ctx, res.Err)
			if err != nil {
				return false, err
			}
			switch choice {
			case ChoiceRetry:
				// Loop around for another probe.
			case ChoiceContinue:
				return true, nil
			default:
				return false, nil
			}
		}
	}
}
