package probe_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mishioo/littlebot/internal/probe"
)

// scriptedPrompter replays a fixed sequence of failure choices and a fixed
// status answer.
type scriptedPrompter struct {
	choices      []probe.Choice
	statusAnswer bool
	statusCalls  int
	failureCalls int
	err          error
}

func (p *scriptedPrompter) ConfirmFailure(_ context.Context, _ error) (probe.Choice, error) {
	if p.err != nil {
		return probe.ChoiceAbort, p.err
	}
	idx := p.failureCalls
	p.failureCalls++
	if idx >= len(p.choices) {
		return probe.ChoiceAbort, nil
	}
	return p.choices[idx], nil
}

func (p *scriptedPrompter) ConfirmStatus(_ context.Context, _ int) (bool, error) {
	p.statusCalls++
	if p.err != nil {
		return false, p.err
	}
	return p.statusAnswer, nil
}

func newProber(t *testing.T, url string) *probe.HTTPProber {
	t.Helper()
	return &probe.HTTPProber{
		Client: http.DefaultClient,
		Build: func(ctx context.Context) (*http.Request, error) {
			return http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		},
	}
}

func TestGateProceedsOn200(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	prompter := &scriptedPrompter{}
	gate := &probe.Gate{Prober: newProber(t, srv.URL), Prompter: prompter}

	proceed, err := gate.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !proceed {
		t.Fatal("expected proceed on 200")
	}
	if prompter.failureCalls != 0 || prompter.statusCalls != 0 {
		t.Fatal("prompter should not be consulted on success")
	}
}

func TestGateAsksOnUnexpectedStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	prompter := &scriptedPrompter{statusAnswer: true}
	gate := &probe.Gate{Prober: newProber(t, srv.URL), Prompter: prompter}

	proceed, err := gate.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !proceed {
		t.Fatal("expected proceed when operator accepts the status")
	}
	if prompter.statusCalls != 1 {
		t.Fatalf("expected 1 status prompt, got %d", prompter.statusCalls)
	}

	prompter = &scriptedPrompter{statusAnswer: false}
	gate = &probe.Gate{Prober: newProber(t, srv.URL), Prompter: prompter}
	proceed, err = gate.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if proceed {
		t.Fatal("expected abort when operator declines the status")
	}
}

func TestGateRetriesOnNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	srvURL := srv.URL
	srv.Close() // guaranteed connection refused

	flaky := &probe.HTTPProber{
		Client: http.DefaultClient,
		Build: func(ctx context.Context) (*http.Request, error) {
			return http.NewRequestWithContext(ctx, http.MethodGet, srvURL, nil)
		},
	}

	prompter := &scriptedPrompter{choices: []probe.Choice{probe.ChoiceRetry, probe.ChoiceAbort}}
	gate := &probe.Gate{Prober: flaky, Prompter: prompter}

	proceed, err := gate.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if proceed {
		t.Fatal("expected abort after retry then abort")
	}
	if prompter.failureCalls != 2 {
		t.Fatalf("expected 2 failure prompts, got %d", prompter.failureCalls)
	}
}

func TestGateContinueDespiteNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srvURL := srv.URL
	srv.Close()

	prompter := &scriptedPrompter{choices: []probe.Choice{probe.ChoiceContinue}}
	gate := &probe.Gate{Prober: newProber(t, srvURL), Prompter: prompter}

	proceed, err := gate.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !proceed {
		t.Fatal("expected proceed when operator chooses continue")
	}
}

func TestGatePrompterErrorAborts(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srvURL := srv.URL
	srv.Close()

	wantErr := errors.New("stdin closed")
	prompter := &scriptedPrompter{err: wantErr}
	gate := &probe.Gate{Prober: newProber(t, srvURL), Prompter: prompter}

	proceed, err := gate.Run(context.Background())
	if !errors.Is(err, wantErr) {
		t.Fatalf("Run() error = %v, want %v", err, wantErr)
	}
	if proceed {
		t.Fatal("expected abort on prompter error")
	}
}

func TestProberClassification(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	res := newProber(t, srv.URL).Check(context.Background())
	if res.Outcome != probe.OutcomeHTTPError {
		t.Fatalf("expected HTTP error outcome, got %v", res.Outcome)
	}
	if res.StatusCode != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", res.StatusCode)
	}
}
