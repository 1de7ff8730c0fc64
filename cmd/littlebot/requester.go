package main

import (
	"context"
	"io"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/mishioo/littlebot/internal/httpclient"
	"github.com/mishioo/littlebot/internal/metrics"
	"github.com/mishioo/littlebot/internal/scheduler"
	"github.com/mishioo/littlebot/internal/tracing"
)

// httpRequester sends one GET request per attempt and records the result.
type httpRequester struct {
	client    *http.Client
	builder   *httpclient.RequestBuilder
	collector *metrics.Collector
	tracing   *tracing.Provider
	attempts  atomic.Int64
}

// Do implements scheduler.Requester. Any status other than 200 counts as a
// failure and is surfaced as a *scheduler.HTTPError.
func (r *httpRequester) Do(ctx context.Context) error {
	attempt := r.attempts.Add(1)
	ctx, span := tracing.StartAttemptSpan(ctx, r.tracing.Tracer(), r.builder.Target(), attempt)

	start := time.Now()
	req, err := r.builder.Build(ctx)
	if err != nil {
		r.collector.RecordAttempt(time.Since(start), 0, err)
		tracing.EndSpan(span, err)
		return err
	}
	if r.tracing.ShouldPropagate() {
		tracing.InjectHTTPHeaders(ctx, req.Header)
	}

	resp, err := r.client.Do(req)
	latency := time.Since(start)
	if err != nil {
		r.collector.RecordAttempt(latency, 0, err)
		tracing.EndSpan(span, err)
		return err
	}
	defer resp.Body.Close()

	var resultErr error
	if resp.StatusCode != http.StatusOK {
		snippet, readErr := io.ReadAll(io.LimitReader(resp.Body, maxLoggedBodyBytes))
		if readErr != nil {
			resultErr = readErr
		} else {
			resultErr = &scheduler.HTTPError{
				StatusCode: resp.StatusCode,
				Body:       strings.TrimSpace(string(snippet)),
			}
		}
	}
	// Drain so the connection can be reused.
	_, _ = io.Copy(io.Discard, resp.Body)

	r.collector.RecordAttempt(latency, resp.StatusCode, resultErr)
	tracing.EndSpan(span, resultErr, attribute.Int("http.status_code", resp.StatusCode))
	return resultErr
}
