package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/mishioo/littlebot/internal/config"
	"github.com/mishioo/littlebot/internal/dashboard"
	"github.com/mishioo/littlebot/internal/httpclient"
	"github.com/mishioo/littlebot/internal/metrics"
	"github.com/mishioo/littlebot/internal/output"
	"github.com/mishioo/littlebot/internal/probe"
	"github.com/mishioo/littlebot/internal/runlock"
	"github.com/mishioo/littlebot/internal/scheduler"
	"github.com/mishioo/littlebot/internal/threshold"
	"github.com/mishioo/littlebot/internal/tracing"
)

const (
	progressInterval   = time.Second
	maxLoggedBodyBytes = 1024
)

// stderrLogger writes prefixed log lines to stderr.
type stderrLogger struct {
	mu sync.Mutex
}

func (l *stderrLogger) Logf(format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(os.Stderr, "[littlebot] "+format+"\n", args...)
}

type nopLogger struct{}

func (nopLogger) Logf(string, ...interface{}) {}

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	loader := config.NewLoader()
	cfg, err := loader.Load(args)
	if err != nil {
		if errors.Is(err, config.ErrHelpRequested) {
			return nil
		}
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	thresholds, err := threshold.ParseMultiple(cfg.Thresholds)
	if err != nil {
		return err
	}

	runID := ulid.Make().String()
	logger := &stderrLogger{}

	if cfg.LockFile != "" {
		lock, err := runlock.Acquire(cfg.LockFile)
		if err != nil {
			return err
		}
		defer lock.Release()
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	provider, err := tracing.Init(ctx, cfg.Tracing)
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		_ = provider.Shutdown(shutdownCtx)
	}()

	builder, err := httpclient.NewRequestBuilder(cfg)
	if err != nil {
		return err
	}

	client := httpclient.NewClient(cfg.Timeout)
	collector := metrics.NewCollector()

	requester := &httpRequester{
		client:    client,
		builder:   builder,
		collector: collector,
		tracing:   provider,
	}

	job, err := scheduler.NewJob(scheduler.JobOptions{
		Target:      cfg.TargetURL,
		Interval:    cfg.Interval,
		StartTime:   cfg.StartTime,
		FinishTime:  cfg.FinishTime,
		MaxDuration: cfg.MaxDuration,
		MaxNumber:   cfg.MaxNumber,
	})
	if err != nil {
		return err
	}

	logger.Logf("run %s: requesting %s every %s until %s",
		runID, job.Target(), job.Interval(), job.FinishTime().Format(time.RFC3339))

	if !cfg.SkipProbe {
		job.BeginProbe()
		gate := &probe.Gate{
			Prober:   &probe.HTTPProber{Client: client, Build: builder.Build},
			Prompter: newStdinPrompter(os.Stdin, os.Stderr),
		}
		proceed, gateErr := gate.Run(ctx)
		if gateErr != nil || !proceed {
			job.Abort()
			logger.Logf("run %s aborted before scheduling", runID)
			return gateErr
		}
	}
	job.MarkScheduled()

	schedOpts := scheduler.Options{
		Requester: requester,
		Logger:    logger,
	}
	if cfg.Dashboard {
		// Raw stderr lines would tear the termui screen.
		schedOpts.Logger = nopLogger{}
	}
	if cfg.Verbose {
		schedOpts.VerboseLogger = logger
	}
	sched := scheduler.New(job, schedOpts)

	var dash *dashboard.Dashboard
	if cfg.Dashboard {
		dash, err = dashboard.New(collector, dashboard.RunConfig{
			TargetURL:   job.Target(),
			Interval:    job.Interval(),
			FinishTime:  job.FinishTime(),
			MaxAttempts: job.MaxAttempts(),
			Timeout:     cfg.Timeout,
			ConfigFile:  cfg.ConfigFile,
		}, job.InFlight, job.Cancel)
		if err != nil {
			return err
		}
		dash.Start()
	}

	var progress *output.ProgressReporter
	if !cfg.JSONOutput && !cfg.Dashboard && !cfg.Verbose {
		progress = output.NewProgressReporter(collector, progressInterval, os.Stdout, job.InFlight)
		progress.Start()
	}

	// Mark the actual start in the collector so pre-flight time does not
	// dilute the request rate.
	collector.Start()
	result := sched.Run(ctx)

	// The report must land on a restored terminal, so both live views stop
	// before anything is printed.
	if dash != nil {
		dash.Stop()
	}
	if progress != nil {
		progress.Stop()
		fmt.Fprintln(os.Stdout)
	}

	stats := collector.Stats(result.Elapsed)
	stats.RunID = runID

	if result.Cancelled {
		logger.Logf("run %s cancelled after %d attempts", runID, result.Attempts)
	}

	if cfg.JSONOutput {
		if err := output.PrintJSONReport(os.Stdout, stats); err != nil {
			return err
		}
	} else {
		output.PrintReport(os.Stdout, stats)
	}

	if len(thresholds) > 0 {
		results := threshold.NewEvaluator(thresholds).Evaluate(stats)
		failed := 0
		fmt.Fprintln(os.Stdout, "\nThresholds:")
		for _, res := range results {
			fmt.Fprintf(os.Stdout, "  %s\n", res.Message)
			if !res.Pass {
				failed++
			}
		}
		if failed > 0 {
			return fmt.Errorf("%d threshold(s) failed", failed)
		}
	}

	return nil
}
