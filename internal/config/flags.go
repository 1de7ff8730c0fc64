package config

import (
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// RegisterFlags registers all CLI flags to a cobra command.
func RegisterFlags(cmd *cobra.Command) {
	configureFlags(cmd.Flags())
}

// newFlagCommand creates a cobra command with all flags configured.
func newFlagCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "littlebot",
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	cmd.SetOut(os.Stdout)
	configureFlags(cmd.Flags())
	return cmd
}

// configureFlags sets up all CLI flags on the provided flag set.
func configureFlags(flags *pflag.FlagSet) {
	// Target and request flags
	flags.StringP("target", "a", "", "Address of the site to request")
	flags.StringSlice("header", nil, "Additional request header in key=value form")
	flags.String("user-agent", defaultUserAgent, "User-Agent header sent with every request")
	flags.Duration("timeout", 30*time.Second, "Per-request timeout")

	// Schedule flags
	flags.DurationP("interval", "i", time.Second, "Interval between requests (e.g. 500ms, 1.5s)")
	flags.StringP("start-time", "s", "", "When to start (RFC3339, '2006-01-02 15:04', or 'month:day:hour:minute'; default now)")
	flags.StringP("finish-time", "f", "", "When to stop (same formats; default midnight ending the start day)")
	flags.DurationP("max-duration", "t", 0, "Maximum time to keep running; overrides finish-time when > 0")
	flags.Float64P("max-number", "n", 0, "Maximum number of requests (0 or inf means unbounded)")
	flags.Bool("skip-probe", false, "Skip the pre-flight probe request")

	// Output flags
	flags.BoolP("verbose", "v", false, "Log each request outcome to stderr")
	flags.Bool("json-output", false, "Emit JSON formatted output")
	flags.Bool("dashboard", false, "Show live terminal dashboard with metrics")
	flags.StringSlice("threshold", nil, "Post-run assertion (repeatable, e.g. 'success_rate >= 99')")

	// Operational flags
	flags.String("lock-file", "", "Path to an advisory lock file preventing concurrent runs")
	flags.String("config", "", "Path to configuration file (JSON or YAML)")

	// Tracing flags
	flags.String("trace-endpoint", "", "OTLP collector endpoint (empty disables tracing)")
	flags.String("trace-protocol", "grpc", "OTLP protocol: 'grpc' or 'http'")
	flags.String("trace-service-name", "", "Service name reported on spans")
	flags.Float64("trace-sample-rate", 1.0, "Trace sampling rate between 0.0 and 1.0")
	flags.Bool("trace-insecure", false, "Skip TLS verification when exporting traces")
	flags.Bool("trace-propagate", false, "Inject W3C trace context headers into requests")
}

// displayHelp prints the help message for a command.
func displayHelp(cmd *cobra.Command) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Usage: %s\n\nRequest a site repetitively with a given time interval until a\nfinish time, maximum duration, or maximum number of requests is reached.\n\nFlags:\n", cmd.UseLine())
	fs := cmd.Flags()
	fs.SetOutput(out)
	fs.PrintDefaults()
}

// applyFlagOverrides applies command-line flag values to the config, overriding
// values from the config file.
func applyFlagOverrides(cfg *Config, fs *pflag.FlagSet) error {
	if fs.Changed("target") {
		val, err := fs.GetString("target")
		if err != nil {
			return err
		}
		cfg.TargetURL = strings.TrimSpace(val)
	}
	if fs.Changed("interval") {
		val, err := fs.GetDuration("interval")
		if err != nil {
			return err
		}
		cfg.Interval = val
	}
	if fs.Changed("start-time") {
		val, err := fs.GetString("start-time")
		if err != nil {
			return err
		}
		ts, err := ParseTimestamp(val)
		if err != nil {
			return fmt.Errorf("start-time: %w", err)
		}
		cfg.StartTime = ts
	}
	if fs.Changed("finish-time") {
		val, err := fs.GetString("finish-time")
		if err != nil {
			return err
		}
		ts, err := ParseTimestamp(val)
		if err != nil {
			return fmt.Errorf("finish-time: %w", err)
		}
		cfg.FinishTime = ts
	}
	if fs.Changed("max-duration") {
		val, err := fs.GetDuration("max-duration")
		if err != nil {
			return err
		}
		cfg.MaxDuration = val
	}
	if fs.Changed("max-number") {
		val, err := fs.GetFloat64("max-number")
		if err != nil {
			return err
		}
		cfg.MaxNumber = val
	}
	if fs.Changed("timeout") {
		val, err := fs.GetDuration("timeout")
		if err != nil {
			return err
		}
		cfg.Timeout = val
	}
	if fs.Changed("user-agent") {
		val, err := fs.GetString("user-agent")
		if err != nil {
			return err
		}
		cfg.UserAgent = val
	}
	if fs.Changed("verbose") {
		val, err := fs.GetBool("verbose")
		if err != nil {
			return err
		}
		cfg.Verbose = val
	}
	if fs.Changed("json-output") {
		val, err := fs.GetBool("json-output")
		if err != nil {
			return err
		}
		cfg.JSONOutput = val
	}
	if fs.Changed("dashboard") {
		val, err := fs.GetBool("dashboard")
		if err != nil {
			return err
		}
		cfg.Dashboard = val
	}
	if fs.Changed("skip-probe") {
		val, err := fs.GetBool("skip-probe")
		if err != nil {
			return err
		}
		cfg.SkipProbe = val
	}
	if fs.Changed("threshold") {
		val, err := fs.GetStringSlice("threshold")
		if err != nil {
			return err
		}
		cfg.Thresholds = val
	}
	if fs.Changed("lock-file") {
		val, err := fs.GetString("lock-file")
		if err != nil {
			return err
		}
		cfg.LockFile = strings.TrimSpace(val)
	}

	vals, err := fs.GetStringSlice("header")
	if err != nil {
		return err
	}
	if len(vals) > 0 {
		if cfg.Headers == nil {
			cfg.Headers = map[string]string{}
		}
		for _, entry := range vals {
			parts := strings.SplitN(entry, "=", 2)
			if len(parts) != 2 {
				return fmt.Errorf("header must be in key=value format: %s", entry)
			}
			key := http.CanonicalHeaderKey(strings.TrimSpace(parts[0]))
			if key == "" {
				return fmt.Errorf("header key cannot be empty")
			}
			cfg.Headers[key] = strings.TrimSpace(parts[1])
		}
	}

	if fs.Changed("trace-endpoint") {
		val, err := fs.GetString("trace-endpoint")
		if err != nil {
			return err
		}
		cfg.Tracing.Endpoint = strings.TrimSpace(val)
	}
	if fs.Changed("trace-protocol") {
		val, err := fs.GetString("trace-protocol")
		if err != nil {
			return err
		}
		cfg.Tracing.Protocol = strings.ToLower(strings.TrimSpace(val))
	}
	if fs.Changed("trace-service-name") {
		val, err := fs.GetString("trace-service-name")
		if err != nil {
			return err
		}
		cfg.Tracing.ServiceName = strings.TrimSpace(val)
	}
	if fs.Changed("trace-sample-rate") {
		val, err := fs.GetFloat64("trace-sample-rate")
		if err != nil {
			return err
		}
		cfg.Tracing.SampleRate = val
	}
	if fs.Changed("trace-insecure") {
		val, err := fs.GetBool("trace-insecure")
		if err != nil {
			return err
		}
		cfg.Tracing.Insecure = val
	}
	if fs.Changed("trace-propagate") {
		val, err := fs.GetBool("trace-propagate")
		if err != nil {
			return err
		}
		cfg.Tracing.Propagate = val
	}

	return nil
}
