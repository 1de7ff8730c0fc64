package config

import (
	"fmt"
	"math"
	"net/url"
	"strings"
	"time"
)

// Config holds the full littlebot run configuration after merging defaults,
// an optional config file, and CLI flags.
type Config struct {
	TargetURL   string            `mapstructure:"target"`
	Interval    time.Duration     `mapstructure:"interval"`
	StartTime   time.Time         `mapstructure:"-"` // zero means "now at job construction"
	FinishTime  time.Time         `mapstructure:"-"` // zero means "midnight ending the start day"
	MaxDuration time.Duration     `mapstructure:"max_duration"`
	MaxNumber   float64           `mapstructure:"max_number"` // 0 or +Inf means unbounded
	Timeout     time.Duration     `mapstructure:"timeout"`
	Headers     map[string]string `mapstructure:"headers"`
	UserAgent   string            `mapstructure:"user_agent"`
	Verbose     bool              `mapstructure:"verbose"`
	JSONOutput  bool              `mapstructure:"json_output"`
	Dashboard   bool              `mapstructure:"dashboard"`
	SkipProbe   bool              `mapstructure:"skip_probe"`
	Thresholds  []string          `mapstructure:"thresholds"`
	LockFile    string            `mapstructure:"lock_file"`
	Tracing     TracingConfig     `mapstructure:"tracing"`
	ConfigFile  string            `mapstructure:"-"`
}

// TracingConfig controls the optional OTLP trace exporter.
type TracingConfig struct {
	Endpoint    string  `mapstructure:"endpoint"`
	Protocol    string  `mapstructure:"protocol"` // "grpc" or "http"
	ServiceName string  `mapstructure:"service_name"`
	SampleRate  float64 `mapstructure:"sample_rate"`
	Insecure    bool    `mapstructure:"insecure"`
	Propagate   bool    `mapstructure:"propagate"`
}

// Enabled reports whether an exporter endpoint has been configured.
func (t TracingConfig) Enabled() bool {
	return strings.TrimSpace(t.Endpoint) != ""
}

// ShouldPropagate reports whether W3C trace headers should be injected into
// outgoing requests.
func (t TracingConfig) ShouldPropagate() bool {
	return t.Propagate
}

// ValidationError aggregates all configuration problems found in one pass.
type ValidationError struct {
	issues []string
}

func (e ValidationError) Error() string {
	if len(e.issues) == 0 {
		return "validation failed"
	}
	return fmt.Sprintf("validation failed: %s", strings.Join(e.issues, "; "))
}

// Issues returns a copy of the individual validation messages.
func (e ValidationError) Issues() []string {
	return append([]string(nil), e.issues...)
}

// Validate checks field-level constraints. The finish-before-start invariant
// is enforced later, at job construction, once the start time is resolved.
func (c Config) Validate() error {
	var issues []string

	target := strings.TrimSpace(c.TargetURL)
	if target == "" {
		issues = append(issues, "target is required (use --help for usage information)")
	} else if u, err := url.Parse(target); err != nil {
		issues = append(issues, fmt.Sprintf("target is not a valid URL: %v", err))
	} else if u.Scheme != "http" && u.Scheme != "https" {
		issues = append(issues, fmt.Sprintf("target scheme must be http or https, got %q", u.Scheme))
	}

	if c.Interval <= 0 {
		issues = append(issues, "interval must be > 0")
	}
	if c.Timeout < 0 {
		issues = append(issues, "timeout must be >= 0")
	}
	if c.MaxDuration < 0 {
		issues = append(issues, "max-duration must be >= 0")
	}
	if c.MaxNumber < 0 || math.IsNaN(c.MaxNumber) {
		issues = append(issues, "max-number must be >= 0")
	}
	if c.Dashboard && c.JSONOutput {
		issues = append(issues, "dashboard and json-output are mutually exclusive")
	}
	if c.Dashboard && c.Verbose {
		issues = append(issues, "dashboard and verbose are mutually exclusive")
	}

	if c.Tracing.Enabled() {
		switch strings.ToLower(strings.TrimSpace(c.Tracing.Protocol)) {
		case "", "grpc", "http":
		default:
			issues = append(issues, fmt.Sprintf("tracing protocol must be 'grpc' or 'http', got %q", c.Tracing.Protocol))
		}
		if c.Tracing.SampleRate < 0 || c.Tracing.SampleRate > 1.0 {
			issues = append(issues, "tracing sample_rate must be between 0.0 and 1.0")
		}
	}

	if len(issues) > 0 {
		return ValidationError{issues: issues}
	}
	return nil
}
