package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/mishioo/littlebot/internal/config"
)

func TestLoadDefaults(t *testing.T) {
	loader := config.NewLoader()

	cfg, err := loader.Load([]string{"--target", "http://example.com"})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.TargetURL != "http://example.com" {
		t.Errorf("TargetURL = %q, want http://example.com", cfg.TargetURL)
	}
	if cfg.Interval != time.Second {
		t.Errorf("Interval = %v, want 1s", cfg.Interval)
	}
	if cfg.Timeout != 30*time.Second {
		t.Errorf("Timeout = %v, want 30s", cfg.Timeout)
	}
	if cfg.UserAgent != "Mozilla/5.0" {
		t.Errorf("UserAgent = %q, want Mozilla/5.0", cfg.UserAgent)
	}
	if cfg.MaxNumber != 0 {
		t.Errorf("MaxNumber = %v, want 0", cfg.MaxNumber)
	}
	if !cfg.StartTime.IsZero() {
		t.Errorf("StartTime = %v, want zero", cfg.StartTime)
	}
	if !cfg.FinishTime.IsZero() {
		t.Errorf("FinishTime = %v, want zero", cfg.FinishTime)
	}
	if cfg.Verbose || cfg.JSONOutput || cfg.Dashboard || cfg.SkipProbe {
		t.Error("boolean flags should default to false")
	}
	if len(cfg.Headers) != 0 {
		t.Errorf("Headers len = %d, want 0", len(cfg.Headers))
	}
}

func TestLoadNoArgsShowsHelp(t *testing.T) {
	loader := config.NewLoader()
	if _, err := loader.Load(nil); !errors.Is(err, config.ErrHelpRequested) {
		t.Errorf("Load(nil) error = %v, want ErrHelpRequested", err)
	}
}

func TestLoadHelpFlag(t *testing.T) {
	loader := config.NewLoader()
	if _, err := loader.Load([]string{"--help"}); !errors.Is(err, config.ErrHelpRequested) {
		t.Errorf("Load(--help) error = %v, want ErrHelpRequested", err)
	}
}

func TestLoadConfigFileJSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	if err := os.WriteFile(path, []byte(`{
		"target": "https://api.example.com",
		"interval": "2s",
		"max_number": "inf",
		"timeout": "45s",
		"headers": {"X-Env": "staging"},
		"user_agent": "littlebot-test",
		"verbose": true,
		"lock_file": "/tmp/littlebot.lock"
	}`), 0o600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	loader := config.NewLoader()
	cfg, err := loader.Load([]string{"--config", path, "--interval", "3s", "--header", "Authorization=Bearer token"})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.TargetURL != "https://api.example.com" {
		t.Errorf("TargetURL = %q, want https://api.example.com", cfg.TargetURL)
	}
	// Flag wins over file.
	if cfg.Interval != 3*time.Second {
		t.Errorf("Interval = %v, want 3s", cfg.Interval)
	}
	if cfg.MaxNumber == 0 {
		t.Error("MaxNumber = 0, want +Inf")
	}
	if cfg.Timeout != 45*time.Second {
		t.Errorf("Timeout = %v, want 45s", cfg.Timeout)
	}
	if cfg.Headers["X-Env"] != "staging" {
		t.Errorf("Headers[X-Env] = %q, want staging", cfg.Headers["X-Env"])
	}
	if cfg.Headers["Authorization"] != "Bearer token" {
		t.Errorf("Headers[Authorization] = %q, want Bearer token", cfg.Headers["Authorization"])
	}
	if cfg.UserAgent != "littlebot-test" {
		t.Errorf("UserAgent = %q, want littlebot-test", cfg.UserAgent)
	}
	if !cfg.Verbose {
		t.Error("Verbose = false, want true")
	}
	if cfg.LockFile != "/tmp/littlebot.lock" {
		t.Errorf("LockFile = %q, want /tmp/littlebot.lock", cfg.LockFile)
	}
}

func TestLoadConfigFileYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := strings.Join([]string{
		"target: https://service.example.com",
		"interval: 500ms",
		"max_duration: 1m",
		"skip_probe: true",
		"thresholds:",
		"  - success_rate >= 99",
		"tracing:",
		"  endpoint: localhost:4317",
		"  protocol: grpc",
		"  sample_rate: 0.5",
	}, "\n")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	loader := config.NewLoader()
	cfg, err := loader.Load([]string{"--config", path})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.TargetURL != "https://service.example.com" {
		t.Errorf("TargetURL = %q, want https://service.example.com", cfg.TargetURL)
	}
	if cfg.Interval != 500*time.Millisecond {
		t.Errorf("Interval = %v, want 500ms", cfg.Interval)
	}
	if cfg.MaxDuration != time.Minute {
		t.Errorf("MaxDuration = %v, want 1m", cfg.MaxDuration)
	}
	if !cfg.SkipProbe {
		t.Error("SkipProbe = false, want true")
	}
	if len(cfg.Thresholds) != 1 || cfg.Thresholds[0] != "success_rate >= 99" {
		t.Errorf("Thresholds = %v, want [success_rate >= 99]", cfg.Thresholds)
	}
	if !cfg.Tracing.Enabled() {
		t.Error("Tracing.Enabled() = false, want true")
	}
	if cfg.Tracing.SampleRate != 0.5 {
		t.Errorf("Tracing.SampleRate = %v, want 0.5", cfg.Tracing.SampleRate)
	}
}

func TestValidate(t *testing.T) {
	valid := config.Config{
		TargetURL: "http://example.com",
		Interval:  time.Second,
	}
	if err := valid.Validate(); err != nil {
		t.Errorf("Validate() error = %v, want nil", err)
	}

	tests := []struct {
		name string
		cfg  config.Config
	}{
		{"missing target", config.Config{Interval: time.Second}},
		{"bad scheme", config.Config{TargetURL: "ftp://example.com", Interval: time.Second}},
		{"zero interval", config.Config{TargetURL: "http://example.com"}},
		{"negative max-number", config.Config{TargetURL: "http://example.com", Interval: time.Second, MaxNumber: -1}},
		{"dashboard and json", config.Config{TargetURL: "http://example.com", Interval: time.Second, Dashboard: true, JSONOutput: true}},
		{"bad trace protocol", config.Config{
			TargetURL: "http://example.com",
			Interval:  time.Second,
			Tracing:   config.TracingConfig{Endpoint: "localhost:4317", Protocol: "udp"},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if err == nil {
				t.Fatal("Validate() = nil, want error")
			}
			var verr config.ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("Validate() error type = %T, want ValidationError", err)
			}
			if len(verr.Issues()) == 0 {
				t.Error("Issues() is empty")
			}
		})
	}
}
