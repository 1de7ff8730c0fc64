package threshold

import (
	"testing"

	"github.com/mishioo/littlebot/internal/metrics"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		want      Threshold
		wantError bool
	}{
		{
			name:  "valid p99 latency threshold",
			input: "latency:p99 < 500",
			want: Threshold{
				Metric:    "latency",
				Aggregate: "p99",
				Operator:  "<",
				Value:     500,
				Raw:       "latency:p99 < 500",
			},
		},
		{
			name:  "valid failure rate threshold",
			input: "failures:rate < 0.01",
			want: Threshold{
				Metric:    "failures",
				Aggregate: "rate",
				Operator:  "<",
				Value:     0.01,
				Raw:       "failures:rate < 0.01",
			},
		},
		{
			name:  "valid bare success rate",
			input: "success_rate >= 99",
			want: Threshold{
				Metric:   "success_rate",
				Operator: ">=",
				Value:    99,
				Raw:      "success_rate >= 99",
			},
		},
		{
			name:  "valid attempt rate with >",
			input: "attempts:rate > 0.5",
			want: Threshold{
				Metric:    "attempts",
				Aggregate: "rate",
				Operator:  ">",
				Value:     0.5,
				Raw:       "attempts:rate > 0.5",
			},
		},
		{name: "empty string", input: "", wantError: true},
		{name: "unknown metric", input: "memory:max < 100", wantError: true},
		{name: "unknown aggregate", input: "latency:p42 < 100", wantError: true},
		{name: "aggregate on success_rate", input: "success_rate:rate > 1", wantError: true},
		{name: "missing value", input: "latency:p99 <", wantError: true},
		{name: "bad operator", input: "latency:p99 ! 100", wantError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.input)
			if tt.wantError {
				if err == nil {
					t.Fatalf("Parse(%q) expected error", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse(%q) error = %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("Parse(%q) = %+v, want %+v", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseMultiple(t *testing.T) {
	parsed, err := ParseMultiple([]string{"latency:p99 < 500", "success_rate >= 99"})
	if err != nil {
		t.Fatalf("ParseMultiple() error = %v", err)
	}
	if len(parsed) != 2 {
		t.Fatalf("expected 2 thresholds, got %d", len(parsed))
	}

	if _, err := ParseMultiple([]string{"latency:p99 < 500", "nonsense"}); err == nil {
		t.Fatal("expected error for mixed valid/invalid input")
	}

	parsed, err = ParseMultiple(nil)
	if err != nil || parsed != nil {
		t.Fatalf("ParseMultiple(nil) = %v, %v; want nil, nil", parsed, err)
	}
}

func TestEvaluate(t *testing.T) {
	stats := metrics.Stats{
		Total:          100,
		Successes:      98,
		Failures:       2,
		SuccessRate:    98.0,
		P99LatencyMs:   250,
		MeanLatencyMs:  80,
		RequestsPerSec: 1.0,
	}

	tests := []struct {
		input string
		pass  bool
	}{
		{"latency:p99 < 500", true},
		{"latency:p99 < 100", false},
		{"latency:mean <= 80", true},
		{"failures:count < 10", true},
		{"failures:rate < 0.01", false},
		{"success_rate >= 98", true},
		{"success_rate >= 99", false},
		{"attempts:count == 100", true},
		{"attempts:rate > 0.5", true},
	}

	for _, tt := range tests {
		th, err := Parse(tt.input)
		if err != nil {
			t.Fatalf("Parse(%q) error = %v", tt.input, err)
		}
		results := NewEvaluator([]Threshold{th}).Evaluate(stats)
		if len(results) != 1 {
			t.Fatalf("expected 1 result, got %d", len(results))
		}
		if results[0].Pass != tt.pass {
			t.Errorf("%q: pass = %v, want %v (actual %.2f)", tt.input, results[0].Pass, tt.pass, results[0].Actual)
		}
		if results[0].Message == "" {
			t.Errorf("%q: empty message", tt.input)
		}
	}
}

func TestEvaluateEmpty(t *testing.T) {
	if res := NewEvaluator(nil).Evaluate(metrics.Stats{}); res != nil {
		t.Fatalf("expected nil results for no thresholds, got %v", res)
	}
}
