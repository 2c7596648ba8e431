package telemetry

import (
	"context"
	"errors"
	"testing"
)

func TestInitOTELDisabled(t *testing.T) {
	t.Setenv("OTEL_DISABLED", "true")
	shutdown, err := InitOTEL(context.Background(), "postboard")
	if err != nil {
		t.Fatal(err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatal(err)
	}
}

func TestSampleRatio(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"", 1},
		{"0.25", 0.25},
		{"2", 1},
		{"abc", 1},
	}
	for _, tt := range tests {
		t.Setenv("OTEL_TRACES_SAMPLER_ARG", tt.in)
		if got := sampleRatio(); got != tt.want {
			t.Errorf("sampleRatio(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestOutcome(t *testing.T) {
	if Outcome(nil) != "ok" || Outcome(errors.New("x")) != "error" {
		t.Fatal("unexpected outcome labels")
	}
}
