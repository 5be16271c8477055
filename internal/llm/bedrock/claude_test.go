package bedrock

import (
	"errors"
	"testing"
	"time"
)

func TestIsRetryableError(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		retryable bool
	}{
		{"nil", nil, false},
		{"throttling", errors.New("ThrottlingException: Rate exceeded"), true},
		{"too many requests", errors.New("TooManyRequestsException"), true},
		{"internal server", errors.New("InternalServerException"), true},
		{"service unavailable", errors.New("503 Service Unavailable"), true},
		{"connection reset", errors.New("read tcp: connection reset by peer"), true},
		{"timeout", errors.New("request timeout"), true},
		{"validation", errors.New("ValidationException: invalid model id"), false},
		{"access denied", errors.New("AccessDeniedException"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isRetryableError(tt.err); got != tt.retryable {
				t.Errorf("isRetryableError(%v) = %v, want %v", tt.err, got, tt.retryable)
			}
		})
	}
}

func TestCalculateBackoff(t *testing.T) {
	initial := 100 * time.Millisecond
	max := 12 * time.Second

	// Exponential growth with at most 20% jitter either way.
	for attempt, base := range []time.Duration{
		100 * time.Millisecond,
		200 * time.Millisecond,
		400 * time.Millisecond,
		800 * time.Millisecond,
	} {
		delay := calculateBackoff(attempt, initial, max)
		low := time.Duration(float64(base) * 0.8)
		high := time.Duration(float64(base) * 1.2)
		if delay < low || delay > high {
			t.Errorf("Attempt %d: delay %s outside [%s, %s]", attempt, delay, low, high)
		}
	}
}

func TestCalculateBackoff_CappedAtMax(t *testing.T) {
	initial := 100 * time.Millisecond
	max := 12 * time.Second

	delay := calculateBackoff(20, initial, max)
	if delay > time.Duration(float64(max)*1.2) {
		t.Errorf("Expected delay capped near %s, got %s", max, delay)
	}
}
