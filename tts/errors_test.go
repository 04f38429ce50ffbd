package tts

import (
	"errors"
	"fmt"
	"testing"
)

func TestReason(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil error", nil, ""},
		{"timeout", ErrSynthesisTimeout, "timeout"},
		{"wrapped rate limit", fmt.Errorf("attempt 2: %w", ErrRateLimited), "rate_limited"},
		{"server error", ErrServerError, "server_error"},
		{"network error", fmt.Errorf("%w: connection refused", ErrNetworkError), "network_error"},
		{"invalid payload", ErrInvalidPayload, "invalid_payload"},
		{"invalid input", fmt.Errorf("%w: text is required", ErrInvalidInput), "invalid_input"},
		{"chunking failed", ErrChunkingFailed, "chunking_failed"},
		{"too many failures", fmt.Errorf("%w (6 of 10)", ErrTooManyFailures), "too_many_failures"},
		{"no audio produced", ErrNoAudioProduced, "no_audio_produced"},
		{"implausible combined audio", ErrInvalidCombinedAudio, "invalid_combined_audio"},
		{"cancelled", ErrCancelled, "cancelled"},
		{"pipeline wrapper", NewPipelineError(ErrNoAudioProduced, "orchestrator", "assemble"), "no_audio_produced"},
		{"unclassified", errors.New("something else"), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Reason(tt.err); got != tt.want {
				t.Errorf("Reason(%v) = %q, want %q", tt.err, got, tt.want)
			}
		})
	}
}

func TestIsRetryable(t *testing.T) {
	retryable := []error{
		ErrSynthesisTimeout,
		ErrRateLimited,
		ErrServerError,
		ErrNetworkError,
		ErrInvalidPayload,
		fmt.Errorf("status 429: %w", ErrRateLimited),
		NewPipelineError(ErrServerError, "executor", "synthesize"),
	}
	for _, err := range retryable {
		if !IsRetryable(err) {
			t.Errorf("Expected %v to be retryable", err)
		}
	}

	terminal := []error{
		nil,
		ErrInvalidInput,
		ErrChunkingFailed,
		ErrTooManyFailures,
		ErrNoAudioProduced,
		ErrInvalidCombinedAudio,
		ErrCancelled,
		errors.New("something else"),
	}
	for _, err := range terminal {
		if IsRetryable(err) {
			t.Errorf("Expected %v not to be retryable", err)
		}
	}
}

func TestPipelineError(t *testing.T) {
	err := NewPipelineError(ErrServerError, "executor", "synthesize")

	want := "executor: synthesize: synthesis backend reported a server error"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
	if !errors.Is(err, ErrServerError) {
		t.Error("Expected errors.Is to see through the wrapper")
	}
	if err.Unwrap() != ErrServerError {
		t.Error("Expected Unwrap to return the classified error")
	}
}

func TestPipelineErrorWithContext(t *testing.T) {
	err := NewPipelineError(ErrInvalidPayload, "executor", "synthesize").
		WithContext("segment", 3).
		WithContext("bytes", 17)

	if err.Context["segment"] != 3 {
		t.Errorf("Context[segment] = %v, want 3", err.Context["segment"])
	}
	if err.Context["bytes"] != 17 {
		t.Errorf("Context[bytes] = %v, want 17", err.Context["bytes"])
	}
}

func TestPipelineErrorNilInner(t *testing.T) {
	err := &PipelineError{Component: "chunker", Action: "chunk"}

	want := "chunker: chunk failed"
	if err.Error() != want {
		t.Errorf("Error() with nil inner = %q, want %q", err.Error(), want)
	}
}
