package tts

import (
	"errors"
	"fmt"
)

// Classified errors for the synthesis pipeline.
var (
	// Input and pipeline errors
	ErrInvalidInput   = errors.New("invalid input text")
	ErrChunkingFailed = errors.New("chunking produced no segments")

	// Per-segment errors, retryable up to the configured limit
	ErrSynthesisTimeout = errors.New("synthesis request timed out")
	ErrRateLimited      = errors.New("synthesis backend rate limited the request")
	ErrServerError      = errors.New("synthesis backend reported a server error")
	ErrNetworkError     = errors.New("could not reach synthesis backend")
	ErrInvalidPayload   = errors.New("backend response is not plausible audio")

	// Run-level terminal errors
	ErrTooManyFailures      = errors.New("more than half of the segments failed")
	ErrNoAudioProduced      = errors.New("no segment produced audio")
	ErrInvalidCombinedAudio = errors.New("combined audio is implausibly small")
	ErrCancelled            = errors.New("synthesis run cancelled")
)

// IsRetryable reports whether an error belongs to one of the
// per-segment classes the Executor retries.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrSynthesisTimeout) ||
		errors.Is(err, ErrRateLimited) ||
		errors.Is(err, ErrServerError) ||
		errors.Is(err, ErrNetworkError) ||
		errors.Is(err, ErrInvalidPayload)
}

// Reason maps a classified error to its short machine-readable name,
// used in warnings, progress events, and the JSON envelope.
func Reason(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrSynthesisTimeout):
		return "timeout"
	case errors.Is(err, ErrRateLimited):
		return "rate_limited"
	case errors.Is(err, ErrServerError):
		return "server_error"
	case errors.Is(err, ErrNetworkError):
		return "network_error"
	case errors.Is(err, ErrInvalidPayload):
		return "invalid_payload"
	case errors.Is(err, ErrInvalidInput):
		return "invalid_input"
	case errors.Is(err, ErrChunkingFailed):
		return "chunking_failed"
	case errors.Is(err, ErrTooManyFailures):
		return "too_many_failures"
	case errors.Is(err, ErrNoAudioProduced):
		return "no_audio_produced"
	case errors.Is(err, ErrInvalidCombinedAudio):
		return "invalid_combined_audio"
	case errors.Is(err, ErrCancelled):
		return "cancelled"
	default:
		return "unknown"
	}
}

// PipelineError carries the component and action that produced a
// classified error, plus free-form context for diagnostics.
type PipelineError struct {
	Err       error
	Component string
	Action    string
	Context   map[string]interface{}
}

// Error implements the error interface.
func (e *PipelineError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s failed", e.Component, e.Action)
	}
	return fmt.Sprintf("%s: %s: %v", e.Component, e.Action, e.Err)
}

// Unwrap returns the underlying classified error.
func (e *PipelineError) Unwrap() error {
	return e.Err
}

// NewPipelineError wraps a classified error with its origin.
func NewPipelineError(err error, component, action string) *PipelineError {
	return &PipelineError{
		Err:       err,
		Component: component,
		Action:    action,
	}
}

// WithContext attaches a diagnostic key/value pair.
func (e *PipelineError) WithContext(key string, value interface{}) *PipelineError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}
