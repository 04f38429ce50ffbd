package tts

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/text/language"
)

// Executor sends one segment at a time to the backend engine, applying
// the per-attempt timeout and the classified retry policy. The attempt
// counter is shared across failure classes: a segment gets MaxRetries
// attempts in total, whatever goes wrong on each of them.
type Executor struct {
	engine Engine
	cfg    Config
	log    *log.Logger
}

// NewExecutor returns an Executor bound to an engine and an immutable
// configuration.
func NewExecutor(engine Engine, cfg Config, logger *log.Logger) *Executor {
	if logger == nil {
		logger = log.Default()
	}
	return &Executor{engine: engine, cfg: cfg, log: logger}
}

// Execute synthesizes one segment, retrying classified failures until
// audio arrives or attempts are exhausted. On exhaustion the last
// classified error is returned. Caller cancellation interrupts any
// wait and surfaces ErrCancelled.
func (e *Executor) Execute(ctx context.Context, seg Segment, lang language.Tag, voice string) ([]byte, error) {
	req := Request{Text: seg.Text, Language: lang, Voice: voice}

	var lastErr error
	for attempt := 1; attempt <= e.cfg.MaxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCancelled, err)
		}

		attemptCtx, cancel := context.WithTimeout(ctx, e.cfg.AttemptTimeout)
		data, err := e.engine.Synthesize(attemptCtx, req)
		cancel()

		// Caller cancellation wins over whatever the attempt reported.
		if cerr := ctx.Err(); cerr != nil {
			return nil, fmt.Errorf("%w: %v", ErrCancelled, cerr)
		}

		if err == nil {
			if PlausibleAudio(data, e.cfg.MinSegmentAudio) {
				e.log.Debug("segment synthesized",
					"segment", seg.Index, "attempt", attempt, "bytes", len(data))
				return data, nil
			}
			lastErr = implausiblePayload(data)
		} else {
			lastErr = e.classify(err)
		}

		e.log.Debug("segment attempt failed",
			"segment", seg.Index, "attempt", attempt, "max", e.cfg.MaxRetries,
			"reason", Reason(lastErr), "err", lastErr)

		if attempt == e.cfg.MaxRetries {
			break
		}
		if err := e.wait(ctx, e.retryDelay(lastErr, attempt)); err != nil {
			return nil, err
		}
	}
	return nil, lastErr
}

// classify maps an attempt error onto the pipeline taxonomy. Engines
// pre-classify backend signals by wrapping the package sentinels;
// an expired attempt deadline becomes a timeout; everything left is a
// transport failure.
func (e *Executor) classify(err error) error {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%w after %s", ErrSynthesisTimeout, e.cfg.AttemptTimeout)
	case IsRetryable(err):
		return err
	default:
		return fmt.Errorf("%w: %v", ErrNetworkError, err)
	}
}

// retryDelay returns the wait before the next attempt. Rate limiting
// backs off linearly with the attempt number; every other class waits
// the flat retry delay.
func (e *Executor) retryDelay(err error, attempt int) time.Duration {
	if errors.Is(err, ErrRateLimited) {
		return time.Duration(attempt) * e.cfg.BackoffStep
	}
	return e.cfg.RetryDelay
}

func (e *Executor) wait(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("%w: %v", ErrCancelled, ctx.Err())
	case <-time.After(d):
		return nil
	}
}

func implausiblePayload(data []byte) error {
	if preview := payloadPreview(data); preview != "" {
		return fmt.Errorf("%w: %d bytes, body %q", ErrInvalidPayload, len(data), preview)
	}
	return fmt.Errorf("%w: %d bytes", ErrInvalidPayload, len(data))
}
