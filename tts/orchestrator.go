package tts

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/mattn/go-runewidth"
)

// excerptWidth bounds the display width of segment excerpts carried in
// failure records.
const excerptWidth = 48

// Orchestrator drives a synthesis run end to end: validation,
// language detection, chunking, sequential segment dispatch with
// pacing and an abort threshold, and ordered reassembly. A single
// Orchestrator may serve concurrent runs; it holds no per-run state.
type Orchestrator struct {
	cfg      Config
	engine   Engine
	exec     *Executor
	chunker  *Chunker
	progress ProgressFunc
	log      *log.Logger
}

// Option configures an Orchestrator at construction.
type Option func(*Orchestrator)

// WithLogger routes the pipeline's structured logs to l.
func WithLogger(l *log.Logger) Option {
	return func(o *Orchestrator) { o.log = l }
}

// WithProgress registers a callback fed one event per state change
// and per dispatched segment.
func WithProgress(fn ProgressFunc) Option {
	return func(o *Orchestrator) { o.progress = fn }
}

// New builds an Orchestrator around an engine. The configuration is
// validated once, copied, and never mutated by runs.
func New(engine Engine, cfg Config, opts ...Option) (*Orchestrator, error) {
	if engine == nil {
		return nil, errors.New("engine is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	o := &Orchestrator{cfg: cfg, engine: engine, log: log.Default()}
	for _, opt := range opts {
		opt(o)
	}
	o.chunker = NewChunker(cfg.MaxSegmentLen, cfg.BoundaryRunes())
	o.exec = NewExecutor(engine, cfg, o.log)
	return o, nil
}

// Synthesize converts text into one audio payload. The result is
// always well-formed; terminal failures are returned as classified
// errors alongside it. Cancelling ctx interrupts the run at the next
// suspension point and discards any partial audio.
func (o *Orchestrator) Synthesize(ctx context.Context, text, voiceHint string) (*SynthesisResult, error) {
	run := o.log.With("run", uuid.NewString()[:8])
	res := &SynthesisResult{Format: o.engine.Format()}

	o.emit(ProgressEvent{State: StateValidating})
	voice, err := o.validate(text, voiceHint)
	if err != nil {
		run.Debug("input rejected", "err", err)
		o.emit(ProgressEvent{State: StateAborted})
		return res, err
	}
	res.Voice = voice
	trimmed := strings.TrimSpace(text)

	o.emit(ProgressEvent{State: StateDetecting})
	lang := DetectLanguage(trimmed)
	res.Language = lang

	o.emit(ProgressEvent{State: StateChunking})
	segments := o.chunker.Chunk(trimmed)
	if len(segments) == 0 {
		o.emit(ProgressEvent{State: StateAborted})
		return res, NewPipelineError(ErrChunkingFailed, "chunker", "chunk")
	}
	res.Segments = len(segments)
	run.Debug("input chunked",
		"segments", len(segments), "lang", lang, "voice", voice, "engine", o.engine.Name())

	total := len(segments)
	o.emit(ProgressEvent{State: StateDispatching, Total: total})
	outcomes := make([][]byte, total)
	var failures []SegmentFailure
	for i, seg := range segments {
		data, err := o.exec.Execute(ctx, seg, lang, voice)
		segReason := ""
		if err != nil {
			if errors.Is(err, ErrCancelled) {
				res.Warnings = failures
				o.emit(ProgressEvent{State: StateAborted, Total: total, Failures: len(failures)})
				return res, err
			}
			segReason = Reason(err)
			failures = append(failures, SegmentFailure{
				Segment: seg.Index,
				Excerpt: runewidth.Truncate(seg.Text, excerptWidth, "…"),
				Reason:  segReason,
			})
			run.Warn("segment failed", "segment", seg.Index, "of", total, "reason", segReason)
		} else {
			outcomes[i] = data
		}
		o.emit(ProgressEvent{
			State: StateDispatching, Segment: seg.Index, Total: total,
			Failures: len(failures), Reason: segReason,
		})

		// Abort as soon as a majority of segments has failed; the
		// remaining dispatches could no longer salvage the run.
		if len(failures) > total/2 {
			res.Warnings = failures
			o.emit(ProgressEvent{State: StateAborted, Segment: seg.Index, Total: total, Failures: len(failures)})
			return res, fmt.Errorf("%w (%d of %d)", ErrTooManyFailures, len(failures), total)
		}
		if i < total-1 {
			if err := o.pace(ctx); err != nil {
				res.Warnings = failures
				o.emit(ProgressEvent{State: StateAborted, Segment: seg.Index, Total: total, Failures: len(failures)})
				return res, err
			}
		}
	}

	o.emit(ProgressEvent{State: StateAssembling, Total: total, Failures: len(failures)})
	res.Warnings = failures
	var combined []byte
	parts := 0
	for _, data := range outcomes {
		if data != nil {
			combined = append(combined, data...)
			parts++
		}
	}
	if parts == 0 {
		o.emit(ProgressEvent{State: StateAborted, Total: total, Failures: len(failures)})
		return res, NewPipelineError(ErrNoAudioProduced, "orchestrator", "assemble")
	}
	if len(combined) < o.cfg.MinCombinedAudio {
		o.emit(ProgressEvent{State: StateAborted, Total: total, Failures: len(failures)})
		return res, fmt.Errorf("%w: %d bytes from %d segments", ErrInvalidCombinedAudio, len(combined), parts)
	}

	res.Success = true
	res.Audio = combined
	run.Info("synthesis complete",
		"segments", total, "failed", len(failures), "bytes", len(combined))
	o.emit(ProgressEvent{State: StateDone, Total: total, Failures: len(failures)})
	return res, nil
}

// validate applies the input ceilings and resolves the voice. It does
// no network I/O, so oversized or empty input is rejected before any
// backend work happens.
func (o *Orchestrator) validate(text, voiceHint string) (string, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return "", fmt.Errorf("%w: text is required", ErrInvalidInput)
	}
	if n := utf8.RuneCountInString(trimmed); n > o.cfg.MaxInputChars {
		return "", fmt.Errorf("%w: %d characters exceeds the %d character limit", ErrInvalidInput, n, o.cfg.MaxInputChars)
	}
	if n := len(trimmed); n > o.cfg.MaxInputBytes {
		return "", fmt.Errorf("%w: %d bytes exceeds the %d byte limit", ErrInvalidInput, n, o.cfg.MaxInputBytes)
	}

	voice := voiceHint
	if voice == "" {
		voice = o.cfg.DefaultVoice
	}
	if catalog := o.engine.Voices(); len(catalog) > 0 && !containsFold(catalog, voice) {
		if suggestion, ok := SuggestVoice(voice, catalog); ok {
			return "", fmt.Errorf("%w: unknown voice %q (did you mean %q?), valid voices: %s",
				ErrInvalidInput, voice, suggestion, strings.Join(catalog, ", "))
		}
		return "", fmt.Errorf("%w: unknown voice %q, valid voices: %s",
			ErrInvalidInput, voice, strings.Join(catalog, ", "))
	}
	return voice, nil
}

// pace applies the fixed delay between segment dispatches that keeps
// the backend from rate limiting bursts.
func (o *Orchestrator) pace(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("%w: %v", ErrCancelled, ctx.Err())
	case <-time.After(o.cfg.PacingDelay):
		return nil
	}
}

func (o *Orchestrator) emit(ev ProgressEvent) {
	if o.progress != nil {
		o.progress(ev)
	}
}

func containsFold(list []string, want string) bool {
	for _, v := range list {
		if strings.EqualFold(v, want) {
			return true
		}
	}
	return false
}
