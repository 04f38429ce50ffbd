// Package tts implements the synthesis pipeline: input validation,
// language detection, boundary-aware chunking, resilient per-segment
// dispatch against a speech backend, and ordered reassembly of the
// returned audio.
package tts

import (
	"context"
	"strings"

	"github.com/sahilm/fuzzy"
	"golang.org/x/text/language"
)

// Request describes one segment synthesis call to a backend engine.
type Request struct {
	Text     string
	Language language.Tag
	Voice    string
}

// Engine is the narrow contract a speech backend must satisfy. Engines
// classify their own failures by wrapping the error sentinels in this
// package (ErrRateLimited, ErrServerError, ...); anything unclassified
// is treated as a transport failure.
type Engine interface {
	// Name identifies the engine in logs and diagnostics.
	Name() string

	// Voices returns the voices the engine accepts. An empty catalog
	// disables voice validation.
	Voices() []string

	// Format returns the audio container the engine produces, e.g.
	// "mp3" or "wav".
	Format() string

	// Synthesize converts one segment of text into audio bytes. It
	// must honor ctx cancellation and deadlines.
	Synthesize(ctx context.Context, req Request) ([]byte, error)
}

// Segment is one length-bounded unit of input text, dispatched as a
// single synthesis request. Index is 1-based and stable for the run.
type Segment struct {
	Index int
	Text  string
}

// SegmentFailure records one segment that could not be synthesized.
type SegmentFailure struct {
	Segment int    `json:"segment"`
	Excerpt string `json:"excerpt"`
	Reason  string `json:"reason"`
}

// SynthesisResult is the aggregate outcome of one run. It is always
// well-formed: on terminal failure Success is false, Audio is nil and
// the classified error is returned alongside it.
type SynthesisResult struct {
	Success  bool
	Audio    []byte
	Format   string
	Language language.Tag
	Voice    string
	Segments int
	Warnings []SegmentFailure
}

// SuggestVoice returns the closest catalog entry for a misspelled
// voice name, if any candidate matches at all.
func SuggestVoice(hint string, voices []string) (string, bool) {
	if hint == "" || len(voices) == 0 {
		return "", false
	}
	matches := fuzzy.Find(strings.ToLower(hint), voices)
	if len(matches) == 0 {
		return "", false
	}
	return voices[matches[0].Index], true
}
