package engine

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dgnsrekt/vaani/tts"
)

// MockConfig tunes the offline mock engine.
type MockConfig struct {
	// Delay simulates backend latency per request.
	Delay time.Duration

	// FailSubstring, when non-empty, fails any request whose text
	// contains it with a server error. Lets the retry and abort paths
	// run end to end without a real backend.
	FailSubstring string

	// WordsPerMinute drives the pretend speech duration. Defaults
	// to 150.
	WordsPerMinute int
}

// Mock is a deterministic offline engine. It fabricates an MP3-tagged
// payload sized from the pretend speech duration, so downstream
// plausibility checks behave as they would against a real backend.
type Mock struct {
	cfg MockConfig
}

// NewMock returns a mock engine.
func NewMock(cfg MockConfig) *Mock {
	if cfg.WordsPerMinute == 0 {
		cfg.WordsPerMinute = 150
	}
	return &Mock{cfg: cfg}
}

// Name identifies the engine in logs.
func (m *Mock) Name() string { return "mock" }

// Format returns the pretend audio container.
func (m *Mock) Format() string { return "mp3" }

// Voices mirrors the OpenAI catalog.
func (m *Mock) Voices() []string { return voiceCatalog() }

// Synthesize fabricates audio for one segment.
func (m *Mock) Synthesize(ctx context.Context, req tts.Request) ([]byte, error) {
	if m.cfg.Delay > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(m.cfg.Delay):
		}
	}
	if m.cfg.FailSubstring != "" && strings.Contains(req.Text, m.cfg.FailSubstring) {
		return nil, fmt.Errorf("%w: scripted failure on %q", tts.ErrServerError, m.cfg.FailSubstring)
	}

	words := len(strings.Fields(req.Text))
	if words == 0 {
		words = 1
	}
	duration := time.Duration(float64(words) / float64(m.cfg.WordsPerMinute) * float64(time.Minute))

	// Sized as 32kbit/s mono speech would be.
	size := int(duration.Seconds() * 4000)
	if size < 512 {
		size = 512
	}
	data := make([]byte, size)
	copy(data, "ID3")

	// Deterministic body derived from the request, handy in tests.
	seed := req.Voice + ":" + req.Text
	for i := 3; i < len(data); i++ {
		data[i] = seed[(i-3)%len(seed)]
	}
	return data, nil
}

var _ tts.Engine = (*Mock)(nil)
