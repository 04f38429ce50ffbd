// Package engine provides the speech backends a synthesis run can
// dispatch to: an OpenAI-compatible HTTP engine and an offline mock.
package engine

import (
	"fmt"
	"strings"

	"github.com/dgnsrekt/vaani/tts"
)

// DefaultVoices is the voice catalog of the OpenAI speech endpoint.
// The mock engine mirrors it so runs validate identically offline.
var DefaultVoices = []string{"alloy", "echo", "fable", "onyx", "nova", "shimmer"}

func voiceCatalog() []string {
	out := make([]string, len(DefaultVoices))
	copy(out, DefaultVoices)
	return out
}

// New returns the named engine. Supported names are "openai" and
// "mock"; an empty name selects openai.
func New(name string, cfg OpenAIConfig) (tts.Engine, error) {
	switch strings.ToLower(name) {
	case "", "openai":
		return NewOpenAI(cfg)
	case "mock":
		return NewMock(MockConfig{}), nil
	default:
		return nil, fmt.Errorf("unknown engine %q (valid engines: openai, mock)", name)
	}
}
