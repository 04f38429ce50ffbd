package tts

import (
	"fmt"
	"time"
)

// Default limits. The segment cap matches the request ceiling of the
// public translate-style synthesis endpoints; the input ceilings keep a
// single run bounded to a handful of segments.
const (
	DefaultMaxInputChars = 2000
	DefaultMaxInputBytes = 3000
	DefaultMaxSegmentLen = 190
	DefaultBoundaries    = ".!?।" // sentence-terminal runes, incl. Devanagari danda
)

// Config holds every tunable of a synthesis run. It is read at
// construction time and never mutated afterwards, so independent runs
// can share nothing.
type Config struct {
	// Input validation ceilings
	MaxInputChars int `yaml:"max_input_chars" env:"VAANI_MAX_INPUT_CHARS" envDefault:"2000"`
	MaxInputBytes int `yaml:"max_input_bytes" env:"VAANI_MAX_INPUT_BYTES" envDefault:"3000"`

	// Chunking
	MaxSegmentLen int    `yaml:"max_segment_len" env:"VAANI_MAX_SEGMENT_LEN" envDefault:"190"`
	Boundaries    string `yaml:"boundaries" env:"VAANI_BOUNDARIES"`

	// Per-segment dispatch
	MaxRetries     int           `yaml:"max_retries" env:"VAANI_MAX_RETRIES" envDefault:"3"`
	AttemptTimeout time.Duration `yaml:"attempt_timeout" env:"VAANI_ATTEMPT_TIMEOUT" envDefault:"30s"`
	RetryDelay     time.Duration `yaml:"retry_delay" env:"VAANI_RETRY_DELAY" envDefault:"1s"`
	BackoffStep    time.Duration `yaml:"backoff_step" env:"VAANI_BACKOFF_STEP" envDefault:"2s"`
	PacingDelay    time.Duration `yaml:"pacing_delay" env:"VAANI_PACING_DELAY" envDefault:"500ms"`

	// Payload plausibility thresholds, in bytes
	MinSegmentAudio  int `yaml:"min_segment_audio" env:"VAANI_MIN_SEGMENT_AUDIO" envDefault:"100"`
	MinCombinedAudio int `yaml:"min_combined_audio" env:"VAANI_MIN_COMBINED_AUDIO" envDefault:"100"`

	// Voice used when the caller supplies no hint
	DefaultVoice string `yaml:"voice" env:"VAANI_VOICE" envDefault:"alloy"`
}

// DefaultConfig returns a Config with the stock limits.
func DefaultConfig() Config {
	return Config{
		MaxInputChars: DefaultMaxInputChars,
		MaxInputBytes: DefaultMaxInputBytes,
		MaxSegmentLen: DefaultMaxSegmentLen,
		Boundaries:    DefaultBoundaries,

		MaxRetries:     3,
		AttemptTimeout: 30 * time.Second,
		RetryDelay:     time.Second,
		BackoffStep:    2 * time.Second,
		PacingDelay:    500 * time.Millisecond,

		MinSegmentAudio:  100,
		MinCombinedAudio: 100,

		DefaultVoice: "alloy",
	}
}

// BoundaryRunes returns the configured sentence-boundary set, falling
// back to the default when unset.
func (c *Config) BoundaryRunes() []rune {
	if c.Boundaries == "" {
		return []rune(DefaultBoundaries)
	}
	return []rune(c.Boundaries)
}

// Validate checks the configuration is usable.
func (c *Config) Validate() error {
	if c.MaxInputChars < 1 {
		return fmt.Errorf("max_input_chars must be positive, got %d", c.MaxInputChars)
	}
	if c.MaxInputBytes < c.MaxInputChars {
		return fmt.Errorf("max_input_bytes (%d) cannot be below max_input_chars (%d)", c.MaxInputBytes, c.MaxInputChars)
	}
	if c.MaxSegmentLen < 1 {
		return fmt.Errorf("max_segment_len must be positive, got %d", c.MaxSegmentLen)
	}
	if c.MaxRetries < 1 {
		return fmt.Errorf("max_retries must be at least 1, got %d", c.MaxRetries)
	}
	if c.AttemptTimeout < time.Millisecond {
		return fmt.Errorf("attempt_timeout must be at least 1ms, got %v", c.AttemptTimeout)
	}
	if c.RetryDelay < 0 {
		return fmt.Errorf("retry_delay cannot be negative, got %v", c.RetryDelay)
	}
	if c.BackoffStep < 0 {
		return fmt.Errorf("backoff_step cannot be negative, got %v", c.BackoffStep)
	}
	if c.PacingDelay < 0 {
		return fmt.Errorf("pacing_delay cannot be negative, got %v", c.PacingDelay)
	}
	if c.MinSegmentAudio < 0 || c.MinCombinedAudio < 0 {
		return fmt.Errorf("plausibility thresholds cannot be negative")
	}
	return nil
}
