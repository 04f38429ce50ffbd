package tts

import (
	"strings"
	"testing"
	"time"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Errorf("Expected the default config to validate, got %v", err)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{
			name:   "zero input chars",
			mutate: func(c *Config) { c.MaxInputChars = 0 },
			want:   "max_input_chars",
		},
		{
			name:   "byte ceiling below char ceiling",
			mutate: func(c *Config) { c.MaxInputBytes = 100 },
			want:   "max_input_bytes",
		},
		{
			name:   "zero segment length",
			mutate: func(c *Config) { c.MaxSegmentLen = 0 },
			want:   "max_segment_len",
		},
		{
			name:   "zero retries",
			mutate: func(c *Config) { c.MaxRetries = 0 },
			want:   "max_retries",
		},
		{
			name:   "sub-millisecond attempt timeout",
			mutate: func(c *Config) { c.AttemptTimeout = 100 * time.Microsecond },
			want:   "attempt_timeout",
		},
		{
			name:   "negative retry delay",
			mutate: func(c *Config) { c.RetryDelay = -time.Second },
			want:   "retry_delay",
		},
		{
			name:   "negative backoff step",
			mutate: func(c *Config) { c.BackoffStep = -time.Second },
			want:   "backoff_step",
		},
		{
			name:   "negative pacing delay",
			mutate: func(c *Config) { c.PacingDelay = -time.Second },
			want:   "pacing_delay",
		},
		{
			name:   "negative plausibility floor",
			mutate: func(c *Config) { c.MinSegmentAudio = -1 },
			want:   "thresholds",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("Expected a validation error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Expected error mentioning %q, got %v", tt.want, err)
			}
		})
	}
}

func TestBoundaryRunes(t *testing.T) {
	cfg := DefaultConfig()

	cfg.Boundaries = ""
	if got := string(cfg.BoundaryRunes()); got != DefaultBoundaries {
		t.Errorf("Expected the default boundary set, got %q", got)
	}

	cfg.Boundaries = "|;"
	if got := string(cfg.BoundaryRunes()); got != "|;" {
		t.Errorf("Expected the configured boundary set, got %q", got)
	}
}
