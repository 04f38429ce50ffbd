package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/dgnsrekt/vaani/tts"
)

func TestParseRequest(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    requestPayload
		wantErr string
	}{
		{"text and voice", `{"text": "Hello world.", "voice": "nova"}`, requestPayload{Text: "Hello world.", Voice: "nova"}, ""},
		{"text only", `{"text": "Hello"}`, requestPayload{Text: "Hello"}, ""},
		{"extra fields ignored", `{"text": "Hi", "speed": 2}`, requestPayload{Text: "Hi"}, ""},
		{"malformed", `{"text": `, requestPayload{}, msgInvalidJSON},
		{"not an object", `42`, requestPayload{}, msgInvalidJSON},
		{"empty", ``, requestPayload{}, msgInvalidJSON},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseRequest(tt.raw)
			if tt.wantErr != "" {
				if err == nil || err.Error() != tt.wantErr {
					t.Fatalf("Expected error %q, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Expected no error, got %v", err)
			}
			if got != tt.want {
				t.Errorf("Expected %+v, got %+v", tt.want, got)
			}
		})
	}
}

func TestEnvelopeMessage(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		warnings []tts.SegmentFailure
		want     string
	}{
		{
			"empty text",
			fmt.Errorf("%w: text is required", tts.ErrInvalidInput),
			nil,
			msgTextRequired,
		},
		{
			"oversized input keeps its diagnostic",
			fmt.Errorf("%w: 2500 characters exceeds the 2000 character limit", tts.ErrInvalidInput),
			nil,
			"invalid input text: 2500 characters exceeds the 2000 character limit",
		},
		{
			"quota prose",
			fmt.Errorf("%w: status 429: You exceeded your current quota", tts.ErrRateLimited),
			nil,
			msgQuotaExceeded,
		},
		{
			"rate limited",
			tts.ErrRateLimited,
			nil,
			msgRateLimited,
		},
		{
			"quota in an unrelated error stays verbatim",
			errors.New("could not read quota-report.md: no such file"),
			nil,
			"could not read quota-report.md: no such file",
		},
		{
			"abort dominated by rate limits",
			fmt.Errorf("%w (3 of 4)", tts.ErrTooManyFailures),
			[]tts.SegmentFailure{{Reason: "rate_limited"}, {Reason: "rate_limited"}, {Reason: "server_error"}},
			msgRateLimited,
		},
		{
			"abort dominated by server errors",
			fmt.Errorf("%w (3 of 4)", tts.ErrTooManyFailures),
			[]tts.SegmentFailure{{Reason: "server_error"}, {Reason: "server_error"}, {Reason: "timeout"}},
			"more than half of the segments failed (3 of 4)",
		},
		{
			"no input",
			errors.New(msgNoInput),
			nil,
			msgNoInput,
		},
		{
			"nil error",
			nil,
			nil,
			"",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := envelopeMessage(tt.err, tt.warnings); got != tt.want {
				t.Errorf("Expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestDominantReason(t *testing.T) {
	tests := []struct {
		name     string
		warnings []tts.SegmentFailure
		want     string
	}{
		{"empty", nil, ""},
		{"single", []tts.SegmentFailure{{Reason: "timeout"}}, "timeout"},
		{
			"majority wins",
			[]tts.SegmentFailure{{Reason: "timeout"}, {Reason: "rate_limited"}, {Reason: "rate_limited"}},
			"rate_limited",
		},
		{
			"tie keeps the first seen",
			[]tts.SegmentFailure{{Reason: "timeout"}, {Reason: "rate_limited"}},
			"timeout",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := dominantReason(tt.warnings); got != tt.want {
				t.Errorf("Expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestWriteEnvelope(t *testing.T) {
	var buf bytes.Buffer
	if err := writeEnvelope(&buf, envelope{Success: true, Audio: "QUJD"}); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("Expected valid JSON, got %v", err)
	}
	if decoded["success"] != true {
		t.Errorf("Expected success true, got %v", decoded["success"])
	}
	if decoded["audio"] != "QUJD" {
		t.Errorf("Expected audio QUJD, got %v", decoded["audio"])
	}
	if _, ok := decoded["error"]; ok {
		t.Error("Expected error to be omitted on success")
	}

	buf.Reset()
	if err := writeEnvelope(&buf, envelope{Error: msgTextRequired}); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	decoded = nil
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("Expected valid JSON, got %v", err)
	}
	if decoded["success"] != false {
		t.Errorf("Expected success false, got %v", decoded["success"])
	}
	if decoded["error"] != msgTextRequired {
		t.Errorf("Expected error %q, got %v", msgTextRequired, decoded["error"])
	}
	if _, ok := decoded["audio"]; ok {
		t.Error("Expected audio to be omitted on failure")
	}
}
