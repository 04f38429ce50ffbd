package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dgnsrekt/vaani/tts"
)

// Fixed messages of the stdout JSON contract. Callers parse these
// strings, so the wording never changes.
const (
	msgTextRequired  = "Text is required"
	msgNoInput       = "No input provided"
	msgInvalidJSON   = "Invalid JSON input"
	msgRateLimited   = "Rate limit exceeded. Please try again later."
	msgQuotaExceeded = "Service quota exceeded. Please try again later."
)

// envelope is the single JSON object written to stdout in --json and
// --request modes.
type envelope struct {
	Success  bool                 `json:"success"`
	Audio    string               `json:"audio,omitempty"`
	Error    string               `json:"error,omitempty"`
	Warnings []tts.SegmentFailure `json:"warnings,omitempty"`
}

// requestPayload is the argv object accepted by --request.
type requestPayload struct {
	Text  string `json:"text"`
	Voice string `json:"voice"`
}

func parseRequest(raw string) (requestPayload, error) {
	var req requestPayload
	if err := json.Unmarshal([]byte(raw), &req); err != nil {
		return requestPayload{}, errors.New(msgInvalidJSON)
	}
	return req, nil
}

func writeEnvelope(w io.Writer, env envelope) error {
	if err := json.NewEncoder(w).Encode(env); err != nil {
		return fmt.Errorf("unable to encode envelope: %w", err)
	}
	return nil
}

// envelopeMessage maps a terminal synthesis error onto the fixed
// message set of the wire contract, falling back to the error text.
func envelopeMessage(err error, warnings []tts.SegmentFailure) string {
	if err == nil {
		return ""
	}
	lower := strings.ToLower(err.Error())
	switch {
	case errors.Is(err, tts.ErrInvalidInput):
		if strings.Contains(lower, "text is required") {
			return msgTextRequired
		}
		return err.Error()
	case errors.Is(err, tts.ErrRateLimited):
		if strings.Contains(lower, "quota") {
			return msgQuotaExceeded
		}
		return msgRateLimited
	case errors.Is(err, tts.ErrTooManyFailures) && dominantReason(warnings) == "rate_limited":
		return msgRateLimited
	default:
		return err.Error()
	}
}

// dominantReason returns the most frequent failure reason, so an
// aborted run reports what actually went wrong instead of a bare
// failure count.
func dominantReason(warnings []tts.SegmentFailure) string {
	if len(warnings) == 0 {
		return ""
	}
	counts := make(map[string]int)
	best := ""
	for _, w := range warnings {
		counts[w.Reason]++
		if best == "" || counts[w.Reason] > counts[best] {
			best = w.Reason
		}
	}
	return best
}
