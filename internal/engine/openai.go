package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/dgnsrekt/vaani/tts"
)

// OpenAIConfig holds configuration for the OpenAI-compatible engine.
type OpenAIConfig struct {
	// BaseURL of the API. Defaults to the public OpenAI endpoint; any
	// server speaking the same audio/speech contract works.
	BaseURL string

	// APIKey for Bearer auth. Falls back to VAANI_API_KEY, then
	// OPENAI_API_KEY.
	APIKey string

	// Model to synthesize with. Defaults to tts-1.
	Model string

	// ResponseFormat requested from the backend. Defaults to mp3.
	ResponseFormat string

	// Speed multiplier. Defaults to 1.0.
	Speed float64

	// RequestsPerMinute throttles calls client side before the server
	// has to. Defaults to 50.
	RequestsPerMinute int

	// HTTPClient to send requests with. Defaults to a client without
	// its own timeout, so the caller's context governs each request.
	HTTPClient *http.Client
}

// OpenAI talks to an OpenAI-compatible audio/speech endpoint. Failures
// the backend signals are wrapped in the pipeline's error classes so
// the caller's retry policy can act on them.
type OpenAI struct {
	cfg     OpenAIConfig
	client  *http.Client
	limiter *rate.Limiter
}

// NewOpenAI creates the engine, filling unset fields with defaults.
func NewOpenAI(cfg OpenAIConfig) (*OpenAI, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openai.com/v1"
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.APIKey == "" {
		cfg.APIKey = apiKeyFromEnv()
	}
	if cfg.APIKey == "" {
		return nil, errors.New("an API key is required: set VAANI_API_KEY or OPENAI_API_KEY")
	}
	if cfg.Model == "" {
		cfg.Model = "tts-1"
	}
	if cfg.ResponseFormat == "" {
		cfg.ResponseFormat = "mp3"
	}
	if cfg.Speed == 0 {
		cfg.Speed = 1.0
	}
	if cfg.RequestsPerMinute == 0 {
		cfg.RequestsPerMinute = 50
	}
	client := cfg.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}

	return &OpenAI{
		cfg:     cfg,
		client:  client,
		limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(cfg.RequestsPerMinute)), 1),
	}, nil
}

// Name identifies the engine in logs.
func (e *OpenAI) Name() string { return "openai" }

// Format returns the audio container requested from the backend.
func (e *OpenAI) Format() string { return e.cfg.ResponseFormat }

// Voices returns the endpoint's voice catalog.
func (e *OpenAI) Voices() []string { return voiceCatalog() }

// Synthesize posts one segment to the audio/speech endpoint and
// returns the raw audio bytes.
func (e *OpenAI) Synthesize(ctx context.Context, req tts.Request) ([]byte, error) {
	if err := e.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait cancelled: %w", err)
	}

	payload := map[string]interface{}{
		"model":           e.cfg.Model,
		"input":           req.Text,
		"voice":           req.Voice,
		"speed":           e.cfg.Speed,
		"response_format": e.cfg.ResponseFormat,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encoding request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, e.cfg.BaseURL+"/audio/speech", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+e.cfg.APIKey)

	resp, err := e.client.Do(httpReq)
	if err != nil {
		// Surface deadline and cancellation untouched so the caller
		// can tell a timed-out attempt from an unreachable backend.
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("%w: %v", tts.ErrNetworkError, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, classifyStatus(resp.StatusCode, msg)
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("%w: reading response: %v", tts.ErrNetworkError, err)
	}
	return audio, nil
}

// classifyStatus maps a non-200 response onto the pipeline error
// classes. Some backends report quota exhaustion with a 403 and a
// prose body, so the body is sniffed too.
func classifyStatus(status int, body []byte) error {
	msg := strings.TrimSpace(string(body))
	if msg == "" {
		msg = http.StatusText(status)
	}
	switch {
	case status == http.StatusTooManyRequests || hasQuotaHint(msg):
		return fmt.Errorf("%w: status %d: %s", tts.ErrRateLimited, status, msg)
	case status >= 500:
		return fmt.Errorf("%w: status %d: %s", tts.ErrServerError, status, msg)
	default:
		return fmt.Errorf("openai: status %d: %s", status, msg)
	}
}

func hasQuotaHint(msg string) bool {
	lower := strings.ToLower(msg)
	return strings.Contains(lower, "rate limit") || strings.Contains(lower, "quota")
}

func apiKeyFromEnv() string {
	if k := os.Getenv("VAANI_API_KEY"); k != "" {
		return k
	}
	return os.Getenv("OPENAI_API_KEY")
}

var _ tts.Engine = (*OpenAI)(nil)
