// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package genclient issues assembled prompts to an external text-generation
// service under timeout, rate-limit, and bounded-retry discipline. The
// service is the one non-deterministic dependency of the pipeline: repeating
// a prompt may yield different text, and responses are never cached or
// deduplicated.
package genclient

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/clinscribe/report-engine/internal/httputil"
	"github.com/clinscribe/report-engine/pkg/types"
)

// Generator abstracts the text-generation service so tests can supply a
// deterministic fake. One prompt in, raw text or an error out.
type Generator interface {
	Generate(ctx context.Context, prompt types.Prompt) (string, error)
}

// apiURL is the Claude API endpoint. Package-level var for test substitution.
var apiURL = "https://api.anthropic.com/v1/messages"

const defaultTimeout = 120 * time.Second

// ClaudeBackend calls the Claude Messages API to generate report text.
type ClaudeBackend struct {
	APIKey string
	Model  string

	// MaxAttempts is the total attempt budget for transient failures,
	// first try included. Zero means 3.
	MaxAttempts int

	// Client is the HTTP client; its Timeout bounds each call. Nil uses
	// a default client with a 120s timeout.
	Client *http.Client

	// Limiter throttles calls to the service. Nil means unthrottled.
	Limiter *rate.Limiter

	// Logger receives the audit record for each call: prompt hash and
	// response metadata only, never patient-identifying text.
	Logger zerolog.Logger
}

// NewClaudeBackend builds a backend from the generation config.
func NewClaudeBackend(cfg types.GenerationConfig, logger zerolog.Logger) *ClaudeBackend {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	var limiter *rate.Limiter
	if cfg.RequestsPerMinute > 0 {
		limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(cfg.RequestsPerMinute)), 1)
	}
	return &ClaudeBackend{
		APIKey:      cfg.APIKey,
		Model:       cfg.Model,
		MaxAttempts: cfg.MaxAttempts,
		Client:      &http.Client{Timeout: timeout},
		Limiter:     limiter,
		Logger:      logger,
	}
}

// claudeRequest is the request body for the Claude Messages API.
type claudeRequest struct {
	Model     string          `json:"model"`
	MaxTokens int             `json:"max_tokens"`
	Messages  []claudeMessage `json:"messages"`
}

// claudeMessage is a single message in the Claude API conversation.
type claudeMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// claudeResponse is the response body from the Claude Messages API.
type claudeResponse struct {
	Content []claudeContent `json:"content"`
}

// claudeContent is a content block in the Claude API response.
type claudeContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// Generate posts the prompt to the Claude API. Transient failures (timeouts,
// 429, 5xx) are retried with exponential backoff up to the attempt budget;
// authentication and malformed-request errors fail immediately. The output
// size is hard-capped by the prompt's token budget.
func (c *ClaudeBackend) Generate(ctx context.Context, prompt types.Prompt) (string, error) {
	requestID := uuid.NewString()
	promptHash := fmt.Sprintf("%x", sha256.Sum256([]byte(prompt.Text)))
	start := time.Now()

	audit := c.Logger.With().
		Str("request_id", requestID).
		Str("prompt_sha256", promptHash).
		Str("model", c.Model).
		Int("max_output_tokens", prompt.MaxOutputTokens).
		Logger()

	if c.Limiter != nil {
		if err := c.Limiter.Wait(ctx); err != nil {
			return "", fmt.Errorf("waiting for rate limiter: %w", err)
		}
	}

	reqBody := claudeRequest{
		Model:     c.Model,
		MaxTokens: prompt.MaxOutputTokens,
		Messages: []claudeMessage{
			{Role: "user", Content: prompt.Text},
		},
	}
	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL, bytes.NewReader(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.APIKey)
	req.Header.Set("anthropic-version", "2023-06-01")

	client := c.Client
	if client == nil {
		client = &http.Client{Timeout: defaultTimeout}
	}

	maxRetries := c.MaxAttempts - 1
	if c.MaxAttempts <= 0 {
		maxRetries = 2
	}

	resp, err := httputil.DoWithRetry(ctx, client, req, maxRetries)
	if err != nil {
		audit.Error().Err(err).Dur("elapsed", time.Since(start)).Msg("generation call failed")
		return "", fmt.Errorf("calling generation service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		audit.Error().
			Int("status", resp.StatusCode).
			Dur("elapsed", time.Since(start)).
			Msg("generation call failed")
		if httputil.IsTransientStatus(resp.StatusCode) {
			return "", fmt.Errorf("generation service returned %d after retries: %s", resp.StatusCode, string(body))
		}
		return "", fmt.Errorf("generation service rejected request (%d): %s", resp.StatusCode, string(body))
	}

	var cResp claudeResponse
	if err := json.NewDecoder(resp.Body).Decode(&cResp); err != nil {
		return "", fmt.Errorf("decoding generation response: %w", err)
	}

	var text bytes.Buffer
	for _, block := range cResp.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	if text.Len() == 0 {
		return "", fmt.Errorf("generation service returned no text content")
	}

	audit.Info().
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Int("response_chars", text.Len()).
		Msg("generation complete")

	return text.String(), nil
}
