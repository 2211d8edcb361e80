// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package judge

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/pdiddy/pdf-bench/internal/httputil"
	"github.com/pdiddy/pdf-bench/pkg/types"
)

// Judge defaults.
const (
	DefaultModel        = "claude-haiku-4-5-20251001"
	DefaultMaxTokens    = 512
	DefaultMaxHTMLChars = 12000
	DefaultTimeout      = 60 * time.Second
	DefaultPipeline     = "parsr"
)

// claudeAPIURL is the Claude API endpoint. Package-level var for test substitution.
var claudeAPIURL = "https://api.anthropic.com/v1/messages"

// ErrOverloaded is returned when the API stayed overloaded for every attempt.
var ErrOverloaded = errors.New("Claude API overloaded")

// ErrNoAPIKey is returned when no API key is configured.
var ErrNoAPIKey = errors.New("ANTHROPIC_API_KEY not set")

// APIError is a non-retryable error response from the Claude API.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("Claude API returned %d: %s", e.StatusCode, e.Body)
}

// Input is one fixture to score.
type Input struct {
	Fixture   string
	Source    string
	Converted string
}

// Judge scores a converted document against its ground truth.
type Judge interface {
	Judge(ctx context.Context, in Input) (types.Judgment, error)
}

// ClaudeJudge scores documents with the Claude Messages API.
type ClaudeJudge struct {
	APIKey       string
	Model        string
	Pipeline     string
	MaxHTMLChars int
	Attempts     int
	Client       *http.Client

	logger *slog.Logger
}

// NewClaudeJudge creates a judge from cfg, filling unset fields with the
// defaults above. A nil logger uses slog.Default().
func NewClaudeJudge(cfg types.JudgeConfig, logger *slog.Logger) *ClaudeJudge {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Pipeline == "" {
		cfg.Pipeline = DefaultPipeline
	}
	if cfg.MaxHTMLChars <= 0 {
		cfg.MaxHTMLChars = DefaultMaxHTMLChars
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &ClaudeJudge{
		APIKey:       cfg.APIKey,
		Model:        cfg.Model,
		Pipeline:     cfg.Pipeline,
		MaxHTMLChars: cfg.MaxHTMLChars,
		Attempts:     cfg.MaxRetries,
		Client:       &http.Client{Timeout: cfg.Timeout},
		logger:       logger,
	}
}

// claudeRequest is the request body for the Claude Messages API.
type claudeRequest struct {
	Model     string          `json:"model"`
	MaxTokens int             `json:"max_tokens"`
	System    string          `json:"system"`
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

// Judge sends both documents to Claude and parses the rubric reply.
// Overloaded responses are retried per httputil.OverloadPolicy; any other
// error status is returned as *APIError.
func (c *ClaudeJudge) Judge(ctx context.Context, in Input) (types.Judgment, error) {
	if c.APIKey == "" {
		return types.Judgment{}, ErrNoAPIKey
	}
	logger := c.logger
	if logger == nil {
		logger = slog.Default()
	}

	reqBody := claudeRequest{
		Model:     c.Model,
		MaxTokens: DefaultMaxTokens,
		System:    systemPrompt,
		Messages: []claudeMessage{
			{Role: "user", Content: userContent(in, c.Pipeline, c.MaxHTMLChars)},
		},
	}
	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return types.Judgment{}, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, claudeAPIURL, bytes.NewReader(bodyBytes))
	if err != nil {
		return types.Judgment{}, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.APIKey)
	req.Header.Set("anthropic-version", "2023-06-01")

	client := c.Client
	if client == nil {
		client = http.DefaultClient
	}

	requestID := uuid.NewString()
	logger.Debug("judge.http.request", "fixture", in.Fixture, "request_id", requestID, "model", c.Model)

	policy := httputil.OverloadPolicy(c.Attempts)
	policy.OnRetry = func(attempt, status int, wait time.Duration) {
		logger.Warn("judge.http.retry",
			"fixture", in.Fixture,
			"request_id", requestID,
			"attempt", attempt,
			"attempts", policy.Attempts,
			"status", status,
			"wait", wait)
	}

	start := time.Now()
	resp, err := httputil.DoWithRetry(ctx, client, req, policy)
	if err != nil {
		return types.Judgment{}, fmt.Errorf("calling Claude API: %w", err)
	}
	defer resp.Body.Close()
	logger.Debug("judge.http.response",
		"fixture", in.Fixture,
		"request_id", requestID,
		"status", resp.StatusCode,
		"duration", time.Since(start))

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		if httputil.IsOverloaded(resp.StatusCode, body) {
			return types.Judgment{}, fmt.Errorf("after %d attempts: %w", policy.Attempts, ErrOverloaded)
		}
		return types.Judgment{}, &APIError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var cResp claudeResponse
	if err := json.NewDecoder(resp.Body).Decode(&cResp); err != nil {
		return types.Judgment{}, fmt.Errorf("decoding Claude response: %w", err)
	}
	for _, block := range cResp.Content {
		if block.Type != "text" {
			continue
		}
		return ParseJudgment(in.Fixture, block.Text)
	}
	return types.Judgment{}, fmt.Errorf("no text content in Claude API response")
}
