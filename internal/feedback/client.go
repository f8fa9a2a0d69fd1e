package feedback

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// ErrNoCredentials means no API key is configured, so no call is attempted.
var ErrNoCredentials = errors.New("feedback: no API key configured")

const (
	DefaultBaseURL = "https://generativelanguage.googleapis.com"
	DefaultModel   = "gemini-1.5-flash"
	DefaultTimeout = 10 * time.Second

	maxResponseBytes = 1 << 20
)

// Config configures the Gemini-style generateContent client.
type Config struct {
	APIKey     string
	BaseURL    string
	Model      string
	Timeout    time.Duration
	HTTPClient *http.Client
	Logger     *slog.Logger
}

// Client calls the LLM endpoint.
type Client struct {
	apiKey  string
	baseURL string
	model   string
	http    *http.Client
	logger  *slog.Logger
}

// New creates a client. A client without an API key is valid; it simply never calls out.
func New(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Client{
		apiKey:  strings.TrimSpace(cfg.APIKey),
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		model:   cfg.Model,
		http:    cfg.HTTPClient,
		logger:  cfg.Logger,
	}
}

// Enabled reports whether the client has credentials.
func (c *Client) Enabled() bool {
	return c != nil && c.apiKey != ""
}

type part struct {
	Text string `json:"text"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type generationConfig struct {
	ResponseMimeType string  `json:"responseMimeType,omitempty"`
	Temperature      float64 `json:"temperature"`
	MaxOutputTokens  int     `json:"maxOutputTokens"`
}

type generateRequest struct {
	Contents         []content        `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func buildPrompt(req Request) string {
	return fmt.Sprintf(
		"You are the cheerful game master of a study RPG. The player (level %d) just finished a %d-minute study session on %q. "+
			"Reply with JSON only, shaped as {\"message\": string, \"type\": \"encouragement\"|\"victory\"|\"tip\"}. "+
			"Keep the message under 40 words and use gaming language.",
		req.Level, req.DurationMinutes, req.Subject,
	)
}

// Generate asks the model for feedback. It returns ErrNoCredentials without
// any network activity when the client has no API key.
func (c *Client) Generate(ctx context.Context, req Request) (Feedback, error) {
	if !c.Enabled() {
		return Feedback{}, ErrNoCredentials
	}

	body := generateRequest{
		Contents: []content{{Role: "user", Parts: []part{{Text: buildPrompt(req)}}}},
		GenerationConfig: generationConfig{
			ResponseMimeType: "application/json",
			Temperature:      0.8,
			MaxOutputTokens:  200,
		},
	}
	data, err := json.Marshal(body)
	if err != nil {
		return Feedback{}, fmt.Errorf("marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent", c.baseURL, c.model)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return Feedback{}, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return Feedback{}, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return Feedback{}, fmt.Errorf("read response: %w", err)
	}

	var out generateResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		if resp.StatusCode/100 != 2 {
			return Feedback{}, fmt.Errorf("API status %d", resp.StatusCode)
		}
		return Feedback{}, fmt.Errorf("decode response: %w", err)
	}
	if out.Error != nil {
		return Feedback{}, fmt.Errorf("API error: %s", out.Error.Message)
	}
	if resp.StatusCode/100 != 2 {
		return Feedback{}, fmt.Errorf("API status %d", resp.StatusCode)
	}
	if len(out.Candidates) == 0 || len(out.Candidates[0].Content.Parts) == 0 {
		return Feedback{}, errors.New("no candidates returned")
	}

	return parseFeedback(out.Candidates[0].Content.Parts[0].Text)
}

// parseFeedback decodes the model's JSON reply, tolerating markdown fences.
func parseFeedback(text string) (Feedback, error) {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	text = strings.TrimSpace(text)

	var payload struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	}
	if err := json.Unmarshal([]byte(text), &payload); err != nil {
		return Feedback{}, fmt.Errorf("decode feedback: %w", err)
	}
	msg := strings.TrimSpace(payload.Message)
	if msg == "" {
		return Feedback{}, errors.New("empty feedback message")
	}
	t, ok := ParseType(payload.Type)
	if !ok {
		return Feedback{}, fmt.Errorf("unknown feedback type %q", payload.Type)
	}
	return Feedback{Message: msg, Type: t}, nil
}

// GenerateWithFallback returns model feedback, or the fixed fallback when the
// call fails. ok is false only when no API key is configured.
func (c *Client) GenerateWithFallback(ctx context.Context, req Request) (fb Feedback, ok bool) {
	if !c.Enabled() {
		return Feedback{}, false
	}
	fb, err := c.Generate(ctx, req)
	if err != nil {
		c.logger.Warn("feedback request failed, using fallback",
			slog.String("subject", req.Subject),
			slog.Any("error", err),
		)
		return Fallback(), true
	}
	return fb, true
}
