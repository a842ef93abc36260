// Package genai holds the Gemini REST adapter and the drafting layer that
// turns profile + company data into a summary and outreach messages.
package genai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Default configuration values.
const (
	DefaultBaseURL = "https://generativelanguage.googleapis.com"
	DefaultModel   = "gemini-1.5-flash"
	DefaultTimeout = 60 * time.Second

	apiVersion = "v1beta"
)

// KeyFunc defers the keychain lookup until a request actually needs the API
// key, so the engine can start before the key is configured.
type KeyFunc func() (string, error)

// Config holds configuration for the Gemini client.
type Config struct {
	// Key supplies the Gemini API key (required).
	Key KeyFunc

	// BaseURL is the API base URL (default: DefaultBaseURL).
	BaseURL string

	// Model is the model to use (default: DefaultModel).
	Model string

	// Timeout is the request timeout (default: 60s).
	Timeout time.Duration

	// MaxOutputTokens bounds each completion; 0 uses 1024.
	MaxOutputTokens int
}

// Client calls the Gemini generateContent REST API.
type Client struct {
	client    *http.Client
	baseURL   string
	key       KeyFunc
	model     string
	maxTokens int
}

var _ LLM = (*Client)(nil)

// APIError is a decoded Gemini error body.
type APIError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Status  string `json:"status"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("gemini error %d (%s): %s", e.Code, e.Status, e.Message)
}

// ErrBlocked is returned when the model refuses the prompt (safety block) or
// returns no usable candidates; callers treat it as unusable output.
var ErrBlocked = errors.New("gemini: response blocked or empty")

// generateRequest is the Gemini :generateContent request format.
type generateRequest struct {
	Contents         []content         `json:"contents"`
	GenerationConfig *generationConfig `json:"generationConfig,omitempty"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generationConfig struct {
	Temperature     float64 `json:"temperature,omitempty"`
	MaxOutputTokens int     `json:"maxOutputTokens,omitempty"`
}

// generateResponse is the Gemini :generateContent response format.
type generateResponse struct {
	Candidates []struct {
		Content      content `json:"content"`
		FinishReason string  `json:"finishReason"`
	} `json:"candidates"`
	PromptFeedback *struct {
		BlockReason string `json:"blockReason"`
	} `json:"promptFeedback"`
	Error *APIError `json:"error,omitempty"`
}

// NewClient creates a Gemini client.
func NewClient(cfg Config) (*Client, error) {
	if cfg.Key == nil {
		return nil, fmt.Errorf("gemini: key source is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.MaxOutputTokens <= 0 {
		cfg.MaxOutputTokens = 1024
	}

	return &Client{
		client:    &http.Client{Timeout: cfg.Timeout},
		baseURL:   strings.TrimSuffix(cfg.BaseURL, "/"),
		key:       cfg.Key,
		model:     cfg.Model,
		maxTokens: cfg.MaxOutputTokens,
	}, nil
}

// Generate produces a text completion for one prompt.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	reqBody := generateRequest{
		Contents: []content{
			{Role: "user", Parts: []part{{Text: prompt}}},
		},
		GenerationConfig: &generationConfig{
			Temperature:     0.7,
			MaxOutputTokens: c.maxTokens,
		},
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/%s/models/%s:generateContent", c.baseURL, apiVersion, c.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonBody))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if err := c.authorize(req); err != nil {
		return "", err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	var genResp generateResponse
	if err := json.Unmarshal(body, &genResp); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}

	if genResp.Error != nil {
		return "", genResp.Error
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("gemini error (status %d): %s", resp.StatusCode, string(body))
	}

	if genResp.PromptFeedback != nil && genResp.PromptFeedback.BlockReason != "" {
		return "", fmt.Errorf("%w: %s", ErrBlocked, genResp.PromptFeedback.BlockReason)
	}
	if len(genResp.Candidates) == 0 {
		return "", ErrBlocked
	}

	var result strings.Builder
	for _, p := range genResp.Candidates[0].Content.Parts {
		result.WriteString(p.Text)
	}
	text := strings.TrimSpace(result.String())
	if text == "" {
		return "", ErrBlocked
	}
	return text, nil
}

// Ping validates the key and connectivity with a lightweight model-list call,
// without running inference.
func (c *Client) Ping(ctx context.Context) error {
	url := fmt.Sprintf("%s/%s/models?pageSize=1", c.baseURL, apiVersion)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return fmt.Errorf("gemini: create ping request: %w", err)
	}
	if err := c.authorize(req); err != nil {
		return err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("gemini: ping failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("gemini: API returned status %d: %s", resp.StatusCode, string(body))
	}
	return nil
}

// ModelName returns the configured model.
func (c *Client) ModelName() string {
	return c.model
}

// Close releases resources.
func (c *Client) Close() error {
	c.client.CloseIdleConnections()
	return nil
}

func (c *Client) authorize(req *http.Request) error {
	key, err := c.key()
	if err != nil {
		return fmt.Errorf("gemini: api key unavailable: %w", err)
	}
	req.Header.Set("x-goog-api-key", key)
	return nil
}
