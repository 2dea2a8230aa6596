// Package gemini implements a minimal client for the Gemini generateContent
// API. Only the request surface the schedule pipeline needs is modeled.
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"go.uber.org/zap"
)

// DefaultBaseURL is the root of the Gemini REST API.
const DefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// ErrNoCandidates is returned when the model reply carries no text output.
var ErrNoCandidates = errors.New("model response contained no text candidates")

// Part is one piece of request or response content.
type Part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *InlineData `json:"inlineData,omitempty"`
}

// InlineData carries a binary payload with its media type.
type InlineData struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}

// Content groups parts under a conversational role.
type Content struct {
	Role  string `json:"role,omitempty"`
	Parts []Part `json:"parts"`
}

type generationConfig struct {
	ResponseModalities []string `json:"responseModalities,omitempty"`
}

type generateRequest struct {
	Contents         []Content         `json:"contents"`
	GenerationConfig *generationConfig `json:"generationConfig,omitempty"`
}

type generateResponse struct {
	Candidates []struct {
		Content Content `json:"content"`
	} `json:"candidates"`
}

// APIError is a non-2xx reply from the model provider.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("gemini API returned HTTP %d: %s", e.StatusCode, e.Body)
}

// Client talks to the Gemini generateContent endpoint.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	model      string
	logger     *zap.Logger
}

// NewClient creates a Gemini client for the given model.
func NewClient(httpClient *http.Client, apiKey, model string, logger *zap.Logger) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		httpClient: httpClient,
		baseURL:    DefaultBaseURL,
		apiKey:     apiKey,
		model:      model,
		logger:     logger,
	}
}

// WithBaseURL overrides the API root. Used by tests.
func (c *Client) WithBaseURL(baseURL string) *Client {
	c.baseURL = baseURL
	return c
}

// GenerateContent performs a single synchronous model call and returns the
// first candidate's first text part. There is no retry; transport errors
// and non-2xx replies propagate to the caller.
func (c *Client) GenerateContent(ctx context.Context, contents []Content) (string, error) {
	body, err := json.Marshal(generateRequest{
		Contents:         contents,
		GenerationConfig: &generationConfig{ResponseModalities: []string{"TEXT"}},
	})
	if err != nil {
		return "", fmt.Errorf("encode request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent", c.baseURL, c.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("call model: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", &APIError{StatusCode: resp.StatusCode, Body: string(raw)}
	}

	var out generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}

	for _, candidate := range out.Candidates {
		for _, part := range candidate.Content.Parts {
			if part.Text == "" {
				continue
			}
			c.logger.Debug("gemini response", zap.String("model", c.model), zap.String("text", part.Text))
			return part.Text, nil
		}
		break
	}
	return "", ErrNoCandidates
}
