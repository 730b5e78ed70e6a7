// Package gemini implements the Google Gemini text-generation provider.
// The API key is supplied per call so a credential pool can rotate keys
// across a single shared provider.
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

const (
	// DefaultBaseURL is the default Gemini API endpoint.
	DefaultBaseURL = "https://generativelanguage.googleapis.com/v1"

	// DefaultModel is the generation model used when none is configured.
	DefaultModel = "models/gemini-1.5-pro"
)

// Provider implements the Google Gemini API.
type Provider struct {
	model      string
	baseURL    string
	httpClient *http.Client
}

// New creates a new Gemini provider.
func New(model string, opts ...Option) *Provider {
	if strings.TrimSpace(model) == "" {
		model = DefaultModel
	}
	p := &Provider{
		model:      model,
		baseURL:    DefaultBaseURL,
		httpClient: &http.Client{},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Name returns the provider identifier.
func (p *Provider) Name() string {
	return "gemini"
}

// GenerateText sends a non-streaming generateContent request using the given
// API key. A structurally valid response that carries no text returns
// ("", nil); callers decide how to treat an empty completion.
func (p *Provider) GenerateText(ctx context.Context, apiKey, prompt string) (string, error) {
	body, err := json.Marshal(buildRequest(prompt))
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/%s:generateContent?key=%s", p.baseURL, p.model, url.QueryEscape(apiKey))
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return "", p.parseError(resp)
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	return parseText(respBody)
}
