package stt

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/confidant-ai/confidant/pkg/core"
)

const (
	cartesiaDefaultBaseURL = "https://api.cartesia.ai"
	cartesiaVersion        = "2025-04-16"
)

// CartesiaProvider implements the STT Provider interface using Cartesia's API.
type CartesiaProvider struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// NewCartesia creates a new Cartesia STT provider.
func NewCartesia(apiKey string) *CartesiaProvider {
	return &CartesiaProvider{
		apiKey:     apiKey,
		baseURL:    cartesiaDefaultBaseURL,
		httpClient: &http.Client{},
	}
}

// NewCartesiaWithClient creates a new Cartesia STT provider with a custom HTTP client.
func NewCartesiaWithClient(apiKey string, client *http.Client) *CartesiaProvider {
	if client == nil {
		client = &http.Client{}
	}
	return &CartesiaProvider{
		apiKey:     apiKey,
		baseURL:    cartesiaDefaultBaseURL,
		httpClient: client,
	}
}

// WithBaseURL overrides the API endpoint. Tests point this at a local server.
func (c *CartesiaProvider) WithBaseURL(base string) *CartesiaProvider {
	if base != "" {
		c.baseURL = base
	}
	return c
}

// Name returns the provider identifier.
func (c *CartesiaProvider) Name() string {
	return "cartesia"
}

// Transcribe converts audio to text using Cartesia's STT API. The audio is
// streamed into the multipart body directly; no temporary files are created.
func (c *CartesiaProvider) Transcribe(ctx context.Context, audio io.Reader, opts TranscribeOptions) (*Transcript, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	ext := getExtension(opts.Format)
	fw, err := mw.CreateFormFile("file", "audio."+ext)
	if err != nil {
		return nil, fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(fw, audio); err != nil {
		return nil, fmt.Errorf("write audio data: %w", err)
	}

	model := opts.Model
	if model == "" {
		model = "ink-whisper"
	}
	if err := mw.WriteField("model", model); err != nil {
		return nil, fmt.Errorf("write model field: %w", err)
	}

	if opts.Language != "" {
		if err := mw.WriteField("language", opts.Language); err != nil {
			return nil, fmt.Errorf("write language field: %w", err)
		}
	}

	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("close multipart writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/stt", &buf)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Cartesia-Version", cartesiaVersion)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, core.NewProviderError("cartesia", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, &core.Error{
			Type:    core.ErrUnavailable,
			Message: fmt.Sprintf("cartesia error %d: %s", resp.StatusCode, string(body)),
		}
	}

	var cartesiaResp cartesiaTranscriptionResponse
	if err := json.NewDecoder(resp.Body).Decode(&cartesiaResp); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}

	return c.convertResponse(cartesiaResp), nil
}

type cartesiaTranscriptionResponse struct {
	Text     string   `json:"text"`
	Language *string  `json:"language,omitempty"`
	Duration *float64 `json:"duration,omitempty"`
}

func (c *CartesiaProvider) convertResponse(resp cartesiaTranscriptionResponse) *Transcript {
	t := &Transcript{
		Text: resp.Text,
	}
	if resp.Language != nil {
		t.Language = *resp.Language
	}
	if resp.Duration != nil {
		t.Duration = *resp.Duration
	}
	return t
}

// getExtension returns the file extension for the given audio format.
func getExtension(format string) string {
	switch format {
	case "wav", "mp3", "webm", "ogg", "flac", "m4a", "mp4", "mpeg", "mpga", "oga":
		return format
	default:
		return "wav"
	}
}
