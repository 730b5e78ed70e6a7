package tts

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/confidant-ai/confidant/pkg/core"
)

const (
	elevenLabsDefaultBaseURL = "https://api.elevenlabs.io"
	elevenLabsDefaultModel   = "eleven_multilingual_v2"
)

// ElevenLabsProvider implements the TTS Provider interface using the
// ElevenLabs REST API. Responses are MP3 byte streams.
type ElevenLabsProvider struct {
	apiKey     string
	baseURL    string
	modelID    string
	httpClient *http.Client
}

// NewElevenLabs creates a new ElevenLabs TTS provider.
func NewElevenLabs(apiKey string) *ElevenLabsProvider {
	return &ElevenLabsProvider{
		apiKey:     strings.TrimSpace(apiKey),
		baseURL:    elevenLabsDefaultBaseURL,
		modelID:    elevenLabsDefaultModel,
		httpClient: &http.Client{},
	}
}

// NewElevenLabsWithClient creates a new ElevenLabs TTS provider with a custom HTTP client.
func NewElevenLabsWithClient(apiKey string, client *http.Client) *ElevenLabsProvider {
	if client == nil {
		client = &http.Client{}
	}
	p := NewElevenLabs(apiKey)
	p.httpClient = client
	return p
}

// WithBaseURL overrides the API endpoint. Tests point this at a local server.
func (e *ElevenLabsProvider) WithBaseURL(base string) *ElevenLabsProvider {
	base = strings.TrimSpace(base)
	if base != "" {
		e.baseURL = base
	}
	return e
}

// Name returns the provider identifier.
func (e *ElevenLabsProvider) Name() string {
	return "elevenlabs"
}

type elevenLabsRequest struct {
	Text         string `json:"text"`
	ModelID      string `json:"model_id"`
	LanguageCode string `json:"language_code,omitempty"`
}

// Synthesize converts text to an MP3 audio stream.
func (e *ElevenLabsProvider) Synthesize(ctx context.Context, text string, opts SynthesizeOptions) (*Synthesis, error) {
	if e.apiKey == "" {
		return nil, core.NewInvalidRequestError("elevenlabs api key is required")
	}
	voiceID := strings.TrimSpace(opts.Voice)
	if voiceID == "" {
		return nil, core.NewInvalidRequestErrorWithParam("voice id is required", "voice")
	}

	body, err := json.Marshal(elevenLabsRequest{
		Text:         text,
		ModelID:      e.modelID,
		LanguageCode: opts.Language,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	endpoint := e.baseURL + "/v1/text-to-speech/" + url.PathEscape(voiceID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("xi-api-key", e.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "audio/mpeg")

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return nil, core.NewProviderError("elevenlabs", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		errBody, _ := io.ReadAll(resp.Body)
		return nil, &core.Error{
			Type:    core.ErrUnavailable,
			Message: fmt.Sprintf("elevenlabs error %d: %s", resp.StatusCode, string(errBody)),
		}
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read audio: %w", err)
	}
	if len(audio) == 0 {
		return nil, core.NewUnavailableError("elevenlabs returned no audio")
	}

	return &Synthesis{
		Audio:    audio,
		Format:   "mp3",
		MIMEType: "audio/mpeg",
	}, nil
}
