package translate

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/confidant-ai/confidant/pkg/core"
)

const googleDefaultBaseURL = "https://translate.googleapis.com"

// GoogleProvider implements the translate Provider interface against the
// public Google Translate web endpoint. No credential is required.
type GoogleProvider struct {
	baseURL    string
	httpClient *http.Client
}

// NewGoogle creates a new Google translation provider.
func NewGoogle() *GoogleProvider {
	return &GoogleProvider{
		baseURL:    googleDefaultBaseURL,
		httpClient: &http.Client{},
	}
}

// NewGoogleWithClient creates a new Google translation provider with a custom HTTP client.
func NewGoogleWithClient(client *http.Client) *GoogleProvider {
	if client == nil {
		client = &http.Client{}
	}
	return &GoogleProvider{
		baseURL:    googleDefaultBaseURL,
		httpClient: client,
	}
}

// WithBaseURL overrides the API endpoint. Tests point this at a local server.
func (g *GoogleProvider) WithBaseURL(base string) *GoogleProvider {
	base = strings.TrimSpace(base)
	if base != "" {
		g.baseURL = base
	}
	return g
}

// Name returns the provider identifier.
func (g *GoogleProvider) Name() string {
	return "google"
}

// Translate converts text to the target language.
func (g *GoogleProvider) Translate(ctx context.Context, text string, opts TranslateOptions) (*Translation, error) {
	target := strings.TrimSpace(opts.TargetLanguage)
	if target == "" {
		return nil, core.NewInvalidRequestErrorWithParam("target language is required", "target_lang")
	}
	source := strings.TrimSpace(opts.SourceLanguage)
	if source == "" {
		source = "auto"
	}

	q := url.Values{}
	q.Set("client", "gtx")
	q.Set("sl", source)
	q.Set("tl", target)
	q.Set("dt", "t")
	q.Set("q", text)

	endpoint := g.baseURL + "/translate_a/single?" + q.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, core.NewProviderError("google-translate", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, &core.Error{
			Type:    core.ErrUnavailable,
			Message: fmt.Sprintf("translate error %d: %s", resp.StatusCode, string(body)),
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	return parseGoogleResponse(body)
}

// parseGoogleResponse decodes the endpoint's nested-array payload:
// [[["<translated>","<original>",...],...], null, "<detected-lang>", ...].
func parseGoogleResponse(body []byte) (*Translation, error) {
	var outer []json.RawMessage
	if err := json.Unmarshal(body, &outer); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}
	if len(outer) == 0 {
		return nil, core.NewProviderError("google-translate", fmt.Errorf("empty response"))
	}

	var sentences [][]json.RawMessage
	if err := json.Unmarshal(outer[0], &sentences); err != nil {
		return nil, fmt.Errorf("unmarshal sentences: %w", err)
	}

	var sb strings.Builder
	for _, sentence := range sentences {
		if len(sentence) == 0 {
			continue
		}
		var segment string
		if err := json.Unmarshal(sentence[0], &segment); err != nil {
			continue
		}
		sb.WriteString(segment)
	}

	detected := ""
	if len(outer) > 2 {
		_ = json.Unmarshal(outer[2], &detected)
	}

	return &Translation{
		Text:           sb.String(),
		SourceLanguage: detected,
	}, nil
}
