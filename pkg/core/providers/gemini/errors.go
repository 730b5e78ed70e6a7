package gemini

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/confidant-ai/confidant/pkg/core"
)

// geminiError represents an error response from the Gemini API.
type geminiError struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// parseError parses an error response from Gemini into the canonical taxonomy.
func (p *Provider) parseError(resp *http.Response) error {
	body, _ := io.ReadAll(resp.Body)

	var geminiErr geminiError
	if err := json.Unmarshal(body, &geminiErr); err != nil {
		// Can't parse error, return generic
		return &core.Error{
			Type:    core.ErrProvider,
			Message: string(body),
		}
	}

	// Map Gemini status codes to our error types
	var errType core.ErrorType
	switch geminiErr.Error.Status {
	case "INVALID_ARGUMENT", "FAILED_PRECONDITION":
		errType = core.ErrInvalidRequest
	case "UNAUTHENTICATED":
		errType = core.ErrAuthentication
	case "PERMISSION_DENIED":
		errType = core.ErrPermission
	case "NOT_FOUND":
		errType = core.ErrNotFound
	case "RESOURCE_EXHAUSTED":
		errType = core.ErrRateLimit
	case "INTERNAL":
		errType = core.ErrAPI
	case "UNAVAILABLE":
		errType = core.ErrUnavailable
	default:
		errType = core.ErrProvider
	}

	// Also check HTTP status code
	if resp.StatusCode == http.StatusTooManyRequests {
		errType = core.ErrRateLimit
	}
	if resp.StatusCode == http.StatusServiceUnavailable {
		errType = core.ErrUnavailable
	}
	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		errType = core.ErrAuthentication
	}

	return &core.Error{
		Type:          errType,
		Message:       geminiErr.Error.Message,
		Code:          geminiErr.Error.Status,
		ProviderError: geminiErr.Error,
	}
}
