// Package apierror maps internal errors to HTTP responses.
package apierror

import (
	"context"
	"errors"
	"net/http"

	"github.com/confidant-ai/confidant/pkg/core"
	"github.com/confidant-ai/confidant/pkg/core/generate"
	"github.com/confidant-ai/confidant/pkg/gateway/session"
)

type Envelope struct {
	Error *core.Error `json:"error"`
}

func FromError(err error, requestID string) (*core.Error, int) {
	if err == nil {
		return nil, http.StatusOK
	}

	// Context timeouts/cancellation.
	if errors.Is(err, context.DeadlineExceeded) {
		return &core.Error{
			Type:      core.ErrAPI,
			Message:   "request timeout",
			RequestID: requestID,
		}, http.StatusGatewayTimeout
	}
	if errors.Is(err, context.Canceled) {
		return &core.Error{
			Type:      core.ErrAPI,
			Message:   "request cancelled",
			Code:      "cancelled",
			RequestID: requestID,
		}, http.StatusRequestTimeout
	}

	// Already canonical.
	var coreErr *core.Error
	if errors.As(err, &coreErr) && coreErr != nil {
		out := *coreErr
		out.RequestID = requestID
		return &out, statusFromType(coreErr.Type)
	}

	if errors.Is(err, session.ErrNotFound) {
		return &core.Error{
			Type:      core.ErrNotFound,
			Message:   "session not found",
			Param:     "session_id",
			RequestID: requestID,
		}, http.StatusNotFound
	}

	if errors.Is(err, generate.ErrExhausted) {
		return &core.Error{
			Type:      core.ErrUnavailable,
			Message:   "all generation credentials exhausted",
			RequestID: requestID,
		}, http.StatusServiceUnavailable
	}
	if errors.Is(err, generate.ErrNoCredentials) {
		return &core.Error{
			Type:      core.ErrUnavailable,
			Message:   "no generation credentials configured",
			RequestID: requestID,
		}, http.StatusServiceUnavailable
	}

	// Unknown errors: treat as internal API error (do not leak details by default).
	return &core.Error{
		Type:      core.ErrAPI,
		Message:   "internal error",
		RequestID: requestID,
	}, http.StatusInternalServerError
}

func statusFromType(t core.ErrorType) int {
	switch t {
	case core.ErrInvalidRequest:
		return http.StatusBadRequest
	case core.ErrAuthentication:
		return http.StatusUnauthorized
	case core.ErrPermission:
		return http.StatusForbidden
	case core.ErrNotFound:
		return http.StatusNotFound
	case core.ErrRateLimit:
		return http.StatusTooManyRequests
	case core.ErrUnavailable:
		return http.StatusServiceUnavailable
	case core.ErrProvider:
		return http.StatusBadGateway
	case core.ErrAPI:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}
