package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/confidant-ai/confidant/pkg/core"
	"github.com/confidant-ai/confidant/pkg/gateway/mw"
	"github.com/confidant-ai/confidant/pkg/gateway/session"
)

// StartChatHandler opens a new conversation. The request body is the user
// profile: an open-ended JSON object that must carry at least a language.
type StartChatHandler struct {
	Store        *session.Store
	MaxBodyBytes int64
	Logger       *slog.Logger
}

func (h StartChatHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	reqID, _ := mw.RequestIDFrom(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, h.MaxBodyBytes)
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeCoreErrorJSON(w, reqID, core.NewInvalidRequestError("failed to read request body"), http.StatusBadRequest)
		return
	}
	if len(body) == 0 {
		writeCoreErrorJSON(w, reqID, core.NewInvalidRequestError("request body is required"), http.StatusBadRequest)
		return
	}

	var profile map[string]any
	if err := json.Unmarshal(body, &profile); err != nil {
		writeCoreErrorJSON(w, reqID, core.NewInvalidRequestError("request body must be a JSON object"), http.StatusBadRequest)
		return
	}

	lang, _ := profile["language"].(string)
	if strings.TrimSpace(lang) == "" {
		writeCoreErrorJSON(w, reqID, core.NewInvalidRequestErrorWithParam("language is required", "language"), http.StatusBadRequest)
		return
	}

	id := h.Store.Create(profile)

	if h.Logger != nil {
		h.Logger.Info("session started", "request_id", reqID, "session_id", id, "language", lang)
	}

	writeJSON(w, http.StatusCreated, map[string]string{
		"session_id": id,
		"message":    "Chat session started.",
	})
}

// EndChatHandler deletes a conversation and its history.
type EndChatHandler struct {
	Store  *session.Store
	Logger *slog.Logger
}

func (h EndChatHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	reqID, _ := mw.RequestIDFrom(r.Context())

	id := strings.TrimSpace(r.PathValue("session_id"))
	if id == "" {
		writeCoreErrorJSON(w, reqID, core.NewInvalidRequestErrorWithParam("session id is required", "session_id"), http.StatusBadRequest)
		return
	}
	if err := h.Store.Delete(id); err != nil {
		writeErr(w, reqID, err)
		return
	}

	if h.Logger != nil {
		h.Logger.Info("session ended", "request_id", reqID, "session_id", id)
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"message": fmt.Sprintf("Chat session %s ended.", id),
	})
}
