package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/confidant-ai/confidant/pkg/core"
	"github.com/confidant-ai/confidant/pkg/gateway/linkguard"
	"github.com/confidant-ai/confidant/pkg/gateway/mw"
)

// LinkClassifierHandler labels URLs as Safe or Unsafe. The verdict is a
// best-effort heuristic, not a security guarantee.
type LinkClassifierHandler struct {
	Advisor      *linkguard.Advisor
	MaxBodyBytes int64
}

func (h LinkClassifierHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	reqID, _ := mw.RequestIDFrom(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, h.MaxBodyBytes)
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeCoreErrorJSON(w, reqID, core.NewInvalidRequestError("failed to read request body"), http.StatusBadRequest)
		return
	}

	var req struct {
		URL string `json:"url"`
	}
	if len(body) > 0 {
		if err := json.Unmarshal(body, &req); err != nil {
			writeCoreErrorJSON(w, reqID, core.NewInvalidRequestError("request body must be a JSON object"), http.StatusBadRequest)
			return
		}
	}
	if strings.TrimSpace(req.URL) == "" {
		writeCoreErrorJSON(w, reqID, core.NewInvalidRequestErrorWithParam("url is required", "url"), http.StatusBadRequest)
		return
	}

	label := h.Advisor.Classify(r.Context(), req.URL)
	writeJSON(w, http.StatusOK, map[string]string{"label": string(label)})
}
