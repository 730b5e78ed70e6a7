package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/confidant-ai/confidant/pkg/gateway/config"
)

type HealthHandler struct{}

func (h HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok\n"))
}

type ReadyHandler struct {
	Config *config.Config
}

func (h ReadyHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	type readyResp struct {
		OK            bool     `json:"ok"`
		Credentials   int      `json:"credentials"`
		VoicesEnabled bool     `json:"voices_enabled"`
		LimitsEnabled bool     `json:"limits_enabled"`
		Issues        []string `json:"issues,omitempty"`
	}

	issues := make([]string, 0, 4)

	if len(h.Config.GeminiAPIKeys) == 0 {
		issues = append(issues, "no generation credentials configured")
	}
	if h.Config.MaxBodyBytes <= 0 {
		issues = append(issues, "max_body_bytes must be > 0")
	}
	if h.Config.ReadHeaderTimeout <= 0 || h.Config.HandlerTimeout <= 0 {
		issues = append(issues, "timeouts must be > 0")
	}
	if h.Config.DefaultLanguage == "" {
		issues = append(issues, "default language must be set")
	}

	ok := len(issues) == 0
	status := http.StatusOK
	if !ok {
		status = http.StatusInternalServerError
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(readyResp{
		OK:            ok,
		Credentials:   len(h.Config.GeminiAPIKeys),
		VoicesEnabled: len(h.Config.Voices) > 0,
		LimitsEnabled: h.Config.RateLimitRPS > 0 && h.Config.RateLimitBurst > 0,
		Issues:        issues,
	})
}
