// Package server assembles the HTTP surface: routes, middleware, and the
// collaborators each handler needs.
package server

import (
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/confidant-ai/confidant/pkg/core/translate"
	"github.com/confidant-ai/confidant/pkg/core/voice/stt"
	"github.com/confidant-ai/confidant/pkg/core/voice/tts"
	"github.com/confidant-ai/confidant/pkg/gateway/config"
	"github.com/confidant-ai/confidant/pkg/gateway/handlers"
	"github.com/confidant-ai/confidant/pkg/gateway/linkguard"
	"github.com/confidant-ai/confidant/pkg/gateway/mw"
	"github.com/confidant-ai/confidant/pkg/gateway/ratelimit"
	"github.com/confidant-ai/confidant/pkg/gateway/session"
)

// Deps carries the collaborators the handlers depend on. Tests substitute
// fakes here.
type Deps struct {
	Store     *session.Store
	Generator handlers.Generator
	STT       stt.Provider
	TTS       tts.Provider
	Translate translate.Provider
	Advisor   *linkguard.Advisor
}

type Server struct {
	cfg    *config.Config
	logger *slog.Logger
	deps   Deps
	mux    *http.ServeMux

	limiter  *ratelimit.Limiter
	registry *prometheus.Registry
}

func New(cfg *config.Config, deps Deps, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	s := &Server{
		cfg:    cfg,
		logger: logger,
		deps:   deps,
		mux:    http.NewServeMux(),
		limiter: ratelimit.New(ratelimit.Config{
			RPS:   cfg.RateLimitRPS,
			Burst: cfg.RateLimitBurst,
		}),
		registry: registry,
	}

	s.routes()
	return s
}

// HTTPClient returns a client tuned for the external provider calls.
func HTTPClient() *http.Client {
	return &http.Client{
		Transport: &http.Transport{
			Proxy: http.ProxyFromEnvironment,
			DialContext: (&net.Dialer{
				Timeout: 10 * time.Second,
			}).DialContext,
			ForceAttemptHTTP2:     true,
			MaxIdleConns:          100,
			IdleConnTimeout:       90 * time.Second,
			TLSHandshakeTimeout:   10 * time.Second,
			ExpectContinueTimeout: 1 * time.Second,
		},
	}
}

func (s *Server) routes() {
	s.mux.Handle("GET /healthz", handlers.HealthHandler{})
	s.mux.Handle("GET /readyz", handlers.ReadyHandler{Config: s.cfg})
	s.mux.Handle("GET /metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))

	s.mux.Handle("POST /api/start_chat", handlers.StartChatHandler{
		Store:        s.deps.Store,
		MaxBodyBytes: s.cfg.MaxBodyBytes,
		Logger:       s.logger,
	})
	s.mux.Handle("POST /api/chat/{session_id}", handlers.ChatHandler{
		Store:           s.deps.Store,
		Gen:             s.deps.Generator,
		STT:             s.deps.STT,
		TTS:             s.deps.TTS,
		Voices:          s.cfg.Voices,
		DefaultLanguage: s.cfg.DefaultLanguage,
		MaxBodyBytes:    s.cfg.MaxBodyBytes,
		HandlerTimeout:  s.cfg.HandlerTimeout,
		Logger:          s.logger,
	})
	s.mux.Handle("DELETE /api/chat/{session_id}", handlers.EndChatHandler{
		Store:  s.deps.Store,
		Logger: s.logger,
	})
	s.mux.Handle("POST /api/translator/{$}", handlers.TranslatorHandler{
		Translate:      s.deps.Translate,
		STT:            s.deps.STT,
		TTS:            s.deps.TTS,
		Voices:         s.cfg.Voices,
		MaxBodyBytes:   s.cfg.MaxBodyBytes,
		HandlerTimeout: s.cfg.HandlerTimeout,
		Logger:         s.logger,
	})
	s.mux.Handle("POST /api/link_classifier/{$}", handlers.LinkClassifierHandler{
		Advisor:      s.deps.Advisor,
		MaxBodyBytes: s.cfg.MaxBodyBytes,
	})

	s.mux.Handle("/", handlers.NotFoundHandler{})
}

func (s *Server) Handler() http.Handler {
	var h http.Handler = s.mux
	h = mw.RateLimit(s.limiter, h)
	h = mw.CORS(s.cfg.CORSAllowedOrigins, h)
	h = mw.Recover(s.logger, h)
	h = mw.Metrics(s.registry, h)
	h = mw.AccessLog(s.logger, h)
	h = mw.RequestID(h)
	return h
}
