package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/confidant-ai/confidant/pkg/core/generate"
	"github.com/confidant-ai/confidant/pkg/core/providers/gemini"
	"github.com/confidant-ai/confidant/pkg/core/translate"
	"github.com/confidant-ai/confidant/pkg/core/voice/stt"
	"github.com/confidant-ai/confidant/pkg/core/voice/tts"
	"github.com/confidant-ai/confidant/pkg/gateway/config"
	"github.com/confidant-ai/confidant/pkg/gateway/linkguard"
	gatewayserver "github.com/confidant-ai/confidant/pkg/gateway/server"
	"github.com/confidant-ai/confidant/pkg/gateway/session"
)

type serviceDeps struct {
	loadConfig   func() (*config.Config, error)
	loadModel    func(path string) (*linkguard.Model, error)
	signalNotify func(chan<- os.Signal, ...os.Signal)
	signalStop   func(chan<- os.Signal)
}

func defaultServiceDeps() serviceDeps {
	return serviceDeps{
		loadConfig: config.Load,
		loadModel:  linkguard.LoadModel,
		signalNotify: func(c chan<- os.Signal, sig ...os.Signal) {
			signal.Notify(c, sig...)
		},
		signalStop: signal.Stop,
	}
}

func buildHTTPServer(cfg *config.Config, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}
}

func logLevel(name string) slog.Level {
	switch strings.ToLower(name) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func runService(ctx context.Context, logger *slog.Logger, deps serviceDeps) error {
	if deps.loadConfig == nil || deps.loadModel == nil {
		return errors.New("missing config or model dependency")
	}
	if deps.signalNotify == nil || deps.signalStop == nil {
		return errors.New("missing signal dependency")
	}
	if logger == nil {
		logger = slog.Default()
	}

	cfg, err := deps.loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("validate config: %w", err)
	}

	model, err := deps.loadModel(cfg.LinkModelPath)
	if err != nil {
		return fmt.Errorf("load link classifier model: %w", err)
	}

	httpClient := gatewayserver.HTTPClient()

	provider := gemini.New(cfg.GeminiModel, gemini.WithHTTPClient(httpClient))
	generator := generate.New(provider, cfg.GeminiAPIKeys, generate.WithLogger(logger))

	store := session.NewStore()

	janitorCtx, janitorCancel := context.WithCancel(ctx)
	defer janitorCancel()
	if cfg.SessionIdleTTL > 0 {
		store.StartJanitor(janitorCtx, cfg.SessionIdleTTL, time.Minute)
	}

	srv := gatewayserver.New(cfg, gatewayserver.Deps{
		Store:     store,
		Generator: generator,
		STT:       stt.NewCartesiaWithClient(cfg.CartesiaAPIKey, httpClient),
		TTS:       tts.NewElevenLabsWithClient(cfg.ElevenLabsAPIKey, httpClient),
		Translate: translate.NewGoogleWithClient(httpClient),
		Advisor:   linkguard.NewAdvisor(model, generator, logger),
	}, logger)

	httpSrv := buildHTTPServer(cfg, srv.Handler())

	logger.Info("starting service",
		"addr", cfg.Addr,
		"credentials", len(cfg.GeminiAPIKeys),
		"voices", len(cfg.Voices),
	)

	listenErrCh := make(chan error, 1)
	go func() {
		err := httpSrv.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			listenErrCh <- err
			return
		}
		listenErrCh <- nil
	}()

	sigCh := make(chan os.Signal, 1)
	deps.signalNotify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer deps.signalStop(sigCh)

	select {
	case err := <-listenErrCh:
		if err != nil {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case sig := <-sigCh:
		logger.Info("shutdown signal received", "signal", sig.String())
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}

	if err := <-listenErrCh; err != nil {
		return fmt.Errorf("serve: %w", err)
	}

	logger.Info("service stopped")
	return nil
}

func runMain(ctx context.Context, stderr io.Writer, deps serviceDeps) int {
	if stderr == nil {
		stderr = os.Stderr
	}

	// A missing .env file is fine; the environment may be set elsewhere.
	_ = godotenv.Load()

	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{
		Level: logLevel(os.Getenv("LOG_LEVEL")),
	}))

	if err := runService(ctx, logger, deps); err != nil {
		fmt.Fprintf(stderr, "confidant: %v\n", err)
		return 1
	}
	return 0
}

func main() {
	os.Exit(runMain(context.Background(), os.Stderr, defaultServiceDeps()))
}
