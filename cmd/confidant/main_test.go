package main

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/confidant-ai/confidant/pkg/gateway/config"
	"github.com/confidant-ai/confidant/pkg/gateway/linkguard"
)

func TestRunMain_ReturnsNonZeroWhenConfigLoadFails(t *testing.T) {
	var stderr bytes.Buffer
	exitCode := runMain(context.Background(), &stderr, serviceDeps{
		loadConfig: func() (*config.Config, error) {
			return nil, errors.New("boom")
		},
		loadModel: func(string) (*linkguard.Model, error) {
			t.Fatal("loadModel should not be called when config load fails")
			return nil, nil
		},
		signalNotify: func(c chan<- os.Signal, sig ...os.Signal) {},
		signalStop:   func(c chan<- os.Signal) {},
	})

	if exitCode != 1 {
		t.Fatalf("exitCode=%d, want 1", exitCode)
	}
	if stderr.String() == "" {
		t.Fatal("expected stderr output for startup error")
	}
}

func TestRunService_RejectsInvalidConfig(t *testing.T) {
	err := runService(context.Background(), slog.Default(), serviceDeps{
		loadConfig: func() (*config.Config, error) {
			return &config.Config{}, nil // no credentials
		},
		loadModel: func(string) (*linkguard.Model, error) {
			return &linkguard.Model{}, nil
		},
		signalNotify: func(c chan<- os.Signal, sig ...os.Signal) {},
		signalStop:   func(c chan<- os.Signal) {},
	})
	if err == nil {
		t.Fatal("expected error for config without credentials")
	}
}

func TestBuildHTTPServer_UsesConfiguredAddress(t *testing.T) {
	cfg := &config.Config{
		Addr:              "127.0.0.1:9999",
		ReadHeaderTimeout: 2 * time.Second,
	}

	srv := buildHTTPServer(cfg, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	if srv.Addr != cfg.Addr {
		t.Fatalf("Addr=%q, want %q", srv.Addr, cfg.Addr)
	}
	if srv.ReadHeaderTimeout != cfg.ReadHeaderTimeout {
		t.Fatalf("ReadHeaderTimeout=%v, want %v", srv.ReadHeaderTimeout, cfg.ReadHeaderTimeout)
	}
}

func TestLogLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug": slog.LevelDebug,
		"info":  slog.LevelInfo,
		"WARN":  slog.LevelWarn,
		"error": slog.LevelError,
		"":      slog.LevelInfo,
		"junk":  slog.LevelInfo,
	}
	for in, want := range cases {
		if got := logLevel(in); got != want {
			t.Errorf("logLevel(%q) = %v, want %v", in, got, want)
		}
	}
}
