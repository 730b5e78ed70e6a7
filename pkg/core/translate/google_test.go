package translate

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/confidant-ai/confidant/pkg/core"
)

func TestGoogleTranslate(t *testing.T) {
	var gotSL, gotTL, gotQ string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotSL = r.URL.Query().Get("sl")
		gotTL = r.URL.Query().Get("tl")
		gotQ = r.URL.Query().Get("q")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[[["Hola, ","Hello, ",null,null,10],["amigo","friend",null,null,10]],null,"en"]`))
	}))
	defer srv.Close()

	g := NewGoogleWithClient(srv.Client()).WithBaseURL(srv.URL)
	tr, err := g.Translate(context.Background(), "Hello, friend", TranslateOptions{TargetLanguage: "es"})
	if err != nil {
		t.Fatalf("Translate error: %v", err)
	}
	if tr.Text != "Hola, amigo" {
		t.Errorf("Text = %q, want %q", tr.Text, "Hola, amigo")
	}
	if tr.SourceLanguage != "en" {
		t.Errorf("SourceLanguage = %q, want en", tr.SourceLanguage)
	}
	if gotSL != "auto" {
		t.Errorf("sl = %q, want auto", gotSL)
	}
	if gotTL != "es" {
		t.Errorf("tl = %q, want es", gotTL)
	}
	if gotQ != "Hello, friend" {
		t.Errorf("q = %q", gotQ)
	}
}

func TestGoogleTranslate_ExplicitSource(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if sl := r.URL.Query().Get("sl"); sl != "fr" {
			t.Errorf("sl = %q, want fr", sl)
		}
		_, _ = w.Write([]byte(`[[["hello","bonjour",null,null,10]],null,"fr"]`))
	}))
	defer srv.Close()

	g := NewGoogleWithClient(srv.Client()).WithBaseURL(srv.URL)
	tr, err := g.Translate(context.Background(), "bonjour", TranslateOptions{
		SourceLanguage: "fr",
		TargetLanguage: "en",
	})
	if err != nil {
		t.Fatalf("Translate error: %v", err)
	}
	if tr.Text != "hello" {
		t.Errorf("Text = %q, want hello", tr.Text)
	}
}

func TestGoogleTranslate_MissingTarget(t *testing.T) {
	g := NewGoogle()
	_, err := g.Translate(context.Background(), "hi", TranslateOptions{})

	var coreErr *core.Error
	if !errors.As(err, &coreErr) {
		t.Fatalf("error = %v, want *core.Error", err)
	}
	if coreErr.Type != core.ErrInvalidRequest {
		t.Errorf("Type = %v, want %v", coreErr.Type, core.ErrInvalidRequest)
	}
}

func TestGoogleTranslate_UpstreamFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "slow down", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	g := NewGoogleWithClient(srv.Client()).WithBaseURL(srv.URL)
	_, err := g.Translate(context.Background(), "hi", TranslateOptions{TargetLanguage: "es"})

	var coreErr *core.Error
	if !errors.As(err, &coreErr) {
		t.Fatalf("error = %v, want *core.Error", err)
	}
	if coreErr.Type != core.ErrUnavailable {
		t.Errorf("Type = %v, want %v", coreErr.Type, core.ErrUnavailable)
	}
}
