package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/confidant-ai/confidant/pkg/gateway/linkguard"
)

func TestLinkClassifier(t *testing.T) {
	model := &linkguard.Model{Bias: -10} // local verdict always Safe
	advisor := linkguard.NewAdvisor(model, &fakeGen{text: "safe"}, nil)
	h := LinkClassifierHandler{Advisor: advisor, MaxBodyBytes: 1 << 20}

	req := httptest.NewRequest(http.MethodPost, "/api/link_classifier/",
		strings.NewReader(`{"url":"https://example.com"}`))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body = %s", rec.Code, rec.Body.String())
	}
	if out := decodeBody(t, rec); out["label"] != "Safe" {
		t.Fatalf("label = %q", out["label"])
	}
}

func TestLinkClassifierModelOverride(t *testing.T) {
	model := &linkguard.Model{Bias: -10}
	advisor := linkguard.NewAdvisor(model, &fakeGen{text: "unsafe"}, nil)
	h := LinkClassifierHandler{Advisor: advisor, MaxBodyBytes: 1 << 20}

	req := httptest.NewRequest(http.MethodPost, "/api/link_classifier/",
		strings.NewReader(`{"url":"https://example.com"}`))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if out := decodeBody(t, rec); out["label"] != "Unsafe" {
		t.Fatalf("label = %q, want the model verdict to win", out["label"])
	}
}

func TestLinkClassifierRequiresURL(t *testing.T) {
	advisor := linkguard.NewAdvisor(&linkguard.Model{}, &fakeGen{text: "safe"}, nil)
	h := LinkClassifierHandler{Advisor: advisor, MaxBodyBytes: 1 << 20}

	for name, body := range map[string]string{
		"empty":  "",
		"no url": `{}`,
		"blank":  `{"url":"  "}`,
	} {
		req := httptest.NewRequest(http.MethodPost, "/api/link_classifier/", strings.NewReader(body))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d", name, rec.Code)
		}
	}
}
