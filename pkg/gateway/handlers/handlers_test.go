package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/confidant-ai/confidant/pkg/core"
	"github.com/confidant-ai/confidant/pkg/core/translate"
	"github.com/confidant-ai/confidant/pkg/core/voice/stt"
	"github.com/confidant-ai/confidant/pkg/core/voice/tts"
	"github.com/confidant-ai/confidant/pkg/gateway/session"
)

type fakeGen struct {
	text    string
	err     error
	prompts []string
}

func (f *fakeGen) Generate(_ context.Context, prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	return f.text, f.err
}

type fakeSTT struct {
	text string
	err  error
}

func (f *fakeSTT) Name() string { return "fake-stt" }

func (f *fakeSTT) Transcribe(_ context.Context, audio io.Reader, _ stt.TranscribeOptions) (*stt.Transcript, error) {
	_, _ = io.Copy(io.Discard, audio)
	if f.err != nil {
		return nil, f.err
	}
	return &stt.Transcript{Text: f.text}, nil
}

type fakeTTS struct {
	audio []byte
	err   error
	voice string
}

func (f *fakeTTS) Name() string { return "fake-tts" }

func (f *fakeTTS) Synthesize(_ context.Context, _ string, opts tts.SynthesizeOptions) (*tts.Synthesis, error) {
	f.voice = opts.Voice
	if f.err != nil {
		return nil, f.err
	}
	return &tts.Synthesis{Audio: f.audio, Format: "mp3", MIMEType: "audio/mpeg"}, nil
}

type fakeTranslate struct {
	text     string
	detected string
	err      error
}

func (f *fakeTranslate) Name() string { return "fake-translate" }

func (f *fakeTranslate) Translate(_ context.Context, _ string, _ translate.TranslateOptions) (*translate.Translation, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &translate.Translation{Text: f.text, SourceLanguage: f.detected}, nil
}

func newChatHandler(store *session.Store, gen *fakeGen) ChatHandler {
	return ChatHandler{
		Store:           store,
		Gen:             gen,
		STT:             &fakeSTT{text: "spoken words"},
		TTS:             &fakeTTS{audio: []byte("mp3data")},
		Voices:          map[string]string{"en": "voice-en"},
		DefaultLanguage: "en-US",
		MaxBodyBytes:    1 << 20,
	}
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode body %q: %v", rec.Body.String(), err)
	}
	return out
}

func TestStartChat(t *testing.T) {
	h := StartChatHandler{Store: session.NewStore(), MaxBodyBytes: 1 << 20}

	req := httptest.NewRequest(http.MethodPost, "/api/start_chat",
		strings.NewReader(`{"language":"en-US","name":"Sam"}`))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d body = %s", rec.Code, rec.Body.String())
	}
	out := decodeBody(t, rec)
	if out["session_id"] == "" {
		t.Fatal("session_id missing")
	}
	if out["message"] != "Chat session started." {
		t.Fatalf("message = %q", out["message"])
	}
}

func TestStartChatRejectsMissingBodyAndLanguage(t *testing.T) {
	h := StartChatHandler{Store: session.NewStore(), MaxBodyBytes: 1 << 20}

	for name, body := range map[string]string{
		"empty":       "",
		"no language": `{"name":"Sam"}`,
		"not json":    "hello",
	} {
		req := httptest.NewRequest(http.MethodPost, "/api/start_chat", strings.NewReader(body))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d", name, rec.Code)
		}
	}
}

func chatRequest(sessionID, body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/chat/"+sessionID, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.SetPathValue("session_id", sessionID)
	return req
}

func TestChatTurn(t *testing.T) {
	store := session.NewStore()
	id := store.Create(map[string]any{"language": "en-US", "name": "Sam"})
	gen := &fakeGen{text: "hello Sam!"}
	h := newChatHandler(store, gen)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, chatRequest(id, `{"message":"hi"}`))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body = %s", rec.Code, rec.Body.String())
	}
	if out := decodeBody(t, rec); out["response"] != "hello Sam!" {
		t.Fatalf("response = %q", out["response"])
	}

	// The second turn must replay the first in its prompt.
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, chatRequest(id, `{"message":"how are you?"}`))
	if rec.Code != http.StatusOK {
		t.Fatalf("second turn status = %d", rec.Code)
	}
	if len(gen.prompts) != 2 {
		t.Fatalf("prompts = %d", len(gen.prompts))
	}
	if !strings.Contains(gen.prompts[1], "User: hi\n") ||
		!strings.Contains(gen.prompts[1], "Friend: hello Sam!\n") {
		t.Fatalf("second prompt does not replay first turn:\n%s", gen.prompts[1])
	}
}

func TestChatUnknownSession(t *testing.T) {
	h := newChatHandler(session.NewStore(), &fakeGen{text: "x"})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, chatRequest("nope", `{"message":"hi"}`))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestChatRequiresInput(t *testing.T) {
	store := session.NewStore()
	id := store.Create(map[string]any{"language": "en-US"})
	h := newChatHandler(store, &fakeGen{text: "x"})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, chatRequest(id, `{}`))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestChatGenerationFailureNotRecorded(t *testing.T) {
	store := session.NewStore()
	id := store.Create(map[string]any{"language": "en-US"})
	h := newChatHandler(store, &fakeGen{err: core.NewUnavailableError("upstream down")})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, chatRequest(id, `{"message":"hi"}`))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d", rec.Code)
	}

	sess, err := store.Get(id)
	if err != nil {
		t.Fatal(err)
	}
	if len(sess.History) != 0 {
		t.Fatalf("failed turn recorded: %v", sess.History)
	}
}

func TestChatAudioFormat(t *testing.T) {
	store := session.NewStore()
	id := store.Create(map[string]any{"language": "en-US"})
	ttsProv := &fakeTTS{audio: []byte("mp3data")}
	h := newChatHandler(store, &fakeGen{text: "hello"})
	h.TTS = ttsProv

	req := chatRequest(id, `{"message":"hi"}`)
	req.URL.RawQuery = "format=audio"
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "audio/mpeg" {
		t.Fatalf("Content-Type = %q", ct)
	}
	if !bytes.Equal(rec.Body.Bytes(), []byte("mp3data")) {
		t.Fatalf("body = %q", rec.Body.String())
	}
	if ttsProv.voice != "voice-en" {
		t.Fatalf("voice = %q, want the en voice for en-US", ttsProv.voice)
	}
}

func TestChatAudioFormatDegradesToText(t *testing.T) {
	store := session.NewStore()
	id := store.Create(map[string]any{"language": "en-US"})
	h := newChatHandler(store, &fakeGen{text: "hello"})
	h.TTS = &fakeTTS{err: errors.New("tts down")}

	req := chatRequest(id, `{"message":"hi"}`)
	req.URL.RawQuery = "format=audio"
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	out := decodeBody(t, rec)
	if out["response"] != "hello" {
		t.Fatalf("response = %q", out["response"])
	}
	if warning, _ := out["warning"].(string); warning == "" {
		t.Fatal("warning missing")
	}
}

func multipartChatRequest(t *testing.T, sessionID string, fields map[string]string, audio []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mp := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := mp.WriteField(k, v); err != nil {
			t.Fatal(err)
		}
	}
	if audio != nil {
		fw, err := mp.CreateFormFile("audio", "clip.wav")
		if err != nil {
			t.Fatal(err)
		}
		if _, err := fw.Write(audio); err != nil {
			t.Fatal(err)
		}
	}
	if err := mp.Close(); err != nil {
		t.Fatal(err)
	}
	req := httptest.NewRequest(http.MethodPost, "/api/chat/"+sessionID, &buf)
	req.Header.Set("Content-Type", mp.FormDataContentType())
	req.SetPathValue("session_id", sessionID)
	return req
}

func TestChatAudioInput(t *testing.T) {
	store := session.NewStore()
	id := store.Create(map[string]any{"language": "en-US"})
	gen := &fakeGen{text: "heard you"}
	h := newChatHandler(store, gen)
	h.STT = &fakeSTT{text: "spoken words"}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, multipartChatRequest(t, id, nil, []byte("wavdata")))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body = %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(gen.prompts[0], "(audio, en-US)") {
		t.Fatalf("prompt not tagged as audio:\n%s", gen.prompts[0])
	}
	if !strings.Contains(gen.prompts[0], "spoken words") {
		t.Fatalf("transcript missing from prompt:\n%s", gen.prompts[0])
	}
}

func TestChatAudioOnlyTranscriptionFailure(t *testing.T) {
	store := session.NewStore()
	id := store.Create(map[string]any{"language": "en-US"})
	h := newChatHandler(store, &fakeGen{text: "x"})
	h.STT = &fakeSTT{err: core.NewUnavailableError("stt down")}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, multipartChatRequest(t, id, nil, []byte("wavdata")))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestChatTranscriptionFailureFallsBackToText(t *testing.T) {
	store := session.NewStore()
	id := store.Create(map[string]any{"language": "en-US"})
	gen := &fakeGen{text: "ok"}
	h := newChatHandler(store, gen)
	h.STT = &fakeSTT{err: core.NewUnavailableError("stt down")}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, multipartChatRequest(t, id, map[string]string{"message": "typed instead"}, []byte("wavdata")))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body = %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(gen.prompts[0], "typed instead") {
		t.Fatalf("text fallback missing from prompt:\n%s", gen.prompts[0])
	}
}

func TestEndChat(t *testing.T) {
	store := session.NewStore()
	id := store.Create(map[string]any{"language": "en-US"})
	h := EndChatHandler{Store: store}

	req := httptest.NewRequest(http.MethodDelete, "/api/chat/"+id, nil)
	req.SetPathValue("session_id", id)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	// Second delete finds nothing.
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("second delete status = %d", rec.Code)
	}
}

func TestTranslator(t *testing.T) {
	h := TranslatorHandler{
		Translate:    &fakeTranslate{text: "hola", detected: "en"},
		STT:          &fakeSTT{},
		TTS:          &fakeTTS{audio: []byte("mp3")},
		Voices:       map[string]string{"es": "voice-es"},
		MaxBodyBytes: 1 << 20,
	}

	req := httptest.NewRequest(http.MethodPost, "/api/translator/",
		strings.NewReader(`{"text":"hello","target_lang":"es"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body = %s", rec.Code, rec.Body.String())
	}
	out := decodeBody(t, rec)
	if out["translated_text"] != "hola" || out["source_language_detected"] != "en" {
		t.Fatalf("body = %v", out)
	}
}

func TestTranslatorRequiresTargetLang(t *testing.T) {
	h := TranslatorHandler{Translate: &fakeTranslate{}, MaxBodyBytes: 1 << 20}

	req := httptest.NewRequest(http.MethodPost, "/api/translator/",
		strings.NewReader(`{"text":"hello"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestTranslatorRequiresInput(t *testing.T) {
	h := TranslatorHandler{Translate: &fakeTranslate{}, MaxBodyBytes: 1 << 20}

	req := httptest.NewRequest(http.MethodPost, "/api/translator/",
		strings.NewReader(`{"target_lang":"es"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestTranslatorFormField(t *testing.T) {
	h := TranslatorHandler{
		Translate:    &fakeTranslate{text: "salut", detected: "en"},
		MaxBodyBytes: 1 << 20,
	}

	form := "text=hello&target_lang=fr"
	req := httptest.NewRequest(http.MethodPost, "/api/translator/", strings.NewReader(form))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body = %s", rec.Code, rec.Body.String())
	}
	if out := decodeBody(t, rec); out["translated_text"] != "salut" {
		t.Fatalf("body = %v", out)
	}
}
