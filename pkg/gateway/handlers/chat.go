package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/confidant-ai/confidant/pkg/core"
	"github.com/confidant-ai/confidant/pkg/core/voice/stt"
	"github.com/confidant-ai/confidant/pkg/core/voice/tts"
	"github.com/confidant-ai/confidant/pkg/gateway/mw"
	"github.com/confidant-ai/confidant/pkg/gateway/persona"
	"github.com/confidant-ai/confidant/pkg/gateway/session"
)

// Generator produces a completion for a prompt. Satisfied by the generation
// client.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// ChatHandler runs one conversation turn: resolve the session, derive the
// input text (transcribing audio when needed), build the persona prompt,
// generate a reply, record the turn, and shape the response as text or
// audio.
type ChatHandler struct {
	Store *session.Store
	Gen   Generator
	STT   stt.Provider
	TTS   tts.Provider

	// Voices maps primary language subtags to TTS voice ids.
	Voices          map[string]string
	DefaultLanguage string

	MaxBodyBytes   int64
	HandlerTimeout time.Duration
	Logger         *slog.Logger
}

func (h ChatHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	reqID, _ := mw.RequestIDFrom(r.Context())

	sessionID := strings.TrimSpace(r.PathValue("session_id"))
	if sessionID == "" {
		writeCoreErrorJSON(w, reqID, core.NewInvalidRequestErrorWithParam("session id is required", "session_id"), http.StatusBadRequest)
		return
	}

	in, err := parseInput(r, h.MaxBodyBytes)
	if err != nil {
		writeErr(w, reqID, err)
		return
	}
	defer in.close()

	if in.field("message") == "" && in.audio == nil {
		writeCoreErrorJSON(w, reqID, core.NewInvalidRequestErrorWithParam("message or audio input is required", "message"), http.StatusBadRequest)
		return
	}

	sess, err := h.Store.Get(sessionID)
	if err != nil {
		writeErr(w, reqID, err)
		return
	}
	lang := persona.EffectiveLanguage(sess.Profile, h.DefaultLanguage)

	ctx := r.Context()
	if h.HandlerTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.HandlerTimeout)
		defer cancel()
	}

	inputText, modality, err := h.acquireInputText(ctx, in, lang, reqID)
	if err != nil {
		writeErr(w, reqID, err)
		return
	}

	prompt := persona.Build(persona.Input{
		Profile:  sess.Profile,
		History:  sess.History,
		Text:     inputText,
		Modality: modality,
		Language: lang,
	})

	response, err := h.Gen.Generate(ctx, prompt)
	if err != nil {
		writeErr(w, reqID, err)
		return
	}

	if err := h.Store.AppendTurn(sessionID, session.Turn{
		UserText:     inputText,
		ResponseText: response,
		Language:     lang,
	}); err != nil {
		// The session vanished mid-request. The turn is lost, report a
		// server-side failure rather than a lookup miss.
		writeCoreErrorJSON(w, reqID, core.NewAPIError("session disappeared during request"), http.StatusInternalServerError)
		return
	}

	h.shapeOutput(ctx, w, r, reqID, response, lang)
}

// acquireInputText resolves the user's input text. Audio is transcribed in
// the session language; a transcription failure is tolerated when a textual
// message is also present.
func (h ChatHandler) acquireInputText(ctx context.Context, in *turnInput, lang, reqID string) (string, persona.Modality, error) {
	text := in.field("message")
	if in.audio == nil {
		return text, persona.ModalityText, nil
	}

	transcript, err := h.STT.Transcribe(ctx, in.audio, stt.TranscribeOptions{
		Language: persona.PrimarySubtag(lang),
		Format:   formatFromFilename(in.audioName),
	})
	if err != nil {
		if text != "" {
			if h.Logger != nil {
				h.Logger.Warn("transcription failed, falling back to text input",
					"request_id", reqID, "error", err)
			}
			return text, persona.ModalityText, nil
		}
		return "", "", err
	}
	if strings.TrimSpace(transcript.Text) == "" {
		if text != "" {
			return text, persona.ModalityText, nil
		}
		return "", "", core.NewInvalidRequestErrorWithParam("could not understand audio", "audio")
	}
	return transcript.Text, persona.ModalityAudio, nil
}

func (h ChatHandler) shapeOutput(ctx context.Context, w http.ResponseWriter, r *http.Request, reqID, response, lang string) {
	if r.URL.Query().Get("format") != "audio" {
		writeJSON(w, http.StatusOK, map[string]string{"response": response})
		return
	}

	voice := h.Voices[persona.PrimarySubtag(lang)]
	synth, err := h.TTS.Synthesize(ctx, response, tts.SynthesizeOptions{
		Voice:    voice,
		Language: lang,
	})
	if err != nil {
		if h.Logger != nil {
			h.Logger.Warn("speech synthesis failed, returning text",
				"request_id", reqID, "error", err)
		}
		writeJSON(w, http.StatusOK, map[string]string{
			"response": response,
			"warning":  "audio synthesis unavailable, returning text response",
		})
		return
	}

	w.Header().Set("Content-Type", synth.MIMEType)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(synth.Audio)
}

func formatFromFilename(name string) string {
	if i := strings.LastIndexByte(name, '.'); i >= 0 && i < len(name)-1 {
		return strings.ToLower(name[i+1:])
	}
	return ""
}
