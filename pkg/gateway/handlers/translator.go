package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/confidant-ai/confidant/pkg/core"
	"github.com/confidant-ai/confidant/pkg/core/translate"
	"github.com/confidant-ai/confidant/pkg/core/voice/stt"
	"github.com/confidant-ai/confidant/pkg/core/voice/tts"
	"github.com/confidant-ai/confidant/pkg/gateway/mw"
	"github.com/confidant-ai/confidant/pkg/gateway/persona"
)

// TranslatorHandler translates text or transcribed audio into a target
// language, optionally speaking the result.
type TranslatorHandler struct {
	Translate translate.Provider
	STT       stt.Provider
	TTS       tts.Provider

	Voices map[string]string

	MaxBodyBytes   int64
	HandlerTimeout time.Duration
	Logger         *slog.Logger
}

func (h TranslatorHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	reqID, _ := mw.RequestIDFrom(r.Context())

	in, err := parseInput(r, h.MaxBodyBytes)
	if err != nil {
		writeErr(w, reqID, err)
		return
	}
	defer in.close()

	targetLang := in.field("target_lang")
	if targetLang == "" {
		writeCoreErrorJSON(w, reqID, core.NewInvalidRequestErrorWithParam("target_lang is required", "target_lang"), http.StatusBadRequest)
		return
	}
	sourceLang := in.field("source_lang")

	if in.field("text") == "" && in.audio == nil {
		writeCoreErrorJSON(w, reqID, core.NewInvalidRequestErrorWithParam("text or audio input is required", "text"), http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	if h.HandlerTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.HandlerTimeout)
		defer cancel()
	}

	text := in.field("text")
	if in.audio != nil {
		transcript, err := h.STT.Transcribe(ctx, in.audio, stt.TranscribeOptions{
			Language: persona.PrimarySubtag(sourceLang),
			Format:   formatFromFilename(in.audioName),
		})
		if err != nil {
			if text == "" {
				writeErr(w, reqID, err)
				return
			}
			if h.Logger != nil {
				h.Logger.Warn("transcription failed, falling back to text input",
					"request_id", reqID, "error", err)
			}
		} else if strings.TrimSpace(transcript.Text) != "" {
			text = transcript.Text
			if sourceLang == "" {
				sourceLang = transcript.Language
			}
		}
	}

	translation, err := h.Translate.Translate(ctx, text, translate.TranslateOptions{
		SourceLanguage: sourceLang,
		TargetLanguage: targetLang,
	})
	if err != nil {
		writeErr(w, reqID, err)
		return
	}

	if r.URL.Query().Get("format") == "audio" {
		voice := h.Voices[persona.PrimarySubtag(targetLang)]
		synth, err := h.TTS.Synthesize(ctx, translation.Text, tts.SynthesizeOptions{
			Voice:    voice,
			Language: targetLang,
		})
		if err == nil {
			w.Header().Set("Content-Type", synth.MIMEType)
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write(synth.Audio)
			return
		}
		if h.Logger != nil {
			h.Logger.Warn("speech synthesis failed, returning text",
				"request_id", reqID, "error", err)
		}
		writeJSON(w, http.StatusOK, map[string]string{
			"translated_text":          translation.Text,
			"source_language_detected": translation.SourceLanguage,
			"warning":                  "audio synthesis unavailable, returning text response",
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"translated_text":          translation.Text,
		"source_language_detected": translation.SourceLanguage,
	})
}
