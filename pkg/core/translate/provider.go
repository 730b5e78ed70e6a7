// Package translate provides text translation functionality.
package translate

import (
	"context"
)

// Provider is the interface for translation services.
type Provider interface {
	// Name returns the provider identifier.
	Name() string

	// Translate converts text between languages. An empty source language
	// asks the service to detect it.
	Translate(ctx context.Context, text string, opts TranslateOptions) (*Translation, error)
}

// TranslateOptions configures translation.
type TranslateOptions struct {
	SourceLanguage string // ISO code; empty means auto-detect
	TargetLanguage string // ISO code; required
}

// Translation is the result of translation.
type Translation struct {
	Text           string // Translated text
	SourceLanguage string // Detected or specified source language
}
