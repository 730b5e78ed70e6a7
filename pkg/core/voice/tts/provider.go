// Package tts provides text-to-speech functionality.
package tts

import (
	"context"
)

// Provider is the interface for text-to-speech services.
type Provider interface {
	// Name returns the provider identifier.
	Name() string

	// Synthesize converts text to audio.
	Synthesize(ctx context.Context, text string, opts SynthesizeOptions) (*Synthesis, error)
}

// SynthesizeOptions configures synthesis.
type SynthesizeOptions struct {
	Voice    string // Voice identifier
	Language string // Language code (primary subtag, e.g. "en")
	Format   string // Output format: "mp3" (default) or "wav"
}

// Synthesis is the result of synthesis.
type Synthesis struct {
	Audio    []byte // Audio data
	Format   string // Audio format
	MIMEType string // Content type of Audio, e.g. "audio/mpeg"
}
