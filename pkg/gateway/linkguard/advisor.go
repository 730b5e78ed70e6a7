package linkguard

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// Generator produces a completion for a prompt. Satisfied by the generation
// client.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Advisor reconciles the local model's verdict with the language model's.
// On disagreement the language-model verdict wins; when the language model
// is unavailable or answers off-script, the local verdict stands.
type Advisor struct {
	model  *Model
	gen    Generator
	logger *slog.Logger
}

// NewAdvisor wires a loaded model to a generator.
func NewAdvisor(model *Model, gen Generator, logger *slog.Logger) *Advisor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Advisor{model: model, gen: gen, logger: logger}
}

// Classify returns the reconciled verdict for a URL.
func (a *Advisor) Classify(ctx context.Context, rawURL string) Label {
	local := a.model.Predict(rawURL)

	remote, ok := a.secondOpinion(ctx, rawURL)
	if !ok {
		return local
	}
	if remote != local {
		a.logger.Debug("link verdicts disagree, deferring to model",
			"local", local, "remote", remote)
		return remote
	}
	return local
}

func (a *Advisor) secondOpinion(ctx context.Context, rawURL string) (Label, bool) {
	prompt := fmt.Sprintf(
		"Classify this URL as safe or unsafe. Answer with exactly one word, either \"safe\" or \"unsafe\", and nothing else.\n\nURL: %s",
		rawURL)

	text, err := a.gen.Generate(ctx, prompt)
	if err != nil {
		a.logger.Warn("link second opinion unavailable", "error", err)
		return "", false
	}
	return parseVerdict(text)
}

// parseVerdict canonicalizes a free-form model answer. Anything other than
// a recognizable one-word verdict is treated as no answer.
func parseVerdict(text string) (Label, bool) {
	fields := strings.Fields(strings.ToLower(text))
	if len(fields) == 0 {
		return "", false
	}
	switch strings.Trim(fields[0], ".,!\"'") {
	case "safe":
		return LabelSafe, true
	case "unsafe":
		return LabelUnsafe, true
	}
	return "", false
}
