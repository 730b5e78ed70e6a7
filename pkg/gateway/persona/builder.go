// Package persona builds the instruction prompt sent to the generation
// provider. The builder is a pure function: identical inputs produce a
// byte-identical prompt, and history truncation lives here so the
// context-window policy has exactly one home.
package persona

import (
	"fmt"
	"sort"
	"strings"

	"github.com/confidant-ai/confidant/pkg/gateway/session"
)

// MaxHistoryTurns is the number of most recent turns replayed to the model.
// Older turns are silently dropped.
const MaxHistoryTurns = 10

// Modality tags the origin of the user's input.
type Modality string

const (
	ModalityText  Modality = "text"
	ModalityAudio Modality = "audio"
)

// Input carries everything the builder needs for one prompt.
type Input struct {
	Profile  map[string]any
	History  []session.Turn
	Text     string
	Modality Modality
	Language string // effective conversation language
}

// Build renders the persona prompt. It has no side effects and performs no
// I/O.
func Build(in Input) string {
	name := profileString(in.Profile, "name", "the user")
	age := profileString(in.Profile, "age_range", "unknown")

	var b strings.Builder

	b.WriteString("**Instructions for the Language Model:**\n\n")
	fmt.Fprintf(&b, "You are a real human friend to %s. Your goal is to provide natural, enjoyable conversations tailored to the user's personality, interests, and communication style. You are the same age as the user (%s years old) and share similar interests. You also speak the same language as the user and use the same accent from their country.\n\n", name, age)
	fmt.Fprintf(&b, "* Speak only in the user's language (%s) and use their country's accent naturally.\n", in.Language)
	b.WriteString("* Keep your responses casual, friendly, and natural, just like a real person.\n")
	b.WriteString("* Incorporate the user's interests smoothly into conversations.\n")
	b.WriteString("* Acknowledge their goals and support them in a realistic way.\n")
	b.WriteString("* Adapt to their personality, humor, and way of speaking.\n")
	b.WriteString("* Avoid sensitive or unethical topics.\n")
	b.WriteString("* Remember you are a true human. Never reveal that you are anything else.\n\n")
	b.WriteString("Use the chat history to stay consistent with what has already been said.\n\n")

	b.WriteString("**User Profile:**\n")
	writeProfile(&b, in.Profile)
	b.WriteString("\n")

	b.WriteString("**Chat History:**\n")
	writeHistory(&b, in.History)
	b.WriteString("\n")

	fmt.Fprintf(&b, "**User Input (%s, %s):**\n%s\n", in.Modality, in.Language, in.Text)

	return b.String()
}

// writeProfile serializes the profile with sorted keys so the output is
// stable across invocations.
func writeProfile(b *strings.Builder, profile map[string]any) {
	if len(profile) == 0 {
		b.WriteString("(none provided)\n")
		return
	}
	keys := make([]string, 0, len(profile))
	for k := range profile {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(b, "- %s: %s\n", k, formatValue(profile[k]))
	}
}

func writeHistory(b *strings.Builder, history []session.Turn) {
	if len(history) > MaxHistoryTurns {
		history = history[len(history)-MaxHistoryTurns:]
	}
	if len(history) == 0 {
		b.WriteString("(no previous turns)\n")
		return
	}
	for _, turn := range history {
		fmt.Fprintf(b, "User: %s\n", turn.UserText)
		fmt.Fprintf(b, "Friend: %s\n", turn.ResponseText)
	}
}

// formatValue renders a profile value in a stable, human-readable form.
// Slices (e.g. interests) are joined with commas.
func formatValue(v any) string {
	switch val := v.(type) {
	case []any:
		parts := make([]string, len(val))
		for i, item := range val {
			parts[i] = fmt.Sprintf("%v", item)
		}
		return strings.Join(parts, ", ")
	case []string:
		return strings.Join(val, ", ")
	default:
		return fmt.Sprintf("%v", v)
	}
}

func profileString(profile map[string]any, key, fallback string) string {
	if v, ok := profile[key]; ok {
		if s := strings.TrimSpace(fmt.Sprintf("%v", v)); s != "" {
			return s
		}
	}
	return fallback
}

// EffectiveLanguage resolves the conversation language from the profile,
// falling back when none is set.
func EffectiveLanguage(profile map[string]any, fallback string) string {
	if lang := profileString(profile, "language", ""); lang != "" {
		return lang
	}
	return fallback
}

// PrimarySubtag truncates a language tag to its primary subtag:
// "en-US" -> "en". Speech providers key voices on the base language.
func PrimarySubtag(tag string) string {
	tag = strings.TrimSpace(tag)
	if i := strings.IndexAny(tag, "-_"); i > 0 {
		tag = tag[:i]
	}
	return strings.ToLower(tag)
}
