package persona

import (
	"fmt"
	"strings"
	"testing"

	"github.com/confidant-ai/confidant/pkg/gateway/session"
)

func sampleInput() Input {
	return Input{
		Profile: map[string]any{
			"name":      "Lena",
			"age_range": "25-30",
			"language":  "de-DE",
			"interests": []any{"climbing", "jazz"},
		},
		History: []session.Turn{
			{UserText: "hey", ResponseText: "hey! how was the gym?"},
			{UserText: "pretty good", ResponseText: "nice, send pics next time"},
		},
		Text:     "what should I cook tonight?",
		Modality: ModalityText,
		Language: "de-DE",
	}
}

func TestBuildDeterministic(t *testing.T) {
	in := sampleInput()
	first := Build(in)
	for i := 0; i < 20; i++ {
		if got := Build(in); got != first {
			t.Fatalf("prompt differs on invocation %d", i)
		}
	}
}

func TestBuildProfileKeysSorted(t *testing.T) {
	prompt := Build(sampleInput())

	order := []string{"- age_range:", "- interests:", "- language:", "- name:"}
	last := -1
	for _, marker := range order {
		idx := strings.Index(prompt, marker)
		if idx < 0 {
			t.Fatalf("marker %q missing from prompt", marker)
		}
		if idx < last {
			t.Fatalf("marker %q out of order", marker)
		}
		last = idx
	}
	if !strings.Contains(prompt, "- interests: climbing, jazz") {
		t.Fatalf("list value not joined: %s", prompt)
	}
}

func TestBuildTruncatesHistory(t *testing.T) {
	in := sampleInput()
	in.History = nil
	for i := 1; i <= 15; i++ {
		in.History = append(in.History, session.Turn{
			UserText:     fmt.Sprintf("user message %d", i),
			ResponseText: fmt.Sprintf("reply %d", i),
		})
	}

	prompt := Build(in)

	for i := 1; i <= 5; i++ {
		if strings.Contains(prompt, fmt.Sprintf("user message %d\n", i)) {
			t.Fatalf("turn %d should have been truncated", i)
		}
	}
	last := -1
	for i := 6; i <= 15; i++ {
		idx := strings.Index(prompt, fmt.Sprintf("user message %d\n", i))
		if idx < 0 {
			t.Fatalf("turn %d missing", i)
		}
		if idx < last {
			t.Fatalf("turn %d out of order", i)
		}
		last = idx
	}
}

func TestBuildIncludesInputTag(t *testing.T) {
	in := sampleInput()
	in.Modality = ModalityAudio
	prompt := Build(in)
	if !strings.Contains(prompt, "**User Input (audio, de-DE):**\nwhat should I cook tonight?") {
		t.Fatalf("input section malformed:\n%s", prompt)
	}
}

func TestBuildEmptyProfileAndHistory(t *testing.T) {
	prompt := Build(Input{Text: "hi", Modality: ModalityText, Language: "en-US"})
	if !strings.Contains(prompt, "(none provided)") {
		t.Fatal("empty profile placeholder missing")
	}
	if !strings.Contains(prompt, "(no previous turns)") {
		t.Fatal("empty history placeholder missing")
	}
	if !strings.Contains(prompt, "the user") {
		t.Fatal("name fallback missing")
	}
}

func TestEffectiveLanguage(t *testing.T) {
	if got := EffectiveLanguage(map[string]any{"language": "fr-FR"}, "en-US"); got != "fr-FR" {
		t.Fatalf("got %q", got)
	}
	if got := EffectiveLanguage(nil, "en-US"); got != "en-US" {
		t.Fatalf("fallback: got %q", got)
	}
	if got := EffectiveLanguage(map[string]any{"language": "  "}, "en-US"); got != "en-US" {
		t.Fatalf("blank language: got %q", got)
	}
}

func TestPrimarySubtag(t *testing.T) {
	cases := map[string]string{
		"en-US":    "en",
		"de_DE":    "de",
		"FR":       "fr",
		" es-419 ": "es",
	}
	for in, want := range cases {
		if got := PrimarySubtag(in); got != want {
			t.Fatalf("PrimarySubtag(%q) = %q, want %q", in, got, want)
		}
	}
}
