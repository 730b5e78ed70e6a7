package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestCollect(t *testing.T) {
	answers := strings.Join([]string{
		"Sam",             // name
		"18-25",           // age_range
		"",                // gender skipped
		"Berlin",          // location
		"de-DE",           // language
		"climbing, jazz",  // interests
		"coffee",          // favorites
		"learn Go",        // goals
		"informal",        // communication_style
		"introvert",       // personality
		"",                // values skipped
		"student",         // life_situation
		"",                // relationship_status skipped
		"",                // challenges skipped
	}, "\n")

	var out bytes.Buffer
	profile, err := collect(strings.NewReader(answers), &out)
	if err != nil {
		t.Fatalf("collect: %v", err)
	}

	if profile["name"] != "Sam" || profile["language"] != "de-DE" {
		t.Fatalf("profile = %v", profile)
	}
	if _, ok := profile["gender"]; ok {
		t.Fatal("skipped answer should be absent")
	}
	interests, ok := profile["interests"].([]string)
	if !ok || len(interests) != 2 || interests[0] != "climbing" || interests[1] != "jazz" {
		t.Fatalf("interests = %v", profile["interests"])
	}
	if !strings.Contains(out.String(), "Enter your name") {
		t.Fatal("prompts not written")
	}
}

func TestRunWritesJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "user_data.json")
	input := "Sam\n18-25\n\n\nen-US\n\n\n\n\n\n\n\n\n\n"

	var out bytes.Buffer
	if err := run(strings.NewReader(input), &out, path); err != nil {
		t.Fatalf("run: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var profile map[string]any
	if err := json.Unmarshal(data, &profile); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if profile["language"] != "en-US" {
		t.Fatalf("profile = %v", profile)
	}
}
