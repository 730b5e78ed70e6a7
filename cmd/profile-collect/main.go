// Command profile-collect interactively gathers a user profile and writes it
// to a JSON file ready to post to /api/start_chat.
package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
)

type question struct {
	key    string
	prompt string
	list   bool // comma-separated answers become arrays
}

var questions = []question{
	{key: "name", prompt: "Enter your name (optional)"},
	{key: "age_range", prompt: "Enter your age range (e.g., 18-25)"},
	{key: "gender", prompt: "Enter your gender identity (optional)"},
	{key: "location", prompt: "Enter your general location (e.g., city, state)"},
	{key: "language", prompt: "Enter your language (e.g., en-US)"},
	{key: "interests", prompt: "Enter your interests/hobbies (comma-separated)", list: true},
	{key: "favorites", prompt: "Enter your favorite things (comma-separated)", list: true},
	{key: "goals", prompt: "Enter your goals/aspirations"},
	{key: "communication_style", prompt: "Enter your communication style (formal/informal)"},
	{key: "personality", prompt: "Enter your personality traits (e.g., introvert, extrovert)"},
	{key: "values", prompt: "Enter your general values/beliefs (be cautious)"},
	{key: "life_situation", prompt: "Enter your current life situation (e.g., student, working)"},
	{key: "relationship_status", prompt: "Enter your relationship status (optional)"},
	{key: "challenges", prompt: "Enter any challenges/difficulties you'd like to share (optional)"},
}

func collect(in io.Reader, out io.Writer) (map[string]any, error) {
	profile := make(map[string]any, len(questions))
	scanner := bufio.NewScanner(in)

	for _, q := range questions {
		fmt.Fprintf(out, "%s: ", q.prompt)
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return nil, err
			}
			break
		}
		answer := strings.TrimSpace(scanner.Text())
		if answer == "" {
			continue
		}
		if q.list {
			parts := strings.Split(answer, ",")
			items := make([]string, 0, len(parts))
			for _, p := range parts {
				if p = strings.TrimSpace(p); p != "" {
					items = append(items, p)
				}
			}
			profile[q.key] = items
			continue
		}
		profile[q.key] = answer
	}

	return profile, nil
}

func save(profile map[string]any, filename string) error {
	data, err := json.MarshalIndent(profile, "", "    ")
	if err != nil {
		return err
	}
	return os.WriteFile(filename, append(data, '\n'), 0o644)
}

func run(in io.Reader, out io.Writer, filename string) error {
	profile, err := collect(in, out)
	if err != nil {
		return fmt.Errorf("collect profile: %w", err)
	}
	if err := save(profile, filename); err != nil {
		return fmt.Errorf("save profile: %w", err)
	}
	fmt.Fprintf(out, "Profile saved to %s\n", filename)
	return nil
}

func main() {
	outFile := flag.String("o", "user_data.json", "output file")
	flag.Parse()

	if err := run(os.Stdin, os.Stdout, *outFile); err != nil {
		fmt.Fprintf(os.Stderr, "profile-collect: %v\n", err)
		os.Exit(1)
	}
}
