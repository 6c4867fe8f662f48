package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrUnavailable means no credential is configured. Callers check
// Available first so they can route around the model without a failed call.
var ErrUnavailable = errors.New("ai: no API key configured")

// Client is the interface for AI providers
type Client interface {
	// Available reports whether a credential is configured
	Available() bool

	// CompleteJSON sends a system + user prompt at temperature 0 and
	// returns the raw JSON object the model produced
	CompleteJSON(ctx context.Context, systemPrompt, userMessage string) (string, error)
}

// RecruiterSystemPrompt asks for indices only so token cost stays flat and
// titles are never rewritten by the model
func RecruiterSystemPrompt() string {
	return `You are a strict technical recruiter.
Analyze the Job List and find jobs that match the Candidate Persona.

Rules:
1. Return ONLY a JSON object with a single key "matchIds".
2. "matchIds" must be an array of integers representing the indices of matching jobs.
3. Be strict. If the location or role doesn't fit the persona, do not include it.
4. Do not output any markdown or explanation.

Example Output: { "matchIds": [0, 4, 12] }`
}

// ListingLine is one numbered entry of the job list
type ListingLine struct {
	Title    string
	Location string
	Company  string
}

// BuildMatchPrompt renders the persona and a zero-indexed job list
func BuildMatchPrompt(persona string, lines []ListingLine) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Candidate Persona: %s\n\nJob List:\n", persona)
	for i, l := range lines {
		fmt.Fprintf(&b, "%d: %s", i, l.Title)
		if l.Location != "" {
			fmt.Fprintf(&b, " (%s)", l.Location)
		}
		fmt.Fprintf(&b, " - %s\n", l.Company)
	}
	return strings.TrimRight(b.String(), "\n")
}
