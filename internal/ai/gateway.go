// Package ai provides the language-model gateway used for proposal
// generation and intake refinement.
package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// Gateway abstracts the language-model backend. One request is in
// flight per logical user action and failed requests are not retried;
// the caller surfaces the error and the user triggers again.
type Gateway interface {
	// Query sends a prompt and returns the model's text response.
	Query(ctx context.Context, prompt string) (string, error)
}

// QueryJSON sends a prompt expected to produce a JSON document and
// unmarshals the response into out. Models frequently wrap JSON in
// markdown fences; those are stripped before decoding.
func QueryJSON(ctx context.Context, g Gateway, prompt string, out any) error {
	raw, err := g.Query(ctx, prompt)
	if err != nil {
		return err
	}
	cleaned := StripFences(raw)
	if err := json.Unmarshal([]byte(cleaned), out); err != nil {
		return fmt.Errorf("ai: decode model response: %w", err)
	}
	return nil
}

// Disabled returns a Gateway whose queries always fail with the given
// reason. Used when no API key is configured, so AI-backed tools stay
// registered and report a clear error instead of disappearing.
func Disabled(reason string) Gateway {
	return disabledGateway{reason: reason}
}

type disabledGateway struct {
	reason string
}

func (d disabledGateway) Query(ctx context.Context, prompt string) (string, error) {
	return "", fmt.Errorf("ai: %s", d.reason)
}

// StripFences removes a surrounding markdown code fence (``` or
// ```json) from a model response, leaving the inner payload.
func StripFences(s string) string {
	trimmed := strings.TrimSpace(s)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```")
	// Drop an optional language tag on the opening fence line.
	if idx := strings.Index(trimmed, "\n"); idx >= 0 {
		firstLine := strings.TrimSpace(trimmed[:idx])
		if len(firstLine) <= 10 && !strings.ContainsAny(firstLine, "{}[]") {
			trimmed = trimmed[idx+1:]
		}
	}
	trimmed = strings.TrimSpace(trimmed)
	trimmed = strings.TrimSuffix(trimmed, "```")
	return strings.TrimSpace(trimmed)
}
