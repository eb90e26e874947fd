// Package llmjson normalizes raw LLM output into structured data.
//
// Providers inconsistently wrap JSON in markdown code fences and sometimes
// emit several JSON objects concatenated without a top-level array. Normalize
// degrades through three tiers instead of failing: direct decode, embedded
// object extraction, then raw text passthrough.
package llmjson

import (
	"encoding/json"
	"regexp"
	"strings"
)

// embedded object pattern: {...} blocks tolerant of one level of nested braces.
var objectPattern = regexp.MustCompile(`\{(?:[^{}]|(?:\{[^{}]*\}))*\}`)

// Normalize converts a raw model response into one of:
//   - map[string]any or []any: the decoded JSON value (tier 1),
//   - []any of decoded objects recovered from messy text (tier 2),
//   - string: the fence-stripped input verbatim (tier 3, "structuring failed").
//
// It never returns an error; callers that need strict JSON must check the
// returned type.
func Normalize(raw string) any {
	if strings.TrimSpace(raw) == "" {
		return map[string]any{}
	}

	text := stripFence(raw)

	if value, ok := decodeDirect(text); ok {
		return value
	}
	if objects, ok := extractObjects(text); ok {
		return objects
	}
	return text
}

// stripFence removes a leading ```json marker and trailing ``` fence, if both
// are present, and trims surrounding whitespace.
func stripFence(text string) string {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "```json") && strings.HasSuffix(text, "```") {
		text = text[len("```json") : len(text)-len("```")]
	}
	return strings.TrimSpace(text)
}

// decodeDirect is tier 1: the whole text is a single valid JSON document.
func decodeDirect(text string) (any, bool) {
	var value any
	if err := json.Unmarshal([]byte(text), &value); err != nil {
		return nil, false
	}
	return value, true
}

// extractObjects is tier 2: scan for brace-balanced {...} substrings and
// decode each independently. Returns the decoded objects when at least one
// substring parses.
func extractObjects(text string) ([]any, bool) {
	matches := objectPattern.FindAllString(text, -1)
	if len(matches) == 0 {
		return nil, false
	}

	objects := make([]any, 0, len(matches))
	for _, match := range matches {
		var value map[string]any
		if err := json.Unmarshal([]byte(match), &value); err != nil {
			continue
		}
		objects = append(objects, value)
	}
	if len(objects) == 0 {
		return nil, false
	}
	return objects, true
}
