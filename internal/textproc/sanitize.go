// Package textproc holds the pure text transformations of the matching
// pipeline: PII scrubbing before resume text leaves the system boundary, and
// rendering of structured resumes into a normalized plain-text summary.
package textproc

import (
	"regexp"
	"strings"
)

var (
	emailPattern = regexp.MustCompile(`[\w.-]+@[\w.-]+\.\w+`)
	phonePattern = regexp.MustCompile(`\+?\d[\d\s()]{7,}\d`)
	urlPattern   = regexp.MustCompile(`https?://\S+|www\.\S+`)
)

// RemovePII replaces email, phone and URL tokens with fixed placeholder tags.
// It must run before extracted resume text is sent to any external model.
// Idempotent: placeholders do not match any of the patterns.
func RemovePII(text string) string {
	text = emailPattern.ReplaceAllString(text, "[EMAIL]")
	text = phonePattern.ReplaceAllString(text, "[PHONE]")
	text = urlPattern.ReplaceAllString(text, "[URL]")
	return strings.TrimSpace(text)
}
