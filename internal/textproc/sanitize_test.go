package textproc

import (
	"strings"
	"testing"
)

func TestRemovePIIReplacesEmails(t *testing.T) {
	got := RemovePII("Contact: jane.doe-42@sub.example.co.uk for details")
	if strings.Contains(got, "@") {
		t.Fatalf("email not scrubbed: %q", got)
	}
	if !strings.Contains(got, "[EMAIL]") {
		t.Fatalf("expected [EMAIL] placeholder, got %q", got)
	}
}

func TestRemovePIIReplacesPhoneNumbers(t *testing.T) {
	cases := []string{
		"+1 (415) 555 0132",
		"0044 20 7946 0958",
		"89991234567",
	}
	for _, input := range cases {
		got := RemovePII("call me at " + input + " today")
		if !strings.Contains(got, "[PHONE]") {
			t.Fatalf("phone %q not scrubbed: %q", input, got)
		}
	}
}

func TestRemovePIIKeepsShortDigitRuns(t *testing.T) {
	got := RemovePII("GPA 3.9, graduated 2021")
	if strings.Contains(got, "[PHONE]") {
		t.Fatalf("short digit run wrongly scrubbed: %q", got)
	}
}

func TestRemovePIIReplacesURLs(t *testing.T) {
	got := RemovePII("see https://github.com/jane and www.janedoe.dev for code")
	if strings.Contains(got, "github.com") || strings.Contains(got, "janedoe.dev") {
		t.Fatalf("url not scrubbed: %q", got)
	}
	if strings.Count(got, "[URL]") != 2 {
		t.Fatalf("expected two [URL] placeholders, got %q", got)
	}
}

func TestRemovePIIIsIdempotent(t *testing.T) {
	input := "  Jane Doe\njane@example.com\n+1 415 555 0132\nhttps://janedoe.dev  "
	once := RemovePII(input)
	twice := RemovePII(once)
	if once != twice {
		t.Fatalf("sanitization not idempotent:\nonce:  %q\ntwice: %q", once, twice)
	}
}

func TestRemovePIITrimsResult(t *testing.T) {
	if got := RemovePII("\n  plain resume text  \n"); got != "plain resume text" {
		t.Fatalf("RemovePII() = %q", got)
	}
}
