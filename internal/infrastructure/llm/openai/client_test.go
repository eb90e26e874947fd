package openai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/hrcore/talent-match/internal/core/domain"
)

func TestGenerateSendsChatRequest(t *testing.T) {
	var captured chatRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer sk-test" {
			t.Errorf("unexpected authorization header %q", got)
		}
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Errorf("decode request: %v", err)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"role": "assistant", "content": "  {\"score\": 80}  "}},
			},
		})
	}))
	defer server.Close()

	generator, err := NewGenerator(server.URL, "sk-test", "gpt-4o-mini")
	if err != nil {
		t.Fatalf("NewGenerator() error = %v", err)
	}

	out, err := generator.Generate(context.Background(), "score this resume")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if out != `{"score": 80}` {
		t.Fatalf("expected trimmed content, got %q", out)
	}
	if captured.Model != "gpt-4o-mini" {
		t.Fatalf("unexpected model %q", captured.Model)
	}
	if len(captured.Messages) != 1 || captured.Messages[0].Content != "score this resume" {
		t.Fatalf("unexpected messages %+v", captured.Messages)
	}
}

func TestGenerateSurfacesRateLimitStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error": {"message": "Rate limit reached"}}`, http.StatusTooManyRequests)
	}))
	defer server.Close()

	generator, err := NewGenerator(server.URL, "sk-test", "")
	if err != nil {
		t.Fatalf("NewGenerator() error = %v", err)
	}

	_, err = generator.Generate(context.Background(), "prompt")
	var statusErr *HTTPStatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("expected HTTPStatusError, got %v", err)
	}
	if statusErr.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("unexpected status code %d", statusErr.StatusCode)
	}
	if !strings.Contains(err.Error(), "429") {
		t.Fatalf("error text should carry the status: %v", err)
	}
}

func TestGenerateEmptyChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"choices": []any{}})
	}))
	defer server.Close()

	generator, err := NewGenerator(server.URL, "sk-test", "")
	if err != nil {
		t.Fatalf("NewGenerator() error = %v", err)
	}

	_, err = generator.Generate(context.Background(), "prompt")
	if !domain.IsKind(err, domain.ErrEmptyResponse) {
		t.Fatalf("expected ErrEmptyResponse, got %v", err)
	}
}

func TestNewGeneratorRequiresAPIKey(t *testing.T) {
	if _, err := NewGenerator("", "  ", ""); err == nil {
		t.Fatalf("expected error for blank api key")
	}
}
