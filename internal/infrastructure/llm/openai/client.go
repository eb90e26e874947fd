package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/hrcore/talent-match/internal/core/domain"
)

const (
	defaultBaseURL = "https://api.openai.com/v1"
	defaultModel   = "gpt-4o-mini"
)

// Generator produces text through the OpenAI chat-completions API.
type Generator struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
}

func NewGenerator(baseURL, apiKey, model string) (*Generator, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("openai api key is required")
	}
	if baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/"); baseURL == "" {
		baseURL = defaultBaseURL
	}
	if model = strings.TrimSpace(model); model == "" {
		model = defaultModel
	}
	return &Generator{
		baseURL:    baseURL,
		apiKey:     apiKey,
		model:      model,
		httpClient: &http.Client{Timeout: 120 * time.Second},
	}, nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

func (g *Generator) Generate(ctx context.Context, prompt string) (string, error) {
	if strings.TrimSpace(prompt) == "" {
		return "", domain.WrapError(domain.ErrInvalidInput, "openai generate", errors.New("empty prompt"))
	}

	payload := chatRequest{
		Model:    g.model,
		Messages: []chatMessage{{Role: "user", Content: prompt}},
	}

	var response chatResponse
	if err := g.postJSON(ctx, "/chat/completions", payload, &response); err != nil {
		return "", err
	}

	if len(response.Choices) == 0 {
		return "", domain.WrapError(domain.ErrEmptyResponse, "openai generate", errors.New("no choices returned"))
	}
	text := strings.TrimSpace(response.Choices[0].Message.Content)
	if text == "" {
		return "", domain.WrapError(domain.ErrEmptyResponse, "openai generate", errors.New("empty message content"))
	}
	return text, nil
}

func (g *Generator) Model() string {
	return g.model
}

func (g *Generator) postJSON(ctx context.Context, path string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create chat request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+g.apiKey)

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("openai chat request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return &HTTPStatusError{
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Body:       strings.TrimSpace(string(raw)),
		}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode chat response: %w", err)
	}
	return nil
}

// HTTPStatusError reports a non-2xx answer from the OpenAI API with enough
// detail for the retry classifier to recognize rate limiting.
type HTTPStatusError struct {
	StatusCode int
	Status     string
	Body       string
}

func (e *HTTPStatusError) Error() string {
	if e == nil {
		return "openai status error"
	}
	if e.Body == "" {
		return fmt.Sprintf("openai chat status: %s", e.Status)
	}
	return fmt.Sprintf("openai chat status: %s: %s", e.Status, e.Body)
}
