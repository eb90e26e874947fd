package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/hrcore/talent-match/internal/core/domain"
	"github.com/hrcore/talent-match/internal/core/ports"
	"github.com/hrcore/talent-match/internal/llmjson"
	"github.com/hrcore/talent-match/internal/textproc"
)

// ResumeStructurer turns a stored resume binary into the normalized plain-text
// summary that gets embedded. PII is scrubbed before any text reaches the
// external model provider.
type ResumeStructurer struct {
	extractor ports.TextExtractor
	generator ports.TextGenerator
}

func NewResumeStructurer(extractor ports.TextExtractor, generator ports.TextGenerator) *ResumeStructurer {
	return &ResumeStructurer{
		extractor: extractor,
		generator: generator,
	}
}

func (s *ResumeStructurer) Structure(ctx context.Context, resume *domain.Resume) (string, error) {
	if resume.FileURL == "" {
		return "", domain.WrapError(domain.ErrInvalidInput, "structure resume", errors.New("resume has no stored file"))
	}

	text, err := s.extractor.Extract(ctx, resume.FileURL)
	if err != nil {
		return "", fmt.Errorf("extract resume %s: %w", resume.ID, err)
	}

	text = textproc.RemovePII(text)
	if text == "" {
		return "", domain.WrapError(domain.ErrInvalidInput, "structure resume", errors.New("empty extracted text"))
	}

	raw, err := s.generator.Generate(ctx, buildStructureResumePrompt(text))
	if err != nil {
		return "", fmt.Errorf("structure resume %s: %w", resume.ID, err)
	}

	return textproc.FormatResume(llmjson.Normalize(raw)), nil
}
