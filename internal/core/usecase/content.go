package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/hrcore/talent-match/internal/core/domain"
	"github.com/hrcore/talent-match/internal/core/ports"
	"github.com/hrcore/talent-match/internal/llmjson"
)

// Question counts for a generated mock interview.
const (
	easyQuestions   = 3
	mediumQuestions = 3
	hardQuestions   = 10
)

// ContentUseCase covers the generation-only AI operations: mock interview
// questions for a job post and job-description drafting.
type ContentUseCase struct {
	repo      ports.HiringRepository
	generator ports.TextGenerator
}

func NewContentUseCase(repo ports.HiringRepository, generator ports.TextGenerator) *ContentUseCase {
	return &ContentUseCase{
		repo:      repo,
		generator: generator,
	}
}

func (uc *ContentUseCase) InterviewQuestions(ctx context.Context, jobID string) (any, error) {
	job, err := uc.repo.GetJobPost(ctx, jobID)
	if err != nil {
		return nil, fmt.Errorf("fetch job post: %w", err)
	}

	prompt := buildInterviewQuestionsPrompt(
		job.Title, job.Description, job.Requirements,
		easyQuestions, mediumQuestions, hardQuestions,
	)
	raw, err := uc.generator.Generate(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("generate interview questions: %w", err)
	}
	return llmjson.Normalize(raw), nil
}

func (uc *ContentUseCase) JobDescription(ctx context.Context, title, level, location string) (any, error) {
	if strings.TrimSpace(title) == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "job description",
			errors.New("job title is required"))
	}

	raw, err := uc.generator.Generate(ctx, buildJobDescriptionPrompt(title, level, location))
	if err != nil {
		return nil, fmt.Errorf("generate job description: %w", err)
	}
	return llmjson.Normalize(raw), nil
}
