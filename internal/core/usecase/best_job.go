package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hrcore/talent-match/internal/core/domain"
	"github.com/hrcore/talent-match/internal/core/ports"
)

// BestJobUseCase matches one resume against the durable job-post collection
// and returns the closest job.
type BestJobUseCase struct {
	repo       ports.HiringRepository
	structurer *ResumeStructurer
	embedder   ports.Embedder
	vectors    ports.VectorIndex
}

func NewBestJobUseCase(
	repo ports.HiringRepository,
	structurer *ResumeStructurer,
	embedder ports.Embedder,
	vectors ports.VectorIndex,
) *BestJobUseCase {
	return &BestJobUseCase{
		repo:       repo,
		structurer: structurer,
		embedder:   embedder,
		vectors:    vectors,
	}
}

func (uc *BestJobUseCase) BestJob(ctx context.Context, resumeID string) (*domain.VectorHit, error) {
	resume, err := uc.repo.GetResume(ctx, resumeID)
	if err != nil {
		return nil, fmt.Errorf("fetch resume: %w", err)
	}

	summary, err := uc.structurer.Structure(ctx, resume)
	if err != nil {
		return nil, err
	}

	if err := uc.repo.SaveParsedResume(ctx, resume.ID, summary); err != nil {
		slog.Warn("save parsed resume cache", "resume_id", resume.ID, "error", err)
	}

	vector, err := uc.embedder.EmbedQuery(ctx, summary)
	if err != nil {
		return nil, fmt.Errorf("embed resume text: %w", err)
	}

	hits, err := uc.vectors.Query(ctx, JobPostCollection, vector, shortlistLimit)
	if err != nil {
		return nil, fmt.Errorf("query job post index: %w", err)
	}
	if len(hits) == 0 {
		return nil, domain.WrapError(domain.ErrNotFound, "best job",
			errors.New("no job posts indexed"))
	}

	best := hits[0]
	for _, hit := range hits[1:] {
		if hit.Distance < best.Distance {
			best = hit
		}
	}
	return &best, nil
}
