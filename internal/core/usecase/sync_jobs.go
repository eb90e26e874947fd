package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/hrcore/talent-match/internal/core/domain"
	"github.com/hrcore/talent-match/internal/core/ports"
)

// JobPostCollection is the durable collection holding embedded job posts.
// It is rebuilt wholesale by the sync worker, never mutated incrementally.
const JobPostCollection = "job_post"

type SyncJobPostsUseCase struct {
	repo     ports.HiringRepository
	embedder ports.Embedder
	vectors  ports.VectorIndex
}

func NewSyncJobPostsUseCase(
	repo ports.HiringRepository,
	embedder ports.Embedder,
	vectors ports.VectorIndex,
) *SyncJobPostsUseCase {
	return &SyncJobPostsUseCase{
		repo:     repo,
		embedder: embedder,
		vectors:  vectors,
	}
}

func (uc *SyncJobPostsUseCase) SyncJobPosts(ctx context.Context) error {
	jobs, err := uc.repo.ListJobPosts(ctx)
	if err != nil {
		return fmt.Errorf("list job posts: %w", err)
	}

	if err := uc.vectors.Clear(ctx, JobPostCollection); err != nil {
		return fmt.Errorf("clear job post collection: %w", err)
	}

	for _, job := range jobs {
		text := job.CombinedText()
		vector, err := uc.embedder.EmbedQuery(ctx, text)
		if err != nil {
			return fmt.Errorf("embed job post %s: %w", job.ID, err)
		}

		record := domain.VectorRecord{
			ID:   job.ID,
			Text: text,
			Metadata: map[string]any{
				"job_id":       job.ID,
				"title":        job.Title,
				"description":  job.Description,
				"requirements": job.Requirements,
				"status":       job.Status,
				"created_at":   job.CreatedAt.UTC().Format(time.RFC3339),
			},
		}
		if err := uc.vectors.Upsert(ctx, JobPostCollection, record, vector); err != nil {
			return fmt.Errorf("index job post %s: %w", job.ID, err)
		}
	}
	return nil
}

func (uc *SyncJobPostsUseCase) DeleteJobPosts(ctx context.Context) error {
	if err := uc.vectors.Clear(ctx, JobPostCollection); err != nil {
		return fmt.Errorf("clear job post collection: %w", err)
	}
	return nil
}
