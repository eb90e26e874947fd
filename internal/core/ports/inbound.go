package ports

import (
	"context"
	"io"

	"github.com/hrcore/talent-match/internal/core/domain"
)

// MatchService is the inbound contract for resume-to-job matching and scoring.
type MatchService interface {
	ScoreResumes(ctx context.Context, jobID string) (any, error)
}

// BestJobFinder matches a single resume against the indexed job posts.
type BestJobFinder interface {
	BestJob(ctx context.Context, resumeID string) (*domain.VectorHit, error)
}

// JobIndexer maintains the job-post vector collection.
type JobIndexer interface {
	SyncJobPosts(ctx context.Context) error
	DeleteJobPosts(ctx context.Context) error
}

// ContentService is the inbound contract for generation-only AI operations.
type ContentService interface {
	InterviewQuestions(ctx context.Context, jobID string) (any, error)
	JobDescription(ctx context.Context, title, level, location string) (any, error)
}

// ResumeIngestor is the inbound contract for resume upload.
type ResumeIngestor interface {
	Upload(ctx context.Context, ownerID, filename string, size int64, body io.Reader) (*domain.Resume, error)
}
