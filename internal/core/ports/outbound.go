package ports

import (
	"context"
	"io"
	"time"

	"github.com/hrcore/talent-match/internal/core/domain"
)

// HiringRepository reads and writes recruitment state in the relational store.
type HiringRepository interface {
	GetJobPost(ctx context.Context, id string) (*domain.JobPost, error)
	ListJobPosts(ctx context.Context) ([]domain.JobPost, error)
	GetResume(ctx context.Context, id string) (*domain.Resume, error)
	CreateResume(ctx context.Context, resume *domain.Resume) error
	SaveParsedResume(ctx context.Context, resumeID, parsed string) error
	// ActiveCandidates returns the (resume, application, candidate) triples
	// under active consideration for a job post.
	ActiveCandidates(ctx context.Context, jobID string) ([]domain.MatchCandidate, error)
}

// ObjectStorage stores uploaded resume binaries.
type ObjectStorage interface {
	Save(ctx context.Context, key string, data io.Reader) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
}

// MessageQueue carries job-post sync events to the background worker.
type MessageQueue interface {
	PublishJobSync(ctx context.Context) error
	SubscribeJobSync(ctx context.Context, handler func(context.Context) error) error
}

// TextExtractor pulls plain text out of a stored resume binary.
type TextExtractor interface {
	Extract(ctx context.Context, fileURL string) (string, error)
}

// Embedder builds vectors for index and query text.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// VectorIndex stores and searches embedded documents across named logical
// collections. Query results come back with ascending-is-better distances.
type VectorIndex interface {
	Upsert(ctx context.Context, collection string, record domain.VectorRecord, vector []float32) error
	Query(ctx context.Context, collection string, vector []float32, limit int) ([]domain.VectorHit, error)
	Clear(ctx context.Context, collection string) error
	DropCollection(ctx context.Context, collection string) error
}

// TextGenerator produces text from a prompt via an external model provider.
type TextGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// MatchObserver receives the outcome of finished matching runs. Implementations
// must be safe for concurrent use.
type MatchObserver interface {
	MatchRunCompleted(candidateCount int, elapsed time.Duration, err error)
}
