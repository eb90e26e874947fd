package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hrcore/talent-match/internal/core/domain"
	"github.com/hrcore/talent-match/internal/core/ports"
	"github.com/hrcore/talent-match/internal/llmjson"
)

const shortlistLimit = 5

// MatchResumesUseCase produces a scored shortlist for a job post: every active
// candidate's resume is structured, embedded and indexed, the job text is
// matched against them, and the closest candidate is scored by the model.
//
// Each run works in its own scratch collection, so concurrent runs cannot
// clobber one another's working set. The collection is dropped when the run
// finishes.
type MatchResumesUseCase struct {
	repo       ports.HiringRepository
	structurer *ResumeStructurer
	embedder   ports.Embedder
	vectors    ports.VectorIndex
	generator  ports.TextGenerator
	observer   ports.MatchObserver
}

func NewMatchResumesUseCase(
	repo ports.HiringRepository,
	structurer *ResumeStructurer,
	embedder ports.Embedder,
	vectors ports.VectorIndex,
	generator ports.TextGenerator,
) *MatchResumesUseCase {
	return &MatchResumesUseCase{
		repo:       repo,
		structurer: structurer,
		embedder:   embedder,
		vectors:    vectors,
		generator:  generator,
	}
}

// WithObserver attaches a run observer. Every ScoreResumes call reports its
// candidate count, elapsed time and outcome exactly once.
func (uc *MatchResumesUseCase) WithObserver(observer ports.MatchObserver) *MatchResumesUseCase {
	uc.observer = observer
	return uc
}

func (uc *MatchResumesUseCase) ScoreResumes(ctx context.Context, jobID string) (any, error) {
	start := time.Now()
	result, candidateCount, err := uc.run(ctx, jobID)
	if uc.observer != nil {
		uc.observer.MatchRunCompleted(candidateCount, time.Since(start), err)
	}
	return result, err
}

func (uc *MatchResumesUseCase) run(ctx context.Context, jobID string) (any, int, error) {
	job, err := uc.repo.GetJobPost(ctx, jobID)
	if err != nil {
		return nil, 0, fmt.Errorf("fetch job post: %w", err)
	}

	candidates, err := uc.repo.ActiveCandidates(ctx, jobID)
	if err != nil {
		return nil, 0, fmt.Errorf("fetch active candidates: %w", err)
	}
	if len(candidates) == 0 {
		return nil, 0, domain.WrapError(domain.ErrInvalidInput, "score resumes",
			errors.New("no active applications for job"))
	}

	scratch := scratchCollection()
	defer func() {
		if err := uc.vectors.DropCollection(context.WithoutCancel(ctx), scratch); err != nil {
			slog.Warn("drop scratch collection", "collection", scratch, "error", err)
		}
	}()

	for i := range candidates {
		if err := uc.indexCandidate(ctx, scratch, job.ID, &candidates[i]); err != nil {
			return nil, len(candidates), err
		}
	}

	top, err := uc.closestCandidate(ctx, scratch, job, len(candidates))
	if err != nil {
		return nil, len(candidates), err
	}

	result, err := uc.scoreCandidate(ctx, top, job)
	return result, len(candidates), err
}

func (uc *MatchResumesUseCase) indexCandidate(
	ctx context.Context,
	collection, jobID string,
	candidate *domain.MatchCandidate,
) error {
	summary, err := uc.structurer.Structure(ctx, &candidate.Resume)
	if err != nil {
		return err
	}

	// The structured text is a regenerable cache; losing it must not abort the run.
	if err := uc.repo.SaveParsedResume(ctx, candidate.Resume.ID, summary); err != nil {
		slog.Warn("save parsed resume cache", "resume_id", candidate.Resume.ID, "error", err)
	}

	vector, err := uc.embedder.EmbedQuery(ctx, summary)
	if err != nil {
		return fmt.Errorf("embed resume %s: %w", candidate.Resume.ID, err)
	}

	record := domain.VectorRecord{
		ID:   candidate.Resume.ID,
		Text: summary,
		Metadata: map[string]any{
			"user_id":            candidate.Resume.OwnerID,
			"resume_id":          candidate.Resume.ID,
			"application_id":     candidate.Application.ID,
			"candidate_name":     candidate.Candidate.Name,
			"job_id":             jobID,
			"application_status": string(candidate.Application.Status),
		},
	}
	if err := uc.vectors.Upsert(ctx, collection, record, vector); err != nil {
		return fmt.Errorf("index resume %s: %w", candidate.Resume.ID, err)
	}
	return nil
}

func (uc *MatchResumesUseCase) closestCandidate(
	ctx context.Context,
	collection string,
	job *domain.JobPost,
	candidateCount int,
) (*domain.VectorHit, error) {
	queryVector, err := uc.embedder.EmbedQuery(ctx, job.CombinedText())
	if err != nil {
		return nil, fmt.Errorf("embed job text: %w", err)
	}

	limit := shortlistLimit
	if candidateCount < limit {
		limit = candidateCount
	}

	hits, err := uc.vectors.Query(ctx, collection, queryVector, limit)
	if err != nil {
		return nil, fmt.Errorf("query resume index: %w", err)
	}
	if len(hits) == 0 {
		return nil, domain.WrapError(domain.ErrInvalidInput, "score resumes",
			errors.New("no indexed resumes matched the job"))
	}

	// Lower distance means more similar. The index should already return hits
	// ordered, but the contract here is explicit.
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Distance < hits[j].Distance })

	return &hits[0], nil
}

// scoreCandidate forwards only the single closest hit into the scoring prompt.
// The retrieval fans out to up to five candidates but scoring is top-1; kept
// as observed upstream behavior pending product clarification.
func (uc *MatchResumesUseCase) scoreCandidate(ctx context.Context, hit *domain.VectorHit, job *domain.JobPost) (any, error) {
	encoded, err := json.Marshal(hit)
	if err != nil {
		return nil, fmt.Errorf("encode candidate entry: %w", err)
	}

	prompt := buildShortlistPrompt(string(encoded), job.Title, job.Description, job.Requirements)
	raw, err := uc.generator.Generate(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("score candidate: %w", err)
	}

	return llmjson.Normalize(raw), nil
}

func scratchCollection() string {
	return "resume_match_" + strings.ReplaceAll(uuid.NewString(), "-", "")
}
