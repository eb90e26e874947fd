package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/hrcore/talent-match/internal/core/domain"
)

type hiringRepoFake struct {
	job        *domain.JobPost
	jobErr     error
	candidates []domain.MatchCandidate
	resumes    map[string]*domain.Resume

	mu     sync.Mutex
	parsed map[string]string
}

func (f *hiringRepoFake) GetJobPost(context.Context, string) (*domain.JobPost, error) {
	if f.jobErr != nil {
		return nil, f.jobErr
	}
	copyJob := *f.job
	return &copyJob, nil
}

func (f *hiringRepoFake) ListJobPosts(context.Context) ([]domain.JobPost, error) {
	if f.job == nil {
		return nil, nil
	}
	return []domain.JobPost{*f.job}, nil
}

func (f *hiringRepoFake) GetResume(_ context.Context, id string) (*domain.Resume, error) {
	resume, ok := f.resumes[id]
	if !ok {
		return nil, domain.WrapError(domain.ErrNotFound, "fetch resume", errors.New(id))
	}
	copyResume := *resume
	return &copyResume, nil
}

func (f *hiringRepoFake) CreateResume(context.Context, *domain.Resume) error { return nil }

func (f *hiringRepoFake) SaveParsedResume(_ context.Context, resumeID, parsed string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.parsed == nil {
		f.parsed = make(map[string]string)
	}
	f.parsed[resumeID] = parsed
	return nil
}

func (f *hiringRepoFake) ActiveCandidates(context.Context, string) ([]domain.MatchCandidate, error) {
	return f.candidates, nil
}

type extractorFake struct {
	texts map[string]string // fileURL -> extracted text
	err   error
}

func (f *extractorFake) Extract(_ context.Context, fileURL string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	text, ok := f.texts[fileURL]
	if !ok {
		return "", fmt.Errorf("no text for %s", fileURL)
	}
	return text, nil
}

type generatorFake struct {
	responses []string
	prompts   []string
	err       error
}

func (f *generatorFake) Generate(_ context.Context, prompt string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.prompts = append(f.prompts, prompt)
	if len(f.responses) == 0 {
		return "{}", nil
	}
	response := f.responses[0]
	f.responses = f.responses[1:]
	return response, nil
}

type embedderFake struct{}

func (f *embedderFake) Embed(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{float32(len(texts[i])), 1}
	}
	return out, nil
}

func (f *embedderFake) EmbedQuery(_ context.Context, text string) ([]float32, error) {
	return []float32{float32(len(text)), 1}, nil
}

type vectorIndexFake struct {
	mu          sync.Mutex
	collections map[string][]domain.VectorRecord
	dropped     []string
	distances   map[string]float64 // record id -> distance returned from Query
	queryErr    error
}

func (f *vectorIndexFake) Upsert(_ context.Context, collection string, record domain.VectorRecord, _ []float32) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.collections == nil {
		f.collections = make(map[string][]domain.VectorRecord)
	}
	f.collections[collection] = append(f.collections[collection], record)
	return nil
}

func (f *vectorIndexFake) Query(_ context.Context, collection string, _ []float32, limit int) ([]domain.VectorHit, error) {
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	records := f.collections[collection]
	hits := make([]domain.VectorHit, 0, len(records))
	for _, record := range records {
		hits = append(hits, domain.VectorHit{
			ID:       record.ID,
			Text:     record.Text,
			Metadata: record.Metadata,
			Distance: f.distances[record.ID],
		})
	}
	if len(hits) > limit {
		hits = hits[:limit]
	}
	return hits, nil
}

func (f *vectorIndexFake) Clear(_ context.Context, collection string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.collections, collection)
	return nil
}

func (f *vectorIndexFake) DropCollection(_ context.Context, collection string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.collections, collection)
	f.dropped = append(f.dropped, collection)
	return nil
}

type observedRun struct {
	candidates int
	elapsed    time.Duration
	err        error
}

type matchObserverFake struct {
	mu   sync.Mutex
	runs []observedRun
}

func (f *matchObserverFake) MatchRunCompleted(candidateCount int, elapsed time.Duration, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.runs = append(f.runs, observedRun{candidates: candidateCount, elapsed: elapsed, err: err})
}

func threeCandidates() []domain.MatchCandidate {
	out := make([]domain.MatchCandidate, 0, 3)
	for i := 1; i <= 3; i++ {
		out = append(out, domain.MatchCandidate{
			Resume: domain.Resume{
				ID:      fmt.Sprintf("resume-%d", i),
				OwnerID: fmt.Sprintf("user-%d", i),
				FileURL: fmt.Sprintf("files/resume-%d.pdf", i),
			},
			Application: domain.Application{
				ID:     fmt.Sprintf("app-%d", i),
				JobID:  "job-1",
				Status: domain.StatusApplied,
			},
			Candidate: domain.User{ID: fmt.Sprintf("user-%d", i), Name: fmt.Sprintf("Candidate %d", i)},
		})
	}
	return out
}

const structuredResumeJSON = `{"location":"Berlin","total_experience":"5 years","skills":["Go"],` +
	`"work_experience":[],"education":[],"certifications":[],"projects":[]}`

func TestScoreResumesSelectsClosestCandidate(t *testing.T) {
	repo := &hiringRepoFake{
		job: &domain.JobPost{
			ID:           "job-1",
			Title:        "Backend Engineer",
			Description:  "Build services",
			Requirements: "Go, Postgres",
		},
		candidates: threeCandidates(),
	}
	extractor := &extractorFake{texts: map[string]string{
		"files/resume-1.pdf": "resume one text",
		"files/resume-2.pdf": "resume two text",
		"files/resume-3.pdf": "resume three text",
	}}
	generator := &generatorFake{responses: []string{
		structuredResumeJSON,
		structuredResumeJSON,
		structuredResumeJSON,
		`{"score": 87, "key_metrics": ["5 years Go"], "reason": ["strong match"], "resume_id": "resume-2", "user_id": "user-2"}`,
	}}
	vectors := &vectorIndexFake{distances: map[string]float64{
		"resume-1": 0.41,
		"resume-2": 0.12,
		"resume-3": 0.77,
	}}

	uc := NewMatchResumesUseCase(repo, NewResumeStructurer(extractor, generator), &embedderFake{}, vectors, generator)

	result, err := uc.ScoreResumes(context.Background(), "job-1")
	if err != nil {
		t.Fatalf("ScoreResumes() error = %v", err)
	}

	score, ok := result.(map[string]any)
	if !ok {
		t.Fatalf("expected single scoring object, got %T", result)
	}
	if score["score"] != float64(87) {
		t.Fatalf("expected score 87, got %v", score["score"])
	}

	// 3 structuring calls + 1 scoring call.
	if len(generator.prompts) != 4 {
		t.Fatalf("expected 4 generator calls, got %d", len(generator.prompts))
	}
	scoringPrompt := generator.prompts[3]
	if !strings.Contains(scoringPrompt, `"resume-2"`) {
		t.Fatalf("scoring prompt should carry the lowest-distance candidate, got:\n%s", scoringPrompt)
	}
	if strings.Contains(scoringPrompt, `"id":"resume-3"`) {
		t.Fatalf("scoring prompt should carry only the top candidate")
	}

	if len(vectors.dropped) != 1 || !strings.HasPrefix(vectors.dropped[0], "resume_match_") {
		t.Fatalf("expected per-run scratch collection to be dropped, got %v", vectors.dropped)
	}
	if len(vectors.collections[vectors.dropped[0]]) != 0 {
		t.Fatalf("scratch collection should be gone after the run")
	}
}

func TestScoreResumesUsesDistinctScratchCollectionsPerRun(t *testing.T) {
	repo := &hiringRepoFake{
		job:        &domain.JobPost{ID: "job-1", Title: "Backend Engineer"},
		candidates: threeCandidates()[:1],
	}
	extractor := &extractorFake{texts: map[string]string{"files/resume-1.pdf": "resume"}}
	vectors := &vectorIndexFake{distances: map[string]float64{"resume-1": 0.2}}
	generator := &generatorFake{responses: []string{
		structuredResumeJSON, `{"score": 10}`,
		structuredResumeJSON, `{"score": 10}`,
	}}

	uc := NewMatchResumesUseCase(repo, NewResumeStructurer(extractor, generator), &embedderFake{}, vectors, generator)

	for i := 0; i < 2; i++ {
		if _, err := uc.ScoreResumes(context.Background(), "job-1"); err != nil {
			t.Fatalf("run %d error = %v", i, err)
		}
	}
	if len(vectors.dropped) != 2 {
		t.Fatalf("expected 2 dropped scratch collections, got %v", vectors.dropped)
	}
	if vectors.dropped[0] == vectors.dropped[1] {
		t.Fatalf("scratch collections must be unique per run, got %q twice", vectors.dropped[0])
	}
}

func TestScoreResumesRejectsJobWithoutActiveApplications(t *testing.T) {
	repo := &hiringRepoFake{job: &domain.JobPost{ID: "job-1", Title: "Backend Engineer"}}
	generator := &generatorFake{}
	uc := NewMatchResumesUseCase(repo, NewResumeStructurer(&extractorFake{}, generator), &embedderFake{}, &vectorIndexFake{}, generator)

	_, err := uc.ScoreResumes(context.Background(), "job-1")
	if err == nil {
		t.Fatalf("expected error for job without active applications")
	}
	if !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if len(generator.prompts) != 0 {
		t.Fatalf("no generator call expected, got %d", len(generator.prompts))
	}
}

func TestScoreResumesAbortsOnUnsupportedResumeFormat(t *testing.T) {
	repo := &hiringRepoFake{
		job:        &domain.JobPost{ID: "job-1", Title: "Backend Engineer"},
		candidates: threeCandidates(),
	}
	extractor := &extractorFake{
		err: domain.WrapError(domain.ErrUnsupportedFormat, "extract text", errors.New("resume-1.odt")),
	}
	vectors := &vectorIndexFake{}
	generator := &generatorFake{}

	uc := NewMatchResumesUseCase(repo, NewResumeStructurer(extractor, generator), &embedderFake{}, vectors, generator)

	_, err := uc.ScoreResumes(context.Background(), "job-1")
	if !domain.IsKind(err, domain.ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat to surface, got %v", err)
	}
	if len(vectors.dropped) != 1 {
		t.Fatalf("scratch collection must be dropped on failure too, got %v", vectors.dropped)
	}
}

func TestScoreResumesCachesStructuredText(t *testing.T) {
	repo := &hiringRepoFake{
		job:        &domain.JobPost{ID: "job-1", Title: "Backend Engineer"},
		candidates: threeCandidates()[:1],
	}
	extractor := &extractorFake{texts: map[string]string{"files/resume-1.pdf": "resume text"}}
	generator := &generatorFake{responses: []string{structuredResumeJSON, `{"score": 50}`}}
	vectors := &vectorIndexFake{distances: map[string]float64{"resume-1": 0.3}}

	uc := NewMatchResumesUseCase(repo, NewResumeStructurer(extractor, generator), &embedderFake{}, vectors, generator)
	if _, err := uc.ScoreResumes(context.Background(), "job-1"); err != nil {
		t.Fatalf("ScoreResumes() error = %v", err)
	}

	cached := repo.parsed["resume-1"]
	if !strings.Contains(cached, "Location: Berlin") {
		t.Fatalf("expected structured summary cached on the resume, got %q", cached)
	}
}

func TestScoreResumesScoringFallsBackToRawText(t *testing.T) {
	repo := &hiringRepoFake{
		job:        &domain.JobPost{ID: "job-1", Title: "Backend Engineer"},
		candidates: threeCandidates()[:1],
	}
	extractor := &extractorFake{texts: map[string]string{"files/resume-1.pdf": "resume text"}}
	generator := &generatorFake{responses: []string{
		structuredResumeJSON,
		"the model could not produce a score",
	}}
	vectors := &vectorIndexFake{distances: map[string]float64{"resume-1": 0.3}}

	uc := NewMatchResumesUseCase(repo, NewResumeStructurer(extractor, generator), &embedderFake{}, vectors, generator)

	result, err := uc.ScoreResumes(context.Background(), "job-1")
	if err != nil {
		t.Fatalf("ScoreResumes() error = %v", err)
	}
	if result != "the model could not produce a score" {
		t.Fatalf("expected raw-text degradation, got %v (%T)", result, result)
	}
}

func TestScoreResumesReportsRunToObserver(t *testing.T) {
	repo := &hiringRepoFake{
		job:        &domain.JobPost{ID: "job-1", Title: "Backend Engineer"},
		candidates: threeCandidates(),
	}
	extractor := &extractorFake{texts: map[string]string{
		"files/resume-1.pdf": "resume one text",
		"files/resume-2.pdf": "resume two text",
		"files/resume-3.pdf": "resume three text",
	}}
	generator := &generatorFake{responses: []string{
		structuredResumeJSON, structuredResumeJSON, structuredResumeJSON, `{"score": 70}`,
	}}
	vectors := &vectorIndexFake{distances: map[string]float64{
		"resume-1": 0.4, "resume-2": 0.1, "resume-3": 0.7,
	}}
	observer := &matchObserverFake{}

	uc := NewMatchResumesUseCase(repo, NewResumeStructurer(extractor, generator), &embedderFake{}, vectors, generator).
		WithObserver(observer)

	if _, err := uc.ScoreResumes(context.Background(), "job-1"); err != nil {
		t.Fatalf("ScoreResumes() error = %v", err)
	}

	if len(observer.runs) != 1 {
		t.Fatalf("expected exactly 1 observed run, got %d", len(observer.runs))
	}
	run := observer.runs[0]
	if run.candidates != 3 {
		t.Fatalf("expected 3 candidates reported, got %d", run.candidates)
	}
	if run.err != nil {
		t.Fatalf("successful run must report a nil error, got %v", run.err)
	}
}

func TestScoreResumesReportsFailedRunToObserver(t *testing.T) {
	repo := &hiringRepoFake{job: &domain.JobPost{ID: "job-1", Title: "Backend Engineer"}}
	generator := &generatorFake{}
	observer := &matchObserverFake{}

	uc := NewMatchResumesUseCase(repo, NewResumeStructurer(&extractorFake{}, generator), &embedderFake{}, &vectorIndexFake{}, generator).
		WithObserver(observer)

	if _, err := uc.ScoreResumes(context.Background(), "job-1"); err == nil {
		t.Fatalf("expected error for job without active applications")
	}

	if len(observer.runs) != 1 {
		t.Fatalf("expected exactly 1 observed run, got %d", len(observer.runs))
	}
	run := observer.runs[0]
	if run.candidates != 0 {
		t.Fatalf("expected 0 candidates reported, got %d", run.candidates)
	}
	if !domain.IsKind(run.err, domain.ErrInvalidInput) {
		t.Fatalf("expected the run error forwarded to the observer, got %v", run.err)
	}
}

func TestScoreResumesHonorsContextDeadlinePlumbing(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	repo := &hiringRepoFake{
		job:        &domain.JobPost{ID: "job-1", Title: "Backend Engineer"},
		candidates: threeCandidates()[:1],
	}
	extractor := &extractorFake{texts: map[string]string{"files/resume-1.pdf": "resume text"}}
	generator := &generatorFake{responses: []string{structuredResumeJSON, `{"score": 42}`}}
	vectors := &vectorIndexFake{distances: map[string]float64{"resume-1": 0.3}}

	uc := NewMatchResumesUseCase(repo, NewResumeStructurer(extractor, generator), &embedderFake{}, vectors, generator)
	if _, err := uc.ScoreResumes(ctx, "job-1"); err != nil {
		t.Fatalf("ScoreResumes() error = %v", err)
	}
}
