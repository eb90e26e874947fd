package bootstrap

import (
	"context"
	"fmt"

	"github.com/hrcore/talent-match/internal/config"
	"github.com/hrcore/talent-match/internal/core/ports"
	"github.com/hrcore/talent-match/internal/core/usecase"
	"github.com/hrcore/talent-match/internal/infrastructure/extractor/document"
	"github.com/hrcore/talent-match/internal/infrastructure/llm"
	"github.com/hrcore/talent-match/internal/infrastructure/llm/ollama"
	"github.com/hrcore/talent-match/internal/infrastructure/queue/nats"
	"github.com/hrcore/talent-match/internal/infrastructure/repository/postgres"
	"github.com/hrcore/talent-match/internal/infrastructure/resilience"
	"github.com/hrcore/talent-match/internal/infrastructure/storage/localfs"
	"github.com/hrcore/talent-match/internal/infrastructure/vector/qdrant"
)

// App wires the infrastructure into the use cases shared by the api and
// worker binaries.
type App struct {
	Config config.Config

	Queue   ports.MessageQueue
	Repo    ports.HiringRepository
	Matcher ports.MatchService
	BestJob ports.BestJobFinder
	Indexer ports.JobIndexer
	Content ports.ContentService
	Ingest  ports.ResumeIngestor

	closeFn func()
}

// Option adjusts optional wiring, e.g. routing pipeline outcomes into the
// process metrics owned by the binary.
type Option func(*options)

type options struct {
	matchObserver ports.MatchObserver
	retryObserver llm.RetryObserver
}

// WithMatchObserver reports every matching run's outcome to the observer.
func WithMatchObserver(observer ports.MatchObserver) Option {
	return func(o *options) { o.matchObserver = observer }
}

// WithLLMRetryObserver reports every retried provider call to the observer.
func WithLLMRetryObserver(observer llm.RetryObserver) Option {
	return func(o *options) { o.retryObserver = observer }
}

func New(ctx context.Context, cfg config.Config, opts ...Option) (*App, error) {
	var settings options
	for _, opt := range opts {
		opt(&settings)
	}

	llmConfig := llm.Config{
		Provider:      cfg.LLMProvider,
		GeminiAPIKey:  cfg.GeminiAPIKey,
		GeminiModel:   cfg.GeminiModel,
		OpenAIBaseURL: cfg.OpenAIBaseURL,
		OpenAIAPIKey:  cfg.OpenAIAPIKey,
		OpenAIModel:   cfg.OpenAIModel,
	}
	if err := llmConfig.Validate(); err != nil {
		return nil, err
	}

	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	repo := postgres.NewHiringRepository(db)
	if err := repo.EnsureSchema(ctx); err != nil {
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	storage, err := localfs.New(cfg.StoragePath)
	if err != nil {
		return nil, fmt.Errorf("init object storage: %w", err)
	}

	queue, err := nats.New(cfg.NATSURL, cfg.NATSSubject)
	if err != nil {
		return nil, fmt.Errorf("init message queue: %w", err)
	}

	generator, err := llm.NewGenerator(ctx, llmConfig, resilience.DefaultPolicy())
	if err != nil {
		return nil, fmt.Errorf("init llm generator: %w", err)
	}
	if settings.retryObserver != nil {
		generator.OnRetry(settings.retryObserver)
	}

	embedder := ollama.NewEmbedder(cfg.OllamaURL, cfg.OllamaEmbedModel)
	vectors := qdrant.New(cfg.QdrantURL)
	extractor := document.New(storage)
	structurer := usecase.NewResumeStructurer(extractor, generator)

	matcher := usecase.NewMatchResumesUseCase(repo, structurer, embedder, vectors, generator)
	if settings.matchObserver != nil {
		matcher.WithObserver(settings.matchObserver)
	}

	return &App{
		Config: cfg,
		Queue:  queue,
		Repo:   repo,

		Matcher: matcher,
		BestJob: usecase.NewBestJobUseCase(repo, structurer, embedder, vectors),
		Indexer: usecase.NewSyncJobPostsUseCase(repo, embedder, vectors),
		Content: usecase.NewContentUseCase(repo, generator),
		Ingest:  usecase.NewUploadResumeUseCase(repo, storage),

		closeFn: func() {
			queue.Close()
			_ = db.Close()
		},
	}, nil
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}
