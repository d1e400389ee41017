// Package app assembles the application from configuration: storage, feed
// providers, the classification cascade, and the ingest/digest use cases.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"NewsPulse/internal/classify"
	"NewsPulse/internal/config"
	"NewsPulse/internal/domain"
	"NewsPulse/internal/feed"
	"NewsPulse/internal/infrastructure/llm"
	"NewsPulse/internal/infrastructure/newsapi"
	"NewsPulse/internal/infrastructure/parser"
	"NewsPulse/internal/infrastructure/scheduler"
	"NewsPulse/internal/infrastructure/storage"
	"NewsPulse/internal/logging"
	"NewsPulse/internal/ports"
	"NewsPulse/internal/taxonomy"
	"NewsPulse/internal/usecase"
)

// App owns the wired components and the database handle.
type App struct {
	cfg    config.Config
	logger *slog.Logger
	db     *sql.DB

	topics      *storage.TopicRepository
	ingestor    *usecase.Ingestor
	coordinator *usecase.Coordinator
	scheduler   *usecase.Scheduler
}

// New connects to storage, runs migrations, and wires every component.
func New(ctx context.Context, cfg config.Config) (*App, error) {
	logger := logging.New(cfg.Logging.Level)

	db, err := storage.Open(ctx, cfg.Database.DSN)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := storage.Migrate(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate database: %w", err)
	}

	articleRepo := storage.NewArticleRepository(db)
	topicRepo := storage.NewTopicRepository(db)
	digestRepo := storage.NewDigestRepository(db)

	source, err := buildFeedSource(cfg.Feed, logger)
	if err != nil {
		db.Close()
		return nil, err
	}

	aiClient := llm.NewClient(cfg.AI)

	rule := classify.NewRule(cfg.Classify.Saturation)
	var classifier ports.TagClassifier
	if cfg.AI.Configured() {
		classifier = aiClient
	}
	cascade := classify.NewCascade(rule, classifier, cfg.AI.Threshold, logging.Component(logger, "classify"))

	ingestor := usecase.NewIngestor(usecase.IngestorDeps{
		Source:   source,
		Articles: articleRepo,
		Topics:   topicRepo,
		Resolver: cascade,
		Logger:   logging.Component(logger, "ingest"),
		Query:    cfg.Feed.Query,
		Language: cfg.Feed.Language,
		Country:  cfg.Feed.Country,
		Lookback: cfg.Digest.Lookback(),
	})

	synthesizerDeps := usecase.SynthesizerDeps{
		Articles:   articleRepo,
		Digests:    digestRepo,
		Summarizer: aiClient,
		Logger:     logging.Component(logger, "digest"),
		Model:      cfg.AI.ChatModel,
		Lookback:   cfg.Digest.Lookback(),
	}
	if cfg.Digest.GenerateImages {
		synthesizerDeps.Illustrator = aiClient
	}
	synthesizer := usecase.NewSynthesizer(synthesizerDeps)

	coordinator := usecase.NewCoordinator(synthesizer, topicRepo, cfg.Digest.MaxItems, logging.Component(logger, "digest-batch"))

	// Digests need the generative collaborator; without credentials the
	// recurring job is not scheduled at all.
	scheduledCoordinator := coordinator
	if !cfg.AI.Configured() {
		scheduledCoordinator = nil
		logger.Info("ai collaborator not configured, digest synthesis disabled")
	}

	location := cfg.Scheduler.Location()
	jobs := usecase.NewScheduler(
		scheduler.NewCronScheduler(cfg.Scheduler.IngestCron, location),
		scheduler.NewCronScheduler(cfg.Scheduler.DigestCron, location),
		ingestor,
		scheduledCoordinator,
		cfg.Ingest.BatchSize,
		cfg.AI.Configured(),
		logging.Component(logger, "scheduler"),
	)

	return &App{
		cfg:         cfg,
		logger:      logger,
		db:          db,
		topics:      topicRepo,
		ingestor:    ingestor,
		coordinator: coordinator,
		scheduler:   jobs,
	}, nil
}

// buildFeedSource registers one provider per configured source and wraps them
// in the aggregating feed source.
func buildFeedSource(cfg config.FeedConfig, logger *slog.Logger) (*parser.StrategySource, error) {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	httpClient := &http.Client{Timeout: timeout}

	registry := feed.NewRegistry()
	for _, source := range cfg.Sources {
		switch source.Provider {
		case "newsapi", "":
			baseURL := source.URL
			if baseURL == "" {
				baseURL = cfg.BaseURL
			}
			registry.Register(newsapi.NewClient(source.Name, baseURL, cfg.APIKey, httpClient))
		case "headlines":
			if source.URL == "" {
				return nil, fmt.Errorf("source %s: headlines provider needs a url", source.Name)
			}
			registry.Register(parser.NewHeadlineScanner(source.Name, source.URL, source.Options["publisher"], httpClient))
		default:
			return nil, fmt.Errorf("source %s: unknown provider %q", source.Name, source.Provider)
		}
	}

	return parser.NewStrategySource(registry, cfg.Sources, logging.Component(logger, "feed")), nil
}

// Logger exposes the root logger for command-level reporting.
func (a *App) Logger() *slog.Logger {
	return a.logger
}

// Ingest runs one ingestion batch. Max zero falls back to the configured
// batch size; useAI is additionally gated on the AI collaborator being
// configured.
func (a *App) Ingest(ctx context.Context, max int, useAI bool) domain.IngestStats {
	if max <= 0 {
		max = a.cfg.Ingest.BatchSize
	}
	return a.ingestor.Ingest(ctx, max, useAI && a.cfg.AI.Configured())
}

// Digest synthesizes the global and per-topic digests for asOf. Without a
// configured AI collaborator this is a no-op rather than one failure per
// target.
func (a *App) Digest(ctx context.Context, asOf time.Time, force bool) domain.BatchResult {
	if !a.cfg.AI.Configured() {
		a.logger.Info("digest synthesis skipped, ai collaborator not configured")
		return domain.BatchResult{}
	}
	return a.coordinator.SynthesizeAll(ctx, asOf, force)
}

// Seed upserts the fixed taxonomy without ingesting anything.
func (a *App) Seed(ctx context.Context) error {
	for order, entry := range taxonomy.Entries() {
		if _, err := a.topics.UpsertBySlug(ctx, domain.Topic{
			Name:         entry.Name,
			Slug:         entry.Slug,
			DisplayOrder: order,
		}); err != nil {
			return fmt.Errorf("upsert topic %s: %w", entry.Slug, err)
		}
	}
	return nil
}

// RunScheduled starts the recurring jobs and blocks until ctx is cancelled.
func (a *App) RunScheduled(ctx context.Context) error {
	if err := a.scheduler.Start(ctx); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}
	a.logger.Info("scheduler running",
		"ingest_cron", a.cfg.Scheduler.IngestCron,
		"digest_cron", a.cfg.Scheduler.DigestCron,
		"timezone", a.cfg.Scheduler.Timezone)

	<-ctx.Done()

	stopCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return a.scheduler.Stop(stopCtx)
}

// Close releases the database handle.
func (a *App) Close() error {
	return a.db.Close()
}
