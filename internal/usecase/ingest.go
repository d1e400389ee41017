package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"NewsPulse/internal/domain"
	"NewsPulse/internal/feed"
	"NewsPulse/internal/fingerprint"
	"NewsPulse/internal/ports"
	"NewsPulse/internal/taxonomy"
)

// TagResolver decides an article's topic; satisfied by classify.Cascade.
type TagResolver interface {
	Resolve(ctx context.Context, title, description string, useAI bool) domain.TagResult
}

// IngestorDeps wires the ingestion orchestrator's collaborators.
type IngestorDeps struct {
	Source   ports.FeedSource
	Articles ports.ArticleStore
	Topics   ports.TopicStore
	Resolver TagResolver
	Logger   *slog.Logger

	Query    string
	Language string
	Country  string
	Lookback time.Duration

	Now func() time.Time
}

// Ingestor pulls a feed batch, deduplicates by fingerprint, classifies, and
// persists, tolerating per-item failures.
type Ingestor struct {
	source   ports.FeedSource
	articles ports.ArticleStore
	topics   ports.TopicStore
	resolver TagResolver
	logger   *slog.Logger

	query    string
	language string
	country  string
	lookback time.Duration

	now func() time.Time
}

// NewIngestor constructs the orchestration component.
func NewIngestor(deps IngestorDeps) *Ingestor {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	lookback := deps.Lookback
	if lookback <= 0 {
		lookback = 24 * time.Hour
	}
	return &Ingestor{
		source:   deps.Source,
		articles: deps.Articles,
		topics:   deps.Topics,
		resolver: deps.Resolver,
		logger:   deps.Logger,
		query:    deps.Query,
		language: deps.Language,
		country:  deps.Country,
		lookback: lookback,
		now:      now,
	}
}

// Ingest runs one batch. The returned stats carry both counters and
// human-readable error strings; callers inspect both. Batch-level failures
// (taxonomy seed, feed fetch) stop the run with Fetched 0 and one error.
func (i *Ingestor) Ingest(ctx context.Context, maxItems int, useAI bool) domain.IngestStats {
	var stats domain.IngestStats

	topicsBySlug, err := i.seedTopics(ctx)
	if err != nil {
		stats.Errors = append(stats.Errors, fmt.Sprintf("seed taxonomy: %v", err))
		return stats
	}

	// The feed filters by recency server-side; no client-side re-filter.
	items, err := i.source.Fetch(ctx, feed.Request{
		Query:    i.query,
		Language: i.language,
		Country:  i.country,
		Max:      maxItems,
		Since:    i.now().UTC().Add(-i.lookback),
	})
	if err != nil {
		stats.Errors = append(stats.Errors, fmt.Sprintf("fetch feed: %v", err))
		return stats
	}
	stats.Fetched = len(items)

	for _, item := range items {
		i.processItem(ctx, item, topicsBySlug, useAI, &stats)
	}

	i.info("ingest done",
		"fetched", stats.Fetched,
		"inserted", stats.Inserted,
		"duplicates", stats.Duplicates,
		"rule", stats.TaggedByRule,
		"ai", stats.TaggedByAI,
		"untagged", stats.Untagged,
		"errors", len(stats.Errors))
	return stats
}

func (i *Ingestor) processItem(ctx context.Context, item domain.Article, topicsBySlug map[string]domain.Topic, useAI bool, stats *domain.IngestStats) {
	fp := fingerprint.FromURL(item.URL)

	exists, err := i.articles.ExistsByFingerprint(ctx, fp)
	if err != nil {
		stats.Errors = append(stats.Errors, fmt.Sprintf("%s: %v", item.Title, err))
		return
	}
	if exists {
		stats.Duplicates++
		return
	}

	tag := i.resolver.Resolve(ctx, item.Title, item.Description, useAI)
	switch {
	case !tag.Tagged():
		stats.Untagged++
	case tag.Provenance == domain.ProvenanceAI:
		stats.TaggedByAI++
	default:
		stats.TaggedByRule++
	}

	article := item
	article.ID = uuid.New()
	article.Fingerprint = fp
	article.IngestedAt = i.now().UTC()
	if tag.Tagged() {
		if topic, ok := topicsBySlug[tag.Slug]; ok {
			id := topic.ID
			article.TopicID = &id
		}
	}

	err = i.articles.Insert(ctx, article)
	if errors.Is(err, ports.ErrDuplicateFingerprint) {
		// Lost a race with a concurrent run; the constraint is the arbiter.
		stats.Duplicates++
		return
	}
	if err != nil {
		stats.Errors = append(stats.Errors, fmt.Sprintf("%s: %v", item.Title, err))
		return
	}
	stats.Inserted++
}

// seedTopics upserts the fixed taxonomy by slug and maps slugs to stored
// rows for topic assignment.
func (i *Ingestor) seedTopics(ctx context.Context) (map[string]domain.Topic, error) {
	topicsBySlug := make(map[string]domain.Topic)
	for order, entry := range taxonomy.Entries() {
		stored, err := i.topics.UpsertBySlug(ctx, domain.Topic{
			Name:         entry.Name,
			Slug:         entry.Slug,
			DisplayOrder: order,
		})
		if err != nil {
			return nil, fmt.Errorf("upsert topic %s: %w", entry.Slug, err)
		}
		topicsBySlug[entry.Slug] = stored
	}
	return topicsBySlug, nil
}

func (i *Ingestor) info(msg string, args ...interface{}) {
	if i.logger != nil {
		i.logger.Info(msg, args...)
	}
}
