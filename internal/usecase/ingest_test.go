package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"NewsPulse/internal/domain"
	"NewsPulse/internal/fingerprint"
	"NewsPulse/internal/ports"
	"NewsPulse/internal/taxonomy"
)

func newTestIngestor(source *fakeFeed, articles *fakeArticleStore, topics *fakeTopicStore, resolver *fakeResolver) *Ingestor {
	return NewIngestor(IngestorDeps{
		Source:   source,
		Articles: articles,
		Topics:   topics,
		Resolver: resolver,
		Query:    "technology",
		Language: "en",
		Now:      func() time.Time { return time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC) },
	})
}

func TestIngestHappyPath(t *testing.T) {
	t.Parallel()

	source := &fakeFeed{articles: []domain.Article{
		{Title: "New neural network model beats GPT-4 benchmark", URL: "https://example.com/ai", PublishedAt: time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)},
		{Title: "Company announces new product", URL: "https://example.com/product", PublishedAt: time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)},
	}}
	articles := newFakeArticleStore()
	topics := newFakeTopicStore()
	resolver := &fakeResolver{byTitle: map[string]domain.TagResult{
		"New neural network model beats GPT-4 benchmark": {Slug: "ai-ml", Confidence: 1.0, Provenance: domain.ProvenanceRule},
	}}

	stats := newTestIngestor(source, articles, topics, resolver).Ingest(context.Background(), 50, false)

	assert.Equal(t, 2, stats.Fetched)
	assert.Equal(t, 2, stats.Inserted)
	assert.Equal(t, 0, stats.Duplicates)
	assert.Equal(t, 1, stats.TaggedByRule)
	assert.Equal(t, 0, stats.TaggedByAI)
	assert.Equal(t, 1, stats.Untagged)
	assert.Empty(t, stats.Errors)

	require.Len(t, articles.stored(), 2)
	aiTopic := topics.bySlug["ai-ml"]
	for _, stored := range articles.stored() {
		assert.NotEqual(t, "", stored.Fingerprint)
		assert.False(t, stored.IngestedAt.IsZero())
		if stored.Title == "New neural network model beats GPT-4 benchmark" {
			require.NotNil(t, stored.TopicID)
			assert.Equal(t, aiTopic.ID, *stored.TopicID)
		} else {
			assert.Nil(t, stored.TopicID)
		}
	}
}

func TestIngestSeedsTaxonomy(t *testing.T) {
	t.Parallel()

	source := &fakeFeed{}
	topics := newFakeTopicStore()
	resolver := &fakeResolver{}

	ingestor := newTestIngestor(source, newFakeArticleStore(), topics, resolver)
	ingestor.Ingest(context.Background(), 10, false)
	ingestor.Ingest(context.Background(), 10, false)

	// Upsert is idempotent: a second run touches the same rows.
	assert.Equal(t, len(taxonomy.Entries())*2, topics.upserts)
	assert.Len(t, topics.bySlug, len(taxonomy.Entries()))
}

func TestIngestFeedRequest(t *testing.T) {
	t.Parallel()

	source := &fakeFeed{}
	ingestor := newTestIngestor(source, newFakeArticleStore(), newFakeTopicStore(), &fakeResolver{})

	ingestor.Ingest(context.Background(), 25, false)

	assert.Equal(t, "technology", source.gotReq.Query)
	assert.Equal(t, "en", source.gotReq.Language)
	assert.Equal(t, 25, source.gotReq.Max)
	assert.Equal(t, time.Date(2025, 3, 9, 12, 0, 0, 0, time.UTC), source.gotReq.Since)
}

func TestIngestRerunCountsDuplicates(t *testing.T) {
	t.Parallel()

	source := &fakeFeed{articles: []domain.Article{
		{Title: "Quantum chip update", URL: "https://example.com/quantum"},
	}}
	articles := newFakeArticleStore()
	ingestor := newTestIngestor(source, articles, newFakeTopicStore(), &fakeResolver{})

	first := ingestor.Ingest(context.Background(), 50, false)
	second := ingestor.Ingest(context.Background(), 50, false)

	assert.Equal(t, 1, first.Inserted)
	assert.Equal(t, 1, second.Fetched)
	assert.Equal(t, 0, second.Inserted)
	assert.Equal(t, 1, second.Duplicates)
	assert.Len(t, articles.stored(), 1)
}

func TestIngestNormalizedURLVariantsCollapse(t *testing.T) {
	t.Parallel()

	source := &fakeFeed{articles: []domain.Article{
		{Title: "Original", URL: "https://site.com/a"},
		{Title: "Tracked repost", URL: "https://Site.com/a/?utm_source=x"},
	}}
	articles := newFakeArticleStore()

	stats := newTestIngestor(source, articles, newFakeTopicStore(), &fakeResolver{}).Ingest(context.Background(), 50, false)

	assert.Equal(t, 1, stats.Inserted)
	assert.Equal(t, 1, stats.Duplicates)
	assert.Len(t, articles.stored(), 1)
}

func TestIngestFeedFailure(t *testing.T) {
	t.Parallel()

	source := &fakeFeed{err: errors.New("upstream 503")}
	articles := newFakeArticleStore()

	stats := newTestIngestor(source, articles, newFakeTopicStore(), &fakeResolver{}).Ingest(context.Background(), 50, false)

	assert.Equal(t, 0, stats.Fetched)
	assert.Equal(t, 0, stats.Inserted)
	require.Len(t, stats.Errors, 1)
	assert.Contains(t, stats.Errors[0], "upstream 503")
	assert.Empty(t, articles.stored())
}

func TestIngestSeedFailureStopsRun(t *testing.T) {
	t.Parallel()

	source := &fakeFeed{articles: []domain.Article{{Title: "x", URL: "https://example.com/x"}}}
	topics := newFakeTopicStore()
	topics.upsertErr = errors.New("db down")

	stats := newTestIngestor(source, newFakeArticleStore(), topics, &fakeResolver{}).Ingest(context.Background(), 50, false)

	assert.Equal(t, 0, stats.Fetched)
	require.Len(t, stats.Errors, 1)
	assert.Contains(t, stats.Errors[0], "db down")
	assert.Equal(t, 0, source.calls)
}

func TestIngestItemFailureContinuesBatch(t *testing.T) {
	t.Parallel()

	source := &fakeFeed{articles: []domain.Article{
		{Title: "Broken row", URL: "https://example.com/broken"},
		{Title: "Fine row", URL: "https://example.com/fine"},
	}}
	articles := newFakeArticleStore()
	articles.insertErrs["Broken row"] = errors.New("value too long")

	stats := newTestIngestor(source, articles, newFakeTopicStore(), &fakeResolver{}).Ingest(context.Background(), 50, false)

	assert.Equal(t, 2, stats.Fetched)
	assert.Equal(t, 1, stats.Inserted)
	require.Len(t, stats.Errors, 1)
	assert.Contains(t, stats.Errors[0], "Broken row")
	assert.Contains(t, stats.Errors[0], "value too long")
}

func TestIngestInsertRaceCountsDuplicate(t *testing.T) {
	t.Parallel()

	source := &fakeFeed{articles: []domain.Article{
		{Title: "Raced", URL: "https://example.com/raced"},
	}}
	articles := newFakeArticleStore()
	articles.insertOverride = ports.ErrDuplicateFingerprint

	stats := newTestIngestor(source, articles, newFakeTopicStore(), &fakeResolver{}).Ingest(context.Background(), 50, false)

	assert.Equal(t, 0, stats.Inserted)
	assert.Equal(t, 1, stats.Duplicates)
	assert.Empty(t, stats.Errors)
}

func TestIngestAIProvenanceCounted(t *testing.T) {
	t.Parallel()

	source := &fakeFeed{articles: []domain.Article{
		{Title: "Obscure policy note", URL: "https://example.com/policy"},
	}}
	resolver := &fakeResolver{byTitle: map[string]domain.TagResult{
		"Obscure policy note": {Slug: "cybersecurity", Confidence: 0.8, Provenance: domain.ProvenanceAI},
	}}

	stats := newTestIngestor(source, newFakeArticleStore(), newFakeTopicStore(), resolver).Ingest(context.Background(), 50, true)

	assert.Equal(t, 1, stats.TaggedByAI)
	assert.Equal(t, 0, stats.TaggedByRule)
	assert.Equal(t, 0, stats.Untagged)
}

func TestIngestFingerprintMatchesArticleURL(t *testing.T) {
	t.Parallel()

	source := &fakeFeed{articles: []domain.Article{
		{Title: "One", URL: "https://example.com/one"},
	}}
	articles := newFakeArticleStore()

	newTestIngestor(source, articles, newFakeTopicStore(), &fakeResolver{}).Ingest(context.Background(), 50, false)

	stored := articles.stored()
	require.Len(t, stored, 1)
	assert.Equal(t, fingerprint.FromURL("https://example.com/one"), stored[0].Fingerprint)
}
