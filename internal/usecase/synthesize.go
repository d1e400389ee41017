package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"NewsPulse/internal/domain"
	"NewsPulse/internal/ports"
)

// Scope is the target of one digest: a topic, or the global corpus.
type Scope struct {
	Topic *domain.Topic
}

// GlobalScope targets the whole corpus.
func GlobalScope() Scope {
	return Scope{}
}

// TopicScope targets one topic.
func TopicScope(topic domain.Topic) Scope {
	t := topic
	return Scope{Topic: &t}
}

// Label names the scope for prompts and error messages.
func (s Scope) Label() string {
	if s.Topic == nil {
		return "Global"
	}
	return s.Topic.Name
}

func (s Scope) topicID() *uuid.UUID {
	if s.Topic == nil {
		return nil
	}
	id := s.Topic.ID
	return &id
}

// SynthesizerDeps wires the digest synthesizer's collaborators. Illustrator
// may be nil when image generation is disabled.
type SynthesizerDeps struct {
	Articles    ports.ArticleStore
	Digests     ports.DigestStore
	Summarizer  ports.Summarizer
	Illustrator ports.Illustrator
	Logger      *slog.Logger

	Model    string
	Lookback time.Duration

	Now func() time.Time
}

// Synthesizer builds the daily digest for one scope and date, idempotently.
type Synthesizer struct {
	articles    ports.ArticleStore
	digests     ports.DigestStore
	summarizer  ports.Summarizer
	illustrator ports.Illustrator
	logger      *slog.Logger

	model    string
	lookback time.Duration

	now func() time.Time
}

// NewSynthesizer constructs the digest component.
func NewSynthesizer(deps SynthesizerDeps) *Synthesizer {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	lookback := deps.Lookback
	if lookback <= 0 {
		lookback = 24 * time.Hour
	}
	return &Synthesizer{
		articles:    deps.Articles,
		digests:     deps.Digests,
		summarizer:  deps.Summarizer,
		illustrator: deps.Illustrator,
		logger:      deps.Logger,
		model:       deps.Model,
		lookback:    lookback,
		now:         now,
	}
}

// Synthesize builds the daily digest for (scope, asOf). An existing digest
// is returned as-is unless force is set, in which case it is deleted and
// rebuilt. A window with no candidate articles yields (nil, nil); nothing
// is ever written for it. Summarization failure is fatal to this call only.
func (s *Synthesizer) Synthesize(ctx context.Context, scope Scope, asOf time.Time, force bool, maxItems int) (*domain.SynthesisResult, error) {
	dateKey := asOf.UTC().Truncate(24 * time.Hour)
	topicID := scope.topicID()

	existing, err := s.digests.FindByKey(ctx, domain.DigestDaily, topicID, dateKey)
	if err != nil {
		return nil, fmt.Errorf("look up digest for %s: %w", scope.Label(), err)
	}
	if existing != nil && !force {
		// Cached hit: no work, and the covered items are not re-counted.
		return &domain.SynthesisResult{
			DigestID:  existing.ID,
			Title:     existing.Title,
			ItemCount: 0,
		}, nil
	}
	if existing != nil {
		if err := s.digests.Delete(ctx, existing.ID); err != nil {
			return nil, fmt.Errorf("delete digest for regeneration: %w", err)
		}
	}

	candidates, err := s.articles.FindWindow(ctx, topicID, dateKey.Add(-s.lookback), dateKey, maxItems)
	if err != nil {
		return nil, fmt.Errorf("select candidates for %s: %w", scope.Label(), err)
	}
	if len(candidates) == 0 {
		s.debug("no candidates, skipping digest", "scope", scope.Label(), "date", dateKey.Format("2006-01-02"))
		return nil, nil
	}

	items := make([]domain.DigestItem, 0, len(candidates))
	for _, article := range candidates {
		items = append(items, domain.DigestItem{
			Title:       article.Title,
			Description: article.Description,
			Publisher:   article.Publisher,
		})
	}

	narrative, err := s.summarizer.Summarize(ctx, items, scope.Label(), dateKey)
	if err != nil {
		return nil, fmt.Errorf("summarize %s: %w", scope.Label(), err)
	}

	title, err := s.summarizer.TitleFor(ctx, narrative)
	if err != nil || title == "" {
		title = fmt.Sprintf("%s digest for %s", scope.Label(), dateKey.Format("January 2, 2006"))
	}

	image := s.illustrate(ctx, narrative, scope.Label())

	digest := domain.Digest{
		ID:        uuid.New(),
		Kind:      domain.DigestDaily,
		TopicID:   topicID,
		Date:      dateKey,
		Title:     title,
		Body:      narrative,
		Model:     s.model,
		CreatedAt: s.now().UTC(),
	}
	if image.Present {
		digest.ImageURL = image.URL
	}

	if err := s.digests.Insert(ctx, digest); err != nil {
		return nil, fmt.Errorf("store digest for %s: %w", scope.Label(), err)
	}

	return &domain.SynthesisResult{
		DigestID:    digest.ID,
		Title:       digest.Title,
		ItemCount:   len(candidates),
		Regenerated: existing != nil,
	}, nil
}

// illustrate is best-effort: any failure yields the typed absent image.
func (s *Synthesizer) illustrate(ctx context.Context, narrative, label string) domain.ImageResult {
	if s.illustrator == nil {
		return domain.ImageResult{}
	}
	url, err := s.illustrator.Illustrate(ctx, narrative, label)
	if err != nil {
		s.debug("image generation failed, storing digest without one", "scope", label, "error", err)
		return domain.ImageResult{}
	}
	return domain.ImageResult{URL: url, Present: true}
}

func (s *Synthesizer) debug(msg string, args ...interface{}) {
	if s.logger != nil {
		s.logger.Debug(msg, args...)
	}
}
