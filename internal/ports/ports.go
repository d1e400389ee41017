package ports

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"NewsPulse/internal/domain"
	"NewsPulse/internal/feed"
)

// ErrDuplicateFingerprint signals the store-level fingerprint unique
// constraint. Two runs racing on the same URL resolve through this error.
var ErrDuplicateFingerprint = errors.New("article fingerprint already stored")

// FeedSource pulls fresh articles from upstream providers with server-side
// recency filtering.
type FeedSource interface {
	Fetch(ctx context.Context, req feed.Request) ([]domain.Article, error)
}

// TagClassifier is the external text-classification collaborator used when
// the rule pass is not confident enough.
type TagClassifier interface {
	ClassifyTopic(ctx context.Context, topics []domain.TopicOption, title, description string) (domain.AITag, error)
}

// Summarizer turns a windowed article set into a narrative and derives a
// short title from it.
type Summarizer interface {
	Summarize(ctx context.Context, items []domain.DigestItem, scopeLabel string, date time.Time) (string, error)
	TitleFor(ctx context.Context, narrative string) (string, error)
}

// Illustrator produces an optional digest image. Failures are swallowed by
// the caller; image generation is never load-bearing.
type Illustrator interface {
	Illustrate(ctx context.Context, narrative, scopeLabel string) (string, error)
}

// ArticleStore persists articles. Insert must enforce fingerprint uniqueness
// and surface violations as ErrDuplicateFingerprint.
type ArticleStore interface {
	ExistsByFingerprint(ctx context.Context, fingerprint string) (bool, error)
	Insert(ctx context.Context, article domain.Article) error
	FindWindow(ctx context.Context, topicID *uuid.UUID, from, to time.Time, limit int) ([]domain.Article, error)
}

// TopicStore seeds and lists the fixed taxonomy.
type TopicStore interface {
	UpsertBySlug(ctx context.Context, topic domain.Topic) (domain.Topic, error)
	List(ctx context.Context) ([]domain.Topic, error)
}

// DigestStore persists digests keyed by (kind, topic, date); a nil topic is
// the global bucket.
type DigestStore interface {
	FindByKey(ctx context.Context, kind domain.DigestKind, topicID *uuid.UUID, date time.Time) (*domain.Digest, error)
	Insert(ctx context.Context, digest domain.Digest) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// Scheduler controls when recurring runs execute.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
