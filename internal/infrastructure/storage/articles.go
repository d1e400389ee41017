package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"NewsPulse/internal/domain"
	"NewsPulse/internal/ports"
)

// ArticleRepository persists ingested articles.
type ArticleRepository struct {
	db *sql.DB
}

var _ ports.ArticleStore = (*ArticleRepository)(nil)

// NewArticleRepository wires a sql.DB implementation.
func NewArticleRepository(db *sql.DB) *ArticleRepository {
	return &ArticleRepository{db: db}
}

// ExistsByFingerprint checks the dedup key. This is an optimization; the
// unique constraint in Insert is the actual correctness mechanism.
func (r *ArticleRepository) ExistsByFingerprint(ctx context.Context, fingerprint string) (bool, error) {
	query, args, err := psql.
		Select("1").
		From("articles").
		Where(sq.Eq{"fingerprint": fingerprint}).
		Limit(1).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build exists query: %w", err)
	}

	var one int
	err = r.db.QueryRowContext(ctx, query, args...).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("query fingerprint: %w", err)
	}
	return true, nil
}

// Insert stores a new article. A fingerprint collision surfaces as
// ports.ErrDuplicateFingerprint.
func (r *ArticleRepository) Insert(ctx context.Context, article domain.Article) error {
	query, args, err := psql.
		Insert("articles").
		Columns("id", "topic_id", "source", "title", "description", "publisher",
			"url", "fingerprint", "image_url", "published_at", "ingested_at").
		Values(article.ID, article.TopicID, article.Source, article.Title,
			article.Description, article.Publisher, article.URL,
			article.Fingerprint, article.ImageURL, article.PublishedAt,
			article.IngestedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		if isUniqueViolation(err) {
			return ports.ErrDuplicateFingerprint
		}
		return fmt.Errorf("insert article: %w", err)
	}
	return nil
}

// FindWindow returns the scope's articles published in (from, to], newest
// first, capped at limit. A nil topicID selects all articles (global scope).
func (r *ArticleRepository) FindWindow(ctx context.Context, topicID *uuid.UUID, from, to time.Time, limit int) ([]domain.Article, error) {
	builder := psql.
		Select("id", "topic_id", "source", "title", "description", "publisher",
			"url", "fingerprint", "image_url", "published_at", "ingested_at").
		From("articles").
		Where(sq.Gt{"published_at": from}).
		Where(sq.LtOrEq{"published_at": to}).
		OrderBy("published_at DESC")
	if topicID != nil {
		builder = builder.Where(sq.Eq{"topic_id": *topicID})
	}
	if limit > 0 {
		builder = builder.Limit(uint64(limit))
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build window query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query window: %w", err)
	}
	defer rows.Close()

	var articles []domain.Article
	for rows.Next() {
		var (
			article domain.Article
			topic   uuid.NullUUID
		)
		err := rows.Scan(&article.ID, &topic, &article.Source, &article.Title,
			&article.Description, &article.Publisher, &article.URL,
			&article.Fingerprint, &article.ImageURL, &article.PublishedAt,
			&article.IngestedAt)
		if err != nil {
			return nil, fmt.Errorf("scan article: %w", err)
		}
		if topic.Valid {
			id := topic.UUID
			article.TopicID = &id
		}
		articles = append(articles, article)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}
	return articles, nil
}
