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

// DigestRepository persists digests keyed by (kind, topic, date).
type DigestRepository struct {
	db *sql.DB
}

var _ ports.DigestStore = (*DigestRepository)(nil)

// NewDigestRepository wires a sql.DB implementation.
func NewDigestRepository(db *sql.DB) *DigestRepository {
	return &DigestRepository{db: db}
}

// FindByKey looks up the digest for one uniqueness bucket; nil topicID is
// the global bucket. Returns (nil, nil) when absent.
func (r *DigestRepository) FindByKey(ctx context.Context, kind domain.DigestKind, topicID *uuid.UUID, date time.Time) (*domain.Digest, error) {
	builder := psql.
		Select("id", "kind", "topic_id", "digest_date", "title", "body",
			"image_url", "model", "created_at").
		From("digests").
		Where(sq.Eq{"kind": string(kind)}).
		Where(sq.Eq{"digest_date": date})
	if topicID != nil {
		builder = builder.Where(sq.Eq{"topic_id": *topicID})
	} else {
		builder = builder.Where("topic_id IS NULL")
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build find query: %w", err)
	}

	var (
		digest domain.Digest
		kindDB string
		topic  uuid.NullUUID
	)
	err = r.db.QueryRowContext(ctx, query, args...).Scan(&digest.ID, &kindDB,
		&topic, &digest.Date, &digest.Title, &digest.Body, &digest.ImageURL,
		&digest.Model, &digest.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query digest: %w", err)
	}

	digest.Kind = domain.DigestKind(kindDB)
	if topic.Valid {
		id := topic.UUID
		digest.TopicID = &id
	}
	return &digest, nil
}

// Insert stores a new digest row.
func (r *DigestRepository) Insert(ctx context.Context, digest domain.Digest) error {
	query, args, err := psql.
		Insert("digests").
		Columns("id", "kind", "topic_id", "digest_date", "title", "body",
			"image_url", "model", "created_at").
		Values(digest.ID, string(digest.Kind), digest.TopicID, digest.Date,
			digest.Title, digest.Body, digest.ImageURL, digest.Model,
			digest.CreatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert digest: %w", err)
	}
	return nil
}

// Delete removes one digest; used only for forced regeneration.
func (r *DigestRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query, args, err := psql.
		Delete("digests").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("delete digest: %w", err)
	}
	return nil
}
