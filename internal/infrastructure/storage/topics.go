package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"NewsPulse/internal/domain"
	"NewsPulse/internal/ports"
)

// TopicRepository seeds and lists the fixed taxonomy.
type TopicRepository struct {
	db *sql.DB
}

var _ ports.TopicStore = (*TopicRepository)(nil)

// NewTopicRepository wires a sql.DB implementation.
func NewTopicRepository(db *sql.DB) *TopicRepository {
	return &TopicRepository{db: db}
}

// UpsertBySlug inserts the topic or refreshes name/order on an existing
// slug, returning the stored row. Idempotent; runs on every ingestion.
func (r *TopicRepository) UpsertBySlug(ctx context.Context, topic domain.Topic) (domain.Topic, error) {
	if topic.ID == uuid.Nil {
		topic.ID = uuid.New()
	}

	query, args, err := psql.
		Insert("topics").
		Columns("id", "name", "slug", "display_order").
		Values(topic.ID, topic.Name, topic.Slug, topic.DisplayOrder).
		Suffix(`ON CONFLICT (slug) DO UPDATE
            SET name = EXCLUDED.name, display_order = EXCLUDED.display_order
            RETURNING id`).
		ToSql()
	if err != nil {
		return domain.Topic{}, fmt.Errorf("build upsert: %w", err)
	}

	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&topic.ID); err != nil {
		return domain.Topic{}, fmt.Errorf("upsert topic %s: %w", topic.Slug, err)
	}
	return topic, nil
}

// List returns all topics in display order.
func (r *TopicRepository) List(ctx context.Context) ([]domain.Topic, error) {
	query, args, err := psql.
		Select("id", "name", "slug", "display_order").
		From("topics").
		OrderBy("display_order ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query topics: %w", err)
	}
	defer rows.Close()

	var topics []domain.Topic
	for rows.Next() {
		var topic domain.Topic
		if err := rows.Scan(&topic.ID, &topic.Name, &topic.Slug, &topic.DisplayOrder); err != nil {
			return nil, fmt.Errorf("scan topic: %w", err)
		}
		topics = append(topics, topic)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}
	return topics, nil
}
