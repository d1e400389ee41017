// Package storage implements the store collaborators on Postgres. Queries
// are built with squirrel; the articles table carries the fingerprint unique
// constraint that is the sole cross-process dedup guarantee.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/lib/pq"
)

// psql builds queries with Postgres $n placeholders.
var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

const schema = `
CREATE TABLE IF NOT EXISTS topics (
    id            UUID PRIMARY KEY,
    name          TEXT NOT NULL UNIQUE,
    slug          TEXT NOT NULL UNIQUE,
    display_order INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS articles (
    id           UUID PRIMARY KEY,
    topic_id     UUID REFERENCES topics(id),
    source       TEXT NOT NULL,
    title        TEXT NOT NULL,
    description  TEXT NOT NULL DEFAULT '',
    publisher    TEXT NOT NULL DEFAULT '',
    url          TEXT NOT NULL,
    fingerprint  TEXT NOT NULL UNIQUE,
    image_url    TEXT NOT NULL DEFAULT '',
    published_at TIMESTAMPTZ NOT NULL,
    ingested_at  TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS digests (
    id          UUID PRIMARY KEY,
    kind        TEXT NOT NULL,
    topic_id    UUID REFERENCES topics(id),
    digest_date DATE NOT NULL,
    title       TEXT NOT NULL,
    body        TEXT NOT NULL,
    image_url   TEXT NOT NULL DEFAULT '',
    model       TEXT NOT NULL DEFAULT '',
    created_at  TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_articles_published_at ON articles(published_at);
CREATE INDEX IF NOT EXISTS idx_articles_topic ON articles(topic_id);

-- The null topic is the global bucket, distinct from every topic bucket.
CREATE UNIQUE INDEX IF NOT EXISTS digests_global_key
    ON digests(kind, digest_date) WHERE topic_id IS NULL;
CREATE UNIQUE INDEX IF NOT EXISTS digests_topic_key
    ON digests(kind, topic_id, digest_date) WHERE topic_id IS NOT NULL;
`

// Open connects to Postgres and verifies the connection.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return db, nil
}

// Migrate creates the schema; safe to run on every start.
func Migrate(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

// isUniqueViolation reports whether err is the Postgres unique-constraint
// error class.
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
