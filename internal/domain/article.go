package domain

import (
	"time"

	"github.com/google/uuid"
)

// Article is a single feed item after ingestion. Classification happens
// before insert; the record is never updated afterward.
type Article struct {
	ID          uuid.UUID
	TopicID     *uuid.UUID
	Source      string
	Title       string
	Description string
	Publisher   string
	URL         string
	Fingerprint string
	ImageURL    string
	PublishedAt time.Time
	IngestedAt  time.Time
}

// Topic is one entry of the fixed taxonomy, seeded once at startup and
// effectively immutable afterward.
type Topic struct {
	ID           uuid.UUID
	Name         string
	Slug         string
	DisplayOrder int
}
