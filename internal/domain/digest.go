package domain

import (
	"time"

	"github.com/google/uuid"
)

// DigestKind distinguishes the digest cadence.
type DigestKind string

const (
	DigestDaily  DigestKind = "daily"
	DigestWeekly DigestKind = "weekly"
)

// Digest is a synthesized narrative over a time-windowed article set. TopicID
// nil means the global scope, which is a distinct uniqueness bucket from any
// topic. At most one digest exists per (kind, topic, date).
type Digest struct {
	ID        uuid.UUID
	Kind      DigestKind
	TopicID   *uuid.UUID
	Date      time.Time
	Title     string
	Body      string
	ImageURL  string
	Model     string
	CreatedAt time.Time
}

// DigestItem is the slice of an article handed to the summarizer.
type DigestItem struct {
	Title       string
	Description string
	Publisher   string
}

// ImageResult models the best-effort illustration outcome; absence is a
// typed state, not an error.
type ImageResult struct {
	URL     string
	Present bool
}

// SynthesisResult reports one digest synthesis. On a cached hit (existing
// digest, no force) ItemCount is zero: covered items are not re-counted.
type SynthesisResult struct {
	DigestID    uuid.UUID
	Title       string
	ItemCount   int
	Regenerated bool
}

// TopicSynthesis pairs a topic with its synthesis outcome inside a batch.
type TopicSynthesis struct {
	Topic  Topic
	Result *SynthesisResult
}

// BatchResult is the outcome of fanning synthesis out across the global
// scope and every topic. Errors holds one labeled string per failed target.
type BatchResult struct {
	Global *SynthesisResult
	Topics []TopicSynthesis
	Errors []string
}
