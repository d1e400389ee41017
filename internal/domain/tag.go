package domain

// Provenance records which cascade stage produced a classification.
type Provenance string

const (
	ProvenanceRule Provenance = "rule"
	ProvenanceAI   Provenance = "ai"
)

// TagResult is the outcome of classifying one article. Slug is empty when no
// topic could be assigned. Ephemeral; never persisted.
type TagResult struct {
	Slug       string
	Confidence float64
	Provenance Provenance
	Matched    []string
	Rationale  string
}

// Tagged reports whether a topic was assigned.
func (t TagResult) Tagged() bool {
	return t.Slug != ""
}

// TopicOption is the (slug, name) pair handed to the external classifier so
// it can only answer within the fixed taxonomy.
type TopicOption struct {
	Slug string
	Name string
}

// AITag is the raw answer of the text-classification collaborator.
type AITag struct {
	Slug       string
	Confidence float64
	Rationale  string
}

// IngestStats accumulates the outcome of one ingestion run. Counters are
// additive per item; errored items appear in neither Inserted nor Duplicates.
// Returned to the caller and never stored.
type IngestStats struct {
	Fetched      int
	Inserted     int
	Duplicates   int
	TaggedByRule int
	TaggedByAI   int
	Untagged     int
	Errors       []string
}
