// Package classify implements the two-stage topic classification: a pure
// keyword pass over the fixed taxonomy, escalating to an external classifier
// only when the keyword pass is not confident.
package classify

import (
	"strings"

	"NewsPulse/internal/domain"
	"NewsPulse/internal/taxonomy"
)

const defaultSaturation = 3

// Rule scores article text against the taxonomy keyword lists. Pure and
// deterministic; no I/O.
type Rule struct {
	saturation int
}

// NewRule builds the keyword classifier. saturation is the match count at
// which confidence reaches 1.0; values below one fall back to the default.
func NewRule(saturation int) *Rule {
	if saturation < 1 {
		saturation = defaultSaturation
	}
	return &Rule{saturation: saturation}
}

// Classify counts keyword hits per topic and returns the best match with
// provenance "rule". Ties keep the topic that appears first in the taxonomy;
// zero hits everywhere yields an empty slug with confidence 0.
func (r *Rule) Classify(title, description string) domain.TagResult {
	blob := strings.ToLower(title)
	if description != "" {
		blob += " " + strings.ToLower(description)
	}

	var (
		bestSlug    string
		bestCount   int
		bestMatched []string
	)

	for _, entry := range taxonomy.Entries() {
		var matched []string
		for _, keyword := range entry.Keywords {
			if strings.Contains(blob, keyword) {
				matched = append(matched, keyword)
			}
		}
		if len(matched) > bestCount {
			bestCount = len(matched)
			bestSlug = entry.Slug
			bestMatched = matched
		}
	}

	if bestCount == 0 {
		return domain.TagResult{Provenance: domain.ProvenanceRule}
	}

	confidence := float64(bestCount) / float64(r.saturation)
	if confidence > 1.0 {
		confidence = 1.0
	}

	return domain.TagResult{
		Slug:       bestSlug,
		Confidence: confidence,
		Provenance: domain.ProvenanceRule,
		Matched:    bestMatched,
	}
}
