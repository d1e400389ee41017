package classify

import (
	"context"
	"log/slog"

	"NewsPulse/internal/domain"
	"NewsPulse/internal/ports"
	"NewsPulse/internal/taxonomy"
)

// DefaultThreshold is the rule confidence below which the external
// classifier is consulted: one keyword hit, effectively.
const DefaultThreshold = 0.33

// Cascade resolves an article's topic. The rule pass short-circuits the
// common case; the external classifier is the single I/O boundary and its
// failures never propagate as ingestion errors.
type Cascade struct {
	rule       *Rule
	classifier ports.TagClassifier
	threshold  float64
	logger     *slog.Logger
}

// NewCascade wires the rule classifier with an optional external fallback.
// classifier may be nil when no AI credential is configured.
func NewCascade(rule *Rule, classifier ports.TagClassifier, threshold float64, logger *slog.Logger) *Cascade {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return &Cascade{
		rule:       rule,
		classifier: classifier,
		threshold:  threshold,
		logger:     logger,
	}
}

// Resolve runs the cascade. The result always carries a provenance; the
// method itself never fails.
func (c *Cascade) Resolve(ctx context.Context, title, description string, useAI bool) domain.TagResult {
	ruleResult := c.rule.Classify(title, description)
	if ruleResult.Confidence >= c.threshold {
		return ruleResult
	}

	if !useAI || c.classifier == nil {
		return ruleResult
	}

	aiTag, err := c.classifier.ClassifyTopic(ctx, taxonomy.Options(), title, description)
	if err != nil {
		c.debug("ai classification failed, keeping rule result", "title", title, "error", err)
		return ruleResult
	}

	result := domain.TagResult{
		Slug:       aiTag.Slug,
		Confidence: aiTag.Confidence,
		Provenance: domain.ProvenanceAI,
		Rationale:  aiTag.Rationale,
	}

	if result.Slug != "" {
		if _, ok := taxonomy.BySlug(result.Slug); !ok {
			c.debug("ai returned slug outside taxonomy", "slug", result.Slug)
			result.Slug = ""
		}
	}

	return result
}

func (c *Cascade) debug(msg string, args ...interface{}) {
	if c.logger != nil {
		c.logger.Debug(msg, args...)
	}
}
