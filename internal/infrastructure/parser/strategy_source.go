package parser

import (
	"context"
	"fmt"
	"log/slog"

	"NewsPulse/internal/config"
	"NewsPulse/internal/domain"
	"NewsPulse/internal/feed"
	"NewsPulse/internal/ports"
)

// StrategySource implements ports.FeedSource by aggregating the configured
// sources over their registered provider strategies. Any source failure
// fails the whole fetch; the orchestrator treats that as a feed-level error.
type StrategySource struct {
	registry *feed.Registry
	sources  []config.SourceConfig
	logger   *slog.Logger
}

var _ ports.FeedSource = (*StrategySource)(nil)

// NewStrategySource wires the provider registry with config-defined sources.
func NewStrategySource(reg *feed.Registry, sources []config.SourceConfig, log *slog.Logger) *StrategySource {
	return &StrategySource{
		registry: reg,
		sources:  sources,
		logger:   log,
	}
}

// Fetch iterates over configured sources and merges their results, dropping
// same-URL repeats across sources, up to req.Max articles.
func (s *StrategySource) Fetch(ctx context.Context, req feed.Request) ([]domain.Article, error) {
	if s.registry == nil {
		return nil, fmt.Errorf("feed registry is not configured")
	}

	s.debug("fetch feed", "sources", len(s.sources), "max", req.Max)

	var aggregated []domain.Article
	seen := map[string]struct{}{}

	for _, source := range s.sources {
		provider, err := s.registry.Resolve(source.Name)
		if err != nil {
			return nil, fmt.Errorf("source %s: %w", source.Name, err)
		}

		remaining := req
		if req.Max > 0 {
			remaining.Max = req.Max - len(aggregated)
			if remaining.Max <= 0 {
				break
			}
		}

		results, err := provider.Fetch(ctx, remaining)
		if err != nil {
			return nil, fmt.Errorf("fetch source %s: %w", source.Name, err)
		}

		for _, article := range results {
			if _, ok := seen[article.URL]; ok {
				continue
			}
			seen[article.URL] = struct{}{}
			if article.Source == "" {
				article.Source = source.Name
			}
			aggregated = append(aggregated, article)
		}
		s.debug("source produced articles", "source", source.Name, "count", len(results))
	}

	s.debug("strategy source done", "total_articles", len(aggregated))
	return aggregated, nil
}

func (s *StrategySource) debug(msg string, args ...interface{}) {
	if s.logger != nil {
		s.logger.Debug(msg, args...)
	}
}
