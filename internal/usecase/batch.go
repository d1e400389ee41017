package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/bpradana/weave"

	"NewsPulse/internal/domain"
	"NewsPulse/internal/ports"
)

// Coordinator fans digest synthesis out across the global scope and every
// topic. Targets are independent weave tasks run with ContinueOnError: a
// failed target is recorded and never blocks the others.
type Coordinator struct {
	synthesizer *Synthesizer
	topics      ports.TopicStore
	maxItems    int
	logger      *slog.Logger
}

// NewCoordinator constructs the batch component.
func NewCoordinator(synthesizer *Synthesizer, topics ports.TopicStore, maxItems int, logger *slog.Logger) *Coordinator {
	if maxItems <= 0 {
		maxItems = 70
	}
	return &Coordinator{
		synthesizer: synthesizer,
		topics:      topics,
		maxItems:    maxItems,
		logger:      logger,
	}
}

// SynthesizeAll runs every target for asOf. Each target writes into its own
// (scope, date) uniqueness bucket, so the fan-out is safe to parallelize;
// cancelling ctx skips unstarted targets and lets in-flight ones finish.
func (c *Coordinator) SynthesizeAll(ctx context.Context, asOf time.Time, force bool) domain.BatchResult {
	var batch domain.BatchResult

	topics, err := c.topics.List(ctx)
	if err != nil {
		batch.Errors = append(batch.Errors, fmt.Sprintf("list topics: %v", err))
	}

	graph := weave.NewGraph()

	globalTask, err := weave.AddTask(graph, "digest-global",
		func(taskCtx context.Context, _ weave.DependencyResolver) (*domain.SynthesisResult, error) {
			return c.synthesizer.Synthesize(taskCtx, GlobalScope(), asOf, force, c.maxItems)
		})
	if err != nil {
		batch.Errors = append(batch.Errors, fmt.Sprintf("global: %v", err))
	}

	topicTasks := make([]*weave.Handle[*domain.SynthesisResult], len(topics))
	for idx, topic := range topics {
		handle, err := weave.AddTask(graph, "digest-topic-"+topic.Slug,
			func(taskCtx context.Context, _ weave.DependencyResolver) (*domain.SynthesisResult, error) {
				return c.synthesizer.Synthesize(taskCtx, TopicScope(topic), asOf, force, c.maxItems)
			})
		if err != nil {
			batch.Errors = append(batch.Errors, fmt.Sprintf("topic %s: %v", topic.Name, err))
			continue
		}
		topicTasks[idx] = handle
	}

	// Run's own error is the first task failure; per-target errors are
	// collected below through the handles instead.
	results, metrics, _ := graph.Run(ctx, weave.WithErrorStrategy(weave.ContinueOnError))

	if globalTask != nil {
		result, err := globalTask.Value(results)
		if err != nil {
			batch.Errors = append(batch.Errors, fmt.Sprintf("global: %v", err))
		} else {
			batch.Global = result
		}
	}

	for idx, topic := range topics {
		handle := topicTasks[idx]
		if handle == nil {
			continue
		}
		result, err := handle.Value(results)
		if err != nil {
			batch.Errors = append(batch.Errors, fmt.Sprintf("topic %s: %v", topic.Name, err))
			continue
		}
		batch.Topics = append(batch.Topics, domain.TopicSynthesis{Topic: topic, Result: result})
	}

	c.info("digest batch done",
		"targets", metrics.TasksTotal,
		"succeeded", metrics.TasksSucceeded,
		"failed", metrics.TasksFailed,
		"errors", len(batch.Errors))
	return batch
}

func (c *Coordinator) info(msg string, args ...interface{}) {
	if c.logger != nil {
		c.logger.Info(msg, args...)
	}
}
