package classify

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"NewsPulse/internal/domain"
)

type fakeClassifier struct {
	calls int
	tag   domain.AITag
	err   error
}

func (f *fakeClassifier) ClassifyTopic(_ context.Context, _ []domain.TopicOption, _, _ string) (domain.AITag, error) {
	f.calls++
	return f.tag, f.err
}

func TestCascadeShortCircuitsOnConfidentRule(t *testing.T) {
	t.Parallel()

	fake := &fakeClassifier{tag: domain.AITag{Slug: "startups", Confidence: 0.9}}
	cascade := NewCascade(NewRule(3), fake, DefaultThreshold, nil)

	result := cascade.Resolve(context.Background(), "New neural network model beats GPT-4 benchmark", "", true)

	assert.Equal(t, "ai-ml", result.Slug)
	assert.Equal(t, domain.ProvenanceRule, result.Provenance)
	assert.Zero(t, fake.calls, "confident rule result must not reach the collaborator")
}

func TestCascadeEscalatesWhenRuleUncertain(t *testing.T) {
	t.Parallel()

	fake := &fakeClassifier{tag: domain.AITag{Slug: "startups", Confidence: 0.8, Rationale: "product launch news"}}
	cascade := NewCascade(NewRule(3), fake, DefaultThreshold, nil)

	result := cascade.Resolve(context.Background(), "Company announces new product", "", true)

	require.Equal(t, 1, fake.calls)
	assert.Equal(t, "startups", result.Slug)
	assert.Equal(t, 0.8, result.Confidence)
	assert.Equal(t, domain.ProvenanceAI, result.Provenance)
	assert.Equal(t, "product launch news", result.Rationale)
}

func TestCascadeRespectsDisabledAI(t *testing.T) {
	t.Parallel()

	fake := &fakeClassifier{tag: domain.AITag{Slug: "startups"}}
	cascade := NewCascade(NewRule(3), fake, DefaultThreshold, nil)

	result := cascade.Resolve(context.Background(), "Company announces new product", "", false)

	assert.Zero(t, fake.calls)
	assert.Empty(t, result.Slug)
	assert.Equal(t, domain.ProvenanceRule, result.Provenance)
}

func TestCascadeWithoutConfiguredClassifier(t *testing.T) {
	t.Parallel()

	cascade := NewCascade(NewRule(3), nil, DefaultThreshold, nil)

	result := cascade.Resolve(context.Background(), "Company announces new product", "", true)

	assert.Empty(t, result.Slug)
	assert.Equal(t, domain.ProvenanceRule, result.Provenance)
}

func TestCascadeFallsBackOnCollaboratorError(t *testing.T) {
	t.Parallel()

	fake := &fakeClassifier{err: errors.New("timeout")}
	cascade := NewCascade(NewRule(3), fake, DefaultThreshold, nil)

	result := cascade.Resolve(context.Background(), "Company announces new product", "", true)

	require.Equal(t, 1, fake.calls)
	assert.Empty(t, result.Slug)
	assert.Equal(t, domain.ProvenanceRule, result.Provenance)
}

func TestCascadeCoercesUnknownSlug(t *testing.T) {
	t.Parallel()

	fake := &fakeClassifier{tag: domain.AITag{Slug: "not-a-topic", Confidence: 0.7, Rationale: "made up"}}
	cascade := NewCascade(NewRule(3), fake, DefaultThreshold, nil)

	result := cascade.Resolve(context.Background(), "Company announces new product", "", true)

	assert.Empty(t, result.Slug)
	assert.Equal(t, domain.ProvenanceAI, result.Provenance)
	assert.Equal(t, "made up", result.Rationale)
}

func TestCascadeCustomThreshold(t *testing.T) {
	t.Parallel()

	// One keyword hit gives 1/3 confidence; a higher threshold escalates it.
	fake := &fakeClassifier{tag: domain.AITag{Slug: "cybersecurity", Confidence: 0.95}}
	cascade := NewCascade(NewRule(3), fake, 0.5, nil)

	result := cascade.Resolve(context.Background(), "Ransomware gang hits hospital network", "", true)

	require.Equal(t, 1, fake.calls)
	assert.Equal(t, domain.ProvenanceAI, result.Provenance)
}
