package app

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"NewsPulse/internal/config"
	"NewsPulse/internal/logging"
)

func TestDigestSkipsWhenAIUnconfigured(t *testing.T) {
	t.Parallel()

	a := &App{
		cfg:    config.Config{},
		logger: logging.New("error"),
	}

	// No coordinator is wired here: the gate must short-circuit before it.
	batch := a.Digest(context.Background(), time.Now().UTC(), false)

	assert.Nil(t, batch.Global)
	assert.Empty(t, batch.Topics)
	assert.Empty(t, batch.Errors)
}

func TestBuildFeedSourceUnknownProvider(t *testing.T) {
	t.Parallel()

	_, err := buildFeedSource(config.FeedConfig{
		Sources: []config.SourceConfig{{Name: "mystery", Provider: "carrier-pigeon"}},
	}, logging.New("error"))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "carrier-pigeon")
}

func TestBuildFeedSourceHeadlinesNeedsURL(t *testing.T) {
	t.Parallel()

	_, err := buildFeedSource(config.FeedConfig{
		Sources: []config.SourceConfig{{Name: "frontpage", Provider: "headlines"}},
	}, logging.New("error"))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "frontpage")
}
