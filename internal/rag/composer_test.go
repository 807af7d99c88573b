package rag

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"library-chat/internal/models"
)

type stubSearcher struct {
	matches    []models.Match
	err        error
	lastSearch string
	lastTopN   int
}

func (s *stubSearcher) Query(ctx context.Context, searchText string, topN int) ([]models.Match, error) {
	s.lastSearch = searchText
	s.lastTopN = topN
	return s.matches, s.err
}

func TestComposeOrdersSectionsByRank(t *testing.T) {
	searcher := &stubSearcher{matches: []models.Match{
		{ID: "guide-2", Score: 0.9, Metadata: models.ChunkMeta{Document: "guide", Text: "second chunk"}},
		{ID: "manual-0", Score: 0.7, Metadata: models.ChunkMeta{Document: "manual", Text: "first chunk"}},
	}}
	composer := NewComposer(searcher)

	prompt, err := composer.Compose(context.Background(), "how do I reset?", "", 5)
	require.NoError(t, err)

	assert.Contains(t, prompt, "Document section guide-2:\nsecond chunk")
	assert.Contains(t, prompt, "Document section manual-0:\nfirst chunk")
	assert.Less(t, strings.Index(prompt, "guide-2"), strings.Index(prompt, "manual-0"))
	assert.Contains(t, prompt, models.RefusalSentence)
	assert.True(t, strings.HasSuffix(prompt, "how do I reset?"))
}

func TestComposeDefaultsSearchTextToQuery(t *testing.T) {
	searcher := &stubSearcher{}
	composer := NewComposer(searcher)

	_, err := composer.Compose(context.Background(), "the question", "", 3)
	require.NoError(t, err)
	assert.Equal(t, "the question", searcher.lastSearch)
	assert.Equal(t, 3, searcher.lastTopN)
}

func TestComposeUsesExplicitSearchText(t *testing.T) {
	searcher := &stubSearcher{}
	composer := NewComposer(searcher)

	_, err := composer.Compose(context.Background(), "the question", "other keywords", 3)
	require.NoError(t, err)
	assert.Equal(t, "other keywords", searcher.lastSearch)
}

func TestComposeEmptyQueryRejected(t *testing.T) {
	composer := NewComposer(&stubSearcher{})
	_, err := composer.Compose(context.Background(), "", "", 3)
	assert.ErrorIs(t, err, models.ErrInvalidArgument)
}

func TestComposeWrapsQueryFailures(t *testing.T) {
	searcher := &stubSearcher{err: errors.New("index down")}
	composer := NewComposer(searcher)

	_, err := composer.Compose(context.Background(), "question", "", 3)
	assert.ErrorIs(t, err, models.ErrRetrieval)
	assert.Contains(t, err.Error(), "index down")
}
