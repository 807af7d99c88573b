package rag

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"library-chat/internal/models"
)

// Searcher is the slice of the registry the composer needs.
type Searcher interface {
	Query(ctx context.Context, searchText string, topN int) ([]models.Match, error)
}

// Composer assembles retrieval-augmented prompts.
type Composer struct {
	searcher Searcher
}

func NewComposer(searcher Searcher) *Composer {
	return &Composer{searcher: searcher}
}

// Compose retrieves the topN chunks nearest to searchText (queryText itself
// when searchText is empty) and builds a prompt: one labeled section per
// match in ranked order, the fixed answer-only-from-sections instruction, and
// queryText as the final request line. Deterministic string assembly; query
// failures surface wrapped in ErrRetrieval, no retries.
func (c *Composer) Compose(ctx context.Context, queryText, searchText string, topN int) (string, error) {
	if queryText == "" {
		return "", fmt.Errorf("%w: query text is required", models.ErrInvalidArgument)
	}
	if searchText == "" {
		searchText = queryText
	}
	if topN <= 0 {
		topN = models.DefaultTopN
	}

	matches, err := c.searcher.Query(ctx, searchText, topN)
	if err != nil {
		return "", fmt.Errorf("%w: %v", models.ErrRetrieval, err)
	}
	log.Debug().Int("matches", len(matches)).Msg("Composing augmented prompt")

	var prompt strings.Builder
	for _, match := range matches {
		prompt.WriteString(fmt.Sprintf(models.SectionHeaderTemplate, match.ID, match.Metadata.Text))
	}
	prompt.WriteString(models.RetrievalInstruction)
	prompt.WriteString(queryText)
	return prompt.String(), nil
}
