package chunker

import (
	"strings"

	"library-chat/internal/models"
)

// Split cuts text into chunks of at most budget whitespace-delimited words,
// breaking only on line boundaries. Joining the chunks with "\n" reconstructs
// the input exactly. The output always has at least one element; a single
// line over the budget still becomes its own chunk, because a line is never
// split. Pure function, safe for reuse across ingestion and map-reduce chat.
func Split(text string, budget int) []string {
	if budget <= 0 {
		budget = models.DefaultChunkBudget
	}

	var chunks []string
	var current []string
	count := 0
	for _, line := range strings.Split(text, "\n") {
		words := len(strings.Fields(line))
		if count+words > budget && len(current) > 0 {
			chunks = append(chunks, strings.Join(current, "\n"))
			current = []string{line}
			count = words
			continue
		}
		current = append(current, line)
		count += words
	}
	// flush the last chunk, even if it is a single line or empty
	return append(chunks, strings.Join(current, "\n"))
}
