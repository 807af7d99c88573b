package mapreduce

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"library-chat/internal/chat"
	"library-chat/internal/chunker"
	"library-chat/internal/models"
)

// Turn is one emitted state of a map-reduce run. Every chunk produces two
// turns: a pending one (empty response) before the blocking completion call,
// then the realized one. A failed chunk carries its error and ends the run.
type Turn struct {
	Chunk       int
	Instruction string
	Response    string
	Pending     bool
	Err         error
}

// Driver feeds an oversized document through sequential chunk-scoped chat
// turns, carrying at most window messages of history between chunks.
type Driver struct {
	session *chat.Session
	budget  int
	window  int
}

func NewDriver(session *chat.Session, chunkBudget, window int) *Driver {
	if chunkBudget <= 0 {
		chunkBudget = models.DefaultChunkBudget
	}
	if window < 0 {
		window = models.DefaultWindow
	}
	return &Driver{session: session, budget: chunkBudget, window: window}
}

// Run chunks documentText and drives one chat turn per chunk, emitting turns
// on the returned channel. The channel closes when the run finishes, fails,
// or ctx is cancelled; cancellation is checked between chunks, never mid-call.
// Fails fast before any turn when documentText or prompt is empty.
func (d *Driver) Run(ctx context.Context, documentText, prompt, model string) (<-chan Turn, error) {
	if strings.TrimSpace(documentText) == "" {
		return nil, fmt.Errorf("%w: document text is required", models.ErrInvalidArgument)
	}
	if strings.TrimSpace(prompt) == "" {
		return nil, fmt.Errorf("%w: prompt is required", models.ErrInvalidArgument)
	}

	chunks := chunker.Split(documentText, d.budget)
	log.Info().Int("chunks", len(chunks)).Str("session", d.session.ID()).Msg("Starting map-reduce run")

	out := make(chan Turn)
	go func() {
		defer close(out)
		for n, chunk := range chunks {
			select {
			case <-ctx.Done():
				return
			default:
			}

			instruction := buildInstruction(n, len(chunks), chunk, prompt)

			// bound prompt growth: each turn sees at most the prior
			// turn's last message
			d.session.Window(d.window)

			if !emit(ctx, out, Turn{Chunk: n, Instruction: instruction, Pending: true}) {
				return
			}

			reply, err := d.session.Send(ctx, instruction, model)
			if err != nil {
				log.Error().Err(err).Int("chunk", n).Msg("Map-reduce turn failed")
				emit(ctx, out, Turn{
					Chunk:       n,
					Instruction: instruction,
					Response:    "We received an error: " + err.Error(),
					Err:         err,
				})
				return
			}
			if !emit(ctx, out, Turn{Chunk: n, Instruction: instruction, Response: reply}) {
				return
			}
		}
	}()
	return out, nil
}

func emit(ctx context.Context, out chan<- Turn, turn Turn) bool {
	select {
	case out <- turn:
		return true
	case <-ctx.Done():
		return false
	}
}

// buildInstruction words the chunk prompt by position: a lone chunk gets the
// direct request, a non-final chunk asks for an intermediate reviewable
// answer, the final chunk asks the model to combine its running understanding
// with the last part.
func buildInstruction(n, total int, chunk, prompt string) string {
	switch {
	case total == 1:
		return fmt.Sprintf(models.MapSingleTemplate, chunk, prompt)
	case n < total-1:
		return fmt.Sprintf(models.MapIntermediateTemplate, n+1, total, chunk, prompt)
	default:
		return fmt.Sprintf(models.MapFinalTemplate, n+1, total, chunk, prompt)
	}
}
