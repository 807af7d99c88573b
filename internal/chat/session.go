package chat

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"library-chat/internal/llmservice"
	"library-chat/internal/models"
)

// Session owns one ordered conversation history. All calls against the same
// session must be serialized by the caller; independent sessions are fully
// parallel.
type Session struct {
	id        string
	history   []models.Message
	completer llmservice.Completer
}

func NewSession(completer llmservice.Completer) *Session {
	return &Session{
		id:        uuid.NewString(),
		completer: completer,
	}
}

// ID identifies the session in logs.
func (s *Session) ID() string {
	return s.id
}

// Send appends a user message and asks the model for a reply using the full
// current history. When the completion service rejects the request as too
// large, the oldest message is evicted and the call retried, until it fits or
// fewer than two messages remain. Any other failure propagates immediately.
// The user message stays in the history either way, so a failed attempt
// remains visible and editable.
func (s *Session) Send(ctx context.Context, content, model string) (string, error) {
	s.history = append(s.history, models.NewUserMessage(content))

	for {
		reply, err := s.completer.Complete(ctx, s.history, model)
		if err == nil {
			s.history = append(s.history, models.NewAssistantMessage(reply))
			return reply, nil
		}
		if !errors.Is(err, models.ErrContextTooLarge) {
			return "", err
		}
		if len(s.history) < 2 {
			// a single message is too large on its own, nothing to evict
			return "", err
		}
		log.Debug().Str("session", s.id).Int("history", len(s.history)).Msg("Context too large, evicting oldest message")
		s.history = s.history[1:]
	}
}

// Clear resets the history to empty.
func (s *Session) Clear() {
	s.history = nil
}

// Window truncates the history to at most the n most recent messages. The
// map-reduce driver uses it to bound prompt growth across chunk turns.
func (s *Session) Window(n int) {
	if n < 0 {
		n = 0
	}
	if len(s.history) > n {
		s.history = s.history[len(s.history)-n:]
	}
}

// History returns a snapshot of the current message log.
func (s *Session) History() []models.Message {
	out := make([]models.Message, len(s.history))
	copy(out, s.history)
	return out
}
