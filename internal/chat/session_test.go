package chat

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"library-chat/internal/models"
)

// stubCompleter replies once the history is at most fitLimit messages long,
// raising the context-too-large sentinel before that. fitLimit 0 never fits.
type stubCompleter struct {
	fitLimit int
	calls    int
	reply    string
	err      error
}

func (s *stubCompleter) Complete(ctx context.Context, history []models.Message, model string) (string, error) {
	s.calls++
	if s.err != nil {
		return "", s.err
	}
	if s.fitLimit > 0 && len(history) <= s.fitLimit {
		return s.reply, nil
	}
	return "", fmt.Errorf("%w: request rejected", models.ErrContextTooLarge)
}

func TestSendAppendsBothTurns(t *testing.T) {
	session := NewSession(&stubCompleter{fitLimit: 100, reply: "hi there"})

	reply, err := session.Send(context.Background(), "hello", "test-model")
	require.NoError(t, err)
	assert.Equal(t, "hi there", reply)

	history := session.History()
	require.Len(t, history, 2)
	assert.Equal(t, models.RoleUser, history[0].Role)
	assert.Equal(t, "hello", history[0].Content)
	assert.Equal(t, models.RoleAssistant, history[1].Role)
	assert.Equal(t, "hi there", history[1].Content)
}

func TestEvictionDropsOldestUntilFit(t *testing.T) {
	completer := &stubCompleter{fitLimit: 2, reply: "ok"}
	session := NewSession(completer)
	session.history = []models.Message{
		models.NewUserMessage("turn 1"),
		models.NewAssistantMessage("reply 1"),
		models.NewUserMessage("turn 2"),
		models.NewAssistantMessage("reply 2"),
	}

	reply, err := session.Send(context.Background(), "turn 3", "test-model")
	require.NoError(t, err)
	assert.Equal(t, "ok", reply)

	// 5 messages shrank to 2 before the call fit, then the reply appended
	history := session.History()
	require.Len(t, history, 3)
	assert.Equal(t, "reply 2", history[0].Content)
	assert.Equal(t, "turn 3", history[1].Content)
	assert.Equal(t, "ok", history[2].Content)
	assert.Equal(t, 4, completer.calls)
}

func TestEvictionTerminates(t *testing.T) {
	completer := &stubCompleter{} // never fits
	session := NewSession(completer)
	session.history = []models.Message{
		models.NewUserMessage("turn 1"),
		models.NewAssistantMessage("reply 1"),
		models.NewUserMessage("turn 2"),
	}

	_, err := session.Send(context.Background(), "turn 4", "test-model")
	assert.ErrorIs(t, err, models.ErrContextTooLarge)

	// shrank 4 -> 1, one attempt per size, then gave up
	assert.Equal(t, 4, completer.calls)
	assert.Len(t, session.History(), 1)
}

func TestSingleOversizedMessagePropagates(t *testing.T) {
	completer := &stubCompleter{}
	session := NewSession(completer)

	_, err := session.Send(context.Background(), "gigantic", "test-model")
	assert.ErrorIs(t, err, models.ErrContextTooLarge)
	assert.Equal(t, 1, completer.calls)
	assert.Len(t, session.History(), 1)
}

func TestOtherFailuresPropagateWithoutEviction(t *testing.T) {
	completer := &stubCompleter{err: errors.New("quota exhausted")}
	session := NewSession(completer)
	session.history = []models.Message{
		models.NewUserMessage("turn 1"),
		models.NewAssistantMessage("reply 1"),
	}

	_, err := session.Send(context.Background(), "turn 2", "test-model")
	require.Error(t, err)
	assert.NotErrorIs(t, err, models.ErrContextTooLarge)
	assert.Equal(t, 1, completer.calls)

	// the attempted user message stays recorded
	history := session.History()
	require.Len(t, history, 3)
	assert.Equal(t, "turn 2", history[2].Content)
}

func TestClear(t *testing.T) {
	session := NewSession(&stubCompleter{fitLimit: 100, reply: "ok"})
	_, err := session.Send(context.Background(), "hello", "test-model")
	require.NoError(t, err)

	session.Clear()
	assert.Empty(t, session.History())
}

func TestWindow(t *testing.T) {
	session := NewSession(&stubCompleter{})
	session.history = []models.Message{
		models.NewUserMessage("a"),
		models.NewAssistantMessage("b"),
		models.NewUserMessage("c"),
	}

	session.Window(1)
	history := session.History()
	require.Len(t, history, 1)
	assert.Equal(t, "c", history[0].Content)

	session.Window(0)
	assert.Empty(t, session.History())
}
