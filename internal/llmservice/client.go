package llmservice

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"

	"library-chat/internal/config"
	"library-chat/internal/models"
)

// Completer is the narrow completion capability the chat engine consumes.
// Complete returns models.ErrContextTooLarge (wrapped) when the request does
// not fit the model context, so callers can branch with errors.Is instead of
// string-matching provider messages.
type Completer interface {
	Complete(ctx context.Context, history []models.Message, model string) (string, error)
}

// Client is a Completer backed by an OpenAI-compatible chat endpoint.
type Client struct {
	llm *openai.LLM
}

func NewClient(cfg *config.LLMConfig) (*Client, error) {
	llm, err := openai.New(
		openai.WithBaseURL(cfg.BaseURL),
		openai.WithToken(strings.TrimPrefix(cfg.Key, "Bearer ")),
		openai.WithModel(cfg.Model),
	)
	if err != nil {
		return nil, fmt.Errorf("initializing LLM: %w", err)
	}
	return &Client{llm: llm}, nil
}

// Complete sends the full ordered history and returns the model reply.
func (c *Client) Complete(ctx context.Context, history []models.Message, model string) (string, error) {
	content := make([]llms.MessageContent, 0, len(history))
	for _, msg := range history {
		role := llms.ChatMessageTypeHuman
		if msg.Role == models.RoleAssistant {
			role = llms.ChatMessageTypeAI
		}
		content = append(content, llms.MessageContent{
			Role:  role,
			Parts: []llms.ContentPart{llms.TextContent{Text: msg.Content}},
		})
	}

	opts := []llms.CallOption{llms.WithTemperature(models.DefaultTemperature)}
	if model != "" {
		opts = append(opts, llms.WithModel(model))
	}

	log.Debug().Int("messages", len(content)).Str("model", model).Msg("Generating content")
	res, err := c.llm.GenerateContent(ctx, content, opts...)
	if err != nil {
		if isContextTooLarge(err) {
			return "", fmt.Errorf("%w: %v", models.ErrContextTooLarge, err)
		}
		return "", fmt.Errorf("completion service: %w", err)
	}
	if len(res.Choices) == 0 {
		return "", fmt.Errorf("completion service: empty response")
	}
	return res.Choices[0].Content, nil
}

// isContextTooLarge recognizes the OpenAI-style oversized-request rejection.
// The provider only distinguishes it in the message body, so the translation
// to a typed sentinel has to happen here, at the adapter.
func isContextTooLarge(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "context_length_exceeded") ||
		strings.Contains(msg, "maximum context length") ||
		strings.Contains(msg, "context window")
}
