package models

import "fmt"

// Role is the author of a chat message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one turn of a conversation. Slice position encodes turn order.
type Message struct {
	Role    Role
	Content string
}

// NewUserMessage builds a user-authored message.
func NewUserMessage(content string) Message {
	return Message{Role: RoleUser, Content: content}
}

// NewAssistantMessage builds a model-authored message.
func NewAssistantMessage(content string) Message {
	return Message{Role: RoleAssistant, Content: content}
}

// ChunkMeta is the metadata stored alongside every vector.
type ChunkMeta struct {
	Document string
	Text     string
}

// Match is one ranked result of a similarity query.
type Match struct {
	ID       string
	Score    float32
	Metadata ChunkMeta
}

// VectorID returns the id of chunk i of the named document.
// Add assigns a dense 0..n-1 range, so Remove can probe ids in order
// and stop at the first gap.
func VectorID(title string, i int) string {
	return fmt.Sprintf("%s-%d", title, i)
}
