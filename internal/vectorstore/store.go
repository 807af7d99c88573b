package vectorstore

import (
	"context"

	"library-chat/internal/models"
)

// Entry is one (id, vector, metadata) triple to upsert.
type Entry struct {
	ID       string
	Vector   []float32
	Metadata models.ChunkMeta
}

// Store is the narrow vector-index capability the registry consumes.
type Store interface {
	Upsert(ctx context.Context, entries []Entry) error
	Fetch(ctx context.Context, id string) (bool, error)
	Delete(ctx context.Context, id string) error
	Query(ctx context.Context, vector []float32, topK int) ([]models.Match, error)
}
