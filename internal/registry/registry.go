package registry

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/rs/zerolog/log"

	"library-chat/internal/chunker"
	"library-chat/internal/embedding"
	"library-chat/internal/models"
	"library-chat/internal/vectorstore"
)

// DurableList persists the sorted document title list.
type DurableList interface {
	Load(ctx context.Context) ([]string, error)
	Save(ctx context.Context, titles []string) error
}

// Registry owns the local title list and the corresponding vectors in the
// remote index. It is the sole writer of both; a title in the list has
// exactly its chunk count of vectors, ids "{title}-0".."{title}-{n-1}".
type Registry struct {
	mu       sync.Mutex
	titles   []string
	budget   int
	embedder embedding.Embedder
	store    vectorstore.Store
	list     DurableList
}

// NewRegistry loads the persisted title list and returns a ready registry.
func NewRegistry(ctx context.Context, embedder embedding.Embedder, store vectorstore.Store, list DurableList, chunkBudget int) (*Registry, error) {
	titles, err := list.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading document list: %w", err)
	}
	sort.Strings(titles)
	if chunkBudget <= 0 {
		chunkBudget = models.DefaultChunkBudget
	}
	return &Registry{
		titles:   titles,
		budget:   chunkBudget,
		embedder: embedder,
		store:    store,
		list:     list,
	}, nil
}

// List returns the sorted known titles. No side effects.
func (r *Registry) List() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.titles))
	copy(out, r.titles)
	return out
}

// Add chunks text, embeds every chunk in one batch, upserts one vector per
// chunk, and only then registers and persists the title. Returns the chunk
// count. A mid-batch embedding or upsert failure leaves the local list
// untouched; vectors already written by the failed attempt are not rolled
// back.
func (r *Registry) Add(ctx context.Context, title, text string) (int, error) {
	if title == "" {
		return 0, fmt.Errorf("%w: title is required", models.ErrInvalidArgument)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.contains(title) {
		return 0, fmt.Errorf("%w: %q", models.ErrAlreadyExists, title)
	}

	chunks := chunker.Split(text, r.budget)
	vectors, err := r.embedder.Embed(ctx, chunks)
	if err != nil {
		return 0, fmt.Errorf("%w: embedding %q: %v", models.ErrIndexWrite, title, err)
	}

	entries := make([]vectorstore.Entry, len(chunks))
	for i, chunk := range chunks {
		entries[i] = vectorstore.Entry{
			ID:       models.VectorID(title, i),
			Vector:   vectors[i],
			Metadata: models.ChunkMeta{Document: title, Text: chunk},
		}
	}
	if err := r.store.Upsert(ctx, entries); err != nil {
		return 0, fmt.Errorf("%w: upserting %q: %v", models.ErrIndexWrite, title, err)
	}

	r.titles = append(r.titles, title)
	sort.Strings(r.titles)
	if err := r.list.Save(ctx, r.titles); err != nil {
		// vectors are in the index and the title is registered in memory;
		// the remote index is the source of truth, so surface the error
		// without undoing either
		return len(chunks), fmt.Errorf("persisting document list: %w", err)
	}

	log.Info().Str("title", title).Int("chunks", len(chunks)).Msg("Added document")
	return len(chunks), nil
}

// Remove probes ids "{title}-0" upward, deleting each existing vector, and
// stops at the first gap. Add assigns dense ranges, so the scan is bounded by
// the chunk count. Returns the number of vectors deleted; a registered title
// with no vectors is a successful no-op deletion of 0.
func (r *Registry) Remove(ctx context.Context, title string) (int, error) {
	if title == "" {
		return 0, fmt.Errorf("%w: title is required", models.ErrInvalidArgument)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	deleted := 0
	for i := 0; ; i++ {
		id := models.VectorID(title, i)
		exists, err := r.store.Fetch(ctx, id)
		if err != nil {
			return deleted, fmt.Errorf("probing %s: %w", id, err)
		}
		if !exists {
			break
		}
		if err := r.store.Delete(ctx, id); err != nil {
			return deleted, fmt.Errorf("deleting %s: %w", id, err)
		}
		deleted++
	}

	kept := r.titles[:0]
	for _, t := range r.titles {
		if t != title {
			kept = append(kept, t)
		}
	}
	r.titles = kept
	if err := r.list.Save(ctx, r.titles); err != nil {
		return deleted, fmt.Errorf("persisting document list: %w", err)
	}

	log.Info().Str("title", title).Int("vectors", deleted).Msg("Removed document")
	return deleted, nil
}

// Query embeds searchText and returns the topN nearest chunks, ranked
// descending by similarity. No local-state interaction.
func (r *Registry) Query(ctx context.Context, searchText string, topN int) ([]models.Match, error) {
	vectors, err := r.embedder.Embed(ctx, []string{searchText})
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}
	if len(vectors) == 0 {
		return nil, fmt.Errorf("embedding query: no vector returned")
	}
	return r.store.Query(ctx, vectors[0], topN)
}

func (r *Registry) contains(title string) bool {
	i := sort.SearchStrings(r.titles, title)
	return i < len(r.titles) && r.titles[i] == title
}
