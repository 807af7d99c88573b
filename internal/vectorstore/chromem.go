package vectorstore

import (
	"context"
	"fmt"
	"runtime"

	"github.com/philippgille/chromem-go"
	"github.com/rs/zerolog/log"

	"library-chat/internal/models"
)

const compress = false

// ChromemStore implements Store on a chromem-go collection, persisted under
// dbPath unless inMemory is set.
type ChromemStore struct {
	db            *chromem.DB
	collection    *chromem.Collection
	dbPath        string
	encryptionKey string
	filePath      string
}

func NewChromemStore(dbPath, collectionName string, inMemory bool, encryptionKey string) (*ChromemStore, error) {
	var db *chromem.DB
	var err error
	if inMemory {
		db = chromem.NewDB()
	} else {
		db, err = chromem.NewPersistentDB(dbPath, compress)
		if err != nil {
			return nil, fmt.Errorf("failed to create database: %v", err)
		}
	}

	collection, err := db.GetOrCreateCollection(collectionName, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create/get collection: %v", err)
	}

	return &ChromemStore{
		db:            db,
		collection:    collection,
		dbPath:        dbPath,
		encryptionKey: encryptionKey,
		filePath:      dbPath + "/" + collectionName + ".chromem",
	}, nil
}

// Upsert writes all entries in one batch.
func (s *ChromemStore) Upsert(ctx context.Context, entries []Entry) error {
	if len(entries) == 0 {
		return nil
	}
	docs := make([]chromem.Document, 0, len(entries))
	for _, e := range entries {
		docs = append(docs, chromem.Document{
			ID:        e.ID,
			Content:   e.Metadata.Text,
			Metadata:  metadataMap(e.Metadata),
			Embedding: e.Vector,
		})
	}
	if err := s.collection.AddDocuments(ctx, docs, runtime.NumCPU()); err != nil {
		return fmt.Errorf("failed to add documents: %v", err)
	}
	return nil
}

// Fetch reports whether a vector with the given id exists.
func (s *ChromemStore) Fetch(ctx context.Context, id string) (bool, error) {
	// chromem errors on GetByID only when the id is absent
	if _, err := s.collection.GetByID(ctx, id); err != nil {
		return false, nil
	}
	return true, nil
}

// Delete removes the vector with the given id, if present.
func (s *ChromemStore) Delete(ctx context.Context, id string) error {
	if err := s.collection.Delete(ctx, nil, nil, id); err != nil {
		return fmt.Errorf("failed to delete document %s: %v", id, err)
	}
	return nil
}

// Query returns up to topK nearest vectors by cosine similarity, ranked
// descending by score.
func (s *ChromemStore) Query(ctx context.Context, vector []float32, topK int) ([]models.Match, error) {
	// chromem rejects nResults larger than the collection
	if n := s.collection.Count(); topK > n {
		topK = n
	}
	if topK <= 0 {
		return nil, nil
	}
	results, err := s.collection.QueryEmbedding(ctx, vector, topK, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to query by similarity: %v", err)
	}
	matches := make([]models.Match, 0, len(results))
	for _, r := range results {
		matches = append(matches, models.Match{
			ID:    r.ID,
			Score: r.Similarity,
			Metadata: models.ChunkMeta{
				Document: r.Metadata["document"],
				Text:     r.Metadata["text"],
			},
		})
	}
	return matches, nil
}

// Export writes the collection to an encrypted file under dbPath.
func (s *ChromemStore) Export(ctx context.Context) error {
	if s.encryptionKey == "" {
		return fmt.Errorf("encryption key is required")
	}
	log.Debug().Str("file", s.filePath).Str("collection", s.collection.Name).Msg("Exporting collection")
	if err := s.db.ExportToFile(s.filePath, compress, s.encryptionKey, s.collection.Name); err != nil {
		return fmt.Errorf("failed to export database: %v", err)
	}
	return nil
}

// Import restores the collection from a previously exported file.
func (s *ChromemStore) Import(ctx context.Context) error {
	if s.encryptionKey == "" {
		return fmt.Errorf("encryption key is required")
	}
	log.Debug().Str("file", s.filePath).Msg("Importing collection")
	if err := s.db.ImportFromFile(s.filePath, s.encryptionKey, s.collection.Name); err != nil {
		return fmt.Errorf("failed to import database: %v", err)
	}
	return nil
}

func metadataMap(meta models.ChunkMeta) map[string]string {
	return map[string]string{
		"document": meta.Document,
		"text":     meta.Text,
	}
}
