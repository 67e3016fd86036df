package badger

import (
	"context"
	"slices"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/askit/core"
	"github.com/poiesic/askit/storage"
)

// DocumentRepository implements storage.DocumentRepository for BadgerDB.
type DocumentRepository struct {
	backend *Backend
}

var _ storage.DocumentRepository = (*DocumentRepository)(nil)

// NewDocumentRepository creates a new DocumentRepository.
func NewDocumentRepository(backend *Backend) (storage.DocumentRepository, error) {
	if backend == nil {
		return nil, storage.ErrBackendRequired
	}
	return &DocumentRepository{backend: backend}, nil
}

// Close is a no-op; the backend owns the database handle.
func (r *DocumentRepository) Close() error {
	return nil
}

// AddChunks adds one or more chunks to storage.
// Chunks with ID=0 get a content-based ID derived from URL and heading,
// so re-seeding the same corpus overwrites rather than duplicates.
func (r *DocumentRepository) AddChunks(ctx context.Context, chunks ...*core.Chunk) ([]*core.Chunk, error) {
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, chunk := range chunks {
			if chunk.Id == 0 {
				chunk.Id = core.IDFromContent(chunk.URL + "|" + chunk.Heading)
			}

			key := makeChunkKey(chunk.Id)
			if err := tx.Set(key, storage.MarshalChunk(chunk)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)

	return chunks, err
}

// GetChunk retrieves a single chunk by ID.
func (r *DocumentRepository) GetChunk(ctx context.Context, id core.ID) (*core.Chunk, error) {
	var chunk *core.Chunk
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeChunkKey(id))
		if err == badger.ErrKeyNotFound {
			return storage.ErrNotFound
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			chunk, err = storage.UnmarshalChunk(val)
			return err
		})
	}, false)
	if err != nil {
		return nil, err
	}
	return chunk, nil
}

// GetChunks retrieves multiple chunks by their IDs.
// Missing chunks are skipped without error.
func (r *DocumentRepository) GetChunks(ctx context.Context, ids ...core.ID) ([]*core.Chunk, error) {
	chunks := make([]*core.Chunk, 0, len(ids))
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, id := range ids {
			item, err := tx.Get(makeChunkKey(id))
			if err == badger.ErrKeyNotFound {
				continue
			}
			if err != nil {
				return err
			}
			err = item.Value(func(val []byte) error {
				chunk, err := storage.UnmarshalChunk(val)
				if err != nil {
					return err
				}
				chunks = append(chunks, chunk)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}
	return chunks, nil
}

// AllChunks retrieves every stored chunk, ordered by ID.
func (r *DocumentRepository) AllChunks(ctx context.Context) ([]*core.Chunk, error) {
	var chunks []*core.Chunk
	err := r.scanChunks(func(chunk *core.Chunk) {
		chunks = append(chunks, chunk)
	})
	if err != nil {
		return nil, err
	}

	slices.SortFunc(chunks, func(a, b *core.Chunk) int {
		switch {
		case a.Id < b.Id:
			return -1
		case a.Id > b.Id:
			return 1
		default:
			return 0
		}
	})
	return chunks, nil
}

// SearchDense finds the chunks nearest to the given query vector by
// cosine similarity. Chunks without embeddings are skipped.
func (r *DocumentRepository) SearchDense(ctx context.Context, vector []float32, limit int) ([]*core.ChunkMatch, error) {
	if limit <= 0 {
		return []*core.ChunkMatch{}, nil
	}

	var matches []*core.ChunkMatch
	err := r.scanChunks(func(chunk *core.Chunk) {
		if len(chunk.Vector) == 0 {
			return
		}
		matches = append(matches, &core.ChunkMatch{
			Chunk: chunk,
			Score: cosineSimilarity(vector, chunk.Vector),
		})
	})
	if err != nil {
		return nil, err
	}

	sortMatches(matches)
	if len(matches) > limit {
		matches = matches[:limit]
	}
	return matches, nil
}

// SearchLexical finds the chunks most relevant to the query text by
// term-frequency overlap. Chunks sharing no terms with the query are
// excluded.
func (r *DocumentRepository) SearchLexical(ctx context.Context, query string, limit int) ([]*core.ChunkMatch, error) {
	if limit <= 0 {
		return []*core.ChunkMatch{}, nil
	}

	queryTerms := tokenizeAndFilter(query)
	if len(queryTerms) == 0 {
		return []*core.ChunkMatch{}, nil
	}

	var matches []*core.ChunkMatch
	err := r.scanChunks(func(chunk *core.Chunk) {
		score := lexicalScore(chunk.Text, queryTerms)
		if score <= 0 {
			return
		}
		matches = append(matches, &core.ChunkMatch{Chunk: chunk, Score: score})
	})
	if err != nil {
		return nil, err
	}

	sortMatches(matches)
	if len(matches) > limit {
		matches = matches[:limit]
	}
	return matches, nil
}

// scanChunks iterates all chunk records and hands each to visit.
func (r *DocumentRepository) scanChunks(visit func(*core.Chunk)) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(chunkRecordPrefix)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			var chunk *core.Chunk
			err := iter.Item().Value(func(val []byte) error {
				var err error
				chunk, err = storage.UnmarshalChunk(val)
				return err
			})
			if err != nil {
				return err
			}
			if chunk != nil {
				visit(chunk)
			}
		}
		return nil
	}, false)
}

// sortMatches orders matches by score descending, ties broken by
// chunk id ascending for deterministic results.
func sortMatches(matches []*core.ChunkMatch) {
	slices.SortFunc(matches, func(a, b *core.ChunkMatch) int {
		if a.Score > b.Score {
			return -1
		}
		if a.Score < b.Score {
			return 1
		}
		if a.Chunk.Id < b.Chunk.Id {
			return -1
		}
		if a.Chunk.Id > b.Chunk.Id {
			return 1
		}
		return 0
	})
}
