package storage

import (
	"context"

	"github.com/poiesic/askit/core"
)

// DocumentRepository provides operations for managing documentation chunks.
// Chunks are append-only: the query path only reads them, and ingestion
// only adds them. Implementations must be thread-safe.
type DocumentRepository interface {
	// AddChunks adds one or more chunks to storage.
	// For chunks with ID=0, derives a content-based ID from the chunk URL
	// and heading. Returns the chunks with IDs populated.
	AddChunks(ctx context.Context, chunks ...*core.Chunk) ([]*core.Chunk, error)

	// GetChunk retrieves a single chunk by ID.
	// Returns ErrNotFound if the chunk doesn't exist.
	GetChunk(ctx context.Context, id core.ID) (*core.Chunk, error)

	// GetChunks retrieves multiple chunks by their IDs.
	// Returns only the chunks that exist (no error for missing chunks).
	GetChunks(ctx context.Context, ids ...core.ID) ([]*core.Chunk, error)

	// AllChunks retrieves every stored chunk, ordered by ID.
	// Used by maintenance operations such as re-embedding.
	AllChunks(ctx context.Context) ([]*core.Chunk, error)

	// SearchDense finds the chunks nearest to the given query vector.
	// Returns up to limit matches ordered by similarity descending.
	// Chunks without embeddings are never returned.
	SearchDense(ctx context.Context, vector []float32, limit int) ([]*core.ChunkMatch, error)

	// SearchLexical finds the chunks most relevant to the query text by
	// term overlap. Returns up to limit matches ordered by relevance
	// descending. Chunks sharing no terms with the query are never
	// returned.
	SearchLexical(ctx context.Context, query string, limit int) ([]*core.ChunkMatch, error)

	// Close closes the repository and releases resources.
	Close() error
}

// ExampleRepository provides operations for the labeled example set used
// by intent classification. Implementations must be thread-safe.
type ExampleRepository interface {
	// AddExamples adds one or more examples to storage.
	// For examples with ID=0, derives a content-based ID from the task
	// name and title. Returns the examples with IDs populated.
	AddExamples(ctx context.Context, examples ...*core.Example) ([]*core.Example, error)

	// GetExample retrieves a single example by ID.
	// Returns ErrNotFound if the example doesn't exist.
	GetExample(ctx context.Context, id core.ID) (*core.Example, error)

	// AllExamples retrieves every stored example, ordered by ID.
	// Used by maintenance operations such as re-embedding.
	AllExamples(ctx context.Context) ([]*core.Example, error)

	// SearchNearest finds the examples nearest to the given query vector.
	// Returns up to limit matches ordered by similarity descending.
	// Examples without embeddings are never returned.
	SearchNearest(ctx context.Context, vector []float32, limit int) ([]*core.ExampleMatch, error)

	// Close closes the repository and releases resources.
	Close() error
}
