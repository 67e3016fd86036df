package ai

import "context"

// Embedder generates vector embeddings from text for semantic similarity search.
// Implementations must be thread-safe for concurrent use.
type Embedder interface {
	// EmbedText generates a vector embedding for a single text string.
	// The returned vector represents the semantic meaning of the text.
	// Returns an error if the embedding generation fails.
	EmbedText(ctx context.Context, text string) ([]float32, error)

	// EmbedTexts generates vector embeddings for multiple text strings in a batch.
	// Batch processing is more efficient than calling EmbedText multiple times.
	// The returned slice contains embeddings in the same order as the input texts.
	// Returns an error if any embedding generation fails.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// RelevanceJudge scores how relevant a passage is for a query using a
// generative model. Implementations must be thread-safe for concurrent use.
type RelevanceJudge interface {
	// JudgeRelevance asks the model to rate the passage's relevance to the
	// query and returns the model's raw text reply. The caller is expected
	// to extract a numeric score from the reply; judge models frequently
	// wrap the number in prose.
	JudgeRelevance(ctx context.Context, query, passage string) (string, error)
}

// AIProvider aggregates AI services for convenient initialization and lifecycle management.
type AIProvider interface {
	// Embedder returns the text embedding service.
	// The returned Embedder is safe for concurrent use.
	Embedder() Embedder

	// Judge returns the relevance judging service, or nil when no judge
	// model is configured. Callers select the hybrid-only rerank path on
	// nil; a nil judge is an expected configuration, not an error.
	Judge() RelevanceJudge

	// Close releases resources held by the provider and its services.
	// After Close is called, the provider and its services should not be used.
	Close() error
}
