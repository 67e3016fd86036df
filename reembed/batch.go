package reembed

import (
	"context"
	"fmt"
)

// embedBatch generates normalized embeddings for a batch of texts,
// retrying the embedding call with exponential backoff.
func (r *Reembedder) embedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	var embeddings [][]float32
	err := RetryWithBackoff(ctx, func() error {
		var err error
		embeddings, err = r.embedder.EmbedTexts(ctx, texts)
		return err
	}, r.config.MaxRetries, r.config.RetryDelay)
	if err != nil {
		return nil, fmt.Errorf("failed to generate embeddings after %d attempts: %w", r.config.MaxRetries, err)
	}

	if len(embeddings) != len(texts) {
		return nil, fmt.Errorf("embedding count mismatch: expected %d, got %d", len(texts), len(embeddings))
	}

	for i := range embeddings {
		embeddings[i] = NormalizeVector(embeddings[i])
	}
	return embeddings, nil
}

// batches slices n items into ranges of at most size, calling fn with
// the bounds of each range. Iteration stops on the first error.
func batches(n, size int, fn func(lo, hi int) error) error {
	if size <= 0 {
		size = DefaultBatchSize
	}
	for lo := 0; lo < n; lo += size {
		hi := lo + size
		if hi > n {
			hi = n
		}
		if err := fn(lo, hi); err != nil {
			return err
		}
	}
	return nil
}
