// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package reembed

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/poiesic/askit/ai"
	"github.com/poiesic/askit/core"
	"github.com/poiesic/askit/storage"
)

// DefaultBatchSize is the number of records embedded per batch when the
// configured batch size is missing or invalid.
const DefaultBatchSize = 100

// Config holds configuration for the reembedding operation.
type Config struct {
	// BatchSize is the number of records to embed in each batch
	BatchSize int

	// ReportInterval is how often to report progress (number of records)
	ReportInterval int

	// MaxRetries is the maximum number of retry attempts for failed embedding calls
	MaxRetries int

	// RetryDelay is the base delay for exponential backoff
	RetryDelay time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		BatchSize:      DefaultBatchSize,
		ReportInterval: 100,
		MaxRetries:     3,
		RetryDelay:     1 * time.Second,
	}
}

// Reembedder regenerates the vectors of all stored chunks and examples
// with the configured embedder.
type Reembedder struct {
	documents storage.DocumentRepository
	examples  storage.ExampleRepository
	embedder  ai.Embedder
	config    *Config
	progress  io.Writer
}

// NewReembedder creates a new reembedder.
// progress: where to write progress output (typically os.Stderr)
func NewReembedder(
	documents storage.DocumentRepository,
	examples storage.ExampleRepository,
	embedder ai.Embedder,
	config *Config,
	progress io.Writer,
) *Reembedder {
	if config == nil {
		config = DefaultConfig()
	}
	// A non-positive batch size would never advance through the corpus
	if config.BatchSize <= 0 {
		normalized := *config
		normalized.BatchSize = DefaultBatchSize
		config = &normalized
	}

	return &Reembedder{
		documents: documents,
		examples:  examples,
		embedder:  embedder,
		config:    config,
		progress:  progress,
	}
}

// Run executes the reembedding operation. Every chunk and example in
// the store gets a fresh vector; progress is reported to the configured
// writer.
func (r *Reembedder) Run(ctx context.Context) error {
	chunks, err := r.documents.AllChunks(ctx)
	if err != nil {
		return fmt.Errorf("failed to load chunks: %w", err)
	}

	examples, err := r.examples.AllExamples(ctx)
	if err != nil {
		return fmt.Errorf("failed to load examples: %w", err)
	}

	total := len(chunks) + len(examples)
	if total == 0 {
		fmt.Fprintf(r.progress, "No records found in database (0 records)\n")
		return nil
	}

	fmt.Fprintf(r.progress, "Starting reembedding of %d records (%d chunks, %d examples, batch size: %d)\n",
		total, len(chunks), len(examples), r.config.BatchSize)

	tracker := NewProgressTracker(r.progress, total, r.config.ReportInterval)
	tracker.Start()

	if err := r.reembedChunks(ctx, chunks, tracker); err != nil {
		return err
	}
	if err := r.reembedExamples(ctx, examples, tracker); err != nil {
		return err
	}

	tracker.Finish()

	elapsed := tracker.Elapsed()
	fmt.Fprintf(r.progress, "Reembedding complete. Processed %d records in %v (%.1f records/sec)\n",
		total, elapsed.Round(time.Second), float64(total)/elapsed.Seconds())

	return nil
}

func (r *Reembedder) reembedChunks(ctx context.Context, chunks []*core.Chunk, tracker *ProgressTracker) error {
	return batches(len(chunks), r.config.BatchSize, func(lo, hi int) error {
		if err := ctx.Err(); err != nil {
			return err
		}

		batch := chunks[lo:hi]
		texts := make([]string, len(batch))
		for i, chunk := range batch {
			texts[i] = core.ChunkEmbeddingText(chunk)
		}

		embeddings, err := r.embedBatch(ctx, texts)
		if err != nil {
			return fmt.Errorf("failed to process chunk batch: %w", err)
		}
		for i, chunk := range batch {
			chunk.Vector = embeddings[i]
		}

		if _, err := r.documents.AddChunks(ctx, batch...); err != nil {
			return fmt.Errorf("failed to update chunks: %w", err)
		}

		tracker.Increment(len(batch))
		return nil
	})
}

func (r *Reembedder) reembedExamples(ctx context.Context, examples []*core.Example, tracker *ProgressTracker) error {
	return batches(len(examples), r.config.BatchSize, func(lo, hi int) error {
		if err := ctx.Err(); err != nil {
			return err
		}

		batch := examples[lo:hi]
		texts := make([]string, len(batch))
		for i, example := range batch {
			texts[i] = core.ExampleEmbeddingText(example)
		}

		embeddings, err := r.embedBatch(ctx, texts)
		if err != nil {
			return fmt.Errorf("failed to process example batch: %w", err)
		}
		for i, example := range batch {
			example.Vector = embeddings[i]
		}

		if _, err := r.examples.AddExamples(ctx, batch...); err != nil {
			return fmt.Errorf("failed to update examples: %w", err)
		}

		tracker.Increment(len(batch))
		return nil
	})
}
