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

package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"sync"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/askit/ai"
	"github.com/poiesic/askit/core"
	"github.com/poiesic/askit/storage"
)

// Pipeline seeds documentation chunks and labeled examples into storage,
// embedding records that do not carry a precomputed vector.
type Pipeline struct {
	documents storage.DocumentRepository
	examples  storage.ExampleRepository
	embedder  ai.Embedder
	pool      *ants.Pool
	logger    *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithPoolSize sets the worker pool size for concurrent embedding.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}

		if p.pool != nil {
			p.pool.Release()
		}

		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		p.pool = pool
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// NewPipeline creates a new seeding pipeline.
func NewPipeline(
	documents storage.DocumentRepository,
	examples storage.ExampleRepository,
	embedder ai.Embedder,
	opts ...Option,
) (*Pipeline, error) {
	if documents == nil {
		return nil, ErrDocumentRepositoryRequired
	}
	if examples == nil {
		return nil, ErrExampleRepositoryRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}

	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}
	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		documents: documents,
		examples:  examples,
		embedder:  embedder,
		pool:      pool,
		logger:    slog.Default(),
	}

	// Apply options
	for _, opt := range opts {
		if err := opt(p); err != nil {
			p.Release()
			return nil, err
		}
	}

	return p, nil
}

// IngestChunks validates, embeds, and stores documentation chunks.
// Chunks that already carry a vector are stored as-is. An embedding
// failure fails the whole ingest; seeding is expected to be reliable.
func (p *Pipeline) IngestChunks(ctx context.Context, chunks ...*core.Chunk) ([]*core.Chunk, error) {
	for _, chunk := range chunks {
		if err := core.ValidateChunk(chunk); err != nil {
			return nil, fmt.Errorf("chunk %q: %w", chunk.URL, err)
		}
	}

	p.logger.Info("ingesting chunks", "count", len(chunks))

	err := p.embedMissing(ctx, len(chunks),
		func(i int) bool { return len(chunks[i].Vector) > 0 },
		func(i int) string { return core.ChunkEmbeddingText(chunks[i]) },
		func(i int, vector []float32) { chunks[i].Vector = vector },
	)
	if err != nil {
		return nil, err
	}

	return p.documents.AddChunks(ctx, chunks...)
}

// IngestExamples validates, embeds, and stores labeled examples.
func (p *Pipeline) IngestExamples(ctx context.Context, examples ...*core.Example) ([]*core.Example, error) {
	for _, example := range examples {
		if err := core.ValidateExample(example); err != nil {
			return nil, fmt.Errorf("example %q: %w", example.Title, err)
		}
	}

	p.logger.Info("ingesting examples", "count", len(examples))

	err := p.embedMissing(ctx, len(examples),
		func(i int) bool { return len(examples[i].Vector) > 0 },
		func(i int) string { return core.ExampleEmbeddingText(examples[i]) },
		func(i int, vector []float32) { examples[i].Vector = vector },
	)
	if err != nil {
		return nil, err
	}

	return p.examples.AddExamples(ctx, examples...)
}

// embedMissing fans embedding calls for records without a vector out
// over the worker pool and waits for all of them.
func (p *Pipeline) embedMissing(
	ctx context.Context,
	count int,
	hasVector func(int) bool,
	textOf func(int) string,
	setVector func(int, []float32),
) error {
	errs := make([]error, count)
	var wg sync.WaitGroup

	for i := 0; i < count; i++ {
		if hasVector(i) {
			continue
		}

		wg.Add(1)
		submitErr := p.pool.Submit(func() {
			defer wg.Done()
			vector, err := p.embedder.EmbedText(ctx, textOf(i))
			if err != nil {
				errs[i] = err
				return
			}
			setVector(i, vector)
		})
		if submitErr != nil {
			wg.Done()
			errs[i] = submitErr
		}
	}
	wg.Wait()

	return errors.Join(errs...)
}

// Release releases the worker pool.
// The pipeline should not be used after calling Release.
func (p *Pipeline) Release() {
	if p.pool != nil {
		p.pool.Release()
	}
}
