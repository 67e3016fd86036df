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

package retrieval

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/poiesic/askit/ai"
	"github.com/poiesic/askit/core"
	"github.com/poiesic/askit/storage"
)

// HybridFetcher retrieves candidate chunks by combining a dense vector
// signal with a lexical signal, fusing both into a single hybrid score.
//
// Fetching degrades instead of failing: an embedding error demotes the
// dense signal to a zero vector, a failed signal query contributes no
// hits, and a query where both signals fail yields an empty candidate set.
type HybridFetcher struct {
	documents    storage.DocumentRepository
	embedder     ai.Embedder
	alpha        float64
	limit        int
	embedTimeout time.Duration
	logger       *slog.Logger
}

// FetcherOption configures a HybridFetcher.
type FetcherOption func(*HybridFetcher) error

// WithFetcherLogger sets a custom logger.
// Default is slog.Default().
func WithFetcherLogger(logger *slog.Logger) FetcherOption {
	return func(f *HybridFetcher) error {
		if logger == nil {
			logger = slog.Default()
		}
		f.logger = logger
		return nil
	}
}

// NewHybridFetcher creates a new hybrid candidate fetcher.
func NewHybridFetcher(
	documents storage.DocumentRepository,
	embedder ai.Embedder,
	config Config,
	opts ...FetcherOption,
) (*HybridFetcher, error) {
	if documents == nil {
		return nil, ErrDocumentRepositoryRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}

	f := &HybridFetcher{
		documents:    documents,
		embedder:     embedder,
		alpha:        config.Alpha,
		limit:        config.CandidateLimit,
		embedTimeout: config.EmbedTimeout,
		logger:       slog.Default(),
	}

	// Apply options
	for _, opt := range opts {
		if err := opt(f); err != nil {
			return nil, err
		}
	}

	return f, nil
}

// Fetch returns the fused candidate set for the query, sorted by hybrid
// score descending.
func (f *HybridFetcher) Fetch(ctx context.Context, query string) []*core.Candidate {
	return f.FetchWithMonitor(ctx, query, nil)
}

// FetchWithMonitor returns the fused candidate set for the query with
// monitoring. The monitor receives callbacks at each stage of fetching.
func (f *HybridFetcher) FetchWithMonitor(ctx context.Context, query string, monitor Monitor) []*core.Candidate {
	// Use noop monitor if none provided
	if monitor == nil {
		monitor = &noopMonitor{}
	}

	// 1. Embed the query. On failure the dense signal degrades to a zero
	// vector, scoring 0 against every chunk, instead of aborting the fetch.
	embedding := f.embedQuery(ctx, query)
	monitor.AfterEmbedding(len(embedding))

	// 2. Run both signal queries concurrently
	var (
		denseHits, lexicalHits []*core.ChunkMatch
		denseErr, lexicalErr   error
	)
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		denseHits, denseErr = f.documents.SearchDense(ctx, embedding, f.limit)
	}()
	go func() {
		defer wg.Done()
		lexicalHits, lexicalErr = f.documents.SearchLexical(ctx, query, f.limit)
	}()
	wg.Wait()

	if denseErr != nil {
		f.logger.Warn("dense search failed, continuing without dense signal", "err", denseErr)
		denseHits = nil
	}
	if lexicalErr != nil {
		f.logger.Warn("lexical search failed, continuing without lexical signal", "err", lexicalErr)
		lexicalHits = nil
	}
	monitor.AfterDenseSearch(matchIds(denseHits))
	monitor.AfterLexicalSearch(matchIds(lexicalHits))

	if len(denseHits) == 0 && len(lexicalHits) == 0 {
		monitor.AfterFusion(nil)
		return []*core.Candidate{}
	}

	// 3. Union the hit sets, keeping each signal's raw score per chunk
	byId := make(map[core.ID]*core.Candidate, len(denseHits)+len(lexicalHits))
	for _, hit := range denseHits {
		byId[hit.Chunk.Id] = &core.Candidate{
			Chunk:      hit.Chunk,
			DenseScore: hit.Score,
			InDense:    true,
		}
	}
	for _, hit := range lexicalHits {
		candidate, ok := byId[hit.Chunk.Id]
		if !ok {
			candidate = &core.Candidate{Chunk: hit.Chunk}
			byId[hit.Chunk.Id] = candidate
		}
		candidate.LexicalScore = hit.Score
		candidate.InLexical = true
	}

	candidates := make([]*core.Candidate, 0, len(byId))
	for _, candidate := range byId {
		candidates = append(candidates, candidate)
	}

	// 4. Normalize per signal and fuse into hybrid scores
	fuseScores(candidates, f.alpha)

	// Sort by hybrid score descending, ties by chunk id for determinism
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].HybridScore != candidates[j].HybridScore {
			return candidates[i].HybridScore > candidates[j].HybridScore
		}
		return candidates[i].Chunk.Id < candidates[j].Chunk.Id
	})
	monitor.AfterFusion(candidates)

	return candidates
}

func (f *HybridFetcher) embedQuery(ctx context.Context, query string) []float32 {
	embedCtx := ctx
	if f.embedTimeout > 0 {
		var cancel context.CancelFunc
		embedCtx, cancel = context.WithTimeout(ctx, f.embedTimeout)
		defer cancel()
	}

	embedding, err := f.embedder.EmbedText(embedCtx, query)
	if err != nil {
		f.logger.Warn("error generating embedding for query, dense signal degraded", "query", query, "err", err)
		return nil
	}
	return embedding
}

func matchIds(matches []*core.ChunkMatch) []uint64 {
	ids := make([]uint64, 0, len(matches))
	for _, match := range matches {
		ids = append(ids, uint64(match.Chunk.Id))
	}
	return ids
}
