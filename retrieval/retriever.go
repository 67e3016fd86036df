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

	"github.com/poiesic/askit/core"
)

// Retriever orchestrates the full retrieval pipeline: hybrid candidate
// fetching, reranking, and mapping into retrieved documents.
type Retriever struct {
	fetcher    *HybridFetcher
	reranker   Reranker
	finalLimit int
	logger     *slog.Logger
}

// RetrieverOption configures a Retriever.
type RetrieverOption func(*Retriever) error

// WithRetrieverLogger sets a custom logger.
// Default is slog.Default().
func WithRetrieverLogger(logger *slog.Logger) RetrieverOption {
	return func(r *Retriever) error {
		if logger == nil {
			logger = slog.Default()
		}
		r.logger = logger
		return nil
	}
}

// NewRetriever creates a new retriever.
func NewRetriever(fetcher *HybridFetcher, reranker Reranker, config Config, opts ...RetrieverOption) (*Retriever, error) {
	if fetcher == nil {
		return nil, ErrFetcherRequired
	}
	if reranker == nil {
		return nil, ErrRerankerRequired
	}

	r := &Retriever{
		fetcher:    fetcher,
		reranker:   reranker,
		finalLimit: config.FinalLimit,
		logger:     slog.Default(),
	}

	// Apply options
	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, err
		}
	}

	return r, nil
}

// Retrieve runs the pipeline for the query and returns up to the
// configured number of documents, ranked by relevance.
func (r *Retriever) Retrieve(ctx context.Context, query string) (*core.RetrievalResult, error) {
	return r.RetrieveWithMonitor(ctx, query, nil)
}

// RetrieveWithMonitor runs the pipeline for the query with monitoring.
// The monitor receives callbacks at each stage of the process.
func (r *Retriever) RetrieveWithMonitor(ctx context.Context, query string, monitor Monitor) (*core.RetrievalResult, error) {
	// Use noop monitor if none provided
	if monitor == nil {
		monitor = &noopMonitor{}
	}

	monitor.Start(query)

	candidates := r.fetcher.FetchWithMonitor(ctx, query, monitor)
	if len(candidates) == 0 {
		r.logger.Debug("no candidates for query", "query", query)
		result := &core.RetrievalResult{Documents: []core.RetrievedDocument{}}
		monitor.Finish(result)
		return result, nil
	}

	ranked := r.reranker.Rerank(ctx, query, candidates)
	monitor.AfterRerank(ranked)

	if len(ranked) > r.finalLimit {
		ranked = ranked[:r.finalLimit]
	}

	documents := make([]core.RetrievedDocument, 0, len(ranked))
	for _, candidate := range ranked {
		documents = append(documents, buildDocument(candidate))
	}

	result := &core.RetrievalResult{Documents: documents}
	monitor.Finish(result)

	return result, nil
}
