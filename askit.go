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

package askit

import (
	"context"
	"log/slog"

	"github.com/poiesic/askit/ai"
	"github.com/poiesic/askit/ai/openai"
	"github.com/poiesic/askit/core"
	"github.com/poiesic/askit/ingest"
	"github.com/poiesic/askit/intent"
	"github.com/poiesic/askit/retrieval"
	"github.com/poiesic/askit/storage"
	"github.com/poiesic/askit/storage/badger"
)

// Engine bundles the retrieval pipeline and the intent classifier over a
// shared document store. The rerank strategy is selected once at
// construction: hybrid-only when no judge model is configured, judge-backed
// otherwise.
type Engine struct {
	backend       *badger.Backend
	documentRepo  storage.DocumentRepository
	exampleRepo   storage.ExampleRepository
	provider      ai.AIProvider
	retriever     *retrieval.Retriever
	judgeReranker *retrieval.JudgeReranker // non-nil only on the judge path
	classifier    *intent.Classifier
	logger        *slog.Logger
}

// EngineOption configures an Engine.
type EngineOption func(*engineOptions)

type engineOptions struct {
	aiConfig        *ai.Config
	retrievalConfig retrieval.Config
	intentConfig    intent.Config
	provider        ai.AIProvider
}

// WithAIConfig sets the AI service configuration.
func WithAIConfig(config *ai.Config) EngineOption {
	return func(o *engineOptions) {
		o.aiConfig = config
	}
}

// WithRetrievalConfig sets the retrieval tuning parameters.
func WithRetrievalConfig(config retrieval.Config) EngineOption {
	return func(o *engineOptions) {
		o.retrievalConfig = config
	}
}

// WithIntentConfig sets the classification tuning parameters.
func WithIntentConfig(config intent.Config) EngineOption {
	return func(o *engineOptions) {
		o.intentConfig = config
	}
}

// WithProvider injects a pre-built AI provider, bypassing the OpenAI
// client construction. Intended for tests and embedders.
func WithProvider(provider ai.AIProvider) EngineOption {
	return func(o *engineOptions) {
		o.provider = provider
	}
}

// NewEngine opens the store at filePath and wires the retrieval and
// classification pipelines. An empty filePath opens an in-memory store.
func NewEngine(filePath string, opts ...EngineOption) (*Engine, error) {
	// Apply options
	options := &engineOptions{
		aiConfig:        ai.DefaultConfig(),
		retrievalConfig: retrieval.DefaultConfig(),
		intentConfig:    intent.DefaultConfig(),
	}
	for _, opt := range opts {
		opt(options)
	}

	// Open backend
	backend, err := badger.OpenBackend(filePath, filePath == "")
	if err != nil {
		return nil, err
	}

	documentRepo, err := badger.NewDocumentRepository(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}

	exampleRepo, err := badger.NewExampleRepository(backend)
	if err != nil {
		documentRepo.Close()
		backend.Close()
		return nil, err
	}

	provider := options.provider
	if provider == nil {
		provider, err = openai.NewProvider(options.aiConfig)
		if err != nil {
			exampleRepo.Close()
			documentRepo.Close()
			backend.Close()
			return nil, err
		}
	}

	e := &Engine{
		backend:      backend,
		documentRepo: documentRepo,
		exampleRepo:  exampleRepo,
		provider:     provider,
		logger:       slog.Default(),
	}

	fetcher, err := retrieval.NewHybridFetcher(documentRepo, provider.Embedder(), options.retrievalConfig)
	if err != nil {
		e.closeAll()
		return nil, err
	}

	// Select the rerank strategy once, from the configured provider
	var reranker retrieval.Reranker
	if judge := provider.Judge(); judge != nil {
		judgeReranker, err := retrieval.NewJudgeReranker(judge, options.retrievalConfig)
		if err != nil {
			e.closeAll()
			return nil, err
		}
		e.judgeReranker = judgeReranker
		reranker = judgeReranker
	} else {
		e.logger.Info("no judge model configured, reranking with hybrid scores only")
		reranker = retrieval.NewHybridReranker(options.retrievalConfig.RerankTopK)
	}

	retriever, err := retrieval.NewRetriever(fetcher, reranker, options.retrievalConfig)
	if err != nil {
		e.closeAll()
		return nil, err
	}
	e.retriever = retriever

	classifier, err := intent.NewClassifier(exampleRepo, provider.Embedder(), options.intentConfig)
	if err != nil {
		e.closeAll()
		return nil, err
	}
	e.classifier = classifier

	return e, nil
}

// Retrieve runs the retrieval pipeline for the query.
func (e *Engine) Retrieve(ctx context.Context, query string) (*core.RetrievalResult, error) {
	return e.retriever.Retrieve(ctx, query)
}

// RetrieveWithMonitor runs the retrieval pipeline with monitoring.
func (e *Engine) RetrieveWithMonitor(ctx context.Context, query string, monitor retrieval.Monitor) (*core.RetrievalResult, error) {
	return e.retriever.RetrieveWithMonitor(ctx, query, monitor)
}

// Classify determines the intent of the query.
func (e *Engine) Classify(ctx context.Context, query string) *core.IntentClassification {
	return e.classifier.Classify(ctx, query)
}

// DocumentRepository returns the chunk store.
func (e *Engine) DocumentRepository() storage.DocumentRepository {
	return e.documentRepo
}

// ExampleRepository returns the labeled example store.
func (e *Engine) ExampleRepository() storage.ExampleRepository {
	return e.exampleRepo
}

// NewIngestPipeline creates a seeding pipeline over the engine's stores.
func (e *Engine) NewIngestPipeline(opts ...ingest.Option) (*ingest.Pipeline, error) {
	return ingest.NewPipeline(e.documentRepo, e.exampleRepo, e.provider.Embedder(), opts...)
}

// Close releases the engine's resources.
func (e *Engine) Close() error {
	if err := e.provider.Close(); err != nil {
		e.logger.Error("error closing AI provider", "err", err)
	}
	if e.judgeReranker != nil {
		if err := e.judgeReranker.Close(); err != nil {
			e.logger.Error("error closing judge reranker", "err", err)
		}
	}

	if err := e.exampleRepo.Close(); err != nil {
		e.logger.Error("error closing example repository", "err", err)
		return err
	}
	if err := e.documentRepo.Close(); err != nil {
		e.logger.Error("error closing document repository", "err", err)
		return err
	}

	if err := e.backend.Close(); err != nil {
		e.logger.Error("error closing backend storage", "err", err)
		return err
	}
	return nil
}

// closeAll tears down partially constructed state during NewEngine.
func (e *Engine) closeAll() {
	if e.judgeReranker != nil {
		e.judgeReranker.Close()
	}
	e.provider.Close()
	e.exampleRepo.Close()
	e.documentRepo.Close()
	e.backend.Close()
}
