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


// Package ai provides abstractions for the AI services used in askit.
//
// This package defines interfaces for the two model calls the engine
// consumes: text embedding and generative relevance judging. It follows
// the dependency inversion principle, allowing retrieval and intent
// classification to depend on abstractions rather than concrete
// implementations.
//
// # Design Principles
//
// The package is designed around three key interfaces:
//
//   - Embedder: Generates vector embeddings from text
//   - RelevanceJudge: Scores a (query, passage) pair via a generative model
//   - AIProvider: Aggregates AI services for convenient initialization
//
// The judge is optional: a provider configured without a judge model
// returns nil from Judge(), and the retrieval layer wires the hybrid-only
// reranker instead. That choice is made once at startup, never per query.
//
// # Implementation Packages
//
//   - ai/openai: Production implementation using OpenAI-compatible APIs
//   - ai/mock: Test doubles for unit testing without external dependencies
//
// Public constructors (openai.NewProvider, openai.NewEmbedder) return
// interface types to enforce abstraction. Mock constructors return
// concrete types to enable behavior injection and call-count assertions.
package ai
