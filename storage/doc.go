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


// Package storage provides the storage abstraction layer for askit.
//
// This package defines repository interfaces that decouple the document
// store implementation from the retrieval and classification logic. The
// same corpus is searchable through two independent signals:
//
//   - SearchDense: nearest-neighbor search over embedding vectors
//   - SearchLexical: term-overlap relevance over the chunk text
//
// # Constructor Return Type Pattern
//
// Public constructors in backend packages return interface types to
// enforce abstraction and allow alternative backends:
//
//	docs, err := badger.NewDocumentRepository(backend)  // storage.DocumentRepository
//
// Use in tests with in-memory storage:
//
//	docs, examples, backend, err := badger.NewMemoryRepositories()
//
// # Thread Safety
//
// All repository implementations must be thread-safe; the retrieval path
// issues dense and lexical queries concurrently against the same
// repository.
//
// # Context Support
//
// All repository methods accept context.Context for cancellation and
// timeout support.
package storage
