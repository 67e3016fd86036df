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

import "time"

// Config holds tuning parameters for the retrieval pipeline.
type Config struct {
	// Alpha is the lexical weight in the hybrid fusion formula.
	// The dense weight is 1 - Alpha.
	Alpha float64

	// CandidateLimit is the maximum number of hits requested from each
	// retrieval signal before fusion.
	CandidateLimit int

	// RerankTopK is the number of top hybrid candidates handed to the reranker.
	RerankTopK int

	// FinalLimit is the maximum number of documents in a retrieval result.
	FinalLimit int

	// EmbedTimeout bounds the query embedding call.
	EmbedTimeout time.Duration

	// JudgeTimeout bounds a single relevance judgement call.
	JudgeTimeout time.Duration

	// JudgeConcurrency is the number of relevance judgements in flight at once.
	JudgeConcurrency int
}

// DefaultConfig returns the default retrieval configuration.
func DefaultConfig() Config {
	return Config{
		Alpha:            0.6,
		CandidateLimit:   60,
		RerankTopK:       50,
		FinalLimit:       8,
		EmbedTimeout:     15 * time.Second,
		JudgeTimeout:     20 * time.Second,
		JudgeConcurrency: 4,
	}
}
