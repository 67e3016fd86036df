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


package mock

import "github.com/poiesic/askit/ai"

// MockProvider is a test double for ai.AIProvider.
// It aggregates mock embedder and judge instances.
type MockProvider struct {
	embedder *MockEmbedder
	judge    *MockJudge
}

var _ ai.AIProvider = (*MockProvider)(nil)

// NewMockProvider creates a provider with a mock embedder and a mock judge.
func NewMockProvider() *MockProvider {
	return &MockProvider{
		embedder: NewMockEmbedder(),
		judge:    NewMockJudge(),
	}
}

// NewMockProviderWithoutJudge creates a provider whose Judge() returns nil,
// exercising the hybrid-only rerank path.
func NewMockProviderWithoutJudge() *MockProvider {
	return &MockProvider{
		embedder: NewMockEmbedder(),
	}
}

// Embedder returns the mock embedding service.
func (p *MockProvider) Embedder() ai.Embedder {
	return p.embedder
}

// Judge returns the mock judge, or nil when constructed without one.
func (p *MockProvider) Judge() ai.RelevanceJudge {
	if p.judge == nil {
		return nil
	}
	return p.judge
}

// GetMockEmbedder returns the concrete mock embedder for test assertions.
func (p *MockProvider) GetMockEmbedder() *MockEmbedder {
	return p.embedder
}

// GetMockJudge returns the concrete mock judge for test assertions.
// Returns nil when constructed without a judge.
func (p *MockProvider) GetMockJudge() *MockJudge {
	return p.judge
}

// Close is a no-op for mocks.
func (p *MockProvider) Close() error {
	return nil
}
