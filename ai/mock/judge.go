package mock

import (
	"context"
	"sync"
)

// MockJudge is a test double for ai.RelevanceJudge.
// It allows custom behavior injection via function fields.
// Safe for concurrent use; rerankers fan judgements out over a pool.
type MockJudge struct {
	// JudgeFunc is called by JudgeRelevance if set.
	// If nil, returns a fixed mid-scale reply.
	JudgeFunc func(ctx context.Context, query, passage string) (string, error)

	mu        sync.Mutex
	callCount int
}

// NewMockJudge creates a mock judge that replies "0.5" unless overridden.
// Note: Returns concrete type to allow test assertions via call counting.
func NewMockJudge() *MockJudge {
	return &MockJudge{}
}

// JudgeRelevance returns the injected reply or the fixed default.
func (m *MockJudge) JudgeRelevance(ctx context.Context, query, passage string) (string, error) {
	m.mu.Lock()
	m.callCount++
	m.mu.Unlock()

	if m.JudgeFunc != nil {
		return m.JudgeFunc(ctx, query, passage)
	}

	return "0.5", nil
}

// CallCount returns the number of times JudgeRelevance was called.
func (m *MockJudge) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.callCount
}

// Reset clears the call count and injected behavior.
func (m *MockJudge) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callCount = 0
	m.JudgeFunc = nil
}
