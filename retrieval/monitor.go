package retrieval

import "github.com/poiesic/askit/core"

// Monitor provides hooks to observe the retrieval process.
// Implement this interface to track intermediate steps and results.
type Monitor interface {
	Start(query string)
	AfterEmbedding(dimensions int)
	AfterDenseSearch(ids []uint64)
	AfterLexicalSearch(ids []uint64)
	AfterFusion(candidates []*core.Candidate)
	AfterRerank(ranked []RankedCandidate)
	Finish(result *core.RetrievalResult)
}

// noopMonitor is a no-op implementation of Monitor
type noopMonitor struct{}

var _ Monitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ string)                     {}
func (n *noopMonitor) AfterEmbedding(_ int)               {}
func (n *noopMonitor) AfterDenseSearch(_ []uint64)        {}
func (n *noopMonitor) AfterLexicalSearch(_ []uint64)      {}
func (n *noopMonitor) AfterFusion(_ []*core.Candidate)    {}
func (n *noopMonitor) AfterRerank(_ []RankedCandidate)    {}
func (n *noopMonitor) Finish(_ *core.RetrievalResult)     {}
