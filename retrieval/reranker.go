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
	"regexp"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/askit/ai"
	"github.com/poiesic/askit/core"
)

// RankedCandidate is a candidate with its final relevance score.
type RankedCandidate struct {
	Candidate *core.Candidate
	Score     float64
}

// Reranker assigns final relevance scores to the top fused candidates.
// Implementations must never fail the retrieval: a candidate that cannot
// be judged keeps its hybrid score.
type Reranker interface {
	Rerank(ctx context.Context, query string, candidates []*core.Candidate) []RankedCandidate
}

// HybridReranker passes hybrid scores through unchanged. It is the
// reranking strategy used when no relevance judge is configured.
type HybridReranker struct {
	topK int
}

var _ Reranker = (*HybridReranker)(nil)

// NewHybridReranker creates a pass-through reranker over the top K candidates.
func NewHybridReranker(topK int) *HybridReranker {
	return &HybridReranker{topK: topK}
}

// Rerank returns the top K candidates scored by their hybrid score.
func (r *HybridReranker) Rerank(_ context.Context, _ string, candidates []*core.Candidate) []RankedCandidate {
	ranked := make([]RankedCandidate, 0, min(len(candidates), r.topK))
	for _, candidate := range candidates {
		if len(ranked) == r.topK {
			break
		}
		ranked = append(ranked, RankedCandidate{Candidate: candidate, Score: candidate.HybridScore})
	}
	sortRanked(ranked)
	return ranked
}

const judgePassageMaxLen = 2000

// scorePattern extracts the first number from a judge reply, tolerating
// surrounding prose.
var scorePattern = regexp.MustCompile(`-?\d+(?:\.\d+)?`)

// JudgeReranker scores the top K candidates with an LLM relevance judge,
// fanning the judgement calls out over a bounded worker pool. Every
// failure mode falls back per candidate to the hybrid score.
type JudgeReranker struct {
	judge   ai.RelevanceJudge
	topK    int
	timeout time.Duration
	pool    *ants.Pool
	logger  *slog.Logger
}

var _ Reranker = (*JudgeReranker)(nil)

// JudgeRerankerOption configures a JudgeReranker.
type JudgeRerankerOption func(*JudgeReranker) error

// WithJudgeLogger sets a custom logger.
// Default is slog.Default().
func WithJudgeLogger(logger *slog.Logger) JudgeRerankerOption {
	return func(r *JudgeReranker) error {
		if logger == nil {
			logger = slog.Default()
		}
		r.logger = logger
		return nil
	}
}

// NewJudgeReranker creates a judge-backed reranker.
func NewJudgeReranker(judge ai.RelevanceJudge, config Config, opts ...JudgeRerankerOption) (*JudgeReranker, error) {
	if judge == nil {
		return nil, ErrJudgeRequired
	}

	concurrency := config.JudgeConcurrency
	if concurrency <= 0 {
		concurrency = 1
	}
	pool, err := ants.NewPool(concurrency)
	if err != nil {
		return nil, err
	}

	r := &JudgeReranker{
		judge:   judge,
		topK:    config.RerankTopK,
		timeout: config.JudgeTimeout,
		pool:    pool,
		logger:  slog.Default(),
	}

	// Apply options
	for _, opt := range opts {
		if err := opt(r); err != nil {
			pool.Release()
			return nil, err
		}
	}

	return r, nil
}

// Close releases the worker pool.
func (r *JudgeReranker) Close() error {
	r.pool.Release()
	return nil
}

// Rerank judges the top K candidates and returns all of them sorted by
// final score descending. Candidates whose judgement fails, times out,
// or returns an unparseable reply keep their hybrid score. Order among
// equal scores follows the incoming hybrid order.
func (r *JudgeReranker) Rerank(ctx context.Context, query string, candidates []*core.Candidate) []RankedCandidate {
	limited := candidates
	if len(limited) > r.topK {
		limited = limited[:r.topK]
	}

	// Prefill with hybrid fallback scores, then overwrite per candidate
	// as judgements come back.
	ranked := make([]RankedCandidate, len(limited))
	for i, candidate := range limited {
		ranked[i] = RankedCandidate{Candidate: candidate, Score: candidate.HybridScore}
	}

	var wg sync.WaitGroup
	for i, candidate := range limited {
		if ctx.Err() != nil {
			// Context cancelled: remaining candidates keep the fallback
			break
		}

		passage := strings.TrimSpace(candidate.Chunk.Text)
		if passage == "" {
			continue
		}

		wg.Add(1)
		err := r.pool.Submit(func() {
			defer wg.Done()
			if score, ok := r.judgeCandidate(ctx, query, passage); ok {
				ranked[i].Score = score
			}
		})
		if err != nil {
			wg.Done()
			r.logger.Warn("failed to submit judgement task, keeping hybrid score",
				"chunkId", candidate.Chunk.Id, "err", err)
		}
	}
	wg.Wait()

	sortRanked(ranked)
	return ranked
}

// judgeCandidate runs a single relevance judgement.
// Returns false when the judgement failed and the caller should keep the
// hybrid fallback score.
func (r *JudgeReranker) judgeCandidate(ctx context.Context, query, passage string) (float64, bool) {
	judgeCtx := ctx
	if r.timeout > 0 {
		var cancel context.CancelFunc
		judgeCtx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	reply, err := r.judge.JudgeRelevance(judgeCtx, query, truncatePassage(passage))
	if err != nil {
		r.logger.Warn("relevance judgement failed, keeping hybrid score", "err", err)
		return 0, false
	}

	score, ok := parseScore(reply)
	if !ok {
		r.logger.Warn("could not parse judge reply, keeping hybrid score", "reply", reply)
		return 0, false
	}
	return core.Clamp01(score), true
}

// truncatePassage bounds the passage handed to the judge.
func truncatePassage(passage string) string {
	runes := []rune(passage)
	if len(runes) <= judgePassageMaxLen {
		return passage
	}
	return string(runes[:judgePassageMaxLen]) + ellipsis
}

// parseScore extracts the first number from a judge reply.
func parseScore(reply string) (float64, bool) {
	matched := scorePattern.FindString(reply)
	if matched == "" {
		return 0, false
	}
	score, err := strconv.ParseFloat(matched, 64)
	if err != nil {
		return 0, false
	}
	return score, true
}

// sortRanked orders by score descending, preserving the incoming hybrid
// order among equal scores.
func sortRanked(ranked []RankedCandidate) {
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})
}
