package retrieval

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/poiesic/askit/ai/mock"
	"github.com/poiesic/askit/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeCandidates(hybridScores ...float64) []*core.Candidate {
	candidates := make([]*core.Candidate, len(hybridScores))
	for i, score := range hybridScores {
		candidates[i] = &core.Candidate{
			Chunk: &core.Chunk{
				Id:   core.ID(i + 1),
				Text: fmt.Sprintf("passage %d", i+1),
			},
			HybridScore: score,
		}
	}
	return candidates
}

func TestHybridReranker(t *testing.T) {
	t.Run("passes hybrid scores through", func(t *testing.T) {
		reranker := NewHybridReranker(10)
		candidates := makeCandidates(0.9, 0.5, 0.2)

		ranked := reranker.Rerank(context.Background(), "query", candidates)

		require.Len(t, ranked, 3)
		assert.Equal(t, 0.9, ranked[0].Score)
		assert.Equal(t, 0.5, ranked[1].Score)
		assert.Equal(t, 0.2, ranked[2].Score)
	})

	t.Run("limits to top K", func(t *testing.T) {
		reranker := NewHybridReranker(2)
		candidates := makeCandidates(0.9, 0.5, 0.2)

		ranked := reranker.Rerank(context.Background(), "query", candidates)

		require.Len(t, ranked, 2)
		assert.Equal(t, core.ID(1), ranked[0].Candidate.Chunk.Id)
		assert.Equal(t, core.ID(2), ranked[1].Candidate.Chunk.Id)
	})

	t.Run("empty candidate set", func(t *testing.T) {
		reranker := NewHybridReranker(10)
		ranked := reranker.Rerank(context.Background(), "query", nil)
		assert.Empty(t, ranked)
	})
}

func newTestJudgeReranker(t *testing.T, judge *mock.MockJudge, config Config) *JudgeReranker {
	t.Helper()
	reranker, err := NewJudgeReranker(judge, config)
	require.NoError(t, err)
	t.Cleanup(func() { reranker.Close() })
	return reranker
}

func TestNewJudgeReranker(t *testing.T) {
	t.Run("nil judge", func(t *testing.T) {
		_, err := NewJudgeReranker(nil, DefaultConfig())
		assert.Equal(t, ErrJudgeRequired, err)
	})

	t.Run("valid configuration", func(t *testing.T) {
		reranker := newTestJudgeReranker(t, mock.NewMockJudge(), DefaultConfig())
		assert.NotNil(t, reranker)
	})
}

func TestJudgeReranker_Rerank(t *testing.T) {
	ctx := context.Background()

	t.Run("judged scores reorder candidates", func(t *testing.T) {
		judge := mock.NewMockJudge()
		judge.JudgeFunc = func(ctx context.Context, query, passage string) (string, error) {
			// Invert the hybrid order: last passage scores highest
			if strings.Contains(passage, "passage 3") {
				return "0.95", nil
			}
			return "0.1", nil
		}
		reranker := newTestJudgeReranker(t, judge, DefaultConfig())

		ranked := reranker.Rerank(ctx, "query", makeCandidates(0.9, 0.5, 0.2))

		require.Len(t, ranked, 3)
		assert.Equal(t, core.ID(3), ranked[0].Candidate.Chunk.Id)
		assert.Equal(t, 0.95, ranked[0].Score)
	})

	t.Run("failed judgement falls back per candidate", func(t *testing.T) {
		judge := mock.NewMockJudge()
		judge.JudgeFunc = func(ctx context.Context, query, passage string) (string, error) {
			if strings.Contains(passage, "passage 2") {
				return "", errors.New("model unavailable")
			}
			return "0.8", nil
		}
		reranker := newTestJudgeReranker(t, judge, DefaultConfig())

		ranked := reranker.Rerank(ctx, "query", makeCandidates(0.9, 0.5, 0.2))

		require.Len(t, ranked, 3)
		scores := make(map[core.ID]float64, 3)
		for _, r := range ranked {
			scores[r.Candidate.Chunk.Id] = r.Score
		}
		assert.Equal(t, 0.8, scores[1])
		assert.Equal(t, 0.5, scores[2]) // hybrid fallback
		assert.Equal(t, 0.8, scores[3])
	})

	t.Run("unparseable reply falls back", func(t *testing.T) {
		judge := mock.NewMockJudge()
		judge.JudgeFunc = func(ctx context.Context, query, passage string) (string, error) {
			return "highly relevant", nil
		}
		reranker := newTestJudgeReranker(t, judge, DefaultConfig())

		ranked := reranker.Rerank(ctx, "query", makeCandidates(0.9, 0.5))

		require.Len(t, ranked, 2)
		assert.Equal(t, 0.9, ranked[0].Score)
		assert.Equal(t, 0.5, ranked[1].Score)
	})

	t.Run("extracts first number from prose reply", func(t *testing.T) {
		judge := mock.NewMockJudge()
		judge.JudgeFunc = func(ctx context.Context, query, passage string) (string, error) {
			return "Score: 0.85 because the passage matches closely.", nil
		}
		reranker := newTestJudgeReranker(t, judge, DefaultConfig())

		ranked := reranker.Rerank(ctx, "query", makeCandidates(0.3))

		require.Len(t, ranked, 1)
		assert.Equal(t, 0.85, ranked[0].Score)
	})

	t.Run("clamps out-of-range scores", func(t *testing.T) {
		judge := mock.NewMockJudge()
		judge.JudgeFunc = func(ctx context.Context, query, passage string) (string, error) {
			if strings.Contains(passage, "passage 1") {
				return "7", nil
			}
			return "-0.3", nil
		}
		reranker := newTestJudgeReranker(t, judge, DefaultConfig())

		ranked := reranker.Rerank(ctx, "query", makeCandidates(0.9, 0.5))

		require.Len(t, ranked, 2)
		assert.Equal(t, 1.0, ranked[0].Score)
		assert.Equal(t, 0.0, ranked[1].Score)
	})

	t.Run("blank passage skips the judge", func(t *testing.T) {
		judge := mock.NewMockJudge()
		candidates := makeCandidates(0.9)
		candidates[0].Chunk.Text = "   "
		reranker := newTestJudgeReranker(t, judge, DefaultConfig())

		ranked := reranker.Rerank(ctx, "query", candidates)

		require.Len(t, ranked, 1)
		assert.Equal(t, 0.9, ranked[0].Score)
		assert.Zero(t, judge.CallCount())
	})

	t.Run("limits judgements to top K", func(t *testing.T) {
		judge := mock.NewMockJudge()
		config := DefaultConfig()
		config.RerankTopK = 2
		reranker := newTestJudgeReranker(t, judge, config)

		ranked := reranker.Rerank(ctx, "query", makeCandidates(0.9, 0.5, 0.2, 0.1))

		assert.Len(t, ranked, 2)
		assert.Equal(t, 2, judge.CallCount())
	})

	t.Run("cancelled context keeps hybrid scores", func(t *testing.T) {
		judge := mock.NewMockJudge()
		cancelled, cancel := context.WithCancel(ctx)
		cancel()
		reranker := newTestJudgeReranker(t, judge, DefaultConfig())

		ranked := reranker.Rerank(cancelled, "query", makeCandidates(0.9, 0.5))

		require.Len(t, ranked, 2)
		assert.Equal(t, 0.9, ranked[0].Score)
		assert.Equal(t, 0.5, ranked[1].Score)
	})

	t.Run("equal scores preserve hybrid order", func(t *testing.T) {
		judge := mock.NewMockJudge()
		judge.JudgeFunc = func(ctx context.Context, query, passage string) (string, error) {
			return "0.5", nil
		}
		reranker := newTestJudgeReranker(t, judge, DefaultConfig())

		ranked := reranker.Rerank(ctx, "query", makeCandidates(0.9, 0.5, 0.2))

		require.Len(t, ranked, 3)
		assert.Equal(t, core.ID(1), ranked[0].Candidate.Chunk.Id)
		assert.Equal(t, core.ID(2), ranked[1].Candidate.Chunk.Id)
		assert.Equal(t, core.ID(3), ranked[2].Candidate.Chunk.Id)
	})
}

func TestTruncatePassage(t *testing.T) {
	t.Run("short passage unchanged", func(t *testing.T) {
		assert.Equal(t, "short", truncatePassage("short"))
	})

	t.Run("long passage truncated", func(t *testing.T) {
		long := strings.Repeat("a", 2500)
		truncated := truncatePassage(long)
		assert.Equal(t, strings.Repeat("a", 2000)+"…", truncated)
	})
}

func TestParseScore(t *testing.T) {
	tests := []struct {
		reply string
		want  float64
		ok    bool
	}{
		{"0.85", 0.85, true},
		{"1", 1.0, true},
		{"0", 0.0, true},
		{"Score: 0.42", 0.42, true},
		{"the score is 0.7 out of 1", 0.7, true},
		{"-0.5", -0.5, true},
		{"no number here", 0, false},
		{"", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.reply, func(t *testing.T) {
			score, ok := parseScore(tt.reply)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, score)
			}
		})
	}
}
