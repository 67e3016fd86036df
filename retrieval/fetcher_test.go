package retrieval

import (
	"context"
	"errors"
	"testing"

	"github.com/poiesic/askit/ai/mock"
	"github.com/poiesic/askit/core"
	"github.com/poiesic/askit/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewHybridFetcher(t *testing.T) {
	docRepo, _, backend, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	defer func() {
		docRepo.Close()
		backend.Close()
	}()

	embedder := mock.NewMockEmbedder()

	t.Run("valid configuration", func(t *testing.T) {
		fetcher, err := NewHybridFetcher(docRepo, embedder, DefaultConfig())
		require.NoError(t, err)
		assert.NotNil(t, fetcher)
	})

	t.Run("with nil logger falls back to default", func(t *testing.T) {
		fetcher, err := NewHybridFetcher(docRepo, embedder, DefaultConfig(), WithFetcherLogger(nil))
		require.NoError(t, err)
		assert.NotNil(t, fetcher)
	})

	t.Run("nil document repository", func(t *testing.T) {
		_, err := NewHybridFetcher(nil, embedder, DefaultConfig())
		assert.Equal(t, ErrDocumentRepositoryRequired, err)
	})

	t.Run("nil embedder", func(t *testing.T) {
		_, err := NewHybridFetcher(docRepo, nil, DefaultConfig())
		assert.Equal(t, ErrEmbedderRequired, err)
	})
}

func TestFetch_EmptyDatabase(t *testing.T) {
	docRepo, _, backend, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	defer func() {
		docRepo.Close()
		backend.Close()
	}()

	fetcher, err := NewHybridFetcher(docRepo, mock.NewMockEmbedder(), DefaultConfig())
	require.NoError(t, err)

	candidates := fetcher.Fetch(context.Background(), "csv import delimiter")
	assert.Empty(t, candidates)
}

func TestFetch_UnionsBothSignals(t *testing.T) {
	docRepo, _, backend, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	defer func() {
		docRepo.Close()
		backend.Close()
	}()

	ctx := context.Background()

	// One chunk matches the query vector, one matches the query terms,
	// one matches both.
	chunks := []*core.Chunk{
		{
			TaskName: "csvimport/options",
			Heading:  "Delimiter",
			URL:      "https://docs.example.com/csv#delimiter",
			Text:     "unrelated words entirely",
			Vector:   []float32{0.9, 0.1, 0.0},
		},
		{
			TaskName: "db2dump/export",
			Heading:  "Export",
			URL:      "https://docs.example.com/db2#export",
			Text:     "configure delimiter settings here",
			Vector:   []float32{0.0, 0.1, 0.9},
		},
		{
			TaskName: "csvimport/format",
			Heading:  "Format",
			URL:      "https://docs.example.com/csv#format",
			Text:     "delimiter and quoting rules",
			Vector:   []float32{0.85, 0.15, 0.0},
		},
	}
	added, err := docRepo.AddChunks(ctx, chunks...)
	require.NoError(t, err)
	require.Len(t, added, 3)

	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return []float32{0.9, 0.1, 0.0}, nil
	}

	fetcher, err := NewHybridFetcher(docRepo, embedder, DefaultConfig())
	require.NoError(t, err)

	candidates := fetcher.Fetch(ctx, "delimiter settings")

	// Union, each chunk exactly once
	require.Len(t, candidates, 3)
	seen := make(map[core.ID]bool)
	for _, c := range candidates {
		assert.False(t, seen[c.Chunk.Id], "chunk %d appeared twice", c.Chunk.Id)
		seen[c.Chunk.Id] = true
	}

	// Sorted by hybrid score descending
	for i := 0; i < len(candidates)-1; i++ {
		assert.GreaterOrEqual(t, candidates[i].HybridScore, candidates[i+1].HybridScore)
	}

	// Signal membership is tracked per candidate
	byURL := make(map[string]*core.Candidate)
	for _, c := range candidates {
		byURL[c.Chunk.URL] = c
	}
	assert.True(t, byURL["https://docs.example.com/csv#delimiter"].InDense)
	assert.False(t, byURL["https://docs.example.com/csv#delimiter"].InLexical)
	assert.True(t, byURL["https://docs.example.com/db2#export"].InLexical)
	assert.True(t, byURL["https://docs.example.com/csv#format"].InDense)
	assert.True(t, byURL["https://docs.example.com/csv#format"].InLexical)
}

func TestFetch_EmbeddingFailureDegradesDenseSignal(t *testing.T) {
	docRepo, _, backend, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	defer func() {
		docRepo.Close()
		backend.Close()
	}()

	ctx := context.Background()

	chunks := []*core.Chunk{
		{
			Heading: "Delimiter",
			URL:     "https://docs.example.com/csv#delimiter",
			Text:    "configure delimiter settings",
			Vector:  []float32{0.9, 0.1, 0.0},
		},
	}
	_, err = docRepo.AddChunks(ctx, chunks...)
	require.NoError(t, err)

	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return nil, errors.New("embedding service down")
	}

	fetcher, err := NewHybridFetcher(docRepo, embedder, DefaultConfig())
	require.NoError(t, err)

	// Lexical signal alone still produces candidates
	candidates := fetcher.Fetch(ctx, "delimiter settings")
	require.Len(t, candidates, 1)
	assert.True(t, candidates[0].InLexical)
}

func TestFetch_NoSignalMatches(t *testing.T) {
	docRepo, _, backend, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	defer func() {
		docRepo.Close()
		backend.Close()
	}()

	ctx := context.Background()

	// Chunk without a vector and without term overlap
	chunks := []*core.Chunk{
		{
			Heading: "Unrelated",
			URL:     "https://docs.example.com/other",
			Text:    "completely different topic",
		},
	}
	_, err = docRepo.AddChunks(ctx, chunks...)
	require.NoError(t, err)

	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return nil, errors.New("embedding service down")
	}

	fetcher, err := NewHybridFetcher(docRepo, embedder, DefaultConfig())
	require.NoError(t, err)

	candidates := fetcher.Fetch(ctx, "delimiter")
	assert.Empty(t, candidates)
}

func TestFetch_RespectsCandidateLimit(t *testing.T) {
	docRepo, _, backend, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	defer func() {
		docRepo.Close()
		backend.Close()
	}()

	ctx := context.Background()

	chunks := make([]*core.Chunk, 10)
	for i := range chunks {
		chunks[i] = &core.Chunk{
			Heading: "Delimiter",
			URL:     "https://docs.example.com/csv#" + string(rune('a'+i)),
			Text:    "delimiter settings",
			Vector:  []float32{0.9, 0.1, float32(i) * 0.01},
		}
	}
	_, err = docRepo.AddChunks(ctx, chunks...)
	require.NoError(t, err)

	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return []float32{0.9, 0.1, 0.0}, nil
	}

	config := DefaultConfig()
	config.CandidateLimit = 5

	fetcher, err := NewHybridFetcher(docRepo, embedder, config)
	require.NoError(t, err)

	candidates := fetcher.Fetch(ctx, "delimiter settings")

	// Each signal is capped at the limit; the union can be larger but
	// here both signals see the same corpus.
	assert.LessOrEqual(t, len(candidates), 10)
	assert.NotEmpty(t, candidates)
}

func TestFetchWithMonitor(t *testing.T) {
	docRepo, _, backend, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	defer func() {
		docRepo.Close()
		backend.Close()
	}()

	ctx := context.Background()

	chunks := []*core.Chunk{
		{
			Heading: "Delimiter",
			URL:     "https://docs.example.com/csv#delimiter",
			Text:    "delimiter settings",
			Vector:  []float32{0.9, 0.1, 0.0},
		},
	}
	_, err = docRepo.AddChunks(ctx, chunks...)
	require.NoError(t, err)

	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return []float32{0.9, 0.1, 0.0}, nil
	}

	fetcher, err := NewHybridFetcher(docRepo, embedder, DefaultConfig())
	require.NoError(t, err)

	monitor := &testMonitor{}
	candidates := fetcher.FetchWithMonitor(ctx, "delimiter settings", monitor)

	assert.NotEmpty(t, candidates)
	assert.True(t, monitor.afterDense)
	assert.True(t, monitor.afterLexical)
	assert.True(t, monitor.afterFusion)
}

// testMonitor is a simple test implementation of Monitor
type testMonitor struct {
	started      bool
	afterDense   bool
	afterLexical bool
	afterFusion  bool
	afterRerank  bool
	finished     bool
}

func (m *testMonitor) Start(query string)                  { m.started = true }
func (m *testMonitor) AfterEmbedding(dimensions int)       {}
func (m *testMonitor) AfterDenseSearch(ids []uint64)       { m.afterDense = true }
func (m *testMonitor) AfterLexicalSearch(ids []uint64)     { m.afterLexical = true }
func (m *testMonitor) AfterFusion(c []*core.Candidate)     { m.afterFusion = true }
func (m *testMonitor) AfterRerank(r []RankedCandidate)     { m.afterRerank = true }
func (m *testMonitor) Finish(res *core.RetrievalResult)    { m.finished = true }
