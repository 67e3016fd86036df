package intent

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/poiesic/askit/ai/mock"
	"github.com/poiesic/askit/core"
	"github.com/poiesic/askit/storage"
	"github.com/poiesic/askit/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// unitVector builds a unit vector whose cosine similarity against the
// query axis [1,0,0] equals sim.
func unitVector(sim float64) []float32 {
	return []float32{float32(sim), float32(math.Sqrt(1 - sim*sim)), 0}
}

func queryEmbedder() *mock.MockEmbedder {
	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return []float32{1, 0, 0}, nil
	}
	return embedder
}

func addExamples(t *testing.T, repo storage.ExampleRepository, examples ...*core.Example) {
	t.Helper()
	added, err := repo.AddExamples(context.Background(), examples...)
	require.NoError(t, err)
	require.Len(t, added, len(examples))
}

func TestNewClassifier(t *testing.T) {
	_, exampleRepo, backend, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	defer func() {
		exampleRepo.Close()
		backend.Close()
	}()

	embedder := mock.NewMockEmbedder()

	t.Run("valid configuration", func(t *testing.T) {
		classifier, err := NewClassifier(exampleRepo, embedder, DefaultConfig())
		require.NoError(t, err)
		assert.NotNil(t, classifier)
	})

	t.Run("with nil logger falls back to default", func(t *testing.T) {
		classifier, err := NewClassifier(exampleRepo, embedder, DefaultConfig(), WithLogger(nil))
		require.NoError(t, err)
		assert.NotNil(t, classifier)
	})

	t.Run("nil example repository", func(t *testing.T) {
		_, err := NewClassifier(nil, embedder, DefaultConfig())
		assert.Equal(t, ErrExampleRepositoryRequired, err)
	})

	t.Run("nil embedder", func(t *testing.T) {
		_, err := NewClassifier(exampleRepo, nil, DefaultConfig())
		assert.Equal(t, ErrEmbedderRequired, err)
	})
}

func TestClassify_BlankQuery(t *testing.T) {
	_, exampleRepo, backend, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	defer func() {
		exampleRepo.Close()
		backend.Close()
	}()

	embedder := mock.NewMockEmbedder()
	classifier, err := NewClassifier(exampleRepo, embedder, DefaultConfig())
	require.NoError(t, err)

	for _, query := range []string{"", "   ", "\n\t"} {
		result := classifier.Classify(context.Background(), query)
		assert.Equal(t, "general.help", result.Label)
		assert.Zero(t, result.Confidence)
		assert.NotEmpty(t, result.Rationale)
		assert.Empty(t, result.SecondaryLabels)
	}

	// No embedding call is made for blank queries
	assert.Zero(t, embedder.CallCount())
}

func TestClassify_EmbeddingFailure(t *testing.T) {
	_, exampleRepo, backend, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	defer func() {
		exampleRepo.Close()
		backend.Close()
	}()

	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return nil, errors.New("embedding service down")
	}

	classifier, err := NewClassifier(exampleRepo, embedder, DefaultConfig())
	require.NoError(t, err)

	result := classifier.Classify(context.Background(), "how do I export a table")
	assert.Equal(t, "general.help", result.Label)
	assert.Equal(t, 0.25, result.Confidence)
	assert.Contains(t, result.Rationale, "embed")
	assert.Empty(t, result.SecondaryLabels)
}

func TestClassify_NoExamples(t *testing.T) {
	_, exampleRepo, backend, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	defer func() {
		exampleRepo.Close()
		backend.Close()
	}()

	classifier, err := NewClassifier(exampleRepo, queryEmbedder(), DefaultConfig())
	require.NoError(t, err)

	result := classifier.Classify(context.Background(), "how do I export a table")
	assert.Equal(t, "general.help", result.Label)
	assert.Equal(t, 0.25, result.Confidence)
	assert.Contains(t, result.Rationale, "examples")
	assert.Empty(t, result.SecondaryLabels)
}

func TestClassify_ConfidentMatch(t *testing.T) {
	_, exampleRepo, backend, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	defer func() {
		exampleRepo.Close()
		backend.Close()
	}()

	addExamples(t, exampleRepo,
		&core.Example{
			TaskName:    "Db2Dump",
			Title:       "Export a DB2 table",
			Explanation: "Dumps a table into a flat file.",
			Vector:      unitVector(0.9),
		},
		&core.Example{
			TaskName: "CsvImport",
			Title:    "Import a CSV file",
			Vector:   unitVector(0.5),
		},
	)

	classifier, err := NewClassifier(exampleRepo, queryEmbedder(), DefaultConfig())
	require.NoError(t, err)

	result := classifier.Classify(context.Background(), "how do I export a table")

	assert.Equal(t, "task.db2dump", result.Label)
	// confidence = 0.7*0.9 + 0.3*(0.9-0.5) = 0.75
	assert.InDelta(t, 0.75, result.Confidence, 1e-6)
	assert.Contains(t, result.Rationale, "Export a DB2 table")
	assert.Contains(t, result.Rationale, "90%")
	assert.Contains(t, result.Rationale, "Dumps a table")
	assert.Contains(t, result.Rationale, "Runner-up: Import a CSV file")
}

func TestClassify_BlankTaskNameUsesFallbackLabel(t *testing.T) {
	_, exampleRepo, backend, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	defer func() {
		exampleRepo.Close()
		backend.Close()
	}()

	// AddExamples does not validate, so an example without a task name
	// can reach the classifier through the repository surface
	addExamples(t, exampleRepo, &core.Example{
		Title:  "Orphan",
		Vector: unitVector(1.0),
	})

	classifier, err := NewClassifier(exampleRepo, queryEmbedder(), DefaultConfig())
	require.NoError(t, err)

	result := classifier.Classify(context.Background(), "orphan query")

	// The labelless match still wins on confidence but cannot route
	assert.Equal(t, "general.help", result.Label)
	assert.InDelta(t, 1.0, result.Confidence, 1e-9)
	assert.Contains(t, result.Rationale, "Orphan")
}

func TestClassify_LowConfidenceFallsBack(t *testing.T) {
	_, exampleRepo, backend, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	defer func() {
		exampleRepo.Close()
		backend.Close()
	}()

	// Single mediocre match: confidence = 0.7*0.30 = 0.21 < 0.45
	addExamples(t, exampleRepo, &core.Example{
		TaskName: "Db2Dump",
		Title:    "Export a DB2 table",
		Vector:   unitVector(0.30),
	})

	classifier, err := NewClassifier(exampleRepo, queryEmbedder(), DefaultConfig())
	require.NoError(t, err)

	result := classifier.Classify(context.Background(), "something unrelated")

	// Fallback label with the configured confidence, not the computed one
	assert.Equal(t, "general.help", result.Label)
	assert.Equal(t, 0.25, result.Confidence)
	// The rationale still names the best match for transparency
	assert.Contains(t, result.Rationale, "Export a DB2 table")
	assert.Empty(t, result.SecondaryLabels)
}

func TestClassify_SecondaryLabels(t *testing.T) {
	t.Run("skips below threshold but continues past", func(t *testing.T) {
		_, exampleRepo, backend, err := badger.NewMemoryRepositories()
		require.NoError(t, err)
		defer func() {
			exampleRepo.Close()
			backend.Close()
		}()

		addExamples(t, exampleRepo,
			&core.Example{TaskName: "Db2Dump", Title: "Export", Vector: unitVector(0.9)},
			&core.Example{TaskName: "GeoTransform", Title: "Transform", Vector: unitVector(0.2)},
			&core.Example{TaskName: "CsvImport", Title: "Import", Vector: unitVector(0.5)},
		)

		classifier, err := NewClassifier(exampleRepo, queryEmbedder(), DefaultConfig())
		require.NoError(t, err)

		result := classifier.Classify(context.Background(), "export my data")

		assert.Equal(t, "task.db2dump", result.Label)
		// The 0.2 match is skipped, the 0.5 match past it still qualifies
		require.Len(t, result.SecondaryLabels, 1)
		assert.Equal(t, "task.csvimport", result.SecondaryLabels[0].Label)
		assert.InDelta(t, 0.5, result.SecondaryLabels[0].Confidence, 1e-6)
	})

	t.Run("deduplicates labels", func(t *testing.T) {
		_, exampleRepo, backend, err := badger.NewMemoryRepositories()
		require.NoError(t, err)
		defer func() {
			exampleRepo.Close()
			backend.Close()
		}()

		addExamples(t, exampleRepo,
			&core.Example{TaskName: "Db2Dump", Title: "Export tables", Vector: unitVector(0.9)},
			&core.Example{TaskName: "Db2Dump", Title: "Export schemas", Vector: unitVector(0.8)},
			&core.Example{TaskName: "CsvImport", Title: "Import", Vector: unitVector(0.7)},
		)

		classifier, err := NewClassifier(exampleRepo, queryEmbedder(), DefaultConfig())
		require.NoError(t, err)

		result := classifier.Classify(context.Background(), "export my data")

		assert.Equal(t, "task.db2dump", result.Label)
		require.Len(t, result.SecondaryLabels, 1)
		assert.Equal(t, "task.csvimport", result.SecondaryLabels[0].Label)
	})

	t.Run("bounded by max labels", func(t *testing.T) {
		_, exampleRepo, backend, err := badger.NewMemoryRepositories()
		require.NoError(t, err)
		defer func() {
			exampleRepo.Close()
			backend.Close()
		}()

		addExamples(t, exampleRepo,
			&core.Example{TaskName: "A", Title: "A", Vector: unitVector(0.9)},
			&core.Example{TaskName: "B", Title: "B", Vector: unitVector(0.8)},
			&core.Example{TaskName: "C", Title: "C", Vector: unitVector(0.7)},
			&core.Example{TaskName: "D", Title: "D", Vector: unitVector(0.6)},
		)

		config := DefaultConfig()
		config.MaxLabels = 2

		classifier, err := NewClassifier(exampleRepo, queryEmbedder(), config)
		require.NoError(t, err)

		result := classifier.Classify(context.Background(), "anything")

		assert.Equal(t, "task.a", result.Label)
		assert.Len(t, result.SecondaryLabels, 1)
	})
}

func TestClassify_ConfidenceAlwaysClamped(t *testing.T) {
	_, exampleRepo, backend, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	defer func() {
		exampleRepo.Close()
		backend.Close()
	}()

	addExamples(t, exampleRepo,
		&core.Example{TaskName: "Db2Dump", Title: "Export", Vector: unitVector(1.0)},
		&core.Example{TaskName: "CsvImport", Title: "Import", Vector: unitVector(-0.5)},
	)

	classifier, err := NewClassifier(exampleRepo, queryEmbedder(), DefaultConfig())
	require.NoError(t, err)

	result := classifier.Classify(context.Background(), "export")

	assert.GreaterOrEqual(t, result.Confidence, 0.0)
	assert.LessOrEqual(t, result.Confidence, 1.0)
	for _, label := range result.SecondaryLabels {
		assert.GreaterOrEqual(t, label.Confidence, 0.0)
		assert.LessOrEqual(t, label.Confidence, 1.0)
	}
}

func TestAllLabels(t *testing.T) {
	classification := &core.IntentClassification{
		Label:      "task.db2dump",
		Confidence: 0.8,
		SecondaryLabels: []core.IntentLabel{
			{Label: "task.csvimport", Confidence: 0.5},
		},
	}

	labels := classification.AllLabels()
	require.Len(t, labels, 2)
	assert.Equal(t, "task.db2dump", labels[0].Label)
	assert.Equal(t, "task.csvimport", labels[1].Label)
}
