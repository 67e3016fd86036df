package core

import (
	"encoding/binary"
	"strings"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for domain entities.
// It is generated using content-based hashing.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// This ensures that identical content produces identical IDs.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// Chunk is a retrievable unit of task documentation.
// Chunks are immutable once ingested; the query path only reads them.
type Chunk struct {
	Id       ID
	TaskName string    // Owning task label, may be empty for general pages
	Heading  string    // Section heading the chunk was cut at
	URL      string    // Source URL including section anchor
	Text     string    // Full section text
	Vector   []float32 // Embedding vector, empty until embedded
}

// Example is a labeled task-usage sample used as the intent
// classification reference set.
type Example struct {
	Id          ID
	TaskName    string
	Title       string
	Explanation string
	Vector      []float32
}

// ChunkMatch represents a chunk hit from a single store search signal.
type ChunkMatch struct {
	Chunk *Chunk
	Score float64
}

// ExampleMatch represents an example hit from nearest-neighbor search.
type ExampleMatch struct {
	Example    *Example
	Similarity float64
}

// Candidate is a transient per-query record combining both retrieval
// signals for one chunk. At least one of InDense/InLexical is set: a
// candidate must have been surfaced by at least one retrieval path.
type Candidate struct {
	Chunk        *Chunk
	DenseScore   float64 // Raw dense similarity, meaningful only when InDense
	InDense      bool
	LexicalScore float64 // Raw lexical relevance, meaningful only when InLexical
	InLexical    bool
	HybridScore  float64 // Fused score, always computable
}

// RetrievedDocument is the public output shape of retrieval.
// It is created once per query and discarded after being handed back.
type RetrievedDocument struct {
	Category string
	Title    string
	Snippet  string
	URL      string
	Score    float64
}

// RetrievalResult holds the ranked documents for one query.
type RetrievalResult struct {
	Documents []RetrievedDocument
}

// IntentLabel pairs a task label with a confidence value.
type IntentLabel struct {
	Label      string
	Confidence float64
}

// IntentClassification is the public output of intent classification.
// Confidence is always clamped to [0,1]. When confidence falls below the
// configured minimum, Label carries the fallback label and SecondaryLabels
// is empty.
type IntentClassification struct {
	Label           string
	Confidence      float64
	Rationale       string
	SecondaryLabels []IntentLabel
}

// AllLabels returns the primary label followed by the secondary labels.
func (c *IntentClassification) AllLabels() []IntentLabel {
	labels := make([]IntentLabel, 0, 1+len(c.SecondaryLabels))
	if c.Label != "" {
		labels = append(labels, IntentLabel{Label: c.Label, Confidence: c.Confidence})
	}
	return append(labels, c.SecondaryLabels...)
}

// LabelFromTask derives a namespaced intent label from a task name.
// Returns an empty string for blank task names.
func LabelFromTask(taskName string) string {
	taskName = strings.TrimSpace(taskName)
	if taskName == "" {
		return ""
	}
	return "task." + strings.ToLower(taskName)
}
