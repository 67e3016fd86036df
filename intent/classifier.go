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

package intent

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/poiesic/askit/ai"
	"github.com/poiesic/askit/core"
	"github.com/poiesic/askit/storage"
)

// Weights for blending the best match's absolute similarity with its
// margin over the runner-up. The margin term rewards a clear winner
// independent of absolute similarity magnitude.
const (
	similarityWeight = 0.7
	marginWeight     = 0.3
)

// Classifier assigns intent labels to queries by nearest-example lookup.
//
// Classification is a total function: every failure mode maps to the
// fallback label with an explanatory rationale instead of an error.
type Classifier struct {
	examples storage.ExampleRepository
	embedder ai.Embedder
	config   Config
	logger   *slog.Logger
}

// Option configures a Classifier.
type Option func(*Classifier) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *Classifier) error {
		if logger == nil {
			logger = slog.Default()
		}
		c.logger = logger
		return nil
	}
}

// NewClassifier creates a new intent classifier.
func NewClassifier(
	examples storage.ExampleRepository,
	embedder ai.Embedder,
	config Config,
	opts ...Option,
) (*Classifier, error) {
	if examples == nil {
		return nil, ErrExampleRepositoryRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}

	c := &Classifier{
		examples: examples,
		embedder: embedder,
		config:   config,
		logger:   slog.Default(),
	}

	// Apply options
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}

	return c, nil
}

// Classify determines the intent of the query.
func (c *Classifier) Classify(ctx context.Context, query string) *core.IntentClassification {
	if strings.TrimSpace(query) == "" {
		return &core.IntentClassification{
			Label:      c.config.FallbackLabel,
			Confidence: 0.0,
			Rationale:  "Empty query, nothing to classify.",
		}
	}

	embedding, err := c.embedQuery(ctx, query)
	if err != nil {
		c.logger.Warn("error embedding query for classification", "query", query, "err", err)
		return c.fallback("Could not embed the query, falling back to general help.")
	}

	matches, err := c.examples.SearchNearest(ctx, embedding, c.config.TopK)
	if err != nil {
		c.logger.Warn("error searching nearest examples", "err", err)
		matches = nil
	}
	if len(matches) == 0 {
		return c.fallback("No labeled examples available for comparison.")
	}

	// Defensive re-sort; the store is expected to return sorted results
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Similarity > matches[j].Similarity
	})

	best := matches[0]
	topSimilarity := core.SanitizeSimilarity(best.Similarity)

	var secondSimilarity float64
	if len(matches) > 1 {
		secondSimilarity = core.SanitizeSimilarity(matches[1].Similarity)
	}

	margin := topSimilarity - secondSimilarity
	if margin < 0 {
		margin = 0
	}
	confidence := core.Clamp01(similarityWeight*topSimilarity + marginWeight*margin)

	rationale := buildRationale(best.Example, topSimilarity, matches)

	if confidence < c.config.MinConfidence {
		c.logger.Debug("confidence below minimum, using fallback label",
			"confidence", confidence, "minConfidence", c.config.MinConfidence)
		return &core.IntentClassification{
			Label:      c.config.FallbackLabel,
			Confidence: core.Clamp01(c.config.FallbackConfidence),
			Rationale:  rationale,
		}
	}

	// An example stored without a task name carries no routable label
	label := core.LabelFromTask(best.Example.TaskName)
	if label == "" {
		label = c.config.FallbackLabel
	}

	return &core.IntentClassification{
		Label:           label,
		Confidence:      confidence,
		Rationale:       rationale,
		SecondaryLabels: c.secondaryLabels(matches),
	}
}

func (c *Classifier) embedQuery(ctx context.Context, query string) ([]float32, error) {
	embedCtx := ctx
	if c.config.EmbedTimeout > 0 {
		var cancel context.CancelFunc
		embedCtx, cancel = context.WithTimeout(ctx, c.config.EmbedTimeout)
		defer cancel()
	}
	return c.embedder.EmbedText(embedCtx, query)
}

func (c *Classifier) fallback(rationale string) *core.IntentClassification {
	return &core.IntentClassification{
		Label:      c.config.FallbackLabel,
		Confidence: core.Clamp01(c.config.FallbackConfidence),
		Rationale:  rationale,
	}
}

// secondaryLabels walks the runner-up matches in rank order, collecting
// up to MaxLabels-1 labels. Matches below the secondary threshold or
// duplicating an already collected label are skipped, not stopped at:
// a qualifying match further down the ranking still gets surfaced.
func (c *Classifier) secondaryLabels(matches []*core.ExampleMatch) []core.IntentLabel {
	limit := c.config.MaxLabels - 1
	if limit <= 0 || len(matches) < 2 {
		return nil
	}

	primary := core.LabelFromTask(matches[0].Example.TaskName)
	seen := map[string]bool{primary: true}

	var labels []core.IntentLabel
	for _, match := range matches[1:] {
		if len(labels) == limit {
			break
		}
		similarity := core.SanitizeSimilarity(match.Similarity)
		if similarity < c.config.SecondaryMinConfidence {
			continue
		}
		label := core.LabelFromTask(match.Example.TaskName)
		if label == "" || seen[label] {
			continue
		}
		seen[label] = true
		labels = append(labels, core.IntentLabel{Label: label, Confidence: similarity})
	}
	return labels
}

// buildRationale names the best match with its similarity as a
// percentage, the stored explanation when present, and the runner-up.
func buildRationale(best *core.Example, topSimilarity float64, matches []*core.ExampleMatch) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Best match: %s (%.0f%%)", best.Title, topSimilarity*100)
	if explanation := strings.TrimSpace(best.Explanation); explanation != "" {
		b.WriteString(" - ")
		b.WriteString(explanation)
	}
	if len(matches) > 1 {
		runnerUp := matches[1]
		fmt.Fprintf(&b, ". Runner-up: %s (%.0f%%)",
			runnerUp.Example.Title, core.SanitizeSimilarity(runnerUp.Similarity)*100)
	}
	return b.String()
}
