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

import "github.com/poiesic/askit/core"

// fuseScores min-max normalizes each signal across the candidate set and
// combines them into a hybrid score:
//
//	hybrid = alpha*lexicalNorm + (1-alpha)*denseNorm
//
// A candidate missing from a signal contributes 0 for that signal, as does
// every candidate when the signal's scores are all identical.
func fuseScores(candidates []*core.Candidate, alpha float64) {
	denseMin, denseMax := signalRange(candidates, denseScore)
	lexMin, lexMax := signalRange(candidates, lexicalScore)

	for _, c := range candidates {
		var denseNorm, lexNorm float64
		if c.InDense {
			denseNorm = normalize(c.DenseScore, denseMin, denseMax)
		}
		if c.InLexical {
			lexNorm = normalize(c.LexicalScore, lexMin, lexMax)
		}
		c.HybridScore = alpha*lexNorm + (1-alpha)*denseNorm
	}
}

func denseScore(c *core.Candidate) (float64, bool)   { return c.DenseScore, c.InDense }
func lexicalScore(c *core.Candidate) (float64, bool) { return c.LexicalScore, c.InLexical }

// signalRange computes the min and max of a signal over the candidates
// that carry it.
func signalRange(candidates []*core.Candidate, signal func(*core.Candidate) (float64, bool)) (float64, float64) {
	first := true
	var min, max float64
	for _, c := range candidates {
		score, ok := signal(c)
		if !ok {
			continue
		}
		if first {
			min, max = score, score
			first = false
			continue
		}
		if score < min {
			min = score
		}
		if score > max {
			max = score
		}
	}
	return min, max
}

// normalize maps score into [0, 1] relative to the observed range.
// A degenerate range yields 0 so that an uninformative signal cannot
// dominate the fusion.
func normalize(score, min, max float64) float64 {
	if max <= min {
		return 0
	}
	return (score - min) / (max - min)
}
