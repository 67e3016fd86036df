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
	"strings"

	"github.com/poiesic/askit/core"
)

const (
	snippetMaxLen = 320
	ellipsis      = "…"

	defaultCategory = "Document"
	defaultTitle    = "Task documentation"
)

// buildDocument maps a ranked candidate to the document shape handed to callers.
func buildDocument(ranked RankedCandidate) core.RetrievedDocument {
	chunk := ranked.Candidate.Chunk
	return core.RetrievedDocument{
		Category: categoryFromTask(chunk.TaskName),
		Title:    titleFromHeading(chunk.Heading),
		Snippet:  buildSnippet(chunk.Text),
		URL:      chunk.URL,
		Score:    ranked.Score,
	}
}

// categoryFromTask derives a display category from a task name, using the
// portion before the first slash. Chunks without a task fall back to a
// generic category.
func categoryFromTask(taskName string) string {
	taskName = strings.TrimSpace(taskName)
	if taskName == "" {
		return defaultCategory
	}
	if idx := strings.Index(taskName, "/"); idx >= 0 {
		return taskName[:idx]
	}
	return taskName
}

func titleFromHeading(heading string) string {
	heading = strings.TrimSpace(heading)
	if heading == "" {
		return defaultTitle
	}
	return heading
}

// buildSnippet collapses runs of whitespace to single spaces and truncates
// to a bounded preview, appending an ellipsis when text was cut.
func buildSnippet(text string) string {
	normalized := strings.Join(strings.Fields(text), " ")
	runes := []rune(normalized)
	if len(runes) <= snippetMaxLen {
		return normalized
	}
	return string(runes[:snippetMaxLen]) + ellipsis
}
