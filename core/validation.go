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


package core

import "fmt"

// ValidateChunk validates a Chunk according to domain rules.
//
// Validation rules:
//   - Text must not be empty
//   - URL must not be empty
//
// NOT validated (populated later or legitimately absent):
//   - Vector (empty until the ingest pipeline embeds it)
//   - TaskName (general documentation pages carry no owning task)
//   - Heading (a default title is derived at retrieval time)
//   - ID (0 means "derive from content on insert")
func ValidateChunk(chunk *Chunk) error {
	if chunk == nil {
		return fmt.Errorf("%w: chunk is nil", ErrInvalidChunk)
	}

	if chunk.Text == "" {
		return fmt.Errorf("%w: %w", ErrInvalidChunk, ErrEmptyText)
	}

	if chunk.URL == "" {
		return fmt.Errorf("%w: %w", ErrInvalidChunk, ErrEmptyURL)
	}

	return nil
}

// ValidateExample validates an Example according to domain rules.
//
// Validation rules:
//   - TaskName must not be empty (it is the classification label)
//   - Title must not be empty (it is named in rationales)
//   - Explanation may be empty
//   - Vector may be empty until the ingest pipeline embeds it
func ValidateExample(example *Example) error {
	if example == nil {
		return fmt.Errorf("%w: example is nil", ErrInvalidExample)
	}

	if example.TaskName == "" {
		return fmt.Errorf("%w: %w", ErrInvalidExample, ErrEmptyTaskName)
	}

	if example.Title == "" {
		return fmt.Errorf("%w: %w", ErrInvalidExample, ErrEmptyTitle)
	}

	return nil
}
