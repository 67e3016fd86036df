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

import "time"

// Config holds tuning parameters for intent classification.
type Config struct {
	// TopK is the number of nearest examples fetched per query.
	TopK int

	// MinConfidence is the minimum confidence for the best match's label
	// to be accepted as the primary label.
	MinConfidence float64

	// FallbackLabel is returned when no example matches confidently.
	FallbackLabel string

	// FallbackConfidence is the fixed confidence reported with the
	// fallback label when the computed confidence fell below the minimum.
	FallbackConfidence float64

	// MaxLabels bounds the total number of labels surfaced, primary
	// included.
	MaxLabels int

	// SecondaryMinConfidence is the minimum similarity for a runner-up
	// example to be surfaced as a secondary label.
	SecondaryMinConfidence float64

	// EmbedTimeout bounds the query embedding call.
	EmbedTimeout time.Duration
}

// DefaultConfig returns the default classification configuration.
func DefaultConfig() Config {
	return Config{
		TopK:                   5,
		MinConfidence:          0.45,
		FallbackLabel:          "general.help",
		FallbackConfidence:     0.25,
		MaxLabels:              3,
		SecondaryMinConfidence: 0.4,
		EmbedTimeout:           15 * time.Second,
	}
}
