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


package openai

import (
	"context"
	"errors"
	"log/slog"

	"github.com/poiesic/askit/ai"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// Judge implements ai.RelevanceJudge using OpenAI-compatible chat APIs.
type Judge struct {
	client llms.Model
	logger *slog.Logger
}

// newJudge is an internal constructor that returns the concrete type.
// Used by Provider to manage the instance.
func newJudge(config *ai.Config) (*Judge, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if !config.JudgeEnabled() {
		return nil, errors.New("ai config: no judge model configured")
	}

	// Create OpenAI client configured for chat completion
	// Use "none" as token for local OpenAI-compatible services that don't require authentication
	client, err := openai.New(
		openai.WithBaseURL(config.JudgeHost),
		openai.WithToken("none"),
		openai.WithModel(config.JudgeModel),
	)
	if err != nil {
		return nil, err
	}

	return &Judge{
		client: client,
		logger: slog.Default().With("component", "openai-judge"),
	}, nil
}

// NewJudge creates a new relevance judge using the provided configuration.
//
// Returns ai.RelevanceJudge interface to enforce abstraction.
func NewJudge(config *ai.Config) (ai.RelevanceJudge, error) {
	return newJudge(config)
}

// JudgeRelevance asks the judge model to rate the passage's relevance to
// the query. The raw reply text is returned as-is; score parsing is the
// caller's concern because models routinely wrap the number in prose.
func (j *Judge) JudgeRelevance(ctx context.Context, query, passage string) (string, error) {
	content := []llms.MessageContent{
		{
			Role: llms.ChatMessageTypeSystem,
			Parts: []llms.ContentPart{
				llms.TextPart(judgeSystemPrompt),
			},
		},
		{
			Role: llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{
				llms.TextPart(buildJudgePrompt(query, passage)),
			},
		},
	}

	response, err := j.client.GenerateContent(ctx, content, llms.WithTemperature(0.0))
	if err != nil {
		j.logger.Warn("judge call failed", "err", err)
		return "", err
	}

	if len(response.Choices) < 1 {
		j.logger.Debug("no choices returned from judge model")
		return "", nil
	}

	return response.Choices[0].Content, nil
}
