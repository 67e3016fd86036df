package openai

import "fmt"

const judgeSystemPrompt = "You are a retrieval cross-encoder. Score how relevant the passage is for the query. " +
	"Return only a floating point number between 0 and 1."

// buildJudgePrompt assembles the user message for a relevance judgment.
// The passage is expected to be pre-truncated by the caller.
func buildJudgePrompt(query, passage string) string {
	return fmt.Sprintf("Query: %s\n\nPassage:\n%s", query, passage)
}
