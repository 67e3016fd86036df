package badger

import "strings"

// Stop words to filter out before lexical scoring
var stopWords = map[string]bool{
	"the": true, "a": true, "an": true, "be": true, "is": true, "are": true,
	"was": true, "to": true, "of": true, "and": true, "in": true, "that": true,
	"have": true, "it": true, "for": true, "not": true, "on": true, "with": true,
	"as": true, "you": true, "do": true, "at": true, "this": true, "but": true,
	"by": true, "from": true, "how": true, "can": true, "i": true,
}

// tokenizeAndFilter splits text into words, lowercases, trims punctuation, and removes stop words
func tokenizeAndFilter(text string) []string {
	words := strings.Fields(text)
	filtered := make([]string, 0, len(words))

	for _, word := range words {
		// Lowercase and trim punctuation
		cleaned := strings.ToLower(strings.Trim(word, ".,!?;:'\"-()[]{}"))

		// Skip stop words and empty strings
		if cleaned != "" && !stopWords[cleaned] {
			filtered = append(filtered, cleaned)
		}
	}

	return filtered
}

// lexicalScore computes a term-frequency relevance of a document against
// pre-tokenized query terms. The score sums, over the query terms, the
// term's frequency in the document divided by the document's token count.
// Documents sharing no terms with the query score 0.
func lexicalScore(document string, queryTerms []string) float64 {
	if len(queryTerms) == 0 {
		return 0
	}

	docTerms := tokenizeAndFilter(document)
	if len(docTerms) == 0 {
		return 0
	}

	counts := make(map[string]int, len(docTerms))
	for _, term := range docTerms {
		counts[term]++
	}

	var score float64
	for _, term := range queryTerms {
		if tf := counts[term]; tf > 0 {
			score += float64(tf) / float64(len(docTerms))
		}
	}
	return score
}
