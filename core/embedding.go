package core

import "strings"

// ChunkEmbeddingText is the text embedded for a chunk: the heading gives
// the section context, the body carries the content.
func ChunkEmbeddingText(chunk *Chunk) string {
	if heading := strings.TrimSpace(chunk.Heading); heading != "" {
		return heading + "\n" + chunk.Text
	}
	return chunk.Text
}

// ExampleEmbeddingText is the text embedded for an example. The title is
// what user queries resemble; the explanation adds disambiguating detail.
func ExampleEmbeddingText(example *Example) string {
	if explanation := strings.TrimSpace(example.Explanation); explanation != "" {
		return example.Title + "\n" + explanation
	}
	return example.Title
}
