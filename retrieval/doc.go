// Package retrieval implements hybrid candidate fetching, optional
// LLM-judged reranking, and assembly of final retrieval results.
package retrieval
