// Package openai implements the ai interfaces against OpenAI-compatible
// HTTP APIs (OpenAI, Ollama, LocalAI, vLLM and similar).
//
// The embedder and the relevance judge are thin wrappers over langchaingo
// clients. Both are stateless and safe for concurrent use.
package openai
