// Package reembed regenerates the embedding vectors of stored
// documentation chunks and labeled examples, typically after switching
// to a new embedding model.
//
// Records are processed in batches with retry and exponential backoff
// around the embedding calls, progress reporting, and vector
// normalization so cosine similarity search keeps working.
package reembed
