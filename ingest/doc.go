// Package ingest provides the seeding pipeline for documentation chunks
// and labeled examples.
//
// The Pipeline validates incoming records, generates embeddings for any
// record that lacks one, and stores the result. Embedding generation is
// fanned out over a worker pool; records arriving with precomputed
// vectors skip the embedding step entirely.
package ingest
