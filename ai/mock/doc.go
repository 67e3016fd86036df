// Package mock provides test doubles for the ai interfaces.
//
// The mock embedder produces deterministic hash-based vectors so tests
// get stable similarity orderings without an embedding service. The mock
// judge replies with a fixed score unless a JudgeFunc is injected.
package mock
