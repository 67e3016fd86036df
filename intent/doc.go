// Package intent classifies user queries against a labeled example set,
// producing a primary intent label with a confidence score, a rationale,
// and optional secondary labels.
package intent
