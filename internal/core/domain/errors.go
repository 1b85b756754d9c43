package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrChunkConfig indicates invalid chunking parameters.
	// Ingestion fails fast on this; it is never retried.
	ErrChunkConfig = errors.New("invalid chunking configuration")

	// ErrEmbedding indicates embedding computation failed for a label.
	// Already-embedded passages are unaffected; the caller may retry.
	ErrEmbedding = errors.New("embedding failed")

	// ErrModelUnavailable indicates the embedding model is not reachable.
	ErrModelUnavailable = errors.New("embedding model unavailable")

	// ErrDimensionMismatch indicates a vector does not match the
	// process-wide embedding dimension. Such vectors are rejected,
	// never silently stored.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")
)
