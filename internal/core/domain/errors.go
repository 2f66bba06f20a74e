package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedType indicates an unknown provider, backend or document format.
	ErrUnsupportedType = errors.New("unsupported type")

	// ErrInvalidConfig indicates the configuration violates a startup invariant.
	// This is an operator error and must stop the process before serving.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrCompletionUnavailable indicates the completion service is not configured
	// or could not be reached. Classification degrades to the fallback category.
	ErrCompletionUnavailable = errors.New("completion service unavailable")

	// ErrEmbeddingUnavailable indicates the embedding service is not configured.
	// Vector index backends cannot operate without it.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrIndexUnavailable indicates the index service is not configured or unreachable.
	ErrIndexUnavailable = errors.New("index service unavailable")

	// ErrRateLimited indicates an outbound call was refused by a local or remote limit.
	ErrRateLimited = errors.New("rate limited")
)
