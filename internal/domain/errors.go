package domain

import "errors"

var (
	// ErrPassageNotFound signals a missing passage.
	ErrPassageNotFound = errors.New("passage not found")
	// ErrInvalidQuery signals a malformed search request.
	ErrInvalidQuery = errors.New("invalid query")
	// ErrRetrievalUnavailable signals that every ranking source failed.
	ErrRetrievalUnavailable = errors.New("retrieval unavailable")
	// ErrGenerationFailed signals an answer-generation backend failure.
	ErrGenerationFailed = errors.New("generation failed")
	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
	// ErrAuthzUnavailable signals an authorization-service failure.
	// The permission filter resolves it to a denial, never a grant.
	ErrAuthzUnavailable = errors.New("authorization service unavailable")
)
