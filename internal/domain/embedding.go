package domain

import "context"

// EmbeddingResult is a vector plus provider token usage.
type EmbeddingResult struct {
	Embedding    []float32
	PromptTokens int
	TotalTokens  int
}

// Embedder vectorizes text for the semantic index.
type Embedder interface {
	Embed(ctx context.Context, text string) (EmbeddingResult, error)
}

// HealthChecker is implemented by providers that can report availability.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}
