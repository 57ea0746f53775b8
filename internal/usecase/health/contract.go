package health

import "context"

// VectorStorePinger checks vector store availability.
type VectorStorePinger interface {
	Ping(ctx context.Context) error
}

// EmbeddingChecker checks embedding provider availability.
type EmbeddingChecker interface {
	HealthCheck(ctx context.Context) error
}

// IndexSizer reports the lexical index size.
type IndexSizer interface {
	Size() int
}
