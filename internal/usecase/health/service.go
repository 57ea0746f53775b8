package health

import "context"

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates partial failure; lexical-only search still works.
	Degraded Status = "degraded"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
)

// Report aggregates health check results.
type Report struct {
	Status       Status
	Checks       map[string]CheckResult
	IndexedCount int
}

// Service coordinates health checks.
type Service struct {
	vectors   VectorStorePinger
	embedding EmbeddingChecker
	index     IndexSizer
}

// New creates a Service. embedding can be nil.
func New(vectors VectorStorePinger, embedding EmbeddingChecker, index IndexSizer) *Service {
	return &Service{vectors: vectors, embedding: embedding, index: index}
}

// Check runs health checks against all components. The engine never
// reports hard failure: with the vector store down, lexical retrieval
// still answers queries.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult)

	if err := s.vectors.Ping(ctx); err != nil {
		checks["vector_store"] = CheckError
	} else {
		checks["vector_store"] = CheckOK
	}

	if s.embedding != nil {
		if err := s.embedding.HealthCheck(ctx); err != nil {
			checks["embedding"] = CheckError
		} else {
			checks["embedding"] = CheckOK
		}
	}

	status := Healthy
	for _, v := range checks {
		if v == CheckError {
			status = Degraded
			break
		}
	}

	report := Report{Status: status, Checks: checks}
	if s.index != nil {
		report.IndexedCount = s.index.Size()
	}
	return report
}
