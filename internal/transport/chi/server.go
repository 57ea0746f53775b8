// Package chi exposes the engine over HTTP.
package chi

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	chirouter "github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/askdex/askdex/internal/domain"
	"github.com/askdex/askdex/internal/domain/passage"
	"github.com/askdex/askdex/internal/domain/search/mode"
	"github.com/askdex/askdex/internal/domain/search/request"
	healthuc "github.com/askdex/askdex/internal/usecase/health"
	ingestuc "github.com/askdex/askdex/internal/usecase/ingest"
	retrieveuc "github.com/askdex/askdex/internal/usecase/retrieve"
)

const maxUpsertBatch = 500

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Invalidator drops cached permission decisions for an identity.
type Invalidator interface {
	Invalidate(identity domain.Identity) int
}

// searchDefaults fill request fields the client left unset.
type searchDefaults struct {
	candidateK     int
	lexicalWeight  float64
	semanticWeight float64
}

// Server routes API requests to the usecase layer.
type Server struct {
	retrieve      *retrieveuc.Service
	ingest        *ingestuc.Service
	health        *healthuc.Service
	perms         Invalidator
	logger        *zap.Logger
	defaults      searchDefaults
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	retrieve *retrieveuc.Service,
	ingest *ingestuc.Service,
	health *healthuc.Service,
	perms Invalidator,
	logger *zap.Logger,
) *Server {
	s := &Server{
		retrieve: retrieve,
		ingest:   ingest,
		health:   health,
		perms:    perms,
		logger:   logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrInvalidQuery, http.StatusBadRequest, CodeValidationFailed),
		sentinelHandler(domain.ErrPassageNotFound, http.StatusNotFound, CodePassageNotFound),
		sentinelHandler(domain.ErrRetrievalUnavailable, http.StatusServiceUnavailable, CodeRetrievalUnavailable),
		sentinelHandler(domain.ErrEmbeddingProviderError, http.StatusBadGateway, CodeEmbeddingProvider),
	}
	return s
}

// WithSearchDefaults sets the deployment-level defaults applied to
// search requests that omit the tunables.
func (s *Server) WithSearchDefaults(candidateK int, lexicalWeight, semanticWeight float64) *Server {
	s.defaults = searchDefaults{
		candidateK:     candidateK,
		lexicalWeight:  lexicalWeight,
		semanticWeight: semanticWeight,
	}
	return s
}

// Register mounts all API routes on the router.
func (s *Server) Register(r chirouter.Router) {
	r.Post("/v1/search", s.Search)
	r.Put("/v1/passages", s.UpsertPassages)
	r.Delete("/v1/passages", s.DeletePassages)
	r.Post("/v1/identities/{identity}/invalidate", s.InvalidateIdentity)
	r.Get("/health", s.HealthCheck)
}

// Search handles POST /v1/search.
func (s *Server) Search(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var body SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	if body.CandidateK == 0 {
		body.CandidateK = s.defaults.candidateK
	}
	if body.LexicalWeight == 0 && body.SemanticWeight == 0 {
		body.LexicalWeight = s.defaults.lexicalWeight
		body.SemanticWeight = s.defaults.semanticWeight
	}

	req, err := request.New(
		body.Query,
		domain.Identity(body.Identity),
		mode.Mode(body.Mode),
		body.TopK, body.CandidateK,
		body.IncludeAnswer, body.Rerank,
		body.Filters,
		body.LexicalWeight, body.SemanticWeight,
	)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	resp, err := s.retrieve.Search(r.Context(), &req)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	out := SearchResponse{
		Results:  make([]SearchResult, 0, len(resp.Results)),
		Answer:   answerToAPI(resp.Answer),
		Degraded: resp.Degraded,
		Method:   string(resp.Method),
		State:    string(resp.State),
		TookMs:   time.Since(start).Milliseconds(),
	}
	for i := range resp.Results {
		out.Results = append(out.Results, resultToAPI(&resp.Results[i]))
	}
	writeJSON(w, http.StatusOK, out)
}

// UpsertPassages handles PUT /v1/passages.
func (s *Server) UpsertPassages(w http.ResponseWriter, r *http.Request) {
	var body UpsertRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if len(body.Passages) == 0 {
		writeError(w, http.StatusBadRequest, CodeValidationFailed, "At least one passage is required")
		return
	}
	if len(body.Passages) > maxUpsertBatch {
		writeError(w, http.StatusBadRequest, CodeValidationFailed, "Batch too large")
		return
	}

	items := make([]passage.Passage, 0, len(body.Passages))
	for _, p := range body.Passages {
		item, err := passage.New(
			p.ID, p.DocumentID, p.Text,
			p.TokenCount, passage.Kind(p.Kind), p.Ordinal,
			p.ModifiedAt, p.Tags,
		)
		if err != nil {
			writeError(w, http.StatusBadRequest, CodeValidationFailed, err.Error())
			return
		}
		items = append(items, item)
	}

	changed, err := s.ingest.Upsert(r.Context(), items)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	if changed == nil {
		changed = []string{}
	}
	writeJSON(w, http.StatusOK, UpsertResponse{Changed: changed})
}

// DeletePassages handles DELETE /v1/passages.
func (s *Server) DeletePassages(w http.ResponseWriter, r *http.Request) {
	var body DeleteRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if len(body.IDs) == 0 {
		writeError(w, http.StatusBadRequest, CodeValidationFailed, "At least one passage ID is required")
		return
	}

	removed, err := s.ingest.Delete(r.Context(), body.IDs)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	if removed == nil {
		removed = []string{}
	}
	writeJSON(w, http.StatusOK, DeleteResponse{Removed: removed})
}

// InvalidateIdentity handles POST /v1/identities/{identity}/invalidate.
func (s *Server) InvalidateIdentity(w http.ResponseWriter, r *http.Request) {
	identity := chirouter.URLParam(r, "identity")
	if identity == "" {
		writeError(w, http.StatusBadRequest, CodeValidationFailed, "Identity is required")
		return
	}

	removed := s.perms.Invalidate(domain.Identity(identity))
	writeJSON(w, http.StatusOK, InvalidateResponse{Removed: removed})
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, HealthResponse{
		Status:       string(report.Status),
		Checks:       checks,
		IndexedCount: report.IndexedCount,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

func sentinelHandler(sentinel error, status int, code ErrorCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

// safeDomainMessage maps an error to a client-safe message. Anything not
// rooted in a sentinel stays opaque.
func safeDomainMessage(err error) string {
	// Validation failures carry their full detail back to the caller.
	if errors.Is(err, domain.ErrInvalidQuery) {
		return err.Error()
	}
	sentinels := []error{
		domain.ErrPassageNotFound,
		domain.ErrRetrievalUnavailable,
		domain.ErrEmbeddingProviderError,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, CodeInternalError, "internal error")
}
