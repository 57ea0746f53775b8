package chi

import (
	"time"

	domans "github.com/askdex/askdex/internal/domain/answer"
	"github.com/askdex/askdex/internal/domain/search/result"
)

// ErrorCode classifies an API error response.
type ErrorCode string

// API error codes.
const (
	CodeBadRequest           ErrorCode = "bad_request"
	CodeValidationFailed     ErrorCode = "validation_failed"
	CodePassageNotFound      ErrorCode = "passage_not_found"
	CodeRetrievalUnavailable ErrorCode = "retrieval_unavailable"
	CodeEmbeddingProvider    ErrorCode = "embedding_provider_error"
	CodeInternalError        ErrorCode = "internal_error"
)

// ErrorResponse is the uniform error payload.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// SearchRequest is the POST /v1/search payload.
type SearchRequest struct {
	Query          string            `json:"query"`
	Identity       string            `json:"identity"`
	Mode           string            `json:"mode,omitempty"`
	TopK           int               `json:"top_k,omitempty"`
	CandidateK     int               `json:"candidate_k,omitempty"`
	IncludeAnswer  bool              `json:"include_answer,omitempty"`
	Rerank         bool              `json:"rerank,omitempty"`
	Filters        map[string]string `json:"filters,omitempty"`
	LexicalWeight  float64           `json:"lexical_weight,omitempty"`
	SemanticWeight float64           `json:"semantic_weight,omitempty"`
}

// SearchResult is one response entry.
type SearchResult struct {
	ID         string   `json:"id"`
	DocumentID string   `json:"document_id"`
	Text       string   `json:"text"`
	Score      float64  `json:"score"`
	Sources    []string `json:"sources"`
}

// AnswerWarning is a caveat attached to an answer.
type AnswerWarning struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// SearchAnswer is the synthesized answer payload.
type SearchAnswer struct {
	Text      string          `json:"text"`
	Citations []string        `json:"citations"`
	Warnings  []AnswerWarning `json:"warnings,omitempty"`
	Found     bool            `json:"found"`
}

// SearchResponse is the POST /v1/search response. Method is the search
// mode that actually served the request; under degradation it may be
// narrower than the requested mode.
type SearchResponse struct {
	Results  []SearchResult `json:"results"`
	Answer   *SearchAnswer  `json:"answer,omitempty"`
	Degraded []string       `json:"degraded,omitempty"`
	Method   string         `json:"method"`
	State    string         `json:"state"`
	TookMs   int64          `json:"took_ms"`
}

// PassagePayload is one passage in an upsert batch.
type PassagePayload struct {
	ID         string            `json:"id"`
	DocumentID string            `json:"document_id"`
	Text       string            `json:"text"`
	TokenCount int               `json:"token_count,omitempty"`
	Kind       string            `json:"kind,omitempty"`
	Ordinal    int               `json:"ordinal,omitempty"`
	ModifiedAt time.Time         `json:"modified_at"`
	Tags       map[string]string `json:"tags,omitempty"`
}

// UpsertRequest is the PUT /v1/passages payload.
type UpsertRequest struct {
	Passages []PassagePayload `json:"passages"`
}

// UpsertResponse reports which passages actually changed.
type UpsertResponse struct {
	Changed []string `json:"changed"`
}

// DeleteRequest is the DELETE /v1/passages payload.
type DeleteRequest struct {
	IDs []string `json:"ids"`
}

// DeleteResponse reports which passages were removed.
type DeleteResponse struct {
	Removed []string `json:"removed"`
}

// InvalidateResponse reports how many cached decisions were dropped.
type InvalidateResponse struct {
	Removed int `json:"removed"`
}

// HealthResponse is the GET /health payload.
type HealthResponse struct {
	Status       string            `json:"status"`
	Checks       map[string]string `json:"checks"`
	IndexedCount int               `json:"indexed_count"`
}

func resultToAPI(r *result.Result) SearchResult {
	sources := make([]string, len(r.Sources()))
	for i, s := range r.Sources() {
		sources[i] = string(s)
	}
	return SearchResult{
		ID:         r.ID(),
		DocumentID: r.DocumentID(),
		Text:       r.Text(),
		Score:      r.Score(),
		Sources:    sources,
	}
}

func answerToAPI(a *domans.Answer) *SearchAnswer {
	if a == nil {
		return nil
	}
	warnings := make([]AnswerWarning, 0, len(a.Warnings()))
	for _, w := range a.Warnings() {
		warnings = append(warnings, AnswerWarning{Code: string(w.Code), Message: w.Message})
	}
	return &SearchAnswer{
		Text:      a.Text(),
		Citations: a.Citations(),
		Warnings:  warnings,
		Found:     a.Found(),
	}
}
