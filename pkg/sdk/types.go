package sdk

import "time"

// SearchRequest is the retrieval request payload.
type SearchRequest struct {
	Query          string            `json:"query"`
	Identity       string            `json:"identity"`
	Mode           string            `json:"mode,omitempty"` // hybrid, lexical, semantic
	TopK           int               `json:"top_k,omitempty"`
	CandidateK     int               `json:"candidate_k,omitempty"`
	IncludeAnswer  bool              `json:"include_answer,omitempty"`
	Rerank         bool              `json:"rerank,omitempty"`
	Filters        map[string]string `json:"filters,omitempty"`
	LexicalWeight  float64           `json:"lexical_weight,omitempty"`
	SemanticWeight float64           `json:"semantic_weight,omitempty"`
}

// SearchResult is one passage in the response.
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

// Answer is the synthesized, citation-backed answer.
type Answer struct {
	Text      string          `json:"text"`
	Citations []string        `json:"citations"`
	Warnings  []AnswerWarning `json:"warnings,omitempty"`
	Found     bool            `json:"found"`
}

// SearchResponse is the retrieval response payload.
type SearchResponse struct {
	Results  []SearchResult `json:"results"`
	Answer   *Answer        `json:"answer,omitempty"`
	Degraded []string       `json:"degraded,omitempty"`
	Method   string         `json:"method"`
	State    string         `json:"state"`
	TookMs   int64          `json:"took_ms"`
}

// Passage is one corpus entry for ingestion.
type Passage struct {
	ID         string            `json:"id"`
	DocumentID string            `json:"document_id"`
	Text       string            `json:"text"`
	TokenCount int               `json:"token_count,omitempty"`
	Kind       string            `json:"kind,omitempty"` // prose, table, code
	Ordinal    int               `json:"ordinal,omitempty"`
	ModifiedAt time.Time         `json:"modified_at"`
	Tags       map[string]string `json:"tags,omitempty"`
}

// HealthReport is the /health payload.
type HealthReport struct {
	Status       string            `json:"status"`
	Checks       map[string]string `json:"checks"`
	IndexedCount int               `json:"indexed_count"`
}

type upsertRequest struct {
	Passages []Passage `json:"passages"`
}

type upsertResponse struct {
	Changed []string `json:"changed"`
}

type deleteRequest struct {
	IDs []string `json:"ids"`
}

type deleteResponse struct {
	Removed []string `json:"removed"`
}

type invalidateResponse struct {
	Removed int `json:"removed"`
}
