// Package passage defines the immutable unit of retrievable text.
package passage

import (
	"fmt"
	"strings"
	"time"
)

// Kind is the structural type of a passage body.
type Kind string

// Structural kind constants.
const (
	Prose Kind = "prose"
	Table Kind = "table"
	Code  Kind = "code"
)

// IsValid checks if the kind is one of the supported values.
func (k Kind) IsValid() bool {
	return k == Prose || k == Table || k == Code
}

// Passage is an immutable unit of retrievable text. It is created by the
// ingestion collaborator; the engine only reads it by identifier.
type Passage struct {
	id         string
	documentID string
	text       string
	tokenCount int
	kind       Kind
	ordinal    int
	modifiedAt time.Time
	tags       map[string]string
}

// New validates and creates a passage.
func New(
	id, documentID, text string,
	tokenCount int, kind Kind, ordinal int,
	modifiedAt time.Time, tags map[string]string,
) (Passage, error) {
	if strings.TrimSpace(id) == "" {
		return Passage{}, fmt.Errorf("passage id is required")
	}
	if strings.TrimSpace(documentID) == "" {
		return Passage{}, fmt.Errorf("document id is required")
	}
	if text == "" {
		return Passage{}, fmt.Errorf("passage text is required")
	}
	if kind == "" {
		kind = Prose
	}
	if !kind.IsValid() {
		return Passage{}, fmt.Errorf("invalid passage kind: %q", kind)
	}
	if ordinal < 0 {
		return Passage{}, fmt.Errorf("ordinal must be non-negative, got %d", ordinal)
	}
	if tokenCount <= 0 {
		tokenCount = estimateTokens(text)
	}

	return Passage{
		id:         id,
		documentID: documentID,
		text:       text,
		tokenCount: tokenCount,
		kind:       kind,
		ordinal:    ordinal,
		modifiedAt: modifiedAt,
		tags:       tags,
	}, nil
}

// ID returns the passage identifier.
func (p *Passage) ID() string { return p.id }

// DocumentID returns the owning document identifier.
func (p *Passage) DocumentID() string { return p.documentID }

// Text returns the passage body.
func (p *Passage) Text() string { return p.text }

// TokenCount returns the approximate token length of the body.
func (p *Passage) TokenCount() int { return p.tokenCount }

// Kind returns the structural type.
func (p *Passage) Kind() Kind { return p.kind }

// Ordinal returns the position within the owning document.
func (p *Passage) Ordinal() int { return p.ordinal }

// ModifiedAt returns the last-modified timestamp of the source content.
func (p *Passage) ModifiedAt() time.Time { return p.modifiedAt }

// Tags returns the categorical tags (topic, audience, document kind).
func (p *Passage) Tags() map[string]string { return p.tags }

// Tag returns a single tag value, empty if absent.
func (p *Passage) Tag(key string) string { return p.tags[key] }

// MatchesTags reports whether every filter key/value pair matches this
// passage's tags. An empty filter matches everything.
func (p *Passage) MatchesTags(filters map[string]string) bool {
	for k, want := range filters {
		if p.tags[k] != want {
			return false
		}
	}
	return true
}

// estimateTokens approximates token count as words; close enough for
// the context budget, which drops whole passages anyway.
func estimateTokens(text string) int {
	n := len(strings.Fields(text))
	if n == 0 {
		n = 1
	}
	return n
}
