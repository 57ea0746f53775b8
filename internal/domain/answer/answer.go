// Package answer defines the synthesized, citation-bearing answer value.
package answer

// WarningCode classifies an answer warning.
type WarningCode string

// Warning codes.
const (
	// StaleEvidence means the freshest cited passage is older than the
	// configured age threshold.
	StaleEvidence WarningCode = "stale_evidence"
)

// Warning flags a caveat attached to an answer.
type Warning struct {
	Code    WarningCode `json:"code"`
	Message string      `json:"message"`
}

// Answer is the synthesized response for one request. It cites only
// passages that survived permission filtering and is never persisted.
type Answer struct {
	text      string
	citations []string
	warnings  []Warning
	found     bool
}

// New creates an answer backed by the cited passages.
func New(text string, citations []string, warnings []Warning) Answer {
	return Answer{text: text, citations: citations, warnings: warnings, found: true}
}

// NotFound creates the "not found in knowledge base" answer: no citations,
// no warnings, explicitly unsupported by evidence.
func NotFound(text string) Answer {
	return Answer{text: text, found: false}
}

// Text returns the generated answer text.
func (a *Answer) Text() string { return a.text }

// Citations returns the ordered cited passage identifiers. Every entry is
// guaranteed to reference a passage that was in the supplied context.
func (a *Answer) Citations() []string { return a.citations }

// Warnings returns the attached warnings.
func (a *Answer) Warnings() []Warning { return a.warnings }

// Found reports whether the answer is supported by retrieved evidence.
func (a *Answer) Found() bool { return a.found }
