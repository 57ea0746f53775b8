// Package mode defines the search strategy selector.
package mode

// Mode is the search strategy.
type Mode string

// Search mode constants.
const (
	// Hybrid fans out to both ranking sources and fuses the rankings.
	Hybrid Mode = "hybrid"
	// Lexical uses the in-memory term-frequency index only.
	Lexical Mode = "lexical"
	// Semantic uses the external vector-similarity service only.
	Semantic Mode = "semantic"
)

// IsValid checks if the mode is one of the supported values.
func (m Mode) IsValid() bool {
	return m == Hybrid || m == Lexical || m == Semantic
}
