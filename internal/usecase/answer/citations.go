package answer

import (
	"regexp"
	"strings"
)

var citationMarker = regexp.MustCompile(`\[([A-Za-z0-9][A-Za-z0-9_:./-]*)\]`)

// sanitizeCitations validates the citation markers in text against the
// set of passage IDs that were actually in the prompt context. Markers
// referencing unknown passages are removed from the text; the returned
// citations are the valid markers in first-appearance order, deduplicated.
func sanitizeCitations(text string, contextIDs map[string]bool) (cleaned string, citations []string) {
	seen := make(map[string]bool)

	var b strings.Builder
	b.Grow(len(text))
	last := 0
	for _, m := range citationMarker.FindAllStringSubmatchIndex(text, -1) {
		start, end := m[0], m[1]
		id := text[m[2]:m[3]]

		b.WriteString(text[last:start])
		last = end

		if contextIDs[id] {
			if !seen[id] {
				seen[id] = true
				citations = append(citations, id)
			}
			b.WriteString(text[start:end])
			continue
		}
		// Stripping the marker leaves its surrounding spaces touching;
		// swallow the trailing one so the gap closes. Whitespace runs
		// elsewhere in the text are left alone.
		if start > 0 && isBlank(text[start-1]) && last < len(text) && isBlank(text[last]) {
			last++
		}
	}
	b.WriteString(text[last:])

	return strings.TrimSpace(b.String()), citations
}

func isBlank(c byte) bool { return c == ' ' || c == '\t' }
