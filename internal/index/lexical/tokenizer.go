package lexical

import (
	"strings"
	"unicode"
)

// stopwords are excluded from indexing and querying. The list is short on
// purpose: exact abbreviations and product codes must stay matchable.
var stopwords = map[string]struct{}{
	"a": {}, "an": {}, "and": {}, "are": {}, "as": {}, "at": {},
	"be": {}, "but": {}, "by": {}, "for": {}, "from": {}, "how": {},
	"in": {}, "is": {}, "it": {}, "of": {}, "on": {}, "or": {},
	"that": {}, "the": {}, "this": {}, "to": {}, "was": {}, "what": {},
	"when": {}, "where": {}, "which": {}, "who": {}, "will": {}, "with": {},
}

// tokenize lowercases, strips punctuation, and splits on whitespace.
// No stemming: "PTO" and "PTOs" are distinct terms.
func tokenize(text string) []string {
	if text == "" {
		return nil
	}

	tokens := make([]string, 0, 32)
	var b strings.Builder
	for _, r := range text {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		if b.Len() > 0 {
			tokens = append(tokens, b.String())
			b.Reset()
		}
	}
	if b.Len() > 0 {
		tokens = append(tokens, b.String())
	}
	return tokens
}

// queryTerms tokenizes a query and drops stopwords.
func queryTerms(query string) []string {
	tokens := tokenize(query)
	terms := tokens[:0]
	for _, t := range tokens {
		if _, ok := stopwords[t]; ok {
			continue
		}
		terms = append(terms, t)
	}
	return terms
}
