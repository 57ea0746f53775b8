package answer

import (
	"fmt"
	"strings"

	"github.com/askdex/askdex/internal/domain/passage"
)

// notFoundSentinel is what the model is told to emit when the context
// does not answer the question.
const notFoundSentinel = "NOT_FOUND"

const promptHeader = `Answer the question using only the passages below.
Cite every claim with the passage marker in square brackets, for example [%s].
If the passages do not answer the question, reply with exactly %s.`

// buildContext takes the longest prefix of the ranking that fits the
// token budget. Lower-ranked passages never displace higher-ranked ones:
// once a passage does not fit, everything after it is dropped too. At
// least one passage is always taken so a single oversized passage cannot
// starve the prompt.
func buildContext(passages []passage.Passage, tokenBudget int) []passage.Passage {
	picked := make([]passage.Passage, 0, len(passages))
	used := 0
	for _, p := range passages {
		if len(picked) > 0 && used+p.TokenCount() > tokenBudget {
			break
		}
		picked = append(picked, p)
		used += p.TokenCount()
	}
	return picked
}

// buildPrompt renders the grounded generation prompt.
func buildPrompt(query string, context []passage.Passage) string {
	var b strings.Builder

	example := "passage-id"
	if len(context) > 0 {
		example = context[0].ID()
	}
	fmt.Fprintf(&b, promptHeader, example, notFoundSentinel)
	b.WriteString("\n\n")

	for _, p := range context {
		fmt.Fprintf(&b, "[%s]\n%s\n\n", p.ID(), p.Text())
	}

	fmt.Fprintf(&b, "Question: %s\nAnswer:", query)
	return b.String()
}
