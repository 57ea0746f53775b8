package answer

import (
	"context"

	"github.com/askdex/askdex/internal/domain/passage"
)

// Generator produces answer text from a grounded prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// PassageReader loads passage bodies for the context window.
type PassageReader interface {
	GetMulti(ids []string) []passage.Passage
}
