package retrieve

import (
	"context"
	"testing"
	"time"

	"github.com/askdex/askdex/internal/domain"
	domans "github.com/askdex/askdex/internal/domain/answer"
	"github.com/askdex/askdex/internal/domain/passage"
	"github.com/askdex/askdex/internal/domain/search/candidate"
	"github.com/askdex/askdex/internal/domain/search/mode"
	"github.com/askdex/askdex/internal/domain/search/request"
)

// --- Mocks ---

type mockLexical struct {
	items []candidate.Ranked
}

func (m *mockLexical) Search(_ string, _ int, _ map[string]string) []candidate.Ranked {
	return m.items
}

type mockSemantic struct {
	items []candidate.Ranked
	err   error
}

func (m *mockSemantic) Search(_ context.Context, _ []float32, _ int, _ map[string]string) ([]candidate.Ranked, error) {
	return m.items, m.err
}

type mockEmbedder struct {
	err error
}

func (m *mockEmbedder) Embed(_ context.Context, _ string) (domain.EmbeddingResult, error) {
	if m.err != nil {
		return domain.EmbeddingResult{}, m.err
	}
	return domain.EmbeddingResult{Embedding: []float32{0.1, 0.2}}, nil
}

// mockPerms allows only the listed IDs; nil allows everything.
type mockPerms struct {
	allowed map[string]bool
}

func (m *mockPerms) Filter(_ context.Context, _ domain.Identity, ids []string) []string {
	if m.allowed == nil {
		return ids
	}
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if m.allowed[id] {
			out = append(out, id)
		}
	}
	return out
}

type mockReranker struct {
	reversed bool
	ok       bool
}

func (m *mockReranker) Rerank(_ context.Context, _ string, cands []candidate.Fused) ([]candidate.Fused, bool) {
	if !m.ok {
		return cands, false
	}
	if m.reversed {
		out := make([]candidate.Fused, len(cands))
		for i := range cands {
			out[len(cands)-1-i] = cands[i]
		}
		return out, true
	}
	return cands, true
}

type mockAnswerer struct {
	ans domans.Answer
	err error
}

func (m *mockAnswerer) Compose(_ context.Context, _ string, _ []candidate.Fused) (domans.Answer, error) {
	if m.err != nil {
		return domans.Answer{}, m.err
	}
	return m.ans, nil
}

type mockPassageReader struct {
	items map[string]passage.Passage
}

func (m *mockPassageReader) GetMulti(ids []string) []passage.Passage {
	out := make([]passage.Passage, 0, len(ids))
	for _, id := range ids {
		if p, ok := m.items[id]; ok {
			out = append(out, p)
		}
	}
	return out
}

// --- Helpers ---

func makePassage(t *testing.T, id, text string) passage.Passage {
	t.Helper()
	p, err := passage.New(id, "doc-1", text, 0, passage.Prose, 0, time.Now(), nil)
	if err != nil {
		t.Fatalf("passage.New: %v", err)
	}
	return p
}

func passageReaderFor(t *testing.T, ids ...string) *mockPassageReader {
	t.Helper()
	items := make(map[string]passage.Passage, len(ids))
	for _, id := range ids {
		items[id] = makePassage(t, id, "text for "+id)
	}
	return &mockPassageReader{items: items}
}

func makeRequest(t *testing.T, m mode.Mode, includeAnswer, rerank bool) *request.Request {
	t.Helper()
	req, err := request.New("how do I request PTO", "user-1", m, 10, 50, includeAnswer, rerank, nil, 0, 0)
	if err != nil {
		t.Fatalf("request.New: %v", err)
	}
	return &req
}

func makeRequestTopK(t *testing.T, topK int) (*request.Request, error) {
	t.Helper()
	req, err := request.New("how do I request PTO", "user-1", mode.Lexical, topK, 50, false, false, nil, 0, 0)
	if err != nil {
		return nil, err
	}
	return &req, nil
}
