package rerank

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/askdex/askdex/internal/domain/passage"
	"github.com/askdex/askdex/internal/domain/search/candidate"
)

// --- Mocks ---

type mockScorer struct {
	grades map[string]float64
	err    error
}

func (m *mockScorer) Score(_ context.Context, _ string, text string) (float64, error) {
	if m.err != nil {
		return 0, m.err
	}
	return m.grades[text], nil
}

type mockPassages struct {
	items map[string]passage.Passage
}

func (m *mockPassages) GetMulti(ids []string) []passage.Passage {
	out := make([]passage.Passage, 0, len(ids))
	for _, id := range ids {
		if p, ok := m.items[id]; ok {
			out = append(out, p)
		}
	}
	return out
}

func makePassage(t *testing.T, id, text string) passage.Passage {
	t.Helper()
	p, err := passage.New(id, "doc-1", text, 0, passage.Prose, 0, time.Now(), nil)
	if err != nil {
		t.Fatalf("passage.New: %v", err)
	}
	return p
}

func makeFused(id string, score float64, rank int) candidate.Fused {
	return candidate.NewFused(id, score, rank, []candidate.Source{candidate.Lexical})
}

// --- Tests ---

func TestRerank_ReordersByGrade(t *testing.T) {
	passages := &mockPassages{items: map[string]passage.Passage{
		"a": makePassage(t, "a", "alpha"),
		"b": makePassage(t, "b", "bravo"),
		"c": makePassage(t, "c", "charlie"),
	}}
	scorer := &mockScorer{grades: map[string]float64{"alpha": 0.2, "bravo": 0.9, "charlie": 0.5}}
	svc := New(scorer, passages, 2)

	cands := []candidate.Fused{makeFused("a", 0.03, 0), makeFused("b", 0.02, 1), makeFused("c", 0.01, 2)}
	got, ok := svc.Rerank(context.Background(), "q", cands)
	if !ok {
		t.Fatal("expected rerank to succeed")
	}

	want := []string{"b", "c", "a"}
	for i := range want {
		if got[i].ID() != want[i] {
			t.Errorf("position %d: expected %q, got %q", i, want[i], got[i].ID())
		}
	}
}

func TestRerank_TiesKeepFusedOrder(t *testing.T) {
	passages := &mockPassages{items: map[string]passage.Passage{
		"a": makePassage(t, "a", "alpha"),
		"b": makePassage(t, "b", "bravo"),
	}}
	scorer := &mockScorer{grades: map[string]float64{"alpha": 0.5, "bravo": 0.5}}
	svc := New(scorer, passages, 2)

	cands := []candidate.Fused{makeFused("a", 0.03, 0), makeFused("b", 0.02, 1)}
	got, _ := svc.Rerank(context.Background(), "q", cands)
	if got[0].ID() != "a" || got[1].ID() != "b" {
		t.Errorf("expected stable order on ties, got %q, %q", got[0].ID(), got[1].ID())
	}
}

func TestRerank_ScorerFailureKeepsFusedOrder(t *testing.T) {
	passages := &mockPassages{items: map[string]passage.Passage{
		"a": makePassage(t, "a", "alpha"),
		"b": makePassage(t, "b", "bravo"),
	}}
	scorer := &mockScorer{err: errors.New("model overloaded")}
	svc := New(scorer, passages, 2)

	cands := []candidate.Fused{makeFused("a", 0.03, 0), makeFused("b", 0.02, 1)}
	got, ok := svc.Rerank(context.Background(), "q", cands)
	if ok {
		t.Error("expected degraded rerank")
	}
	if got[0].ID() != "a" || got[1].ID() != "b" {
		t.Errorf("expected fused order preserved, got %q, %q", got[0].ID(), got[1].ID())
	}
}

func TestRerank_SingleCandidatePassthrough(t *testing.T) {
	scorer := &mockScorer{err: errors.New("should not be called")}
	svc := New(scorer, &mockPassages{}, 2)

	cands := []candidate.Fused{makeFused("a", 0.03, 0)}
	got, ok := svc.Rerank(context.Background(), "q", cands)
	if !ok || len(got) != 1 || got[0].ID() != "a" {
		t.Errorf("expected passthrough, got %v ok=%v", got, ok)
	}
}
