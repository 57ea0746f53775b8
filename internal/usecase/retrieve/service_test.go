package retrieve

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/askdex/askdex/internal/domain"
	domans "github.com/askdex/askdex/internal/domain/answer"
	"github.com/askdex/askdex/internal/domain/search/candidate"
	"github.com/askdex/askdex/internal/domain/search/mode"
)

func newServiceForTest(
	lex LexicalSearcher, sem SemanticSearcher, embed Embedder,
	perms PermissionFilter, rr Reranker, ans Answerer, pr PassageReader,
) *Service {
	return New(lex, sem, embed, perms, rr, ans, pr, 60, time.Second)
}

func TestSearch_HybridFusesBothSources(t *testing.T) {
	lex := &mockLexical{items: ranked(candidate.Lexical, "a", "shared", "b")}
	sem := &mockSemantic{items: ranked(candidate.Semantic, "c", "shared", "d")}
	svc := newServiceForTest(lex, sem, &mockEmbedder{}, &mockPerms{}, nil, nil,
		passageReaderFor(t, "a", "b", "c", "d", "shared"))

	resp, err := svc.Search(context.Background(), makeRequest(t, mode.Hybrid, false, false))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if resp.Results[0].ID() != "shared" {
		t.Errorf("expected overlap candidate first, got %q", resp.Results[0].ID())
	}
	if len(resp.Results) != 5 {
		t.Errorf("expected 5 results, got %d", len(resp.Results))
	}
	if resp.State != StateReturned {
		t.Errorf("expected final state RETURNED, got %s", resp.State)
	}
	if resp.Method != mode.Hybrid {
		t.Errorf("expected hybrid method, got %s", resp.Method)
	}
	if len(resp.Degraded) != 0 {
		t.Errorf("expected no degradation, got %v", resp.Degraded)
	}
}

func TestSearch_OneSourceFailsDegrades(t *testing.T) {
	lex := &mockLexical{items: ranked(candidate.Lexical, "a", "b")}
	sem := &mockSemantic{err: errors.New("redis: connection refused")}
	svc := newServiceForTest(lex, sem, &mockEmbedder{}, &mockPerms{}, nil, nil,
		passageReaderFor(t, "a", "b"))

	resp, err := svc.Search(context.Background(), makeRequest(t, mode.Hybrid, false, false))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(resp.Results) != 2 {
		t.Errorf("expected lexical-only results, got %d", len(resp.Results))
	}
	if len(resp.Degraded) != 1 || resp.Degraded[0] != DegradedSourceFailed {
		t.Errorf("expected source_failed degradation, got %v", resp.Degraded)
	}
	if resp.Method != mode.Lexical {
		t.Errorf("expected method to narrow to lexical, got %s", resp.Method)
	}
}

func TestSearch_MethodReflectsRequestedSingleSource(t *testing.T) {
	sem := &mockSemantic{items: ranked(candidate.Semantic, "a")}
	svc := newServiceForTest(&mockLexical{}, sem, &mockEmbedder{}, &mockPerms{}, nil, nil,
		passageReaderFor(t, "a"))

	resp, err := svc.Search(context.Background(), makeRequest(t, mode.Semantic, false, false))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Method != mode.Semantic {
		t.Errorf("expected semantic method, got %s", resp.Method)
	}
}

func TestSearch_AllSourcesFail(t *testing.T) {
	sem := &mockSemantic{err: errors.New("redis: connection refused")}
	svc := newServiceForTest(&mockLexical{}, sem, &mockEmbedder{}, &mockPerms{}, nil, nil,
		passageReaderFor(t))

	_, err := svc.Search(context.Background(), makeRequest(t, mode.Semantic, false, false))
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, domain.ErrRetrievalUnavailable) {
		t.Errorf("expected ErrRetrievalUnavailable, got %v", err)
	}
}

func TestSearch_EmbeddingFailureDegradesHybrid(t *testing.T) {
	lex := &mockLexical{items: ranked(candidate.Lexical, "a")}
	svc := newServiceForTest(lex, &mockSemantic{}, &mockEmbedder{err: errors.New("quota exceeded")},
		&mockPerms{}, nil, nil, passageReaderFor(t, "a"))

	resp, err := svc.Search(context.Background(), makeRequest(t, mode.Hybrid, false, false))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(resp.Degraded) != 1 || resp.Degraded[0] != DegradedSourceFailed {
		t.Errorf("expected source_failed degradation, got %v", resp.Degraded)
	}
	if len(resp.Results) != 1 || resp.Results[0].ID() != "a" {
		t.Errorf("expected lexical result, got %v", resp.Results)
	}
}

func TestSearch_PermissionFilterApplied(t *testing.T) {
	lex := &mockLexical{items: ranked(candidate.Lexical, "a", "b", "c")}
	perms := &mockPerms{allowed: map[string]bool{"a": true, "c": true}}
	svc := newServiceForTest(lex, &mockSemantic{}, &mockEmbedder{}, perms, nil, nil,
		passageReaderFor(t, "a", "b", "c"))

	resp, err := svc.Search(context.Background(), makeRequest(t, mode.Lexical, false, false))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(resp.Results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(resp.Results))
	}
	if resp.Results[0].ID() != "a" || resp.Results[1].ID() != "c" {
		t.Errorf("expected filtered order [a c], got [%s %s]", resp.Results[0].ID(), resp.Results[1].ID())
	}
}

func TestSearch_AllDeniedStillSucceeds(t *testing.T) {
	lex := &mockLexical{items: ranked(candidate.Lexical, "a", "b")}
	perms := &mockPerms{allowed: map[string]bool{}}
	ans := &mockAnswerer{ans: domans.NotFound("nothing for you")}
	svc := newServiceForTest(lex, &mockSemantic{}, &mockEmbedder{}, perms, nil, ans,
		passageReaderFor(t, "a", "b"))

	resp, err := svc.Search(context.Background(), makeRequest(t, mode.Lexical, true, false))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(resp.Results) != 0 {
		t.Errorf("expected no results, got %d", len(resp.Results))
	}
	if resp.Answer == nil || resp.Answer.Found() {
		t.Errorf("expected explicit not-found answer, got %v", resp.Answer)
	}
}

func TestSearch_RerankReorders(t *testing.T) {
	lex := &mockLexical{items: ranked(candidate.Lexical, "a", "b")}
	rr := &mockReranker{ok: true, reversed: true}
	svc := newServiceForTest(lex, &mockSemantic{}, &mockEmbedder{}, &mockPerms{}, rr, nil,
		passageReaderFor(t, "a", "b"))

	resp, err := svc.Search(context.Background(), makeRequest(t, mode.Lexical, false, true))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Results[0].ID() != "b" {
		t.Errorf("expected reranked order, got %q first", resp.Results[0].ID())
	}
	if resp.State != StateReturned {
		t.Errorf("expected RETURNED, got %s", resp.State)
	}
}

func TestSearch_RerankFailureKeepsFusedOrder(t *testing.T) {
	lex := &mockLexical{items: ranked(candidate.Lexical, "a", "b")}
	rr := &mockReranker{ok: false}
	svc := newServiceForTest(lex, &mockSemantic{}, &mockEmbedder{}, &mockPerms{}, rr, nil,
		passageReaderFor(t, "a", "b"))

	resp, err := svc.Search(context.Background(), makeRequest(t, mode.Lexical, false, true))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Results[0].ID() != "a" {
		t.Errorf("expected fused order kept, got %q first", resp.Results[0].ID())
	}
}

func TestSearch_GenerationFailureDegrades(t *testing.T) {
	lex := &mockLexical{items: ranked(candidate.Lexical, "a")}
	ans := &mockAnswerer{err: domain.ErrGenerationFailed}
	svc := newServiceForTest(lex, &mockSemantic{}, &mockEmbedder{}, &mockPerms{}, nil, ans,
		passageReaderFor(t, "a"))

	resp, err := svc.Search(context.Background(), makeRequest(t, mode.Lexical, true, false))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Answer != nil {
		t.Error("expected no answer on generation failure")
	}
	if len(resp.Degraded) != 1 || resp.Degraded[0] != DegradedGenerationFailed {
		t.Errorf("expected generation_failed degradation, got %v", resp.Degraded)
	}
	if len(resp.Results) != 1 {
		t.Errorf("expected results to survive, got %d", len(resp.Results))
	}
}

func TestCompose_SpentDeadlineSkipsAnswer(t *testing.T) {
	ans := &mockAnswerer{ans: domans.New("too late", []string{"a"}, nil)}
	svc := newServiceForTest(&mockLexical{}, &mockSemantic{}, &mockEmbedder{}, &mockPerms{}, nil, ans,
		passageReaderFor(t, "a"))

	ctx, cancel := context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
	defer cancel()

	var degraded []string
	got := svc.compose(ctx, "q", nil, &degraded, zap.NewNop())
	if got != nil {
		t.Error("expected answer skipped after the deadline")
	}
	if len(degraded) != 1 || degraded[0] != DegradedDeadline {
		t.Errorf("expected deadline degradation, got %v", degraded)
	}
}

func TestSearch_CancelledContextFailsSources(t *testing.T) {
	lex := &mockLexical{items: ranked(candidate.Lexical, "a")}
	svc := newServiceForTest(lex, &mockSemantic{}, &mockEmbedder{}, &mockPerms{}, nil, nil,
		passageReaderFor(t, "a"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.Search(ctx, makeRequest(t, mode.Lexical, false, false))
	if !errors.Is(err, domain.ErrRetrievalUnavailable) {
		t.Errorf("expected ErrRetrievalUnavailable, got %v", err)
	}
}

func TestSearch_TopKTruncation(t *testing.T) {
	ids := []string{"a", "b", "c", "d", "e"}
	lex := &mockLexical{items: ranked(candidate.Lexical, ids...)}
	svc := newServiceForTest(lex, &mockSemantic{}, &mockEmbedder{}, &mockPerms{}, nil, nil,
		passageReaderFor(t, ids...))

	req, err := makeRequestTopK(t, 3)
	if err != nil {
		t.Fatalf("request: %v", err)
	}

	resp, err := svc.Search(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(resp.Results) != 3 {
		t.Errorf("expected 3 results, got %d", len(resp.Results))
	}
}
