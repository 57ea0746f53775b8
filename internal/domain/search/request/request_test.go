package request

import (
	"errors"
	"strings"
	"testing"

	"github.com/askdex/askdex/internal/domain"
	"github.com/askdex/askdex/internal/domain/search/mode"
)

func TestNew_Defaults(t *testing.T) {
	r, err := New("how do I request PTO", "user-1", "", 0, 0, false, false, nil, 0, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Mode() != mode.Hybrid {
		t.Errorf("expected hybrid default, got %s", r.Mode())
	}
	if r.TopK() != DefaultTopK {
		t.Errorf("expected topK %d, got %d", DefaultTopK, r.TopK())
	}
	if r.CandidateK() != DefaultCandidateK {
		t.Errorf("expected candidateK %d, got %d", DefaultCandidateK, r.CandidateK())
	}
	if r.LexicalWeight() != 1 || r.SemanticWeight() != 1 {
		t.Errorf("expected equal default weights, got %f, %f", r.LexicalWeight(), r.SemanticWeight())
	}
}

func TestNew_Validation(t *testing.T) {
	if _, err := New("", "user-1", "", 0, 0, false, false, nil, 0, 0); !errors.Is(err, domain.ErrInvalidQuery) {
		t.Errorf("expected ErrInvalidQuery for empty query, got %v", err)
	}
	if _, err := New(strings.Repeat("x", MaxQueryLength+1), "user-1", "", 0, 0, false, false, nil, 0, 0); !errors.Is(err, domain.ErrInvalidQuery) {
		t.Errorf("expected ErrInvalidQuery for oversized query, got %v", err)
	}
	if _, err := New("query", "", "", 0, 0, false, false, nil, 0, 0); !errors.Is(err, domain.ErrInvalidQuery) {
		t.Errorf("expected ErrInvalidQuery for missing identity, got %v", err)
	}
	if _, err := New("query", "user-1", mode.Mode("fuzzy"), 0, 0, false, false, nil, 0, 0); !errors.Is(err, domain.ErrInvalidQuery) {
		t.Errorf("expected ErrInvalidQuery for unknown mode, got %v", err)
	}
	if _, err := New("query", "user-1", "", 0, 0, false, false, nil, -1, 0); !errors.Is(err, domain.ErrInvalidQuery) {
		t.Errorf("expected ErrInvalidQuery for negative weight, got %v", err)
	}
}

func TestNew_ClampsLimits(t *testing.T) {
	r, err := New("query", "user-1", "", MaxTopK+50, MaxCandidateK+50, false, false, nil, 0, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.TopK() != MaxTopK {
		t.Errorf("expected topK clamped to %d, got %d", MaxTopK, r.TopK())
	}
	if r.CandidateK() != MaxCandidateK {
		t.Errorf("expected candidateK clamped to %d, got %d", MaxCandidateK, r.CandidateK())
	}
}

func TestNew_CandidateKNeverBelowTopK(t *testing.T) {
	r, err := New("query", "user-1", "", 80, 20, false, false, nil, 0, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.CandidateK() != 80 {
		t.Errorf("expected candidateK raised to topK 80, got %d", r.CandidateK())
	}
}

func TestNew_KeepsExplicitWeights(t *testing.T) {
	r, err := New("query", "user-1", "", 0, 0, false, false, nil, 0.3, 0.7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.LexicalWeight() != 0.3 || r.SemanticWeight() != 0.7 {
		t.Errorf("expected weights preserved, got %f, %f", r.LexicalWeight(), r.SemanticWeight())
	}
}

func TestNew_ZeroWeightForOneSourceIsAllowed(t *testing.T) {
	r, err := New("query", "user-1", mode.Hybrid, 0, 0, false, false, nil, 0, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.LexicalWeight() != 0 || r.SemanticWeight() != 1 {
		t.Errorf("expected 0/1 weights preserved, got %f, %f", r.LexicalWeight(), r.SemanticWeight())
	}
}

func TestMode_IsValid(t *testing.T) {
	for _, m := range []mode.Mode{mode.Hybrid, mode.Lexical, mode.Semantic} {
		if !m.IsValid() {
			t.Errorf("expected %s to be valid", m)
		}
	}
	if mode.Mode("fuzzy").IsValid() {
		t.Error("expected fuzzy to be invalid")
	}
}
