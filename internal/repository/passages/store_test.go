package passages

import (
	"errors"
	"testing"
	"time"

	"github.com/askdex/askdex/internal/domain"
	"github.com/askdex/askdex/internal/domain/passage"
)

func mustPassage(t *testing.T, id, text string, modifiedAt time.Time) passage.Passage {
	t.Helper()
	p, err := passage.New(id, "doc-1", text, 0, passage.Prose, 0, modifiedAt, nil)
	if err != nil {
		t.Fatalf("passage.New(%s): %v", id, err)
	}
	return p
}

// --- Tests ---

func TestUpsert_ReportsChangedIDs(t *testing.T) {
	s := New()
	now := time.Now()

	changed := s.Upsert([]passage.Passage{
		mustPassage(t, "p-1", "first", now),
		mustPassage(t, "p-2", "second", now),
	})
	if len(changed) != 2 {
		t.Fatalf("expected 2 changed, got %v", changed)
	}
	if s.Len() != 2 {
		t.Errorf("expected 2 stored, got %d", s.Len())
	}
}

func TestUpsert_IdenticalContentIsNoOp(t *testing.T) {
	s := New()
	now := time.Now()

	s.Upsert([]passage.Passage{mustPassage(t, "p-1", "same text", now)})

	changed := s.Upsert([]passage.Passage{mustPassage(t, "p-1", "same text", now)})
	if len(changed) != 0 {
		t.Errorf("expected no change for identical content, got %v", changed)
	}
}

func TestUpsert_TextChangeIsReported(t *testing.T) {
	s := New()
	now := time.Now()

	s.Upsert([]passage.Passage{mustPassage(t, "p-1", "old text", now)})

	changed := s.Upsert([]passage.Passage{mustPassage(t, "p-1", "new text", now)})
	if len(changed) != 1 || changed[0] != "p-1" {
		t.Fatalf("expected p-1 changed, got %v", changed)
	}

	p, err := s.Get("p-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Text() != "new text" {
		t.Errorf("expected replacement text, got %q", p.Text())
	}
}

func TestUpsert_TimestampChangeIsReported(t *testing.T) {
	s := New()
	now := time.Now()

	s.Upsert([]passage.Passage{mustPassage(t, "p-1", "same text", now)})

	changed := s.Upsert([]passage.Passage{mustPassage(t, "p-1", "same text", now.Add(time.Hour))})
	if len(changed) != 1 {
		t.Errorf("expected change on timestamp bump, got %v", changed)
	}
}

func TestDelete_ReturnsOnlyPresentIDs(t *testing.T) {
	s := New()
	s.Upsert([]passage.Passage{mustPassage(t, "p-1", "text", time.Now())})

	removed := s.Delete([]string{"p-1", "missing"})
	if len(removed) != 1 || removed[0] != "p-1" {
		t.Fatalf("expected only p-1 removed, got %v", removed)
	}
	if s.Len() != 0 {
		t.Errorf("expected empty store, got %d", s.Len())
	}
}

func TestGet_Missing(t *testing.T) {
	s := New()
	_, err := s.Get("nope")
	if !errors.Is(err, domain.ErrPassageNotFound) {
		t.Errorf("expected ErrPassageNotFound, got %v", err)
	}
}

func TestGetMulti_PreservesOrderAndSkipsMissing(t *testing.T) {
	s := New()
	now := time.Now()
	s.Upsert([]passage.Passage{
		mustPassage(t, "p-1", "one", now),
		mustPassage(t, "p-2", "two", now),
		mustPassage(t, "p-3", "three", now),
	})

	got := s.GetMulti([]string{"p-3", "missing", "p-1"})
	if len(got) != 2 {
		t.Fatalf("expected 2 passages, got %d", len(got))
	}
	if got[0].ID() != "p-3" || got[1].ID() != "p-1" {
		t.Errorf("expected input order preserved, got %s, %s", got[0].ID(), got[1].ID())
	}
}

func TestAll_SortedByID(t *testing.T) {
	s := New()
	now := time.Now()
	s.Upsert([]passage.Passage{
		mustPassage(t, "z-1", "z", now),
		mustPassage(t, "a-1", "a", now),
		mustPassage(t, "m-1", "m", now),
	})

	all := s.All()
	if len(all) != 3 {
		t.Fatalf("expected 3 passages, got %d", len(all))
	}
	if all[0].ID() != "a-1" || all[1].ID() != "m-1" || all[2].ID() != "z-1" {
		t.Errorf("expected id order, got %s, %s, %s", all[0].ID(), all[1].ID(), all[2].ID())
	}
}
