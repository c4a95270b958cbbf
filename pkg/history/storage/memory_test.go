package storage

import (
	"context"
	"fmt"
	"testing"
	"time"

	"mosaic-hq/bento/pkg/history"
	"mosaic-hq/bento/pkg/layout"
)

func testRun(id string, recordedAt time.Time, valid bool) *history.Run {
	run := &history.Run{
		ID:          id,
		RecordedAt:  recordedAt,
		Space:       "main",
		Entry:       "landing-1",
		Field:       "cards",
		ContentType: "landingSection",
		LayoutType:  "bento-1-2",
		EntryCount:  3,
		Valid:       valid,
		Duration:    12 * time.Millisecond,
	}
	if !valid {
		run.Violations = []layout.Violation{
			layout.MissingAtPosition(2, "rightColumnBottomCard"),
		}
	}
	return run
}

func TestMemoryStorage_StoreAndQuery(t *testing.T) {
	s := NewMemoryStorage()
	defer s.Close()
	ctx := context.Background()

	now := time.Now().UTC()
	for i := 0; i < 3; i++ {
		run := testRun(fmt.Sprintf("run-%d", i), now.Add(time.Duration(i)*time.Minute), i%2 == 0)
		if err := s.Store(ctx, run); err != nil {
			t.Fatalf("failed to store run: %v", err)
		}
	}

	runs, err := s.Query(ctx, &history.Query{})
	if err != nil {
		t.Fatalf("failed to query runs: %v", err)
	}
	if len(runs) != 3 {
		t.Fatalf("expected 3 runs, got %d", len(runs))
	}

	// Newest first.
	if runs[0].ID != "run-2" || runs[2].ID != "run-0" {
		t.Errorf("expected newest-first ordering, got %s, %s, %s", runs[0].ID, runs[1].ID, runs[2].ID)
	}
}

func TestMemoryStorage_QueryFilters(t *testing.T) {
	s := NewMemoryStorage()
	defer s.Close()
	ctx := context.Background()

	now := time.Now().UTC()
	s.Store(ctx, testRun("a", now, true))
	s.Store(ctx, testRun("b", now.Add(time.Minute), false))

	other := testRun("c", now.Add(2*time.Minute), true)
	other.Field = "hero"
	other.LayoutType = "hero-single"
	s.Store(ctx, other)

	invalid, err := s.Query(ctx, &history.Query{OnlyInvalid: true})
	if err != nil {
		t.Fatalf("failed to query: %v", err)
	}
	if len(invalid) != 1 || invalid[0].ID != "b" {
		t.Errorf("expected only run b, got %v", invalid)
	}

	byField, err := s.Query(ctx, &history.Query{Field: "hero"})
	if err != nil {
		t.Fatalf("failed to query: %v", err)
	}
	if len(byField) != 1 || byField[0].ID != "c" {
		t.Errorf("expected only run c, got %v", byField)
	}

	count, err := s.Count(ctx, &history.Query{LayoutType: "bento-1-2"})
	if err != nil {
		t.Fatalf("failed to count: %v", err)
	}
	if count != 2 {
		t.Errorf("expected 2 bento runs, got %d", count)
	}
}

func TestMemoryStorage_Pagination(t *testing.T) {
	s := NewMemoryStorage()
	defer s.Close()
	ctx := context.Background()

	now := time.Now().UTC()
	for i := 0; i < 5; i++ {
		s.Store(ctx, testRun(fmt.Sprintf("run-%d", i), now.Add(time.Duration(i)*time.Minute), true))
	}

	page, err := s.Query(ctx, &history.Query{Limit: 2, Offset: 1})
	if err != nil {
		t.Fatalf("failed to query: %v", err)
	}
	if len(page) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(page))
	}
	if page[0].ID != "run-3" || page[1].ID != "run-2" {
		t.Errorf("unexpected page contents: %s, %s", page[0].ID, page[1].ID)
	}
}

func TestMemoryStorage_Delete(t *testing.T) {
	s := NewMemoryStorage()
	defer s.Close()
	ctx := context.Background()

	now := time.Now().UTC()
	s.Store(ctx, testRun("old", now.Add(-48*time.Hour), true))
	s.Store(ctx, testRun("new", now, true))

	cutoff := now.Add(-24 * time.Hour)
	deleted, err := s.Delete(ctx, &history.Query{EndTime: &cutoff})
	if err != nil {
		t.Fatalf("failed to delete: %v", err)
	}
	if deleted != 1 {
		t.Errorf("expected 1 deleted run, got %d", deleted)
	}

	remaining, err := s.Count(ctx, &history.Query{})
	if err != nil {
		t.Fatalf("failed to count: %v", err)
	}
	if remaining != 1 {
		t.Errorf("expected 1 remaining run, got %d", remaining)
	}
}

func TestMemoryStorage_StoreCopies(t *testing.T) {
	s := NewMemoryStorage()
	defer s.Close()
	ctx := context.Background()

	run := testRun("a", time.Now().UTC(), true)
	s.Store(ctx, run)

	run.Valid = false

	stored, err := s.Query(ctx, &history.Query{})
	if err != nil {
		t.Fatalf("failed to query: %v", err)
	}
	if !stored[0].Valid {
		t.Error("expected stored run to be unaffected by caller mutation")
	}
}
