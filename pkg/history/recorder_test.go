package history

import (
	"context"
	"testing"
	"time"

	"mosaic-hq/bento/pkg/entry"
	"mosaic-hq/bento/pkg/layout"
)

// collectStorage is a Storage stub that signals every stored run.
type collectStorage struct {
	stored chan *Run
}

func newCollectStorage() *collectStorage {
	return &collectStorage{stored: make(chan *Run, 16)}
}

func (s *collectStorage) Store(ctx context.Context, run *Run) error {
	s.stored <- run
	return nil
}

func (s *collectStorage) Query(ctx context.Context, query *Query) ([]*Run, error) {
	return nil, nil
}

func (s *collectStorage) Count(ctx context.Context, query *Query) (int64, error) {
	return 0, nil
}

func (s *collectStorage) Delete(ctx context.Context, query *Query) (int64, error) {
	return 0, nil
}

func (s *collectStorage) Close() error { return nil }

func testReference() entry.Reference {
	return entry.Reference{Space: "main", Entry: "landing-1", Field: "cards"}
}

func TestRecorder_RecordsRun(t *testing.T) {
	s := newCollectStorage()
	r := NewRecorder(s, nil, nil)
	defer r.Close()

	result := layout.Result{Violations: []layout.Violation{
		layout.CountMismatch(3, 1),
	}}

	run := r.Record(testReference(), "landingSection", "bento-1-2", 1, result, 7*time.Millisecond)

	if run.ID == "" {
		t.Error("expected a generated run ID")
	}
	if run.Valid {
		t.Error("expected run to be invalid")
	}
	if run.EntryCount != 1 {
		t.Errorf("expected entry count 1, got %d", run.EntryCount)
	}
	if run.Field != "cards" {
		t.Errorf("expected field cards, got %q", run.Field)
	}

	select {
	case stored := <-s.stored:
		if stored.ID != run.ID {
			t.Errorf("expected stored run %q, got %q", run.ID, stored.ID)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for async store")
	}
}

func TestRecorder_UniqueRunIDs(t *testing.T) {
	s := newCollectStorage()
	r := NewRecorder(s, nil, nil)
	defer r.Close()

	seen := make(map[string]bool)
	for i := 0; i < 10; i++ {
		run := r.Record(testReference(), "landingSection", "bento-1-2", 3, layout.Result{}, time.Millisecond)
		if seen[run.ID] {
			t.Fatalf("duplicate run ID %q", run.ID)
		}
		seen[run.ID] = true
	}
}

func TestRecorder_DisabledSkipsStorage(t *testing.T) {
	s := newCollectStorage()
	r := NewRecorder(s, &RecorderConfig{Enabled: false, AsyncBuffer: 4, WriteTimeout: time.Second}, nil)
	defer r.Close()

	run := r.Record(testReference(), "landingSection", "bento-1-2", 3, layout.Result{}, time.Millisecond)
	if run == nil || run.ID == "" {
		t.Fatal("expected a run even when recording is disabled")
	}

	select {
	case <-s.stored:
		t.Fatal("expected no storage write when disabled")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestRecorder_CloseDrainsQueue(t *testing.T) {
	s := newCollectStorage()
	r := NewRecorder(s, nil, nil)

	for i := 0; i < 5; i++ {
		r.Record(testReference(), "landingSection", "bento-1-2", 3, layout.Result{}, time.Millisecond)
	}

	if err := r.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}

	if len(s.stored) != 5 {
		t.Errorf("expected 5 stored runs after close, got %d", len(s.stored))
	}
}
