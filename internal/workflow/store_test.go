package workflow

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"brandforge/internal/logging"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "workflow.json")
	return NewStore(path, logging.NewNop())
}

func TestStoreReadMissingYieldsEmptyDocument(t *testing.T) {
	store := newTestStore(t)

	doc, err := store.Read()
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(doc) != 0 {
		t.Fatalf("expected empty document, got %d instances", len(doc))
	}
}

func TestStoreSetDomainRoundTrip(t *testing.T) {
	store := newTestStore(t)

	jobID := int64(42)
	rec := &Record{
		Status:      StatusPending,
		JobRef:      &jobID,
		Token:       "tok-1",
		Owner:       "0xowner",
		RequestedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	if err := store.SetDomain("unit-1", DomainStrategy, rec); err != nil {
		t.Fatalf("SetDomain: %v", err)
	}

	got, err := store.GetDomain("unit-1", DomainStrategy)
	if err != nil {
		t.Fatalf("GetDomain: %v", err)
	}
	if got == nil {
		t.Fatal("expected record, got nil")
	}
	if got.Status != StatusPending {
		t.Fatalf("status = %s, want %s", got.Status, StatusPending)
	}
	if got.JobRef == nil || *got.JobRef != 42 {
		t.Fatalf("job ref = %v, want 42", got.JobRef)
	}
	if !got.RequestedAt.Equal(rec.RequestedAt) {
		t.Fatalf("requested at = %s, want %s", got.RequestedAt, rec.RequestedAt)
	}
}

func TestStoreGetDomainUnknownInstance(t *testing.T) {
	store := newTestStore(t)

	got, err := store.GetDomain("missing", DomainAvatar)
	if err != nil {
		t.Fatalf("GetDomain: %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil record, got %+v", got)
	}
}

func TestStoreCorruptDocumentBackedUpAndReset(t *testing.T) {
	store := newTestStore(t)

	if err := os.WriteFile(store.Path(), []byte("{not json"), 0o644); err != nil {
		t.Fatalf("seed corrupt file: %v", err)
	}

	doc, err := store.Read()
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(doc) != 0 {
		t.Fatalf("expected reset to empty, got %d instances", len(doc))
	}

	backup, err := os.ReadFile(store.Path() + ".corrupt")
	if err != nil {
		t.Fatalf("read backup: %v", err)
	}
	if string(backup) != "{not json" {
		t.Fatalf("backup content = %q", backup)
	}
}

func TestStoreWriteIsByteStable(t *testing.T) {
	store := newTestStore(t)

	rec := &Record{Status: StatusPending, RequestedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	if err := store.SetDomain("unit-1", DomainStrategy, rec); err != nil {
		t.Fatalf("SetDomain: %v", err)
	}
	first, err := os.ReadFile(store.Path())
	if err != nil {
		t.Fatalf("read document: %v", err)
	}

	doc, err := store.Read()
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if err := store.Write(doc); err != nil {
		t.Fatalf("Write: %v", err)
	}
	second, err := os.ReadFile(store.Path())
	if err != nil {
		t.Fatalf("read document: %v", err)
	}
	if !bytes.Equal(first, second) {
		t.Fatalf("rewrite changed bytes:\nfirst:\n%s\nsecond:\n%s", first, second)
	}
}

func TestStoreClear(t *testing.T) {
	store := newTestStore(t)

	rec := &Record{Status: StatusCompleted, RequestedAt: time.Now().UTC()}
	if err := store.SetDomain("unit-1", DomainIntake, rec); err != nil {
		t.Fatalf("SetDomain: %v", err)
	}
	if err := store.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	doc, err := store.Read()
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(doc) != 0 {
		t.Fatalf("expected empty document after clear, got %d", len(doc))
	}
}
