package testsupport

import (
	"context"
	"testing"

	"brandforge/internal/config"
	"brandforge/internal/ledger"
)

// MustOpenLedger opens a ledger.Store for tests and registers cleanup.
func MustOpenLedger(t testing.TB, cfg *config.Config) *ledger.Store {
	t.Helper()

	store, err := ledger.Open(cfg)
	if err != nil {
		t.Fatalf("ledger.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// NewUnit creates a work unit for tests using the provided store.
func NewUnit(t testing.TB, store *ledger.Store, unitID, name, brief, owner string) *ledger.Unit {
	t.Helper()

	unit, err := store.AddUnit(context.Background(), unitID, name, brief, owner)
	if err != nil {
		t.Fatalf("store.AddUnit: %v", err)
	}
	return unit
}
