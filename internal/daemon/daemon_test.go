package daemon

import (
	"context"
	"testing"
	"time"

	"brandforge/internal/ledger"
	"brandforge/internal/logging"
	"brandforge/internal/pilot"
	"brandforge/internal/testsupport"
	"brandforge/internal/workflow"
)

func newTestDaemon(t *testing.T) (*Daemon, *ledger.Store, *testsupport.FakeMarketplace) {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	ledgerStore := testsupport.MustOpenLedger(t, cfg)
	workflowStore := workflow.NewStore(cfg.WorkflowDocumentPath(), logging.NewNop())
	market := testsupport.NewFakeMarketplace()
	sink := workflow.NewSink(ledgerStore, logging.NewNop())
	reconciler := workflow.NewReconciler(workflowStore, ledgerStore, market, sink, logging.NewNop())
	gate := workflow.NewGate(workflowStore, market, 10, logging.NewNop())
	p := pilot.New(reconciler, gate, nil, logging.NewNop())

	d, err := New(cfg, ledgerStore, workflowStore, p, logging.NewNop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return d, ledgerStore, market
}

func TestDaemonStartStop(t *testing.T) {
	d, _, _ := newTestDaemon(t)

	if err := d.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if !d.Running() {
		t.Fatal("daemon should report running")
	}
	d.Stop()
	if d.Running() {
		t.Fatal("daemon should report stopped")
	}
}

func TestDaemonSecondStartRejected(t *testing.T) {
	d, _, _ := newTestDaemon(t)

	if err := d.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer d.Stop()

	if err := d.Start(context.Background()); err == nil {
		t.Fatal("second start should fail")
	}
}

func TestDaemonAdvancesPipeline(t *testing.T) {
	d, ledgerStore, market := newTestDaemon(t)
	testsupport.NewUnit(t, ledgerStore, "unit-1", "Nebula", "brief", "0xowner")

	if err := d.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer d.Stop()

	deadline := time.After(5 * time.Second)
	for {
		if market.InitiationCount() > 0 {
			break
		}
		select {
		case <-deadline:
			t.Fatal("daemon never initiated the strategy job")
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func TestDaemonStatus(t *testing.T) {
	d, ledgerStore, _ := newTestDaemon(t)
	testsupport.NewUnit(t, ledgerStore, "unit-1", "Nebula", "brief", "0xowner")

	status, err := d.Status(context.Background())
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if status.Running {
		t.Fatal("daemon not started, should not report running")
	}
	if status.Stats.Active != 1 {
		t.Fatalf("active units = %d, want 1", status.Stats.Active)
	}
}
