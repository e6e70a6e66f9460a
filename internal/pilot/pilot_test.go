package pilot

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"brandforge/internal/ledger"
	"brandforge/internal/logging"
	"brandforge/internal/marketplace"
	"brandforge/internal/testsupport"
	"brandforge/internal/workflow"
)

type fixture struct {
	store  *workflow.Store
	ledger *ledger.Store
	market *testsupport.FakeMarketplace
	pilot  *Pilot
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	store := workflow.NewStore(cfg.WorkflowDocumentPath(), logging.NewNop())
	ledgerStore := testsupport.MustOpenLedger(t, cfg)
	market := testsupport.NewFakeMarketplace()
	sink := workflow.NewSink(ledgerStore, logging.NewNop())
	reconciler := workflow.NewReconciler(store, ledgerStore, market, sink, logging.NewNop())
	gate := workflow.NewGate(store, market, 10, logging.NewNop())
	return &fixture{
		store:  store,
		ledger: ledgerStore,
		market: market,
		pilot:  New(reconciler, gate, nil, logging.NewNop()),
	}
}

func (f *fixture) step(t *testing.T) bool {
	t.Helper()
	advanced, err := f.pilot.Step(context.Background())
	if err != nil {
		t.Fatalf("Step: %v", err)
	}
	return advanced
}

// completeLast resolves the most recently initiated job with the given artifact.
func (f *fixture) completeLast(t *testing.T, artifactType marketplace.ArtifactType, value string) {
	t.Helper()
	if err := f.market.CompleteJob(f.market.LastJobID(), artifactType, value); err != nil {
		t.Fatalf("CompleteJob: %v", err)
	}
}

func TestStepIdleWithoutUnits(t *testing.T) {
	fix := newFixture(t)

	if fix.step(t) {
		t.Fatal("no unit claimed, nothing should be initiated")
	}
}

func TestStepClaimsUnitAndInitiatesStrategy(t *testing.T) {
	fix := newFixture(t)
	testsupport.NewUnit(t, fix.ledger, "unit-1", "Nebula", "space drinks", "0xowner")

	if !fix.step(t) {
		t.Fatal("expected strategy initiation")
	}
	rec, err := fix.store.GetDomain("unit-1", workflow.DomainStrategy)
	if err != nil {
		t.Fatalf("GetDomain: %v", err)
	}
	if rec == nil || rec.Status != workflow.StatusPending {
		t.Fatalf("strategy record = %+v, want pending", rec)
	}
	desc := fix.market.Initiations[0].Desc
	if !strings.Contains(desc, "Nebula") || !strings.Contains(desc, "space drinks") {
		t.Fatalf("strategy brief missing intake details: %q", desc)
	}
}

func TestStepWaitsWhilePending(t *testing.T) {
	fix := newFixture(t)
	testsupport.NewUnit(t, fix.ledger, "unit-1", "Nebula", "space drinks", "0xowner")

	if !fix.step(t) {
		t.Fatal("expected strategy initiation")
	}
	if fix.step(t) {
		t.Fatal("strategy still pending, nothing else is eligible")
	}
}

func TestFullPipelineRunsToCompletion(t *testing.T) {
	fix := newFixture(t)
	testsupport.NewUnit(t, fix.ledger, "unit-1", "Nebula", "space drinks", "0xowner")
	ctx := context.Background()

	// strategy
	if !fix.step(t) {
		t.Fatal("expected strategy initiation")
	}
	payload, _ := json.Marshal(workflow.StrategyPayload{Narrative: "story", GoToMarket: "plan"})
	fix.completeLast(t, marketplace.ArtifactJSON, string(payload))

	// avatar
	if !fix.step(t) {
		t.Fatal("expected avatar initiation")
	}
	fix.completeLast(t, marketplace.ArtifactURL, "https://cdn/avatar.png")

	// meme
	if !fix.step(t) {
		t.Fatal("expected meme initiation")
	}
	fix.completeLast(t, marketplace.ArtifactURL, "https://cdn/meme.png")

	// video
	if !fix.step(t) {
		t.Fatal("expected video initiation")
	}
	videoDesc := fix.market.Initiations[len(fix.market.Initiations)-1].Desc
	if !strings.Contains(videoDesc, "https://cdn/avatar.png") {
		t.Fatalf("video brief missing avatar url: %q", videoDesc)
	}
	fix.completeLast(t, marketplace.ArtifactURL, "https://cdn/video.mp4")

	// asset
	if !fix.step(t) {
		t.Fatal("expected asset initiation")
	}
	assetDesc := fix.market.Initiations[len(fix.market.Initiations)-1].Desc
	for _, url := range []string{"https://cdn/avatar.png", "https://cdn/video.mp4", "https://cdn/meme.png", "0xowner"} {
		if !strings.Contains(assetDesc, url) {
			t.Fatalf("asset brief missing %q: %q", url, assetDesc)
		}
	}
	registrations, _ := json.Marshal(workflow.AssetPayload{Registrations: []workflow.Registration{
		{MediaURL: "https://cdn/avatar.png", RegistrationURL: "https://chain/1"},
		{MediaURL: "https://cdn/video.mp4", RegistrationURL: "https://chain/2"},
		{MediaURL: "https://cdn/meme.png", RegistrationURL: "https://chain/3"},
	}})
	fix.completeLast(t, marketplace.ArtifactJSON, string(registrations))

	// terminal: reconcile flushes the summary and clears the document
	if fix.step(t) {
		t.Fatal("terminal instance must not initiate anything")
	}
	unit, err := fix.ledger.GetUnit(ctx, "unit-1")
	if err != nil {
		t.Fatalf("GetUnit: %v", err)
	}
	if unit.Status != ledger.UnitCompleted {
		t.Fatalf("unit status = %s, want completed", unit.Status)
	}
	doc, err := fix.store.Read()
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(doc) != 0 {
		t.Fatalf("document not cleared: %v", doc)
	}
}

func TestBuildBriefRequiresUpstreamPayloads(t *testing.T) {
	instance := workflow.Instance{
		workflow.DomainIntake: {
			Status: workflow.StatusCompleted,
			Intake: &workflow.IntakePayload{Name: "Nebula", Brief: "brief"},
		},
	}

	if _, err := buildBrief(workflow.DomainAvatar, instance); err == nil {
		t.Fatal("avatar brief without a strategy payload should fail")
	}
	if _, err := buildBrief(workflow.DomainAsset, instance); err == nil {
		t.Fatal("asset brief without media payloads should fail")
	}
}
