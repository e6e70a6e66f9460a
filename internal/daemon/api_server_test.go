package daemon

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"brandforge/internal/logging"
	"brandforge/internal/pilot"
	"brandforge/internal/testsupport"
	"brandforge/internal/workflow"
)

func startAPIDaemon(t *testing.T, opts ...testsupport.ConfigOption) (*Daemon, string) {
	t.Helper()
	cfg := testsupport.NewConfig(t, opts...)
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
	if err := d.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	t.Cleanup(d.Stop)
	return d, "http://" + d.api.addr()
}

func TestAPIHealth(t *testing.T) {
	_, base := startAPIDaemon(t)

	resp, err := http.Get(base + "/healthz")
	if err != nil {
		t.Fatalf("GET /healthz: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
}

func TestAPISubmitAndFetchUnit(t *testing.T) {
	_, base := startAPIDaemon(t)

	body, _ := json.Marshal(unitSubmission{Name: "Nebula", Brief: "space drinks", Owner: "0xowner"})
	resp, err := http.Post(base+"/api/units", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("POST /api/units: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d, want 201", resp.StatusCode)
	}
	var created struct {
		Unit struct {
			UnitID string
			Name   string
		}
	}
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if created.Unit.UnitID == "" || created.Unit.Name != "Nebula" {
		t.Fatalf("created = %+v", created)
	}

	fetch, err := http.Get(fmt.Sprintf("%s/api/units/%s", base, created.Unit.UnitID))
	if err != nil {
		t.Fatalf("GET unit: %v", err)
	}
	defer fetch.Body.Close()
	if fetch.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", fetch.StatusCode)
	}
}

func TestAPISubmitRequiresName(t *testing.T) {
	_, base := startAPIDaemon(t)

	resp, err := http.Post(base+"/api/units", "application/json", bytes.NewReader([]byte(`{"brief":"b"}`)))
	if err != nil {
		t.Fatalf("POST /api/units: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
}

func TestAPIStatusIncludesDocument(t *testing.T) {
	d, base := startAPIDaemon(t)
	testsupport.NewUnit(t, d.ledger, "unit-1", "Nebula", "brief", "0xowner")

	resp, err := http.Get(base + "/api/status")
	if err != nil {
		t.Fatalf("GET /api/status: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	var payload map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if _, ok := payload["stats"]; !ok {
		t.Fatalf("payload missing stats: %v", payload)
	}
}

func TestAPIBearerAuth(t *testing.T) {
	_, base := startAPIDaemon(t, testsupport.WithAPIToken("secret"))

	resp, err := http.Get(base + "/api/status")
	if err != nil {
		t.Fatalf("GET without token: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", resp.StatusCode)
	}

	req, _ := http.NewRequest(http.MethodGet, base+"/api/status", nil)
	req.Header.Set("Authorization", "Bearer secret")
	authed, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("GET with token: %v", err)
	}
	defer authed.Body.Close()
	if authed.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", authed.StatusCode)
	}
}
