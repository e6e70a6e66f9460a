package marketplace_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"brandforge/internal/marketplace"
)

func newTestClient(t *testing.T, handler http.Handler) (*marketplace.Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	client, err := marketplace.New(server.URL, "test-key", 5*time.Second)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return client, server
}

func TestStateDecodesSnapshot(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/state" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("unexpected auth header %q", got)
		}
		body := `{
			"jobs": {
				"completed": [{"jobId": 42, "desc": "strategy work"}],
				"active": {"asBuyer": [{"jobId": 43, "desc": "avatar work"}]}
			},
			"inventory": {"acquired": [{"jobId": 42, "type": "json", "value": "{}"}]}
		}`
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(body))
	}))

	state, err := client.State(context.Background())
	if err != nil {
		t.Fatalf("State failed: %v", err)
	}
	job, ok := state.CompletedJob(42)
	if !ok || job.Desc != "strategy work" {
		t.Fatalf("expected completed job 42, got %#v", state.Jobs.Completed)
	}
	if _, ok := state.CompletedJob(99); ok {
		t.Fatal("did not expect job 99")
	}
	artifact, ok := state.AcquiredArtifact(42)
	if !ok || artifact.Type != marketplace.ArtifactJSON {
		t.Fatalf("expected json artifact for job 42, got %#v", artifact)
	}
	if len(state.Jobs.Active.AsBuyer) != 1 || state.Jobs.Active.AsBuyer[0].JobID != 43 {
		t.Fatalf("unexpected active jobs: %#v", state.Jobs.Active)
	}
}

func TestStateSurfacesHTTPError(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))

	if _, err := client.State(context.Background()); err == nil {
		t.Fatal("expected error for 502 response")
	}
}

func TestInitiateJobPostsBody(t *testing.T) {
	var received marketplace.InitiateRequest
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/jobs" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&received); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.WriteHeader(http.StatusCreated)
	}))

	req := marketplace.InitiateRequest{AgentWallet: "0xseller", Desc: "make a video [bf:tok]", Budget: 10}
	if err := client.InitiateJob(context.Background(), req); err != nil {
		t.Fatalf("InitiateJob failed: %v", err)
	}
	if received != req {
		t.Fatalf("server saw %#v, want %#v", received, req)
	}
}

func TestInitiateJobValidatesInput(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected")
	}))

	if err := client.InitiateJob(context.Background(), marketplace.InitiateRequest{Desc: "x"}); err == nil {
		t.Fatal("expected error for missing wallet")
	}
	if err := client.InitiateJob(context.Background(), marketplace.InitiateRequest{AgentWallet: "0x1"}); err == nil {
		t.Fatal("expected error for missing description")
	}
}

func TestSearchAgents(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("query"); got != "meme" {
			t.Errorf("unexpected query %q", got)
		}
		w.Write([]byte(`{"agents": [{"id": "a1", "name": "Memesmith", "wallet": "0x2"}]}`))
	}))

	agents, err := client.SearchAgents(context.Background(), "meme")
	if err != nil {
		t.Fatalf("SearchAgents failed: %v", err)
	}
	if len(agents) != 1 || agents[0].Wallet != "0x2" {
		t.Fatalf("unexpected agents: %#v", agents)
	}
}

func TestPayAndDeliverJob(t *testing.T) {
	var paths []string
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		w.WriteHeader(http.StatusOK)
	}))

	if err := client.PayJob(context.Background(), 7, 25); err != nil {
		t.Fatalf("PayJob failed: %v", err)
	}
	if err := client.DeliverJob(context.Background(), 7, marketplace.ArtifactURL, "https://cdn/x.mp4"); err != nil {
		t.Fatalf("DeliverJob failed: %v", err)
	}
	if len(paths) != 2 || paths[0] != "/jobs/7/pay" || paths[1] != "/jobs/7/deliver" {
		t.Fatalf("unexpected paths: %v", paths)
	}
	if err := client.PayJob(context.Background(), 0, 1); err == nil {
		t.Fatal("expected error for non-positive job id")
	}
}
