package media

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"brandforge/internal/services"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := New(server.URL, "test-key", WithPollBudget(3, time.Millisecond))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return client
}

func TestCreateJob(t *testing.T) {
	var gotAuth string
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/jobs" {
			t.Fatalf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		gotAuth = r.Header.Get("Authorization")
		var body map[string]string
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		if body["kind"] != "image" || body["prompt"] != "a mascot" {
			t.Fatalf("body = %v", body)
		}
		json.NewEncoder(w).Encode(Job{ID: "job-1", Status: "queued"})
	}))

	jobID, err := client.CreateJob(context.Background(), KindImage, "a mascot")
	if err != nil {
		t.Fatalf("CreateJob: %v", err)
	}
	if jobID != "job-1" {
		t.Fatalf("job id = %q, want job-1", jobID)
	}
	if gotAuth != "Bearer test-key" {
		t.Fatalf("authorization = %q", gotAuth)
	}
}

func TestCreateJobRejectsEmptyPrompt(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected")
	}))

	if _, err := client.CreateJob(context.Background(), KindImage, "   "); err == nil {
		t.Fatal("expected error for empty prompt")
	}
}

func TestWaitPollsUntilDone(t *testing.T) {
	var polls atomic.Int32
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/jobs/job-1" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		if polls.Add(1) < 3 {
			json.NewEncoder(w).Encode(Job{ID: "job-1", Status: "running"})
			return
		}
		json.NewEncoder(w).Encode(Job{ID: "job-1", Status: "done", URL: "https://cdn/out.png"})
	}))

	url, err := client.Wait(context.Background(), "job-1")
	if err != nil {
		t.Fatalf("Wait: %v", err)
	}
	if url != "https://cdn/out.png" {
		t.Fatalf("url = %q", url)
	}
	if polls.Load() != 3 {
		t.Fatalf("polls = %d, want 3", polls.Load())
	}
}

func TestWaitBudgetExhaustedIsTimeout(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(Job{ID: "job-1", Status: "running"})
	}))

	_, err := client.Wait(context.Background(), "job-1")
	if !errors.Is(err, services.ErrTimeout) {
		t.Fatalf("err = %v, want timeout marker", err)
	}
}

func TestWaitFailedJob(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(Job{ID: "job-1", Status: "failed"})
	}))

	_, err := client.Wait(context.Background(), "job-1")
	if err == nil {
		t.Fatal("expected failure")
	}
	if errors.Is(err, services.ErrTimeout) {
		t.Fatalf("job failure must not be a timeout: %v", err)
	}
}

func TestGenerate(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/jobs":
			json.NewEncoder(w).Encode(Job{ID: "job-9", Status: "queued"})
		case r.Method == http.MethodGet && r.URL.Path == "/jobs/job-9":
			json.NewEncoder(w).Encode(Job{ID: "job-9", Status: "done", URL: "https://cdn/meme.png"})
		default:
			t.Fatalf("unexpected request %s %s", r.Method, r.URL.Path)
		}
	}))

	url, err := client.Generate(context.Background(), KindImage, "a meme")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if url != "https://cdn/meme.png" {
		t.Fatalf("url = %q", url)
	}
}
