package testsupport

import (
	"context"
	"fmt"
	"sync"

	"brandforge/internal/marketplace"
)

// FakeMarketplace is an in-memory marketplace.Protocol for tests. Initiated
// jobs appear in the active-as-buyer list with sequential ids; tests move
// jobs to completed and seed delivered artifacts directly.
type FakeMarketplace struct {
	mu sync.Mutex

	nextID    int64
	active    []marketplace.JobSummary
	completed []marketplace.JobSummary
	acquired  []marketplace.Artifact
	agents    []marketplace.Agent

	StateErr    error
	InitiateErr error

	Initiations []marketplace.InitiateRequest
	Payments    []int64
}

// NewFakeMarketplace returns a fake seeded with a single discoverable agent.
func NewFakeMarketplace() *FakeMarketplace {
	return &FakeMarketplace{
		nextID: 1,
		agents: []marketplace.Agent{
			{ID: "agent-1", Name: "test agent", Wallet: "0xagent"},
		},
	}
}

func (f *FakeMarketplace) State(ctx context.Context) (*marketplace.State, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.StateErr != nil {
		return nil, f.StateErr
	}
	state := &marketplace.State{}
	state.Jobs.Active.AsBuyer = append([]marketplace.JobSummary(nil), f.active...)
	state.Jobs.Completed = append([]marketplace.JobSummary(nil), f.completed...)
	state.Inventory.Acquired = append([]marketplace.Artifact(nil), f.acquired...)
	return state, nil
}

func (f *FakeMarketplace) SearchAgents(ctx context.Context, query string) ([]marketplace.Agent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]marketplace.Agent(nil), f.agents...), nil
}

func (f *FakeMarketplace) InitiateJob(ctx context.Context, req marketplace.InitiateRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.InitiateErr != nil {
		return f.InitiateErr
	}
	f.Initiations = append(f.Initiations, req)
	f.active = append(f.active, marketplace.JobSummary{JobID: f.nextID, Desc: req.Desc})
	f.nextID++
	return nil
}

func (f *FakeMarketplace) PayJob(ctx context.Context, jobID int64, amount int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Payments = append(f.Payments, jobID)
	return nil
}

func (f *FakeMarketplace) DeliverJob(ctx context.Context, jobID int64, artifactType marketplace.ArtifactType, value string) error {
	return nil
}

// InitiationCount returns how many jobs have been initiated.
func (f *FakeMarketplace) InitiationCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.Initiations)
}

// LastJobID returns the id assigned to the most recent initiation.
func (f *FakeMarketplace) LastJobID() int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.nextID - 1
}

// SetAgents replaces the discoverable agent list.
func (f *FakeMarketplace) SetAgents(agents ...marketplace.Agent) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.agents = agents
}

// CompleteJob moves an active job to the completed list and seeds the
// delivered artifact for it.
func (f *FakeMarketplace) CompleteJob(jobID int64, artifactType marketplace.ArtifactType, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, job := range f.active {
		if job.JobID != jobID {
			continue
		}
		f.active = append(f.active[:i], f.active[i+1:]...)
		f.completed = append(f.completed, job)
		f.acquired = append(f.acquired, marketplace.Artifact{JobID: jobID, Type: artifactType, Value: value})
		return nil
	}
	return fmt.Errorf("no active job %d", jobID)
}

// AddActiveJob injects an active-as-buyer job that did not come from an
// initiation, simulating unrelated concurrent marketplace activity.
func (f *FakeMarketplace) AddActiveJob(desc string) int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := f.nextID
	f.nextID++
	f.active = append(f.active, marketplace.JobSummary{JobID: id, Desc: desc})
	return id
}
