package marketplace

import "context"

// JobSummary describes a marketplace job as seen from the buyer side.
type JobSummary struct {
	JobID int64  `json:"jobId"`
	Desc  string `json:"desc"`
}

// ArtifactType enumerates the delivered artifact encodings the protocol supports.
type ArtifactType string

const (
	ArtifactText ArtifactType = "text"
	ArtifactJSON ArtifactType = "json"
	ArtifactURL  ArtifactType = "url"
)

// Artifact is a delivered item in the buyer's acquired inventory.
type Artifact struct {
	JobID int64        `json:"jobId"`
	Type  ArtifactType `json:"type"`
	Value string       `json:"value"`
}

// ActiveJobs partitions open jobs by the caller's role.
type ActiveJobs struct {
	AsBuyer []JobSummary `json:"asBuyer"`
}

// Jobs groups the job lists in a state snapshot.
type Jobs struct {
	Completed []JobSummary `json:"completed"`
	Active    ActiveJobs   `json:"active"`
}

// Inventory groups delivered artifacts in a state snapshot.
type Inventory struct {
	Acquired []Artifact `json:"acquired"`
}

// State is the marketplace's authoritative view of the caller's jobs and
// delivered artifacts.
type State struct {
	Jobs      Jobs      `json:"jobs"`
	Inventory Inventory `json:"inventory"`
}

// Agent describes a service agent discoverable through the marketplace.
type Agent struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Wallet      string `json:"wallet"`
	Description string `json:"description"`
}

// InitiateRequest describes a job to open against a counterparty agent.
// The protocol does not return the created job id synchronously; callers
// correlate via the description and a state diff.
type InitiateRequest struct {
	AgentWallet string `json:"agentWallet"`
	Desc        string `json:"desc"`
	Budget      int64  `json:"budget"`
}

// Protocol is the marketplace surface the workflow core depends on. The
// concrete Client satisfies it; tests substitute fakes.
type Protocol interface {
	State(ctx context.Context) (*State, error)
	SearchAgents(ctx context.Context, query string) ([]Agent, error)
	InitiateJob(ctx context.Context, req InitiateRequest) error
	PayJob(ctx context.Context, jobID int64, amount int64) error
	DeliverJob(ctx context.Context, jobID int64, artifactType ArtifactType, value string) error
}

// CompletedJob returns the completed job matching id, if any.
func (s *State) CompletedJob(id int64) (JobSummary, bool) {
	if s == nil {
		return JobSummary{}, false
	}
	for _, job := range s.Jobs.Completed {
		if job.JobID == id {
			return job, true
		}
	}
	return JobSummary{}, false
}

// AcquiredArtifact returns the delivered artifact produced by job id, if any.
func (s *State) AcquiredArtifact(id int64) (Artifact, bool) {
	if s == nil {
		return Artifact{}, false
	}
	for _, item := range s.Inventory.Acquired {
		if item.JobID == id {
			return item, true
		}
	}
	return Artifact{}, false
}
