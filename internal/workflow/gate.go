package workflow

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"brandforge/internal/logging"
	"brandforge/internal/marketplace"
	"brandforge/internal/services"
)

// tokenPrefix marks the correlation token embedded in outbound job
// descriptions. The marketplace echoes the description back on its job
// listings, which is how a freshly initiated job is tied to the domain that
// requested it.
const tokenPrefix = "[bf:"

// Gate enforces domain ordering before any delegated job is initiated and
// records the resulting job reference against the workflow document.
type Gate struct {
	store  *Store
	market marketplace.Protocol
	logger *slog.Logger
	budget int64
	now    func() time.Time
}

// NewGate constructs an initiation gate over the workflow store and
// marketplace client. Budget is the flat per-job spend offered to agents.
func NewGate(store *Store, market marketplace.Protocol, budget int64, logger *slog.Logger) *Gate {
	return &Gate{
		store:  store,
		market: market,
		logger: logging.NewComponentLogger(logger, "gate"),
		budget: budget,
		now:    time.Now,
	}
}

// Initiate delegates work for domain within the given workflow instance. It
// refuses when the instance is unknown, when any prerequisite domain has not
// completed, or when a non-failed record for the domain already exists. On
// success the persisted record is PENDING and carries the marketplace job id.
func (g *Gate) Initiate(ctx context.Context, instanceID string, domain Domain, agentQuery, desc string) (*Record, error) {
	doc, err := g.store.Read()
	if err != nil {
		return nil, err
	}
	instance, ok := doc[instanceID]
	if !ok {
		return nil, gateErr(domain, fmt.Sprintf("workflow instance %q does not exist", instanceID))
	}
	for _, prereq := range Prerequisites(domain) {
		if !instance.Completed(prereq) {
			return nil, gateErr(domain, fmt.Sprintf("prerequisite domain %s has not completed", prereq))
		}
	}
	if existing := instance[domain]; existing != nil && existing.Status != StatusFailed {
		return nil, gateErr(domain, fmt.Sprintf("domain already has a %s record", existing.Status))
	}

	agent, err := g.selectAgent(ctx, agentQuery)
	if err != nil {
		return nil, err
	}

	token := uuid.NewString()
	before, err := g.market.State(ctx)
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, "gate", "initiate", "read marketplace state", err)
	}

	taggedDesc := desc + " " + tokenPrefix + token + "]"
	if err := g.market.InitiateJob(ctx, marketplace.InitiateRequest{
		AgentWallet: agent.Wallet,
		Desc:        taggedDesc,
		Budget:      g.budget,
	}); err != nil {
		return nil, services.Wrap(services.ErrTransient, "gate", "initiate", "initiate job", err)
	}

	after, err := g.market.State(ctx)
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, "gate", "initiate", "read marketplace state after initiation", err)
	}

	jobID, err := correlate(before, after, token)
	if err != nil {
		return nil, err
	}

	owner := ownerOf(instance)
	rec := &Record{
		Status:      StatusPending,
		JobRef:      &jobID,
		Token:       token,
		Owner:       owner,
		RequestedAt: g.now().UTC(),
	}
	if err := g.store.SetDomain(instanceID, domain, rec); err != nil {
		return nil, err
	}

	g.logger.Info("delegated job initiated",
		logging.String(logging.FieldInstanceID, instanceID),
		logging.String(logging.FieldDomain, string(domain)),
		logging.Int64(logging.FieldJobRef, jobID),
		logging.String(logging.FieldToken, token),
		logging.String("agent", agent.Name),
	)
	return rec, nil
}

// selectAgent searches the marketplace and takes the first offered agent.
func (g *Gate) selectAgent(ctx context.Context, query string) (*marketplace.Agent, error) {
	agents, err := g.market.SearchAgents(ctx, query)
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, "gate", "initiate", "search agents", err)
	}
	if len(agents) == 0 {
		return nil, services.Wrap(services.ErrNotFound, "gate", "initiate",
			fmt.Sprintf("no marketplace agent matched query %q", query), nil)
	}
	return &agents[0], nil
}

// correlate diffs the active-as-buyer job lists before and after initiation
// and returns the id of the single new job whose description carries the
// correlation token. Anything other than exactly one match means the job
// cannot be identified and the initiation is not recorded.
func correlate(before, after *marketplace.State, token string) (int64, error) {
	known := make(map[int64]struct{}, len(before.Jobs.Active.AsBuyer))
	for _, job := range before.Jobs.Active.AsBuyer {
		known[job.JobID] = struct{}{}
	}
	needle := tokenPrefix + token + "]"

	var matches []int64
	for _, job := range after.Jobs.Active.AsBuyer {
		if _, seen := known[job.JobID]; seen {
			continue
		}
		if strings.Contains(job.Desc, needle) {
			matches = append(matches, job.JobID)
		}
	}
	switch len(matches) {
	case 1:
		return matches[0], nil
	case 0:
		return 0, services.Wrap(services.ErrTransient, "gate", "initiate",
			"initiated job not yet visible in marketplace state", nil)
	default:
		return 0, services.Wrap(services.ErrTransient, "gate", "initiate",
			fmt.Sprintf("%d new jobs carry the correlation token", len(matches)), nil)
	}
}

// ownerOf pulls the owner address recorded at intake.
func ownerOf(instance Instance) string {
	if rec := instance[DomainIntake]; rec != nil {
		return rec.Owner
	}
	return ""
}

func gateErr(domain Domain, msg string) error {
	return services.Wrap(services.ErrPrecondition, "gate", "initiate",
		fmt.Sprintf("%s: %s", domain, msg), nil)
}
