package pilot

import (
	"context"
	"log/slog"

	"brandforge/internal/logging"
	"brandforge/internal/media"
	"brandforge/internal/workflow"
)

// Pilot drives the pipeline forward one decision at a time: reconcile the
// persisted document against marketplace state, find the next eligible
// domain, and delegate it through the initiation gate. The daemon calls Step
// on every poll tick; each call performs at most one initiation.
type Pilot struct {
	reconciler *workflow.Reconciler
	gate       *workflow.Gate
	media      *media.Client
	logger     *slog.Logger
}

// New constructs a pilot. The media client may be nil, in which case meme
// briefs go out without a pre-rendered draft.
func New(reconciler *workflow.Reconciler, gate *workflow.Gate, mediaClient *media.Client, logger *slog.Logger) *Pilot {
	return &Pilot{
		reconciler: reconciler,
		gate:       gate,
		media:      mediaClient,
		logger:     logging.NewComponentLogger(logger, "pilot"),
	}
}

// Step runs one reconcile-and-advance cycle. It reports whether a new
// delegated job was initiated.
func (p *Pilot) Step(ctx context.Context) (bool, error) {
	doc, err := p.reconciler.Reconcile(ctx)
	if err != nil {
		return false, err
	}

	instanceID, instance, ok := doc.ActiveInstance()
	if !ok {
		return false, nil
	}
	domain, ok := instance.NextEligible()
	if !ok {
		return false, nil
	}

	query, desc, err := p.compose(ctx, domain, instance)
	if err != nil {
		return false, err
	}

	if _, err := p.gate.Initiate(ctx, instanceID, domain, query, desc); err != nil {
		return false, err
	}
	return true, nil
}

// compose builds the agent search query and job description for domain from
// the instance's completed payloads. Meme briefs pre-render a draft through
// the media API when a client is configured; a draft failure falls back to a
// text-only brief rather than blocking the domain.
func (p *Pilot) compose(ctx context.Context, domain workflow.Domain, instance workflow.Instance) (string, string, error) {
	brief, err := buildBrief(domain, instance)
	if err != nil {
		return "", "", err
	}

	if domain == workflow.DomainMeme && p.media != nil {
		draftURL, genErr := p.media.Generate(ctx, media.KindImage, brief.desc)
		if genErr != nil {
			p.logger.Warn("meme draft render failed; sending text-only brief",
				logging.Error(genErr),
				logging.String(logging.FieldDomain, string(domain)),
			)
		} else {
			brief.desc += " Draft for reference: " + draftURL
		}
	}

	return brief.query, brief.desc, nil
}
