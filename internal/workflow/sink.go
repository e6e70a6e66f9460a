package workflow

import (
	"context"
	"log/slog"

	"brandforge/internal/ledger"
	"brandforge/internal/logging"
	"brandforge/internal/services"
)

// Sink records a terminal workflow instance against the relational ledger.
// The document itself is cleared by the reconciler only after a successful
// flush, so a ledger failure leaves the instance intact for the next cycle.
type Sink struct {
	ledger *ledger.Store
	logger *slog.Logger
}

// NewSink constructs a completion sink over the ledger.
func NewSink(ledgerStore *ledger.Store, logger *slog.Logger) *Sink {
	return &Sink{
		ledger: ledgerStore,
		logger: logging.NewComponentLogger(logger, "sink"),
	}
}

// Flush assembles the instance's payloads into a unit summary and marks the
// ledger unit completed.
func (s *Sink) Flush(ctx context.Context, instanceID string, instance Instance) error {
	summary := summarize(instance)
	if err := s.ledger.CompleteUnit(ctx, instanceID, summary); err != nil {
		return services.Wrap(services.ErrTransient, "sink", "flush",
			"record unit completion", err)
	}
	s.logger.Info("unit summary recorded",
		logging.String(logging.FieldUnitID, instanceID),
		logging.String("name", summary.Name),
	)
	return nil
}

// summarize collapses the per-domain payloads into the flat shape the ledger
// stores. Registration links are keyed back to their media by URL.
func summarize(instance Instance) ledger.Summary {
	var summary ledger.Summary
	if rec := instance[DomainIntake]; rec != nil && rec.Intake != nil {
		summary.Name = rec.Intake.Name
	}
	if rec := instance[DomainStrategy]; rec != nil && rec.Strategy != nil {
		summary.Narrative = rec.Strategy.Narrative
		summary.GoToMarket = rec.Strategy.GoToMarket
	}
	if rec := instance[DomainAvatar]; rec != nil && rec.Avatar != nil {
		summary.AvatarURL = rec.Avatar.ImageURL
	}
	if rec := instance[DomainVideo]; rec != nil && rec.Video != nil {
		summary.VideoURL = rec.Video.VideoURL
	}
	if rec := instance[DomainMeme]; rec != nil && rec.Meme != nil {
		summary.MemeURL = rec.Meme.ImageURL
	}
	if rec := instance[DomainAsset]; rec != nil && rec.Asset != nil {
		for _, reg := range rec.Asset.Registrations {
			switch reg.MediaURL {
			case summary.AvatarURL:
				summary.AvatarRegistration = reg.RegistrationURL
			case summary.VideoURL:
				summary.VideoRegistration = reg.RegistrationURL
			case summary.MemeURL:
				summary.MemeRegistration = reg.RegistrationURL
			}
		}
	}
	return summary
}
