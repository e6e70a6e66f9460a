package workflow

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"brandforge/internal/ledger"
	"brandforge/internal/logging"
	"brandforge/internal/marketplace"
)

// Reconciler keeps the persisted workflow document consistent with the
// marketplace's view of job completion, respecting domain ordering. It runs on
// every aggregate state read, claims new work units when the document is
// empty, and hands terminal instances to the completion sink.
type Reconciler struct {
	store  *Store
	ledger *ledger.Store
	market marketplace.Protocol
	sink   *Sink
	logger *slog.Logger

	pendingTimeout time.Duration
	now            func() time.Time
}

// ReconcilerOption configures optional Reconciler behavior.
type ReconcilerOption func(*Reconciler)

// WithPendingTimeout sets the deadline after which a pending record is marked
// failed. Zero disables the deadline.
func WithPendingTimeout(timeout time.Duration) ReconcilerOption {
	return func(r *Reconciler) {
		r.pendingTimeout = timeout
	}
}

// WithClock overrides the time source (used in tests).
func WithClock(now func() time.Time) ReconcilerOption {
	return func(r *Reconciler) {
		if now != nil {
			r.now = now
		}
	}
}

// NewReconciler constructs a reconciler over the given collaborators.
func NewReconciler(store *Store, ledgerStore *ledger.Store, market marketplace.Protocol, sink *Sink, logger *slog.Logger, opts ...ReconcilerOption) *Reconciler {
	r := &Reconciler{
		store:  store,
		ledger: ledgerStore,
		market: market,
		sink:   sink,
		logger: logging.NewComponentLogger(logger, "reconciler"),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Reconcile refreshes the persisted document from marketplace state and
// returns it. Transient collaborator failures are logged and the last
// persisted state is returned unchanged; the caller's next poll retries from
// scratch. Repeated calls with no new external completions leave the document
// byte-identical.
func (r *Reconciler) Reconcile(ctx context.Context) (Document, error) {
	doc, err := r.store.Read()
	if err != nil {
		return nil, err
	}

	if len(doc) == 0 {
		doc, err = r.claimNextUnit(ctx, doc)
		if err != nil || len(doc) == 0 {
			return doc, err
		}
	}

	instanceID, instance, ok := doc.ActiveInstance()
	if !ok {
		return doc, nil
	}

	state, err := r.market.State(ctx)
	if err != nil {
		r.logger.Warn("marketplace state unavailable; returning last persisted state",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "retried on next poll cycle"),
		)
		return doc, nil
	}

	changed := false
	for _, domain := range pipelineOrder {
		rec := instance[domain]
		if rec == nil || rec.Status != StatusPending {
			continue
		}
		if !instance.PrerequisitesMet(domain) {
			continue
		}
		if r.promote(rec, domain, state) {
			changed = true
			r.logger.Info("domain completed",
				logging.String(logging.FieldInstanceID, instanceID),
				logging.String(logging.FieldDomain, string(domain)),
				logging.Int64(logging.FieldJobRef, derefJobRef(rec.JobRef)),
			)
			continue
		}
		if r.expire(rec) {
			changed = true
			r.logger.Warn("pending domain exceeded deadline; marked failed",
				logging.String(logging.FieldInstanceID, instanceID),
				logging.String(logging.FieldDomain, string(domain)),
				logging.Int64(logging.FieldJobRef, derefJobRef(rec.JobRef)),
				logging.String(logging.FieldErrorHint, "the domain is re-initiable; the delegated job may still deliver and be ignored"),
			)
		}
	}

	if changed {
		if err := r.store.Write(doc); err != nil {
			return nil, err
		}
	}

	if instance.Terminal() {
		if err := r.sink.Flush(ctx, instanceID, instance); err != nil {
			return doc, err
		}
		if err := r.store.Clear(); err != nil {
			return nil, err
		}
		r.logger.Info("workflow instance completed and cleared",
			logging.String(logging.FieldInstanceID, instanceID),
		)
		return Document{}, nil
	}

	return doc, nil
}

// claimNextUnit seeds the document with the oldest active ledger unit, if any.
// The intake record carries the brief and owner address and is completed
// immediately: it has no external job and exists as the trigger condition for
// downstream domains.
func (r *Reconciler) claimNextUnit(ctx context.Context, doc Document) (Document, error) {
	unit, err := r.ledger.OldestActiveUnit(ctx)
	if err != nil {
		r.logger.Warn("ledger unavailable; no unit claimed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "retried on next poll cycle"),
		)
		return doc, nil
	}
	if unit == nil {
		return doc, nil
	}

	now := r.now().UTC()
	rec := &Record{
		Status:      StatusCompleted,
		Owner:       unit.OwnerAddress,
		RequestedAt: now,
		CompletedAt: &now,
		Intake: &IntakePayload{
			Name:  unit.Name,
			Brief: unit.Brief,
		},
	}
	if err := r.store.SetDomain(unit.UnitID, DomainIntake, rec); err != nil {
		return nil, err
	}
	r.logger.Info("claimed work unit",
		logging.String(logging.FieldUnitID, unit.UnitID),
		logging.String("name", unit.Name),
	)
	return r.store.Read()
}

// promote transitions rec to completed when the marketplace reports a
// completed job matching the stored ref and a delivered artifact produced by
// it. Matching is strictly by job id: no description scanning, no
// most-recent-artifact heuristics.
func (r *Reconciler) promote(rec *Record, domain Domain, state *marketplace.State) bool {
	if rec.JobRef == nil {
		return false
	}
	if _, ok := state.CompletedJob(*rec.JobRef); !ok {
		return false
	}
	artifact, ok := state.AcquiredArtifact(*rec.JobRef)
	if !ok {
		return false
	}
	if !applyArtifact(rec, domain, artifact) {
		return false
	}
	now := r.now().UTC()
	rec.Status = StatusCompleted
	rec.CompletedAt = &now
	return true
}

// expire marks a pending record failed once it outlives the deadline.
func (r *Reconciler) expire(rec *Record) bool {
	if r.pendingTimeout <= 0 {
		return false
	}
	if r.now().Sub(rec.RequestedAt) <= r.pendingTimeout {
		return false
	}
	rec.Status = StatusFailed
	return true
}

// applyArtifact decodes a delivered artifact into the record's payload slot
// for domain. An artifact that does not carry the expected shape leaves the
// record pending.
func applyArtifact(rec *Record, domain Domain, artifact marketplace.Artifact) bool {
	switch domain {
	case DomainStrategy:
		switch artifact.Type {
		case marketplace.ArtifactJSON:
			var payload StrategyPayload
			if err := json.Unmarshal([]byte(artifact.Value), &payload); err != nil {
				return false
			}
			rec.Strategy = &payload
			return true
		case marketplace.ArtifactText:
			rec.Strategy = &StrategyPayload{Narrative: artifact.Value}
			return true
		}
	case DomainAvatar:
		if artifact.Type == marketplace.ArtifactURL {
			rec.Avatar = &AvatarPayload{ImageURL: artifact.Value}
			return true
		}
	case DomainVideo:
		if artifact.Type == marketplace.ArtifactURL {
			rec.Video = &VideoPayload{VideoURL: artifact.Value}
			return true
		}
	case DomainMeme:
		if artifact.Type == marketplace.ArtifactURL {
			rec.Meme = &MemePayload{ImageURL: artifact.Value}
			return true
		}
	case DomainAsset:
		if artifact.Type == marketplace.ArtifactJSON {
			var payload AssetPayload
			if err := json.Unmarshal([]byte(artifact.Value), &payload); err != nil {
				return false
			}
			rec.Asset = &payload
			return true
		}
	}
	return false
}

func derefJobRef(ref *int64) int64 {
	if ref == nil {
		return 0
	}
	return *ref
}
