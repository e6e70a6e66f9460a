package workflow

import (
	"strings"
	"time"
)

// Domain names one stage of the content pipeline.
type Domain string

const (
	DomainIntake   Domain = "intake"
	DomainStrategy Domain = "strategy"
	DomainAvatar   Domain = "avatar"
	DomainVideo    Domain = "video"
	DomainMeme     Domain = "meme"
	DomainAsset    Domain = "asset"
)

// Status represents the lifecycle of a domain record.
type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// pipelineOrder is the initiation order the pilot walks. Every domain's
// prerequisites appear before it.
var pipelineOrder = []Domain{
	DomainIntake,
	DomainStrategy,
	DomainAvatar,
	DomainMeme,
	DomainVideo,
	DomainAsset,
}

// prerequisites declares which domains must be completed before a domain may
// be initiated.
var prerequisites = map[Domain][]Domain{
	DomainIntake:   nil,
	DomainStrategy: {DomainIntake},
	DomainAvatar:   {DomainStrategy},
	DomainMeme:     {DomainStrategy},
	DomainVideo:    {DomainStrategy, DomainAvatar},
	DomainAsset:    {DomainAvatar, DomainVideo, DomainMeme},
}

var domainSet = func() map[Domain]struct{} {
	set := make(map[Domain]struct{}, len(pipelineOrder))
	for _, domain := range pipelineOrder {
		set[domain] = struct{}{}
	}
	return set
}()

// PipelineOrder returns the ordered list of pipeline domains.
func PipelineOrder() []Domain {
	cp := make([]Domain, len(pipelineOrder))
	copy(cp, pipelineOrder)
	return cp
}

// Prerequisites returns the domains that must be completed before domain.
func Prerequisites(domain Domain) []Domain {
	prereqs := prerequisites[domain]
	cp := make([]Domain, len(prereqs))
	copy(cp, prereqs)
	return cp
}

// ParseDomain converts a string into a known Domain.
func ParseDomain(value string) (Domain, bool) {
	normalized := Domain(strings.ToLower(strings.TrimSpace(value)))
	if normalized == "" {
		return "", false
	}
	_, ok := domainSet[normalized]
	return normalized, ok
}

// IntakePayload carries the claimed brief that seeds a workflow instance.
type IntakePayload struct {
	Name  string `json:"name"`
	Brief string `json:"brief"`
}

// StrategyPayload is the delivered narrative and go-to-market plan.
type StrategyPayload struct {
	Narrative  string `json:"narrative"`
	GoToMarket string `json:"go_to_market"`
}

// AvatarPayload is the delivered brand avatar image.
type AvatarPayload struct {
	ImageURL string `json:"image_url"`
}

// VideoPayload is the delivered promotional video.
type VideoPayload struct {
	VideoURL string `json:"video_url"`
}

// MemePayload is the delivered meme image.
type MemePayload struct {
	ImageURL string `json:"image_url"`
}

// Registration pairs one media asset with its on-chain registration.
type Registration struct {
	MediaURL        string `json:"media_url"`
	RegistrationURL string `json:"registration_url"`
}

// AssetPayload is the delivered IP-asset registration result.
type AssetPayload struct {
	Registrations []Registration `json:"registrations"`
}

// Record tracks one domain of one workflow instance. Exactly one payload slot
// may be populated — the one matching the record's domain — and only once the
// record is completed.
type Record struct {
	Status      Status     `json:"status"`
	JobRef      *int64     `json:"external_job_ref,omitempty"`
	Token       string     `json:"token,omitempty"`
	Owner       string     `json:"owner,omitempty"`
	RequestedAt time.Time  `json:"requested_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	Intake   *IntakePayload   `json:"intake,omitempty"`
	Strategy *StrategyPayload `json:"strategy,omitempty"`
	Avatar   *AvatarPayload   `json:"avatar,omitempty"`
	Video    *VideoPayload    `json:"video,omitempty"`
	Meme     *MemePayload     `json:"meme,omitempty"`
	Asset    *AssetPayload    `json:"asset,omitempty"`
}

// Instance is the per-domain record set for one workflow run.
type Instance map[Domain]*Record

// Document is the persisted workflow state: at most one active instance keyed
// by its originating unit id.
type Document map[string]Instance

// ActiveInstance returns the single active instance and its id, or ok=false
// when the document is empty.
func (d Document) ActiveInstance() (string, Instance, bool) {
	for id, instance := range d {
		return id, instance, true
	}
	return "", nil, false
}

// Completed reports whether domain has a completed record in the instance.
func (in Instance) Completed(domain Domain) bool {
	rec, ok := in[domain]
	return ok && rec != nil && rec.Status == StatusCompleted
}

// PrerequisitesMet reports whether every prerequisite of domain is completed.
func (in Instance) PrerequisitesMet(domain Domain) bool {
	for _, prereq := range prerequisites[domain] {
		if !in.Completed(prereq) {
			return false
		}
	}
	return true
}

// Terminal reports whether every pipeline domain is completed.
func (in Instance) Terminal() bool {
	for _, domain := range pipelineOrder {
		if !in.Completed(domain) {
			return false
		}
	}
	return true
}

// NextEligible returns the first domain, in pipeline order, that has no
// pending or completed record and whose prerequisites are all completed.
// Failed records are re-initiable.
func (in Instance) NextEligible() (Domain, bool) {
	for _, domain := range pipelineOrder {
		if domain == DomainIntake {
			continue
		}
		if rec, ok := in[domain]; ok && rec != nil && rec.Status != StatusFailed {
			continue
		}
		if in.PrerequisitesMet(domain) {
			return domain, true
		}
	}
	return "", false
}
