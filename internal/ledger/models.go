package ledger

import "time"

// UnitStatus represents the lifecycle of a work unit.
type UnitStatus string

const (
	UnitActive    UnitStatus = "active"
	UnitCompleted UnitStatus = "completed"
)

// Unit is one originating request for a full pipeline run: the brand brief a
// requester submitted, keyed by an external ticket identifier.
type Unit struct {
	ID           int64
	UnitID       string
	Name         string
	Brief        string
	OwnerAddress string
	Status       UnitStatus
	CreatedAt    time.Time
	CompletedAt  *time.Time
	SummaryJSON  string
}

// Summary is the flat completed-pipeline record flushed by the sink.
type Summary struct {
	Name               string `json:"name"`
	Narrative          string `json:"narrative"`
	GoToMarket         string `json:"go_to_market"`
	AvatarURL          string `json:"avatar_url"`
	AvatarRegistration string `json:"avatar_registration_url"`
	VideoURL           string `json:"video_url"`
	VideoRegistration  string `json:"video_registration_url"`
	MemeURL            string `json:"meme_url"`
	MemeRegistration   string `json:"meme_registration_url"`
}

// Stats aggregates unit counts per lifecycle state.
type Stats struct {
	Total     int
	Active    int
	Completed int
}
