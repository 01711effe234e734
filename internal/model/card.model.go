package model

import "time"

// OfferingCard is a physical numbered card tied to a street. The code is
// derived from the street name and the number, e.g. "PE-007" for card 7
// on Pentekoste street. AssignedMemberID and AssignedAt mirror the
// current-year assignment and are cleared when the card frees up.
type OfferingCard struct {
	ID               int64      `json:"id"         db:"id"`
	StreetID         int64      `json:"street_id"  db:"street_id"`
	Street           *Street    `json:"street,omitempty"`
	Number           int        `json:"number"     db:"number"`
	Code             string     `json:"code"       db:"code"`
	IsTaken          bool       `json:"is_taken"   db:"is_taken"`
	AssignedMemberID *int64     `json:"assigned_member_id,omitempty" db:"assigned_member_ref"`
	AssignedAt       *time.Time `json:"assigned_at,omitempty"        db:"assigned_at"`
	CreatedAt        time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at" db:"updated_at"`
}

type CardCreateRequest struct {
	StreetID int64 `json:"street_id"`
	Number   int   `json:"number"`
}

type BulkGenerateRequest struct {
	StreetID int64 `json:"street_id"`
	Start    int   `json:"start"`
	End      int   `json:"end"`
}

type BulkGenerateResult struct {
	Created int `json:"created"`
	Skipped int `json:"skipped"`
}

// CardFilter narrows card listings. Search matches card codes by
// substring, case-insensitive.
type CardFilter struct {
	StreetID *int64
	Taken    *bool
	Search   string
	Limit    int
	Offset   int
}

// CardView is a card joined with its current-year assignment for the
// registry listing: who holds it, what they pledged, what came in.
type CardView struct {
	Card          OfferingCard `json:"card"`
	HolderID      *int64       `json:"holder_id,omitempty"`
	HolderName    string       `json:"holder_name,omitempty"`
	Pledges       PledgeSet    `json:"pledges"`
	Collected     PledgeSet    `json:"collected"`
	ProgressPct   float64      `json:"progress_pct"`
	AssignmentID  *int64       `json:"assignment_id,omitempty"`
	Year          int          `json:"year"`
}

type AvailableNumber struct {
	Number     int    `json:"number"`
	Code       string `json:"code"`
	StreetID   int64  `json:"street_id"`
	StreetName string `json:"street_name"`
}

type NumberSuggestions struct {
	Requested int   `json:"requested"`
	Available bool  `json:"available"`
	Nearby    []int `json:"nearby"`
}

type CardsOverview struct {
	TotalCards      int64     `json:"total_cards"`
	TakenCards      int64     `json:"taken_cards"`
	FreeCards       int64     `json:"free_cards"`
	ActiveCards     int64     `json:"active_cards"`
	LeastActiveCard string    `json:"least_active_card"`
	TotalPledged    PledgeSet `json:"total_pledged"`
	TotalCollected  PledgeSet `json:"total_collected"`
	Year            int       `json:"year"`
}
