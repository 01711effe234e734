package model

import "time"

const (
	ApplicationStatusNew      = "NEW"
	ApplicationStatusApproved = "APPROVED"
	ApplicationStatusRejected = "REJECTED"
)

// CardApplication is a request for a card, filed with the applicant's
// name, phone and street. MemberID links a registered member account
// when the applicant has one. When the registration window is open a
// submitted application is assigned a card immediately; otherwise it
// queues as NEW for manual review.
type CardApplication struct {
	ID              int64     `json:"id"              db:"id"`
	MemberID        *int64    `json:"member_id,omitempty" db:"member_id"`
	Member          *Member   `json:"member,omitempty"`
	FullName        string    `json:"full_name"       db:"full_name"`
	PhoneNumber     string    `json:"phone_number"    db:"phone_number"`
	StreetID        *int64    `json:"street_id,omitempty" db:"street_id"`
	Year            int       `json:"year"            db:"year"`
	PreferredNumber *int      `json:"preferred_number,omitempty" db:"preferred_number"`
	Pledges         PledgeSet `json:"pledges"`
	Status          string    `json:"status"          db:"status"`
	Note            string    `json:"note"            db:"note"`
	AssignmentID    *int64    `json:"assignment_id,omitempty" db:"assignment_id"`
	CreatedAt       time.Time `json:"created_at"      db:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"      db:"updated_at"`
}

type ApplicationCreateRequest struct {
	MemberID        int64     `json:"member_id"`
	FullName        string    `json:"full_name"`
	PhoneNumber     string    `json:"phone_number"`
	StreetID        *int64    `json:"street_id"`
	Year            int       `json:"year"`
	PreferredNumber *int      `json:"preferred_number"`
	Pledges         PledgeSet `json:"pledges"`
	Note            string    `json:"note"`
}

// ApplicationApproveRequest names the card and year the reviewer grants.
// Pledge overrides, when present, replace the amounts applied with.
type ApplicationApproveRequest struct {
	CardID  int64      `json:"card_id"`
	Year    int        `json:"year"`
	Pledges *PledgeSet `json:"pledges,omitempty"`
}

type ApplicationFilter struct {
	Status   string
	Year     *int
	MemberID *int64
	Limit    int
	Offset   int
}

// MemberCardState is the self-service summary a member sees: their
// application, and the assignment with progress if one exists.
type MemberCardState struct {
	Member      Member           `json:"member"`
	Application *CardApplication `json:"application,omitempty"`
	Assignment  *CardAssignment  `json:"assignment,omitempty"`
	Collected   PledgeSet        `json:"collected"`
	ProgressPct float64          `json:"progress_pct"`
	Year        int              `json:"year"`
}
