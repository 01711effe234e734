package model

import "time"

// CardAssignment binds a holder to a card for one calendar year together
// with the pledges they committed for that year. The holder's name and
// phone are stored on the row itself; MemberID links a registered member
// account when one exists. A card can only be assigned once per year.
type CardAssignment struct {
	ID          int64         `json:"id"           db:"id"`
	CardID      int64         `json:"card_id"      db:"card_id"`
	Card        *OfferingCard `json:"card,omitempty"`
	MemberID    *int64        `json:"member_id,omitempty" db:"member_id"`
	Member      *Member       `json:"member,omitempty"`
	FullName    string        `json:"full_name"    db:"full_name"`
	PhoneNumber string        `json:"phone_number" db:"phone_number"`
	Year        int           `json:"year"         db:"year"`
	Pledges     PledgeSet     `json:"pledges"`
	Active      bool          `json:"active"       db:"active"`
	CreatedAt   time.Time     `json:"created_at"   db:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"   db:"updated_at"`
}

type AssignRequest struct {
	CardID      int64     `json:"card_id"`
	MemberID    *int64    `json:"member_id,omitempty"`
	FullName    string    `json:"full_name"`
	PhoneNumber string    `json:"phone_number"`
	Year        int       `json:"year"`
	Pledges     PledgeSet `json:"pledges"`
}

// AssignmentUpdate carries a partial update; nil fields stay untouched.
type AssignmentUpdate struct {
	MemberID    *int64     `json:"member_id,omitempty"`
	FullName    *string    `json:"full_name,omitempty"`
	PhoneNumber *string    `json:"phone_number,omitempty"`
	Pledges     *PledgeSet `json:"pledges,omitempty"`
	Active      *bool      `json:"active,omitempty"`
}
