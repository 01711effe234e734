package model

import "time"

// Member identity is owned by the membership system; the card ledger
// only reads it to resolve applicants and payers.
type Member struct {
	ID          int64     `json:"id"           db:"id"`
	FullName    string    `json:"full_name"    db:"full_name"`
	Email       string    `json:"email"        db:"email"`
	PhoneNumber string    `json:"phone_number" db:"phone_number"`
	StreetID    *int64    `json:"street_id"    db:"street_id"`
	Role        string    `json:"role"         db:"role"`
	CreatedAt   time.Time `json:"created_at"   db:"created_at"`
}
