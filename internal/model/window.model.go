package model

import "time"

// RegistrationWindow is an append-only record of when card registration
// was opened. The latest open row decides the current state; the window
// counts as open only while now falls inside [StartDate, EndDate].
type RegistrationWindow struct {
	ID        int64     `json:"id"         db:"id"`
	StartDate time.Time `json:"start_date" db:"start_date"`
	EndDate   time.Time `json:"end_date"   db:"end_date"`
	IsOpen    bool      `json:"is_open"    db:"is_open"`
	OpenedBy  string    `json:"opened_by"  db:"opened_by"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

type WindowOpenRequest struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	OpenedBy  string `json:"opened_by"`
}

type WindowStatus struct {
	Open      bool       `json:"open"`
	StartDate *time.Time `json:"start_date,omitempty"`
	EndDate   *time.Time `json:"end_date,omitempty"`
}
