package model

import "time"

// ActivityLog is a lightweight audit trail of administrative actions.
type ActivityLog struct {
	ID        int64     `json:"id"         db:"id"`
	Actor     string    `json:"actor"      db:"actor"`
	Action    string    `json:"action"     db:"action"`
	Detail    string    `json:"detail"     db:"detail"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
