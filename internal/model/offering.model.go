package model

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	EntryTypeAhadi    = "AHADI"
	EntryTypeShukrani = "SHUKRANI"
	EntryTypeMajengo  = "MAJENGO"
)

const (
	MassTypeMajor        = "MAJOR"
	MassTypeMorningGlory = "MORNING_GLORY"
	MassTypeEveningGlory = "EVENING_GLORY"
	MassTypeSeli         = "SELI"
)

// DateLayout is the wire format for service dates.
const DateLayout = "2006-01-02"

func ValidEntryType(t string) bool {
	switch t {
	case EntryTypeAhadi, EntryTypeShukrani, EntryTypeMajengo:
		return true
	}
	return false
}

func ValidMassType(t string) bool {
	switch t {
	case MassTypeMajor, MassTypeMorningGlory, MassTypeEveningGlory, MassTypeSeli:
		return true
	}
	return false
}

func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, s)
}

// OfferingEntry is one recorded contribution against a card on a
// service date. Entries are immutable once written.
type OfferingEntry struct {
	ID          int64           `json:"id"           db:"id"`
	CardID      int64           `json:"card_id"      db:"card_id"`
	Card        *OfferingCard   `json:"card,omitempty"`
	BatchID     *int64          `json:"batch_id,omitempty" db:"batch_id"`
	EntryType   string          `json:"entry_type"   db:"entry_type"`
	Amount      decimal.Decimal `json:"amount"       db:"amount"`
	ServiceDate time.Time       `json:"service_date" db:"service_date"`
	RecordedBy  string          `json:"recorded_by"  db:"recorded_by"`
	CreatedAt   time.Time       `json:"created_at"   db:"created_at"`
}

// OfferingBatch groups the entries keyed in for one service sitting of
// a street. MajorMassNumber picks the first or second major mass and is
// only set when MassType is MAJOR.
type OfferingBatch struct {
	ID              int64     `json:"id"           db:"id"`
	StreetID        int64     `json:"street_id"    db:"street_id"`
	ServiceDate     time.Time `json:"service_date" db:"service_date"`
	MassType        string    `json:"mass_type"    db:"mass_type"`
	MajorMassNumber *int      `json:"major_mass_number,omitempty" db:"major_mass_number"`
	RecordedBy      string    `json:"recorded_by"  db:"recorded_by"`
	EntryCount      int       `json:"entry_count"  db:"entry_count"`
	CreatedAt       time.Time `json:"created_at"   db:"created_at"`
}

type EntryCreateRequest struct {
	CardID      int64           `json:"card_id"`
	EntryType   string          `json:"entry_type"`
	Amount      decimal.Decimal `json:"amount"`
	ServiceDate string          `json:"service_date"`
	RecordedBy  string          `json:"recorded_by"`
}

// BatchEntryInput is one keyed-in line of a batch. ServiceDate, when
// set, overrides the batch date for that entry alone.
type BatchEntryInput struct {
	CardID      int64           `json:"card_id"`
	EntryType   string          `json:"entry_type"`
	Amount      decimal.Decimal `json:"amount"`
	ServiceDate string          `json:"service_date,omitempty"`
}

type BatchCreateRequest struct {
	StreetID        int64             `json:"street_id"`
	ServiceDate     string            `json:"service_date"`
	MassType        string            `json:"mass_type"`
	MajorMassNumber *int              `json:"major_mass_number"`
	RecordedBy      string            `json:"recorded_by"`
	Entries         []BatchEntryInput `json:"entries"`
}

type BatchResult struct {
	BatchID    int64     `json:"batch_id"`
	EntryCount int       `json:"entry_count"`
	Totals     PledgeSet `json:"totals"`
}

type OfferingHistoryItem struct {
	EntryID     int64           `json:"entry_id"`
	CardCode    string          `json:"card_code"`
	EntryType   string          `json:"entry_type"`
	Amount      decimal.Decimal `json:"amount"`
	ServiceDate time.Time       `json:"service_date"`
}

type MemberOfferingHistory struct {
	MemberID int64                 `json:"member_id"`
	Year     int                   `json:"year"`
	Entries  []OfferingHistoryItem `json:"entries"`
	Totals   PledgeSet             `json:"totals"`
}

// MirrorRecord is the payload queued for the legacy ledger after an
// entry commits. PayerID may be zero when the resolved assignment has
// no member link, or when no assignment resolves at all.
type MirrorRecord struct {
	EntryID     int64           `json:"entry_id"`
	CardID      int64           `json:"card_id"`
	CardCode    string          `json:"card_code"`
	PayerID     int64           `json:"payer_id"`
	PayerName   string          `json:"payer_name,omitempty"`
	EntryType   string          `json:"entry_type"`
	Amount      decimal.Decimal `json:"amount"`
	ServiceDate string          `json:"service_date"`
	MassType    string          `json:"mass_type,omitempty"`
}
