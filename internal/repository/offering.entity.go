package repository

import (
	"time"

	"github.com/makonda/offering-cards/internal/model"
	"github.com/shopspring/decimal"
)

type BatchEntity struct {
	ID              int64     `db:"id"                gorm:"primaryKey;autoIncrement;column:id"`
	StreetID        int64     `db:"street_id"         gorm:"column:street_id;not null;index"`
	ServiceDate     time.Time `db:"service_date"      gorm:"column:service_date;not null;index"`
	MassType        string    `db:"mass_type"         gorm:"column:mass_type;not null"`
	MajorMassNumber *int      `db:"major_mass_number" gorm:"column:major_mass_number"`
	RecordedBy      string    `db:"recorded_by"       gorm:"column:recorded_by"`
	EntryCount      int       `db:"entry_count"       gorm:"column:entry_count;not null;default:0"`
	CreatedAt       time.Time `db:"created_at"        gorm:"column:created_at;autoCreateTime"`
}

func (BatchEntity) TableName() string {
	return "offering_batches"
}

type EntryEntity struct {
	ID          int64           `db:"id"           gorm:"primaryKey;autoIncrement;column:id"`
	CardID      int64           `db:"card_id"      gorm:"column:card_id;not null;index"`
	BatchID     *int64          `db:"batch_id"     gorm:"column:batch_id;index"`
	EntryType   string          `db:"entry_type"   gorm:"column:entry_type;not null"`
	Amount      decimal.Decimal `db:"amount"       gorm:"column:amount;type:decimal(12,2);not null"`
	ServiceDate time.Time       `db:"service_date" gorm:"column:service_date;not null;index"`
	RecordedBy  string          `db:"recorded_by"  gorm:"column:recorded_by"`
	CreatedAt   time.Time       `db:"created_at"   gorm:"column:created_at;autoCreateTime"`
	Card        *CardEntity     `gorm:"foreignKey:CardID"`
}

func (EntryEntity) TableName() string {
	return "offering_entries"
}

func toBatchEntity(m *model.OfferingBatch) *BatchEntity {
	if m == nil {
		return nil
	}
	return &BatchEntity{
		ID:              m.ID,
		StreetID:        m.StreetID,
		ServiceDate:     m.ServiceDate,
		MassType:        m.MassType,
		MajorMassNumber: m.MajorMassNumber,
		RecordedBy:      m.RecordedBy,
		EntryCount:      m.EntryCount,
	}
}

func toBatchModel(e *BatchEntity) *model.OfferingBatch {
	if e == nil {
		return nil
	}
	return &model.OfferingBatch{
		ID:              e.ID,
		StreetID:        e.StreetID,
		ServiceDate:     e.ServiceDate,
		MassType:        e.MassType,
		MajorMassNumber: e.MajorMassNumber,
		RecordedBy:      e.RecordedBy,
		EntryCount:      e.EntryCount,
		CreatedAt:       e.CreatedAt,
	}
}

func toEntryEntity(m *model.OfferingEntry) *EntryEntity {
	if m == nil {
		return nil
	}
	return &EntryEntity{
		ID:          m.ID,
		CardID:      m.CardID,
		BatchID:     m.BatchID,
		EntryType:   m.EntryType,
		Amount:      m.Amount,
		ServiceDate: m.ServiceDate,
		RecordedBy:  m.RecordedBy,
	}
}

func toEntryModel(e *EntryEntity) *model.OfferingEntry {
	if e == nil {
		return nil
	}
	m := &model.OfferingEntry{
		ID:          e.ID,
		CardID:      e.CardID,
		BatchID:     e.BatchID,
		EntryType:   e.EntryType,
		Amount:      e.Amount,
		ServiceDate: e.ServiceDate,
		RecordedBy:  e.RecordedBy,
		CreatedAt:   e.CreatedAt,
	}
	if e.Card != nil {
		m.Card = toCardModel(e.Card)
	}
	return m
}
