package repository

import (
	"time"

	"github.com/makonda/offering-cards/internal/model"
)

type WindowEntity struct {
	ID        int64     `db:"id"         gorm:"primaryKey;autoIncrement;column:id"`
	StartDate time.Time `db:"start_date" gorm:"column:start_date;not null"`
	EndDate   time.Time `db:"end_date"   gorm:"column:end_date;not null"`
	IsOpen    bool      `db:"is_open"    gorm:"column:is_open;not null;default:true;index"`
	OpenedBy  string    `db:"opened_by"  gorm:"column:opened_by"`
	CreatedAt time.Time `db:"created_at" gorm:"column:created_at;autoCreateTime"`
}

func (WindowEntity) TableName() string {
	return "registration_windows"
}

func toWindowEntity(m *model.RegistrationWindow) *WindowEntity {
	if m == nil {
		return nil
	}
	return &WindowEntity{
		ID:        m.ID,
		StartDate: m.StartDate,
		EndDate:   m.EndDate,
		IsOpen:    m.IsOpen,
		OpenedBy:  m.OpenedBy,
	}
}

func toWindowModel(e *WindowEntity) *model.RegistrationWindow {
	if e == nil {
		return nil
	}
	return &model.RegistrationWindow{
		ID:        e.ID,
		StartDate: e.StartDate,
		EndDate:   e.EndDate,
		IsOpen:    e.IsOpen,
		OpenedBy:  e.OpenedBy,
		CreatedAt: e.CreatedAt,
	}
}
