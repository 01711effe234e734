package repository

import (
	"time"

	"github.com/makonda/offering-cards/internal/model"
	"github.com/shopspring/decimal"
)

type ApplicationEntity struct {
	ID              int64           `db:"id"               gorm:"primaryKey;autoIncrement;column:id"`
	MemberID        *int64          `db:"member_id"        gorm:"column:member_id;index"`
	FullName        string          `db:"full_name"        gorm:"column:full_name;not null"`
	PhoneNumber     string          `db:"phone_number"     gorm:"column:phone_number;not null;index"`
	StreetID        *int64          `db:"street_id"        gorm:"column:street_id"`
	Year            int             `db:"year"             gorm:"column:year;not null;index"`
	PreferredNumber *int            `db:"preferred_number" gorm:"column:preferred_number"`
	AhadiPledge     decimal.Decimal `db:"ahadi_pledge"     gorm:"column:ahadi_pledge;type:decimal(12,2);not null"`
	ShukraniPledge  decimal.Decimal `db:"shukrani_pledge"  gorm:"column:shukrani_pledge;type:decimal(12,2);not null"`
	MajengoPledge   decimal.Decimal `db:"majengo_pledge"   gorm:"column:majengo_pledge;type:decimal(12,2);not null"`
	Status          string          `db:"status"           gorm:"column:status;not null;default:NEW;index"`
	Note            string          `db:"note"             gorm:"column:note"`
	AssignmentID    *int64          `db:"assignment_id"    gorm:"column:assignment_id"`
	CreatedAt       time.Time       `db:"created_at"       gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time       `db:"updated_at"       gorm:"column:updated_at;autoUpdateTime"`
	Member          *MemberEntity   `gorm:"foreignKey:MemberID"`
}

func (ApplicationEntity) TableName() string {
	return "card_applications"
}

func toApplicationEntity(m *model.CardApplication) *ApplicationEntity {
	if m == nil {
		return nil
	}
	return &ApplicationEntity{
		ID:              m.ID,
		MemberID:        m.MemberID,
		FullName:        m.FullName,
		PhoneNumber:     m.PhoneNumber,
		StreetID:        m.StreetID,
		Year:            m.Year,
		PreferredNumber: m.PreferredNumber,
		AhadiPledge:     m.Pledges.Ahadi,
		ShukraniPledge:  m.Pledges.Shukrani,
		MajengoPledge:   m.Pledges.Majengo,
		Status:          m.Status,
		Note:            m.Note,
		AssignmentID:    m.AssignmentID,
	}
}

func toApplicationModel(e *ApplicationEntity) *model.CardApplication {
	if e == nil {
		return nil
	}
	m := &model.CardApplication{
		ID:              e.ID,
		MemberID:        e.MemberID,
		FullName:        e.FullName,
		PhoneNumber:     e.PhoneNumber,
		StreetID:        e.StreetID,
		Year:            e.Year,
		PreferredNumber: e.PreferredNumber,
		Pledges: model.PledgeSet{
			Ahadi:    e.AhadiPledge,
			Shukrani: e.ShukraniPledge,
			Majengo:  e.MajengoPledge,
		},
		Status:       e.Status,
		Note:         e.Note,
		AssignmentID: e.AssignmentID,
		CreatedAt:    e.CreatedAt,
		UpdatedAt:    e.UpdatedAt,
	}
	if e.Member != nil {
		m.Member = toMemberModel(e.Member)
	}
	return m
}

func toApplicationModels(entities []*ApplicationEntity) []*model.CardApplication {
	if entities == nil {
		return nil
	}
	models := make([]*model.CardApplication, len(entities))
	for i, e := range entities {
		models[i] = toApplicationModel(e)
	}
	return models
}
