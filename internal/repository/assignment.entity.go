package repository

import (
	"time"

	"github.com/makonda/offering-cards/internal/model"
	"github.com/shopspring/decimal"
)

type AssignmentEntity struct {
	ID             int64           `db:"id"              gorm:"primaryKey;autoIncrement;column:id"`
	CardID         int64           `db:"card_id"         gorm:"column:card_id;not null;uniqueIndex:ux_assignments_card_year"`
	Year           int             `db:"year"            gorm:"column:year;not null;uniqueIndex:ux_assignments_card_year"`
	MemberID       *int64          `db:"member_id"       gorm:"column:member_id;index"`
	FullName       string          `db:"full_name"       gorm:"column:full_name;not null"`
	PhoneNumber    string          `db:"phone_number"    gorm:"column:phone_number;not null"`
	AhadiPledge    decimal.Decimal `db:"ahadi_pledge"    gorm:"column:ahadi_pledge;type:decimal(12,2);not null"`
	ShukraniPledge decimal.Decimal `db:"shukrani_pledge" gorm:"column:shukrani_pledge;type:decimal(12,2);not null"`
	MajengoPledge  decimal.Decimal `db:"majengo_pledge"  gorm:"column:majengo_pledge;type:decimal(12,2);not null"`
	Active         bool            `db:"active"          gorm:"column:active;not null;default:true"`
	CreatedAt      time.Time       `db:"created_at"      gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time       `db:"updated_at"      gorm:"column:updated_at;autoUpdateTime"`
	Card           *CardEntity     `gorm:"foreignKey:CardID"`
	Member         *MemberEntity   `gorm:"foreignKey:MemberID"`
}

func (AssignmentEntity) TableName() string {
	return "card_assignments"
}

func toAssignmentEntity(m *model.CardAssignment) *AssignmentEntity {
	if m == nil {
		return nil
	}
	return &AssignmentEntity{
		ID:             m.ID,
		CardID:         m.CardID,
		Year:           m.Year,
		MemberID:       m.MemberID,
		FullName:       m.FullName,
		PhoneNumber:    m.PhoneNumber,
		AhadiPledge:    m.Pledges.Ahadi,
		ShukraniPledge: m.Pledges.Shukrani,
		MajengoPledge:  m.Pledges.Majengo,
		Active:         m.Active,
	}
}

func toAssignmentModel(e *AssignmentEntity) *model.CardAssignment {
	if e == nil {
		return nil
	}
	m := &model.CardAssignment{
		ID:          e.ID,
		CardID:      e.CardID,
		Year:        e.Year,
		MemberID:    e.MemberID,
		FullName:    e.FullName,
		PhoneNumber: e.PhoneNumber,
		Pledges: model.PledgeSet{
			Ahadi:    e.AhadiPledge,
			Shukrani: e.ShukraniPledge,
			Majengo:  e.MajengoPledge,
		},
		Active:    e.Active,
		CreatedAt: e.CreatedAt,
		UpdatedAt: e.UpdatedAt,
	}
	if e.Card != nil {
		m.Card = toCardModel(e.Card)
	}
	if e.Member != nil {
		m.Member = toMemberModel(e.Member)
	}
	return m
}

func toAssignmentModels(entities []*AssignmentEntity) []*model.CardAssignment {
	if entities == nil {
		return nil
	}
	models := make([]*model.CardAssignment, len(entities))
	for i, e := range entities {
		models[i] = toAssignmentModel(e)
	}
	return models
}
