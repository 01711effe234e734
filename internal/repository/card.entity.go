package repository

import (
	"time"

	"github.com/makonda/offering-cards/internal/model"
)

type CardEntity struct {
	ID               int64         `db:"id"                  gorm:"primaryKey;autoIncrement;column:id"`
	StreetID         int64         `db:"street_id"           gorm:"column:street_id;not null;uniqueIndex:ux_cards_street_number"`
	Number           int           `db:"number"              gorm:"column:number;not null;uniqueIndex:ux_cards_street_number"`
	Code             string        `db:"code"                gorm:"column:code;not null;uniqueIndex"`
	IsTaken          bool          `db:"is_taken"            gorm:"column:is_taken;not null;default:false"`
	AssignedMemberID *int64        `db:"assigned_member_ref" gorm:"column:assigned_member_ref"`
	AssignedAt       *time.Time    `db:"assigned_at"         gorm:"column:assigned_at"`
	CreatedAt        time.Time     `db:"created_at"          gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time     `db:"updated_at"          gorm:"column:updated_at;autoUpdateTime"`
	Street           *StreetEntity `gorm:"foreignKey:StreetID"`
}

func (CardEntity) TableName() string {
	return "offering_cards"
}

func toCardEntity(m *model.OfferingCard) *CardEntity {
	if m == nil {
		return nil
	}
	return &CardEntity{
		ID:               m.ID,
		StreetID:         m.StreetID,
		Number:           m.Number,
		Code:             m.Code,
		IsTaken:          m.IsTaken,
		AssignedMemberID: m.AssignedMemberID,
		AssignedAt:       m.AssignedAt,
	}
}

func toCardModel(e *CardEntity) *model.OfferingCard {
	if e == nil {
		return nil
	}
	m := &model.OfferingCard{
		ID:               e.ID,
		StreetID:         e.StreetID,
		Number:           e.Number,
		Code:             e.Code,
		IsTaken:          e.IsTaken,
		AssignedMemberID: e.AssignedMemberID,
		AssignedAt:       e.AssignedAt,
		CreatedAt:        e.CreatedAt,
		UpdatedAt:        e.UpdatedAt,
	}
	if e.Street != nil {
		m.Street = toStreetModel(e.Street)
	}
	return m
}

func toCardModels(entities []*CardEntity) []*model.OfferingCard {
	if entities == nil {
		return nil
	}
	models := make([]*model.OfferingCard, len(entities))
	for i, e := range entities {
		models[i] = toCardModel(e)
	}
	return models
}
