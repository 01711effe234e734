package repository

import (
	"time"

	"github.com/makonda/offering-cards/internal/model"
)

type MemberEntity struct {
	ID          int64     `db:"id"           gorm:"primaryKey;autoIncrement;column:id"`
	FullName    string    `db:"full_name"    gorm:"column:full_name;not null"`
	Email       string    `db:"email"        gorm:"column:email;not null;uniqueIndex"`
	PhoneNumber string    `db:"phone_number" gorm:"column:phone_number;index"`
	StreetID    *int64    `db:"street_id"    gorm:"column:street_id;index"`
	Role        string    `db:"role"         gorm:"column:role;not null;default:CHURCH_MEMBER"`
	CreatedAt   time.Time `db:"created_at"   gorm:"column:created_at;autoCreateTime"`
}

func (MemberEntity) TableName() string {
	return "members"
}

func toMemberModel(e *MemberEntity) *model.Member {
	if e == nil {
		return nil
	}
	return &model.Member{
		ID:          e.ID,
		FullName:    e.FullName,
		Email:       e.Email,
		PhoneNumber: e.PhoneNumber,
		StreetID:    e.StreetID,
		Role:        e.Role,
		CreatedAt:   e.CreatedAt,
	}
}
