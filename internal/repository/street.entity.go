package repository

import (
	"time"

	"github.com/makonda/offering-cards/internal/model"
)

type StreetEntity struct {
	ID        int64     `db:"id"         gorm:"primaryKey;autoIncrement;column:id"`
	Name      string    `db:"name"       gorm:"column:name;not null;uniqueIndex"`
	CreatedAt time.Time `db:"created_at" gorm:"column:created_at;autoCreateTime"`
}

func (StreetEntity) TableName() string {
	return "streets"
}

func toStreetModel(e *StreetEntity) *model.Street {
	if e == nil {
		return nil
	}
	return &model.Street{
		ID:        e.ID,
		Name:      e.Name,
		CreatedAt: e.CreatedAt,
	}
}
