package repository

import (
	"time"

	"github.com/makonda/offering-cards/internal/model"
)

type ActivityEntity struct {
	ID        int64     `db:"id"         gorm:"primaryKey;autoIncrement;column:id"`
	Actor     string    `db:"actor"      gorm:"column:actor"`
	Action    string    `db:"action"     gorm:"column:action;not null;index"`
	Detail    string    `db:"detail"     gorm:"column:detail"`
	CreatedAt time.Time `db:"created_at" gorm:"column:created_at;autoCreateTime"`
}

func (ActivityEntity) TableName() string {
	return "activity_logs"
}

func toActivityModel(e *ActivityEntity) *model.ActivityLog {
	if e == nil {
		return nil
	}
	return &model.ActivityLog{
		ID:        e.ID,
		Actor:     e.Actor,
		Action:    e.Action,
		Detail:    e.Detail,
		CreatedAt: e.CreatedAt,
	}
}
