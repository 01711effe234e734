package repository

import (
	"context"

	"github.com/makonda/offering-cards/internal/model"
	"github.com/makonda/offering-cards/pkg/pg"
)

type ActivityRepository struct {
	*pg.DB
}

func NewActivityRepository(db *pg.DB) *ActivityRepository {
	return &ActivityRepository{
		db,
	}
}

func (r *ActivityRepository) Create(ctx context.Context, actor, action, detail string) error {
	entity := &ActivityEntity{
		Actor:  actor,
		Action: action,
		Detail: detail,
	}
	return r.Write(ctx).WithContext(ctx).Create(entity).Error
}

func (r *ActivityRepository) ListRecent(ctx context.Context, limit int) ([]*model.ActivityLog, error) {
	if limit <= 0 || limit > 500 {
		limit = 50
	}

	var entities []*ActivityEntity
	err := r.Read(ctx).WithContext(ctx).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&entities).
		Error
	if err != nil {
		return nil, err
	}

	logs := make([]*model.ActivityLog, len(entities))
	for i, e := range entities {
		logs[i] = toActivityModel(e)
	}
	return logs, nil
}
