package repository

import (
	"context"
	"errors"

	"github.com/makonda/offering-cards/internal/model"
	"github.com/makonda/offering-cards/pkg/pg"
	"gorm.io/gorm"
)

var (
	ErrStreetNotFound = errors.New("street not found")
)

type StreetRepository struct {
	*pg.DB
}

func NewStreetRepository(db *pg.DB) *StreetRepository {
	return &StreetRepository{
		db,
	}
}

func (r *StreetRepository) GetByID(ctx context.Context, id int64) (*model.Street, error) {
	var entity StreetEntity
	err := r.Read(ctx).WithContext(ctx).
		Where("id = ?", id).
		First(&entity).
		Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStreetNotFound
		}
		return nil, err
	}

	return toStreetModel(&entity), nil
}

func (r *StreetRepository) List(ctx context.Context) ([]*model.Street, error) {
	var entities []*StreetEntity
	err := r.Read(ctx).WithContext(ctx).
		Order("name ASC").
		Find(&entities).
		Error
	if err != nil {
		return nil, err
	}

	streets := make([]*model.Street, len(entities))
	for i, e := range entities {
		streets[i] = toStreetModel(e)
	}
	return streets, nil
}
