package repository

import (
	"context"
	"errors"

	"github.com/makonda/offering-cards/internal/model"
	"github.com/makonda/offering-cards/pkg/pg"
	"gorm.io/gorm"
)

var (
	ErrWindowNotFound = errors.New("registration window not found")
)

type WindowRepository struct {
	*pg.DB
}

func NewWindowRepository(db *pg.DB) *WindowRepository {
	return &WindowRepository{
		db,
	}
}

func (r *WindowRepository) Create(ctx context.Context, w *model.RegistrationWindow) (*model.RegistrationWindow, error) {
	entity := toWindowEntity(w)

	if err := r.Write(ctx).WithContext(ctx).Create(entity).Error; err != nil {
		return nil, err
	}

	return toWindowModel(entity), nil
}

// CloseAllOpen flips every open window row closed. Rows are append-only
// history, so closing never deletes.
func (r *WindowRepository) CloseAllOpen(ctx context.Context) (int64, error) {
	result := r.Write(ctx).WithContext(ctx).
		Model(&WindowEntity{}).
		Where("is_open = ?", true).
		Update("is_open", false)

	return result.RowsAffected, result.Error
}

// LatestOpen returns the newest row still flagged open.
func (r *WindowRepository) LatestOpen(ctx context.Context) (*model.RegistrationWindow, error) {
	var entity WindowEntity
	err := r.Read(ctx).WithContext(ctx).
		Where("is_open = ?", true).
		Order("created_at DESC, id DESC").
		First(&entity).
		Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrWindowNotFound
		}
		return nil, err
	}

	return toWindowModel(&entity), nil
}
