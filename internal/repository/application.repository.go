package repository

import (
	"context"
	"errors"

	"github.com/makonda/offering-cards/internal/model"
	"github.com/makonda/offering-cards/pkg/pg"
	"gorm.io/gorm"
)

var (
	ErrApplicationNotFound = errors.New("application not found")
)

type ApplicationRepository struct {
	*pg.DB
}

func NewApplicationRepository(db *pg.DB) *ApplicationRepository {
	return &ApplicationRepository{
		db,
	}
}

func (r *ApplicationRepository) Create(ctx context.Context, app *model.CardApplication) (*model.CardApplication, error) {
	entity := toApplicationEntity(app)

	if err := r.Write(ctx).WithContext(ctx).Create(entity).Error; err != nil {
		return nil, err
	}

	return toApplicationModel(entity), nil
}

func (r *ApplicationRepository) GetByID(ctx context.Context, id int64) (*model.CardApplication, error) {
	var entity ApplicationEntity
	err := r.Read(ctx).WithContext(ctx).
		Preload("Member").
		Where("id = ?", id).
		First(&entity).
		Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrApplicationNotFound
		}
		return nil, err
	}

	return toApplicationModel(&entity), nil
}

func (r *ApplicationRepository) List(ctx context.Context, f model.ApplicationFilter) ([]*model.CardApplication, int64, error) {
	q := r.Read(ctx).WithContext(ctx).Model(&ApplicationEntity{})

	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.Year != nil {
		q = q.Where("year = ?", *f.Year)
	}
	if f.MemberID != nil {
		q = q.Where("member_id = ?", *f.MemberID)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	limit := f.Limit
	if limit <= 0 || limit > 1000 {
		limit = 50
	}
	offset := f.Offset
	if offset < 0 {
		offset = 0
	}

	var entities []*ApplicationEntity
	err := q.Preload("Member").
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&entities).
		Error
	if err != nil {
		return nil, 0, err
	}

	return toApplicationModels(entities), total, nil
}

// Update applies a partial column update and returns the fresh row.
func (r *ApplicationRepository) Update(ctx context.Context, id int64, fields map[string]interface{}) (*model.CardApplication, error) {
	if len(fields) > 0 {
		result := r.Write(ctx).WithContext(ctx).
			Model(&ApplicationEntity{}).
			Where("id = ?", id).
			Updates(fields)
		if result.Error != nil {
			return nil, result.Error
		}
		if result.RowsAffected == 0 {
			return nil, ErrApplicationNotFound
		}
	}

	return r.GetByID(ctx, id)
}

// HasPending reports whether the applicant already has a NEW application
// on file, in any year. The applicant is matched by member id when the
// account is linked, by phone number otherwise.
func (r *ApplicationRepository) HasPending(ctx context.Context, memberID *int64, phone string) (bool, error) {
	q := r.Read(ctx).WithContext(ctx).
		Model(&ApplicationEntity{}).
		Where("status = ?", model.ApplicationStatusNew)

	switch {
	case memberID != nil && phone != "":
		q = q.Where("member_id = ? OR phone_number = ?", *memberID, phone)
	case memberID != nil:
		q = q.Where("member_id = ?", *memberID)
	default:
		q = q.Where("phone_number = ?", phone)
	}

	var count int64
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// LatestForMemberYear returns the member's most recent application for
// the year, regardless of status.
func (r *ApplicationRepository) LatestForMemberYear(ctx context.Context, memberID int64, year int) (*model.CardApplication, error) {
	var entity ApplicationEntity
	err := r.Read(ctx).WithContext(ctx).
		Where("member_id = ? AND year = ?", memberID, year).
		Order("created_at DESC").
		First(&entity).
		Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrApplicationNotFound
		}
		return nil, err
	}

	return toApplicationModel(&entity), nil
}
