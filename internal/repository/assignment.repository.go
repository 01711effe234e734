package repository

import (
	"context"
	"errors"

	"github.com/makonda/offering-cards/internal/model"
	"github.com/makonda/offering-cards/pkg/pg"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	ErrAssignmentNotFound  = errors.New("assignment not found")
	ErrDuplicateAssignment = errors.New("card already assigned for year")
)

type AssignmentRepository struct {
	*pg.DB
}

func NewAssignmentRepository(db *pg.DB) *AssignmentRepository {
	return &AssignmentRepository{
		db,
	}
}

func (r *AssignmentRepository) Create(ctx context.Context, a *model.CardAssignment) (*model.CardAssignment, error) {
	entity := toAssignmentEntity(a)

	if err := r.Write(ctx).WithContext(ctx).Create(entity).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicateAssignment
		}
		return nil, err
	}

	return toAssignmentModel(entity), nil
}

func (r *AssignmentRepository) GetByID(ctx context.Context, id int64) (*model.CardAssignment, error) {
	var entity AssignmentEntity
	err := r.Read(ctx).WithContext(ctx).
		Preload("Card").
		Preload("Card.Street").
		Preload("Member").
		Where("id = ?", id).
		First(&entity).
		Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAssignmentNotFound
		}
		return nil, err
	}

	return toAssignmentModel(&entity), nil
}

func (r *AssignmentRepository) GetByCardAndYear(ctx context.Context, cardID int64, year int) (*model.CardAssignment, error) {
	var entity AssignmentEntity
	err := r.Read(ctx).WithContext(ctx).
		Preload("Member").
		Where("card_id = ? AND year = ?", cardID, year).
		First(&entity).
		Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAssignmentNotFound
		}
		return nil, err
	}

	return toAssignmentModel(&entity), nil
}

// Update applies a partial column update and returns the fresh row.
func (r *AssignmentRepository) Update(ctx context.Context, id int64, fields map[string]interface{}) (*model.CardAssignment, error) {
	if len(fields) > 0 {
		result := r.Write(ctx).WithContext(ctx).
			Model(&AssignmentEntity{}).
			Where("id = ?", id).
			Updates(fields)
		if result.Error != nil {
			return nil, result.Error
		}
		if result.RowsAffected == 0 {
			return nil, ErrAssignmentNotFound
		}
	}

	return r.GetByID(ctx, id)
}

// ResolvePayer picks the assignment whose member should be credited for
// an entry on the card. The year's assignment wins; without one the
// most recent assignment across years is used.
func (r *AssignmentRepository) ResolvePayer(ctx context.Context, cardID int64, year int) (*model.CardAssignment, error) {
	var entity AssignmentEntity
	err := r.Read(ctx).WithContext(ctx).
		Where("card_id = ? AND year = ?", cardID, year).
		Order("active DESC, created_at DESC").
		First(&entity).
		Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		err = r.Read(ctx).WithContext(ctx).
			Where("card_id = ?", cardID).
			Order("year DESC, created_at DESC").
			First(&entity).
			Error
	}

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAssignmentNotFound
		}
		return nil, err
	}

	return toAssignmentModel(&entity), nil
}

func (r *AssignmentRepository) ActiveForMemberYear(ctx context.Context, memberID int64, year int) (*model.CardAssignment, error) {
	var entity AssignmentEntity
	err := r.Read(ctx).WithContext(ctx).
		Preload("Card").
		Where("member_id = ? AND year = ? AND active = ?", memberID, year, true).
		First(&entity).
		Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAssignmentNotFound
		}
		return nil, err
	}

	return toAssignmentModel(&entity), nil
}

func (r *AssignmentRepository) ListForYear(ctx context.Context, cardIDs []int64, year int) ([]*model.CardAssignment, error) {
	if len(cardIDs) == 0 {
		return nil, nil
	}

	var entities []*AssignmentEntity
	err := r.Read(ctx).WithContext(ctx).
		Preload("Member").
		Where("card_id IN ? AND year = ?", cardIDs, year).
		Find(&entities).
		Error
	if err != nil {
		return nil, err
	}

	return toAssignmentModels(entities), nil
}

type pledgeSums struct {
	Ahadi    decimal.Decimal `gorm:"column:ahadi"`
	Shukrani decimal.Decimal `gorm:"column:shukrani"`
	Majengo  decimal.Decimal `gorm:"column:majengo"`
}

func (r *AssignmentRepository) SumPledges(ctx context.Context, year int, streetID *int64) (model.PledgeSet, error) {
	q := r.Read(ctx).WithContext(ctx).
		Table("card_assignments AS ca").
		Select(`
            COALESCE(SUM(ca.ahadi_pledge), 0)    AS ahadi,
            COALESCE(SUM(ca.shukrani_pledge), 0) AS shukrani,
            COALESCE(SUM(ca.majengo_pledge), 0)  AS majengo
        `).
		Where("ca.year = ?", year)

	if streetID != nil {
		q = q.Joins("JOIN offering_cards AS c ON c.id = ca.card_id").
			Where("c.street_id = ?", *streetID)
	}

	var sums pledgeSums
	if err := q.Scan(&sums).Error; err != nil {
		return model.PledgeSet{}, err
	}

	return model.PledgeSet{Ahadi: sums.Ahadi, Shukrani: sums.Shukrani, Majengo: sums.Majengo}, nil
}
