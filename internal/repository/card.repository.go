package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/makonda/offering-cards/internal/model"
	"github.com/makonda/offering-cards/pkg/pg"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrCardNotFound  = errors.New("card not found")
	ErrDuplicateCard = errors.New("card already exists")
	ErrNoFreeCard    = errors.New("no free card available")
)

type CardRepository struct {
	*pg.DB
}

func NewCardRepository(db *pg.DB) *CardRepository {
	return &CardRepository{
		db,
	}
}

func (r *CardRepository) Create(ctx context.Context, card *model.OfferingCard) (*model.OfferingCard, error) {
	entity := toCardEntity(card)

	if err := r.Write(ctx).WithContext(ctx).Create(entity).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicateCard
		}
		return nil, err
	}

	return toCardModel(entity), nil
}

func (r *CardRepository) GetByID(ctx context.Context, id int64) (*model.OfferingCard, error) {
	var entity CardEntity
	err := r.Read(ctx).WithContext(ctx).
		Preload("Street").
		Where("id = ?", id).
		First(&entity).
		Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCardNotFound
		}
		return nil, err
	}

	return toCardModel(&entity), nil
}

func (r *CardRepository) GetByStreetAndNumber(ctx context.Context, streetID int64, number int) (*model.OfferingCard, error) {
	var entity CardEntity
	err := r.Read(ctx).WithContext(ctx).
		Where("street_id = ? AND number = ?", streetID, number).
		First(&entity).
		Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCardNotFound
		}
		return nil, err
	}

	return toCardModel(&entity), nil
}

func (r *CardRepository) Exists(ctx context.Context, streetID int64, number int) (bool, error) {
	var count int64
	err := r.Read(ctx).WithContext(ctx).
		Model(&CardEntity{}).
		Where("street_id = ? AND number = ?", streetID, number).
		Count(&count).
		Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *CardRepository) List(ctx context.Context, f model.CardFilter) ([]*model.OfferingCard, int64, error) {
	q := r.Read(ctx).WithContext(ctx).Model(&CardEntity{})

	if f.StreetID != nil {
		q = q.Where("street_id = ?", *f.StreetID)
	}
	if f.Taken != nil {
		q = q.Where("is_taken = ?", *f.Taken)
	}
	if f.Search != "" {
		q = q.Where("UPPER(code) LIKE ?", "%"+strings.ToUpper(f.Search)+"%")
	}

	// Count before pagination
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

	var entities []*CardEntity
	err := q.Preload("Street").
		Order("street_id ASC, number ASC").
		Limit(limit).
		Offset(offset).
		Find(&entities).
		Error
	if err != nil {
		return nil, 0, err
	}

	return toCardModels(entities), total, nil
}

// ListFree returns untaken cards joined with their street, ordered by
// street name then number, for the availability listing.
func (r *CardRepository) ListFree(ctx context.Context, streetID *int64) ([]model.AvailableNumber, error) {
	q := r.Read(ctx).WithContext(ctx).
		Table("offering_cards AS c").
		Select("c.number AS number, c.code AS code, c.street_id AS street_id, s.name AS street_name").
		Joins("JOIN streets AS s ON s.id = c.street_id").
		Where("c.is_taken = ?", false)

	if streetID != nil {
		q = q.Where("c.street_id = ?", *streetID)
	}

	var rows []model.AvailableNumber
	if err := q.Order("s.name ASC, c.number ASC").Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// FindAvailableNear returns free card numbers on a street within radius
// of the wanted number, closest first.
func (r *CardRepository) FindAvailableNear(ctx context.Context, streetID int64, near, radius, limit int) ([]int, error) {
	var numbers []int
	err := r.Read(ctx).WithContext(ctx).
		Model(&CardEntity{}).
		Where("street_id = ?", streetID).
		Where("number BETWEEN ? AND ?", near-radius, near+radius).
		Where("number != ?", near).
		Where("is_taken = ?", false).
		Order(clause.OrderBy{Expression: clause.Expr{
			SQL:                "ABS(number - ?) ASC, number ASC",
			Vars:               []interface{}{near},
			WithoutParentheses: true,
		}}).
		Limit(limit).
		Pluck("number", &numbers).
		Error
	if err != nil {
		return nil, err
	}
	return numbers, nil
}

// GetFreeForYear locks and returns the card with the given number that
// has no assignment for the year. Scoped to a street when one is given.
func (r *CardRepository) GetFreeForYear(ctx context.Context, streetID *int64, number, year int) (*model.OfferingCard, error) {
	q := r.Write(ctx).WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("number = ?", number).
		Where("NOT EXISTS (SELECT 1 FROM card_assignments a WHERE a.card_id = offering_cards.id AND a.year = ?)", year)

	if streetID != nil {
		q = q.Where("street_id = ?", *streetID)
	}

	var entity CardEntity
	if err := q.Order("id ASC").First(&entity).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCardNotFound
		}
		return nil, err
	}

	return toCardModel(&entity), nil
}

// FirstFreeForYear locks and returns the lowest-numbered card on the
// street without an assignment for the year. The search never leaves
// the street: when it has no free card, ErrNoFreeCard is returned even
// if other streets do.
func (r *CardRepository) FirstFreeForYear(ctx context.Context, streetID *int64, year int) (*model.OfferingCard, error) {
	q := r.Write(ctx).WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("NOT EXISTS (SELECT 1 FROM card_assignments a WHERE a.card_id = offering_cards.id AND a.year = ?)", year)
	if streetID != nil {
		q = q.Where("street_id = ?", *streetID)
	}

	var entity CardEntity
	if err := q.Order("number ASC, id ASC").First(&entity).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoFreeCard
		}
		return nil, err
	}

	return toCardModel(&entity), nil
}

// SetOccupancy flips the card's taken flag together with the mirrored
// holder columns: taking records who holds it and since when, freeing
// clears both.
func (r *CardRepository) SetOccupancy(ctx context.Context, cardID int64, memberID *int64, taken bool) error {
	fields := map[string]interface{}{
		"is_taken":            taken,
		"assigned_member_ref": nil,
		"assigned_at":         nil,
	}
	if taken {
		fields["assigned_member_ref"] = memberID
		fields["assigned_at"] = time.Now().UTC()
	}

	result := r.Write(ctx).WithContext(ctx).
		Model(&CardEntity{}).
		Where("id = ?", cardID).
		Updates(fields)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrCardNotFound
	}
	return nil
}

func (r *CardRepository) Counts(ctx context.Context, streetID *int64) (total, taken int64, err error) {
	base := func() *gorm.DB {
		q := r.Read(ctx).WithContext(ctx).Model(&CardEntity{})
		if streetID != nil {
			q = q.Where("street_id = ?", *streetID)
		}
		return q
	}

	if err = base().Count(&total).Error; err != nil {
		return 0, 0, err
	}
	if err = base().Where("is_taken = ?", true).Count(&taken).Error; err != nil {
		return 0, 0, err
	}
	return total, taken, nil
}
