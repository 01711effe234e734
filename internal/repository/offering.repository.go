package repository

import (
	"context"
	"errors"
	"time"

	"github.com/makonda/offering-cards/internal/model"
	"github.com/makonda/offering-cards/pkg/pg"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	ErrEntryNotFound = errors.New("offering entry not found")
	ErrBatchNotFound = errors.New("offering batch not found")
)

type OfferingRepository struct {
	*pg.DB
}

func NewOfferingRepository(db *pg.DB) *OfferingRepository {
	return &OfferingRepository{
		db,
	}
}

func yearRange(year int) (time.Time, time.Time) {
	start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(1, 0, 0)
}

func (r *OfferingRepository) CreateEntry(ctx context.Context, e *model.OfferingEntry) (*model.OfferingEntry, error) {
	entity := toEntryEntity(e)

	if err := r.Write(ctx).WithContext(ctx).Create(entity).Error; err != nil {
		return nil, err
	}

	return toEntryModel(entity), nil
}

func (r *OfferingRepository) CreateBatch(ctx context.Context, b *model.OfferingBatch) (*model.OfferingBatch, error) {
	entity := toBatchEntity(b)

	if err := r.Write(ctx).WithContext(ctx).Create(entity).Error; err != nil {
		return nil, err
	}

	return toBatchModel(entity), nil
}

func (r *OfferingRepository) GetEntry(ctx context.Context, id int64) (*model.OfferingEntry, error) {
	var entity EntryEntity
	err := r.Read(ctx).WithContext(ctx).
		Preload("Card").
		Where("id = ?", id).
		First(&entity).
		Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEntryNotFound
		}
		return nil, err
	}

	return toEntryModel(&entity), nil
}

type entrySums struct {
	Ahadi    decimal.Decimal `gorm:"column:ahadi"`
	Shukrani decimal.Decimal `gorm:"column:shukrani"`
	Majengo  decimal.Decimal `gorm:"column:majengo"`
}

const entrySumSelect = `
    COALESCE(SUM(CASE WHEN entry_type = 'AHADI'    THEN amount ELSE 0 END), 0) AS ahadi,
    COALESCE(SUM(CASE WHEN entry_type = 'SHUKRANI' THEN amount ELSE 0 END), 0) AS shukrani,
    COALESCE(SUM(CASE WHEN entry_type = 'MAJENGO'  THEN amount ELSE 0 END), 0) AS majengo
`

// SumsByCard totals the card's entries per type over the year.
func (r *OfferingRepository) SumsByCard(ctx context.Context, cardID int64, year int) (model.PledgeSet, error) {
	from, to := yearRange(year)

	var sums entrySums
	err := r.Read(ctx).WithContext(ctx).
		Model(&EntryEntity{}).
		Select(entrySumSelect).
		Where("card_id = ?", cardID).
		Where("service_date >= ? AND service_date < ?", from, to).
		Scan(&sums).
		Error
	if err != nil {
		return model.PledgeSet{}, err
	}

	return model.PledgeSet{Ahadi: sums.Ahadi, Shukrani: sums.Shukrani, Majengo: sums.Majengo}, nil
}

// SumsByCards totals entries per type over the year for many cards at
// once, keyed by card id.
func (r *OfferingRepository) SumsByCards(ctx context.Context, cardIDs []int64, year int) (map[int64]model.PledgeSet, error) {
	if len(cardIDs) == 0 {
		return map[int64]model.PledgeSet{}, nil
	}
	from, to := yearRange(year)

	// The sum fields are declared inline rather than embedding entrySums:
	// gorm skips unexported embedded fields when scanning, leaving them zero.
	type row struct {
		CardID   int64           `gorm:"column:card_id"`
		Ahadi    decimal.Decimal `gorm:"column:ahadi"`
		Shukrani decimal.Decimal `gorm:"column:shukrani"`
		Majengo  decimal.Decimal `gorm:"column:majengo"`
	}

	var rows []row
	err := r.Read(ctx).WithContext(ctx).
		Model(&EntryEntity{}).
		Select("card_id AS card_id," + entrySumSelect).
		Where("card_id IN ?", cardIDs).
		Where("service_date >= ? AND service_date < ?", from, to).
		Group("card_id").
		Scan(&rows).
		Error
	if err != nil {
		return nil, err
	}

	out := make(map[int64]model.PledgeSet, len(rows))
	for _, r := range rows {
		out[r.CardID] = model.PledgeSet{Ahadi: r.Ahadi, Shukrani: r.Shukrani, Majengo: r.Majengo}
	}
	return out, nil
}

// CollectedTotals totals all entries per type over the year, optionally
// restricted to one street.
func (r *OfferingRepository) CollectedTotals(ctx context.Context, year int, streetID *int64) (model.PledgeSet, error) {
	from, to := yearRange(year)

	q := r.Read(ctx).WithContext(ctx).
		Table("offering_entries AS e").
		Select(`
            COALESCE(SUM(CASE WHEN e.entry_type = 'AHADI'    THEN e.amount ELSE 0 END), 0) AS ahadi,
            COALESCE(SUM(CASE WHEN e.entry_type = 'SHUKRANI' THEN e.amount ELSE 0 END), 0) AS shukrani,
            COALESCE(SUM(CASE WHEN e.entry_type = 'MAJENGO'  THEN e.amount ELSE 0 END), 0) AS majengo
        `).
		Where("e.service_date >= ? AND e.service_date < ?", from, to)

	if streetID != nil {
		q = q.Joins("JOIN offering_cards AS c ON c.id = e.card_id").
			Where("c.street_id = ?", *streetID)
	}

	var sums entrySums
	if err := q.Scan(&sums).Error; err != nil {
		return model.PledgeSet{}, err
	}

	return model.PledgeSet{Ahadi: sums.Ahadi, Shukrani: sums.Shukrani, Majengo: sums.Majengo}, nil
}

// ActiveCardCount counts cards with at least one entry during the year.
func (r *OfferingRepository) ActiveCardCount(ctx context.Context, year int, streetID *int64) (int64, error) {
	from, to := yearRange(year)

	q := r.Read(ctx).WithContext(ctx).
		Table("offering_entries AS e").
		Distinct("e.card_id").
		Where("e.service_date >= ? AND e.service_date < ?", from, to)

	if streetID != nil {
		q = q.Joins("JOIN offering_cards AS c ON c.id = e.card_id").
			Where("c.street_id = ?", *streetID)
	}

	var count int64
	err := q.Count(&count).Error
	return count, err
}

// LeastActiveCard returns the code of the card with the smallest
// lifetime entry sum, lowest card id on ties. Cards with no entries at
// all are not considered; empty string when nothing has been recorded.
func (r *OfferingRepository) LeastActiveCard(ctx context.Context, streetID *int64) (string, error) {
	q := r.Read(ctx).WithContext(ctx).
		Table("offering_entries AS e").
		Select("c.code AS code, SUM(e.amount) AS total").
		Joins("JOIN offering_cards AS c ON c.id = e.card_id").
		Group("c.id, c.code").
		Order("total ASC, c.id ASC").
		Limit(1)

	if streetID != nil {
		q = q.Where("c.street_id = ?", *streetID)
	}

	var row struct {
		Code  string          `gorm:"column:code"`
		Total decimal.Decimal `gorm:"column:total"`
	}
	res := q.Scan(&row)
	if res.Error != nil {
		return "", res.Error
	}
	if res.RowsAffected == 0 {
		return "", nil
	}
	return row.Code, nil
}

// EntriesForMember returns the member's entries for the year, found via
// the cards assigned to them that year, newest first.
func (r *OfferingRepository) EntriesForMember(ctx context.Context, memberID int64, year int) ([]model.OfferingHistoryItem, error) {
	from, to := yearRange(year)

	var items []model.OfferingHistoryItem
	err := r.Read(ctx).WithContext(ctx).
		Table("offering_entries AS e").
		Select(`
            e.id           AS entry_id,
            c.code         AS card_code,
            e.entry_type   AS entry_type,
            e.amount       AS amount,
            e.service_date AS service_date
        `).
		Joins("JOIN card_assignments AS ca ON ca.card_id = e.card_id AND ca.year = ?", year).
		Joins("JOIN offering_cards AS c ON c.id = e.card_id").
		Where("ca.member_id = ?", memberID).
		Where("e.service_date >= ? AND e.service_date < ?", from, to).
		Order("e.service_date DESC, e.id DESC").
		Scan(&items).
		Error
	if err != nil {
		return nil, err
	}

	return items, nil
}
