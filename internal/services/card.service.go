package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/makonda/offering-cards/internal/model"
	"github.com/makonda/offering-cards/internal/repository"
)

var (
	ErrInvalidNumber = errors.New("card number must be positive")
	ErrInvalidRange  = errors.New("invalid number range")
)

// maxBulkNumber caps how far a bulk generation run may go in one call.
const maxBulkNumber = 300

type CardRepository interface {
	Create(ctx context.Context, card *model.OfferingCard) (*model.OfferingCard, error)
	GetByID(ctx context.Context, id int64) (*model.OfferingCard, error)
	GetByStreetAndNumber(ctx context.Context, streetID int64, number int) (*model.OfferingCard, error)
	List(ctx context.Context, f model.CardFilter) ([]*model.OfferingCard, int64, error)
	ListFree(ctx context.Context, streetID *int64) ([]model.AvailableNumber, error)
	FindAvailableNear(ctx context.Context, streetID int64, near, radius, limit int) ([]int, error)
	GetFreeForYear(ctx context.Context, streetID *int64, number, year int) (*model.OfferingCard, error)
	FirstFreeForYear(ctx context.Context, streetID *int64, year int) (*model.OfferingCard, error)
	SetOccupancy(ctx context.Context, cardID int64, memberID *int64, taken bool) error
	Counts(ctx context.Context, streetID *int64) (total, taken int64, err error)
}

type StreetRepository interface {
	GetByID(ctx context.Context, id int64) (*model.Street, error)
}

type CardService struct {
	cardRepo   CardRepository
	streetRepo StreetRepository
}

func NewCardService(cardRepo CardRepository, streetRepo StreetRepository) *CardService {
	return &CardService{
		cardRepo:   cardRepo,
		streetRepo: streetRepo,
	}
}

// deriveCode builds the printed card code from the street name and the
// number, e.g. "Pentekoste" card 7 becomes "PE-007".
func deriveCode(streetName string, number int) string {
	var prefix []rune
	for _, r := range streetName {
		if unicode.IsLetter(r) {
			prefix = append(prefix, unicode.ToUpper(r))
			if len(prefix) == 2 {
				break
			}
		}
	}
	for len(prefix) < 2 {
		prefix = append(prefix, 'X')
	}
	return fmt.Sprintf("%s-%03d", string(prefix), number)
}

func (s *CardService) Create(ctx context.Context, p model.CardCreateRequest) (*model.OfferingCard, error) {
	if p.Number <= 0 {
		return nil, ErrInvalidNumber
	}

	street, err := s.streetRepo.GetByID(ctx, p.StreetID)
	if err != nil {
		return nil, err
	}

	card := &model.OfferingCard{
		StreetID: street.ID,
		Number:   p.Number,
		Code:     deriveCode(street.Name, p.Number),
	}

	return s.cardRepo.Create(ctx, card)
}

// BulkGenerate creates cards for every number in [start, end] on a
// street, skipping numbers that already exist. Each card commits on its
// own so a duplicate mid-range never discards the rest of the run.
func (s *CardService) BulkGenerate(ctx context.Context, p model.BulkGenerateRequest) (*model.BulkGenerateResult, error) {
	if p.Start <= 0 {
		p.Start = 1
	}
	if p.End > maxBulkNumber {
		p.End = maxBulkNumber
	}
	if p.End < p.Start {
		return nil, ErrInvalidRange
	}

	street, err := s.streetRepo.GetByID(ctx, p.StreetID)
	if err != nil {
		return nil, err
	}

	result := &model.BulkGenerateResult{}
	for n := p.Start; n <= p.End; n++ {
		card := &model.OfferingCard{
			StreetID: street.ID,
			Number:   n,
			Code:     deriveCode(street.Name, n),
		}
		_, err := s.cardRepo.Create(ctx, card)
		if err != nil {
			if errors.Is(err, repository.ErrDuplicateCard) {
				result.Skipped++
				continue
			}
			return nil, err
		}
		result.Created++
	}

	return result, nil
}

func (s *CardService) List(ctx context.Context, f model.CardFilter) ([]*model.OfferingCard, int64, error) {
	f.Search = strings.TrimSpace(f.Search)
	return s.cardRepo.List(ctx, f)
}

func (s *CardService) Get(ctx context.Context, id int64) (*model.OfferingCard, error) {
	return s.cardRepo.GetByID(ctx, id)
}

func (s *CardService) AvailableNumbers(ctx context.Context, streetID *int64) ([]model.AvailableNumber, error) {
	return s.cardRepo.ListFree(ctx, streetID)
}

// Suggestions reports whether the wanted number is free on the street,
// along with free numbers near it. The nearby list is filled either
// way, so a caller can always show alternatives.
func (s *CardService) Suggestions(ctx context.Context, streetID int64, number, radius, limit int) (*model.NumberSuggestions, error) {
	if number <= 0 {
		return nil, ErrInvalidNumber
	}
	if radius <= 0 {
		radius = 10
	}
	if limit <= 0 {
		limit = 5
	}

	out := &model.NumberSuggestions{Requested: number}

	card, err := s.cardRepo.GetByStreetAndNumber(ctx, streetID, number)
	switch {
	case err == nil:
		out.Available = !card.IsTaken
	case errors.Is(err, repository.ErrCardNotFound):
		// Number was never generated on this street.
		out.Available = false
	default:
		return nil, err
	}

	nearby, err := s.cardRepo.FindAvailableNear(ctx, streetID, number, radius, limit)
	if err != nil {
		return nil, err
	}
	out.Nearby = nearby

	return out, nil
}
