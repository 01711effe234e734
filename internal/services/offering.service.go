package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/makonda/offering-cards/internal/model"
	"github.com/makonda/offering-cards/internal/queue"
	"github.com/makonda/offering-cards/internal/repository"
	"github.com/makonda/offering-cards/pkg/logger"
)

var (
	ErrInvalidEntryType  = errors.New("invalid entry type")
	ErrInvalidAmount     = errors.New("amount must be positive")
	ErrInvalidMassType   = errors.New("invalid mass type")
	ErrInvalidMassConfig = errors.New("major mass number must be 1 or 2 and only set for major masses")
	ErrStreetMismatch    = errors.New("card does not belong to the batch street")
	ErrEmptyBatch        = errors.New("batch has no entries")
)

type OfferingRepository interface {
	CreateEntry(ctx context.Context, e *model.OfferingEntry) (*model.OfferingEntry, error)
	CreateBatch(ctx context.Context, b *model.OfferingBatch) (*model.OfferingBatch, error)
	EntriesForMember(ctx context.Context, memberID int64, year int) ([]model.OfferingHistoryItem, error)
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

type ActivityRepository interface {
	Create(ctx context.Context, actor, action, detail string) error
}

type OfferingService struct {
	offeringRepo   OfferingRepository
	cardRepo       CardRepository
	streetRepo     StreetRepository
	assignmentRepo AssignmentRepository
	activityRepo   ActivityRepository
	mirrorQueue    *queue.Queue
}

func NewOfferingService(
	offeringRepo OfferingRepository,
	cardRepo CardRepository,
	streetRepo StreetRepository,
	assignmentRepo AssignmentRepository,
	activityRepo ActivityRepository,
	mirrorQueue *queue.Queue,
) *OfferingService {
	return &OfferingService{
		offeringRepo:   offeringRepo,
		cardRepo:       cardRepo,
		streetRepo:     streetRepo,
		assignmentRepo: assignmentRepo,
		activityRepo:   activityRepo,
		mirrorQueue:    mirrorQueue,
	}
}

// RecordEntry writes a single offering entry. The legacy ledger mirror
// is queued after commit; a mirror failure never fails the entry.
func (s *OfferingService) RecordEntry(ctx context.Context, p model.EntryCreateRequest) (*model.OfferingEntry, error) {
	if !model.ValidEntryType(p.EntryType) {
		return nil, ErrInvalidEntryType
	}
	if p.Amount.Sign() <= 0 {
		return nil, ErrInvalidAmount
	}

	serviceDate := time.Now().UTC().Truncate(24 * time.Hour)
	if p.ServiceDate != "" {
		var err error
		serviceDate, err = model.ParseDate(p.ServiceDate)
		if err != nil {
			return nil, ErrInvalidDate
		}
	}

	var created *model.OfferingEntry
	var card *model.OfferingCard
	err := s.offeringRepo.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		card, err = s.cardRepo.GetByID(ctx, p.CardID)
		if err != nil {
			return err
		}

		created, err = s.offeringRepo.CreateEntry(ctx, &model.OfferingEntry{
			CardID:      card.ID,
			EntryType:   p.EntryType,
			Amount:      p.Amount,
			ServiceDate: serviceDate,
			RecordedBy:  p.RecordedBy,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	s.publishMirror(ctx, created, card, "")

	return created, nil
}

// RecordBatch records one service sitting for a street in a single
// transaction: the batch row, every entry, and the audit row commit or
// roll back together. A card from another street aborts the whole
// batch.
func (s *OfferingService) RecordBatch(ctx context.Context, p model.BatchCreateRequest) (*model.BatchResult, error) {
	if len(p.Entries) == 0 {
		return nil, ErrEmptyBatch
	}
	if !model.ValidMassType(p.MassType) {
		return nil, ErrInvalidMassType
	}
	if p.MassType == model.MassTypeMajor {
		if p.MajorMassNumber == nil || (*p.MajorMassNumber != 1 && *p.MajorMassNumber != 2) {
			return nil, ErrInvalidMassConfig
		}
	} else if p.MajorMassNumber != nil {
		return nil, ErrInvalidMassConfig
	}

	serviceDate, err := model.ParseDate(p.ServiceDate)
	if err != nil {
		return nil, ErrInvalidDate
	}

	// Each entry may carry its own date; the batch date backs it up.
	entryDates := make([]time.Time, len(p.Entries))
	for i, in := range p.Entries {
		if !model.ValidEntryType(in.EntryType) {
			return nil, ErrInvalidEntryType
		}
		if in.Amount.Sign() <= 0 {
			return nil, ErrInvalidAmount
		}
		entryDates[i] = serviceDate
		if in.ServiceDate != "" {
			d, err := model.ParseDate(in.ServiceDate)
			if err != nil {
				return nil, ErrInvalidDate
			}
			entryDates[i] = d
		}
	}

	street, err := s.streetRepo.GetByID(ctx, p.StreetID)
	if err != nil {
		return nil, err
	}

	var result *model.BatchResult
	var mirrors []mirrorPair
	err = s.offeringRepo.WithinTransaction(ctx, func(ctx context.Context) error {
		batch, err := s.offeringRepo.CreateBatch(ctx, &model.OfferingBatch{
			StreetID:        street.ID,
			ServiceDate:     serviceDate,
			MassType:        p.MassType,
			MajorMassNumber: p.MajorMassNumber,
			RecordedBy:      p.RecordedBy,
			EntryCount:      len(p.Entries),
		})
		if err != nil {
			return err
		}

		var totals model.PledgeSet
		mirrors = mirrors[:0]
		for i, in := range p.Entries {
			card, err := s.cardRepo.GetByID(ctx, in.CardID)
			if err != nil {
				return err
			}
			if card.StreetID != street.ID {
				return fmt.Errorf("%w: card %s", ErrStreetMismatch, card.Code)
			}

			entry, err := s.offeringRepo.CreateEntry(ctx, &model.OfferingEntry{
				CardID:      card.ID,
				BatchID:     &batch.ID,
				EntryType:   in.EntryType,
				Amount:      in.Amount,
				ServiceDate: entryDates[i],
				RecordedBy:  p.RecordedBy,
			})
			if err != nil {
				return err
			}

			switch in.EntryType {
			case model.EntryTypeAhadi:
				totals.Ahadi = totals.Ahadi.Add(in.Amount)
			case model.EntryTypeShukrani:
				totals.Shukrani = totals.Shukrani.Add(in.Amount)
			case model.EntryTypeMajengo:
				totals.Majengo = totals.Majengo.Add(in.Amount)
			}
			mirrors = append(mirrors, mirrorPair{entry: entry, card: card})
		}

		detail := fmt.Sprintf("street=%s date=%s mass=%s entries=%d",
			street.Name, p.ServiceDate, p.MassType, len(p.Entries))
		if err := s.activityRepo.Create(ctx, p.RecordedBy, "offering_batch_recorded", detail); err != nil {
			return err
		}

		result = &model.BatchResult{
			BatchID:    batch.ID,
			EntryCount: len(p.Entries),
			Totals:     totals,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	for _, m := range mirrors {
		s.publishMirror(ctx, m.entry, m.card, p.MassType)
	}

	return result, nil
}

func (s *OfferingService) MemberHistory(ctx context.Context, memberID int64, year int) (*model.MemberOfferingHistory, error) {
	if year == 0 {
		year = time.Now().Year()
	}

	entries, err := s.offeringRepo.EntriesForMember(ctx, memberID, year)
	if err != nil {
		return nil, err
	}

	var totals model.PledgeSet
	for _, e := range entries {
		switch e.EntryType {
		case model.EntryTypeAhadi:
			totals.Ahadi = totals.Ahadi.Add(e.Amount)
		case model.EntryTypeShukrani:
			totals.Shukrani = totals.Shukrani.Add(e.Amount)
		case model.EntryTypeMajengo:
			totals.Majengo = totals.Majengo.Add(e.Amount)
		}
	}

	return &model.MemberOfferingHistory{
		MemberID: memberID,
		Year:     year,
		Entries:  entries,
		Totals:   totals,
	}, nil
}

type mirrorPair struct {
	entry *model.OfferingEntry
	card  *model.OfferingCard
}

// publishMirror queues the entry for the legacy ledger. Failures are
// logged and swallowed: the primary record already committed and the
// mirror worker retries from the stream.
func (s *OfferingService) publishMirror(ctx context.Context, entry *model.OfferingEntry, card *model.OfferingCard, massType string) {
	if s.mirrorQueue == nil || entry == nil || card == nil {
		return
	}

	record := model.MirrorRecord{
		EntryID:     entry.ID,
		CardID:      card.ID,
		CardCode:    card.Code,
		EntryType:   entry.EntryType,
		Amount:      entry.Amount,
		ServiceDate: entry.ServiceDate.Format(model.DateLayout),
		MassType:    massType,
	}

	payer, err := s.assignmentRepo.ResolvePayer(ctx, card.ID, entry.ServiceDate.Year())
	if err == nil {
		if payer.MemberID != nil {
			record.PayerID = *payer.MemberID
		}
		record.PayerName = payer.FullName
	} else if !errors.Is(err, repository.ErrAssignmentNotFound) {
		logger.Error("mirror payer resolution failed", "entry_id", entry.ID, "error", err)
	}

	if _, err := s.mirrorQueue.PublishJSON(ctx, record, map[string]string{"type": "offering_entry"}); err != nil {
		logger.Error("mirror publish failed", "entry_id", entry.ID, "error", err)
	}
}
