package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/makonda/offering-cards/internal/model"
)

var (
	ErrInvalidYear    = errors.New("invalid assignment year")
	ErrInvalidPledges = errors.New("pledge amounts cannot be negative")
	ErrHolderRequired = errors.New("holder full name and phone number required")
)

type AssignmentRepository interface {
	Create(ctx context.Context, a *model.CardAssignment) (*model.CardAssignment, error)
	GetByID(ctx context.Context, id int64) (*model.CardAssignment, error)
	GetByCardAndYear(ctx context.Context, cardID int64, year int) (*model.CardAssignment, error)
	Update(ctx context.Context, id int64, fields map[string]interface{}) (*model.CardAssignment, error)
	ResolvePayer(ctx context.Context, cardID int64, year int) (*model.CardAssignment, error)
	ActiveForMemberYear(ctx context.Context, memberID int64, year int) (*model.CardAssignment, error)
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

type MemberRepository interface {
	GetByID(ctx context.Context, id int64) (*model.Member, error)
	GetByPhone(ctx context.Context, phone string) (*model.Member, error)
}

type AssignmentService struct {
	assignmentRepo AssignmentRepository
	cardRepo       CardRepository
	memberRepo     MemberRepository
}

func NewAssignmentService(assignmentRepo AssignmentRepository, cardRepo CardRepository, memberRepo MemberRepository) *AssignmentService {
	return &AssignmentService{
		assignmentRepo: assignmentRepo,
		cardRepo:       cardRepo,
		memberRepo:     memberRepo,
	}
}

// Assign binds a holder to a card for a year. The holder's name and
// phone are stored on the assignment itself; a member link is optional
// and only fills in blanks. The card's occupancy only tracks the
// current year; an assignment for a past or future year leaves it
// untouched.
func (s *AssignmentService) Assign(ctx context.Context, p model.AssignRequest) (*model.CardAssignment, error) {
	if p.Year < 2000 || p.Year > 2200 {
		return nil, ErrInvalidYear
	}
	if !p.Pledges.Valid() {
		return nil, ErrInvalidPledges
	}

	fullName := strings.TrimSpace(p.FullName)
	phone := strings.TrimSpace(p.PhoneNumber)
	if p.MemberID != nil {
		member, err := s.memberRepo.GetByID(ctx, *p.MemberID)
		if err != nil {
			return nil, err
		}
		if fullName == "" {
			fullName = member.FullName
		}
		if phone == "" {
			phone = member.PhoneNumber
		}
	}
	if fullName == "" || phone == "" {
		return nil, ErrHolderRequired
	}

	var created *model.CardAssignment
	err := s.assignmentRepo.WithinTransaction(ctx, func(ctx context.Context) error {
		card, err := s.cardRepo.GetByID(ctx, p.CardID)
		if err != nil {
			return err
		}

		a := &model.CardAssignment{
			CardID:      card.ID,
			MemberID:    p.MemberID,
			FullName:    fullName,
			PhoneNumber: phone,
			Year:        p.Year,
			Pledges:     p.Pledges,
			Active:      true,
		}
		created, err = s.assignmentRepo.Create(ctx, a)
		if err != nil {
			return err
		}

		if p.Year == time.Now().Year() {
			if err := s.cardRepo.SetOccupancy(ctx, card.ID, p.MemberID, true); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return created, nil
}

// Update applies a partial change to an assignment. Occupancy is never
// recomputed here: the flag follows assignment existence, not edits.
func (s *AssignmentService) Update(ctx context.Context, id int64, p model.AssignmentUpdate) (*model.CardAssignment, error) {
	fields := map[string]interface{}{}

	if p.MemberID != nil {
		if _, err := s.memberRepo.GetByID(ctx, *p.MemberID); err != nil {
			return nil, err
		}
		fields["member_id"] = *p.MemberID
	}
	if p.FullName != nil {
		fields["full_name"] = strings.TrimSpace(*p.FullName)
	}
	if p.PhoneNumber != nil {
		fields["phone_number"] = strings.TrimSpace(*p.PhoneNumber)
	}
	if p.Pledges != nil {
		if !p.Pledges.Valid() {
			return nil, ErrInvalidPledges
		}
		fields["ahadi_pledge"] = p.Pledges.Ahadi
		fields["shukrani_pledge"] = p.Pledges.Shukrani
		fields["majengo_pledge"] = p.Pledges.Majengo
	}
	if p.Active != nil {
		fields["active"] = *p.Active
	}

	return s.assignmentRepo.Update(ctx, id, fields)
}

func (s *AssignmentService) Get(ctx context.Context, id int64) (*model.CardAssignment, error) {
	return s.assignmentRepo.GetByID(ctx, id)
}
