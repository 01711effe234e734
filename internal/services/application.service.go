package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/makonda/offering-cards/internal/model"
	"github.com/makonda/offering-cards/internal/repository"
	"github.com/makonda/offering-cards/pkg/logger"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	ErrMemberRequired   = errors.New("member id or phone number required")
	ErrFullNameRequired = errors.New("applicant full name required")
	ErrDuplicatePending = errors.New("applicant already has a pending application")
	ErrAlreadyAssigned  = errors.New("member already holds a card for this year")
	ErrAlreadyApproved  = errors.New("application is already approved")
	ErrNoCardAvailable  = errors.New("no card available for assignment")
)

type ApplicationRepository interface {
	Create(ctx context.Context, app *model.CardApplication) (*model.CardApplication, error)
	GetByID(ctx context.Context, id int64) (*model.CardApplication, error)
	List(ctx context.Context, f model.ApplicationFilter) ([]*model.CardApplication, int64, error)
	Update(ctx context.Context, id int64, fields map[string]interface{}) (*model.CardApplication, error)
	HasPending(ctx context.Context, memberID *int64, phone string) (bool, error)
	LatestForMemberYear(ctx context.Context, memberID int64, year int) (*model.CardApplication, error)
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

type WindowGate interface {
	IsOpen(ctx context.Context) (bool, error)
}

type ApplicationService struct {
	applicationRepo ApplicationRepository
	assignmentRepo  AssignmentRepository
	cardRepo        CardRepository
	memberRepo      MemberRepository
	window          WindowGate
}

func NewApplicationService(
	applicationRepo ApplicationRepository,
	assignmentRepo AssignmentRepository,
	cardRepo CardRepository,
	memberRepo MemberRepository,
	window WindowGate,
) *ApplicationService {
	return &ApplicationService{
		applicationRepo: applicationRepo,
		assignmentRepo:  assignmentRepo,
		cardRepo:        cardRepo,
		memberRepo:      memberRepo,
		window:          window,
	}
}

// Submit files a card application. The applicant is linked to a member
// account when one matches by id or phone; otherwise the application
// stands on its own name and phone. While the registration window is
// open the application is assigned a card immediately; otherwise it
// queues as NEW for manual review. A failed auto-assignment never fails
// the submission: the application simply stays NEW.
func (s *ApplicationService) Submit(ctx context.Context, p model.ApplicationCreateRequest) (*model.CardApplication, error) {
	applicant, err := s.resolveApplicant(ctx, p)
	if err != nil {
		return nil, err
	}

	year := p.Year
	if year == 0 {
		year = time.Now().Year()
	}
	if !p.Pledges.Valid() {
		return nil, ErrInvalidPledges
	}

	// One NEW application per applicant, regardless of year.
	pending, err := s.applicationRepo.HasPending(ctx, applicant.MemberID, applicant.PhoneNumber)
	if err != nil {
		return nil, err
	}
	if pending {
		return nil, ErrDuplicatePending
	}

	if applicant.MemberID != nil {
		_, err = s.assignmentRepo.ActiveForMemberYear(ctx, *applicant.MemberID, year)
		if err == nil {
			return nil, ErrAlreadyAssigned
		}
		if !errors.Is(err, repository.ErrAssignmentNotFound) {
			return nil, err
		}
	}

	app := &model.CardApplication{
		MemberID:        applicant.MemberID,
		FullName:        applicant.FullName,
		PhoneNumber:     applicant.PhoneNumber,
		StreetID:        applicant.StreetID,
		Year:            year,
		PreferredNumber: p.PreferredNumber,
		Pledges:         p.Pledges,
		Status:          model.ApplicationStatusNew,
		Note:            p.Note,
	}
	created, err := s.applicationRepo.Create(ctx, app)
	if err != nil {
		return nil, err
	}

	open, err := s.window.IsOpen(ctx)
	if err != nil {
		logger.Error("registration window check failed", "error", err)
		return created, nil
	}
	if !open {
		return created, nil
	}

	assigned, err := s.autoAssign(ctx, created)
	if err != nil {
		// The application stands; assignment can happen on review.
		logger.Error("auto assignment failed", "application_id", created.ID, "error", err)
		return created, nil
	}
	return assigned, nil
}

// Approve assigns the chosen card to a NEW application. The admin names
// the card and year; pledge overrides replace the amounts the applicant
// applied with.
func (s *ApplicationService) Approve(ctx context.Context, id int64, p model.ApplicationApproveRequest) (*model.CardApplication, error) {
	app, err := s.applicationRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if app.AssignmentID != nil || app.Status == model.ApplicationStatusApproved {
		return nil, ErrAlreadyApproved
	}
	if p.Pledges != nil && !p.Pledges.Valid() {
		return nil, ErrInvalidPledges
	}

	year := p.Year
	if year == 0 {
		year = app.Year
	}

	card, err := s.cardRepo.GetByID(ctx, p.CardID)
	if err != nil {
		return nil, err
	}

	pledges := app.Pledges
	if p.Pledges != nil {
		pledges = *p.Pledges
	}

	var updated *model.CardApplication
	err = s.applicationRepo.WithinTransaction(ctx, func(ctx context.Context) error {
		updated, err = s.completeAssignment(ctx, app, card, year, pledges)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Reject marks a NEW application rejected. Rejecting an already
// rejected application is a no-op; an approved one cannot be rejected.
func (s *ApplicationService) Reject(ctx context.Context, id int64, reason string) (*model.CardApplication, error) {
	app, err := s.applicationRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if app.Status == model.ApplicationStatusApproved {
		return nil, ErrAlreadyApproved
	}
	if app.Status == model.ApplicationStatusRejected {
		return app, nil
	}

	note := app.Note
	if reason != "" {
		if note != "" {
			note += "\n"
		}
		note += "rejected: " + reason
	}

	return s.applicationRepo.Update(ctx, id, map[string]interface{}{
		"status": model.ApplicationStatusRejected,
		"note":   note,
	})
}

func (s *ApplicationService) List(ctx context.Context, f model.ApplicationFilter) ([]*model.CardApplication, int64, error) {
	f.Status = strings.ToUpper(strings.TrimSpace(f.Status))
	return s.applicationRepo.List(ctx, f)
}

func (s *ApplicationService) Get(ctx context.Context, id int64) (*model.CardApplication, error) {
	return s.applicationRepo.GetByID(ctx, id)
}

// applicant is the resolved identity an application is filed under.
type applicant struct {
	MemberID    *int64
	FullName    string
	PhoneNumber string
	StreetID    *int64
}

// resolveApplicant links the request to a member account by id, then by
// phone. A phone with no matching account is accepted as an unlinked
// applicant, provided a full name was given. Missing request fields are
// filled from the linked account.
func (s *ApplicationService) resolveApplicant(ctx context.Context, p model.ApplicationCreateRequest) (*applicant, error) {
	a := &applicant{
		FullName:    strings.TrimSpace(p.FullName),
		PhoneNumber: strings.TrimSpace(p.PhoneNumber),
		StreetID:    p.StreetID,
	}

	var member *model.Member
	switch {
	case p.MemberID != 0:
		m, err := s.memberRepo.GetByID(ctx, p.MemberID)
		if err != nil {
			return nil, err
		}
		member = m
	case a.PhoneNumber != "":
		m, err := s.memberRepo.GetByPhone(ctx, a.PhoneNumber)
		if err != nil && !errors.Is(err, repository.ErrMemberNotFound) {
			return nil, err
		}
		member = m
	default:
		return nil, ErrMemberRequired
	}

	if member != nil {
		a.MemberID = &member.ID
		if a.FullName == "" {
			a.FullName = member.FullName
		}
		if a.PhoneNumber == "" {
			a.PhoneNumber = member.PhoneNumber
		}
		if a.StreetID == nil {
			a.StreetID = member.StreetID
		}
	}

	if a.FullName == "" {
		return nil, ErrFullNameRequired
	}
	return a, nil
}

// autoAssign picks a card for the application and creates its
// assignment atomically. The preferred number is tried first, then the
// lowest free number on the application's street; the search never
// crosses to another street. A duplicate key from a concurrent grab of
// the same card is retried once with the next free card.
func (s *ApplicationService) autoAssign(ctx context.Context, app *model.CardApplication) (*model.CardApplication, error) {
	const attempts = 2
	var lastErr error

	for attempt := 0; attempt < attempts; attempt++ {
		var updated *model.CardApplication
		err := s.applicationRepo.WithinTransaction(ctx, func(ctx context.Context) error {
			card, err := s.pickCard(ctx, app, attempt > 0)
			if err != nil {
				return err
			}

			updated, err = s.completeAssignment(ctx, app, card, app.Year, app.Pledges)
			return err
		})
		if err == nil {
			return updated, nil
		}

		lastErr = err
		if !errors.Is(err, repository.ErrDuplicateAssignment) && !errors.Is(err, gorm.ErrDuplicatedKey) {
			break
		}
	}

	if errors.Is(lastErr, repository.ErrCardNotFound) || errors.Is(lastErr, repository.ErrNoFreeCard) {
		return nil, ErrNoCardAvailable
	}
	return nil, fmt.Errorf("assign card: %w", lastErr)
}

// completeAssignment writes the assignment for the card, mirrors the
// card's occupancy for a current-year assignment, and closes out the
// application: APPROVED, linked to the assignment, with its pledge
// fields zeroed now that the assignment carries the amounts.
func (s *ApplicationService) completeAssignment(ctx context.Context, app *model.CardApplication, card *model.OfferingCard, year int, pledges model.PledgeSet) (*model.CardApplication, error) {
	assignment, err := s.assignmentRepo.Create(ctx, &model.CardAssignment{
		CardID:      card.ID,
		MemberID:    app.MemberID,
		FullName:    app.FullName,
		PhoneNumber: app.PhoneNumber,
		Year:        year,
		Pledges:     pledges,
		Active:      true,
	})
	if err != nil {
		return nil, err
	}

	if year == time.Now().Year() {
		if err := s.cardRepo.SetOccupancy(ctx, card.ID, app.MemberID, true); err != nil {
			return nil, err
		}
	}

	return s.applicationRepo.Update(ctx, app.ID, map[string]interface{}{
		"status":          model.ApplicationStatusApproved,
		"assignment_id":   assignment.ID,
		"ahadi_pledge":    decimal.Zero,
		"shukrani_pledge": decimal.Zero,
		"majengo_pledge":  decimal.Zero,
	})
}

// pickCard locks a free card for the application's year on the
// application's street. The preferred number is skipped on a retry so a
// contended card is not fought over.
func (s *ApplicationService) pickCard(ctx context.Context, app *model.CardApplication, skipPreferred bool) (*model.OfferingCard, error) {
	if app.PreferredNumber != nil && !skipPreferred {
		card, err := s.cardRepo.GetFreeForYear(ctx, app.StreetID, *app.PreferredNumber, app.Year)
		if err == nil {
			return card, nil
		}
		if !errors.Is(err, repository.ErrCardNotFound) {
			return nil, err
		}
		// Preferred number unavailable, fall through to the lowest free.
	}

	return s.cardRepo.FirstFreeForYear(ctx, app.StreetID, app.Year)
}
