package services

import (
	"context"
	"errors"
	"time"

	"github.com/makonda/offering-cards/internal/model"
	"github.com/makonda/offering-cards/internal/repository"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

type AggregatesRepository interface {
	SumsByCard(ctx context.Context, cardID int64, year int) (model.PledgeSet, error)
	SumsByCards(ctx context.Context, cardIDs []int64, year int) (map[int64]model.PledgeSet, error)
	CollectedTotals(ctx context.Context, year int, streetID *int64) (model.PledgeSet, error)
	ActiveCardCount(ctx context.Context, year int, streetID *int64) (int64, error)
	LeastActiveCard(ctx context.Context, streetID *int64) (string, error)
}

type PledgeAggregatesRepository interface {
	ListForYear(ctx context.Context, cardIDs []int64, year int) ([]*model.CardAssignment, error)
	SumPledges(ctx context.Context, year int, streetID *int64) (model.PledgeSet, error)
	ActiveForMemberYear(ctx context.Context, memberID int64, year int) (*model.CardAssignment, error)
}

type ReportService struct {
	cardRepo        CardRepository
	assignmentAggs  PledgeAggregatesRepository
	offeringAggs    AggregatesRepository
	applicationRepo ApplicationRepository
	memberRepo      MemberRepository
}

func NewReportService(
	cardRepo CardRepository,
	assignmentAggs PledgeAggregatesRepository,
	offeringAggs AggregatesRepository,
	applicationRepo ApplicationRepository,
	memberRepo MemberRepository,
) *ReportService {
	return &ReportService{
		cardRepo:        cardRepo,
		assignmentAggs:  assignmentAggs,
		offeringAggs:    offeringAggs,
		applicationRepo: applicationRepo,
		memberRepo:      memberRepo,
	}
}

// progressPct is collected over pledged as a percentage. A card with
// nothing pledged reports zero, never a division error.
func progressPct(pledged, collected model.PledgeSet) float64 {
	total := pledged.Total()
	if total.Sign() <= 0 {
		return 0
	}
	pct, _ := collected.Total().Div(total).Mul(hundred).Round(2).Float64()
	return pct
}

// CardViews lists cards with their holder, pledges and collection
// progress for the year.
func (s *ReportService) CardViews(ctx context.Context, f model.CardFilter, year int) ([]model.CardView, int64, error) {
	if year == 0 {
		year = time.Now().Year()
	}

	cards, total, err := s.cardRepo.List(ctx, f)
	if err != nil {
		return nil, 0, err
	}

	cardIDs := make([]int64, len(cards))
	for i, c := range cards {
		cardIDs[i] = c.ID
	}

	assignments, err := s.assignmentAggs.ListForYear(ctx, cardIDs, year)
	if err != nil {
		return nil, 0, err
	}
	byCard := make(map[int64]*model.CardAssignment, len(assignments))
	for _, a := range assignments {
		byCard[a.CardID] = a
	}

	collected, err := s.offeringAggs.SumsByCards(ctx, cardIDs, year)
	if err != nil {
		return nil, 0, err
	}

	views := make([]model.CardView, len(cards))
	for i, c := range cards {
		view := model.CardView{
			Card:      *c,
			Collected: collected[c.ID],
			Year:      year,
		}
		if a := byCard[c.ID]; a != nil {
			view.AssignmentID = &a.ID
			view.HolderID = a.MemberID
			view.HolderName = a.FullName
			if view.HolderName == "" && a.Member != nil {
				view.HolderName = a.Member.FullName
			}
			view.Pledges = a.Pledges
			view.ProgressPct = progressPct(a.Pledges, view.Collected)
		}
		views[i] = view
	}

	return views, total, nil
}

// Overview aggregates the registry for one year, for the whole parish
// or a single street.
func (s *ReportService) Overview(ctx context.Context, year int, streetID *int64) (*model.CardsOverview, error) {
	if year == 0 {
		year = time.Now().Year()
	}

	total, taken, err := s.cardRepo.Counts(ctx, streetID)
	if err != nil {
		return nil, err
	}

	pledged, err := s.assignmentAggs.SumPledges(ctx, year, streetID)
	if err != nil {
		return nil, err
	}

	collected, err := s.offeringAggs.CollectedTotals(ctx, year, streetID)
	if err != nil {
		return nil, err
	}

	active, err := s.offeringAggs.ActiveCardCount(ctx, year, streetID)
	if err != nil {
		return nil, err
	}

	leastActive, err := s.offeringAggs.LeastActiveCard(ctx, streetID)
	if err != nil {
		return nil, err
	}

	return &model.CardsOverview{
		TotalCards:      total,
		TakenCards:      taken,
		FreeCards:       total - taken,
		ActiveCards:     active,
		LeastActiveCard: leastActive,
		TotalPledged:    pledged,
		TotalCollected:  collected,
		Year:            year,
	}, nil
}

// MemberCardState is the self-service view: the member's application
// and assignment for the year with collection progress.
func (s *ReportService) MemberCardState(ctx context.Context, memberID int64, year int) (*model.MemberCardState, error) {
	if year == 0 {
		year = time.Now().Year()
	}

	member, err := s.memberRepo.GetByID(ctx, memberID)
	if err != nil {
		return nil, err
	}

	state := &model.MemberCardState{
		Member: *member,
		Year:   year,
	}

	app, err := s.applicationRepo.LatestForMemberYear(ctx, memberID, year)
	if err != nil && !errors.Is(err, repository.ErrApplicationNotFound) {
		return nil, err
	}
	state.Application = app

	assignment, err := s.assignmentAggs.ActiveForMemberYear(ctx, memberID, year)
	if err != nil {
		if errors.Is(err, repository.ErrAssignmentNotFound) {
			return state, nil
		}
		return nil, err
	}
	state.Assignment = assignment

	collected, err := s.offeringAggs.SumsByCard(ctx, assignment.CardID, year)
	if err != nil {
		return nil, err
	}
	state.Collected = collected
	state.ProgressPct = progressPct(assignment.Pledges, collected)

	return state, nil
}
