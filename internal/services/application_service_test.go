package services

import (
	"context"
	"testing"

	"github.com/makonda/offering-cards/internal/model"
	"github.com/makonda/offering-cards/internal/repository"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func testPledges() model.PledgeSet {
	return model.PledgeSet{
		Ahadi:    decimal.RequireFromString("120000"),
		Shukrani: decimal.RequireFromString("50000"),
		Majengo:  decimal.RequireFromString("30000"),
	}
}

// approvalFields matches the column update that closes out an approved
// application: APPROVED, linked, and all three pledge fields zeroed.
func approvalFields(fields map[string]interface{}) bool {
	if fields["status"] != model.ApplicationStatusApproved {
		return false
	}
	for _, col := range []string{"ahadi_pledge", "shukrani_pledge", "majengo_pledge"} {
		d, ok := fields[col].(decimal.Decimal)
		if !ok || !d.IsZero() {
			return false
		}
	}
	return true
}

func newApplicationService() (*ApplicationService, *MockApplicationRepository, *MockAssignmentRepository, *MockCardRepository, *MockMemberRepository, *MockWindowGate) {
	appRepo := new(MockApplicationRepository)
	assignmentRepo := new(MockAssignmentRepository)
	cardRepo := new(MockCardRepository)
	memberRepo := new(MockMemberRepository)
	gate := new(MockWindowGate)
	service := NewApplicationService(appRepo, assignmentRepo, cardRepo, memberRepo, gate)
	return service, appRepo, assignmentRepo, cardRepo, memberRepo, gate
}

func TestApplicationService_Submit(t *testing.T) {
	ctx := context.Background()
	streetID := int64(1)
	member := &model.Member{ID: 5, FullName: "Neema Mushi", PhoneNumber: "+255700000001", StreetID: &streetID}

	t.Run("requires member id or phone", func(t *testing.T) {
		service, _, _, _, _, _ := newApplicationService()

		_, err := service.Submit(ctx, model.ApplicationCreateRequest{Year: 2030, Pledges: testPledges()})
		assert.ErrorIs(t, err, ErrMemberRequired)
	})

	t.Run("resolves member by phone", func(t *testing.T) {
		service, appRepo, assignmentRepo, _, memberRepo, gate := newApplicationService()

		memberRepo.On("GetByPhone", ctx, "+255700000001").Return(member, nil)
		appRepo.On("HasPending", ctx, &member.ID, "+255700000001").Return(false, nil)
		assignmentRepo.On("ActiveForMemberYear", ctx, member.ID, 2030).Return(nil, repository.ErrAssignmentNotFound)
		appRepo.On("Create", ctx, mock.MatchedBy(func(a *model.CardApplication) bool {
			return a.MemberID != nil && *a.MemberID == member.ID &&
				a.FullName == member.FullName &&
				a.StreetID != nil && *a.StreetID == streetID
		})).Return(&model.CardApplication{ID: 1, MemberID: &member.ID, FullName: member.FullName, Year: 2030, Status: model.ApplicationStatusNew}, nil)
		gate.On("IsOpen", ctx).Return(false, nil)

		app, err := service.Submit(ctx, model.ApplicationCreateRequest{
			PhoneNumber: "+255700000001",
			Year:        2030,
			Pledges:     testPledges(),
		})
		require.NoError(t, err)
		assert.Equal(t, model.ApplicationStatusNew, app.Status)

		memberRepo.AssertExpectations(t)
		appRepo.AssertExpectations(t)
	})

	t.Run("accepts an unlinked applicant by name and phone", func(t *testing.T) {
		service, appRepo, assignmentRepo, _, memberRepo, gate := newApplicationService()

		memberRepo.On("GetByPhone", ctx, "+255700000099").Return(nil, repository.ErrMemberNotFound)
		appRepo.On("HasPending", ctx, (*int64)(nil), "+255700000099").Return(false, nil)
		appRepo.On("Create", ctx, mock.MatchedBy(func(a *model.CardApplication) bool {
			return a.MemberID == nil && a.FullName == "Baraka Temba" && a.PhoneNumber == "+255700000099"
		})).Return(&model.CardApplication{ID: 2, FullName: "Baraka Temba", PhoneNumber: "+255700000099", Year: 2030, Status: model.ApplicationStatusNew}, nil)
		gate.On("IsOpen", ctx).Return(false, nil)

		app, err := service.Submit(ctx, model.ApplicationCreateRequest{
			FullName:    "Baraka Temba",
			PhoneNumber: "+255700000099",
			Year:        2030,
			Pledges:     testPledges(),
		})
		require.NoError(t, err)
		assert.Nil(t, app.MemberID)
		assignmentRepo.AssertNotCalled(t, "ActiveForMemberYear", mock.Anything, mock.Anything, mock.Anything)
		appRepo.AssertExpectations(t)
	})

	t.Run("unlinked applicant without a name rejected", func(t *testing.T) {
		service, _, _, _, memberRepo, _ := newApplicationService()

		memberRepo.On("GetByPhone", ctx, "+255700000099").Return(nil, repository.ErrMemberNotFound)

		_, err := service.Submit(ctx, model.ApplicationCreateRequest{
			PhoneNumber: "+255700000099",
			Year:        2030,
			Pledges:     testPledges(),
		})
		assert.ErrorIs(t, err, ErrFullNameRequired)
	})

	t.Run("pending application blocks a second one in any year", func(t *testing.T) {
		service, appRepo, _, _, memberRepo, _ := newApplicationService()

		memberRepo.On("GetByID", ctx, member.ID).Return(member, nil)
		appRepo.On("HasPending", ctx, &member.ID, member.PhoneNumber).Return(true, nil)

		// The pending application may be for a different year; it still
		// blocks.
		_, err := service.Submit(ctx, model.ApplicationCreateRequest{MemberID: member.ID, Year: 2031, Pledges: testPledges()})
		assert.ErrorIs(t, err, ErrDuplicatePending)
		appRepo.AssertExpectations(t)
	})

	t.Run("member already holding a card rejected", func(t *testing.T) {
		service, appRepo, assignmentRepo, _, memberRepo, _ := newApplicationService()

		memberRepo.On("GetByID", ctx, member.ID).Return(member, nil)
		appRepo.On("HasPending", ctx, &member.ID, member.PhoneNumber).Return(false, nil)
		assignmentRepo.On("ActiveForMemberYear", ctx, member.ID, 2030).
			Return(&model.CardAssignment{ID: 9, CardID: 3, MemberID: &member.ID, Year: 2030}, nil)

		_, err := service.Submit(ctx, model.ApplicationCreateRequest{MemberID: member.ID, Year: 2030, Pledges: testPledges()})
		assert.ErrorIs(t, err, ErrAlreadyAssigned)
	})

	t.Run("negative pledges rejected", func(t *testing.T) {
		service, _, _, _, memberRepo, _ := newApplicationService()

		memberRepo.On("GetByID", ctx, member.ID).Return(member, nil)

		bad := testPledges()
		bad.Ahadi = decimal.RequireFromString("-1")

		_, err := service.Submit(ctx, model.ApplicationCreateRequest{MemberID: member.ID, Year: 2030, Pledges: bad})
		assert.ErrorIs(t, err, ErrInvalidPledges)
	})

	t.Run("open window assigns immediately and zeroes pledges", func(t *testing.T) {
		service, appRepo, assignmentRepo, cardRepo, memberRepo, gate := newApplicationService()

		created := &model.CardApplication{ID: 1, MemberID: &member.ID, FullName: member.FullName, PhoneNumber: member.PhoneNumber, StreetID: &streetID, Year: 2030, Status: model.ApplicationStatusNew, Pledges: testPledges()}
		card := &model.OfferingCard{ID: 30, StreetID: streetID, Number: 7, Code: "PE-007"}
		assignmentID := int64(40)
		approved := &model.CardApplication{ID: 1, MemberID: &member.ID, Year: 2030, Status: model.ApplicationStatusApproved, AssignmentID: &assignmentID}

		memberRepo.On("GetByID", ctx, member.ID).Return(member, nil)
		appRepo.On("HasPending", ctx, &member.ID, member.PhoneNumber).Return(false, nil)
		assignmentRepo.On("ActiveForMemberYear", ctx, member.ID, 2030).Return(nil, repository.ErrAssignmentNotFound)
		appRepo.On("Create", ctx, mock.Anything).Return(created, nil)
		gate.On("IsOpen", ctx).Return(true, nil)
		appRepo.On("WithinTransaction", ctx, mock.AnythingOfType("func(context.Context) error")).Return(nil)
		cardRepo.On("FirstFreeForYear", ctx, &streetID, 2030).Return(card, nil)
		assignmentRepo.On("Create", ctx, mock.MatchedBy(func(a *model.CardAssignment) bool {
			return a.CardID == card.ID &&
				a.MemberID != nil && *a.MemberID == member.ID &&
				a.FullName == member.FullName &&
				a.Year == 2030
		})).Return(&model.CardAssignment{ID: assignmentID, CardID: card.ID, MemberID: &member.ID, Year: 2030}, nil)
		appRepo.On("Update", ctx, created.ID, mock.MatchedBy(approvalFields)).Return(approved, nil)

		app, err := service.Submit(ctx, model.ApplicationCreateRequest{MemberID: member.ID, Year: 2030, Pledges: testPledges()})
		require.NoError(t, err)
		assert.Equal(t, model.ApplicationStatusApproved, app.Status)
		require.NotNil(t, app.AssignmentID)
		assert.Equal(t, assignmentID, *app.AssignmentID)

		appRepo.AssertExpectations(t)
	})

	t.Run("no free card on the street leaves application NEW", func(t *testing.T) {
		service, appRepo, assignmentRepo, cardRepo, memberRepo, gate := newApplicationService()

		created := &model.CardApplication{ID: 1, MemberID: &member.ID, StreetID: &streetID, Year: 2030, Status: model.ApplicationStatusNew, Pledges: testPledges()}

		memberRepo.On("GetByID", ctx, member.ID).Return(member, nil)
		appRepo.On("HasPending", ctx, &member.ID, member.PhoneNumber).Return(false, nil)
		assignmentRepo.On("ActiveForMemberYear", ctx, member.ID, 2030).Return(nil, repository.ErrAssignmentNotFound)
		appRepo.On("Create", ctx, mock.Anything).Return(created, nil)
		gate.On("IsOpen", ctx).Return(true, nil)
		appRepo.On("WithinTransaction", ctx, mock.AnythingOfType("func(context.Context) error")).Return(nil)
		cardRepo.On("FirstFreeForYear", ctx, &streetID, 2030).Return(nil, repository.ErrNoFreeCard)

		app, err := service.Submit(ctx, model.ApplicationCreateRequest{MemberID: member.ID, Year: 2030, Pledges: testPledges()})
		require.NoError(t, err)
		assert.Equal(t, model.ApplicationStatusNew, app.Status)
		assert.Nil(t, app.AssignmentID)
	})

	t.Run("retries once on a concurrent grab", func(t *testing.T) {
		service, appRepo, assignmentRepo, cardRepo, memberRepo, gate := newApplicationService()

		preferred := 7
		created := &model.CardApplication{ID: 1, MemberID: &member.ID, StreetID: &streetID, Year: 2030, PreferredNumber: &preferred, Status: model.ApplicationStatusNew, Pledges: testPledges()}
		contested := &model.OfferingCard{ID: 30, StreetID: streetID, Number: 7, Code: "PE-007"}
		fallback := &model.OfferingCard{ID: 31, StreetID: streetID, Number: 8, Code: "PE-008"}
		assignmentID := int64(40)

		memberRepo.On("GetByID", ctx, member.ID).Return(member, nil)
		appRepo.On("HasPending", ctx, &member.ID, member.PhoneNumber).Return(false, nil)
		assignmentRepo.On("ActiveForMemberYear", ctx, member.ID, 2030).Return(nil, repository.ErrAssignmentNotFound)
		appRepo.On("Create", ctx, mock.Anything).Return(created, nil)
		gate.On("IsOpen", ctx).Return(true, nil)
		appRepo.On("WithinTransaction", ctx, mock.AnythingOfType("func(context.Context) error")).Return(nil)

		// First attempt: preferred card found but another submission
		// grabbed it between the lock and the insert.
		cardRepo.On("GetFreeForYear", ctx, &streetID, 7, 2030).Return(contested, nil).Once()
		assignmentRepo.On("Create", ctx, mock.MatchedBy(func(a *model.CardAssignment) bool {
			return a.CardID == contested.ID
		})).Return(nil, repository.ErrDuplicateAssignment).Once()

		// Retry skips the preferred number.
		cardRepo.On("FirstFreeForYear", ctx, &streetID, 2030).Return(fallback, nil).Once()
		assignmentRepo.On("Create", ctx, mock.MatchedBy(func(a *model.CardAssignment) bool {
			return a.CardID == fallback.ID
		})).Return(&model.CardAssignment{ID: assignmentID, CardID: fallback.ID}, nil).Once()
		appRepo.On("Update", ctx, created.ID, mock.MatchedBy(approvalFields)).
			Return(&model.CardApplication{ID: 1, Status: model.ApplicationStatusApproved, AssignmentID: &assignmentID}, nil)

		app, err := service.Submit(ctx, model.ApplicationCreateRequest{MemberID: member.ID, Year: 2030, PreferredNumber: &preferred, Pledges: testPledges()})
		require.NoError(t, err)
		assert.Equal(t, model.ApplicationStatusApproved, app.Status)

		cardRepo.AssertExpectations(t)
		assignmentRepo.AssertExpectations(t)
	})
}

func TestApplicationService_Approve(t *testing.T) {
	ctx := context.Background()
	streetID := int64(1)
	memberID := int64(5)

	newApp := func() *model.CardApplication {
		return &model.CardApplication{
			ID:          1,
			MemberID:    &memberID,
			FullName:    "Neema Mushi",
			PhoneNumber: "+255700000001",
			StreetID:    &streetID,
			Year:        2030,
			Status:      model.ApplicationStatusNew,
			Pledges:     testPledges(),
		}
	}

	t.Run("already approved rejected", func(t *testing.T) {
		service, appRepo, _, _, _, _ := newApplicationService()

		assignmentID := int64(3)
		appRepo.On("GetByID", ctx, int64(1)).Return(&model.CardApplication{
			ID: 1, Status: model.ApplicationStatusApproved, AssignmentID: &assignmentID,
		}, nil)

		_, err := service.Approve(ctx, 1, model.ApplicationApproveRequest{CardID: 30})
		assert.ErrorIs(t, err, ErrAlreadyApproved)
	})

	t.Run("assigns the chosen card and zeroes pledges", func(t *testing.T) {
		service, appRepo, assignmentRepo, cardRepo, _, _ := newApplicationService()

		app := newApp()
		card := &model.OfferingCard{ID: 30, StreetID: streetID, Number: 7, Code: "PE-007"}
		assignmentID := int64(40)
		approved := &model.CardApplication{ID: 1, Status: model.ApplicationStatusApproved, AssignmentID: &assignmentID}

		appRepo.On("GetByID", ctx, int64(1)).Return(app, nil)
		cardRepo.On("GetByID", ctx, card.ID).Return(card, nil)
		appRepo.On("WithinTransaction", ctx, mock.AnythingOfType("func(context.Context) error")).Return(nil)
		assignmentRepo.On("Create", ctx, mock.MatchedBy(func(a *model.CardAssignment) bool {
			return a.CardID == card.ID &&
				a.MemberID != nil && *a.MemberID == memberID &&
				a.FullName == app.FullName &&
				a.Year == 2030 &&
				a.Pledges.Ahadi.Equal(app.Pledges.Ahadi)
		})).Return(&model.CardAssignment{ID: assignmentID, CardID: card.ID}, nil)
		appRepo.On("Update", ctx, app.ID, mock.MatchedBy(approvalFields)).Return(approved, nil)

		got, err := service.Approve(ctx, 1, model.ApplicationApproveRequest{CardID: card.ID, Year: 2030})
		require.NoError(t, err)
		assert.Equal(t, model.ApplicationStatusApproved, got.Status)

		cardRepo.AssertExpectations(t)
		appRepo.AssertExpectations(t)
	})

	t.Run("unknown card not found", func(t *testing.T) {
		service, appRepo, _, cardRepo, _, _ := newApplicationService()

		appRepo.On("GetByID", ctx, int64(1)).Return(newApp(), nil)
		cardRepo.On("GetByID", ctx, int64(999)).Return(nil, repository.ErrCardNotFound)

		_, err := service.Approve(ctx, 1, model.ApplicationApproveRequest{CardID: 999, Year: 2030})
		assert.ErrorIs(t, err, repository.ErrCardNotFound)
	})

	t.Run("card already assigned for the year", func(t *testing.T) {
		service, appRepo, assignmentRepo, cardRepo, _, _ := newApplicationService()

		card := &model.OfferingCard{ID: 30, StreetID: streetID, Number: 7, Code: "PE-007"}

		appRepo.On("GetByID", ctx, int64(1)).Return(newApp(), nil)
		cardRepo.On("GetByID", ctx, card.ID).Return(card, nil)
		appRepo.On("WithinTransaction", ctx, mock.AnythingOfType("func(context.Context) error")).Return(nil)
		assignmentRepo.On("Create", ctx, mock.Anything).Return(nil, repository.ErrDuplicateAssignment)

		_, err := service.Approve(ctx, 1, model.ApplicationApproveRequest{CardID: card.ID, Year: 2030})
		assert.ErrorIs(t, err, repository.ErrDuplicateAssignment)

		// The admin chose this exact card; no silent substitute.
		cardRepo.AssertNotCalled(t, "FirstFreeForYear", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("pledge overrides replace applied amounts", func(t *testing.T) {
		service, appRepo, assignmentRepo, cardRepo, _, _ := newApplicationService()

		app := newApp()
		card := &model.OfferingCard{ID: 31, StreetID: streetID, Number: 9, Code: "PE-009"}
		overrides := model.PledgeSet{Ahadi: decimal.RequireFromString("500000")}
		assignmentID := int64(40)

		appRepo.On("GetByID", ctx, int64(1)).Return(app, nil)
		cardRepo.On("GetByID", ctx, card.ID).Return(card, nil)
		appRepo.On("WithinTransaction", ctx, mock.AnythingOfType("func(context.Context) error")).Return(nil)
		assignmentRepo.On("Create", ctx, mock.MatchedBy(func(a *model.CardAssignment) bool {
			return a.Pledges.Ahadi.Equal(overrides.Ahadi)
		})).Return(&model.CardAssignment{ID: assignmentID}, nil)
		appRepo.On("Update", ctx, app.ID, mock.MatchedBy(approvalFields)).
			Return(&model.CardApplication{ID: 1, Status: model.ApplicationStatusApproved, AssignmentID: &assignmentID}, nil)

		_, err := service.Approve(ctx, 1, model.ApplicationApproveRequest{CardID: card.ID, Year: 2030, Pledges: &overrides})
		require.NoError(t, err)

		assignmentRepo.AssertExpectations(t)
	})

	t.Run("year defaults to the application's", func(t *testing.T) {
		service, appRepo, assignmentRepo, cardRepo, _, _ := newApplicationService()

		app := newApp()
		card := &model.OfferingCard{ID: 30, StreetID: streetID, Number: 7, Code: "PE-007"}
		assignmentID := int64(40)

		appRepo.On("GetByID", ctx, int64(1)).Return(app, nil)
		cardRepo.On("GetByID", ctx, card.ID).Return(card, nil)
		appRepo.On("WithinTransaction", ctx, mock.AnythingOfType("func(context.Context) error")).Return(nil)
		assignmentRepo.On("Create", ctx, mock.MatchedBy(func(a *model.CardAssignment) bool {
			return a.Year == app.Year
		})).Return(&model.CardAssignment{ID: assignmentID}, nil)
		appRepo.On("Update", ctx, app.ID, mock.MatchedBy(approvalFields)).
			Return(&model.CardApplication{ID: 1, Status: model.ApplicationStatusApproved, AssignmentID: &assignmentID}, nil)

		_, err := service.Approve(ctx, 1, model.ApplicationApproveRequest{CardID: card.ID})
		require.NoError(t, err)

		assignmentRepo.AssertExpectations(t)
	})
}

func TestApplicationService_Reject(t *testing.T) {
	ctx := context.Background()

	t.Run("rejects a new application with a reason", func(t *testing.T) {
		service, appRepo, _, _, _, _ := newApplicationService()

		appRepo.On("GetByID", ctx, int64(1)).Return(&model.CardApplication{ID: 1, Status: model.ApplicationStatusNew}, nil)
		appRepo.On("Update", ctx, int64(1), map[string]interface{}{
			"status": model.ApplicationStatusRejected,
			"note":   "rejected: no free cards this year",
		}).Return(&model.CardApplication{ID: 1, Status: model.ApplicationStatusRejected}, nil)

		got, err := service.Reject(ctx, 1, "no free cards this year")
		require.NoError(t, err)
		assert.Equal(t, model.ApplicationStatusRejected, got.Status)

		appRepo.AssertExpectations(t)
	})

	t.Run("rejecting twice is a no-op", func(t *testing.T) {
		service, appRepo, _, _, _, _ := newApplicationService()

		appRepo.On("GetByID", ctx, int64(1)).Return(&model.CardApplication{ID: 1, Status: model.ApplicationStatusRejected}, nil)

		got, err := service.Reject(ctx, 1, "again")
		require.NoError(t, err)
		assert.Equal(t, model.ApplicationStatusRejected, got.Status)
		appRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("approved application cannot be rejected", func(t *testing.T) {
		service, appRepo, _, _, _, _ := newApplicationService()

		appRepo.On("GetByID", ctx, int64(1)).Return(&model.CardApplication{ID: 1, Status: model.ApplicationStatusApproved}, nil)

		_, err := service.Reject(ctx, 1, "late")
		assert.ErrorIs(t, err, ErrAlreadyApproved)
	})
}
