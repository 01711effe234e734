package services

import (
	"context"

	"github.com/makonda/offering-cards/internal/model"
	"github.com/stretchr/testify/mock"
)

type MockCardRepository struct {
	mock.Mock
}

func (m *MockCardRepository) Create(ctx context.Context, card *model.OfferingCard) (*model.OfferingCard, error) {
	args := m.Called(ctx, card)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.OfferingCard), args.Error(1)
}

func (m *MockCardRepository) GetByID(ctx context.Context, id int64) (*model.OfferingCard, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.OfferingCard), args.Error(1)
}

func (m *MockCardRepository) GetByStreetAndNumber(ctx context.Context, streetID int64, number int) (*model.OfferingCard, error) {
	args := m.Called(ctx, streetID, number)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.OfferingCard), args.Error(1)
}

func (m *MockCardRepository) List(ctx context.Context, f model.CardFilter) ([]*model.OfferingCard, int64, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]*model.OfferingCard), args.Get(1).(int64), args.Error(2)
}

func (m *MockCardRepository) ListFree(ctx context.Context, streetID *int64) ([]model.AvailableNumber, error) {
	args := m.Called(ctx, streetID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.AvailableNumber), args.Error(1)
}

func (m *MockCardRepository) FindAvailableNear(ctx context.Context, streetID int64, near, radius, limit int) ([]int, error) {
	args := m.Called(ctx, streetID, near, radius, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]int), args.Error(1)
}

func (m *MockCardRepository) GetFreeForYear(ctx context.Context, streetID *int64, number, year int) (*model.OfferingCard, error) {
	args := m.Called(ctx, streetID, number, year)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.OfferingCard), args.Error(1)
}

func (m *MockCardRepository) FirstFreeForYear(ctx context.Context, streetID *int64, year int) (*model.OfferingCard, error) {
	args := m.Called(ctx, streetID, year)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.OfferingCard), args.Error(1)
}

func (m *MockCardRepository) SetOccupancy(ctx context.Context, cardID int64, memberID *int64, taken bool) error {
	args := m.Called(ctx, cardID, memberID, taken)
	return args.Error(0)
}

func (m *MockCardRepository) Counts(ctx context.Context, streetID *int64) (int64, int64, error) {
	args := m.Called(ctx, streetID)
	return args.Get(0).(int64), args.Get(1).(int64), args.Error(2)
}

type MockStreetRepository struct {
	mock.Mock
}

func (m *MockStreetRepository) GetByID(ctx context.Context, id int64) (*model.Street, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Street), args.Error(1)
}

type MockMemberRepository struct {
	mock.Mock
}

func (m *MockMemberRepository) GetByID(ctx context.Context, id int64) (*model.Member, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Member), args.Error(1)
}

func (m *MockMemberRepository) GetByPhone(ctx context.Context, phone string) (*model.Member, error) {
	args := m.Called(ctx, phone)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Member), args.Error(1)
}

type MockAssignmentRepository struct {
	mock.Mock
}

func (m *MockAssignmentRepository) Create(ctx context.Context, a *model.CardAssignment) (*model.CardAssignment, error) {
	args := m.Called(ctx, a)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CardAssignment), args.Error(1)
}

func (m *MockAssignmentRepository) GetByID(ctx context.Context, id int64) (*model.CardAssignment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CardAssignment), args.Error(1)
}

func (m *MockAssignmentRepository) GetByCardAndYear(ctx context.Context, cardID int64, year int) (*model.CardAssignment, error) {
	args := m.Called(ctx, cardID, year)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CardAssignment), args.Error(1)
}

func (m *MockAssignmentRepository) Update(ctx context.Context, id int64, fields map[string]interface{}) (*model.CardAssignment, error) {
	args := m.Called(ctx, id, fields)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CardAssignment), args.Error(1)
}

func (m *MockAssignmentRepository) ResolvePayer(ctx context.Context, cardID int64, year int) (*model.CardAssignment, error) {
	args := m.Called(ctx, cardID, year)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CardAssignment), args.Error(1)
}

func (m *MockAssignmentRepository) ActiveForMemberYear(ctx context.Context, memberID int64, year int) (*model.CardAssignment, error) {
	args := m.Called(ctx, memberID, year)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CardAssignment), args.Error(1)
}

func (m *MockAssignmentRepository) ListForYear(ctx context.Context, cardIDs []int64, year int) ([]*model.CardAssignment, error) {
	args := m.Called(ctx, cardIDs, year)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.CardAssignment), args.Error(1)
}

func (m *MockAssignmentRepository) SumPledges(ctx context.Context, year int, streetID *int64) (model.PledgeSet, error) {
	args := m.Called(ctx, year, streetID)
	return args.Get(0).(model.PledgeSet), args.Error(1)
}

func (m *MockAssignmentRepository) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	args := m.Called(ctx, fn)
	if args.Error(0) != nil {
		return args.Error(0)
	}
	return fn(ctx)
}

type MockApplicationRepository struct {
	mock.Mock
}

func (m *MockApplicationRepository) Create(ctx context.Context, app *model.CardApplication) (*model.CardApplication, error) {
	args := m.Called(ctx, app)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CardApplication), args.Error(1)
}

func (m *MockApplicationRepository) GetByID(ctx context.Context, id int64) (*model.CardApplication, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CardApplication), args.Error(1)
}

func (m *MockApplicationRepository) List(ctx context.Context, f model.ApplicationFilter) ([]*model.CardApplication, int64, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]*model.CardApplication), args.Get(1).(int64), args.Error(2)
}

func (m *MockApplicationRepository) Update(ctx context.Context, id int64, fields map[string]interface{}) (*model.CardApplication, error) {
	args := m.Called(ctx, id, fields)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CardApplication), args.Error(1)
}

func (m *MockApplicationRepository) HasPending(ctx context.Context, memberID *int64, phone string) (bool, error) {
	args := m.Called(ctx, memberID, phone)
	return args.Bool(0), args.Error(1)
}

func (m *MockApplicationRepository) LatestForMemberYear(ctx context.Context, memberID int64, year int) (*model.CardApplication, error) {
	args := m.Called(ctx, memberID, year)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CardApplication), args.Error(1)
}

func (m *MockApplicationRepository) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	args := m.Called(ctx, fn)
	if args.Error(0) != nil {
		return args.Error(0)
	}
	return fn(ctx)
}

type MockWindowRepository struct {
	mock.Mock
}

func (m *MockWindowRepository) Create(ctx context.Context, w *model.RegistrationWindow) (*model.RegistrationWindow, error) {
	args := m.Called(ctx, w)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.RegistrationWindow), args.Error(1)
}

func (m *MockWindowRepository) CloseAllOpen(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockWindowRepository) LatestOpen(ctx context.Context) (*model.RegistrationWindow, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.RegistrationWindow), args.Error(1)
}

func (m *MockWindowRepository) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	args := m.Called(ctx, fn)
	if args.Error(0) != nil {
		return args.Error(0)
	}
	return fn(ctx)
}

type MockWindowGate struct {
	mock.Mock
}

func (m *MockWindowGate) IsOpen(ctx context.Context) (bool, error) {
	args := m.Called(ctx)
	return args.Bool(0), args.Error(1)
}

type MockOfferingRepository struct {
	mock.Mock
}

func (m *MockOfferingRepository) CreateEntry(ctx context.Context, e *model.OfferingEntry) (*model.OfferingEntry, error) {
	args := m.Called(ctx, e)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.OfferingEntry), args.Error(1)
}

func (m *MockOfferingRepository) CreateBatch(ctx context.Context, b *model.OfferingBatch) (*model.OfferingBatch, error) {
	args := m.Called(ctx, b)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.OfferingBatch), args.Error(1)
}

func (m *MockOfferingRepository) EntriesForMember(ctx context.Context, memberID int64, year int) ([]model.OfferingHistoryItem, error) {
	args := m.Called(ctx, memberID, year)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.OfferingHistoryItem), args.Error(1)
}

func (m *MockOfferingRepository) SumsByCard(ctx context.Context, cardID int64, year int) (model.PledgeSet, error) {
	args := m.Called(ctx, cardID, year)
	return args.Get(0).(model.PledgeSet), args.Error(1)
}

func (m *MockOfferingRepository) SumsByCards(ctx context.Context, cardIDs []int64, year int) (map[int64]model.PledgeSet, error) {
	args := m.Called(ctx, cardIDs, year)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[int64]model.PledgeSet), args.Error(1)
}

func (m *MockOfferingRepository) CollectedTotals(ctx context.Context, year int, streetID *int64) (model.PledgeSet, error) {
	args := m.Called(ctx, year, streetID)
	return args.Get(0).(model.PledgeSet), args.Error(1)
}

func (m *MockOfferingRepository) ActiveCardCount(ctx context.Context, year int, streetID *int64) (int64, error) {
	args := m.Called(ctx, year, streetID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockOfferingRepository) LeastActiveCard(ctx context.Context, streetID *int64) (string, error) {
	args := m.Called(ctx, streetID)
	return args.String(0), args.Error(1)
}

func (m *MockOfferingRepository) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	args := m.Called(ctx, fn)
	if args.Error(0) != nil {
		return args.Error(0)
	}
	return fn(ctx)
}

type MockActivityRepository struct {
	mock.Mock
}

func (m *MockActivityRepository) Create(ctx context.Context, actor, action, detail string) error {
	args := m.Called(ctx, actor, action, detail)
	return args.Error(0)
}
