package services

import (
	"context"
	"testing"
	"time"

	"github.com/makonda/offering-cards/internal/model"
	"github.com/makonda/offering-cards/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestWindowService_Open(t *testing.T) {
	ctx := context.Background()

	t.Run("opens and closes the previous window", func(t *testing.T) {
		windowRepo := new(MockWindowRepository)
		service := NewWindowService(windowRepo)

		windowRepo.On("WithinTransaction", ctx, mock.AnythingOfType("func(context.Context) error")).Return(nil)
		windowRepo.On("CloseAllOpen", ctx).Return(int64(1), nil)
		windowRepo.On("Create", ctx, mock.MatchedBy(func(w *model.RegistrationWindow) bool {
			return w.IsOpen && w.OpenedBy == "secretary"
		})).Return(&model.RegistrationWindow{
			ID:        2,
			StartDate: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
			EndDate:   time.Date(2026, 1, 31, 18, 0, 0, 0, time.UTC),
			IsOpen:    true,
		}, nil)

		created, err := service.Open(ctx, model.WindowOpenRequest{
			StartDate: "2026-01-01T00:00:00Z",
			EndDate:   "2026-01-31T18:00:00Z",
			OpenedBy:  "secretary",
		})
		require.NoError(t, err)
		assert.Equal(t, int64(2), created.ID)

		windowRepo.AssertExpectations(t)
	})

	t.Run("accepts a one-hour window", func(t *testing.T) {
		windowRepo := new(MockWindowRepository)
		service := NewWindowService(windowRepo)

		start := time.Now().UTC().Truncate(time.Second)
		end := start.Add(time.Hour)

		windowRepo.On("WithinTransaction", ctx, mock.AnythingOfType("func(context.Context) error")).Return(nil)
		windowRepo.On("CloseAllOpen", ctx).Return(int64(0), nil)
		windowRepo.On("Create", ctx, mock.MatchedBy(func(w *model.RegistrationWindow) bool {
			return w.StartDate.Equal(start) && w.EndDate.Equal(end)
		})).Return(&model.RegistrationWindow{ID: 3, StartDate: start, EndDate: end, IsOpen: true}, nil)

		created, err := service.Open(ctx, model.WindowOpenRequest{
			StartDate: start.Format(time.RFC3339),
			EndDate:   end.Format(time.RFC3339),
			OpenedBy:  "secretary",
		})
		require.NoError(t, err)
		assert.Equal(t, int64(3), created.ID)

		windowRepo.AssertExpectations(t)
	})

	t.Run("rejects malformed timestamps", func(t *testing.T) {
		service := NewWindowService(new(MockWindowRepository))

		_, err := service.Open(ctx, model.WindowOpenRequest{StartDate: "2026-01-01", EndDate: "2026-01-31T00:00:00Z"})
		assert.ErrorIs(t, err, ErrInvalidTimestamp)
	})

	t.Run("rejects end before start", func(t *testing.T) {
		service := NewWindowService(new(MockWindowRepository))

		_, err := service.Open(ctx, model.WindowOpenRequest{StartDate: "2026-01-31T00:00:00Z", EndDate: "2026-01-01T00:00:00Z"})
		assert.ErrorIs(t, err, ErrInvalidWindowRange)
	})
}

func TestWindowService_Status(t *testing.T) {
	ctx := context.Background()

	window := &model.RegistrationWindow{
		ID:        1,
		StartDate: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2026, 1, 31, 18, 0, 0, 0, time.UTC),
		IsOpen:    true,
	}

	newService := func(now time.Time) (*WindowService, *MockWindowRepository) {
		windowRepo := new(MockWindowRepository)
		service := NewWindowService(windowRepo)
		service.now = func() time.Time { return now }
		return service, windowRepo
	}

	t.Run("open inside the range", func(t *testing.T) {
		service, windowRepo := newService(time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC))
		windowRepo.On("LatestOpen", ctx).Return(window, nil).Once()

		status, err := service.Status(ctx)
		require.NoError(t, err)
		assert.True(t, status.Open)
	})

	t.Run("open until the end instant", func(t *testing.T) {
		service, windowRepo := newService(time.Date(2026, 1, 31, 17, 59, 59, 0, time.UTC))
		windowRepo.On("LatestOpen", ctx).Return(window, nil).Once()

		status, err := service.Status(ctx)
		require.NoError(t, err)
		assert.True(t, status.Open)
	})

	t.Run("closed from the end instant on", func(t *testing.T) {
		service, windowRepo := newService(time.Date(2026, 1, 31, 18, 0, 0, 0, time.UTC))
		windowRepo.On("LatestOpen", ctx).Return(window, nil).Once()

		status, err := service.Status(ctx)
		require.NoError(t, err)
		assert.False(t, status.Open)
	})

	t.Run("closed before the start", func(t *testing.T) {
		service, windowRepo := newService(time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC))
		windowRepo.On("LatestOpen", ctx).Return(window, nil).Once()

		status, err := service.Status(ctx)
		require.NoError(t, err)
		assert.False(t, status.Open)
	})

	t.Run("no window at all", func(t *testing.T) {
		service, windowRepo := newService(time.Now())
		windowRepo.On("LatestOpen", ctx).Return(nil, repository.ErrWindowNotFound).Once()

		status, err := service.Status(ctx)
		require.NoError(t, err)
		assert.False(t, status.Open)
		assert.Nil(t, status.StartDate)
	})

	t.Run("window row is cached", func(t *testing.T) {
		service, windowRepo := newService(time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC))
		windowRepo.On("LatestOpen", ctx).Return(window, nil).Once()

		_, err := service.Status(ctx)
		require.NoError(t, err)
		_, err = service.Status(ctx)
		require.NoError(t, err)

		windowRepo.AssertNumberOfCalls(t, "LatestOpen", 1)
	})
}

func TestWindowService_Close(t *testing.T) {
	ctx := context.Background()

	windowRepo := new(MockWindowRepository)
	service := NewWindowService(windowRepo)

	windowRepo.On("CloseAllOpen", ctx).Return(int64(0), nil)

	// Closing with nothing open is a no-op, not an error.
	require.NoError(t, service.Close(ctx))

	open, err := service.IsOpen(ctx)
	require.NoError(t, err)
	assert.False(t, open)
}
