package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/makonda/offering-cards/internal/model"
	"github.com/makonda/offering-cards/internal/repository"
)

var (
	ErrInvalidWindowRange = errors.New("window end must be after start")
	ErrInvalidTimestamp   = errors.New("invalid timestamp, expected RFC3339")
	ErrInvalidDate        = errors.New("invalid date, expected YYYY-MM-DD")
)

type WindowRepository interface {
	Create(ctx context.Context, w *model.RegistrationWindow) (*model.RegistrationWindow, error)
	CloseAllOpen(ctx context.Context) (int64, error)
	LatestOpen(ctx context.Context) (*model.RegistrationWindow, error)
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// WindowService gates card registration. Window rows are append-only
// history; the newest open row is cached so the hot Status check stays
// off the database.
type WindowService struct {
	windowRepo WindowRepository

	mu      sync.Mutex
	current *model.RegistrationWindow
	loaded  bool

	now func() time.Time
}

func NewWindowService(windowRepo WindowRepository) *WindowService {
	return &WindowService{
		windowRepo: windowRepo,
		now:        time.Now,
	}
}

// Open starts a new registration window, closing any previous open one
// in the same transaction. Bounds are RFC3339 timestamps, so a window
// can be as narrow as an hour.
func (s *WindowService) Open(ctx context.Context, p model.WindowOpenRequest) (*model.RegistrationWindow, error) {
	start, err := time.Parse(time.RFC3339, p.StartDate)
	if err != nil {
		return nil, ErrInvalidTimestamp
	}
	end, err := time.Parse(time.RFC3339, p.EndDate)
	if err != nil {
		return nil, ErrInvalidTimestamp
	}
	if !end.After(start) {
		return nil, ErrInvalidWindowRange
	}

	var created *model.RegistrationWindow
	err = s.windowRepo.WithinTransaction(ctx, func(ctx context.Context) error {
		if _, err := s.windowRepo.CloseAllOpen(ctx); err != nil {
			return err
		}
		w := &model.RegistrationWindow{
			StartDate: start,
			EndDate:   end,
			IsOpen:    true,
			OpenedBy:  p.OpenedBy,
		}
		created, err = s.windowRepo.Create(ctx, w)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.current = created
	s.loaded = true
	s.mu.Unlock()

	return created, nil
}

// Close shuts any open window. Closing when none is open is a no-op.
func (s *WindowService) Close(ctx context.Context) error {
	if _, err := s.windowRepo.CloseAllOpen(ctx); err != nil {
		return err
	}

	s.mu.Lock()
	s.current = nil
	s.loaded = true
	s.mu.Unlock()

	return nil
}

// Status reports whether registration is currently open. A window only
// counts while now falls inside [start, end), even if the row is still
// flagged open.
func (s *WindowService) Status(ctx context.Context) (*model.WindowStatus, error) {
	w, err := s.currentWindow(ctx)
	if err != nil {
		return nil, err
	}
	if w == nil {
		return &model.WindowStatus{Open: false}, nil
	}

	now := s.now()
	open := !now.Before(w.StartDate) && now.Before(w.EndDate)

	return &model.WindowStatus{
		Open:      open,
		StartDate: &w.StartDate,
		EndDate:   &w.EndDate,
	}, nil
}

// IsOpen is the gate the application workflow consults.
func (s *WindowService) IsOpen(ctx context.Context) (bool, error) {
	status, err := s.Status(ctx)
	if err != nil {
		return false, err
	}
	return status.Open, nil
}

func (s *WindowService) currentWindow(ctx context.Context) (*model.RegistrationWindow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.loaded {
		return s.current, nil
	}

	w, err := s.windowRepo.LatestOpen(ctx)
	if err != nil {
		if errors.Is(err, repository.ErrWindowNotFound) {
			s.current = nil
			s.loaded = true
			return nil, nil
		}
		return nil, err
	}

	s.current = w
	s.loaded = true
	return w, nil
}
