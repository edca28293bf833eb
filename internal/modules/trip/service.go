// README: Trip service enforces ownership and validates commands.
package trip

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"

	"wayfare/internal/types"
)

var (
	ErrNotFound   = errors.New("trip not found")
	ErrForbidden  = errors.New("trip belongs to another user")
	ErrBadRequest = errors.New("bad request")
)

type Service struct {
	store *Store
}

func NewService(store *Store) *Service {
	return &Service{store: store}
}

type SaveCommand struct {
	UserID       types.ID
	Title        string
	Destination  string
	StartDate    string
	DurationDays int
	Travelers    int
	Plan         map[string]any
}

type UpdateCommand struct {
	UserID       types.ID
	TripID       types.ID
	Title        *string
	StartDate    *string
	DurationDays *int
	Travelers    *int
	Plan         map[string]any
}

func (s *Service) Save(ctx context.Context, cmd SaveCommand) (*Trip, error) {
	if cmd.UserID == "" || cmd.Destination == "" || cmd.DurationDays <= 0 {
		return nil, ErrBadRequest
	}
	plan, err := json.Marshal(cmd.Plan)
	if err != nil {
		return nil, ErrBadRequest
	}
	title := cmd.Title
	if title == "" {
		title = "Trip to " + cmd.Destination
	}
	travelers := cmd.Travelers
	if travelers <= 0 {
		travelers = 1
	}
	now := time.Now().UTC()
	t := &Trip{
		ID:           types.ID(uuid.NewString()),
		UserID:       cmd.UserID,
		Title:        title,
		Destination:  cmd.Destination,
		StartDate:    cmd.StartDate,
		DurationDays: cmd.DurationDays,
		Travelers:    travelers,
		Plan:         plan,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.store.Create(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *Service) Get(ctx context.Context, userID, tripID types.ID) (*Trip, error) {
	t, err := s.store.Get(ctx, tripID)
	if err != nil {
		return nil, err
	}
	if t.UserID != userID {
		return nil, ErrForbidden
	}
	return t, nil
}

func (s *Service) List(ctx context.Context, userID types.ID) ([]*Trip, error) {
	if userID == "" {
		return nil, ErrBadRequest
	}
	return s.store.ListByUser(ctx, userID)
}

func (s *Service) Update(ctx context.Context, cmd UpdateCommand) (*Trip, error) {
	t, err := s.Get(ctx, cmd.UserID, cmd.TripID)
	if err != nil {
		return nil, err
	}
	if cmd.Title != nil {
		t.Title = *cmd.Title
	}
	if cmd.StartDate != nil {
		t.StartDate = *cmd.StartDate
	}
	if cmd.DurationDays != nil {
		if *cmd.DurationDays <= 0 {
			return nil, ErrBadRequest
		}
		t.DurationDays = *cmd.DurationDays
	}
	if cmd.Travelers != nil {
		if *cmd.Travelers <= 0 {
			return nil, ErrBadRequest
		}
		t.Travelers = *cmd.Travelers
	}
	if cmd.Plan != nil {
		plan, err := json.Marshal(cmd.Plan)
		if err != nil {
			return nil, ErrBadRequest
		}
		t.Plan = plan
	}
	t.UpdatedAt = time.Now().UTC()
	if err := s.store.Update(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *Service) Delete(ctx context.Context, userID, tripID types.ID) error {
	if _, err := s.Get(ctx, userID, tripID); err != nil {
		return err
	}
	return s.store.Delete(ctx, tripID)
}
