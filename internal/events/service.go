package events

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/davidquint/raffle-backend/pkg/db/models"
	"github.com/davidquint/raffle-backend/pkg/enums"
	pkgerrors "github.com/davidquint/raffle-backend/pkg/errors"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Service exposes event resolution for the storefront and CRUD for the console.
type Service interface {
	Current(ctx context.Context) (*models.RaffleEvent, error)
	Get(ctx context.Context, id uuid.UUID) (*models.RaffleEvent, error)
	GetSettings(ctx context.Context, eventID uuid.UUID) (*models.EventSettings, error)
	Create(ctx context.Context, input CreateEventInput) (*models.RaffleEvent, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateEventInput) (*models.RaffleEvent, error)
	List(ctx context.Context) ([]models.RaffleEvent, error)
	UpsertSettings(ctx context.Context, eventID uuid.UUID, input SettingsInput) (*models.EventSettings, error)
	SetHeaderImage(ctx context.Context, eventID uuid.UUID, imageURL string) (*models.EventSettings, error)
}

type service struct {
	repo Repository
	now  func() time.Time
}

// NewService builds an events service with the required dependencies.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("events repository required")
	}
	return &service{
		repo: repo,
		now:  time.Now,
	}, nil
}

func (s *service) Current(ctx context.Context) (*models.RaffleEvent, error) {
	event, err := s.repo.FindCurrent(ctx, s.now())
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no active event")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "resolving current event")
	}
	return event, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.RaffleEvent, error) {
	event, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "event not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading event")
	}
	return event, nil
}

func (s *service) GetSettings(ctx context.Context, eventID uuid.UUID) (*models.EventSettings, error) {
	settings, err := s.repo.FindSettings(ctx, eventID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "event settings not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading event settings")
	}
	return settings, nil
}

func (s *service) Create(ctx context.Context, input CreateEventInput) (*models.RaffleEvent, error) {
	if err := validateWindow(input.StartDate, input.EndDate); err != nil {
		return nil, err
	}
	status := input.Status
	if status == "" {
		status = enums.EventStatusDraft
	}
	if !status.IsValid() {
		return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "invalid event status %q", status)
	}

	event := &models.RaffleEvent{
		Name:        input.Name,
		Description: input.Description,
		StartDate:   input.StartDate,
		EndDate:     input.EndDate,
		Status:      status,
	}
	created, err := s.repo.Create(ctx, event)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating event")
	}
	return created, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateEventInput) (*models.RaffleEvent, error) {
	existing, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if input.Name != nil {
		updates["name"] = *input.Name
	}
	if input.Description != nil {
		updates["description"] = *input.Description
	}
	start := existing.StartDate
	end := existing.EndDate
	if input.StartDate != nil {
		start = *input.StartDate
		updates["start_date"] = start
	}
	if input.EndDate != nil {
		end = *input.EndDate
		updates["end_date"] = end
	}
	if err := validateWindow(start, end); err != nil {
		return nil, err
	}
	if input.Status != nil {
		if !input.Status.IsValid() {
			return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "invalid event status %q", *input.Status)
		}
		updates["status"] = *input.Status
	}
	if len(updates) == 0 {
		return existing, nil
	}

	if err := s.repo.Update(ctx, id, updates); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "updating event")
	}
	return s.Get(ctx, id)
}

func (s *service) List(ctx context.Context) ([]models.RaffleEvent, error) {
	events, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing events")
	}
	return events, nil
}

func (s *service) UpsertSettings(ctx context.Context, eventID uuid.UUID, input SettingsInput) (*models.EventSettings, error) {
	if _, err := s.Get(ctx, eventID); err != nil {
		return nil, err
	}

	settings := &models.EventSettings{
		EventID:                  eventID,
		HeaderImageURL:           input.HeaderImageURL,
		AllowInternationalOrders: input.AllowInternationalOrders,
		RequireAgeConfirmation:   input.RequireAgeConfirmation,
	}
	if err := s.repo.UpsertSettings(ctx, settings); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "saving event settings")
	}
	return settings, nil
}

func (s *service) SetHeaderImage(ctx context.Context, eventID uuid.UUID, imageURL string) (*models.EventSettings, error) {
	if imageURL == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "image url is required")
	}

	settings, err := s.repo.FindSettings(ctx, eventID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading event settings")
		}
		if _, getErr := s.Get(ctx, eventID); getErr != nil {
			return nil, getErr
		}
		settings = &models.EventSettings{EventID: eventID}
	}

	settings.HeaderImageURL = &imageURL
	if err := s.repo.UpsertSettings(ctx, settings); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "saving event settings")
	}
	return settings, nil
}

func validateWindow(start, end time.Time) error {
	if start.IsZero() || end.IsZero() {
		return pkgerrors.New(pkgerrors.CodeValidation, "start and end dates are required")
	}
	if !end.After(start) {
		return pkgerrors.New(pkgerrors.CodeValidation, "end date must be after start date")
	}
	return nil
}
