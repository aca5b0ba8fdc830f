package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/davidquint/raffle-backend/pkg/db/models"
	"github.com/davidquint/raffle-backend/pkg/enums"
	"github.com/davidquint/raffle-backend/pkg/logger"
	"github.com/davidquint/raffle-backend/pkg/outbox"
	"github.com/google/uuid"
	"go.uber.org/multierr"
	"gorm.io/gorm"
)

type eventStatusRepo interface {
	FindDueForActivation(ctx context.Context, now time.Time) ([]models.RaffleEvent, error)
	FindDueForCompletion(ctx context.Context, now time.Time) ([]models.RaffleEvent, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status enums.EventStatus) error
}

type eventOutbox interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// EventStatusJobParams configure the raffle event lifecycle job.
type EventStatusJobParams struct {
	Logger     *logger.Logger
	DB         *gorm.DB
	Repository eventStatusRepo
	Outbox     eventOutbox
}

// NewEventStatusJob promotes scheduled events to active and closes ended ones.
func NewEventStatusJob(params EventStatusJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.DB == nil {
		return nil, fmt.Errorf("db handle required")
	}
	if params.Repository == nil {
		return nil, fmt.Errorf("events repository required")
	}
	if params.Outbox == nil {
		return nil, fmt.Errorf("outbox required")
	}
	return &eventStatusJob{
		logg:   params.Logger,
		db:     params.DB,
		repo:   params.Repository,
		outbox: params.Outbox,
		now:    time.Now,
	}, nil
}

type eventStatusJob struct {
	logg   *logger.Logger
	db     *gorm.DB
	repo   eventStatusRepo
	outbox eventOutbox
	now    func() time.Time
}

func (j *eventStatusJob) Name() string { return "event-status" }

func (j *eventStatusJob) Run(ctx context.Context) error {
	now := j.now().UTC()

	var errs error
	errs = multierr.Append(errs, j.activateDue(ctx, now))
	errs = multierr.Append(errs, j.completeDue(ctx, now))
	return errs
}

func (j *eventStatusJob) activateDue(ctx context.Context, now time.Time) error {
	due, err := j.repo.FindDueForActivation(ctx, now)
	if err != nil {
		return fmt.Errorf("find events due for activation: %w", err)
	}

	var errs error
	for _, event := range due {
		if err := j.transition(ctx, event, enums.EventStatusActive, enums.EventRaffleEventActivated); err != nil {
			errs = multierr.Append(errs, err)
		}
	}
	return errs
}

func (j *eventStatusJob) completeDue(ctx context.Context, now time.Time) error {
	due, err := j.repo.FindDueForCompletion(ctx, now)
	if err != nil {
		return fmt.Errorf("find events due for completion: %w", err)
	}

	var errs error
	for _, event := range due {
		if err := j.transition(ctx, event, enums.EventStatusCompleted, enums.EventRaffleEventCompleted); err != nil {
			errs = multierr.Append(errs, err)
		}
	}
	return errs
}

func (j *eventStatusJob) transition(ctx context.Context, event models.RaffleEvent, status enums.EventStatus, eventType enums.OutboxEventType) error {
	if err := j.repo.UpdateStatus(ctx, event.ID, status); err != nil {
		return fmt.Errorf("move event %s to %s: %w", event.ID, status, err)
	}

	logCtx := j.logg.WithEventID(ctx, event.ID.String())
	logCtx = j.logg.WithField(logCtx, "status", status)
	j.logg.Info(logCtx, "raffle event status updated")

	domainEvent := outbox.DomainEvent{
		EventType:     eventType,
		AggregateType: enums.AggregateEvent,
		AggregateID:   event.ID,
		Version:       1,
		OccurredAt:    j.now(),
		Data: map[string]any{
			"event_id":   event.ID,
			"name":       event.Name,
			"status":     status,
			"start_date": event.StartDate,
			"end_date":   event.EndDate,
		},
	}
	if err := j.outbox.Emit(ctx, j.db, domainEvent); err != nil {
		j.logg.Error(logCtx, "queueing event status change failed", err)
	}
	return nil
}
