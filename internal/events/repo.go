package events

import (
	"context"
	"time"

	"github.com/davidquint/raffle-backend/pkg/db/models"
	"github.com/davidquint/raffle-backend/pkg/enums"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository defines persistence operations for raffle events and their settings.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, event *models.RaffleEvent) (*models.RaffleEvent, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.RaffleEvent, error)
	FindCurrent(ctx context.Context, now time.Time) (*models.RaffleEvent, error)
	List(ctx context.Context) ([]models.RaffleEvent, error)
	Update(ctx context.Context, id uuid.UUID, updates map[string]any) error
	FindSettings(ctx context.Context, eventID uuid.UUID) (*models.EventSettings, error)
	UpsertSettings(ctx context.Context, settings *models.EventSettings) error
	FindDueForActivation(ctx context.Context, now time.Time) ([]models.RaffleEvent, error)
	FindDueForCompletion(ctx context.Context, now time.Time) ([]models.RaffleEvent, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status enums.EventStatus) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds an events repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, event *models.RaffleEvent) (*models.RaffleEvent, error) {
	if err := r.db.WithContext(ctx).Create(event).Error; err != nil {
		return nil, err
	}
	return event, nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.RaffleEvent, error) {
	var event models.RaffleEvent
	err := r.db.WithContext(ctx).
		Preload("Settings").
		Where("id = ?", id).
		First(&event).Error
	if err != nil {
		return nil, err
	}
	return &event, nil
}

func (r *repository) FindCurrent(ctx context.Context, now time.Time) (*models.RaffleEvent, error) {
	var event models.RaffleEvent
	err := r.db.WithContext(ctx).
		Preload("Settings").
		Where("status = ? AND start_date <= ? AND end_date >= ?", enums.EventStatusActive, now, now).
		Order("start_date DESC").
		First(&event).Error
	if err != nil {
		return nil, err
	}
	return &event, nil
}

func (r *repository) List(ctx context.Context) ([]models.RaffleEvent, error) {
	var events []models.RaffleEvent
	err := r.db.WithContext(ctx).
		Order("start_date DESC").
		Find(&events).Error
	if err != nil {
		return nil, err
	}
	return events, nil
}

func (r *repository) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.RaffleEvent{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *repository) FindSettings(ctx context.Context, eventID uuid.UUID) (*models.EventSettings, error) {
	var settings models.EventSettings
	err := r.db.WithContext(ctx).
		Where("event_id = ?", eventID).
		First(&settings).Error
	if err != nil {
		return nil, err
	}
	return &settings, nil
}

func (r *repository) UpsertSettings(ctx context.Context, settings *models.EventSettings) error {
	return r.db.WithContext(ctx).Save(settings).Error
}

func (r *repository) FindDueForActivation(ctx context.Context, now time.Time) ([]models.RaffleEvent, error) {
	var events []models.RaffleEvent
	err := r.db.WithContext(ctx).
		Where("status = ? AND start_date <= ? AND end_date > ?", enums.EventStatusScheduled, now, now).
		Find(&events).Error
	return events, err
}

func (r *repository) FindDueForCompletion(ctx context.Context, now time.Time) ([]models.RaffleEvent, error) {
	var events []models.RaffleEvent
	err := r.db.WithContext(ctx).
		Where("status = ? AND end_date <= ?", enums.EventStatusActive, now).
		Find(&events).Error
	return events, err
}

func (r *repository) UpdateStatus(ctx context.Context, id uuid.UUID, status enums.EventStatus) error {
	return r.db.WithContext(ctx).
		Model(&models.RaffleEvent{}).
		Where("id = ?", id).
		Update("status", status).Error
}
